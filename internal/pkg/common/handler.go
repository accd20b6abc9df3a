package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"sync"
	"voucher_wheel/internal/pkg/uploader"
	"voucher_wheel/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// maxConcurrentUploads 单次请求并发上传数
const maxConcurrentUploads = 5

type CommonHandler struct {
	uploader uploader.Uploader // 未配置 OSS 时为空
	db       *gorm.DB
	redis    *redis.Client // 可选
}

func NewCommonHandler(u uploader.Uploader, db *gorm.DB, rdb *redis.Client) *CommonHandler {
	return &CommonHandler{uploader: u, db: db, redis: rdb}
}

// Health 数据库可用时返回 200；Redis 只影响 redis 字段，不影响状态码
func (h *CommonHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, response.ErrServerInternal, "database unavailable")
		return
	}

	redisStatus := "disabled"
	if h.redis != nil {
		redisStatus = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unavailable"
		}
	}
	response.Success(c, gin.H{"status": "ok", "database": "ok", "redis": redisStatus})
}

// UploadFile 批量上传商铺图片，返回与表单顺序一致的 URL
func (h *CommonHandler) UploadFile(c *gin.Context) {
	if h.uploader == nil {
		response.Error(c, http.StatusServiceUnavailable, response.ErrServerInternal, "Uploader not configured")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid form data")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "No files uploaded")
		return
	}
	for _, f := range files {
		if _, err := uploader.ValidateImage(f); err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, f.Filename+": "+err.Error())
			return
		}
	}

	ctx := c.Request.Context()
	urls := make([]string, len(files))
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		uploadErr error
	)
	sem := make(chan struct{}, maxConcurrentUploads)

	for i, file := range files {
		wg.Add(1)
		go func(index int, f *multipart.FileHeader) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			mu.Lock()
			failed := uploadErr != nil
			mu.Unlock()
			if failed {
				return
			}

			url, err := h.uploader.UploadFile(ctx, f)
			if err != nil {
				mu.Lock()
				if uploadErr == nil {
					uploadErr = err
				}
				mu.Unlock()
				return
			}
			urls[index] = url
		}(i, file)
	}
	wg.Wait()

	if uploadErr != nil {
		if errors.Is(uploadErr, uploader.ErrUnsupportedFile) || errors.Is(uploadErr, uploader.ErrFileTooLarge) {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, uploadErr.Error())
			return
		}
		_ = c.Error(uploadErr)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Upload failed")
		return
	}

	response.Success(c, urls)
}
