package uploader

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"
	"voucher_wheel/internal/pkg/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

// MaxImageSize 单张图片上限
const MaxImageSize = 5 << 20

var (
	ErrUploaderNotConfigured = errors.New("oss config is missing")
	ErrUnsupportedFile       = errors.New("only jpg, png and webp images are allowed")
	ErrFileTooLarge          = errors.New("file exceeds 5MB")
)

var allowedExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

type Uploader interface {
	UploadFile(ctx context.Context, file *multipart.FileHeader) (string, error)
}

type AliyunOSSUploader struct {
	bucket *oss.Bucket
	config config.OSSConfig
	now    func() time.Time
}

func NewAliyunOSSUploader(cfg config.OSSConfig) (*AliyunOSSUploader, error) {
	if cfg.Endpoint == "" || cfg.BucketName == "" || cfg.AccessKeyID == "" {
		return nil, ErrUploaderNotConfigured
	}
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, err
	}

	return &AliyunOSSUploader{
		bucket: bucket,
		config: cfg,
		now:    time.Now,
	}, nil
}

// ValidateImage 检查扩展名与大小，返回 Content-Type
func ValidateImage(file *multipart.FileHeader) (string, error) {
	contentType, ok := allowedExt[strings.ToLower(filepath.Ext(file.Filename))]
	if !ok {
		return "", ErrUnsupportedFile
	}
	if file.Size > MaxImageSize {
		return "", ErrFileTooLarge
	}
	return contentType, nil
}

// ObjectKey shops/YYYYMMDD/uuid.ext
func ObjectKey(now time.Time, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("shops/%s/%s%s", now.Format("20060102"), uuid.New().String(), ext)
}

func (u *AliyunOSSUploader) UploadFile(ctx context.Context, file *multipart.FileHeader) (string, error) {
	contentType, err := ValidateImage(file)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	key := ObjectKey(u.now(), file.Filename)
	if err := u.bucket.PutObject(key, src, oss.ContentType(contentType)); err != nil {
		return "", err
	}

	// bucket 为公共读或挂在 CDN 后
	return fmt.Sprintf("https://%s.%s/%s", u.config.BucketName, u.config.Endpoint, key), nil
}
