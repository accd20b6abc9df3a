package handler

import (
	"errors"
	"net/http"
	"voucher_wheel/internal/domain/shop/repository"
	"voucher_wheel/internal/domain/shop/service"
	"voucher_wheel/pkg/response"

	"github.com/gin-gonic/gin"
)

type ShopHandler struct {
	service service.ShopService
}

func NewShopHandler(service service.ShopService) *ShopHandler {
	return &ShopHandler{service: service}
}

// ListShops 营业中的商铺，可按 category 过滤
func (h *ShopHandler) ListShops(c *gin.Context) {
	shops, err := h.service.ListShops(c.Request.Context(), c.Query("category"))
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to list shops")
		return
	}
	response.Success(c, shops)
}

func (h *ShopHandler) GetShop(c *gin.Context) {
	shop, err := h.service.GetShop(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrShopNotFound) {
		response.Error(c, http.StatusNotFound, response.ErrShopNotFound, "Shop not found")
		return
	}
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to load shop")
		return
	}
	response.Success(c, shop)
}

func (h *ShopHandler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to list categories")
		return
	}
	response.Success(c, categories)
}

type CreateShopInput struct {
	Name         string `json:"name" binding:"required,max=120"`
	Description  string `json:"description"`
	Category     string `json:"category" binding:"required,max=60"`
	Floor        int    `json:"floor"`
	Location     string `json:"location" binding:"max=20"`
	Logo         string `json:"logo" binding:"omitempty,url"`
	Image        string `json:"image" binding:"omitempty,url"`
	WebsiteURL   string `json:"websiteUrl" binding:"omitempty,url"`
	Phone        string `json:"phone" binding:"max=40"`
	OpeningHours string `json:"openingHours" binding:"max=60"`
}

// CreateShop 管理员新建商铺
func (h *ShopHandler) CreateShop(c *gin.Context) {
	var input CreateShopInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	shop, err := h.service.CreateShop(c.Request.Context(), service.CreateShopInput(input))
	if errors.Is(err, service.ErrInvalidShop) {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to create shop")
		return
	}
	response.Success(c, shop)
}
