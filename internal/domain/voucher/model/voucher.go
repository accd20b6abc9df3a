package model

import (
	"time"
	shopModel "voucher_wheel/internal/domain/shop/model"
	baseModel "voucher_wheel/pkg/model"

	"github.com/shopspring/decimal"
)

// Voucher 商铺代金券，由后台预先放入奖池，抽中后归属用户
type Voucher struct {
	baseModel.BaseModel
	ShopID      string          `gorm:"type:uuid;not null;index" json:"shopId"`
	Shop        *shopModel.Shop `gorm:"foreignKey:ShopID" json:"shop,omitempty"`
	Code        string          `gorm:"type:varchar(40);not null;uniqueIndex" json:"code"`
	Value       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"value"`
	Description string          `gorm:"type:varchar(255)" json:"description"`
	ExpiresAt   time.Time       `gorm:"not null;index" json:"expiresAt"`
	WonByUserID *string         `gorm:"type:varchar(64);index" json:"wonByUserId,omitempty"`
	WonAt       *time.Time      `json:"wonAt,omitempty"`
	IsUsed      bool            `gorm:"not null;default:false" json:"isUsed"`
	UsedAt      *time.Time      `json:"usedAt,omitempty"`
}

// IsClaimed 是否已被抽中
func (v *Voucher) IsClaimed() bool {
	return v.WonByUserID != nil
}

// IsActive 已中奖、未使用且未过期
func (v *Voucher) IsActive(now time.Time) bool {
	return v.IsClaimed() && !v.IsUsed && v.ExpiresAt.After(now)
}

// ShopName 关联商铺名称，未加载时为空
func (v *Voucher) ShopName() string {
	if v.Shop == nil {
		return ""
	}
	return v.Shop.Name
}

// Wallet 用户的券包
type Wallet struct {
	Active        []Voucher `json:"active"`
	Inactive      []Voucher `json:"inactive"`
	ActiveCount   int       `json:"activeCount"`
	InactiveCount int       `json:"inactiveCount"`
}

// Stats 券统计
type Stats struct {
	Total     int64 `json:"total"`
	Won       int64 `json:"won"`
	Used      int64 `json:"used"`
	Available int64 `json:"available"` // 未被抽中且未过期
}
