package model

import (
	baseModel "voucher_wheel/pkg/model"
)

// MallInfo 商场基本信息，全表只有一行
type MallInfo struct {
	baseModel.BaseModel
	Name         string `gorm:"type:varchar(120);not null" json:"name"`
	Address      string `gorm:"type:varchar(255)" json:"address"`
	Phone        string `gorm:"type:varchar(40)" json:"phone"`
	Email        string `gorm:"type:varchar(120)" json:"email"`
	OpeningHours string `gorm:"type:varchar(120)" json:"openingHours"`
	Description  string `gorm:"type:text" json:"description"`
	MapImage     string `gorm:"type:varchar(255)" json:"mapImage"` // 平面图对象存储路径
}
