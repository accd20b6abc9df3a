package model

import (
	baseModel "voucher_wheel/pkg/model"
)

// Shop 商场内的商铺
type Shop struct {
	baseModel.BaseModel
	Name         string `gorm:"type:varchar(120);not null;index" json:"name"`
	Description  string `gorm:"type:text" json:"description"`
	Category     string `gorm:"type:varchar(60);not null;index" json:"category"`
	Floor        int    `gorm:"not null;default:0" json:"floor"`
	Location     string `gorm:"type:varchar(20)" json:"location"`
	Logo         string `gorm:"type:varchar(255)" json:"logo"`
	Image        string `gorm:"type:varchar(255)" json:"image"`
	WebsiteURL   string `gorm:"type:varchar(255)" json:"websiteUrl"`
	Phone        string `gorm:"type:varchar(40)" json:"phone"`
	OpeningHours string `gorm:"type:varchar(60)" json:"openingHours"`
	IsActive     bool   `gorm:"not null;default:true;index" json:"isActive"`
}
