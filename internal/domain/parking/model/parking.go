package model

import (
	baseModel "voucher_wheel/pkg/model"
)

// Parking 停车场实时余位
type Parking struct {
	baseModel.BaseModel
	Name            string `gorm:"type:varchar(120);not null;uniqueIndex" json:"name"`
	TotalSpaces     int    `gorm:"not null" json:"totalSpaces"`
	AvailableSpaces int    `gorm:"not null" json:"availableSpaces"`
	Floor           string `gorm:"type:varchar(40)" json:"floor"`
	IsOpen          bool   `gorm:"not null;default:true" json:"isOpen"`
}

// OccupancyRate 占用率 [0,1]
func (p *Parking) OccupancyRate() float64 {
	if p.TotalSpaces <= 0 {
		return 0
	}
	return float64(p.TotalSpaces-p.AvailableSpaces) / float64(p.TotalSpaces)
}
