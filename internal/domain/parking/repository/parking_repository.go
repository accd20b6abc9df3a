package repository

import (
	"context"
	"fmt"
	"voucher_wheel/internal/domain/parking/model"

	"gorm.io/gorm"
)

// ErrParkingNotFound 更新的停车场不存在
var ErrParkingNotFound = fmt.Errorf("parking not found")

// SpaceUpdate 单个停车场的余位更新
type SpaceUpdate struct {
	ID              string
	TotalSpaces     int
	AvailableSpaces int
	IsOpen          bool
}

type ParkingRepository interface {
	Create(ctx context.Context, parking *model.Parking) error
	List(ctx context.Context) ([]model.Parking, error)
	UpdateSpaces(ctx context.Context, updates []SpaceUpdate) error
}

type parkingRepository struct {
	db *gorm.DB
}

func NewParkingRepository(db *gorm.DB) ParkingRepository {
	return &parkingRepository{db: db}
}

func (r *parkingRepository) Create(ctx context.Context, parking *model.Parking) error {
	return r.db.WithContext(ctx).Create(parking).Error
}

func (r *parkingRepository) List(ctx context.Context) ([]model.Parking, error) {
	var parkings []model.Parking
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&parkings).Error; err != nil {
		return nil, err
	}
	return parkings, nil
}

// UpdateSpaces 批量更新，任一失败整体回滚
func (r *parkingRepository) UpdateSpaces(ctx context.Context, updates []SpaceUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			result := tx.Model(&model.Parking{}).
				Where("id = ?", u.ID).
				Updates(map[string]interface{}{
					"total_spaces":     u.TotalSpaces,
					"available_spaces": u.AvailableSpaces,
					"is_open":          u.IsOpen,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", ErrParkingNotFound, u.ID)
			}
		}
		return nil
	})
}
