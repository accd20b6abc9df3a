package repository

import (
	"context"
	"errors"
	"voucher_wheel/internal/domain/mall/model"
	"voucher_wheel/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrMallNotFound 尚未录入商场信息
var ErrMallNotFound = errors.New("mall info not found")

type MallRepository interface {
	Get(ctx context.Context) (*model.MallInfo, error)
	Save(ctx context.Context, info *model.MallInfo) error
}

type mallRepository struct {
	db *gorm.DB
}

func NewMallRepository(db *gorm.DB) MallRepository {
	return &mallRepository{db: db}
}

func (r *mallRepository) Get(ctx context.Context) (*model.MallInfo, error) {
	var info model.MallInfo
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMallNotFound
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Save 有则覆盖最早的一行，没有则新建；info 回填 ID 与时间戳
func (r *mallRepository) Save(ctx context.Context, info *model.MallInfo) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.MallInfo
		q := tx.Order("created_at ASC")
		if database.IsPostgres(tx) {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		err := q.First(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(info).Error
		}
		if err != nil {
			return err
		}

		info.ID = current.ID
		info.CreatedAt = current.CreatedAt
		return tx.Model(&current).Select("*").Omit("id", "created_at").Updates(info).Error
	})
}
