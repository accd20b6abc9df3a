package service

import (
	"context"
	"errors"
	"fmt"
	"voucher_wheel/internal/domain/parking/model"
	"voucher_wheel/internal/domain/parking/repository"

	"go.uber.org/zap"
)

// ErrInvalidSpaces 余位为负或大于总车位
var ErrInvalidSpaces = errors.New("invalid parking spaces")

type ParkingService interface {
	ListParkings(ctx context.Context) ([]model.Parking, error)
	UpdateParkings(ctx context.Context, updates []repository.SpaceUpdate) ([]model.Parking, error)
}

type parkingService struct {
	repo repository.ParkingRepository
	log  *zap.Logger
}

func NewParkingService(repo repository.ParkingRepository, log *zap.Logger) ParkingService {
	return &parkingService{repo: repo, log: log}
}

func (s *parkingService) ListParkings(ctx context.Context) ([]model.Parking, error) {
	return s.repo.List(ctx)
}

// UpdateParkings 批量更新余位，先整体校验再在一个事务内写入
func (s *parkingService) UpdateParkings(ctx context.Context, updates []repository.SpaceUpdate) ([]model.Parking, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no updates", ErrInvalidSpaces)
	}
	seen := make(map[string]bool, len(updates))
	for _, u := range updates {
		if err := validate(u); err != nil {
			return nil, err
		}
		if seen[u.ID] {
			return nil, fmt.Errorf("%w: duplicate parking %s", ErrInvalidSpaces, u.ID)
		}
		seen[u.ID] = true
	}

	if err := s.repo.UpdateSpaces(ctx, updates); err != nil {
		return nil, err
	}
	s.log.Info("parking availability updated", zap.Int("count", len(updates)))
	return s.repo.List(ctx)
}

func validate(u repository.SpaceUpdate) error {
	switch {
	case u.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidSpaces)
	case u.TotalSpaces < 0 || u.AvailableSpaces < 0:
		return fmt.Errorf("%w: spaces must not be negative", ErrInvalidSpaces)
	case u.AvailableSpaces > u.TotalSpaces:
		return fmt.Errorf("%w: available spaces exceed total for %s", ErrInvalidSpaces, u.ID)
	}
	return nil
}
