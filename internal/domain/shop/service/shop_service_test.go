package service

import (
	"context"
	"testing"
	"voucher_wheel/internal/domain/shop/model"
	"voucher_wheel/internal/domain/shop/repository"
	"voucher_wheel/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockShopRepository struct {
	mock.Mock
}

func (m *MockShopRepository) Create(ctx context.Context, shop *model.Shop) error {
	args := m.Called(ctx, shop)
	return args.Error(0)
}

func (m *MockShopRepository) GetByID(ctx context.Context, id string) (*model.Shop, error) {
	args := m.Called(ctx, id)
	shop, _ := args.Get(0).(*model.Shop)
	return shop, args.Error(1)
}

func (m *MockShopRepository) ListActive(ctx context.Context, category string) ([]model.Shop, error) {
	args := m.Called(ctx, category)
	shops, _ := args.Get(0).([]model.Shop)
	return shops, args.Error(1)
}

func (m *MockShopRepository) ListCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]string)
	return categories, args.Error(1)
}

func newCached(repo *MockShopRepository) ShopService {
	return NewCachedShopService(NewShopService(repo), cache.NewMemoryCache(), zap.NewNop())
}

func TestCreateShopValidation(t *testing.T) {
	repo := new(MockShopRepository)
	svc := NewShopService(repo)

	_, err := svc.CreateShop(context.Background(), CreateShopInput{Name: "  ", Category: "food"})
	assert.ErrorIs(t, err, ErrInvalidShop)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateShopNormalizes(t *testing.T) {
	repo := new(MockShopRepository)
	svc := NewShopService(repo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(s *model.Shop) bool {
		return s.Name == "Fox Coffee" && s.Category == "food" && s.IsActive
	})).Return(nil)

	shop, err := svc.CreateShop(context.Background(), CreateShopInput{Name: " Fox Coffee ", Category: "Food"})
	require.NoError(t, err)
	assert.Equal(t, "food", shop.Category)
	repo.AssertExpectations(t)
}

func TestCachedListShopsHitsRepositoryOnce(t *testing.T) {
	repo := new(MockShopRepository)
	svc := newCached(repo)
	ctx := context.Background()
	repo.On("ListActive", mock.Anything, "food").Return([]model.Shop{{Name: "Fox Coffee"}}, nil).Once()

	for i := 0; i < 3; i++ {
		shops, err := svc.ListShops(ctx, "food")
		require.NoError(t, err)
		require.Len(t, shops, 1)
		assert.Equal(t, "Fox Coffee", shops[0].Name)
	}
	repo.AssertNumberOfCalls(t, "ListActive", 1)
}

func TestCachedGetShop(t *testing.T) {
	repo := new(MockShopRepository)
	svc := newCached(repo)
	ctx := context.Background()
	shop := &model.Shop{Name: "Fox Books"}
	shop.ID = "shop-1"
	repo.On("GetByID", mock.Anything, "shop-1").Return(shop, nil).Once()
	repo.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrShopNotFound)

	for i := 0; i < 2; i++ {
		got, err := svc.GetShop(ctx, "shop-1")
		require.NoError(t, err)
		assert.Equal(t, "shop-1", got.ID)
	}

	_, err := svc.GetShop(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrShopNotFound)
}

func TestCreateShopInvalidatesLists(t *testing.T) {
	repo := new(MockShopRepository)
	svc := newCached(repo)
	ctx := context.Background()

	repo.On("ListActive", mock.Anything, "").Return([]model.Shop{{Name: "A"}}, nil).Once()
	repo.On("ListCategories", mock.Anything).Return([]string{"food"}, nil).Once()
	_, err := svc.ListShops(ctx, "")
	require.NoError(t, err)
	_, err = svc.ListCategories(ctx)
	require.NoError(t, err)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	_, err = svc.CreateShop(ctx, CreateShopInput{Name: "B", Category: "books"})
	require.NoError(t, err)

	repo.On("ListActive", mock.Anything, "").Return([]model.Shop{{Name: "A"}, {Name: "B"}}, nil).Once()
	repo.On("ListCategories", mock.Anything).Return([]string{"books", "food"}, nil).Once()

	shops, err := svc.ListShops(ctx, "")
	require.NoError(t, err)
	assert.Len(t, shops, 2)
	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"books", "food"}, categories)
}
