package parking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"voucher_wheel/internal/domain/parking/handler"
	"voucher_wheel/internal/domain/parking/model"
	"voucher_wheel/internal/domain/parking/repository"
	"voucher_wheel/internal/pkg/config"
	"voucher_wheel/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubParkingService struct {
	updated int
}

func (s *stubParkingService) ListParkings(context.Context) ([]model.Parking, error) {
	return []model.Parking{}, nil
}

func (s *stubParkingService) UpdateParkings(_ context.Context, updates []repository.SpaceUpdate) ([]model.Parking, error) {
	s.updated += len(updates)
	return []model.Parking{}, nil
}

func TestAdminParkingRoutesRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	prev := config.GlobalConfig.JWT
	config.GlobalConfig.JWT = config.JWTConfig{Secret: "test-secret-with-at-least-32-characters", Expire: 1}
	t.Cleanup(func() { config.GlobalConfig.JWT = prev })

	svc := &stubParkingService{}
	r := gin.New()
	setupRoutes(r, handler.NewParkingHandler(svc))

	token := func(role int) string {
		tok, _, err := utils.GenerateToken("user-1", role)
		require.NoError(t, err)
		return "Bearer " + tok
	}

	tests := []struct {
		name   string
		auth   string
		status int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"regular user", token(utils.RoleUser), http.StatusForbidden},
		{"admin", token(utils.RoleAdmin), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/admin/parkings",
				strings.NewReader(`{"parkings":[{"id":"p-1","totalSpaces":500,"availableSpaces":234,"isOpen":true}]}`))
			req.Header.Set("Content-Type", "application/json")
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
	assert.Equal(t, 1, svc.updated)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/parkings", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
