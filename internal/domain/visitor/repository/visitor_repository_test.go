package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"
	"voucher_wheel/internal/domain/visitor/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	day      = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	nextDay  = day.AddDate(0, 0, 1)
	visitOne = Visit{SessionID: "sess-1", UserAgent: "Mozilla/5.0", Referrer: "https://www.foxtown.com", Day: day}
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "visitor.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.Visitor{}, &model.VisitorStats{}))
	return db
}

func statsFor(t *testing.T, repo VisitorRepository, d time.Time) model.VisitorStats {
	t.Helper()
	rows, err := repo.StatsBetween(context.Background(), d, d)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	return rows[0]
}

func TestTrackCountsSessionOncePerDay(t *testing.T) {
	db := openSQLite(t)
	repo := NewVisitorRepository(db)
	ctx := context.Background()

	first, err := repo.Track(ctx, visitOne)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := repo.Track(ctx, visitOne)
	require.NoError(t, err)
	assert.False(t, again)

	other := visitOne
	other.SessionID = "sess-2"
	first, err = repo.Track(ctx, other)
	require.NoError(t, err)
	assert.True(t, first)

	stats := statsFor(t, repo, day)
	assert.Equal(t, 2, stats.UniqueVisitors)
	assert.Equal(t, 3, stats.TotalPageViews)

	var v model.Visitor
	require.NoError(t, db.Where("session_id = ?", "sess-1").First(&v).Error)
	assert.Equal(t, 2, v.PageViews)
	assert.Equal(t, "https://www.foxtown.com", v.Referrer)
}

func TestTrackReturningSessionNextDay(t *testing.T) {
	db := openSQLite(t)
	repo := NewVisitorRepository(db)
	ctx := context.Background()

	_, err := repo.Track(ctx, visitOne)
	require.NoError(t, err)

	tomorrow := visitOne
	tomorrow.Day = nextDay
	first, err := repo.Track(ctx, tomorrow)
	require.NoError(t, err)
	assert.True(t, first)

	stats := statsFor(t, repo, nextDay)
	assert.Equal(t, 1, stats.UniqueVisitors)
	assert.Equal(t, 1, stats.TotalPageViews)

	var v model.Visitor
	require.NoError(t, db.Where("session_id = ?", "sess-1").First(&v).Error)
	assert.Equal(t, 2, v.PageViews)
	assert.True(t, v.LastVisitDate.Equal(nextDay))

	var visitors int64
	require.NoError(t, db.Model(&model.Visitor{}).Count(&visitors).Error)
	assert.Equal(t, int64(1), visitors)
}

func TestTrackConcurrentSameSession(t *testing.T) {
	repo := NewVisitorRepository(openSQLite(t))
	ctx := context.Background()

	const n = 20
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		first int
		errs  []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Track(ctx, visitOne)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if ok {
				first++
			}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Equal(t, 1, first)
	stats := statsFor(t, repo, day)
	assert.Equal(t, 1, stats.UniqueVisitors)
	assert.Equal(t, n, stats.TotalPageViews)
}

func TestStatsBetweenOrderedAndBounded(t *testing.T) {
	repo := NewVisitorRepository(openSQLite(t))
	ctx := context.Background()

	for i, d := range []time.Time{nextDay, day.AddDate(0, 0, -1), day, day.AddDate(0, 0, 5)} {
		v := visitOne
		v.SessionID = "sess-" + d.Format(time.DateOnly)
		v.Day = d
		for j := 0; j <= i; j++ {
			_, err := repo.Track(ctx, v)
			require.NoError(t, err)
		}
	}

	rows, err := repo.StatsBetween(ctx, day, nextDay)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Date.Equal(day))
	assert.Equal(t, 3, rows[0].TotalPageViews)
	assert.True(t, rows[1].Date.Equal(nextDay))
	assert.Equal(t, 1, rows[1].TotalPageViews)
}
