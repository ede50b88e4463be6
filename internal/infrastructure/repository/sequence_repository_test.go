package repository

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/greenbush/returns-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSequenceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&entity.SequenceCounter{}))
	return db
}

func TestSequenceNext_Sequential(t *testing.T) {
	db := newSequenceTestDB(t)
	repo := NewSequenceRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	for want := int64(1); want <= 3; want++ {
		got, err := repo.Next(ctx, tenantID, "RMA", "202608")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestSequenceNext_IndependentCounters(t *testing.T) {
	db := newSequenceTestDB(t)
	repo := NewSequenceRepository(db)
	ctx := context.Background()
	tenantA := uuid.New()
	tenantB := uuid.New()

	v, err := repo.Next(ctx, tenantA, "RMA", "202608")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	v, err = repo.Next(ctx, tenantA, "RMA", "202608")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	// A different prefix starts its own counter
	v, err = repo.Next(ctx, tenantA, "CM", "202608")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	// A new bucket resets the numbering
	v, err = repo.Next(ctx, tenantA, "RMA", "202609")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	// Other tenants never share a counter
	v, err = repo.Next(ctx, tenantB, "RMA", "202608")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestSequenceNext_ConcurrentAllocationsAreDistinct(t *testing.T) {
	db := newSequenceTestDB(t)
	repo := NewSequenceRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	const n = 20
	var wg sync.WaitGroup
	values := make([]int64, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			values[i], errs[i] = repo.Next(ctx, tenantID, "RMA", "202608")
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[values[i]], "value %d allocated twice", values[i])
		seen[values[i]] = true
		assert.GreaterOrEqual(t, values[i], int64(1))
		assert.LessOrEqual(t, values[i], int64(n))
	}
}
