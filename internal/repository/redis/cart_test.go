package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/OrderDeskGo/internal/domain"
	apperrors "github.com/utafrali/OrderDeskGo/internal/pkg/errors"
)

func setupTestRedis(t *testing.T) (*CartRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	repo := NewCartRepository(client, 2*time.Hour)
	return repo, mr
}

func sampleCart() *domain.Cart {
	return &domain.Cart{
		Lines: []domain.CartLine{
			{
				ProductID: "prod-1",
				Name:      "Espresso Machine",
				Quantity:  2,
				UnitPrice: 1990,
				LineTotal: 3980,
			},
			{
				ProductID: "prod-2",
				Name:      "Coffee Grinder",
				Quantity:  1,
				UnitPrice: 500,
				LineTotal: 500,
			},
		},
	}
}

// ---------------------------------------------------------------------------
// Get
// ---------------------------------------------------------------------------

func TestCartRepository_Get_Success(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	data, err := json.Marshal(cart)
	require.NoError(t, err)

	// Set data directly in miniredis.
	require.NoError(t, mr.Set("orderdesk:cart:rec-1", string(data)))

	got, err := repo.Get(context.Background(), "rec-1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "prod-1", got.Lines[0].ProductID)
	assert.Equal(t, "Espresso Machine", got.Lines[0].Name)
	assert.Equal(t, 2, got.Lines[0].Quantity)
	assert.Equal(t, int64(1990), got.Lines[0].UnitPrice)
	assert.Equal(t, int64(4480), got.TotalAmount())
}

func TestCartRepository_Get_NotFound(t *testing.T) {
	repo, _ := setupTestRedis(t)

	got, err := repo.Get(context.Background(), "missing-record")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartRepository_Get_InvalidJSON(t *testing.T) {
	repo, mr := setupTestRedis(t)

	require.NoError(t, mr.Set("orderdesk:cart:rec-1", "{not json"))

	got, err := repo.Get(context.Background(), "rec-1")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Save
// ---------------------------------------------------------------------------

func TestCartRepository_Save_RoundTrip(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	cart := sampleCart()
	require.NoError(t, repo.Save(ctx, "rec-1", cart))

	got, err := repo.Get(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, cart, got)
}

func TestCartRepository_Save_SetsTTL(t *testing.T) {
	repo, mr := setupTestRedis(t)

	require.NoError(t, repo.Save(context.Background(), "rec-1", sampleCart()))

	ttl := mr.TTL("orderdesk:cart:rec-1")
	assert.Equal(t, 2*time.Hour, ttl)
}

func TestCartRepository_Save_Overwrites(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "rec-1", sampleCart()))

	smaller := &domain.Cart{
		Lines: []domain.CartLine{
			{ProductID: "prod-3", Name: "Mug", Quantity: 1, UnitPrice: 250, LineTotal: 250},
		},
	}
	require.NoError(t, repo.Save(ctx, "rec-1", smaller))

	got, err := repo.Get(ctx, "rec-1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "prod-3", got.Lines[0].ProductID)
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestCartRepository_Delete(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "rec-1", sampleCart()))
	require.NoError(t, repo.Delete(ctx, "rec-1"))

	_, err := repo.Get(ctx, "rec-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartRepository_Delete_MissingKey(t *testing.T) {
	repo, _ := setupTestRedis(t)

	assert.NoError(t, repo.Delete(context.Background(), "never-saved"))
}

func TestCartRepository_KeysAreIsolatedByParent(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "rec-1", sampleCart()))
	require.NoError(t, repo.Delete(ctx, "rec-2"))

	got, err := repo.Get(ctx, "rec-1")
	require.NoError(t, err)
	assert.Len(t, got.Lines, 2)
}
