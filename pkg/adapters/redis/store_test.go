package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/nest/pkg/adapters/redis"
	"github.com/aretw0/nest/pkg/domain"
	"github.com/aretw0/nest/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

var _ ports.SnapshotStore = (*redis.Store)(nil)

func TestRedisStore_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunSnapshotStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := setup(t)
	store := redis.NewFromClient(client, redis.WithPrefix("app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", &domain.Snapshot{Status: domain.PhaseLeaf}))
	assert.True(t, mr.Exists("app:s1"))
	assert.True(t, mr.Exists("app:index"))
	assert.False(t, mr.Exists("nest:session:s1"))
}

func TestRedisStore_TTL(t *testing.T) {
	mr, client := setup(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "short", &domain.Snapshot{Status: domain.PhaseLeaf}))
	assert.Equal(t, time.Minute, mr.TTL("nest:session:short"))

	mr.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "short")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr, client := setup(t)
	require.NoError(t, mr.Set("nest:session:bad", "{"))

	_, err := redis.NewFromClient(client).Load(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSnapshotNotFound)
}
