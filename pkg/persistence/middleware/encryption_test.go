package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/nest/pkg/adapters/memory"
	"github.com/aretw0/nest/pkg/domain"
	"github.com/aretw0/nest/pkg/persistence/middleware"
	"github.com/aretw0/nest/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func secretSnapshot(value string) *domain.Snapshot {
	return &domain.Snapshot{
		Status: domain.PhaseLeaf,
		Event:  "submit",
		Stack: []domain.StateDump{
			{Key: "MAIN", Data: map[string]any{"secret": value}},
			{Key: "FORM", Data: map[string]any{}},
		},
	}
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	require.NoError(t, secure.Save(ctx, "s1", secretSnapshot("my-secret-sauce")))

	stored, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseLeaf, stored.Status, "status stays visible")
	assert.Empty(t, stored.Event)
	require.Len(t, stored.Stack, 1)
	assert.Equal(t, "__encrypted__", stored.Stack[0].Key)
	assert.NotContains(t, stored.Stack[0].Data["ciphertext"], "my-secret-sauce")

	loaded, err := secure.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"MAIN", "FORM"}, loaded.Path())
	assert.Equal(t, "submit", loaded.Event)
	assert.Equal(t, "my-secret-sauce", loaded.Stack[0].Data["secret"])
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunSnapshotStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, oldStore.Save(ctx, "rot", secretSnapshot("old")))

	newStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	loaded, err := newStore.Load(ctx, "rot")
	require.NoError(t, err, "fallback key must decrypt")
	assert.Equal(t, "old", loaded.Stack[0].Data["secret"])

	require.NoError(t, newStore.Save(ctx, "rot", secretSnapshot("new")))
	_, err = oldStore.Load(ctx, "rot")
	assert.Error(t, err, "old key alone cannot read data written with the new key")
}

func TestEncryptionMiddleware_RejectsPlainSnapshot(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "plain", secretSnapshot("x")))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(ctx, "plain")
	assert.ErrorContains(t, err, "envelope")
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}

func TestChain_OuterFirst(t *testing.T) {
	underlying := memory.NewStore()
	key := generateKey(t)
	store := middleware.Chain(underlying,
		middleware.NewPIIMiddleware([]string{"secret"}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "c", secretSnapshot("hidden")))

	loaded, err := store.Load(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded.Stack[0].Data["secret"], "masked before encryption")
}
