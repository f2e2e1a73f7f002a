package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/nest/pkg/adapters/file"
	"github.com/aretw0/nest/pkg/adapters/memory"
	"github.com/aretw0/nest/pkg/adapters/redis"
	"github.com/aretw0/nest/pkg/ports"
)

// Store kinds accepted by --store.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// DefaultSessionDir is where the file store keeps snapshots.
const DefaultSessionDir = ".nest/sessions"

// StoreOptions selects and configures the snapshot backend.
type StoreOptions struct {
	Kind string
	Dir  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Prefix        string
	TTL           time.Duration
}

// Backend is an opened snapshot store. Locker is nil unless the backend can
// coordinate several hosts.
type Backend struct {
	Store  ports.SnapshotStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases the backend connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenStore creates the backend named by opts.Kind.
func OpenStore(opts StoreOptions) (*Backend, error) {
	switch strings.ToLower(opts.Kind) {
	case "", StoreMemory:
		return &Backend{Store: memory.NewStore()}, nil
	case StoreFile:
		dir := opts.Dir
		if dir == "" {
			dir = DefaultSessionDir
		}
		return &Backend{Store: file.New(dir)}, nil
	case StoreRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis store requires an address")
		}
		var ropts []redis.Option
		if opts.Prefix != "" {
			ropts = append(ropts, redis.WithPrefix(opts.Prefix))
		}
		if opts.TTL > 0 {
			ropts = append(ropts, redis.WithTTL(opts.TTL))
		}
		store := redis.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, ropts...)
		prefix := opts.Prefix
		if prefix == "" {
			prefix = "nest:"
		}
		return &Backend{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), prefix),
			close:  store.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown store %q (want memory, file or redis)", opts.Kind)
}
