package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/nest/pkg/adapters/memory"
	"github.com/aretw0/nest/pkg/domain"
	"github.com/aretw0/nest/pkg/fsm"
	"github.com/aretw0/nest/pkg/ports"
	"github.com/aretw0/nest/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	ports.SnapshotStore
}

func (s *SlowStore) Load(ctx context.Context, id string) (*domain.Snapshot, error) {
	time.Sleep(5 * time.Millisecond)
	return s.SnapshotStore.Load(ctx, id)
}

func (s *SlowStore) Save(ctx context.Context, id string, snap *domain.Snapshot) error {
	time.Sleep(5 * time.Millisecond)
	return s.SnapshotStore.Save(ctx, id, snap)
}

func counterConfig() domain.StateConfig {
	return domain.StateConfig{
		Key:         "COUNTER",
		Transitions: []domain.Transition{domain.T("*", "*", "IDLE")},
	}
}

// newCounter returns a process whose root counts dispatched events in its data bag.
func newCounter() *fsm.Process {
	p := fsm.New(counterConfig())
	p.OnStateCreate(func(s *fsm.State) {
		if s.Parent() != nil {
			return
		}
		s.OnDump(func(ctx context.Context, s *fsm.State, data map[string]any) error {
			data["count"], _ = s.LocalData("count")
			return nil
		})
		s.OnRestore(func(ctx context.Context, s *fsm.State, data map[string]any) error {
			var saved struct{ Count int }
			if err := (domain.StateDump{Key: s.Key(), Data: data}).Decode(&saved); err != nil {
				return err
			}
			s.SetData("count", saved.Count)
			return nil
		})
	})
	return p
}

func increment(p *fsm.Process) {
	root := p.Current().Parent()
	n, _ := root.LocalData("count")
	count, _ := n.(int)
	root.SetData("count", count+1)
}

func TestManager_WithLockSerializesReadModifyWrite(t *testing.T) {
	mgr := session.NewManager(&SlowStore{memory.NewStore()})
	ctx := context.Background()
	id := "race-test"

	workers := 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := mgr.WithLock(ctx, id, func(ctx context.Context) error {
				p := newCounter()
				found, err := mgr.Resume(ctx, id, p)
				if err != nil {
					return err
				}
				if !found {
					p.Dispatch(ctx, "")
				}
				increment(p)
				_, err = mgr.Checkpoint(ctx, id, p)
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := mgr.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, workers, snap.Stack[0].Data["count"], "no update may be lost")
}

func TestManager_ResumeMissingSession(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	p := newCounter()

	found, err := mgr.Resume(context.Background(), "nope", p)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, p.Current())
}

type failingStore struct{ ports.SnapshotStore }

func (failingStore) Load(context.Context, string) (*domain.Snapshot, error) {
	return nil, errors.New("backend down")
}

func TestManager_ResumePropagatesStoreErrors(t *testing.T) {
	mgr := session.NewManager(failingStore{memory.NewStore()})
	_, err := mgr.Resume(context.Background(), "s", newCounter())
	assert.ErrorContains(t, err, "backend down")
}

type recordingLocker struct {
	mu     sync.Mutex
	locked []string
	ttl    time.Duration
	fail   error
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.fail != nil {
		return nil, l.fail
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked = append(l.locked, key)
	l.ttl = ttl
	return func(context.Context) error { return nil }, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &recordingLocker{}
	mgr := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, mgr.Save(ctx, "s1", &domain.Snapshot{}))
	_, err := mgr.Load(ctx, "s1")
	require.NoError(t, err)

	assert.Equal(t, []string{"s1", "s1"}, locker.locked)
	assert.Equal(t, time.Second, locker.ttl)

	locker.fail = errors.New("contended")
	err = mgr.Save(ctx, "s1", &domain.Snapshot{})
	assert.ErrorContains(t, err, "contended")
}
