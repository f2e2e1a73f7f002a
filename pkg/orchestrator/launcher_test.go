package orchestrator_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/nest/pkg/loader"
	"github.com/aretw0/nest/pkg/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifestYAML = `
start: [main, audit]
context:
  user: guest
processes:
  - name: main
    config:
      key: Main
      transitions:
        - ["", "*", "Home"]
        - ["Home", "open", "Details"]
  - name: audit
    config:
      key: Audit
  - name: popup
    config:
      key: Popup
`

func TestLauncher_Run(t *testing.T) {
	ctx := context.Background()
	m, err := loader.ParseManifest([]byte(manifestYAML))
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		users = map[string]any{}
		popup *orchestrator.Instance
	)
	reg := orchestrator.NewRegistry()
	reg.RegisterHandlers("main", orchestrator.Module{
		orchestrator.DefaultName: {orchestrator.Handle(func(_ context.Context, c *orchestrator.Context) error {
			v, _ := c.Get("user")
			mu.Lock()
			users["main"] = v
			mu.Unlock()
			return nil
		})},
		"DetailsView": {orchestrator.Handle(func(ctx context.Context, c *orchestrator.Context) error {
			inst, err := c.Launch(ctx, "popup")
			mu.Lock()
			popup = inst
			mu.Unlock()
			return err
		})},
	})
	reg.RegisterHandlers("audit", orchestrator.Module{
		orchestrator.DefaultName: {orchestrator.Handle(func(_ context.Context, c *orchestrator.Context) error {
			v, _ := c.Get("user")
			mu.Lock()
			users["audit"] = v
			mu.Unlock()
			return nil
		})},
	})

	l := orchestrator.NewLauncher(reg)
	shutdown, err := l.Run(ctx, m)
	require.NoError(t, err)

	instances := l.Instances()
	require.Len(t, instances, 2)
	assert.Equal(t, "main", instances[0].Name())
	assert.Equal(t, "audit", instances[1].Name())
	assert.Equal(t, []string{"Main", "Home"}, instances[0].Context().States())
	assert.Equal(t, []string{"Audit"}, instances[1].Context().States())

	mu.Lock()
	assert.Equal(t, map[string]any{"main": "guest", "audit": "guest"}, users)
	mu.Unlock()

	require.NoError(t, instances[0].Dispatch(ctx, "open"))
	mu.Lock()
	child := popup
	mu.Unlock()
	require.NotNil(t, child)
	assert.Equal(t, []string{"Popup"}, child.Context().States())
	assert.Same(t, instances[0].Context(), child.Context().Parent())
	v, ok := child.Context().Get("user")
	assert.True(t, ok)
	assert.Equal(t, "guest", v)

	require.NoError(t, shutdown(ctx))
	for _, inst := range append(instances, child) {
		select {
		case <-inst.Done():
		case <-time.After(time.Second):
			t.Fatalf("%s still running", inst.Name())
		}
	}
	assert.Empty(t, l.Instances())
}

func TestLauncher_UnknownProcessRunsDefaultRoot(t *testing.T) {
	ctx := context.Background()
	l := orchestrator.NewLauncher(orchestrator.NewRegistry())

	inst, err := l.Launch(ctx, "adhoc", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{orchestrator.DefaultRootKey}, inst.Context().States())
	assert.Same(t, l.Context(), inst.Context().Parent())
	require.NoError(t, l.Shutdown(ctx))
}

func TestLauncher_RunUnwindsWhenContextExpires(t *testing.T) {
	m, err := loader.ParseManifest([]byte(manifestYAML))
	require.NoError(t, err)

	reg := orchestrator.NewRegistry()
	reg.RegisterHandlers("audit", orchestrator.Module{
		orchestrator.DefaultName: {orchestrator.Handle(func(context.Context, *orchestrator.Context) error {
			time.Sleep(50 * time.Millisecond)
			return nil
		})},
	})
	l := orchestrator.NewLauncher(reg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	shutdown, err := l.Run(ctx, m)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, shutdown)

	assert.Empty(t, l.Instances())
	_, err = reg.Config("main")
	assert.Error(t, err)
}
