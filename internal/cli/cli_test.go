package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/nest/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doorYAML = `
key: Door
transitions:
  - ["", "*", "Closed"]
  - ["Closed", "open", "Opened"]
  - ["Opened", "close", "Closed"]
  - ["Closed", "lock", ""]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn", false)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	nop, err := NewLogger(&buf, "", false)
	require.NoError(t, err)
	assert.NotNil(t, nop)

	_, err = NewLogger(&buf, "loud", false)
	assert.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	t.Run("Memory by default", func(t *testing.T) {
		b, err := OpenStore(StoreOptions{})
		require.NoError(t, err)
		assert.NotNil(t, b.Store)
		assert.Nil(t, b.Locker)
		assert.NoError(t, b.Close())
	})

	t.Run("File", func(t *testing.T) {
		dir := t.TempDir()
		b, err := OpenStore(StoreOptions{Kind: StoreFile, Dir: dir})
		require.NoError(t, err)
		require.NoError(t, b.Store.Save(context.Background(), "s1", &domain.Snapshot{}))
		_, err = os.Stat(filepath.Join(dir, "s1.json"))
		assert.NoError(t, err)
	})

	t.Run("Redis with locker", func(t *testing.T) {
		mr := miniredis.RunT(t)
		b, err := OpenStore(StoreOptions{Kind: StoreRedis, RedisAddr: mr.Addr(), Prefix: "test:"})
		require.NoError(t, err)
		defer b.Close()
		require.NotNil(t, b.Locker)

		ctx := context.Background()
		unlock, err := b.Locker.Lock(ctx, "s1", time.Second)
		require.NoError(t, err)
		assert.True(t, mr.Exists("test:lock:s1"))
		require.NoError(t, unlock(ctx))
		assert.False(t, mr.Exists("test:lock:s1"))
	})

	t.Run("Redis without address", func(t *testing.T) {
		_, err := OpenStore(StoreOptions{Kind: StoreRedis})
		assert.Error(t, err)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := OpenStore(StoreOptions{Kind: "tape"})
		assert.ErrorContains(t, err, "unknown store")
	})
}

func TestNewEngine(t *testing.T) {
	dir := t.TempDir()
	var spans bytes.Buffer
	eng, err := NewEngine(EngineOptions{
		ConfigPath: writeFile(t, dir, "door.yaml", doorYAML),
		Store:      StoreOptions{Kind: StoreFile, Dir: filepath.Join(dir, "sessions")},
		Registerer: prometheus.NewRegistry(),
		SpanOutput: &spans,
	})
	require.NoError(t, err)

	ctx := context.Background()
	info, err := eng.Start(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Door", "Closed"}, info.Path)

	info, err = eng.Dispatch(ctx, "s1", "open")
	require.NoError(t, err)
	assert.Equal(t, []string{"Door", "Opened"}, info.Path)

	ids, err := eng.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)

	require.NoError(t, eng.Close(ctx))
	assert.Contains(t, spans.String(), "nest.start")
	assert.Contains(t, spans.String(), "nest.dispatch")
}

func TestNewEngine_MissingConfig(t *testing.T) {
	_, err := NewEngine(EngineOptions{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestRun_Events(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), RunOptions{
		ConfigPath: writeFile(t, t.TempDir(), "door.yaml", doorYAML),
		Events:     []string{"open", "close", "lock"},
		Output:     &out,
	})
	require.NoError(t, err)
	assert.Equal(t, "= Door/Closed\n= Door/Opened\n= Door/Closed\n= finished\n", out.String())
}

func TestRun_Stop(t *testing.T) {
	path := writeFile(t, t.TempDir(), "door.yaml", doorYAML)

	var out bytes.Buffer
	err := Run(context.Background(), RunOptions{
		ConfigPath: path,
		Stop:       "enter",
		Events:     []string{"open"},
		Output:     &out,
	})
	require.NoError(t, err)
	assert.Equal(t, "= Door [first]\n= Door/Closed [first]\n", out.String())

	err = Run(context.Background(), RunOptions{ConfigPath: path, Stop: "lef", Output: &out})
	assert.ErrorContains(t, err, "unknown phase")
}

func TestRun_TraceShutsDownAtEndOfInput(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), RunOptions{
		ConfigPath: writeFile(t, t.TempDir(), "door.yaml", doorYAML),
		Input:      strings.NewReader("open\n"),
		Output:     &out,
		Trace:      true,
	})
	require.NoError(t, err)

	expected := strings.Join([]string{
		`<Door event="start">`,
		`  <Closed event="start">`,
		`= Door/Closed`,
		`  </Closed> <!-- event="open" -->`,
		`  <Opened event="open">`,
		`= Door/Opened`,
		`  </Opened> <!-- event="interrupt" -->`,
		`</Door> <!-- event="interrupt" -->`,
	}, "\n") + "\n"
	assert.Equal(t, expected, out.String())
}

func TestRun_Interrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := Run(ctx, RunOptions{
		ConfigPath: writeFile(t, t.TempDir(), "door.yaml", doorYAML),
		Input:      strings.NewReader("open\n"),
		Output:     &out,
	})
	assert.NoError(t, err)
	assert.Equal(t, "= Door/Closed\n", out.String())
}

func TestLaunch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "door.yaml", doorYAML)
	manifest := writeFile(t, dir, "nest.yaml", `
start: [main, audit]
processes:
  - name: main
    file: door.yaml
  - name: audit
    config:
      key: Audit
      transitions:
        - ["", "*", "Idle"]
`)

	var out bytes.Buffer
	err := Launch(context.Background(), LaunchOptions{
		ManifestPath: manifest,
		Input:        strings.NewReader("open\naudit ping\nghost wake\n"),
		Output:       &out,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"= main: Door/Opened",
		`! audit: event not enabled: "ping" at Audit/Idle`,
		`! process "ghost" is not running`,
	}, lines)
}

func TestInterruptibleReader(t *testing.T) {
	cancel := make(chan struct{})
	r := NewInterruptibleReader(strings.NewReader("abc"), cancel)
	buf := make([]byte, 8)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf[:n]))

	close(cancel)
	_, err = r.Read(buf)
	assert.True(t, isInterrupted(err))
	assert.NoError(t, handleExecutionError(err))
}
