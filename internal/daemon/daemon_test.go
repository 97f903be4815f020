package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cyncbridge/core/internal/hostadapter"
)

// stubHost is a minimal HostAdapter with an empty inventory, so
// daemon.Start succeeds without requiring a live cloud connection for
// these lifecycle tests.
type stubHost struct {
	intents chan hostadapter.Intent
}

func newStubHost() *stubHost {
	return &stubHost{intents: make(chan hostadapter.Intent)}
}

func (s *stubHost) ImportInventory() ([]hostadapter.Home, error)              { return nil, nil }
func (s *stubHost) NotifyState(uint32, hostadapter.StateUpdate)               {}
func (s *stubHost) ExposeCapabilities(uint32, hostadapter.CapabilitiesUpdate) {}
func (s *stubHost) UserIntents() <-chan hostadapter.Intent                    { return s.intents }

func writeTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()
	configPath := filepath.Join(tmpDir, "config.yml")
	content := `
cyncbridge:
  cloud:
    host: 127.0.0.1
    port: 1
    user_id: 1
    authorize: test-token
  timers:
    reconnect_floor: 50ms
    ping_interval: 1h
    probe_interval: 1h
  control:
    socket: ` + filepath.Join(tmpDir, "control.sock") + `
    pid_file: ` + filepath.Join(tmpDir, "daemon.pid") + `
  log:
    level: debug
    format: text
  homes:
    inventory_path: ` + filepath.Join(tmpDir, "homes.yml") + `
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath
}

func TestDaemonStartStopLifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeTestConfig(t, tmpDir)
	socketPath := filepath.Join(tmpDir, "control.sock")
	pidFile := filepath.Join(tmpDir, "daemon.pid")

	d, err := New(configPath, pidFile, newStubHost())
	require.NoError(t, err)
	require.NoError(t, d.Start())

	_, err = os.Stat(pidFile)
	require.NoError(t, err, "PID file should exist after Start")

	require.Eventually(t, func() bool {
		_, err := os.Stat(socketPath)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond, "control socket should exist after Start")

	runDone := make(chan error, 1)
	go func() { runDone <- d.Run() }()

	time.Sleep(50 * time.Millisecond)
	d.cancel()

	select {
	case err := <-runDone:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop within timeout")
	}

	_, err = os.Stat(pidFile)
	require.True(t, os.IsNotExist(err), "PID file should be removed after shutdown")
}

func TestDaemonReloadAppliesHotConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeTestConfig(t, tmpDir)
	pidFile := filepath.Join(tmpDir, "daemon.pid")

	d, err := New(configPath, pidFile, newStubHost())
	require.NoError(t, err)
	require.NoError(t, d.Start())
	defer d.Stop()

	require.NoError(t, os.WriteFile(configPath, []byte(`
cyncbridge:
  cloud:
    host: 127.0.0.1
    port: 1
    user_id: 1
    authorize: rotated-token
  timers:
    reconnect_floor: 50ms
    ping_interval: 1h
    probe_interval: 1h
  control:
    socket: `+filepath.Join(tmpDir, "control.sock")+`
    pid_file: `+pidFile+`
  log:
    level: debug
    format: text
  homes:
    inventory_path: `+filepath.Join(tmpDir, "homes.yml")+`
`), 0o644))

	require.NoError(t, d.Reload())
}
