package bridge

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cyncbridge/core/internal/config"
	"github.com/cyncbridge/core/internal/hostadapter/fileadapter"
	"github.com/cyncbridge/core/internal/protocol"
)

const fixtureYAML = `
homes:
  - id: 7
    bulbs:
      - device_id: 1007
        switch_id: 1000
        device_type: 7
        display_name: "Living Room Lamp"
`

// fakeCloud accepts one connection, completes the AUTH handshake
// successfully, and hands the caller the accepted net.Conn to drive
// the rest of the exchange.
func fakeCloud(t *testing.T) (addr string, accepted chan net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	accepted = make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		f, err := protocol.ReadFrame(conn)
		if err != nil || f.Type != protocol.PacketAuth {
			conn.Close()
			return
		}
		conn.Write(protocol.EncodeFrame(protocol.PacketAuth, []byte{0x00, 0x00}))
		accepted <- conn
	}()
	return ln.Addr().String(), accepted
}

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "homes.yml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureYAML), 0o644))
	return path
}

func TestCoreStartConnectsAndImportsInventory(t *testing.T) {
	addr, accepted := fakeCloud(t)
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	cfg := config.GlobalConfig{
		Cloud: config.CloudConfig{
			Host:      host,
			Port:      mustAtoi(port),
			UserID:    1,
			Authorize: "abcdef",
		},
		Timers: config.TimersConfig{
			ReconnectFloor: "50ms",
			PingInterval:   "1h",
			ProbeInterval:  "1h",
		},
	}

	adapter := fileadapter.New(writeFixture(t), nil)
	core, err := New(cfg, adapter, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, core.Start(ctx))

	select {
	case <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("cloud never received a connection")
	}

	require.Eventually(t, func() bool {
		status := core.Status()
		return status.SessionState == "connected" && len(status.Bulbs) == 1
	}, 2*time.Second, 10*time.Millisecond)

	status := core.Status()
	require.Equal(t, uint32(1000), status.Bulbs[0].SwitchID)

	core.Shutdown()
}

func TestCoreReloadUpdatesAuthorizeWithoutRestart(t *testing.T) {
	addr, accepted := fakeCloud(t)
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	cfg := config.GlobalConfig{
		Cloud: config.CloudConfig{
			Host:      host,
			Port:      mustAtoi(port),
			UserID:    1,
			Authorize: "initial",
		},
		Timers: config.TimersConfig{
			ReconnectFloor: "50ms",
			PingInterval:   "1h",
			ProbeInterval:  "1h",
		},
	}

	adapter := fileadapter.New(writeFixture(t), nil)
	core, err := New(cfg, adapter, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, core.Start(ctx))

	select {
	case <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("cloud never received a connection")
	}

	cfg.Cloud.Authorize = "rotated"
	require.NoError(t, core.Reload(cfg))

	core.Shutdown()
}

func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		panic(err)
	}
	return n
}
