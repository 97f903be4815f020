// Package session owns the TCP connection to the Cync cloud: the
// AUTH handshake, keep-alive ping, reconnect debounce, and the
// pre-connect send queue. It runs as a single goroutine loop; all
// state mutation happens there.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cyncbridge/core/internal/protocol"
)

// State is a Session's position in the connection lifecycle.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateAuthenticating
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Dialer opens the TCP connection to the cloud. Production code uses
// DialTCP; tests supply a fake that connects to a local listener.
type Dialer func(ctx context.Context) (net.Conn, error)

// Config holds the connection parameters and protocol timers.
type Config struct {
	UserID         uint32
	Authorize      string
	ReconnectFloor time.Duration // default 10s
	PingInterval   time.Duration // default 180s
}

// DialTCP returns a Dialer that connects to host:port with TCP
// keep-alive enabled.
func DialTCP(host string, port int) Dialer {
	addr := fmt.Sprintf("%s:%d", host, port)
	d := net.Dialer{KeepAlive: 15 * time.Second}
	return func(ctx context.Context) (net.Conn, error) {
		return d.DialContext(ctx, "tcp", addr)
	}
}

type connResult struct {
	conn net.Conn
	err  error
}

// Session drives one logical connection to the cloud, reconnecting as
// needed. Construct with New, then run it with Run in its own goroutine.
type Session struct {
	cfg    Config
	dial   Dialer
	logger *slog.Logger

	mu                 sync.Mutex
	state              State
	conn               net.Conn
	lastConnectSuccess time.Time
	generation         uint64

	queue      sendQueue
	seq        atomic.Uint32
	kick       chan struct{}
	rawFrames  chan protocol.Frame
	inbound    chan protocol.Frame
	connLost   chan uint64
	connResult chan connResult

	reconnectTimer  *time.Timer
	pingTicker      *time.Ticker
	newPingInterval chan time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs a Session. Call Run to start its event loop.
func New(cfg Config, dial Dialer, logger *slog.Logger) *Session {
	if cfg.ReconnectFloor == 0 {
		cfg.ReconnectFloor = 10 * time.Second
	}
	if cfg.PingInterval == 0 {
		cfg.PingInterval = 180 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		cfg:             cfg,
		dial:            dial,
		logger:          logger,
		kick:            make(chan struct{}, 1),
		rawFrames:       make(chan protocol.Frame, 16),
		inbound:         make(chan protocol.Frame, 16),
		connLost:        make(chan uint64, 1),
		connResult:      make(chan connResult, 1),
		newPingInterval: make(chan time.Duration, 1),
		done:            make(chan struct{}),
	}
}

// Inbound returns the stream of decoded frames a Dispatcher should
// consume. AUTH responses handled internally by the handshake are not
// forwarded here.
func (s *Session) Inbound() <-chan protocol.Frame {
	return s.inbound
}

// NextSeq returns the next per-session monotonic sequence number,
// starting at 1 and wrapping at 16 bits (wraparound is permitted; the
// server does not require uniqueness across wrap).
func (s *Session) NextSeq() uint16 {
	return uint16(s.seq.Add(1))
}

// State reports the session's current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// SetAuthorize updates the token embedded in future AUTH frames. It
// takes effect at the next connect attempt, without a restart.
func (s *Session) SetAuthorize(authorize string) {
	s.mu.Lock()
	s.cfg.Authorize = authorize
	s.mu.Unlock()
}

// SetReconnectFloor updates the minimum interval between successful
// TCP connects, without a restart.
func (s *Session) SetReconnectFloor(d time.Duration) {
	s.mu.Lock()
	s.cfg.ReconnectFloor = d
	s.mu.Unlock()
}

// SetPingInterval updates the keep-alive ping cadence and resets the
// running ticker to use it, without a restart.
func (s *Session) SetPingInterval(d time.Duration) {
	s.mu.Lock()
	s.cfg.PingInterval = d
	s.mu.Unlock()
	select {
	case s.newPingInterval <- d:
	default:
	}
}

// Send enqueues a pre-built frame. If disconnected, it waits in the
// FIFO send queue until the next successful connect, which drains the
// queue in submission order before anything newly submitted. A send
// while disconnected is never dropped.
func (s *Session) Send(frame []byte) {
	s.queue.push(frame)
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Run starts the session's event loop and blocks until ctx is
// cancelled or Shutdown is called. It performs the first connect
// attempt immediately.
func (s *Session) Run(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	defer close(s.done)

	s.reconnectTimer = time.NewTimer(0)
	defer s.reconnectTimer.Stop()
	s.pingTicker = time.NewTicker(s.cfg.PingInterval)
	defer s.pingTicker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.closeConnLocked()
			return

		case <-s.reconnectTimer.C:
			if s.State() == StateDisconnected {
				s.setState(StateConnecting)
				go s.attemptConnect()
			}

		case res := <-s.connResult:
			s.handleConnResult(res)

		case <-s.pingTicker.C:
			if s.State() == StateConnected {
				s.writeDirect(protocol.EncodeFrame(protocol.PacketPing, nil))
			}

		case d := <-s.newPingInterval:
			s.pingTicker.Reset(d)

		case <-s.kick:
			s.flushIfConnected()

		case f := <-s.rawFrames:
			s.handleFrame(f)

		case gen := <-s.connLost:
			if gen == s.generation {
				s.handleConnLost()
			}
		}
	}
}

// Shutdown closes the socket, cancels timers, and drops the send
// queue. It does not notify the HostAdapter further.
func (s *Session) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.done
	s.queue.drain()
}

func (s *Session) attemptConnect() {
	conn, err := s.dial(s.ctx)
	select {
	case s.connResult <- connResult{conn: conn, err: err}:
	case <-s.ctx.Done():
		if conn != nil {
			conn.Close()
		}
	}
}

func (s *Session) handleConnResult(res connResult) {
	if res.err != nil {
		s.logger.Warn("connect failed", "err", res.err)
		s.setState(StateDisconnected)
		s.scheduleReconnect()
		return
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.conn = res.conn
	s.lastConnectSuccess = time.Now()
	userID, authorize := s.cfg.UserID, s.cfg.Authorize
	s.mu.Unlock()

	s.setState(StateAuthenticating)
	go s.readLoop(res.conn, gen)
	s.writeDirect(protocol.EncodeAuth(userID, authorize))
}

func (s *Session) readLoop(conn net.Conn, generation uint64) {
	for {
		f, err := protocol.ReadFrame(conn)
		if err != nil {
			select {
			case s.connLost <- generation:
			case <-s.ctx.Done():
			}
			return
		}
		select {
		case s.rawFrames <- f:
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Session) handleFrame(f protocol.Frame) {
	if s.State() == StateAuthenticating && f.Type == protocol.PacketAuth {
		ok, err := protocol.DecodeAuthResponse(f.Payload)
		if err != nil || !ok {
			s.logger.Warn("auth rejected", "err", err)
			s.closeConnLocked()
			s.setState(StateDisconnected)
			s.scheduleReconnect()
			return
		}
		s.setState(StateConnected)
		s.flushIfConnected()
		return
	}

	select {
	case s.inbound <- f:
	case <-s.ctx.Done():
	}
}

func (s *Session) handleConnLost() {
	s.closeConnLocked()
	s.setState(StateDisconnected)
	s.scheduleReconnect()
}

func (s *Session) flushIfConnected() {
	if s.State() != StateConnected {
		return
	}
	for _, frame := range s.queue.drain() {
		s.writeDirect(frame)
	}
}

func (s *Session) writeDirect(frame []byte) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}
	if _, err := conn.Write(frame); err != nil {
		s.logger.Warn("write failed", "err", err)
		s.handleConnLost()
	}
}

func (s *Session) closeConnLocked() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

// scheduleReconnect arms the reconnect timer respecting the configured
// reconnect floor (default 10s) since the last successful TCP connect.
func (s *Session) scheduleReconnect() {
	s.mu.Lock()
	last := s.lastConnectSuccess
	floor := s.cfg.ReconnectFloor
	s.mu.Unlock()

	var delay time.Duration
	if !last.IsZero() {
		delay = floor - time.Since(last)
		if delay < 0 {
			delay = 0
		}
	}
	s.reconnectTimer.Reset(delay)
}
