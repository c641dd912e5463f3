package telemetry

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tomz197/marbles/internal/race/server"
)

const (
	readWait     = 60 * time.Second
	writeWait    = 10 * time.Second
	pingPeriod   = 54 * time.Second
	maxReadBytes = 512

	// DefaultInterval is how often a fresh snapshot is pushed.
	DefaultInterval = 100 * time.Millisecond
)

// Source is the part of the race server the hub needs.
type Source interface {
	RegisterSpectator(name string) *server.SpectatorHandle
	UnregisterSpectator(id int)
	GetSnapshot() *server.RaceSnapshot
}

// Options configures a Hub.
type Options struct {
	Interval time.Duration
	Logger   *log.Logger
}

// Hub upgrades HTTP requests to websockets and streams frames to them.
type Hub struct {
	source   Source
	upgrader websocket.Upgrader
	interval time.Duration
	logger   *log.Logger
}

// NewHub creates a hub fed by src.
func NewHub(src Source, opts Options) *Hub {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Hub{
		source: src,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		interval: opts.Interval,
		logger:   opts.Logger.With("component", "telemetry"),
	}
}

type client struct {
	conn   *websocket.Conn
	handle *server.SpectatorHandle
	done   chan struct{}
}

// ServeHTTP handles one spectator connection. The optional "name" query
// parameter labels the spectator.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "err", err)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "web"
	}
	c := &client{
		conn:   conn,
		handle: h.source.RegisterSpectator(name),
		done:   make(chan struct{}),
	}
	h.logger.Info("spectator connected", "id", c.handle.ID, "name", c.handle.Name, "remote", r.RemoteAddr)

	go h.handleWrites(c)
	h.handleReads(c)
}

// handleReads drains the connection until it fails, then unregisters the
// spectator.
func (h *Hub) handleReads(c *client) {
	defer func() {
		close(c.done)
		h.source.UnregisterSpectator(c.handle.ID)
		c.conn.Close()
		h.logger.Info("spectator disconnected", "id", c.handle.ID)
	}()

	c.conn.SetReadLimit(maxReadBytes)
	c.conn.SetReadDeadline(time.Now().Add(readWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(readWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("read error", "id", c.handle.ID, "err", err)
			}
			return
		}
	}
}

// handleWrites pushes snapshots, forwards events and keeps the connection
// alive with pings.
func (h *Hub) handleWrites(c *client) {
	frames := time.NewTicker(h.interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		frames.Stop()
		ping.Stop()
		c.conn.Close()
	}()

	lastRound, lastTick := -1, -1
	pushSnapshot := func() bool {
		snap := h.source.GetSnapshot()
		if snap == nil || (snap.Round == lastRound && snap.Tick == lastTick) {
			return true
		}
		lastRound, lastTick = snap.Round, snap.Tick
		return h.write(c, SnapshotFrame(snap))
	}

	if !pushSnapshot() {
		return
	}
	for {
		select {
		case <-c.done:
			return
		case ev, ok := <-c.handle.EventsCh:
			if !ok {
				h.closeConn(c)
				return
			}
			if !h.write(c, EventFrame(ev)) {
				return
			}
			if ev.Type == server.EventServerShutdown {
				h.closeConn(c)
				return
			}
		case <-frames.C:
			if !pushSnapshot() {
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) write(c *client, f Frame) bool {
	msg, err := Encode(f)
	if err != nil {
		h.logger.Error("dropping frame", "err", err)
		return true
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
		h.logger.Debug("write failed", "id", c.handle.ID, "err", err)
		return false
	}
	return true
}

func (h *Hub) closeConn(c *client) {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "race server shutting down"))
}
