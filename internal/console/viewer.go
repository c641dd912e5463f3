package console

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/marbles/internal/race/config"
	"github.com/tomz197/marbles/internal/race/server"
)

const maxEventLines = 5

// ViewerOptions configures a Viewer.
type ViewerOptions struct {
	Name         string
	TrackLength  float64
	TermSizeFunc TermSizeFunc
	FrameTime    time.Duration
	// ShutdownLinger is how long the shutdown notice stays up.
	ShutdownLinger time.Duration
	// AllowReset lets the viewer press r to rerun the race.
	AllowReset bool
	Logger     *log.Logger
}

// Viewer renders a live standings board for one spectator.
type Viewer struct {
	server   server.RaceServer
	handle   *server.SpectatorHandle
	board    Board
	writer   io.Writer
	chunks   *ChunkWriter
	keys     *keyStream
	events   []string
	opts     ViewerOptions
	shutdown time.Time
	logger   *log.Logger
}

// NewViewer registers a spectator with rs. r supplies key presses and may
// be nil for a passive board.
func NewViewer(rs server.RaceServer, r io.Reader, w io.Writer, opts ViewerOptions) *Viewer {
	if opts.TermSizeFunc == nil {
		opts.TermSizeFunc = DefaultTermSizeFunc
	}
	if opts.FrameTime <= 0 {
		opts.FrameTime = config.ConsoleTargetFrameTime
	}
	if opts.ShutdownLinger <= 0 {
		opts.ShutdownLinger = time.Duration(config.ShutdownDisplaySeconds * float64(time.Second))
	}
	if opts.TrackLength <= 0 {
		opts.TrackLength = config.TrackLength
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	v := &Viewer{
		server: rs,
		handle: rs.RegisterSpectator(opts.Name),
		board:  Board{TrackLength: opts.TrackLength},
		writer: w,
		chunks: NewChunkWriter(w),
		opts:   opts,
		logger: opts.Logger.With("component", "console"),
	}
	if r != nil {
		v.keys = startKeys(r)
	}
	return v
}

// Run draws frames until ctx is cancelled, the spectator quits or the
// server shuts down. The spectator is unregistered on return.
func (v *Viewer) Run(ctx context.Context) error {
	HideCursor(v.writer)
	defer ShowCursor(v.writer)
	ClearScreen(v.writer)
	defer v.server.UnregisterSpectator(v.handle.ID)

	for {
		frameStart := time.Now()

		select {
		case <-ctx.Done():
			return v.draw()
		default:
		}

		cmd, closed := v.keys.poll()
		if cmd == CommandQuit || closed {
			return nil
		}
		if cmd == CommandReset && v.opts.AllowReset {
			v.server.Reset(nil)
		}

		if !v.processEvents() {
			return v.draw()
		}
		if !v.shutdown.IsZero() && time.Since(v.shutdown) >= v.opts.ShutdownLinger {
			return nil
		}

		if err := v.draw(); err != nil {
			return err
		}

		elapsed := time.Since(frameStart)
		if elapsed < v.opts.FrameTime {
			time.Sleep(v.opts.FrameTime - elapsed)
		}
	}
}

// processEvents turns server events into board messages. It returns false
// once the server has closed the event channel.
func (v *Viewer) processEvents() bool {
	for {
		select {
		case ev, ok := <-v.handle.EventsCh:
			if !ok {
				return false
			}
			switch ev.Type {
			case server.EventWinner:
				v.note(fmt.Sprintf("round %d: %s wins!", ev.Round, ev.Name))
			case server.EventEliminated:
				v.note(fmt.Sprintf("%s fell off the track", ev.Name))
			case server.EventRoundReset:
				v.note(fmt.Sprintf("round %d started", ev.Round))
			case server.EventServerShutdown:
				v.note("server is shutting down")
				if v.shutdown.IsZero() {
					v.shutdown = time.Now()
				}
			}
		default:
			return true
		}
	}
}

func (v *Viewer) note(msg string) {
	v.events = append(v.events, msg)
	if len(v.events) > maxEventLines {
		v.events = v.events[len(v.events)-maxEventLines:]
	}
}

// Events returns the recent event messages, oldest first.
func (v *Viewer) Events() []string {
	return append([]string(nil), v.events...)
}

func (v *Viewer) draw() error {
	if w, _, err := v.opts.TermSizeFunc(); err == nil {
		v.board.Width = w
	}
	v.board.Render(v.chunks, v.server.GetSnapshot(), v.events)
	if err := v.chunks.Flush(); err != nil {
		v.logger.Debug("frame write failed", "id", v.handle.ID, "err", err)
		return err
	}
	return nil
}
