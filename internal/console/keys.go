package console

import (
	"io"
)

// Command is a viewer key action.
type Command int

const (
	CommandNone Command = iota
	CommandQuit
	CommandReset
)

// keyStream delivers bytes read from r on a channel.
type keyStream struct {
	ch chan byte
}

// startKeys spawns a goroutine that reads from r until it fails.
func startKeys(r io.Reader) *keyStream {
	s := &keyStream{ch: make(chan byte, 64)}
	go func() {
		buf := make([]byte, 32)
		for {
			n, err := r.Read(buf)
			for _, b := range buf[:n] {
				s.ch <- b
			}
			if err != nil {
				close(s.ch)
				return
			}
		}
	}()
	return s
}

// poll drains pending bytes without blocking and returns the strongest
// command among them. closed is true once the reader is gone.
func (s *keyStream) poll() (cmd Command, closed bool) {
	if s == nil {
		return CommandNone, false
	}
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				return cmd, true
			}
			if c := parseKey(b); c > cmd {
				cmd = c
			}
		default:
			return cmd, false
		}
	}
}

func parseKey(b byte) Command {
	switch b {
	case 'q', 'Q', 3, 4: // Ctrl-C, Ctrl-D
		return CommandQuit
	case 'r', 'R':
		return CommandReset
	default:
		return CommandNone
	}
}
