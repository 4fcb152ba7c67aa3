package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"
)

const (
	defaultAddr         = "0.0.0.0:8080"
	defaultBacklog      = 5
	defaultPollInterval = time.Second
)

// Server serves files from Root, one connection at a time.
type Server struct {
	Addr    string
	Root    string
	Backlog int

	// PollInterval bounds how long Accept blocks before the server checks
	// whether it has been asked to stop.
	PollInterval time.Duration

	// ReadTimeout bounds the time a client may take to send its headers.
	// Zero means no limit.
	ReadTimeout time.Duration

	// RejectMalformed makes the server answer non-GET and oversized
	// requests with 400 Bad Request instead of closing silently.
	RejectMalformed bool

	// Confine rejects request paths that resolve outside Root.
	Confine bool

	Logger *slog.Logger

	// openFile replaces open in tests.
	openFile func(name string) (seekFile, error)
}

type deadliner interface {
	SetDeadline(t time.Time) error
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.Addr
	if addr == "" {
		addr = defaultAddr
	}
	backlog := s.Backlog
	if backlog <= 0 {
		backlog = defaultBacklog
	}

	l, err := Listen(addr, backlog)
	if err != nil {
		return err
	}
	s.logger().Info("listening", "addr", l.Addr().String(), "root", s.rootDir())
	return s.Serve(ctx, l)
}

// Serve accepts connections on l and handles each one to completion before
// accepting the next. It returns nil once ctx is cancelled; l is closed on
// return.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	defer l.Close()

	dl, canPoll := l.(deadliner)
	if !canPoll {
		stop := context.AfterFunc(ctx, func() { l.Close() })
		defer stop()
	}

	var tempDelay time.Duration
	for {
		if ctx.Err() != nil {
			s.logger().Info("server is shutting down")
			return nil
		}

		if canPoll {
			if err := dl.SetDeadline(time.Now().Add(s.pollInterval())); err != nil {
				return fmt.Errorf("set accept deadline: %w", err)
			}
		}

		conn, err := l.Accept()
		if ctx.Err() != nil {
			if conn != nil {
				conn.Close()
			}
			s.logger().Info("server is shutting down")
			return nil
		}
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				tempDelay = 0
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("accept: %w", err)
			}

			tempDelay = min(max(2*tempDelay, 5*time.Millisecond), s.pollInterval())
			s.logger().Warn("accept error", "err", err, "retry_in", tempDelay)
			select {
			case <-time.After(tempDelay):
			case <-ctx.Done():
			}
			continue
		}
		tempDelay = 0

		s.logger().Debug("accepted connection", "remote", conn.RemoteAddr().String())
		if err := s.handleConnection(conn); err != nil {
			s.logger().Warn("http error", "remote", conn.RemoteAddr().String(), "err", err)
		}
	}
}

func (s *Server) pollInterval() time.Duration {
	if s.PollInterval <= 0 {
		return defaultPollInterval
	}
	return s.PollInterval
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
