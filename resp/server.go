// Package resp serves a store.Store over the Redis protocol.
//
// Only the commands the bpcache stores issue are implemented, so a go-redis
// client (and redis-cli) can talk to any in-process store. Connection
// handshake commands such as HELLO and CLIENT get "unknown command" errors,
// which clients treat as a RESP2 server.
package resp

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/redcon"

	"github.com/unkn0wn-root/bpcache"
	"github.com/unkn0wn-root/bpcache/store"
)

type Config struct {
	Addr   string // ip:port, ":0" picks a free port
	Store  store.Store
	Logger bpcache.Logger
}

type Server struct {
	h   *handler
	log bpcache.Logger
	srv *redcon.Server
}

func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("resp: store is required")
	}
	if cfg.Addr == "" {
		return nil, errors.New("resp: address is required")
	}
	s := &Server{
		h:   &handler{store: cfg.Store},
		log: cfg.Logger,
	}
	if s.log == nil {
		s.log = bpcache.NopLogger{}
	}
	s.srv = redcon.NewServerNetwork("tcp", cfg.Addr, s.serve,
		func(conn redcon.Conn) bool {
			s.log.Debug("resp: accept", bpcache.Fields{"remote": conn.RemoteAddr()})
			return true
		},
		func(conn redcon.Conn, err error) {
			if err != nil {
				s.log.Debug("resp: connection closed", bpcache.Fields{"remote": conn.RemoteAddr(), "err": err})
			}
		})
	return s, nil
}

func (s *Server) serve(conn redcon.Conn, rc redcon.Command) {
	cmd := parseCommand(rc)
	out := s.h.handle(context.Background(), cmd)
	if out.err != "" {
		s.log.Debug("resp: command failed", bpcache.Fields{"cmd": cmd.name, "err": out.err})
	}
	out.write(conn)
	if out.closeConn {
		if err := conn.Close(); err != nil {
			s.log.Warn("resp: close connection", bpcache.Fields{"err": err})
		}
	}
}

// Start listens and serves in the background. It returns once the listener
// is bound, or with the listen error.
func (s *Server) Start() error {
	signal := make(chan error, 1)
	go func() {
		if err := s.srv.ListenServeAndSignal(signal); err != nil {
			s.log.Error("resp: server stopped", bpcache.Fields{"err": err})
		}
	}()
	if err := <-signal; err != nil {
		return fmt.Errorf("resp: listen: %w", err)
	}
	s.log.Info("resp: listening", bpcache.Fields{"addr": s.Addr()})
	return nil
}

// Addr is the bound address. Valid after Start.
func (s *Server) Addr() string {
	return s.srv.Addr().String()
}

func (s *Server) Close() error {
	return s.srv.Close()
}

// ListenAndServe runs until ctx is done or the server fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- s.srv.ListenAndServe()
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		if err := s.srv.Close(); err != nil {
			return fmt.Errorf("resp: close: %w", err)
		}
		return nil
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("resp: server stopped unexpectedly: %w", err)
		}
		return nil
	}
}
