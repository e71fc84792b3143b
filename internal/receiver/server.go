package receiver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/starford/kneeview/internal/storage"
)

// StoredCallback is invoked once per connection with the relative paths
// of every file stored on it.
type StoredCallback func(ctx context.Context, paths []string)

// Config holds receiver settings.
type Config struct {
	Addr         string
	MaxFileBytes int64
	IdleTimeout  time.Duration
}

// Server accepts connections and writes received files through storage.
type Server struct {
	cfg      Config
	store    storage.Provider
	logger   *slog.Logger
	onStored StoredCallback
}

// New creates a receiver. onStored may be nil.
func New(cfg Config, store storage.Provider, logger *slog.Logger, onStored StoredCallback) *Server {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Second
	}
	return &Server{cfg: cfg, store: store, logger: logger, onStored: onStored}
}

// ListenAndServe binds cfg.Addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("receiver: listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled. It closes ln and
// waits for open connections before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("receiver: listening", slog.String("addr", ln.Addr().String()))

	var wg sync.WaitGroup
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				wg.Wait()
				s.logger.Info("receiver: stopped")
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				wg.Wait()
				return nil
			}
			s.logger.Warn("receiver: accept failed", slog.String("error", err.Error()))
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handle(ctx, conn)
		}()
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	log := s.logger.With(
		slog.String("conn", uuid.New().String()[:8]),
		slog.String("remote", conn.RemoteAddr().String()))
	log.Debug("receiver: connection opened")

	var stored []string
	var total uint64
	for {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
		frame, err := ReadFrame(conn, s.cfg.MaxFileBytes)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Warn("receiver: connection aborted", slog.String("error", err.Error()))
			}
			break
		}

		rel, err := storage.PageName(frame.Name)
		if err != nil {
			log.Warn("receiver: rejected file", slog.String("name", frame.Name), slog.String("error", err.Error()))
			break
		}
		if err := s.store.Write(rel, frame.Data); err != nil {
			log.Error("receiver: store failed", slog.String("path", rel), slog.String("error", err.Error()))
			break
		}
		size := uint64(len(frame.Data))
		total += size
		stored = append(stored, rel)
		log.Info("receiver: stored", slog.String("path", rel), slog.String("size", humanize.Bytes(size)))
	}

	log.Debug("receiver: connection closed",
		slog.Int("files", len(stored)),
		slog.String("total", humanize.Bytes(total)))
	if len(stored) > 0 && s.onStored != nil {
		s.onStored(ctx, stored)
	}
}
