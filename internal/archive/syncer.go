package archive

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mwhittaker/remotegate/internal/api"
	"github.com/mwhittaker/remotegate/internal/model"
)

// IdentifierSource provides the connection identifiers to archive.
type IdentifierSource interface {
	ConnectionIdentifiers() []string
}

// StaticIdentifiers is a fixed list of connection identifiers.
type StaticIdentifiers []string

func (s StaticIdentifiers) ConnectionIdentifiers() []string {
	return s
}

// Config holds syncer configuration.
type Config struct {
	Interval    time.Duration // Sync interval (default: 15m)
	Concurrency int           // Max concurrent requests (default: 10)
	Timeout     time.Duration // Per-request timeout (default: 10s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:    15 * time.Minute,
		Concurrency: 10,
		Timeout:     10 * time.Second,
	}
}

// Syncer periodically fetches connection history from the gateway API and
// feeds records into the buffer for the writer.
type Syncer struct {
	cfg    Config
	client *api.Client
	source IdentifierSource
	buffer *Buffer[model.HistoryRecord]
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncer creates a new Syncer.
func NewSyncer(cfg Config, client *api.Client, source IdentifierSource, buffer *Buffer[model.HistoryRecord], logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		cfg:    cfg,
		client: client,
		source: source,
		buffer: buffer,
		logger: logger,
	}
}

// Start begins the sync loop.
func (s *Syncer) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run()

	s.logger.Info("history syncer started",
		"interval", s.cfg.Interval,
		"concurrency", s.cfg.Concurrency,
	)

	return nil
}

// Stop gracefully shuts down the syncer.
func (s *Syncer) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("history syncer stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main sync loop.
func (s *Syncer) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	// Sync immediately on start.
	s.syncAll()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.syncAll()
		}
	}
}

// syncAll fetches history for all configured connections concurrently.
func (s *Syncer) syncAll() {
	start := time.Now()

	ids := s.source.ConnectionIdentifiers()
	if len(ids) == 0 {
		s.logger.Debug("no connections to sync")
		return
	}

	// Semaphore for bounded concurrency.
	sem := make(chan struct{}, s.cfg.Concurrency)
	var wg sync.WaitGroup
	var fetched, errors atomic.Int64

	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			// Acquire semaphore slot.
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-s.ctx.Done():
				return
			}

			n, err := s.syncConnection(id)
			if err != nil {
				s.logger.Warn("failed to sync connection",
					"connection", id,
					"err", err,
				)
				errors.Add(1)
				return
			}

			fetched.Add(n)
		}(id)
	}

	wg.Wait()

	s.logger.Info("sync cycle complete",
		"connections", len(ids),
		"records", fetched.Load(),
		"errors", errors.Load(),
		"duration", time.Since(start),
	)
}

// syncConnection fetches and buffers a single connection's history.
func (s *Syncer) syncConnection(id string) (int64, error) {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.Timeout)
	defer cancel()

	entries, err := s.client.GetConnectionHistory(ctx, id)
	if err != nil {
		return 0, err
	}

	var buffered int64
	for _, entry := range entries {
		if !s.buffer.Send(entry.ToModel()) {
			break
		}
		buffered++
	}

	return buffered, nil
}
