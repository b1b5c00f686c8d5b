package archive

import "time"

// WriterConfig holds batch writer settings.
type WriterConfig struct {
	BatchSize     int           // Rows per database batch
	FlushInterval time.Duration // Max time a row waits before being flushed
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     1000,
		FlushInterval: 5 * time.Second,
	}
}

// WriterMetrics tracks writer activity.
type WriterMetrics struct {
	Inserts   int64 // Rows inserted
	Conflicts int64 // Rows skipped by ON CONFLICT
	Errors    int64 // Failed batch inserts
	Flushes   int64 // Flush operations
}
