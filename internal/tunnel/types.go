package tunnel

import (
	"errors"
	"time"

	"github.com/mwhittaker/remotegate/internal/auth"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// Frame wraps raw tunnel data with a receive timestamp.
type Frame struct {
	Data       []byte    // Raw frame bytes from the WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// ClientConfig configures a tunnel client.
type ClientConfig struct {
	URL          string           // WebSocket base URL (e.g., wss://gateway.example.com)
	ConnectionID string           // Identifier of the connection to tunnel
	Tokens       auth.TokenSource // Auth token source, consulted at dial time
	PingTimeout  time.Duration    // Max time without ping before considering connection stale
	WriteTimeout time.Duration    // Write deadline for sends
	BufferSize   int              // Frame channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   10000,
	}
}
