package model

import "github.com/google/uuid"

// HistoryRecord is one archived connection usage session.
type HistoryRecord struct {
	ID                   uuid.UUID // Row id, generated at archive time
	ConnectionIdentifier string    // Gateway connection identifier
	ConnectionName       string    // Connection display name at session time
	Username             string    // Authenticated user
	RemoteHost           string    // Client address, if the gateway reports one
	StartTS              int64     // Session start (µs since epoch)
	EndTS                int64     // Session end (µs since epoch), 0 while active
	Active               bool      // Session still in progress when fetched
	ArchivedAt           int64     // Fetch time (µs since epoch)
}
