package api

// Connection is a connection record as represented by the gateway API.
//
// Identifier is empty for a connection that has not been created yet; the
// server assigns one on create. Protocol and display attributes are carried
// opaquely and never interpreted by this client.
type Connection struct {
	Identifier       string            `json:"identifier,omitempty"`
	ParentIdentifier string            `json:"parentIdentifier,omitempty"`
	Name             string            `json:"name,omitempty"`
	Protocol         string            `json:"protocol,omitempty"`
	Attributes       map[string]string `json:"attributes,omitempty"`
	Parameters       map[string]string `json:"parameters,omitempty"`
}

// HistoryEntry describes one historical usage session of a connection. The
// structure is defined by the remote API; fields are passed through as-is.
type HistoryEntry struct {
	ConnectionIdentifier string `json:"connectionIdentifier"`
	ConnectionName       string `json:"connectionName"`
	Username             string `json:"username"`
	RemoteHost           string `json:"remoteHost,omitempty"`

	// Timestamps in milliseconds since epoch; EndDate is 0 while the
	// session is still active.
	StartDate int64 `json:"startDate"`
	EndDate   int64 `json:"endDate,omitempty"`

	Active bool `json:"active"`
}
