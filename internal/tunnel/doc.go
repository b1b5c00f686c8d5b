// Package tunnel provides a WebSocket client for the gateway's
// websocket-tunnel endpoint. A tunnel carries the wire protocol for one
// active connection; frames are delivered raw with a local receive
// timestamp so callers can record or relay the session stream.
package tunnel
