// Package archive implements the connection history archiver.
//
// The archiver:
//   - Polls the gateway API on an interval for the history of a configured
//     set of connections
//   - Buffers fetched records between the fetch loop and the writer
//   - Batch-inserts records into Postgres; re-polls are idempotent via
//     ON CONFLICT DO NOTHING on the session's natural key
package archive
