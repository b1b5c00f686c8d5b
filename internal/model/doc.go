// Package model defines shared data types for archived gateway data.
//
// Conventions:
//   - Timestamps: int64 microseconds since Unix epoch
//   - IDs: string for gateway identifiers, uuid.UUID for archive row ids
package model
