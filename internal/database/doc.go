// Package database provides connection pool management for the archive
// database (PostgreSQL).
package database
