// Package postgres provides PostgreSQL implementations of the store
// interfaces. Each store accepts a store.DBTX, so the same implementation
// runs against a *sql.DB or a *sql.Tx; the WithTx variants rebind a store
// to an open transaction for atomic multi-write operations.
package postgres
