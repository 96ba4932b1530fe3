// Package repositories implements SQLite persistence for client-local state.
//
// Key Implementations:
//   - [KVRepository] : durable key/value pairs; backs the session store, writes are transactional so
//     a multi-key save is all or nothing
//   - [ExportRunRepository] : history of bulk post exports
//
// The schema is owned by the embedded migrations in the shared package; open the database with
// shared.OpenMigrated before constructing a repository.
package repositories
