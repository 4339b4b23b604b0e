// Package repositories implements client-side persistence.
//
// Two concerns live here:
//   - [Store] : a small key/value slot store holding the bearer credential and other client state.
//     [SQLiteStore] persists to the kv_store table, [MemoryStore] keeps values in process for tests and one-shot runs.
//   - [MovieRepository] : a SQLite cache of movie details used as an offline fallback and filled by bulk exports.
//
// A missing key is not an error: [Store.Get] returns ("", nil), so callers can treat "absent" and "empty" alike.
package repositories
