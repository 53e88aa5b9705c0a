// Package score persists best scores: the lowest move count a player has
// finished a theme in.
//
// Three Store backends are provided. MemoryStore lives as long as the
// process, FileStore keeps a single JSON object on disk and SQLiteStore
// uses modernc.org/sqlite. Reads never fail: a value that is missing or
// cannot be decoded is reported as no score. Record applies the
// lower-is-better rule on top of any Store.
package score
