// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens SQLite connection pools with the pragmas the
// message recorder relies on: WAL journaling so the inspect tooling can
// read while a run is still recording, NORMAL synchronous for
// crash-safe commits without an fsync per message, and a busy timeout
// so concurrent publish workers queue on the write lock instead of
// failing.
//
// The package exposes zombiezen's types directly. Callers Take a
// connection, run SQL through sqlitex, and Put it back:
//
//	conn, err := pool.Take(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Put(conn)
package sqlitepool
