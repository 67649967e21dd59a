// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/simsensor/lib/sqlitepool"
)

const recorderSchema = `
CREATE TABLE IF NOT EXISTS messages (
	id        INTEGER PRIMARY KEY,
	topic     TEXT    NOT NULL,
	type      TEXT    NOT NULL,
	sequence  INTEGER NOT NULL,
	timestamp INTEGER NOT NULL,
	payload   BLOB    NOT NULL
);
CREATE INDEX IF NOT EXISTS messages_topic_sequence ON messages (topic, sequence);
`

// RecorderSink records envelopes into a SQLite database.
type RecorderSink struct {
	pool *sqlitepool.Pool
}

// OpenRecorder opens (creating if needed) the database at path.
func OpenRecorder(path string, logger *slog.Logger) (*RecorderSink, error) {
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   path,
		Logger: logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, recorderSchema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("channel: opening recorder: %w", err)
	}
	return &RecorderSink{pool: pool}, nil
}

// Write implements Sink.
func (r *RecorderSink) Write(ctx context.Context, envelope *Envelope) error {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn,
		"INSERT INTO messages (topic, type, sequence, timestamp, payload) VALUES (?, ?, ?, ?, ?)",
		&sqlitex.ExecOptions{Args: []any{
			envelope.Topic,
			envelope.Type,
			int64(envelope.Sequence),
			envelope.Timestamp,
			[]byte(envelope.Payload),
		}})
	if err != nil {
		return fmt.Errorf("recording %q #%d: %w", envelope.Topic, envelope.Sequence, err)
	}
	return nil
}

// Count returns the number of recorded messages on topic.
func (r *RecorderSink) Count(ctx context.Context, topic string) (int, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return 0, err
	}
	defer r.pool.Put(conn)

	var count int
	err = sqlitex.Execute(conn, "SELECT COUNT(*) FROM messages WHERE topic = ?", &sqlitex.ExecOptions{
		Args: []any{topic},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("counting %q: %w", topic, err)
	}
	return count, nil
}

// Messages returns every recorded envelope on topic in sequence order.
func (r *RecorderSink) Messages(ctx context.Context, topic string) ([]*Envelope, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Put(conn)

	var envelopes []*Envelope
	err = sqlitex.Execute(conn,
		"SELECT topic, type, sequence, timestamp, payload FROM messages WHERE topic = ? ORDER BY sequence",
		&sqlitex.ExecOptions{
			Args: []any{topic},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				payload := make([]byte, stmt.ColumnLen(4))
				stmt.ColumnBytes(4, payload)
				envelopes = append(envelopes, &Envelope{
					Topic:     stmt.ColumnText(0),
					Type:      stmt.ColumnText(1),
					Sequence:  uint64(stmt.ColumnInt64(2)),
					Timestamp: stmt.ColumnInt64(3),
					Payload:   payload,
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", topic, err)
	}
	return envelopes, nil
}

// Close implements Sink.
func (r *RecorderSink) Close() error {
	return r.pool.Close()
}
