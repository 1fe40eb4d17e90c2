package audit

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// PlacementEvent is one terminal placement as it went out to the game.
type PlacementEvent struct {
	RoundID     int
	OptionKey   string
	VoterID     string
	DisplayName string
	X, Y        int
	VX, VY      int
	Source      string // "gesture" | "chat-slot"
	Delivered   bool   // whether the game bridge accepted the frame
	At          time.Time
}

// Log is an append-only record of terminal placement events. It is the only
// persistence in the system.
type Log struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite file at path and ensures the schema.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, stmt := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`CREATE TABLE IF NOT EXISTS placement_event (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			round_id     INTEGER NOT NULL,
			option_key   TEXT NOT NULL,
			voter_id     TEXT NOT NULL,
			display_name TEXT NOT NULL,
			x            INTEGER NOT NULL,
			y            INTEGER NOT NULL,
			vx           INTEGER NOT NULL,
			vy           INTEGER NOT NULL,
			source       TEXT NOT NULL,
			delivered    INTEGER NOT NULL,
			at           TIMESTAMP NOT NULL
		);`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Log{db: db}, nil
}

func (l *Log) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// AppendPlacement records one terminal placement. Rows are never updated or
// deleted.
func (l *Log) AppendPlacement(ctx context.Context, ev PlacementEvent) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO placement_event
			(round_id, option_key, voter_id, display_name, x, y, vx, vy, source, delivered, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.RoundID, ev.OptionKey, ev.VoterID, ev.DisplayName,
		ev.X, ev.Y, ev.VX, ev.VY, ev.Source, ev.Delivered, ev.At.UTC(),
	)
	return err
}

// RecentPlacements returns the newest events, newest first.
func (l *Log) RecentPlacements(ctx context.Context, limit int) ([]PlacementEvent, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT round_id, option_key, voter_id, display_name, x, y, vx, vy, source, delivered, at
		FROM placement_event ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlacementEvent
	for rows.Next() {
		var ev PlacementEvent
		if err := rows.Scan(&ev.RoundID, &ev.OptionKey, &ev.VoterID, &ev.DisplayName,
			&ev.X, &ev.Y, &ev.VX, &ev.VY, &ev.Source, &ev.Delivered, &ev.At); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
