package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/mcoot/symbolduel/internal/model"
	"github.com/mcoot/symbolduel/internal/storage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MatchStore keeps the history of finished matches in PostgreSQL
type MatchStore struct {
	conn   *sql.DB
	logger *slog.Logger
}

// Ensure MatchStore implements the interface
var _ storage.MatchStore = (*MatchStore)(nil)

// Connect opens and verifies a connection to the database
func Connect(ctx context.Context, dsn string, logger *slog.Logger) (*MatchStore, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	logger = logger.With(slog.String("component", "postgres"))
	logger.Info("connected to postgres")
	return &MatchStore{conn: conn, logger: logger}, nil
}

// Close closes the database connection
func (m *MatchStore) Close() error {
	return m.conn.Close()
}

// Migrate applies the embedded schema migrations in name order
func (m *MatchStore) Migrate(ctx context.Context) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations dir: %w", err)
	}

	for _, entry := range entries {
		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}
		if _, err := m.conn.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", entry.Name(), err)
		}
		m.logger.Info("applied migration", slog.String("migration", entry.Name()))
	}
	return nil
}

// SaveMatch writes a match and its final scores in one transaction
func (m *MatchStore) SaveMatch(ctx context.Context, match *model.MatchRecord) error {
	tx, err := m.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO matches (id, room_id, winner_user_id, rounds, finished_at)
		VALUES ($1, $2, $3, $4, $5)
	`, match.ID, string(match.RoomID), string(match.WinnerUserID), match.Rounds, match.FinishedAt)
	if err != nil {
		return fmt.Errorf("inserting match: %w", err)
	}

	for userID, score := range match.Scores {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO match_scores (match_id, user_id, score)
			VALUES ($1, $2, $3)
		`, match.ID, string(userID), score)
		if err != nil {
			return fmt.Errorf("inserting match score: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing match: %w", err)
	}
	return nil
}

// ListMatches returns a room's finished matches, oldest first
func (m *MatchStore) ListMatches(ctx context.Context, roomID model.RoomID) ([]*model.MatchRecord, error) {
	rows, err := m.conn.QueryContext(ctx, `
		SELECT m.id, m.winner_user_id, m.rounds, m.finished_at, s.user_id, s.score
		FROM matches m
		LEFT JOIN match_scores s ON s.match_id = m.id
		WHERE m.room_id = $1
		ORDER BY m.finished_at, m.id
	`, string(roomID))
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	matches := []*model.MatchRecord{}
	byID := make(map[string]*model.MatchRecord)
	for rows.Next() {
		var (
			id, winner string
			rounds     int
			record     model.MatchRecord
			userID     sql.NullString
			score      sql.NullInt64
		)
		if err := rows.Scan(&id, &winner, &rounds, &record.FinishedAt, &userID, &score); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}

		match, ok := byID[id]
		if !ok {
			record.ID = id
			record.RoomID = roomID
			record.WinnerUserID = model.UserID(winner)
			record.Rounds = rounds
			record.Scores = make(map[model.UserID]int)
			match = &record
			byID[id] = match
			matches = append(matches, match)
		}
		if userID.Valid {
			match.Scores[model.UserID(userID.String)] = int(score.Int64)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}
	return matches, nil
}
