package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/thronescan/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "thronescan.db"

// HistoryDB stores processed batches and the per-player rows they produced
// in a single SQLite file.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	-- One row per processed batch; the full batch is kept as JSON
	CREATE TABLE IF NOT EXISTS batches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fingerprint TEXT NOT NULL,
		batch_date TEXT NOT NULL,
		filter_color TEXT NOT NULL,
		enemy_label TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		summary_json TEXT NOT NULL,
		batch_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_batches_fingerprint ON batches(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_batches_date ON batches(batch_date);

	-- Accepted players, one row per player per batch
	CREATE TABLE IF NOT EXISTS player_stats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id INTEGER NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
		batch_date TEXT NOT NULL,
		name TEXT NOT NULL COLLATE NOCASE,
		team TEXT NOT NULL,
		class TEXT NOT NULL,
		kills INTEGER NOT NULL,
		assists INTEGER NOT NULL,
		damage_done INTEGER NOT NULL,
		damage_received INTEGER NOT NULL,
		healing INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_player_stats_name ON player_stats(name);
	CREATE INDEX IF NOT EXISTS idx_player_stats_batch ON player_stats(batch_id);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// BatchMetadata is the listing view of a stored batch.
type BatchMetadata struct {
	ID          int64         `json:"id"`
	Fingerprint string        `json:"fingerprint"`
	Date        string        `json:"date"`
	FilterColor model.Color   `json:"filter_color"`
	Timestamp   time.Time     `json:"timestamp"`
	Summary     model.Summary `json:"summary"`
}

// PlayerRecord is one stored appearance of a player.
type PlayerRecord struct {
	BatchID int64 `json:"batch_id"`
	model.Player
}

// SaveBatch stores batch and its players in one transaction and sets
// batch.ID.
func (h *HistoryDB) SaveBatch(ctx context.Context, batch *model.Batch) (int64, error) {
	batchJSON, err := json.Marshal(batch)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize batch: %w", err)
	}
	summaryJSON, err := json.Marshal(batch.Summarize())
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // Rollback after Commit is a no-op
	}()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO batches (fingerprint, batch_date, filter_color, enemy_label, summary_json, batch_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`,
		batch.Fingerprint,
		batch.Date,
		string(batch.FilterColor),
		batch.EnemyLabel,
		string(summaryJSON),
		string(batchJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save batch: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO player_stats (batch_id, batch_date, name, team, class, kills, assists, damage_done, damage_received, healing)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare player insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range batch.Players {
		if _, err := stmt.ExecContext(ctx, id, p.Date, p.Name, p.Team, p.Class,
			p.Kills, p.Assists, p.DamageDone, p.DamageReceived, p.Healing); err != nil {
			return 0, fmt.Errorf("failed to save player %s: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}

	batch.ID = id
	return id, nil
}

// FindByFingerprint returns the most recent batch with the given
// fingerprint, or nil when none exists.
func (h *HistoryDB) FindByFingerprint(ctx context.Context, fingerprint string) (*BatchMetadata, error) {
	if fingerprint == "" {
		return nil, nil
	}

	row := h.db.QueryRowContext(ctx, `
	SELECT id, fingerprint, batch_date, filter_color, timestamp, summary_json
	FROM batches
	WHERE fingerprint = ?
	ORDER BY id DESC
	LIMIT 1
	`, fingerprint)

	meta, err := scanMetadata(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find batch: %w", err)
	}
	return meta, nil
}

// ListBatches returns stored batches, newest first. A positive limit
// caps the number of results.
func (h *HistoryDB) ListBatches(ctx context.Context, limit int) ([]BatchMetadata, error) {
	query := `
	SELECT id, fingerprint, batch_date, filter_color, timestamp, summary_json
	FROM batches
	ORDER BY batch_date DESC, id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	var results []BatchMetadata
	for rows.Next() {
		meta, err := scanMetadata(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		results = append(results, *meta)
	}
	return results, rows.Err()
}

// GetBatchByID retrieves a stored batch, or nil when the ID is unknown.
func (h *HistoryDB) GetBatchByID(ctx context.Context, id int64) (*model.Batch, error) {
	var batchJSON string
	err := h.db.QueryRowContext(ctx, `SELECT batch_json FROM batches WHERE id = ?`, id).Scan(&batchJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}

	var batch model.Batch
	if err := json.Unmarshal([]byte(batchJSON), &batch); err != nil {
		return nil, fmt.Errorf("failed to parse batch: %w", err)
	}
	batch.ID = id
	return &batch, nil
}

// PlayerHistory returns every stored appearance of the named player,
// oldest first. Names match without regard to case.
func (h *HistoryDB) PlayerHistory(ctx context.Context, name string) ([]PlayerRecord, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT batch_id, batch_date, name, team, class, kills, assists, damage_done, damage_received, healing
	FROM player_stats
	WHERE name = ?
	ORDER BY batch_date ASC, batch_id ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get player history: %w", err)
	}
	defer rows.Close()

	var results []PlayerRecord
	for rows.Next() {
		var rec PlayerRecord
		if err := rows.Scan(
			&rec.BatchID,
			&rec.Date,
			&rec.Name,
			&rec.Team,
			&rec.Class,
			&rec.Kills,
			&rec.Assists,
			&rec.DamageDone,
			&rec.DamageReceived,
			&rec.Healing,
		); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		rec.Valid = true
		results = append(results, rec)
	}
	return results, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanMetadata reads one batches row selected as id, fingerprint,
// batch_date, filter_color, timestamp, summary_json.
func scanMetadata(row rowScanner) (*BatchMetadata, error) {
	var (
		meta        BatchMetadata
		color       string
		timestamp   string
		summaryJSON string
	)
	if err := row.Scan(&meta.ID, &meta.Fingerprint, &meta.Date, &color, &timestamp, &summaryJSON); err != nil {
		return nil, err
	}
	meta.FilterColor = model.Color(color)
	meta.Timestamp = parseTimestamp(timestamp)
	if err := json.Unmarshal([]byte(summaryJSON), &meta.Summary); err != nil {
		return nil, fmt.Errorf("failed to parse summary: %w", err)
	}
	return &meta, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
