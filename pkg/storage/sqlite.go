package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/levenlabs/go-lflag"
	_ "modernc.org/sqlite"

	"github.com/gmcavallazzi/opthome/pkg/types"
)

// SQLiteProvider implements Database on a local SQLite file. This is the
// default provider: a single-file store matching the single-key durable
// local state the dashboard needs.
type SQLiteProvider struct {
	db   *sql.DB
	path string
}

const (
	stateKindSnapshot = "snapshot"
	stateKindSchedule = "schedule"
)

// configuredSQLite sets up the SQLite provider. It registers flags for
// configuration.
func configuredSQLite() *SQLiteProvider {
	path := lflag.String("sqlite-path", "opthome.db", "Path to the SQLite database file")

	s := &SQLiteProvider{}
	lflag.Do(func() {
		s.path = *path
	})
	return s
}

// NewSQLite opens a SQLite-backed store at the given path. Used directly by
// tests; the daemon goes through Configured.
func NewSQLite(path string) (*SQLiteProvider, error) {
	s := &SQLiteProvider{path: path}
	if err := s.Init(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// Init opens the database and creates the schema.
func (s *SQLiteProvider) Init(ctx context.Context) error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS site_state (
		site_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		json TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (site_id, kind)
	);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return fmt.Errorf("creating schema: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection.
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteProvider) getJSON(ctx context.Context, siteID, kind string, v any) error {
	if siteID == "" {
		return fmt.Errorf("siteID cannot be empty")
	}
	var jsonStr string
	err := s.db.QueryRowContext(ctx,
		`SELECT json FROM site_state WHERE site_id = ? AND kind = ?`,
		siteID, kind).Scan(&jsonStr)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("querying %s state: %w", kind, err)
	}
	if err := json.Unmarshal([]byte(jsonStr), v); err != nil {
		return fmt.Errorf("unmarshaling %s state: %w", kind, err)
	}
	return nil
}

func (s *SQLiteProvider) setJSON(ctx context.Context, siteID, kind string, v any) error {
	if siteID == "" {
		return fmt.Errorf("siteID cannot be empty")
	}
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s state: %w", kind, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO site_state (site_id, kind, json, updated_at) VALUES (?, ?, ?, ?)`,
		siteID, kind, string(jsonBytes), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving %s state: %w", kind, err)
	}
	return nil
}

// GetSnapshot retrieves the latest appliance export snapshot for a site.
func (s *SQLiteProvider) GetSnapshot(ctx context.Context, siteID string) (types.Snapshot, error) {
	var snap types.Snapshot
	if err := s.getJSON(ctx, siteID, stateKindSnapshot, &snap); err != nil {
		return types.Snapshot{}, err
	}
	return snap, nil
}

// SetSnapshot saves the latest appliance export snapshot for a site.
func (s *SQLiteProvider) SetSnapshot(ctx context.Context, siteID string, snap types.Snapshot) error {
	return s.setJSON(ctx, siteID, stateKindSnapshot, snap)
}

// GetSchedule retrieves the current optimized schedule for a site.
func (s *SQLiteProvider) GetSchedule(ctx context.Context, siteID string) (types.OptimizedSchedule, error) {
	var sched types.OptimizedSchedule
	if err := s.getJSON(ctx, siteID, stateKindSchedule, &sched); err != nil {
		return types.OptimizedSchedule{}, err
	}
	return sched, nil
}

// SetSchedule saves the current optimized schedule for a site.
func (s *SQLiteProvider) SetSchedule(ctx context.Context, siteID string, sched types.OptimizedSchedule) error {
	return s.setJSON(ctx, siteID, stateKindSchedule, sched)
}

// ListSites returns every site with stored state.
func (s *SQLiteProvider) ListSites(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT site_id FROM site_state ORDER BY site_id`)
	if err != nil {
		return nil, fmt.Errorf("querying sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		sites = append(sites, id)
	}
	return sites, rows.Err()
}
