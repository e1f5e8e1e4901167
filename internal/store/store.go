package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/awaistahir/heatpumpiq/internal/engine"
	_ "modernc.org/sqlite"
)

// Store handles persistent storage using SQLite
type Store struct {
	db *sql.DB
}

// Project is one saved sizing project: the request inputs plus whatever
// results have been computed for it. Nested structures are JSON-encoded
// in the database.
type Project struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	ZipCode   string                  `json:"zip_code,omitempty"`
	StationID string                  `json:"station_id,omitempty"`
	Building  engine.BuildingProfile  `json:"building"`
	Zones     []engine.Zone           `json:"zones,omitempty"`
	ModelID   string                  `json:"model_id,omitempty"`
	Load      *engine.LoadResult      `json:"load,omitempty"`
	Coverage  *engine.CoverageResult  `json:"coverage,omitempty"`
	Costs     *engine.CostProjection  `json:"costs,omitempty"`
	Aggregate *engine.AggregateResult `json:"aggregate,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// NewStore creates a new store and initializes the database
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// initialize creates the database schema
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		zip_code TEXT,
		station_id TEXT,
		building TEXT NOT NULL,
		zones TEXT,
		model_id TEXT,
		load_result TEXT,
		coverage_result TEXT,
		cost_result TEXT,
		aggregate_result TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS rate_cache (
		state TEXT PRIMARY KEY,
		usd_per_kwh REAL NOT NULL,
		source TEXT NOT NULL,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_projects_name ON projects(name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveProject saves or updates a project. A missing ID gets a new UUID;
// the assigned ID is returned.
func (s *Store) SaveProject(p *Project) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Name == "" {
		return "", fmt.Errorf("project name is required")
	}

	buildingJSON, _ := json.Marshal(p.Building)
	zonesJSON, _ := json.Marshal(p.Zones)
	loadJSON := marshalOptional(p.Load)
	coverageJSON := marshalOptional(p.Coverage)
	costJSON := marshalOptional(p.Costs)
	aggregateJSON := marshalOptional(p.Aggregate)

	query := `INSERT OR REPLACE INTO projects
		(id, name, zip_code, station_id, building, zones, model_id,
		 load_result, coverage_result, cost_result, aggregate_result, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			COALESCE((SELECT created_at FROM projects WHERE id = ?), CURRENT_TIMESTAMP), ?)`

	_, err := s.db.Exec(query, p.ID, p.Name, p.ZipCode, p.StationID, string(buildingJSON),
		string(zonesJSON), p.ModelID, loadJSON, coverageJSON, costJSON, aggregateJSON,
		p.ID, time.Now())
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

// GetProject retrieves a project by ID
func (s *Store) GetProject(id string) (*Project, error) {
	query := `SELECT id, name, zip_code, station_id, building, zones, model_id,
		load_result, coverage_result, cost_result, aggregate_result, created_at, updated_at
		FROM projects WHERE id = ?`

	p, err := scanProject(s.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, &engine.NotFoundError{Kind: "project", Key: id}
	}
	return p, err
}

// ListProjects returns all saved projects, most recently updated first
func (s *Store) ListProjects() ([]*Project, error) {
	query := `SELECT id, name, zip_code, station_id, building, zones, model_id,
		load_result, coverage_result, cost_result, aggregate_result, created_at, updated_at
		FROM projects ORDER BY updated_at DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []*Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			continue
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// DeleteProject deletes a project by ID
func (s *Store) DeleteProject(id string) error {
	res, err := s.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &engine.NotFoundError{Kind: "project", Key: id}
	}
	return nil
}

// CacheRate stores a fetched electricity rate
func (s *Store) CacheRate(state string, info engine.RateInfo) error {
	query := `INSERT OR REPLACE INTO rate_cache (state, usd_per_kwh, source, fetched_at)
		VALUES (?, ?, ?, ?)`
	_, err := s.db.Exec(query, state, info.USDPerKWh, info.Source, time.Now())
	return err
}

// GetCachedRate retrieves a cached rate no older than maxAge
func (s *Store) GetCachedRate(state string, maxAge time.Duration) (engine.RateInfo, bool, error) {
	query := `SELECT usd_per_kwh, source, fetched_at FROM rate_cache WHERE state = ?`

	var info engine.RateInfo
	var fetchedAt time.Time
	err := s.db.QueryRow(query, state).Scan(&info.USDPerKWh, &info.Source, &fetchedAt)
	if err == sql.ErrNoRows {
		return engine.RateInfo{}, false, nil
	}
	if err != nil {
		return engine.RateInfo{}, false, err
	}
	if time.Since(fetchedAt) > maxAge {
		return engine.RateInfo{}, false, nil
	}
	return info, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*Project, error) {
	var p Project
	var buildingJSON, zonesJSON string
	var loadJSON, coverageJSON, costJSON, aggregateJSON sql.NullString
	var zipCode, stationID, modelID sql.NullString

	err := row.Scan(&p.ID, &p.Name, &zipCode, &stationID, &buildingJSON, &zonesJSON,
		&modelID, &loadJSON, &coverageJSON, &costJSON, &aggregateJSON,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.ZipCode = zipCode.String
	p.StationID = stationID.String
	p.ModelID = modelID.String
	json.Unmarshal([]byte(buildingJSON), &p.Building)
	json.Unmarshal([]byte(zonesJSON), &p.Zones)
	p.Load = unmarshalOptional[engine.LoadResult](loadJSON)
	p.Coverage = unmarshalOptional[engine.CoverageResult](coverageJSON)
	p.Costs = unmarshalOptional[engine.CostProjection](costJSON)
	p.Aggregate = unmarshalOptional[engine.AggregateResult](aggregateJSON)

	return &p, nil
}

func marshalOptional[T any](v *T) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

func unmarshalOptional[T any](s sql.NullString) *T {
	if !s.Valid || s.String == "" || s.String == "null" {
		return nil
	}
	var v T
	if err := json.Unmarshal([]byte(s.String), &v); err != nil {
		return nil
	}
	return &v
}
