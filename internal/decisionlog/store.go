package decisionlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/traceai/engine/internal/coordinator"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	decision_id    TEXT PRIMARY KEY,
	final_risk     REAL NOT NULL,
	decision       TEXT NOT NULL,
	distance       REAL NOT NULL,
	headline       TEXT NOT NULL,
	justification  TEXT NOT NULL,
	ethics_veto    INTEGER NOT NULL,
	veto_json      TEXT,
	agents_json    TEXT NOT NULL,
	evaluated_at   TEXT NOT NULL,
	created_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS policy_snapshots (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	decision_id     TEXT NOT NULL,
	weights_json    TEXT NOT NULL,
	thresholds_json TEXT NOT NULL,
	FOREIGN KEY (decision_id) REFERENCES decisions(decision_id)
);

CREATE INDEX IF NOT EXISTS idx_decisions_created ON decisions(created_at);
`
// #endregion schema

// #region store

// Store is the append-only decision log backed by SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens the decision log database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region append

// Append writes a decision and its policy snapshot atomically and returns
// the stored entry.
func (s *Store) Append(d coordinator.Decision, weights coordinator.Weights, thresholds coordinator.Thresholds) (Entry, error) {
	entry := Entry{
		ID:         uuid.New().String(),
		Decision:   d,
		Weights:    weights,
		Thresholds: thresholds,
		CreatedAt:  time.Now().UTC(),
	}

	agentsJSON, err := json.Marshal(d.AgentOutputs)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal agents: %w", err)
	}
	weightsJSON, err := json.Marshal(weights)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal weights: %w", err)
	}
	thresholdsJSON, err := json.Marshal(thresholds)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal thresholds: %w", err)
	}
	var vetoPtr interface{}
	if len(d.VetoReasons) > 0 {
		vetoJSON, err := json.Marshal(d.VetoReasons)
		if err != nil {
			return Entry{}, fmt.Errorf("marshal veto reasons: %w", err)
		}
		vetoPtr = string(vetoJSON)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Entry{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO decisions (decision_id, final_risk, decision, distance, headline,
		 justification, ethics_veto, veto_json, agents_json, evaluated_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, d.FinalRisk, string(d.Decision), d.DistanceToIrreversibility, d.Headline,
		d.Justification, boolInt(d.EthicsVeto), vetoPtr, string(agentsJSON),
		d.EvaluatedAt.UTC().Format(time.RFC3339Nano), entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert decision: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO policy_snapshots (decision_id, weights_json, thresholds_json)
		 VALUES (?, ?, ?)`,
		entry.ID, string(weightsJSON), string(thresholdsJSON),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("commit: %w", err)
	}
	return entry, nil
}

// SaveHook returns a coordinator hook that appends every decision under the
// given policy snapshot.
func (s *Store) SaveHook(policy coordinator.Config) coordinator.SaveHook {
	return func(d coordinator.Decision) error {
		_, err := s.Append(d, policy.Weights, policy.Thresholds)
		return err
	}
}

// #endregion append

// #region read

// Get retrieves one entry by ID.
func (s *Store) Get(id string) (Entry, error) {
	row := s.db.QueryRow(
		`SELECT d.decision_id, d.final_risk, d.decision, d.distance, d.headline,
		        d.justification, d.ethics_veto, d.veto_json, d.agents_json,
		        d.evaluated_at, d.created_at, p.weights_json, p.thresholds_json
		 FROM decisions d
		 JOIN policy_snapshots p ON p.decision_id = d.decision_id
		 WHERE d.decision_id = ?`, id,
	)
	entry, err := scanEntry(row)
	if err != nil {
		return Entry{}, fmt.Errorf("get decision %s: %w", id, err)
	}
	return entry, nil
}

// List returns the most recent entries, newest first.
func (s *Store) List(limit int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT d.decision_id, d.final_risk, d.decision, d.distance, d.headline,
		        d.justification, d.ethics_veto, d.veto_json, d.agents_json,
		        d.evaluated_at, d.created_at, p.weights_json, p.thresholds_json
		 FROM decisions d
		 JOIN policy_snapshots p ON p.decision_id = d.decision_id
		 ORDER BY d.created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var entry Entry
	var decisionStr, headline, justification string
	var vetoInt int
	var vetoJSON sql.NullString
	var agentsJSON, evaluatedStr, createdStr, weightsJSON, thresholdsJSON string

	err := row.Scan(
		&entry.ID, &entry.Decision.FinalRisk, &decisionStr,
		&entry.Decision.DistanceToIrreversibility, &headline, &justification,
		&vetoInt, &vetoJSON, &agentsJSON, &evaluatedStr, &createdStr,
		&weightsJSON, &thresholdsJSON,
	)
	if err != nil {
		return Entry{}, err
	}

	entry.Decision.Decision = coordinator.Kind(decisionStr)
	entry.Decision.Headline = headline
	entry.Decision.Justification = justification
	entry.Decision.EthicsVeto = vetoInt != 0
	if vetoJSON.Valid {
		if err := json.Unmarshal([]byte(vetoJSON.String), &entry.Decision.VetoReasons); err != nil {
			return Entry{}, fmt.Errorf("unmarshal veto reasons: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(agentsJSON), &entry.Decision.AgentOutputs); err != nil {
		return Entry{}, fmt.Errorf("unmarshal agents: %w", err)
	}
	if err := json.Unmarshal([]byte(weightsJSON), &entry.Weights); err != nil {
		return Entry{}, fmt.Errorf("unmarshal weights: %w", err)
	}
	if err := json.Unmarshal([]byte(thresholdsJSON), &entry.Thresholds); err != nil {
		return Entry{}, fmt.Errorf("unmarshal thresholds: %w", err)
	}
	entry.Decision.EvaluatedAt, _ = time.Parse(time.RFC3339Nano, evaluatedStr)
	entry.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return entry, nil
}

// #endregion read

// #region helpers

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
