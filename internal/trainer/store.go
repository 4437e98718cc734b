package trainer

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/traceai/engine/internal/event"
)

// #region schema

const sampleSchema = `
CREATE TABLE IF NOT EXISTS labels (
	student_id          TEXT PRIMARY KEY,
	needs_intervention  INTEGER NOT NULL,
	labeled_at          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS student_events (
	id           TEXT PRIMARY KEY,
	student_id   TEXT NOT NULL,
	event_type   TEXT NOT NULL,
	domain       TEXT NOT NULL,
	severity     REAL NOT NULL,
	occurred_at  TEXT NOT NULL,
	description  TEXT,
	FOREIGN KEY (student_id) REFERENCES labels(student_id)
);

CREATE INDEX IF NOT EXISTS idx_student_events_student
ON student_events(student_id);
`

// #endregion schema

// #region labeled-student

// LabeledStudent is one training unit: a student's full event history plus
// the intervention outcome.
type LabeledStudent struct {
	StudentID string
	Events    []event.FrictionEvent
	Label     bool
}

// #endregion labeled-student

// #region store

// SampleStore persists labeled training data in SQLite.
type SampleStore struct {
	db *sql.DB
}

// OpenSampleStore opens the database at path and runs migrations.
func OpenSampleStore(path string) (*SampleStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sample db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(sampleSchema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SampleStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SampleStore) Close() error {
	return s.db.Close()
}

// #endregion store

// #region record

// Record persists one labeled student and their events in a transaction.
// Re-recording a student replaces the prior label and events wholesale.
func (s *SampleStore) Record(ls LabeledStudent) error {
	events, err := event.Normalize(ls.Events)
	if err != nil {
		return fmt.Errorf("record %s: %w", ls.StudentID, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	label := 0
	if ls.Label {
		label = 1
	}
	_, err = tx.Exec(`
		INSERT INTO labels (student_id, needs_intervention, labeled_at)
		VALUES (?, ?, ?)
		ON CONFLICT(student_id) DO UPDATE SET
			needs_intervention = excluded.needs_intervention,
			labeled_at = excluded.labeled_at`,
		ls.StudentID, label, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert label: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM student_events WHERE student_id = ?`, ls.StudentID); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}
	for _, e := range events {
		_, err := tx.Exec(`
			INSERT INTO student_events (id, student_id, event_type, domain, severity, occurred_at, description)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), ls.StudentID, string(e.EventType), string(e.Domain),
			e.Severity, e.Timestamp.UTC().Format(time.RFC3339Nano), e.Description,
		)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	return tx.Commit()
}

// #endregion record

// #region load

// LoadAll returns every labeled student with their events.
func (s *SampleStore) LoadAll() ([]LabeledStudent, error) {
	rows, err := s.db.Query(`SELECT student_id, needs_intervention FROM labels ORDER BY student_id`)
	if err != nil {
		return nil, fmt.Errorf("query labels: %w", err)
	}
	defer rows.Close()

	var students []LabeledStudent
	for rows.Next() {
		var ls LabeledStudent
		var label int
		if err := rows.Scan(&ls.StudentID, &label); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		ls.Label = label == 1
		students = append(students, ls)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range students {
		events, err := s.loadEvents(students[i].StudentID)
		if err != nil {
			return nil, err
		}
		students[i].Events = events
	}
	return students, nil
}

func (s *SampleStore) loadEvents(studentID string) ([]event.FrictionEvent, error) {
	rows, err := s.db.Query(`
		SELECT event_type, domain, severity, occurred_at, description
		FROM student_events WHERE student_id = ? ORDER BY occurred_at`, studentID)
	if err != nil {
		return nil, fmt.Errorf("query events %s: %w", studentID, err)
	}
	defer rows.Close()

	var events []event.FrictionEvent
	for rows.Next() {
		var e event.FrictionEvent
		var eventType, domain, occurred string
		var description sql.NullString
		if err := rows.Scan(&eventType, &domain, &e.Severity, &occurred, &description); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.EventType = event.Type(eventType)
		e.Domain = event.Domain(domain)
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, occurred)
		if description.Valid {
			e.Description = description.String
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// #endregion load
