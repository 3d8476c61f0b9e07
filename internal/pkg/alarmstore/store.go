// Package alarmstore is the record-query facility composed predicates are
// handed to: an SQLite-backed table of alarm events filtered with the
// predicate as a WHERE clause.
package alarmstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Alarm is one alarm event record.
type Alarm struct {
	ID         int64     `json:"id"`
	AlarmName  string    `json:"alarm_name"`
	Message    string    `json:"message"`
	AlarmClass string    `json:"alarm_class"`
	AlarmGroup string    `json:"alarm_group"`
	Severity   int       `json:"severity"`
	EventTime  time.Time `json:"event_time"`
	AlarmState string    `json:"alarm_state"`
	Status     string    `json:"status"`
	Acked      bool      `json:"acked"`
	Enabled    bool      `json:"enabled"`
	Suppressed bool      `json:"suppressed"`
}

// Store handles SQLite database operations for alarm records.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the alarm database at path. Use ":memory:" for an
// ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open alarm database: %w", err)
	}
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS RAAlarmData (
		Id INTEGER PRIMARY KEY AUTOINCREMENT,
		AlarmName TEXT NOT NULL,
		Message TEXT NOT NULL DEFAULT '',
		AlarmClass TEXT NOT NULL DEFAULT '',
		AlarmGroup TEXT NOT NULL DEFAULT '',
		Severity INTEGER NOT NULL DEFAULT 500,
		EventTime TEXT NOT NULL,
		AlarmState TEXT NOT NULL DEFAULT '',
		Status TEXT NOT NULL DEFAULT '',
		Acked INTEGER NOT NULL DEFAULT 0,
		Enabled INTEGER NOT NULL DEFAULT 1,
		Suppressed INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_alarm_event_time ON RAAlarmData(EventTime);
	CREATE INDEX IF NOT EXISTS idx_alarm_severity ON RAAlarmData(Severity);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create alarm schema: %w", err)
	}
	return nil
}

// Insert stores one alarm record and returns its id.
func (s *Store) Insert(a Alarm) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO RAAlarmData
			(AlarmName, Message, AlarmClass, AlarmGroup, Severity,
			 EventTime, AlarmState, Status, Acked, Enabled, Suppressed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.AlarmName, a.Message, a.AlarmClass, a.AlarmGroup, a.Severity,
		a.EventTime.UTC().Format(time.RFC3339), a.AlarmState, a.Status,
		a.Acked, a.Enabled, a.Suppressed)
	if err != nil {
		return 0, fmt.Errorf("failed to insert alarm: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read alarm id: %w", err)
	}
	return id, nil
}

// Seed inserts a batch of alarm records.
func (s *Store) Seed(alarms []Alarm) error {
	for _, a := range alarms {
		if _, err := s.Insert(a); err != nil {
			return err
		}
	}
	return nil
}

// Query returns the alarms matching the composed predicate, newest first.
// The predicate is trusted: it is generated by the query composer, not by
// operator input.
func (s *Store) Query(predicate string) ([]Alarm, error) {
	if predicate == "" {
		predicate = "1 = 1"
	}
	q := `
		SELECT Id, AlarmName, Message, AlarmClass, AlarmGroup, Severity,
		       EventTime, AlarmState, Status, Acked, Enabled, Suppressed
		FROM RAAlarmData
		WHERE ` + predicate + `
		ORDER BY EventTime DESC`
	rows, err := s.db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("failed to query alarms: %w", err)
	}
	defer rows.Close()

	var alarms []Alarm
	for rows.Next() {
		var a Alarm
		var eventTime string
		if err := rows.Scan(&a.ID, &a.AlarmName, &a.Message, &a.AlarmClass,
			&a.AlarmGroup, &a.Severity, &eventTime, &a.AlarmState, &a.Status,
			&a.Acked, &a.Enabled, &a.Suppressed); err != nil {
			return nil, fmt.Errorf("failed to scan alarm row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339, eventTime)
		if err != nil {
			return nil, fmt.Errorf("bad event time %q: %w", eventTime, err)
		}
		a.EventTime = ts
		alarms = append(alarms, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alarm rows: %w", err)
	}
	return alarms, nil
}

// Count returns the number of alarms matching the predicate.
func (s *Store) Count(predicate string) (int, error) {
	if predicate == "" {
		predicate = "1 = 1"
	}
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM RAAlarmData WHERE ` + predicate).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count alarms: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
