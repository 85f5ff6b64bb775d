// Package archive keeps an offline copy of completed analysis reports in a
// local SQLite database. Session history itself always comes from the
// backend; the archive is an explicit export for reading reports without a
// connection.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"meridian/internal/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	session_id  TEXT NOT NULL,
	ticker      TEXT NOT NULL,
	section     TEXT NOT NULL,
	agent       TEXT NOT NULL,
	content     TEXT NOT NULL,
	updated_at  TEXT NOT NULL,
	archived_at TEXT NOT NULL,
	PRIMARY KEY (session_id, section)
);
CREATE INDEX IF NOT EXISTS idx_reports_ticker ON reports(ticker);
`

// Archive is a local report store backed by SQLite.
type Archive struct {
	db *sql.DB
}

// Entry summarizes one archived session.
type Entry struct {
	SessionID  string
	Ticker     string
	Sections   int
	ArchivedAt time.Time
}

// Open opens (or creates) the archive database at dbPath.
func Open(dbPath string) (*Archive, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the underlying database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// SaveSession upserts every report section of a session. Re-archiving the
// same session replaces its sections (latest write wins, matching the
// session model).
func (a *Archive) SaveSession(ctx context.Context, sess *session.Session) error {
	if sess.ID == "" {
		return fmt.Errorf("cannot archive a session without an id")
	}
	if len(sess.Reports) == 0 {
		return fmt.Errorf("session %s has no reports to archive", sess.ID)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, report := range sess.Reports {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reports (session_id, ticker, section, agent, content, updated_at, archived_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(session_id, section) DO UPDATE SET
				agent = excluded.agent,
				content = excluded.content,
				updated_at = excluded.updated_at,
				archived_at = excluded.archived_at`,
			sess.ID, sess.Ticker, string(report.Section), report.Agent,
			report.Content, report.UpdatedAt.UTC().Format(time.RFC3339), now)
		if err != nil {
			return fmt.Errorf("archiving section %s: %w", report.Section, err)
		}
	}
	return tx.Commit()
}

// Sections returns all archived report sections for a session.
func (a *Archive) Sections(ctx context.Context, sessionID string) ([]session.Report, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT section, agent, content, updated_at
		FROM reports WHERE session_id = ? ORDER BY section`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []session.Report
	for rows.Next() {
		var r session.Report
		var sec, updated string
		if err := rows.Scan(&sec, &r.Agent, &r.Content, &updated); err != nil {
			return nil, err
		}
		r.Section = session.ReportSection(sec)
		r.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// List returns one Entry per archived session, newest first.
func (a *Archive) List(ctx context.Context) ([]Entry, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT session_id, ticker, COUNT(*), MAX(archived_at)
		FROM reports GROUP BY session_id, ticker ORDER BY MAX(archived_at) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var archived string
		if err := rows.Scan(&e.SessionID, &e.Ticker, &e.Sections, &archived); err != nil {
			return nil, err
		}
		e.ArchivedAt, _ = time.Parse(time.RFC3339, archived)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes all archived sections for a session.
func (a *Archive) Delete(ctx context.Context, sessionID string) error {
	_, err := a.db.ExecContext(ctx, `DELETE FROM reports WHERE session_id = ?`, sessionID)
	return err
}
