package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"meridian/internal/session"
)

func testArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func sampleSession() *session.Session {
	return &session.Session{
		ID:     "sess-1",
		Ticker: "AAPL",
		Status: session.StatusCompleted,
		Reports: map[session.ReportSection]session.Report{
			session.SectionMarket: {
				Section:   session.SectionMarket,
				Agent:     "Market Analyst",
				Content:   "trend is constructive",
				UpdatedAt: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			},
			session.SectionDecision: {
				Section:   session.SectionDecision,
				Agent:     "Portfolio Manager",
				Content:   "BUY",
				UpdatedAt: time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC),
			},
		},
	}
}

func TestSaveAndReadBack(t *testing.T) {
	a := testArchive(t)
	ctx := context.Background()

	if err := a.SaveSession(ctx, sampleSession()); err != nil {
		t.Fatalf("SaveSession returned error: %v", err)
	}

	reports, err := a.Sections(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Sections returned error: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("len(reports) = %d, want 2", len(reports))
	}

	entries, err := a.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].SessionID != "sess-1" || entries[0].Sections != 2 {
		t.Errorf("entries = %+v, want one entry for sess-1 with 2 sections", entries)
	}
	if entries[0].Ticker != "AAPL" {
		t.Errorf("Ticker = %q, want AAPL", entries[0].Ticker)
	}
}

func TestReArchivingReplacesSections(t *testing.T) {
	a := testArchive(t)
	ctx := context.Background()

	sess := sampleSession()
	if err := a.SaveSession(ctx, sess); err != nil {
		t.Fatalf("SaveSession returned error: %v", err)
	}

	updated := sess.Reports[session.SectionDecision]
	updated.Content = "HOLD"
	sess.Reports[session.SectionDecision] = updated
	if err := a.SaveSession(ctx, sess); err != nil {
		t.Fatalf("second SaveSession returned error: %v", err)
	}

	reports, err := a.Sections(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Sections returned error: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("len(reports) = %d, want 2 after re-archive", len(reports))
	}
	for _, r := range reports {
		if r.Section == session.SectionDecision && r.Content != "HOLD" {
			t.Errorf("decision content = %q, want HOLD (latest write wins)", r.Content)
		}
	}
}

func TestSaveRejectsEmptySessions(t *testing.T) {
	a := testArchive(t)
	ctx := context.Background()

	if err := a.SaveSession(ctx, &session.Session{Ticker: "AAPL"}); err == nil {
		t.Error("SaveSession should reject a session without an id")
	}
	if err := a.SaveSession(ctx, &session.Session{ID: "x", Ticker: "AAPL"}); err == nil {
		t.Error("SaveSession should reject a session without reports")
	}
}

func TestDelete(t *testing.T) {
	a := testArchive(t)
	ctx := context.Background()

	if err := a.SaveSession(ctx, sampleSession()); err != nil {
		t.Fatalf("SaveSession returned error: %v", err)
	}
	if err := a.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	reports, err := a.Sections(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Sections returned error: %v", err)
	}
	if len(reports) != 0 {
		t.Errorf("len(reports) = %d after delete, want 0", len(reports))
	}
}
