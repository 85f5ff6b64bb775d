// Browse, archive and delete past analysis sessions.
//
// Usage:
//
//	bin/meridian-history list [-page 1] [-per-page 20]
//	bin/meridian-history show <session-id>
//	bin/meridian-history archive <session-id>
//	bin/meridian-history archived
//	bin/meridian-history delete <session-id>
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"meridian/internal/api"
	"meridian/internal/archive"
	"meridian/internal/config"
	"meridian/internal/dashboard"
	"meridian/internal/rest"
	"meridian/internal/session"
	"meridian/internal/util"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: meridian-history <command> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  list       List past sessions with aggregate stats\n")
		fmt.Fprintf(os.Stderr, "  show       Print a completed session's reports\n")
		fmt.Fprintf(os.Stderr, "  archive    Save a session's reports to the local archive\n")
		fmt.Fprintf(os.Stderr, "  archived   List locally archived sessions\n")
		fmt.Fprintf(os.Stderr, "  delete     Delete a session on the backend\n")
	}
	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}
	command := os.Args[1]
	os.Args = os.Args[1:]

	page := flag.Int("page", 1, "history page number")
	perPage := flag.Int("per-page", 20, "sessions per page")
	flag.Parse()

	_ = godotenv.Load()
	cfgPath := "config/meridian.yaml"
	if p := os.Getenv("MERIDIAN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	ctx := context.Background()

	// The archived command is fully local, no backend needed.
	if command == "archived" {
		listArchived(ctx, cfg.Storage.ArchivePath)
		return
	}

	client := rest.NewClient(cfg.Backend.BaseURL,
		time.Duration(cfg.Backend.TimeoutSec)*time.Second, logger)
	if err := api.NewAuthAPI(client).Login(ctx, cfg.Backend.Username, cfg.Backend.Password); err != nil {
		log.Fatalf("login failed: %v", err)
	}
	analysis := api.NewAnalysisAPI(client)

	switch command {
	case "list":
		pg, err := analysis.Sessions(ctx, *page, *perPage)
		if err != nil {
			log.Fatalf("listing sessions: %v", err)
		}
		fmt.Print(dashboard.RenderHistory(pg))
		if stats, err := analysis.Stats(ctx); err == nil {
			fmt.Print(dashboard.RenderStats(stats))
		} else {
			logger.Warn("stats unavailable", "error", err)
		}

	case "show":
		snap := mustSnapshot(ctx, analysis, flag.Arg(0))
		sess := sessionFromSnapshot(snap)
		fmt.Print(dashboard.RenderSession(sess))
		fmt.Println()
		fmt.Print(dashboard.RenderReports(sess))

	case "archive":
		snap := mustSnapshot(ctx, analysis, flag.Arg(0))
		sess := sessionFromSnapshot(snap)
		a, err := archive.Open(cfg.Storage.ArchivePath)
		if err != nil {
			log.Fatalf("opening archive: %v", err)
		}
		defer a.Close()
		if err := a.SaveSession(ctx, sess); err != nil {
			log.Fatalf("archiving session: %v", err)
		}
		fmt.Printf("archived %d report sections from %s\n", len(sess.Reports), sess.ID)

	case "delete":
		id := flag.Arg(0)
		if id == "" {
			log.Fatal("usage: meridian-history delete <session-id>")
		}
		if err := analysis.Delete(ctx, id); err != nil {
			log.Fatalf("deleting session: %v", err)
		}
		fmt.Printf("deleted %s\n", id)

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func mustSnapshot(ctx context.Context, analysis *api.AnalysisAPI, id string) *api.SessionSnapshot {
	if id == "" {
		log.Fatal("a session id is required")
	}
	snap, err := analysis.Completed(ctx, id)
	if err != nil {
		log.Fatalf("fetching session %s: %v", id, err)
	}
	return snap
}

// sessionFromSnapshot builds a renderable session from a one-shot snapshot,
// bypassing the live store since no merging is involved.
func sessionFromSnapshot(snap *api.SessionSnapshot) *session.Session {
	sess := &session.Session{
		ID:           snap.SessionID,
		Ticker:       snap.Ticker,
		CurrentAgent: snap.CurrentAgent,
		Progress:     snap.Progress,
		LLMCalls:     snap.LLMCalls,
		ToolCount:    snap.ToolCount,
		LastError:    snap.Error,
		Agents:       make(map[string]session.AgentStatus, len(snap.AgentsStatus)),
		Reports:      make(map[session.ReportSection]session.Report, len(snap.Reports)),
	}
	if st, err := session.ParseStatus(snap.Status); err == nil {
		sess.Status = st
	}
	for agent, status := range snap.AgentsStatus {
		sess.Agents[agent] = session.AgentStatus(status)
	}
	for _, r := range snap.Reports {
		sec := session.ReportSection(r.Section)
		sess.Reports[sec] = session.Report{
			Section: sec,
			Agent:   r.Agent,
			Content: r.Content,
		}
	}
	return sess
}

func listArchived(ctx context.Context, path string) {
	a, err := archive.Open(path)
	if err != nil {
		log.Fatalf("opening archive: %v", err)
	}
	defer a.Close()

	entries, err := a.List(ctx)
	if err != nil {
		log.Fatalf("listing archive: %v", err)
	}
	if len(entries) == 0 {
		fmt.Println("archive is empty")
		return
	}
	for _, e := range entries {
		fmt.Printf("%-14s %-8s %d sections  %s\n",
			e.SessionID, e.Ticker, e.Sections, e.ArchivedAt.Format("2006-01-02 15:04"))
	}
}
