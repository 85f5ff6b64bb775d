// Start a multi-agent analysis session and follow it to completion.
//
// Usage:
//
//	go build -o bin/meridian-analyze ./cmd/meridian-analyze/
//	bin/meridian-analyze -ticker AAPL [-date 2026-08-21] [-analysts market,news]
//	                     [-depth 3] [-no-follow] [-archive]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"meridian/internal/api"
	"meridian/internal/archive"
	"meridian/internal/config"
	"meridian/internal/dashboard"
	"meridian/internal/live"
	"meridian/internal/prefs"
	"meridian/internal/rest"
	"meridian/internal/session"
	"meridian/internal/util"
)

func main() {
	ticker := flag.String("ticker", "", "ticker symbol to analyze (required)")
	date := flag.String("date", time.Now().Format("2006-01-02"), "analysis date (YYYY-MM-DD)")
	analysts := flag.String("analysts", "", "comma-separated analyst list (default from config)")
	depth := flag.Int("depth", 0, "research depth (default from config)")
	noFollow := flag.Bool("no-follow", false, "start the session and exit without polling")
	archiveIt := flag.Bool("archive", false, "archive reports locally when the session completes")
	flag.Parse()

	if *ticker == "" {
		flag.Usage()
		os.Exit(1)
	}

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

	client := rest.NewClient(cfg.Backend.BaseURL,
		time.Duration(cfg.Backend.TimeoutSec)*time.Second, logger)
	client.OnSessionExpired = func() {
		logger.Warn("backend session expired; restart with valid credentials")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auth := api.NewAuthAPI(client)
	if err := auth.Login(ctx, cfg.Backend.Username, cfg.Backend.Password); err != nil {
		log.Fatalf("login failed: %v", err)
	}

	prefPath, err := prefs.DefaultPath()
	if err != nil {
		log.Fatalf("resolving preferences path: %v", err)
	}
	pref, err := prefs.Load(prefPath)
	if err != nil {
		log.Fatalf("loading preferences: %v", err)
	}

	sessCfg := session.Config{
		Ticker:             strings.ToUpper(*ticker),
		AnalysisDate:       *date,
		Analysts:           cfg.Analysis.Analysts,
		ResearchDepth:      cfg.Analysis.ResearchDepth,
		Provider:           cfg.Analysis.Provider,
		QuickModel:         cfg.Analysis.QuickModel,
		DeepModel:          cfg.Analysis.DeepModel,
		CustomInstructions: cfg.Analysis.CustomInstructions,
	}
	if *analysts != "" {
		sessCfg.Analysts = strings.Split(*analysts, ",")
	}
	if *depth > 0 {
		sessCfg.ResearchDepth = *depth
	}

	store := session.NewStore(api.NewAnalysisAPI(client), logger)
	store.SetConfig(sessCfg)
	if err := store.StartAnalysis(ctx); err != nil {
		log.Fatalf("starting analysis: %v", err)
	}
	fmt.Printf("session %s started for %s\n", store.CurrentSessionID(), sessCfg.Ticker)

	follow := pref.AutoRefresh && !*noFollow
	if !follow {
		return
	}

	// Optional low-latency event stream alongside the poller.
	if cfg.Backend.StreamEndpoint != "" {
		stream := live.NewClient(cfg.Backend.StreamEndpoint, client.HTTPClient(), store, logger)
		go func() {
			err := util.Retry(ctx, 5, 2*time.Second, func() error {
				return stream.Sync(ctx)
			})
			if err != nil && ctx.Err() == nil {
				logger.Warn("event stream ended", "error", err)
			}
		}()
	}

	poller := session.NewPoller(store,
		time.Duration(cfg.Polling.IntervalSec)*time.Second, logger)
	final, err := poller.Run(ctx)
	if err != nil {
		log.Fatalf("following session: %v", err)
	}

	fmt.Println()
	fmt.Print(dashboard.RenderSession(&final))
	fmt.Println()
	fmt.Print(dashboard.RenderReports(&final))

	if *archiveIt && len(final.Reports) > 0 {
		a, err := archive.Open(cfg.Storage.ArchivePath)
		if err != nil {
			log.Fatalf("opening archive: %v", err)
		}
		defer a.Close()
		if err := a.SaveSession(ctx, &final); err != nil {
			log.Fatalf("archiving session: %v", err)
		}
		fmt.Printf("archived %d report sections to %s\n",
			len(final.Reports), cfg.Storage.ArchivePath)
	}
}
