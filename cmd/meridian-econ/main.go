// Fetch economic indicator series and calendar events.
//
// Usage:
//
//	bin/meridian-econ series cpi [-start 2024-01-01] [-end 2024-12-31] [-export]
//	bin/meridian-econ events [-start ...] [-end ...] [-severity high]
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
	"meridian/internal/config"
	"meridian/internal/export"
	"meridian/internal/rest"
	"meridian/internal/util"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: meridian-econ <command> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  series    Fetch a historical indicator series (cpi, gdp, unemployment, ...)\n")
		fmt.Fprintf(os.Stderr, "  events    Fetch calendar events in a date range\n")
	}
	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}
	command := os.Args[1]
	var indicator string
	if command == "series" {
		if len(os.Args) < 3 {
			flag.Usage()
			os.Exit(1)
		}
		indicator = os.Args[2]
		os.Args = os.Args[2:]
	} else {
		os.Args = os.Args[1:]
	}

	start := flag.String("start", time.Now().AddDate(-1, 0, 0).Format("2006-01-02"), "start date")
	end := flag.String("end", time.Now().Format("2006-01-02"), "end date")
	severity := flag.String("severity", "", "filter events by severity (low, medium, high)")
	doExport := flag.Bool("export", false, "write the series to a parquet file")
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

	client := rest.NewClient(cfg.Backend.BaseURL,
		time.Duration(cfg.Backend.TimeoutSec)*time.Second, logger)
	if err := api.NewAuthAPI(client).Login(ctx, cfg.Backend.Username, cfg.Backend.Password); err != nil {
		log.Fatalf("login failed: %v", err)
	}
	econ := api.NewEconomicAPI(client)

	switch command {
	case "series":
		series, err := econ.Historical(ctx, indicator, *start, *end)
		if err != nil {
			log.Fatalf("fetching %s: %v", indicator, err)
		}
		for _, p := range series.Points {
			fmt.Printf("%s  %10.2f %s\n", p.Date, p.Value, series.Unit)
		}
		if *doExport {
			exporter := export.NewExporter(cfg.Storage.ExportDir)
			path, err := exporter.WriteIndicators(series)
			if err != nil {
				log.Fatalf("exporting series: %v", err)
			}
			fmt.Printf("series written to %s\n", path)
		}

	case "events":
		events, err := econ.Events(ctx, *start, *end, *severity)
		if err != nil {
			log.Fatalf("fetching events: %v", err)
		}
		for _, e := range events {
			line := fmt.Sprintf("%s  [%-6s] %s", e.Date, e.Severity, e.Name)
			if e.Actual != "" || e.Forecast != "" {
				line += fmt.Sprintf("  actual=%s forecast=%s", e.Actual, e.Forecast)
			}
			fmt.Println(line)
		}
		if len(events) == 0 {
			fmt.Println("no events in range")
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
