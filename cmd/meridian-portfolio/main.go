// Portfolio optimization and walk-forward backtesting against the backend.
//
// Usage:
//
//	bin/meridian-portfolio optimize -tickers AAPL,MSFT,NVDA [-objective max_sharpe]
//	bin/meridian-portfolio walkforward -tickers AAPL,MSFT [-window 12] [-step 3] [-export]
//	bin/meridian-portfolio list
//	bin/meridian-portfolio save -name tech -tickers AAPL,MSFT
//	bin/meridian-portfolio delete <id>
//	bin/meridian-portfolio search <query>
//	bin/meridian-portfolio trends <symbol>
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"meridian/internal/api"
	"meridian/internal/config"
	"meridian/internal/dashboard"
	"meridian/internal/export"
	"meridian/internal/rest"
	"meridian/internal/util"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: meridian-portfolio <command> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  optimize     Optimize weights for a ticker basket\n")
		fmt.Fprintf(os.Stderr, "  walkforward  Walk-forward backtest a basket\n")
		fmt.Fprintf(os.Stderr, "  list         List saved portfolios\n")
		fmt.Fprintf(os.Stderr, "  save         Save a portfolio\n")
		fmt.Fprintf(os.Stderr, "  delete       Delete a saved portfolio\n")
		fmt.Fprintf(os.Stderr, "  search       Look up tickers by name\n")
		fmt.Fprintf(os.Stderr, "  trends       Analyst recommendations and earnings surprises\n")
	}
	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}
	command := os.Args[1]
	os.Args = os.Args[1:]

	tickers := flag.String("tickers", "", "comma-separated ticker basket")
	objective := flag.String("objective", "max_sharpe", "optimization objective")
	start := flag.String("start", time.Now().AddDate(-2, 0, 0).Format("2006-01-02"), "start date")
	end := flag.String("end", time.Now().Format("2006-01-02"), "end date")
	window := flag.Int("window", 12, "walk-forward window in months")
	step := flag.Int("step", 3, "walk-forward step in months")
	name := flag.String("name", "", "portfolio name for save")
	doExport := flag.Bool("export", false, "write the equity curve to a parquet file")
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
	portfolio := api.NewPortfolioAPI(client)

	basket := func() []string {
		if *tickers == "" {
			log.Fatal("-tickers is required")
		}
		return strings.Split(strings.ToUpper(*tickers), ",")
	}

	switch command {
	case "optimize":
		result, err := portfolio.Optimize(ctx, api.OptimizeRequest{
			Tickers:   basket(),
			Objective: *objective,
			Start:     *start,
			End:       *end,
		})
		if err != nil {
			log.Fatalf("optimizing: %v", err)
		}
		printWeights(result.Weights)
		fmt.Printf("expected return: %s  volatility: %s  sharpe: %.2f\n",
			dashboard.FormatPercent(result.ExpectedReturn),
			dashboard.FormatPercent(result.Volatility),
			result.SharpeRatio)

	case "walkforward":
		result, err := portfolio.WalkForward(ctx, api.WalkForwardRequest{
			Tickers:      basket(),
			Objective:    *objective,
			Start:        *start,
			End:          *end,
			WindowMonths: *window,
			StepMonths:   *step,
		})
		if err != nil {
			log.Fatalf("backtesting: %v", err)
		}
		fmt.Printf("windows: %d  total return: %s  sharpe: %.2f  max drawdown: %s\n",
			result.Windows,
			dashboard.FormatPercent(result.TotalReturn),
			result.SharpeRatio,
			dashboard.FormatPercent(result.MaxDrawdown))
		if n := len(result.EquityCurve); n > 0 {
			last := result.EquityCurve[n-1]
			fmt.Printf("final equity: %s (%s)\n", dashboard.FormatMoney(last.Equity), last.Date)
		}
		if *doExport {
			exporter := export.NewExporter(cfg.Storage.ExportDir)
			path, err := exporter.WriteEquityCurve(strings.Join(basket(), "-"), result)
			if err != nil {
				log.Fatalf("exporting equity curve: %v", err)
			}
			fmt.Printf("equity curve written to %s\n", path)
		}

	case "list":
		saved, err := portfolio.List(ctx)
		if err != nil {
			log.Fatalf("listing portfolios: %v", err)
		}
		if len(saved) == 0 {
			fmt.Println("no saved portfolios")
			return
		}
		for _, p := range saved {
			fmt.Printf("%-12s %-16s %s\n", p.ID, p.Name, strings.Join(p.Tickers, ","))
		}

	case "save":
		if *name == "" {
			log.Fatal("-name is required")
		}
		saved, err := portfolio.Save(ctx, api.SavedPortfolio{Name: *name, Tickers: basket()})
		if err != nil {
			log.Fatalf("saving portfolio: %v", err)
		}
		fmt.Printf("saved %s as %s\n", saved.Name, saved.ID)

	case "delete":
		id := flag.Arg(0)
		if id == "" {
			log.Fatal("usage: meridian-portfolio delete <id>")
		}
		if err := portfolio.Delete(ctx, id); err != nil {
			log.Fatalf("deleting portfolio: %v", err)
		}
		fmt.Printf("deleted %s\n", id)

	case "search":
		query := flag.Arg(0)
		if query == "" {
			log.Fatal("usage: meridian-portfolio search <query>")
		}
		matches, err := api.NewStocksAPI(client).Search(ctx, query)
		if err != nil {
			log.Fatalf("searching stocks: %v", err)
		}
		for _, m := range matches {
			fmt.Printf("%-8s %-40s %s\n", m.Symbol, m.Description, m.Exchange)
		}

	case "trends":
		symbol := strings.ToUpper(flag.Arg(0))
		if symbol == "" {
			log.Fatal("usage: meridian-portfolio trends <symbol>")
		}
		stocks := api.NewStocksAPI(client)
		trends, err := stocks.RecommendationTrends(ctx, symbol)
		if err != nil {
			log.Fatalf("fetching trends: %v", err)
		}
		for _, tr := range trends {
			fmt.Printf("%s  strong-buy=%d buy=%d hold=%d sell=%d strong-sell=%d\n",
				tr.Period, tr.StrongBuy, tr.Buy, tr.Hold, tr.Sell, tr.StrongSell)
		}
		surprises, err := stocks.EarningsSurprises(ctx, symbol)
		if err != nil {
			log.Fatalf("fetching earnings surprises: %v", err)
		}
		for _, s := range surprises {
			fmt.Printf("%s  actual=%.2f estimate=%.2f surprise=%s\n",
				s.Period, s.Actual, s.Estimate, dashboard.FormatPercent(s.Surprise/100))
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func printWeights(weights map[string]float64) {
	symbols := make([]string, 0, len(weights))
	for sym := range weights {
		symbols = append(symbols, sym)
	}
	sort.Slice(symbols, func(i, j int) bool {
		return weights[symbols[i]] > weights[symbols[j]]
	})
	for _, sym := range symbols {
		fmt.Printf("  %-8s %6.2f%%\n", sym, weights[sym]*100)
	}
}
