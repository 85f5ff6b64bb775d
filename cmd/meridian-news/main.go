// Query news through the backend, with a direct fallback when it is down.
//
// Usage:
//
//	bin/meridian-news company AAPL
//	bin/meridian-news search "fed rate decision" [-limit 10]
//	bin/meridian-news sentiment positive
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
	"meridian/internal/news"
	"meridian/internal/rest"
	"meridian/internal/util"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: meridian-news <command> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  company    Categorized news for a symbol\n")
		fmt.Fprintf(os.Stderr, "  search     Full-text news search\n")
		fmt.Fprintf(os.Stderr, "  sentiment  Articles filtered by sentiment\n")
	}
	if len(os.Args) < 3 {
		flag.Usage()
		os.Exit(1)
	}
	command, arg := os.Args[1], os.Args[2]
	os.Args = os.Args[2:]

	limit := flag.Int("limit", 20, "max articles for search")
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

	// A failed login is not fatal here: company news can still be served
	// through the direct fallback path.
	if err := api.NewAuthAPI(client).Login(ctx, cfg.Backend.Username, cfg.Backend.Password); err != nil {
		logger.Warn("login failed, relying on fallback sources", "error", err)
	}

	fallback := news.NewFetcher(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, logger)
	newsAPI := api.NewNewsAPI(client, fallback, logger)

	switch command {
	case "company":
		feed, err := newsAPI.Categorized(ctx, arg)
		if err != nil {
			log.Fatalf("fetching company news: %v", err)
		}
		printFeed(feed)

	case "search":
		feed, err := newsAPI.Search(ctx, arg, *limit)
		if err != nil {
			log.Fatalf("searching news: %v", err)
		}
		printFeed(feed)

	case "sentiment":
		articles, err := newsAPI.BySentiment(ctx, arg)
		if err != nil {
			log.Fatalf("fetching %s news: %v", arg, err)
		}
		for _, a := range articles {
			printArticle(a)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func printFeed(feed *api.NewsFeed) {
	if feed.Degraded {
		fmt.Printf("!! backend unreachable, showing direct %s results\n\n", feed.Source)
	}
	for _, a := range feed.Articles {
		printArticle(a)
	}
	if len(feed.Articles) == 0 {
		fmt.Println("no articles found")
	}
}

func printArticle(a api.NewsArticle) {
	line := fmt.Sprintf("%s  [%s] %s", a.PublishedAt, a.Source, a.Title)
	if a.Sentiment != "" {
		line += fmt.Sprintf("  (%s %.2f)", a.Sentiment, a.Score)
	}
	fmt.Println(line)
	if a.Summary != "" {
		fmt.Printf("    %s\n", a.Summary)
	}
}
