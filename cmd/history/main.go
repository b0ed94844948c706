package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"chromadish/internal/logging"
	"chromadish/internal/storage"
)

func main() {
	var (
		envFile  = flag.String("env", ".env", "Optional .env file to read DATABASE_URL from")
		limit    = flag.Int("limit", 20, "Number of recent generations to list")
		id       = flag.String("id", "", "Show a single generation by id")
		failures = flag.Bool("failed", false, "List the most recent failed generations (limit applies to failures)")
	)
	flag.Parse()

	logger := logging.New("development")

	_ = godotenv.Load(*envFile)
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL is required to read generation history")
	}

	ctx := context.Background()
	store, err := storage.NewStore(ctx, databaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect store")
	}
	defer store.Close()

	if *id != "" {
		g, err := store.GetGeneration(ctx, *id)
		if err != nil {
			logger.Fatal().Err(err).Str("id", *id).Msg("find generation")
		}
		printDetail(g)
		return
	}

	filter := storage.ListFilter{Limit: *limit}
	if *failures {
		filter.Status = storage.StatusFailed
	}
	generations, err := store.ListGenerations(ctx, filter)
	if err != nil {
		logger.Fatal().Err(err).Msg("list generations")
	}
	printTable(generations)
}

func printTable(generations []storage.Generation) {
	fmt.Printf("%-36s %-10s %-20s %-4s %-9s %-8s %s\n", "ID", "STATUS", "CREATED", "STR", "BAND", "MS", "KIND/URL")
	for _, g := range generations {
		detail := g.MediaURL
		if g.Status == storage.StatusFailed {
			detail = g.ErrorKind
		}
		fmt.Printf("%-36s %-10s %-20s %-4d %-9s %-8d %s\n",
			g.ID, g.Status, g.CreatedAt.Format(time.DateTime), g.Strictness, g.Band, g.DurationMS, detail)
	}
}

func printDetail(g storage.Generation) {
	fmt.Printf("ID:          %s\n", g.ID)
	fmt.Printf("Status:      %s %s\n", g.Status, g.ErrorKind)
	fmt.Printf("Created:     %s\n", g.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Strictness:  %d (%s)\n", g.Strictness, g.Band)
	fmt.Printf("Brand kit:   %s\n", g.BrandKit)
	fmt.Printf("Shot recipe: %s\n", g.ShotRecipe)
	fmt.Printf("Fallback:    %v\n", g.StyleFallback)
	fmt.Printf("Media:       %s\n", g.MediaURL)
	fmt.Printf("Base prompt:\n%s\n\n", g.BasePrompt)
	if g.Prompt != "" {
		fmt.Printf("Final prompt:\n%s\n", g.Prompt)
	}
}
