package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/semla/internal/app"
)

// Prints the most recent recorded upload failures.
func main() {
	var (
		configPath = flag.String("config", "config.toml", "Path to config file")
		count      = flag.Int("n", 10, "Number of errors to show")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Error.Fatalf("Failed to load .env: %v", err)
	}

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	records, err := service.LastErrors(context.Background(), *count)
	if err != nil {
		logger.Error.Fatalf("Failed to fetch errors: %v", err)
	}

	if len(records) == 0 {
		logger.Info.Println("No errors recorded")
		return
	}
	for _, record := range records {
		fmt.Printf("%s  #%d  %s\n", record.CreatedAt.Format(time.RFC3339), record.ID, record.Detail)
	}
}
