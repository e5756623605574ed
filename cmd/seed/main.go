package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"mta/internal/database"
	"mta/internal/domain"
	"mta/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type ItemsConfig struct {
	Items []models.Item `yaml:"items"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		itemsPath = flag.String("items", "configs/items.yaml", "path to items.yaml")
		dbPath    = flag.String("db", "./data/mta.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*itemsPath)
	if err != nil {
		return fmt.Errorf("read items: %w", err)
	}
	var cfg ItemsConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse items: %w", err)
	}

	items := make([]models.Item, 0, len(cfg.Items))
	for _, it := range cfg.Items {
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" {
			continue
		}
		if it.TotalQuantity < 0 {
			return fmt.Errorf("item %q: total_quantity must not be negative", it.Name)
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return fmt.Errorf("no items in yaml")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created, updated := 0, 0
	for _, it := range items {
		_, err := db.GetItemByName(ctx, it.Name)
		switch {
		case err == nil:
			updated++
		case errors.Is(err, domain.ErrNotFound):
			created++
		default:
			return fmt.Errorf("get %s: %w", it.Name, err)
		}
	}

	if err := db.SyncItems(ctx, items); err != nil {
		return fmt.Errorf("sync items: %w", err)
	}

	logger.Info().Int("created", created).Int("updated", updated).Str("db", *dbPath).Msg("catalog synced")
	return nil
}
