package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/mathieu-neron/vidsource/internal/config"
	"github.com/mathieu-neron/vidsource/internal/db"
	"github.com/mathieu-neron/vidsource/internal/page"
	"github.com/mathieu-neron/vidsource/internal/repository"
	"github.com/mathieu-neron/vidsource/internal/service"
	"github.com/mathieu-neron/vidsource/internal/tui"
)

func main() {
	cfg := config.Load()

	// The terminal belongs to the UI; logs go to a file.
	log, closeLog, err := openLog(filepath.Join("logs", "vidsource-tui.log"), cfg.LogLevel)
	if err != nil {
		fmt.Printf("Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var lister page.SourceLister = service.NewFileSources(cfg.SourcesFile)
	if cfg.DatabaseURL != "" {
		var pool *pgxpool.Pool
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			fmt.Printf("Error connecting to database: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()
		lister = repository.NewSourceRepo(pool)
	}

	cache := service.NewCacheService(cfg.RedisURL, cfg.SearchCacheTTL, log)
	defer cache.Close()
	search := service.NewSearchClient(cfg.SearchURL, cfg.SearchTimeout, cache, nil, log)

	p := page.New(search, page.Options{Logger: log})
	prog := tea.NewProgram(tui.New(ctx, p, lister, cfg.SearchTimeout), tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func openLog(path, level string) (zerolog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log := zerolog.New(f).Level(lvl).With().Timestamp().Str("service", "vidsource-tui").Logger()
	return log, func() { f.Close() }, nil
}
