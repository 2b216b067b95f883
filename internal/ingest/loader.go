package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/AngelCh415/FUNNEL_GO/internal/config"
)

// Load fetches the raw document once at startup. DATA_URL wins over
// DATA_PATH when both are set.
func Load(ctx context.Context, cfg config.Config, c HTTPClient, log *slog.Logger) (any, error) {
	if cfg.DataURL != "" {
		log.Info("loading dataset", slog.String("url", cfg.DataURL))
		return GetJSONWithRetry(ctx, c, cfg.DataURL, cfg.LoadRetries, log)
	}
	log.Info("loading dataset", slog.String("path", cfg.DataPath))
	f, err := os.Open(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
