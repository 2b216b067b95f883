package ingest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/AngelCh415/FUNNEL_GO/internal/utils"
)

// GetJSONWithRetry fetches and decodes url, retrying transport errors and
// 5xx answers with exponential backoff. 4xx answers are returned at once.
func GetJSONWithRetry(ctx context.Context, c HTTPClient, url string, retries int, log *slog.Logger) (any, error) {
	var doc any
	bo := utils.NewBackoff(100*time.Millisecond, retries)
	var permanent error
	err := bo.Do(ctx, func(i int) error {
		v, err := getJSON(ctx, c, url)
		if err == nil {
			doc = v
			return nil
		}
		var se *StatusError
		if errors.As(err, &se) && se.Code < http.StatusInternalServerError {
			permanent = err
			return nil
		}
		log.Warn("dataset fetch failed", slog.Int("attempt", i+1), slog.String("err", err.Error()))
		return err
	})
	if permanent != nil {
		return nil, permanent
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}
