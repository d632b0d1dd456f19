package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/viacard/jornada-analytics/internal/utils"
)

// GetJSONWithRetry busca e decodifica um feed JSON com até 3 tentativas e
// backoff exponencial com jitter.
func GetJSONWithRetry(ctx context.Context, c HTTPClient, url string, dst any) error {
	if url == "" {
		return errors.New("empty url")
	}
	return utils.NewBackoff(100*time.Millisecond, 2).Do(func(i int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := c.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return fmt.Errorf("non-2xx: %d body=%s", resp.StatusCode, string(b))
		}
		return json.NewDecoder(resp.Body).Decode(dst)
	})
}
