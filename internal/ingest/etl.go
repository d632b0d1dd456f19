// Package ingest puxa os três feeds crus (atividades, mídia paga,
// conversões) para o MemoryStore. Toda data é normalizada para a chave
// canônica aqui, na fronteira; formato desconhecido aborta a carga com
// erro tipado em vez de entrar torto nos motores.
package ingest

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/viacard/jornada-analytics/internal/config"
	"github.com/viacard/jornada-analytics/internal/correlation"
	"github.com/viacard/jornada-analytics/internal/dates"
	"github.com/viacard/jornada-analytics/internal/metrics"
	"github.com/viacard/jornada-analytics/internal/models"
	"github.com/viacard/jornada-analytics/internal/store"
)

type ETL struct {
	c    HTTPClient
	st   *store.MemoryStore
	log  *slog.Logger
	cfg  config.Config
	prom *metrics.Registry
}

func NewETL(c HTTPClient, st *store.MemoryStore, log *slog.Logger, cfg config.Config, prom *metrics.Registry) *ETL {
	return &ETL{c: c, st: st, log: log, cfg: cfg, prom: prom}
}

// Run carrega os três feeds. since (chave canônica) descarta registros
// anteriores; vazio carrega tudo. Reexecuções não duplicam registros já
// vistos.
func (e *ETL) Run(ctx context.Context, since string) error {
	if err := e.run(ctx, since); err != nil {
		e.prom.IngestFailures.Inc()
		return err
	}
	return nil
}

func (e *ETL) run(ctx context.Context, since string) error {
	var acts []models.ActivityRecord
	if err := GetJSONWithRetry(ctx, e.c, e.cfg.ActivitiesURL, &acts); err != nil {
		return fmt.Errorf("activities feed: %w", err)
	}
	var spend []models.SpendRecord
	if err := GetJSONWithRetry(ctx, e.c, e.cfg.SpendURL, &spend); err != nil {
		return fmt.Errorf("spend feed: %w", err)
	}
	var conv []models.ConversionRecord
	if err := GetJSONWithRetry(ctx, e.c, e.cfg.ConversionsURL, &conv); err != nil {
		return fmt.Errorf("conversions feed: %w", err)
	}

	var nActs, nSpend, nConv int
	for _, a := range acts {
		day, err := dates.Canonical(a.DataDisparo)
		if err != nil {
			return fmt.Errorf("activity %s: %w", a.ID, err)
		}
		if since != "" && day < since {
			continue
		}
		if a.ID == "" || !e.st.MarkSeen("act|"+a.ID) {
			continue
		}
		a.DataDisparo = day
		a.BU = strings.TrimSpace(a.BU)
		a.Segmento = strings.TrimSpace(a.Segmento)
		a.Jornada = strings.TrimSpace(a.Jornada)
		a.Canal = strings.TrimSpace(a.Canal)
		e.st.UpsertActivity(a)
		nActs++
	}

	for i, r := range spend {
		day, err := dates.Canonical(r.Date)
		if err != nil {
			return fmt.Errorf("spend row %d: %w", i, err)
		}
		if since != "" && day < since {
			continue
		}
		// chave com posição e valores: linhas repetidas do mesmo dia/canal
		// somam, reexecuções do mesmo feed não duplicam
		key := fmt.Sprintf("spend|%d|%s|%s|%v|%v|%v|%v", i, day, r.Channel, r.Spend, r.Impressions, r.Clicks, r.Conversions)
		if !e.st.MarkSeen(key) {
			continue
		}
		r.Date = day
		e.st.UpsertSpend(r)
		nSpend++
	}

	for i, r := range conv {
		day, err := dates.Canonical(r.Date)
		if err != nil {
			return fmt.Errorf("conversion row %d: %w", i, err)
		}
		if since != "" && day < since {
			continue
		}
		if !e.st.MarkSeen(fmt.Sprintf("conv|%d|%s|%v|%v", i, day, r.Cards, r.Proposals)) {
			continue
		}
		r.Date = day
		e.st.UpsertConversion(r)
		nConv++
	}

	e.prom.IngestedRecords.WithLabelValues("activities").Add(float64(nActs))
	e.prom.IngestedRecords.WithLabelValues("spend").Add(float64(nSpend))
	e.prom.IngestedRecords.WithLabelValues("conversions").Add(float64(nConv))
	e.log.Info("ingest complete",
		slog.Int("activities", nActs),
		slog.Int("spend_rows", nSpend),
		slog.Int("conversion_rows", nConv))
	return nil
}

// ExportDay envia a série de correlação do dia ao sink, assinada com
// HMAC-SHA256 no header X-Signature.
func (e *ETL) ExportDay(ctx context.Context, date string) (int, error) {
	if e.cfg.SinkURL == "" || e.cfg.SinkSecret == "" {
		return 0, errors.New("sink not configured")
	}
	day, err := dates.Canonical(date)
	if err != nil {
		return 0, err
	}
	res := correlation.Compute(e.st.SpendByDate(), e.st.ConversionsByDate(), day, day)
	if len(res.Series) == 0 {
		return 0, nil
	}
	b, _ := json.Marshal(res.Series)
	mac := hmac.New(sha256.New, []byte(e.cfg.SinkSecret))
	mac.Write(b)
	sig := hex.EncodeToString(mac.Sum(nil))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.SinkURL, strings.NewReader(string(b)))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", sig)
	resp, err := e.c.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, errors.New("export sink non-2xx")
	}
	return len(res.Series), nil
}
