package ingest

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/viacard/jornada-analytics/internal/config"
	"github.com/viacard/jornada-analytics/internal/dates"
	"github.com/viacard/jornada-analytics/internal/metrics"
	"github.com/viacard/jornada-analytics/internal/models"
	"github.com/viacard/jornada-analytics/internal/store"
)

func jsonServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newETL(t *testing.T, actsBody, spendBody, convBody string) (*ETL, *store.MemoryStore) {
	t.Helper()
	cfg := config.Config{
		ActivitiesURL:  jsonServer(t, actsBody).URL,
		SpendURL:       jsonServer(t, spendBody).URL,
		ConversionsURL: jsonServer(t, convBody).URL,
	}
	st := store.NewMemoryStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	etl := NewETL(NewHTTPClient(2*time.Second), st, log, cfg, metrics.NewRegistry())
	return etl, st
}

const (
	actsFeed = `[
		{"id":"a1","bu":"B2C","segmento":"X","jornada":"Y","canal":"Email","data_disparo":"2024-01-10","cartoes":5},
		{"id":"a2","bu":"B2C","segmento":"X","jornada":"Y","canal":"SMS","data_disparo":"10/01/2024","cartoes":3}
	]`
	spendFeed = `[
		{"date":"2024-01-10","channel":"Meta Ads","spend":100,"impressions":1000,"clicks":40,"conversions":2},
		{"date":"2024-01-10","channel":"Google Ads","spend":50}
	]`
	convFeed = `[{"date":"12/01/2024","cards":10,"proposals":25}]`
)

func TestRunLoadsAndNormalizes(t *testing.T) {
	etl, st := newETL(t, actsFeed, spendFeed, convFeed)

	if err := etl.Run(context.Background(), ""); err != nil {
		t.Fatalf("run: %v", err)
	}

	acts := st.Activities()
	if len(acts) != 2 {
		t.Fatalf("activities = %d", len(acts))
	}
	for _, a := range acts {
		if a.DataDisparo != "2024-01-10" {
			t.Fatalf("data não normalizada: %q", a.DataDisparo)
		}
	}

	agg := st.SpendByDate()["2024-01-10"]
	if agg.Total.Spend != 150 || agg.Meta.Spend != 100 || agg.Google.Spend != 50 {
		t.Fatalf("spend agg: %+v", agg)
	}

	conv := st.ConversionsByDate()["2024-01-12"]
	if conv.Cards != 10 || conv.Proposals != 25 {
		t.Fatalf("conv agg (data DD/MM não normalizada?): %+v", conv)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	etl, st := newETL(t, actsFeed, spendFeed, convFeed)

	if err := etl.Run(context.Background(), ""); err != nil {
		t.Fatalf("run 1: %v", err)
	}
	if err := etl.Run(context.Background(), ""); err != nil {
		t.Fatalf("run 2: %v", err)
	}

	if got := st.SpendByDate()["2024-01-10"].Total.Spend; got != 150 {
		t.Fatalf("reingestão duplicou gasto: %v", got)
	}
	if got := st.ConversionsByDate()["2024-01-12"].Cards; got != 10 {
		t.Fatalf("reingestão duplicou cartões: %v", got)
	}
}

func TestRepeatedIdenticalSpendRowsSum(t *testing.T) {
	// duas linhas idênticas no mesmo feed são legítimas e somam;
	// a reexecução do feed continua sem duplicar
	dup := `[
		{"date":"2024-01-10","channel":"Meta Ads","spend":100},
		{"date":"2024-01-10","channel":"Meta Ads","spend":100}
	]`
	etl, st := newETL(t, `[]`, dup, `[]`)

	if err := etl.Run(context.Background(), ""); err != nil {
		t.Fatalf("run 1: %v", err)
	}
	if got := st.SpendByDate()["2024-01-10"].Total.Spend; got != 200 {
		t.Fatalf("linhas idênticas deveriam somar: %v", got)
	}

	if err := etl.Run(context.Background(), ""); err != nil {
		t.Fatalf("run 2: %v", err)
	}
	if got := st.SpendByDate()["2024-01-10"].Total.Spend; got != 200 {
		t.Fatalf("reingestão duplicou: %v", got)
	}
}

func TestRunSinceSkipsOldRecords(t *testing.T) {
	etl, st := newETL(t, actsFeed, spendFeed, convFeed)

	if err := etl.Run(context.Background(), "2024-01-11"); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(st.Activities()) != 0 {
		t.Fatal("atividades antigas deveriam ser puladas")
	}
	if _, ok := st.ConversionsByDate()["2024-01-12"]; !ok {
		t.Fatal("conversão dentro do since deveria entrar")
	}
}

func TestRunRejectsMalformedDate(t *testing.T) {
	etl, _ := newETL(t, `[{"id":"a1","data_disparo":"10 de janeiro"}]`, `[]`, `[]`)

	err := etl.Run(context.Background(), "")
	if err == nil {
		t.Fatal("esperado erro de formato de data")
	}
	var fe *dates.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("erro não tipado: %v", err)
	}
}

func TestExportDaySignsPayload(t *testing.T) {
	var gotSig string
	var gotBody []byte
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Signature")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(200)
	}))
	defer sink.Close()

	etl, st := newETL(t, `[]`, `[]`, `[]`)
	etl.cfg.SinkURL = sink.URL
	etl.cfg.SinkSecret = "segredo"
	st.UpsertSpend(models.SpendRecord{Date: "2024-01-10", Channel: "Meta Ads", Spend: 100})
	st.UpsertConversion(models.ConversionRecord{Date: "2024-01-10", Cards: 4, Proposals: 9})

	n, err := etl.ExportDay(context.Background(), "2024-01-10")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if n != 1 {
		t.Fatalf("exported = %d", n)
	}

	mac := hmac.New(sha256.New, []byte("segredo"))
	mac.Write(gotBody)
	want := hex.EncodeToString(mac.Sum(nil))
	if gotSig != want {
		t.Fatalf("assinatura HMAC não confere: %q != %q", gotSig, want)
	}
}
