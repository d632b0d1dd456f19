package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/viacard/jornada-analytics/internal/config"
	"github.com/viacard/jornada-analytics/internal/correlation"
	"github.com/viacard/jornada-analytics/internal/dates"
	"github.com/viacard/jornada-analytics/internal/ingest"
	"github.com/viacard/jornada-analytics/internal/metrics"
	"github.com/viacard/jornada-analytics/internal/models"
	"github.com/viacard/jornada-analytics/internal/projection"
	"github.com/viacard/jornada-analytics/internal/recommend"
	"github.com/viacard/jornada-analytics/internal/search"
	"github.com/viacard/jornada-analytics/internal/store"
	"github.com/viacard/jornada-analytics/internal/tree"
	"github.com/viacard/jornada-analytics/internal/utils"
)

func NewRouter(log *slog.Logger, cfg config.Config, st *store.MemoryStore, etl *ingest.ETL, prom *metrics.Registry) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(prom.Instrument)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Method(http.MethodGet, "/metrics", prom.Handler())

	mux.Post("/ingest/run", func(w http.ResponseWriter, r *http.Request) {
		since := ""
		if q := r.URL.Query().Get("since"); q != "" {
			day, err := dates.Canonical(q)
			if err != nil {
				http.Error(w, err.Error(), 400)
				return
			}
			since = day
		}
		if err := etl.Run(r.Context(), since); err != nil {
			http.Error(w, err.Error(), 502)
			return
		}
		w.WriteHeader(202)
		w.Write([]byte("ingest started"))
	})

	mux.Post("/export/run", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("date")
		if q == "" {
			http.Error(w, "date required (YYYY-MM-DD)", 400)
			return
		}
		n, err := etl.ExportDay(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), 502)
			return
		}
		writeJSON(w, map[string]any{"exported": n})
	})

	mux.Get("/correlation", func(w http.ResponseWriter, r *http.Request) {
		from, err := dates.Canonical(r.URL.Query().Get("from"))
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		to, err := dates.Canonical(r.URL.Query().Get("to"))
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		writeJSON(w, correlation.Compute(st.SpendByDate(), st.ConversionsByDate(), from, to))
	})

	mux.Get("/tree", func(w http.ResponseWriter, r *http.Request) {
		f, err := filtersFromQuery(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		res := tree.Build(st.Activities(), f)
		writeJSON(w, map[string]any{"roots": res.Roots, "node_count": len(res.AllIDs)})
	})

	mux.Get("/tree/search", func(w http.ResponseWriter, r *http.Request) {
		f, err := filtersFromQuery(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		q := r.URL.Query().Get("q")
		if strings.TrimSpace(q) == "" {
			http.Error(w, "q required", 400)
			return
		}
		minScore := search.DefaultMinScore
		if v := r.URL.Query().Get("min_score"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				http.Error(w, "min_score must be an integer", 400)
				return
			}
			minScore = n
		}
		res := tree.Build(st.Activities(), f)
		idx := search.BuildIndex(res.NodeMap)
		writeJSON(w, idx.Search(q, minScore))
	})

	mux.Get("/tree/comparison", func(w http.ResponseWriter, r *http.Request) {
		f, err := filtersFromQuery(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		metric, ok := projection.ParseMetric(r.URL.Query().Get("metric"))
		if !ok {
			http.Error(w, "metric must be volume|cartoes|cac|custo", 400)
			return
		}
		if f.PeriodoInicio == "" {
			http.Error(w, "inicio required (YYYY-MM-DD)", 400)
			return
		}
		ids := csvList(r.URL.Query().Get("ids"))
		acts := st.Activities()
		res := tree.Build(acts, f)
		writeJSON(w, projection.Comparison(ids, res.NodeMap, metric, acts, f.PeriodoInicio))
	})

	mux.Get("/tree/node/{id}", func(w http.ResponseWriter, r *http.Request) {
		f, err := filtersFromQuery(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		acts := st.Activities()
		res := tree.Build(acts, f)
		node, ok := res.NodeMap[chi.URLParam(r, "id")]
		if !ok {
			http.Error(w, "node not found", 404)
			return
		}
		writeJSON(w, map[string]any{
			"node":   node,
			"detail": projection.Detail(node, acts),
		})
	})

	mux.Get("/recommendations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, recommend.Score(st.Activities()))
	})

	return mux
}

// filtersFromQuery monta os filtros do explorador a partir da query.
// Listas vazias não restringem; datas passam pela normalização canônica.
func filtersFromQuery(v url.Values) (models.ExplorerFilters, error) {
	f := models.ExplorerFilters{
		BUs:       csvList(v.Get("bu")),
		Segmentos: csvList(v.Get("segmento")),
		Jornadas:  csvList(v.Get("jornada")),
		Canais:    csvList(v.Get("canal")),
		Status:    csvList(v.Get("status")),
	}
	if q := v.Get("inicio"); q != "" {
		day, err := dates.Canonical(q)
		if err != nil {
			return f, err
		}
		f.PeriodoInicio = day
	}
	if q := v.Get("fim"); q != "" {
		day, err := dates.Canonical(q)
		if err != nil {
			return f, err
		}
		f.PeriodoFim = day
	}
	return f, nil
}

func csvList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
