package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/viacard/jornada-analytics/internal/models"
)

// MemoryStore guarda os três conjuntos de registros crus. Os motores
// analíticos operam sobre snapshots; nada aqui é mutado depois de lido.
type MemoryStore struct {
	mu         sync.RWMutex
	activities map[string]models.ActivityRecord
	spend      map[string]*models.SpendAgg
	conv       map[string]*models.ConvAgg
	seen       map[string]struct{} // idempotência por registro
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		activities: make(map[string]models.ActivityRecord),
		spend:      make(map[string]*models.SpendAgg),
		conv:       make(map[string]*models.ConvAgg),
		seen:       make(map[string]struct{}),
	}
}

func (s *MemoryStore) MarkSeen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

func (s *MemoryStore) UpsertActivity(a models.ActivityRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities[a.ID] = a
}

// ClassifyChannel mapeia o texto livre do canal de mídia para o balde
// Meta/Google/Outros por substring.
func ClassifyChannel(channel string) string {
	c := strings.ToLower(channel)
	switch {
	case strings.Contains(c, "meta"), strings.Contains(c, "face"), strings.Contains(c, "insta"):
		return "meta"
	case strings.Contains(c, "google"), strings.Contains(c, "adwords"), strings.Contains(c, "youtube"):
		return "google"
	default:
		return "other"
	}
}

// UpsertSpend soma a linha no balde do dia, no total e no sub-balde do
// canal classificado. Valores negativos entram como 0.
func (s *MemoryStore) UpsertSpend(r models.SpendRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, ok := s.spend[r.Date]
	if !ok {
		agg = &models.SpendAgg{Date: r.Date}
		s.spend[r.Date] = agg
	}
	add := func(c *models.ChannelAgg) {
		c.Spend += maxf(r.Spend)
		c.Impressions += maxf(r.Impressions)
		c.Clicks += maxf(r.Clicks)
		c.Conversions += maxf(r.Conversions)
	}
	add(&agg.Total)
	switch ClassifyChannel(r.Channel) {
	case "meta":
		add(&agg.Meta)
	case "google":
		add(&agg.Google)
	default:
		add(&agg.Other)
	}
}

func (s *MemoryStore) UpsertConversion(r models.ConversionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, ok := s.conv[r.Date]
	if !ok {
		agg = &models.ConvAgg{Date: r.Date}
		s.conv[r.Date] = agg
	}
	agg.Cards += maxf(r.Cards)
	agg.Proposals += maxf(r.Proposals)
}

// Activities devolve um snapshot em ordem determinista (data, depois id).
func (s *MemoryStore) Activities() []models.ActivityRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ActivityRecord, 0, len(s.activities))
	for _, a := range s.activities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DataDisparo != out[j].DataDisparo {
			return out[i].DataDisparo < out[j].DataDisparo
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *MemoryStore) SpendByDate() map[string]models.SpendAgg {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.SpendAgg, len(s.spend))
	for k, v := range s.spend {
		out[k] = *v
	}
	return out
}

func (s *MemoryStore) ConversionsByDate() map[string]models.ConvAgg {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.ConvAgg, len(s.conv))
	for k, v := range s.conv {
		out[k] = *v
	}
	return out
}

func maxf(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
