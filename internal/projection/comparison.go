// Package projection transforma a árvore e as atividades-folha em séries
// prontas para gráfico: barras comparativas, heatmap semanal, distribuição
// por canal e top ofertas.
package projection

import (
	"sort"

	"github.com/viacard/jornada-analytics/internal/dates"
	"github.com/viacard/jornada-analytics/internal/models"
)

// Metric identifica o valor extraído de cada nó/atividade. O mapeamento é
// por função acessora, não por nome de campo dinâmico.
type Metric string

const (
	MetricVolume  Metric = "volume"
	MetricCartoes Metric = "cartoes"
	MetricCAC     Metric = "cac"
	MetricCusto   Metric = "custo"
)

// heatmapWeeks é a janela fixa de semanas a partir de StartOfWeek(início).
const heatmapWeeks = 5

var nodeAccessors = map[Metric]func(models.NodeMetrics) float64{
	MetricVolume:  func(m models.NodeMetrics) float64 { return m.BaseTotal },
	MetricCartoes: func(m models.NodeMetrics) float64 { return m.Cartoes },
	MetricCAC:     func(m models.NodeMetrics) float64 { return m.CAC },
	MetricCusto:   func(m models.NodeMetrics) float64 { return m.CustoTotal },
}

var activityAccessors = map[Metric]func(models.ActivityRecord) float64{
	MetricVolume:  func(a models.ActivityRecord) float64 { return a.BaseEnviada },
	MetricCartoes: func(a models.ActivityRecord) float64 { return a.Cartoes },
	MetricCAC:     func(a models.ActivityRecord) float64 { return a.CAC },
	MetricCusto:   func(a models.ActivityRecord) float64 { return a.CustoTotal },
}

// ParseMetric valida o nome externo da métrica.
func ParseMetric(s string) (Metric, bool) {
	m := Metric(s)
	_, ok := nodeAccessors[m]
	return m, ok
}

type BarItem struct {
	NodeID string  `json:"node_id"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Color  string  `json:"color"`
}

type HeatmapCell struct {
	NodeID    string  `json:"node_id"`
	Label     string  `json:"label"`
	Week      int     `json:"week"` // 0..4
	Count     int     `json:"count"`
	Value     float64 `json:"value"`
	Intensity float64 `json:"intensity"` // value / máximo entre todas as células
}

type ChannelShare struct {
	Canal      string  `json:"canal"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type OfferTotal struct {
	Oferta  string  `json:"oferta"`
	Cartoes float64 `json:"cartoes"`
}

type ComparisonResult struct {
	Bars       []BarItem     `json:"bars"`
	Heatmap    []HeatmapCell `json:"heatmap"`
	WeekLabels []string      `json:"week_labels"`
}

type NodeDetail struct {
	Channels  []ChannelShare `json:"channels"`
	TopOffers []OfferTotal   `json:"top_offers"`
}

// Comparison projeta os nós selecionados (ou, sem seleção, todas as raízes
// de BU) em barras por métrica e no heatmap de 5 semanas contadas a partir
// da segunda-feira da semana de periodStart.
func Comparison(selectedIDs []string, nodeMap map[string]*models.TreeNode, metric Metric, allActivities []models.ActivityRecord, periodStart string) ComparisonResult {
	nodes := resolveNodes(selectedIDs, nodeMap)

	bars := make([]BarItem, 0, len(nodes))
	value := nodeAccessors[metric]
	for _, n := range nodes {
		bars = append(bars, BarItem{NodeID: n.ID, Label: n.Label, Value: value(n.Metrics), Color: n.Color})
	}
	sort.Slice(bars, func(i, j int) bool {
		if bars[i].Value != bars[j].Value {
			return bars[i].Value > bars[j].Value
		}
		return bars[i].Label < bars[j].Label
	})

	// sem um início de período válido não há como ancorar as semanas;
	// melhor nenhum heatmap do que todos os disparos na semana 0
	if _, err := dates.ParseDay(periodStart); err != nil {
		return ComparisonResult{Bars: bars}
	}

	return ComparisonResult{
		Bars:       bars,
		Heatmap:    heatmap(nodes, metric, allActivities, periodStart),
		WeekLabels: weekLabels(periodStart),
	}
}

// resolveNodes devolve a seleção em ordem determinista; seleção vazia cai
// para as raízes (nós de BU).
func resolveNodes(selectedIDs []string, nodeMap map[string]*models.TreeNode) []*models.TreeNode {
	var nodes []*models.TreeNode
	if len(selectedIDs) > 0 {
		for _, id := range selectedIDs {
			if n, ok := nodeMap[id]; ok {
				nodes = append(nodes, n)
			}
		}
	} else {
		for _, n := range nodeMap {
			if n.Type == models.NodeBU {
				nodes = append(nodes, n)
			}
		}
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Label != nodes[j].Label {
			return nodes[i].Label < nodes[j].Label
		}
		return nodes[i].ID < nodes[j].ID
	})
	return nodes
}

func heatmap(nodes []*models.TreeNode, metric Metric, allActivities []models.ActivityRecord, periodStart string) []HeatmapCell {
	byID := make(map[string]models.ActivityRecord, len(allActivities))
	for _, a := range allActivities {
		byID[a.ID] = a
	}
	weekStart := dates.StartOfWeek(periodStart)
	value := activityAccessors[metric]

	type cellKey struct {
		node string
		week int
	}
	cells := make(map[cellKey]*HeatmapCell)
	for _, n := range nodes {
		for _, id := range n.ActivityIDs {
			a, ok := byID[id]
			if !ok {
				continue
			}
			d := dates.DaysBetween(weekStart, a.DataDisparo)
			if d < 0 {
				continue
			}
			w := d / 7
			if w >= heatmapWeeks {
				continue // fora da janela, descartada em silêncio
			}
			k := cellKey{n.ID, w}
			c, ok := cells[k]
			if !ok {
				c = &HeatmapCell{NodeID: n.ID, Label: n.Label, Week: w}
				cells[k] = c
			}
			c.Count++
			c.Value += value(a)
		}
	}

	out := make([]HeatmapCell, 0, len(cells))
	for _, c := range cells {
		out = append(out, *c)
	}

	var max float64
	for i := range out {
		if out[i].Value > max {
			max = out[i].Value
		}
	}
	if max > 0 {
		for i := range out {
			out[i].Intensity = out[i].Value / max
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		if out[i].NodeID != out[j].NodeID {
			return out[i].NodeID < out[j].NodeID
		}
		return out[i].Week < out[j].Week
	})
	return out
}

func weekLabels(periodStart string) []string {
	start := dates.StartOfWeek(periodStart)
	labels := make([]string, heatmapWeeks)
	for i := range labels {
		key := dates.AddDays(start, i*7)
		if t, err := dates.ParseDay(key); err == nil {
			labels[i] = t.Format("02/01")
		} else {
			labels[i] = key
		}
	}
	return labels
}

// Detail projeta as folhas de um único nó em distribuição por canal e nas
// três ofertas com mais cartões.
func Detail(node *models.TreeNode, allActivities []models.ActivityRecord) NodeDetail {
	byID := make(map[string]models.ActivityRecord, len(allActivities))
	for _, a := range allActivities {
		byID[a.ID] = a
	}

	channelCount := make(map[string]int)
	offerCards := make(map[string]float64)
	total := 0
	for _, id := range node.ActivityIDs {
		a, ok := byID[id]
		if !ok {
			continue
		}
		channelCount[a.Canal]++
		offerCards[a.Oferta] += a.Cartoes
		total++
	}

	channels := make([]ChannelShare, 0, len(channelCount))
	for canal, count := range channelCount {
		pct := 0.0
		if total > 0 {
			pct = float64(count) / float64(total) * 100
		}
		channels = append(channels, ChannelShare{Canal: canal, Count: count, Percentage: pct})
	}
	sort.Slice(channels, func(i, j int) bool {
		if channels[i].Count != channels[j].Count {
			return channels[i].Count > channels[j].Count
		}
		return channels[i].Canal < channels[j].Canal
	})

	offers := make([]OfferTotal, 0, len(offerCards))
	for oferta, cards := range offerCards {
		offers = append(offers, OfferTotal{Oferta: oferta, Cartoes: cards})
	}
	sort.Slice(offers, func(i, j int) bool {
		if offers[i].Cartoes != offers[j].Cartoes {
			return offers[i].Cartoes > offers[j].Cartoes
		}
		return offers[i].Oferta < offers[j].Oferta
	})
	if len(offers) > 3 {
		offers = offers[:3]
	}

	return NodeDetail{Channels: channels, TopOffers: offers}
}
