// Package tree monta a hierarquia de exploração BU → Segmento → Jornada →
// Canal a partir das atividades filtradas, com métricas de roll-up por nó.
// A árvore é reconstruída inteira a cada chamada: função pura de
// (atividades, filtros), com ids e ordenação estáveis entre reconstruções.
package tree

import (
	"regexp"
	"sort"
	"strings"

	"github.com/viacard/jornada-analytics/internal/dates"
	"github.com/viacard/jornada-analytics/internal/models"
)

const (
	missingBU    = "(sem BU)"
	missingValue = "(sem valor)"
	defaultColor = "#9CA3AF"
)

var buPalette = map[string]string{
	"B2C":   "#3B82F6",
	"B2B2C": "#8B5CF6",
	"B2B":   "#10B981",
	"PME":   "#F59E0B",
}

var channelPalette = map[string]string{
	"Email":    "#2563EB",
	"SMS":      "#F59E0B",
	"Push":     "#10B981",
	"WhatsApp": "#22C55E",
	"RCS":      "#8B5CF6",
}

// Result é a árvore montada mais o índice plano id → nó.
type Result struct {
	Roots   []*models.TreeNode
	NodeMap map[string]*models.TreeNode
	AllIDs  []string
}

type level struct {
	typ      models.NodeType
	fallback string
	key      func(models.ActivityRecord) string
}

var levels = []level{
	{models.NodeBU, missingBU, func(a models.ActivityRecord) string { return a.BU }},
	{models.NodeSegmento, missingValue, func(a models.ActivityRecord) string { return a.Segmento }},
	{models.NodeJornada, missingValue, func(a models.ActivityRecord) string { return a.Jornada }},
	{models.NodeCanal, missingValue, func(a models.ActivityRecord) string { return a.Canal }},
}

// Build filtra as atividades e agrupa nos quatro níveis. Grupos de cada
// nível saem em ordem alfabética de label.
func Build(activities []models.ActivityRecord, f models.ExplorerFilters) Result {
	res := Result{NodeMap: make(map[string]*models.TreeNode)}

	var rows []models.ActivityRecord
	for _, a := range activities {
		if matches(a, f) {
			rows = append(rows, a)
		}
	}

	res.Roots = buildLevel(rows, 0, nil, &res)
	return res
}

func matches(a models.ActivityRecord, f models.ExplorerFilters) bool {
	if !dates.Between(a.DataDisparo, f.PeriodoInicio, f.PeriodoFim) {
		return false
	}
	return inList(a.BU, f.BUs) &&
		inList(a.Segmento, f.Segmentos) &&
		inList(a.Jornada, f.Jornadas) &&
		inList(a.Canal, f.Canais) &&
		inList(a.Status, f.Status)
}

// inList: lista vazia não restringe.
func inList(v string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, x := range allowed {
		if v == x {
			return true
		}
	}
	return false
}

func buildLevel(rows []models.ActivityRecord, depth int, parent *models.TreeNode, res *Result) []*models.TreeNode {
	lv := levels[depth]

	groups := make(map[string][]models.ActivityRecord)
	for _, a := range rows {
		label := lv.key(a)
		if strings.TrimSpace(label) == "" {
			label = lv.fallback
		}
		groups[label] = append(groups[label], a)
	}

	labels := make([]string, 0, len(groups))
	for l := range groups {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	nodes := make([]*models.TreeNode, 0, len(labels))
	for _, label := range labels {
		group := groups[label]

		id := Slug(label)
		parentID := ""
		if parent != nil {
			parentID = parent.ID
			id = parentID + "-" + Slug(label)
		}

		node := &models.TreeNode{
			ID:          id,
			Label:       label,
			Type:        lv.typ,
			Count:       len(group),
			ParentID:    parentID,
			Metrics:     AggregateMetrics(group),
			ActivityIDs: activityIDs(group),
			Color:       colorFor(lv.typ, label, parent),
		}
		res.NodeMap[id] = node
		res.AllIDs = append(res.AllIDs, id)

		if depth+1 < len(levels) {
			node.Children = buildLevel(group, depth+1, node, res)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func colorFor(typ models.NodeType, label string, parent *models.TreeNode) string {
	switch typ {
	case models.NodeBU:
		if c, ok := buPalette[label]; ok {
			return c
		}
		return defaultColor
	case models.NodeCanal:
		if c, ok := channelPalette[label]; ok {
			return c
		}
	}
	if parent != nil {
		return parent.Color
	}
	return defaultColor
}

func activityIDs(rows []models.ActivityRecord) []string {
	ids := make([]string, len(rows))
	for i, a := range rows {
		ids[i] = a.ID
	}
	return ids
}

// AggregateMetrics recalcula o roll-up direto das linhas-folha do nó.
// Somas para volumes e custo; cac e taxa de conversão são médias simples
// sobre valores estritamente positivos (sem ponderar por volume).
func AggregateMetrics(rows []models.ActivityRecord) models.NodeMetrics {
	var m models.NodeMetrics
	var cacSum, cacN, taxaSum, taxaN float64
	for _, a := range rows {
		m.BaseTotal += a.BaseEnviada
		m.Cartoes += a.Cartoes
		m.Propostas += a.Propostas
		m.Aprovados += a.Aprovados
		m.CustoTotal += a.CustoTotal
		if a.CAC > 0 {
			cacSum += a.CAC
			cacN++
		}
		if a.TaxaConversao > 0 {
			taxaSum += a.TaxaConversao
			taxaN++
		}
	}
	if cacN > 0 {
		m.CAC = cacSum / cacN
	}
	if taxaN > 0 {
		m.TaxaConversao = taxaSum / taxaN
	}
	return m
}

var (
	nonWordRe = regexp.MustCompile(`[^\w\s-]`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// Slug normaliza um label para compor ids: minúsculas, remove o que não é
// palavra/espaço/hífen e troca espaços por underscore.
func Slug(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = nonWordRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, "_")
	return s
}
