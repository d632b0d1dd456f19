// Package search implementa a busca por token sobre os labels da árvore,
// com ranqueamento que considera o caminho até a raiz.
package search

import (
	"math"
	"sort"
	"strings"

	"github.com/viacard/jornada-analytics/internal/models"
)

const (
	// DefaultMinScore corta candidatos abaixo deste score.
	DefaultMinScore = 10
	// MaxResults limita o ranking devolvido.
	MaxResults = 20

	scoreEqual    = 50.0
	scorePrefix   = 30.0
	scoreContains = 20.0
	ancestorScale = 0.4
)

// Index é o índice invertido palavra → nós, mais a adjacência necessária
// para expandir candidatos aos seus descendentes (um nó pode pontuar só
// pelo label de um ancestral).
type Index struct {
	nodes    map[string]*models.TreeNode
	words    map[string][]string
	children map[string][]string
}

// BuildIndex indexa cada palavra minúscula dos labels de nodeMap.
func BuildIndex(nodeMap map[string]*models.TreeNode) *Index {
	idx := &Index{
		nodes:    nodeMap,
		words:    make(map[string][]string),
		children: make(map[string][]string),
	}
	for id, n := range nodeMap {
		for _, w := range strings.Fields(strings.ToLower(n.Label)) {
			idx.words[w] = append(idx.words[w], id)
		}
		if n.ParentID != "" {
			idx.children[n.ParentID] = append(idx.children[n.ParentID], id)
		}
	}
	return idx
}

// Search ranqueia os nós contra a consulta. Por token: label igual vale
// 50, prefixo 30, substring 20 (primeira regra que casar); labels de
// ancestrais contribuem com 40% desses valores. Consulta idêntica ao
// label completo promove o score a 100. matchType é "exact" a partir de
// score 50. Devolve no máximo MaxResults, em ordem decrescente de score.
func (idx *Index) Search(query string, minScore int) []models.SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	tokens := strings.Fields(q)
	if len(tokens) == 0 {
		return nil
	}

	var results []models.SearchResult
	for id := range idx.candidates(tokens) {
		n := idx.nodes[id]
		score := idx.score(n, q, tokens)
		if score < float64(minScore) {
			continue
		}
		matchType := "partial"
		if score >= scoreEqual {
			matchType = "exact"
		}
		results = append(results, models.SearchResult{
			NodeID:    id,
			Label:     n.Label,
			Type:      n.Type,
			Path:      idx.Path(id),
			Score:     int(math.Min(100, math.Round(score))),
			MatchType: matchType,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Label != results[j].Label {
			return results[i].Label < results[j].Label
		}
		return results[i].NodeID < results[j].NodeID
	})
	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	return results
}

// candidates resolve os nós cujas palavras contêm algum token e expande
// cada um para a sua subárvore inteira, já que descendentes pontuam pelo
// label do ancestral. Produz o mesmo conjunto final que pontuar todos os
// nós, sem varrer a árvore toda por consulta.
func (idx *Index) candidates(tokens []string) map[string]struct{} {
	set := make(map[string]struct{})
	for word, ids := range idx.words {
		for _, t := range tokens {
			if strings.Contains(word, t) {
				for _, id := range ids {
					set[id] = struct{}{}
				}
				break
			}
		}
	}
	queue := make([]string, 0, len(set))
	for id := range set {
		queue = append(queue, id)
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range idx.children[id] {
			if _, ok := set[child]; !ok {
				set[child] = struct{}{}
				queue = append(queue, child)
			}
		}
	}
	return set
}

func (idx *Index) score(n *models.TreeNode, query string, tokens []string) float64 {
	label := strings.ToLower(n.Label)
	if label == query {
		return 100
	}
	var score float64
	for _, t := range tokens {
		score += labelScore(label, t)
	}
	for p := idx.parentOf(n); p != nil; p = idx.parentOf(p) {
		ancestor := strings.ToLower(p.Label)
		for _, t := range tokens {
			score += ancestorScale * labelScore(ancestor, t)
		}
	}
	return score
}

func labelScore(label, token string) float64 {
	switch {
	case label == token:
		return scoreEqual
	case strings.HasPrefix(label, token):
		return scorePrefix
	case strings.Contains(label, token):
		return scoreContains
	default:
		return 0
	}
}

func (idx *Index) parentOf(n *models.TreeNode) *models.TreeNode {
	if n == nil || n.ParentID == "" {
		return nil
	}
	return idx.nodes[n.ParentID]
}

// Path devolve a cadeia de labels da raiz até o nó, inclusivo.
func (idx *Index) Path(nodeID string) []string {
	var rev []string
	for n := idx.nodes[nodeID]; n != nil; n = idx.parentOf(n) {
		rev = append(rev, n.Label)
	}
	path := make([]string, len(rev))
	for i, l := range rev {
		path[len(rev)-1-i] = l
	}
	return path
}
