package models

// NodeType é o nível de um nó na hierarquia de exploração.
type NodeType string

const (
	NodeBU       NodeType = "bu"
	NodeSegmento NodeType = "segmento"
	NodeJornada  NodeType = "jornada"
	NodeCanal    NodeType = "canal"
)

// NodeMetrics é o roll-up de um nó. Somas simples para volumes e custo;
// cac e taxa_conversao são médias aritméticas simples sobre as linhas com
// valor estritamente positivo, recalculadas em cada nível a partir das
// folhas — não são deriváveis dos filhos nem ponderadas por volume.
type NodeMetrics struct {
	BaseTotal     float64 `json:"base_total"`
	Cartoes       float64 `json:"cartoes"`
	Propostas     float64 `json:"propostas"`
	Aprovados     float64 `json:"aprovados"`
	CustoTotal    float64 `json:"custo_total"`
	CAC           float64 `json:"cac"`
	TaxaConversao float64 `json:"taxa_conversao"`
}

// TreeNode é um agregado hierárquico BU → Segmento → Jornada → Canal.
type TreeNode struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Type        NodeType    `json:"type"`
	Count       int         `json:"count"`
	ParentID    string      `json:"parent_id,omitempty"` // vazio na raiz
	Metrics     NodeMetrics `json:"metrics"`
	Children    []*TreeNode `json:"children,omitempty"`
	ActivityIDs []string    `json:"activity_ids"`
	Color       string      `json:"color"`
}

// ExplorerFilters restringe as atividades que entram na árvore. Listas
// vazias não impõem restrição.
type ExplorerFilters struct {
	PeriodoInicio string   `json:"periodo_inicio"` // YYYY-MM-DD inclusivo
	PeriodoFim    string   `json:"periodo_fim"`    // YYYY-MM-DD inclusivo
	BUs           []string `json:"bus"`
	Segmentos     []string `json:"segmentos"`
	Jornadas      []string `json:"jornadas"`
	Canais        []string `json:"canais"`
	Status        []string `json:"status"`
}

// SearchResult é um nó ranqueado com o caminho completo até a raiz.
type SearchResult struct {
	NodeID    string   `json:"node_id"`
	Label     string   `json:"label"`
	Type      NodeType `json:"type"`
	Path      []string `json:"path"`
	Score     int      `json:"score"`      // 0..100
	MatchType string   `json:"match_type"` // "exact" | "partial"
}
