package models

// CorrelationDataPoint é um dia da série gasto × emissões.
type CorrelationDataPoint struct {
	Date string `json:"date"`

	SpendTotal  float64 `json:"spend_total"`
	SpendMeta   float64 `json:"spend_meta"`
	SpendGoogle float64 `json:"spend_google"`
	SpendOther  float64 `json:"spend_other"`

	Impressions      float64 `json:"impressions"`
	Clicks           float64 `json:"clicks"`
	PixelConversions float64 `json:"pixel_conversions"`
	PixelMeta        float64 `json:"pixel_meta"`
	PixelGoogle      float64 `json:"pixel_google"`

	Cards     float64 `json:"cards"`
	Proposals float64 `json:"proposals"`

	CumSpend float64 `json:"cum_spend"`
	CumCards float64 `json:"cum_cards"`

	// CPA do próprio dia (gasto/cartões do dia), 0 quando não há cartões.
	SameDayCPA float64 `json:"same_day_cpa"`
	// Cartões emitidos bestLag dias depois deste gasto — variável
	// dependente da regressão.
	LaggedCards float64 `json:"lagged_cards"`
}

// CorrelationStats resume a regressão do melhor lag. A faixa de influência
// é uma banda heurística (R² escalado e limitado), não um intervalo de
// confiança estatístico.
type CorrelationStats struct {
	RSquared    float64 `json:"r_squared"`
	Correlation float64 `json:"correlation"`
	Slope       float64 `json:"slope"`
	Intercept   float64 `json:"intercept"`
	BestLag     int     `json:"best_lag"`
	Formula     string  `json:"formula"` // "N/A" com menos de 2 pontos
	Quality     string  `json:"quality"` // "Alta" | "Moderada" | "Baixa"

	InfluenceMin float64 `json:"influence_min"`
	InfluenceMax float64 `json:"influence_max"`

	EstimatedCardsMin float64 `json:"estimated_cards_min"`
	EstimatedCardsMax float64 `json:"estimated_cards_max"`

	TotalSpend      float64 `json:"total_spend"`
	TotalCards      float64 `json:"total_cards"`
	EffectiveCpa    float64 `json:"effective_cpa"`
	EffectiveCpaMin float64 `json:"effective_cpa_min"`
	EffectiveCpaMax float64 `json:"effective_cpa_max"`

	AvgCpm            float64 `json:"avg_cpm"`
	AvgCtr            float64 `json:"avg_ctr"`
	ConversionRateB2C float64 `json:"conversion_rate_b2c"`

	MetaPixelCpa   float64 `json:"meta_pixel_cpa"`
	GooglePixelCpa float64 `json:"google_pixel_cpa"`
}

// CorrelationResult é a saída completa do motor de correlação.
type CorrelationResult struct {
	BestLag int                    `json:"best_lag"`
	Series  []CorrelationDataPoint `json:"series"`
	Stats   CorrelationStats       `json:"stats"`
}

// Recommendation é um combo histórico ranqueado por score composto.
type Recommendation struct {
	Canal       string `json:"canal"`
	Oferta      string `json:"oferta"`
	Segmento    string `json:"segmento"`
	Promocional string `json:"promocional"`

	AvgCAC            float64 `json:"avg_cac"`
	AvgConversionRate float64 `json:"avg_conversion_rate"`
	Volume            int     `json:"volume"` // disparos no combo
	TotalCards        float64 `json:"total_cards"`
	LastDispatch      string  `json:"last_dispatch"`

	CACScore        float64  `json:"cac_score"`
	ConversionScore float64  `json:"conversion_score"`
	VolumeScore     float64  `json:"volume_score"`
	Score           float64  `json:"score"`
	Insights        []string `json:"insights"`
}
