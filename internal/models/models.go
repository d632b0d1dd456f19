package models

// ActivityRecord é um disparo de campanha com seus KPIs.
// KPIs ausentes entram como 0 nas somas; médias de CAC e taxa de conversão
// consideram apenas valores estritamente positivos.
type ActivityRecord struct {
	ID          string `json:"id"`
	BU          string `json:"bu"`
	Segmento    string `json:"segmento"`
	Jornada     string `json:"jornada"`
	Canal       string `json:"canal"`
	Parceiro    string `json:"parceiro"`
	Oferta      string `json:"oferta"`
	Promocional string `json:"promocional"`
	Status      string `json:"status"`
	DataDisparo string `json:"data_disparo"` // YYYY-MM-DD

	BaseEnviada   float64 `json:"base_enviada"`
	BaseEntregue  float64 `json:"base_entregue"`
	Propostas     float64 `json:"propostas"`
	Aprovados     float64 `json:"aprovados"`
	Cartoes       float64 `json:"cartoes"`
	CustoTotal    float64 `json:"custo_total"`
	CAC           float64 `json:"cac"`
	TaxaConversao float64 `json:"taxa_conversao"`
	TaxaAbertura  float64 `json:"taxa_abertura"`
}

// SpendRecord é uma linha de mídia paga, um dia/canal por linha.
type SpendRecord struct {
	Date        string  `json:"date"` // YYYY-MM-DD
	Channel     string  `json:"channel"`
	Spend       float64 `json:"spend"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Conversions float64 `json:"conversions"` // atribuídas via pixel
}

// ConversionRecord é uma linha de conversão por dia.
type ConversionRecord struct {
	Date      string  `json:"date"` // normalizada para YYYY-MM-DD
	Cards     float64 `json:"cards"`
	Proposals float64 `json:"proposals"`
}

// ChannelAgg acumula a mídia de um canal classificado em um dia.
type ChannelAgg struct {
	Spend       float64 `json:"spend"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Conversions float64 `json:"conversions"`
}

// SpendAgg é o balde diário de mídia: total e quebra Meta/Google/Outros.
type SpendAgg struct {
	Date   string     `json:"date"`
	Total  ChannelAgg `json:"total"`
	Meta   ChannelAgg `json:"meta"`
	Google ChannelAgg `json:"google"`
	Other  ChannelAgg `json:"other"`
}

// ConvAgg é o balde diário de conversões.
type ConvAgg struct {
	Date      string  `json:"date"`
	Cards     float64 `json:"cards"`
	Proposals float64 `json:"proposals"`
}
