// Package correlation estima quanto da emissão diária de cartões está
// estatisticamente associada ao gasto de mídia, considerando o atraso
// entre o gasto e a conversão reportada (lag em dias).
package correlation

import (
	"fmt"
	"math"

	"github.com/viacard/jornada-analytics/internal/dates"
	"github.com/viacard/jornada-analytics/internal/models"
)

const (
	maxLag = 7 // janela de busca de lag: 0..7 dias

	influenceScaleMin = 0.9
	influenceScaleMax = 1.1
	influenceFloor    = 0.05
	influenceCeil     = 0.95
)

// Compute roda a busca de melhor lag, a regressão linear e a projeção da
// série diária para o intervalo [from, to]. Função pura: datas ausentes
// valem 0, divisões por zero degradam para 0, nunca há erro.
func Compute(spendByDate map[string]models.SpendAgg, convByDate map[string]models.ConvAgg, from, to string) models.CorrelationResult {
	days := dates.Range(from, to)
	if len(days) == 0 {
		return models.CorrelationResult{Stats: insufficientStats(0)}
	}

	bestLag := bestLagFor(spendByDate, convByDate, days)
	xs, ys := laggedPairs(spendByDate, convByDate, days, bestLag)

	series := buildSeries(spendByDate, convByDate, days, bestLag)
	stats := buildStats(spendByDate, convByDate, days, bestLag, xs, ys)

	return models.CorrelationResult{BestLag: bestLag, Series: series, Stats: stats}
}

// bestLagFor varre os lags em ordem crescente e fica com o primeiro que
// maximiza R² (comparação estrita, empate favorece o menor lag). Com menos
// de 5 dias no intervalo a busca não é confiável e o lag fica em 0.
func bestLagFor(spend map[string]models.SpendAgg, conv map[string]models.ConvAgg, days []string) int {
	if len(days) < 5 {
		return 0
	}
	best, bestR2 := 0, 0.0
	for lag := 0; lag <= maxLag; lag++ {
		xs, ys := laggedPairs(spend, conv, days, lag)
		r := pearson(xs, ys)
		if r2 := r * r; r2 > bestR2 {
			best, bestR2 = lag, r2
		}
	}
	return best
}

// laggedPairs monta os pares (gasto[d], cartões[d+lag]) restritos aos dias
// com gasto positivo.
func laggedPairs(spend map[string]models.SpendAgg, conv map[string]models.ConvAgg, days []string, lag int) (xs, ys []float64) {
	for _, d := range days {
		x := spend[d].Total.Spend
		if x <= 0 {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, conv[dates.AddDays(d, lag)].Cards)
	}
	return xs, ys
}

// pearson calcula r pela forma de somas; denominador 0 devolve 0.
func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	if n == 0 {
		return 0
	}
	var sx, sy, sxy, sxx, syy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
		sxy += xs[i] * ys[i]
		sxx += xs[i] * xs[i]
		syy += ys[i] * ys[i]
	}
	den := math.Sqrt((n*sxx - sx*sx) * (n*syy - sy*sy))
	if den == 0 {
		return 0
	}
	return (n*sxy - sx*sy) / den
}

// olsFit devolve slope e intercept de mínimos quadrados, com guarda para
// denominador 0.
func olsFit(xs, ys []float64) (slope, intercept float64) {
	n := float64(len(xs))
	if n == 0 {
		return 0, 0
	}
	var sx, sy, sxy, sxx float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
		sxy += xs[i] * ys[i]
		sxx += xs[i] * xs[i]
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return 0, 0
	}
	slope = (n*sxy - sx*sy) / den
	intercept = (sy - slope*sx) / n
	return slope, intercept
}

func buildSeries(spend map[string]models.SpendAgg, conv map[string]models.ConvAgg, days []string, bestLag int) []models.CorrelationDataPoint {
	series := make([]models.CorrelationDataPoint, 0, len(days))
	var cumSpend, cumCards float64
	for _, d := range days {
		sa := spend[d]
		ca := conv[d]
		cumSpend += sa.Total.Spend
		cumCards += ca.Cards
		series = append(series, models.CorrelationDataPoint{
			Date:             d,
			SpendTotal:       sa.Total.Spend,
			SpendMeta:        sa.Meta.Spend,
			SpendGoogle:      sa.Google.Spend,
			SpendOther:       sa.Other.Spend,
			Impressions:      sa.Total.Impressions,
			Clicks:           sa.Total.Clicks,
			PixelConversions: sa.Total.Conversions,
			PixelMeta:        sa.Meta.Conversions,
			PixelGoogle:      sa.Google.Conversions,
			Cards:            ca.Cards,
			Proposals:        ca.Proposals,
			CumSpend:         cumSpend,
			CumCards:         cumCards,
			SameDayCPA:       safeDiv(sa.Total.Spend, ca.Cards),
			LaggedCards:      conv[dates.AddDays(d, bestLag)].Cards,
		})
	}
	return series
}

func buildStats(spend map[string]models.SpendAgg, conv map[string]models.ConvAgg, days []string, bestLag int, xs, ys []float64) models.CorrelationStats {
	var totalSpend, totalCards, totalProposals float64
	var impressions, clicks float64
	var metaSpend, metaPixel, googleSpend, googlePixel float64
	for _, d := range days {
		sa := spend[d]
		ca := conv[d]
		totalSpend += sa.Total.Spend
		totalCards += ca.Cards
		totalProposals += ca.Proposals
		impressions += sa.Total.Impressions
		clicks += sa.Total.Clicks
		metaSpend += sa.Meta.Spend
		metaPixel += sa.Meta.Conversions
		googleSpend += sa.Google.Spend
		googlePixel += sa.Google.Conversions
	}

	st := insufficientStats(bestLag)
	st.TotalSpend = totalSpend
	st.TotalCards = totalCards
	st.AvgCpm = safeDiv(totalSpend, impressions) * 1000
	st.AvgCtr = safeDiv(clicks, impressions)
	st.ConversionRateB2C = safeDiv(totalCards, totalProposals)
	st.MetaPixelCpa = safeDiv(metaSpend, metaPixel)
	st.GooglePixelCpa = safeDiv(googleSpend, googlePixel)

	if len(xs) < 2 {
		return st
	}

	r := pearson(xs, ys)
	slope, intercept := olsFit(xs, ys)
	r2 := r * r

	st.Correlation = r
	st.RSquared = r2
	st.Slope = slope
	st.Intercept = intercept
	st.Formula = fmt.Sprintf("y = %.4fx + %.2f", slope, intercept)
	st.Quality = qualityTier(r2)

	st.InfluenceMin = clamp(r2*influenceScaleMin, influenceFloor, influenceCeil)
	st.InfluenceMax = clamp(r2*influenceScaleMax, influenceFloor, influenceCeil)
	st.EstimatedCardsMin = totalCards * st.InfluenceMin
	st.EstimatedCardsMax = totalCards * st.InfluenceMax

	cpa := safeDiv(totalSpend, totalCards)
	st.EffectiveCpa = cpa
	st.EffectiveCpaMin = cpa
	st.EffectiveCpaMax = cpa

	return st
}

func insufficientStats(bestLag int) models.CorrelationStats {
	return models.CorrelationStats{BestLag: bestLag, Formula: "N/A", Quality: "Baixa"}
}

func qualityTier(r2 float64) string {
	switch {
	case r2 >= 0.6:
		return "Alta"
	case r2 >= 0.3:
		return "Moderada"
	default:
		return "Baixa"
	}
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
