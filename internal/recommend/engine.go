// Package recommend ranqueia combos históricos (canal+oferta+segmento+
// promocional) por score composto de KPIs. Passada única e determinista,
// sem laço de feedback.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/viacard/jornada-analytics/internal/models"
)

const (
	weightCAC        = 0.4
	weightConversion = 0.4
	weightVolume     = 0.2

	conversionTarget = 0.05 // taxa que vale score 100
	volumeTarget     = 10.0 // disparos que valem score 100
)

// Score agrupa as atividades por combo e devolve os combos ranqueados por
// score decrescente.
func Score(activities []models.ActivityRecord) []models.Recommendation {
	type acc struct {
		rec     models.Recommendation
		cacSum  float64
		cacN    float64
		convSum float64
		convN   float64
	}
	groups := make(map[string]*acc)
	var order []string

	for _, a := range activities {
		key := strings.Join([]string{a.Canal, a.Oferta, a.Segmento, a.Promocional}, "|")
		g, ok := groups[key]
		if !ok {
			g = &acc{rec: models.Recommendation{
				Canal:       a.Canal,
				Oferta:      a.Oferta,
				Segmento:    a.Segmento,
				Promocional: a.Promocional,
			}}
			groups[key] = g
			order = append(order, key)
		}
		g.rec.Volume++
		g.rec.TotalCards += a.Cartoes
		if a.DataDisparo > g.rec.LastDispatch {
			g.rec.LastDispatch = a.DataDisparo
		}
		if a.CAC > 0 {
			g.cacSum += a.CAC
			g.cacN++
		}
		if a.TaxaConversao > 0 {
			g.convSum += a.TaxaConversao
			g.convN++
		}
	}

	out := make([]models.Recommendation, 0, len(groups))
	for _, key := range order {
		g := groups[key]
		r := g.rec
		if g.cacN > 0 {
			r.AvgCAC = g.cacSum / g.cacN
		}
		if g.convN > 0 {
			r.AvgConversionRate = g.convSum / g.convN
		}
		r.CACScore = clamp01(100 - r.AvgCAC/2)
		r.ConversionScore = clamp01(r.AvgConversionRate / conversionTarget * 100)
		r.VolumeScore = clamp01(float64(r.Volume) / volumeTarget * 100)
		r.Score = weightCAC*r.CACScore + weightConversion*r.ConversionScore + weightVolume*r.VolumeScore
		r.Insights = insights(r)
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Canal != b.Canal {
			return a.Canal < b.Canal
		}
		if a.Oferta != b.Oferta {
			return a.Oferta < b.Oferta
		}
		if a.Segmento != b.Segmento {
			return a.Segmento < b.Segmento
		}
		return a.Promocional < b.Promocional
	})
	return out
}

func insights(r models.Recommendation) []string {
	var out []string
	switch {
	case r.AvgCAC > 0 && r.AvgCAC <= 50:
		out = append(out, fmt.Sprintf("CAC médio de R$ %.2f, abaixo da meta", r.AvgCAC))
	case r.AvgCAC > 150:
		out = append(out, fmt.Sprintf("CAC médio de R$ %.2f, acima do aceitável", r.AvgCAC))
	}
	if r.AvgConversionRate >= conversionTarget {
		out = append(out, "Taxa de conversão acima do alvo de 5%")
	}
	if r.Volume < 3 {
		out = append(out, "Histórico curto: poucos disparos para confiar no combo")
	}
	if r.TotalCards >= 100 {
		out = append(out, fmt.Sprintf("%.0f cartões emitidos no histórico do combo", r.TotalCards))
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
