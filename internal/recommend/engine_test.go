package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viacard/jornada-analytics/internal/models"
)

func combo(id, canal, oferta string, cac, taxa, cartoes float64, data string) models.ActivityRecord {
	return models.ActivityRecord{
		ID: id, Canal: canal, Oferta: oferta, Segmento: "S", Promocional: "P",
		CAC: cac, TaxaConversao: taxa, Cartoes: cartoes, DataDisparo: data,
	}
}

func TestScoreFormula(t *testing.T) {
	acts := []models.ActivityRecord{
		combo("a1", "Email", "Gold", 100, 0.05, 10, "2024-01-01"),
	}

	recs := Score(acts)
	require.Len(t, recs, 1)
	r := recs[0]

	// cac: 100 − 100/2 = 50; conversão: 0.05/0.05 = 100; volume: 1/10 = 10
	assert.Equal(t, 50.0, r.CACScore)
	assert.Equal(t, 100.0, r.ConversionScore)
	assert.Equal(t, 10.0, r.VolumeScore)
	assert.InDelta(t, 0.4*50+0.4*100+0.2*10, r.Score, 1e-9)
}

func TestAveragesIgnoreNonPositive(t *testing.T) {
	acts := []models.ActivityRecord{
		combo("a1", "Email", "Gold", 0, 0, 1, "2024-01-01"),
		combo("a2", "Email", "Gold", 100, 0.02, 2, "2024-01-05"),
		combo("a3", "Email", "Gold", 200, 0.04, 3, "2024-01-03"),
	}

	recs := Score(acts)
	require.Len(t, recs, 1)
	r := recs[0]

	assert.Equal(t, 150.0, r.AvgCAC)
	assert.InDelta(t, 0.03, r.AvgConversionRate, 1e-9)
	assert.Equal(t, 3, r.Volume)
	assert.Equal(t, 6.0, r.TotalCards)
	assert.Equal(t, "2024-01-05", r.LastDispatch)
}

func TestGroupingByComboKey(t *testing.T) {
	acts := []models.ActivityRecord{
		combo("a1", "Email", "Gold", 10, 0.05, 1, "2024-01-01"),
		combo("a2", "SMS", "Gold", 10, 0.05, 1, "2024-01-01"),
		combo("a3", "Email", "Black", 10, 0.05, 1, "2024-01-01"),
	}

	recs := Score(acts)
	assert.Len(t, recs, 3)
}

func TestRankingDescending(t *testing.T) {
	acts := []models.ActivityRecord{
		combo("a1", "Email", "Gold", 300, 0.001, 1, "2024-01-01"),
		combo("a2", "SMS", "Black", 20, 0.06, 1, "2024-01-01"),
	}

	recs := Score(acts)
	require.Len(t, recs, 2)
	assert.Equal(t, "SMS", recs[0].Canal)
	assert.GreaterOrEqual(t, recs[0].Score, recs[1].Score)
}

func TestTieBreakComparesFieldsSeparately(t *testing.T) {
	// mesmos KPIs → mesmo score; a concatenação canal+oferta colidiria
	// ("AB"+"C" == "A"+"BC"), a comparação por campo não
	acts := []models.ActivityRecord{
		combo("a1", "AB", "C", 100, 0.02, 1, "2024-01-01"),
		combo("a2", "A", "BC", 100, 0.02, 1, "2024-01-01"),
	}

	recs := Score(acts)
	require.Len(t, recs, 2)
	assert.Equal(t, recs[0].Score, recs[1].Score)
	assert.Equal(t, "A", recs[0].Canal)
	assert.Equal(t, "AB", recs[1].Canal)
}

func TestScoresClampedTo0100(t *testing.T) {
	acts := []models.ActivityRecord{
		combo("a1", "Email", "Gold", 500, 0.5, 1, "2024-01-01"), // CAC estoura por baixo, conversão por cima
	}

	recs := Score(acts)
	require.Len(t, recs, 1)
	assert.Equal(t, 0.0, recs[0].CACScore)
	assert.Equal(t, 100.0, recs[0].ConversionScore)
}
