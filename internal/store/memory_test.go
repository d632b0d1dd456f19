package store

import (
	"testing"

	"github.com/viacard/jornada-analytics/internal/models"
)

func TestMarkSeenIsIdempotent(t *testing.T) {
	st := NewMemoryStore()
	if !st.MarkSeen("act|a1") {
		t.Fatal("primeira vez deveria passar")
	}
	if st.MarkSeen("act|a1") {
		t.Fatal("repetição deveria ser barrada")
	}
}

func TestUpsertSpendClassifiesChannels(t *testing.T) {
	st := NewMemoryStore()
	st.UpsertSpend(models.SpendRecord{Date: "2024-01-01", Channel: "Meta Ads - Conversao", Spend: 100, Impressions: 1000, Clicks: 50, Conversions: 2})
	st.UpsertSpend(models.SpendRecord{Date: "2024-01-01", Channel: "google_search", Spend: 60, Clicks: 20})
	st.UpsertSpend(models.SpendRecord{Date: "2024-01-01", Channel: "TikTok", Spend: 40})

	agg, ok := st.SpendByDate()["2024-01-01"]
	if !ok {
		t.Fatal("balde do dia não criado")
	}
	if agg.Total.Spend != 200 {
		t.Fatalf("total = %v", agg.Total.Spend)
	}
	if agg.Meta.Spend != 100 || agg.Google.Spend != 60 || agg.Other.Spend != 40 {
		t.Fatalf("quebra por canal errada: %+v", agg)
	}
	if agg.Meta.Conversions != 2 {
		t.Fatalf("pixel meta = %v", agg.Meta.Conversions)
	}
}

func TestClassifyChannel(t *testing.T) {
	cases := map[string]string{
		"Meta Ads":    "meta",
		"facebook":    "meta",
		"Instagram":   "meta",
		"Google Ads":  "google",
		"adwords":     "google",
		"YouTube":     "google",
		"TikTok":      "other",
		"Influencers": "other",
	}
	for in, want := range cases {
		if got := ClassifyChannel(in); got != want {
			t.Fatalf("ClassifyChannel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNegativeValuesClampToZero(t *testing.T) {
	st := NewMemoryStore()
	st.UpsertSpend(models.SpendRecord{Date: "2024-01-01", Channel: "meta", Spend: -10})
	st.UpsertConversion(models.ConversionRecord{Date: "2024-01-01", Cards: -5, Proposals: 3})

	if got := st.SpendByDate()["2024-01-01"].Total.Spend; got != 0 {
		t.Fatalf("gasto negativo deveria virar 0, got %v", got)
	}
	conv := st.ConversionsByDate()["2024-01-01"]
	if conv.Cards != 0 || conv.Proposals != 3 {
		t.Fatalf("conv = %+v", conv)
	}
}

func TestConversionsSumPerDate(t *testing.T) {
	st := NewMemoryStore()
	st.UpsertConversion(models.ConversionRecord{Date: "2024-01-01", Cards: 5, Proposals: 10})
	st.UpsertConversion(models.ConversionRecord{Date: "2024-01-01", Cards: 3, Proposals: 4})

	conv := st.ConversionsByDate()["2024-01-01"]
	if conv.Cards != 8 || conv.Proposals != 14 {
		t.Fatalf("conv = %+v", conv)
	}
}

func TestActivitiesSnapshotIsDeterministic(t *testing.T) {
	st := NewMemoryStore()
	st.UpsertActivity(models.ActivityRecord{ID: "b", DataDisparo: "2024-01-02"})
	st.UpsertActivity(models.ActivityRecord{ID: "a", DataDisparo: "2024-01-02"})
	st.UpsertActivity(models.ActivityRecord{ID: "c", DataDisparo: "2024-01-01"})

	acts := st.Activities()
	if len(acts) != 3 {
		t.Fatalf("len = %d", len(acts))
	}
	if acts[0].ID != "c" || acts[1].ID != "a" || acts[2].ID != "b" {
		t.Fatalf("ordem: %v %v %v", acts[0].ID, acts[1].ID, acts[2].ID)
	}
}
