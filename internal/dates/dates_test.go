package dates

import (
	"errors"
	"testing"
)

func TestCanonicalAcceptsBothFormats(t *testing.T) {
	cases := map[string]string{
		"2024-02-05":   "2024-02-05",
		"05/02/2024":   "2024-02-05",
		" 2024-02-05 ": "2024-02-05",
	}
	for in, want := range cases {
		got, err := Canonical(in)
		if err != nil {
			t.Fatalf("Canonical(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("Canonical(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanonicalRejectsUnknownFormats(t *testing.T) {
	for _, in := range []string{"", "2024/02/05", "05-02-2024", "ontem", "2024-13-01"} {
		_, err := Canonical(in)
		if err == nil {
			t.Fatalf("Canonical(%q): esperado erro", in)
		}
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Fatalf("Canonical(%q): erro não tipado: %v", in, err)
		}
	}
}

func TestAddDaysCrossesMonth(t *testing.T) {
	if got := AddDays("2024-01-30", 3); got != "2024-02-02" {
		t.Fatalf("AddDays = %q", got)
	}
}

func TestBetweenInclusive(t *testing.T) {
	if !Between("2024-02-01", "2024-02-01", "2024-02-28") {
		t.Fatal("limite inferior deveria ser inclusivo")
	}
	if !Between("2024-02-28", "2024-02-01", "2024-02-28") {
		t.Fatal("limite superior deveria ser inclusivo")
	}
	if Between("2024-03-01", "2024-02-01", "2024-02-28") {
		t.Fatal("fora do intervalo")
	}
	if !Between("2024-03-01", "", "") {
		t.Fatal("limites vazios não restringem")
	}
}

func TestRangeEnumeratesDays(t *testing.T) {
	got := Range("2024-02-27", "2024-03-01")
	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01"}
	if len(got) != len(want) {
		t.Fatalf("Range = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Range[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStartOfWeekIsMonday(t *testing.T) {
	// 2024-01-04 é quinta; a semana começa em 2024-01-01 (segunda)
	if got := StartOfWeek("2024-01-04"); got != "2024-01-01" {
		t.Fatalf("StartOfWeek = %q", got)
	}
	if got := StartOfWeek("2024-01-07"); got != "2024-01-01" { // domingo
		t.Fatalf("StartOfWeek(domingo) = %q", got)
	}
	if got := StartOfWeek("2024-01-01"); got != "2024-01-01" { // segunda
		t.Fatalf("StartOfWeek(segunda) = %q", got)
	}
}

func TestDaysBetween(t *testing.T) {
	if got := DaysBetween("2024-01-01", "2024-01-15"); got != 14 {
		t.Fatalf("DaysBetween = %d", got)
	}
	if got := DaysBetween("2024-01-15", "2024-01-01"); got != -14 {
		t.Fatalf("DaysBetween invertido = %d", got)
	}
}
