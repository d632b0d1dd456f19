// Package dates centraliza a normalização de datas. Toda data externa vira
// a chave canônica YYYY-MM-DD antes de entrar nos motores; formatos não
// reconhecidos falham aqui com erro tipado, nunca no ponto de uso.
package dates

import (
	"fmt"
	"strings"
	"time"
)

const Layout = "2006-01-02"

// FormatError indica uma data que não é YYYY-MM-DD nem DD/MM/YYYY.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("formato de data inválido: %q (esperado YYYY-MM-DD ou DD/MM/YYYY)", e.Input)
}

// Canonical normaliza YYYY-MM-DD ou DD/MM/YYYY para a chave YYYY-MM-DD.
func Canonical(s string) (string, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(Layout, s); err == nil {
		return t.Format(Layout), nil
	}
	if t, err := time.Parse("02/01/2006", s); err == nil {
		return t.Format(Layout), nil
	}
	return "", &FormatError{Input: s}
}

// ParseDay converte uma chave canônica em time.Time (meia-noite UTC).
func ParseDay(key string) (time.Time, error) {
	t, err := time.Parse(Layout, key)
	if err != nil {
		return time.Time{}, &FormatError{Input: key}
	}
	return t, nil
}

// AddDays desloca uma chave canônica em n dias.
func AddDays(key string, n int) string {
	t, err := ParseDay(key)
	if err != nil {
		return key
	}
	return t.AddDate(0, 0, n).Format(Layout)
}

// Between informa se key cai no intervalo inclusivo [from, to]. Comparação
// lexicográfica: válida porque YYYY-MM-DD ordena cronologicamente. Limites
// vazios não restringem.
func Between(key, from, to string) bool {
	if from != "" && key < from {
		return false
	}
	if to != "" && key > to {
		return false
	}
	return true
}

// Range enumera as chaves canônicas de from até to, inclusivo.
func Range(from, to string) []string {
	start, err := ParseDay(from)
	if err != nil {
		return nil
	}
	end, err := ParseDay(to)
	if err != nil {
		return nil
	}
	var out []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(Layout))
	}
	return out
}

// StartOfWeek recua a chave até a segunda-feira da sua semana.
func StartOfWeek(key string) string {
	t, err := ParseDay(key)
	if err != nil {
		return key
	}
	wd := (int(t.Weekday()) + 6) % 7 // segunda = 0
	return t.AddDate(0, 0, -wd).Format(Layout)
}

// DaysBetween retorna b − a em dias inteiros.
func DaysBetween(a, b string) int {
	ta, errA := ParseDay(a)
	tb, errB := ParseDay(b)
	if errA != nil || errB != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}
