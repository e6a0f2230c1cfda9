package localization

import (
	"sort"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	s, err := NewService()
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if got := s.Get("ru", "buy.choose_tariff", nil); got == "buy.choose_tariff" {
		t.Error("known key must resolve to a translation")
	}
	if got := s.Get("en", "buy.no_tariffs", nil); got == "buy.no_tariffs" {
		t.Error("known key must resolve to a translation")
	}
	// Неизвестный ключ возвращается как есть
	if got := s.Get("ru", "no.such.key", nil); got != "no.such.key" {
		t.Errorf("unknown key = %q, want the key itself", got)
	}
	// Неизвестный язык откатывается на ru
	if got := s.Get("kg", "buy.paid", map[string]interface{}{"end_date": "2026-01-01"}); got == "buy.paid" {
		t.Errorf("fallback language must still resolve, got %q", got)
	}
}

func TestGetReplacesPlaceholders(t *testing.T) {
	s, err := NewService()
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	got := s.Get("en", "buy.paid", map[string]interface{}{"end_date": "2026-01-31"})
	if got == "buy.paid" {
		t.Fatal("key must resolve")
	}
	if want := "2026-01-31"; !strings.Contains(got, want) {
		t.Errorf("translation %q must contain %q", got, want)
	}
}

// Наборы ключей в переводах должны совпадать: ключ без пары либо
// непереведён, либо мёртв.
func TestTranslationKeysMatch(t *testing.T) {
	s, err := NewService()
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ru := flattenKeys("", s.translations["ru"])
	en := flattenKeys("", s.translations["en"])
	sort.Strings(ru)
	sort.Strings(en)

	if len(ru) != len(en) {
		t.Fatalf("key sets differ: ru=%v en=%v", ru, en)
	}
	for i := range ru {
		if ru[i] != en[i] {
			t.Errorf("key mismatch: ru has %q, en has %q", ru[i], en[i])
		}
	}
}

func flattenKeys(prefix string, node map[string]interface{}) []string {
	var keys []string
	for k, v := range node {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		if m, ok := v.(map[string]interface{}); ok {
			keys = append(keys, flattenKeys(full, m)...)
			continue
		}
		keys = append(keys, full)
	}
	return keys
}
