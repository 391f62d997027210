package triage

import "strings"

// TagMatcher сопоставляет метки модели с ключами таблиц.
// Метка и ключ совпадают, если одна строка содержит другую: так поглощается
// дрейф словаря модели ("collapsed_building_site" совпадет с "collapsed_building").
// Ложные совпадения по общей подстроке допустимы.
type TagMatcher struct{}

// Matches сообщает, совпадают ли метка и ключ
func (TagMatcher) Matches(tag, key string) bool {
	if tag == "" || key == "" {
		return false
	}
	return strings.Contains(tag, key) || strings.Contains(key, tag)
}

// MatchWeights возвращает все совпавшие правила и правило с максимальным весом
func (m TagMatcher) MatchWeights(tag string, rules []WeightRule) (matches []WeightRule, best WeightRule, ok bool) {
	for _, rule := range rules {
		if !m.Matches(tag, rule.Key) {
			continue
		}
		matches = append(matches, rule)
		if !ok || rule.Weight > best.Weight {
			best = rule
			ok = true
		}
	}
	return matches, best, ok
}

// MatchSuggestions возвращает все совпавшие правила в порядке таблицы
func (m TagMatcher) MatchSuggestions(tag string, rules []SuggestionRule) []SuggestionRule {
	var matches []SuggestionRule
	for _, rule := range rules {
		if m.Matches(tag, rule.Key) {
			matches = append(matches, rule)
		}
	}
	return matches
}

// NormalizeTags обрезает пробелы и отбрасывает пустые метки; повторы сохраняются.
// Пустая строка является подстрокой любого ключа, поэтому до сопоставления не доходит.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// countDistinct возвращает число различных меток
func countDistinct(tags []string) int {
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		seen[tag] = struct{}{}
	}
	return len(seen)
}
