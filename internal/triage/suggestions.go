package triage

// SuggestionGenerator подбирает рекомендации по меткам повреждений.
// В отличие от PriorityScorer, вклад дают все совпавшие правила, а не лучшее.
type SuggestionGenerator struct {
	kb      *KnowledgeBase
	matcher TagMatcher
}

func NewSuggestionGenerator(kb *KnowledgeBase) *SuggestionGenerator {
	return &SuggestionGenerator{kb: kb}
}

// Suggest объединяет рекомендации всех совпавших правил без повторов.
// Для пустого списка возвращается набор по умолчанию, для метки без совпадений -
// общее действие с названием метки и резервный ресурс.
func (g *SuggestionGenerator) Suggest(damageTypes []string) SuggestionBundle {
	tags := NormalizeTags(damageTypes)
	if len(tags) == 0 {
		return g.kb.cfg.DefaultBundle.clone()
	}

	actions, resources, supplies := newOrderedSet(), newOrderedSet(), newOrderedSet()
	for _, tag := range tags {
		matches := g.matcher.MatchSuggestions(tag, g.kb.cfg.Suggestions)
		if len(matches) == 0 {
			actions.add(g.kb.fallbackActionFor(tag))
			resources.add(g.kb.cfg.FallbackResource)
			continue
		}
		for _, rule := range matches {
			actions.add(rule.Actions...)
			resources.add(rule.Resources...)
			supplies.add(rule.Supplies...)
		}
	}

	return SuggestionBundle{
		Actions:   actions.items,
		Resources: resources.items,
		Supplies:  supplies.items,
	}
}

// orderedSet сохраняет порядок первого добавления
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{}), items: []string{}}
}

func (s *orderedSet) add(values ...string) {
	for _, v := range values {
		if _, ok := s.seen[v]; ok {
			continue
		}
		s.seen[v] = struct{}{}
		s.items = append(s.items, v)
	}
}
