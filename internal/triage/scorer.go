package triage

const (
	MinScore = 0
	MaxScore = 100
)

// PriorityScorer считает балл приоритета по меткам повреждений
type PriorityScorer struct {
	kb      *KnowledgeBase
	matcher TagMatcher
}

func NewPriorityScorer(kb *KnowledgeBase) *PriorityScorer {
	return &PriorityScorer{kb: kb}
}

// Score возвращает уровень серьезности и балл в [0, 100].
// Вес прибавляется за каждую метку, бонус за несколько угроз - только
// при нескольких различных метках. Уверенность модели на балл не влияет.
func (s *PriorityScorer) Score(damageDetected bool, damageTypes []string, _ float64) PriorityResult {
	if !damageDetected {
		return PriorityResult{Severity: SeverityLow, Score: MinScore}
	}

	tags := NormalizeTags(damageTypes)
	score := s.kb.cfg.BaseScore
	for _, tag := range tags {
		score += s.weightFor(tag)
	}
	if countDistinct(tags) > 1 {
		score += s.kb.cfg.MultiHazardBonus
	}

	score = clamp(score, MinScore, MaxScore)
	return PriorityResult{Severity: s.kb.SeverityFor(score), Score: score}
}

// weightFor берет максимальный вес среди совпавших ключей, иначе вес по умолчанию
func (s *PriorityScorer) weightFor(tag string) int {
	if _, best, ok := s.matcher.MatchWeights(tag, s.kb.cfg.Weights); ok {
		return best.Weight
	}
	return s.kb.cfg.DefaultWeight
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
