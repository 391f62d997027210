package triage

// Evaluation - приоритет и рекомендации для одной оценки повреждений
type Evaluation struct {
	Priority    PriorityResult   `json:"priority"`
	Suggestions SuggestionBundle `json:"suggestions"`
}

// Engine последовательно применяет PriorityScorer и SuggestionGenerator.
// Состояния между вызовами нет, вызывать можно конкурентно.
type Engine struct {
	scorer    *PriorityScorer
	suggester *SuggestionGenerator
}

func NewEngine(kb *KnowledgeBase) *Engine {
	return &Engine{
		scorer:    NewPriorityScorer(kb),
		suggester: NewSuggestionGenerator(kb),
	}
}

func (e *Engine) Evaluate(a DamageAssessment) Evaluation {
	return Evaluation{
		Priority:    e.scorer.Score(a.DamageDetected, a.DamageTypes, a.Confidence),
		Suggestions: e.suggester.Suggest(a.DamageTypes),
	}
}
