package triage

// Severity - грубая оценка срочности реагирования
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityCritical Severity = "Critical"
)

// DamageAssessment - результат анализа изображения.
// Метки повреждений - свободные строки в snake_case, словарь задается внешней моделью.
type DamageAssessment struct {
	DamageDetected bool     `json:"damage_detected"`
	DamageTypes    []string `json:"damage_types"`
	Confidence     float64  `json:"confidence"`
}

// PriorityResult - итоговая оценка приоритета отчета
type PriorityResult struct {
	Severity Severity `json:"severity"`
	Score    int      `json:"score"`
}

// SuggestionBundle - рекомендованные действия, ресурсы и припасы
type SuggestionBundle struct {
	Actions   []string `json:"actions" yaml:"actions"`
	Resources []string `json:"resources" yaml:"resources"`
	Supplies  []string `json:"supplies" yaml:"supplies"`
}

func (b SuggestionBundle) clone() SuggestionBundle {
	return SuggestionBundle{
		Actions:   cloneStrings(b.Actions),
		Resources: cloneStrings(b.Resources),
		Supplies:  cloneStrings(b.Supplies),
	}
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
