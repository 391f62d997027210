package triage

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidKnowledgeBase возвращается, если таблицы правил не проходят проверку
var ErrInvalidKnowledgeBase = errors.New("invalid knowledge base")

// FallbackTagPlaceholder заменяется в FallbackAction читаемым названием метки
const FallbackTagPlaceholder = "{tag}"

// WeightRule - вес известной метки повреждения
type WeightRule struct {
	Key    string `yaml:"key"`
	Weight int    `yaml:"weight"`
}

// SuggestionRule - рекомендации для известной метки повреждения
type SuggestionRule struct {
	Key       string   `yaml:"key"`
	Actions   []string `yaml:"actions"`
	Resources []string `yaml:"resources"`
	Supplies  []string `yaml:"supplies"`
}

// Config - сериализуемое описание базы знаний
type Config struct {
	BaseScore         int              `yaml:"base_score"`
	DefaultWeight     int              `yaml:"default_weight"`
	MultiHazardBonus  int              `yaml:"multi_hazard_bonus"`
	MediumThreshold   int              `yaml:"medium_threshold"`
	CriticalThreshold int              `yaml:"critical_threshold"`
	Weights           []WeightRule     `yaml:"weights"`
	Suggestions       []SuggestionRule `yaml:"suggestions"`
	DefaultBundle     SuggestionBundle `yaml:"default_bundle"`
	FallbackResource  string           `yaml:"fallback_resource"`
	FallbackAction    string           `yaml:"fallback_action"`
}

// KnowledgeBase - неизменяемый набор таблиц, по которым считаются приоритет и рекомендации.
// Создается один раз при старте и передается в PriorityScorer и SuggestionGenerator.
type KnowledgeBase struct {
	cfg Config
}

// NewKnowledgeBase проверяет конфигурацию и делает ее глубокую копию
func NewKnowledgeBase(cfg Config) (*KnowledgeBase, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &KnowledgeBase{cfg: cfg.clone()}, nil
}

// DefaultKnowledgeBase возвращает встроенные таблицы
func DefaultKnowledgeBase() *KnowledgeBase {
	kb, err := NewKnowledgeBase(DefaultConfig())
	if err != nil {
		panic(fmt.Sprintf("triage: built-in knowledge base is invalid: %v", err))
	}
	return kb
}

// LoadKnowledgeBase читает YAML-файл поверх встроенных таблиц.
// Отсутствующие в файле ключи сохраняют значения по умолчанию.
func LoadKnowledgeBase(path string) (*KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base file: %w", err)
	}
	return NewKnowledgeBase(cfg)
}

// Config возвращает копию таблиц
func (kb *KnowledgeBase) Config() Config {
	return kb.cfg.clone()
}

// SeverityFor переводит балл в уровень серьезности по порогам
func (kb *KnowledgeBase) SeverityFor(score int) Severity {
	switch {
	case score >= kb.cfg.CriticalThreshold:
		return SeverityCritical
	case score >= kb.cfg.MediumThreshold:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (kb *KnowledgeBase) fallbackActionFor(tag string) string {
	label := strings.ReplaceAll(tag, "_", " ")
	return strings.ReplaceAll(kb.cfg.FallbackAction, FallbackTagPlaceholder, label)
}

func validate(cfg Config) error {
	if cfg.BaseScore <= 0 {
		return fmt.Errorf("%w: base_score must be positive", ErrInvalidKnowledgeBase)
	}
	if cfg.DefaultWeight < 0 || cfg.MultiHazardBonus < 0 {
		return fmt.Errorf("%w: default_weight and multi_hazard_bonus must not be negative", ErrInvalidKnowledgeBase)
	}
	if cfg.MediumThreshold <= 0 || cfg.MediumThreshold > cfg.CriticalThreshold || cfg.CriticalThreshold > MaxScore {
		return fmt.Errorf("%w: thresholds must satisfy 0 < medium <= critical <= %d", ErrInvalidKnowledgeBase, MaxScore)
	}
	for _, w := range cfg.Weights {
		if strings.TrimSpace(w.Key) == "" {
			return fmt.Errorf("%w: weight rule with empty key", ErrInvalidKnowledgeBase)
		}
		if w.Weight < 0 {
			return fmt.Errorf("%w: weight for %q must not be negative", ErrInvalidKnowledgeBase, w.Key)
		}
	}
	for _, s := range cfg.Suggestions {
		if strings.TrimSpace(s.Key) == "" {
			return fmt.Errorf("%w: suggestion rule with empty key", ErrInvalidKnowledgeBase)
		}
	}
	if strings.TrimSpace(cfg.FallbackResource) == "" {
		return fmt.Errorf("%w: fallback_resource is required", ErrInvalidKnowledgeBase)
	}
	if !strings.Contains(cfg.FallbackAction, FallbackTagPlaceholder) {
		return fmt.Errorf("%w: fallback_action must contain %s", ErrInvalidKnowledgeBase, FallbackTagPlaceholder)
	}
	return nil
}

func (c Config) clone() Config {
	out := c
	out.Weights = make([]WeightRule, len(c.Weights))
	copy(out.Weights, c.Weights)
	out.Suggestions = make([]SuggestionRule, len(c.Suggestions))
	for i, s := range c.Suggestions {
		out.Suggestions[i] = SuggestionRule{
			Key:       s.Key,
			Actions:   cloneStrings(s.Actions),
			Resources: cloneStrings(s.Resources),
			Supplies:  cloneStrings(s.Supplies),
		}
	}
	out.DefaultBundle = c.DefaultBundle.clone()
	return out
}

// DefaultConfig - встроенные таблицы весов и рекомендаций
func DefaultConfig() Config {
	return Config{
		BaseScore:         25,
		DefaultWeight:     10,
		MultiHazardBonus:  10,
		MediumThreshold:   40,
		CriticalThreshold: 70,
		Weights: []WeightRule{
			{Key: "infrastructure_collapse", Weight: 50},
			{Key: "collapsed_building", Weight: 50},
			{Key: "structure_fire", Weight: 40},
			{Key: "fire", Weight: 35},
			{Key: "flooded_roads", Weight: 30},
			{Key: "flood", Weight: 25},
			{Key: "road_block", Weight: 15},
			{Key: "blocked_road", Weight: 15},
		},
		Suggestions: []SuggestionRule{
			{
				Key:       "flooded_roads",
				Actions:   []string{"Deploy inflatable boats", "Establish high-ground medical posts", "Evacuate ground-floor residents"},
				Resources: []string{"Life Vests", "Inflatable Boats", "Water Pumps", "Sandbags"},
				Supplies:  []string{"Clean Water (500L)", "MREs (200 packs)", "Blankets", "Water Purification Tablets"},
			},
			{
				Key:       "infrastructure_collapse",
				Actions:   []string{"Deploy heavy machinery for debris removal", "Scan for survivors with thermal drones", "Secure perimeter"},
				Resources: []string{"Excavators", "Cranes", "K-9 Search Units", "Medical Triage Kits"},
				Supplies:  []string{"First Aid Kits", "Construction Helmets", "Portable Power Generators", "Flashlights"},
			},
			{
				Key:       "structure_fire",
				Actions:   []string{"Coordinate aerial water drops", "Establish fire breaks", "Evacuate downwind zones"},
				Resources: []string{"Fire Trucks", "Aerial Tankers", "N95 Masks", "Burn Kits"},
				Supplies:  []string{"Oxygen Tanks", "Burn Ointments", "Fire Extinguishers", "Bottled Water"},
			},
			{
				Key:       "road_block",
				Actions:   []string{"Reroute emergency traffic", "Clear debris", "Assess structural integrity"},
				Resources: []string{"Bulldozers", "Chainsaws", "Road Barriers"},
				Supplies:  []string{"Traffic Cones", "Flares", "Fuel Canisters"},
			},
		},
		DefaultBundle: SuggestionBundle{
			Actions:   []string{"Verify sector status", "Continue routine monitoring"},
			Resources: []string{"surveillance_drone"},
			Supplies:  []string{"standard_first_aid"},
		},
		FallbackResource: "general_response_team",
		FallbackAction:   "Dispatch assessment team for " + FallbackTagPlaceholder,
	}
}
