package models

import (
	"time"

	"github.com/google/uuid"
)

// SOS-типы экстренных обращений
const (
	SOSLifeThreat = "life_threat"
	SOSMedical    = "medical"
	SOSStandard   = "standard"
)

// Report - отчет о разрушениях, созданный по одной загрузке изображения.
// После создания не изменяется.
type Report struct {
	ID           uuid.UUID `json:"id"`
	ImagePath    string    `json:"image_path"`
	ImageSource  string    `json:"image_source"`
	LocationName string    `json:"location_name,omitempty"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`

	DamageDetected bool     `json:"damage_detected"`
	DamageTypes    []string `json:"damage_types"`
	Severity       string   `json:"severity"`
	Confidence     float64  `json:"confidence"`
	PriorityScore  int      `json:"priority_score"`

	SuggestedActions  []string `json:"suggested_actions"`
	SuggestedSupplies []string `json:"suggested_supplies"`
	RequiredResources []string `json:"required_resources"`

	IsEmergency bool   `json:"is_emergency"`
	SOSType     string `json:"sos_type,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Analyzer    string `json:"analyzer"`

	CreatedAt time.Time `json:"created_at"`
}

// ReportStats - сводка по сохраненным отчетам
type ReportStats struct {
	Total       int            `json:"total"`
	Emergencies int            `json:"emergencies"`
	BySeverity  map[string]int `json:"by_severity"`
}
