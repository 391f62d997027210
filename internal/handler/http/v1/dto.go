package v1

import (
	"time"

	"github.com/google/uuid"
)

// SubmitReportForm - поля multipart-формы загрузки (кроме файла)
// @Description Поля формы загрузки отчета
type SubmitReportForm struct {
	Source      string   `form:"source" validate:"required,max=255"`
	Latitude    *float64 `form:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `form:"longitude" validate:"omitempty,longitude"`
	Location    string   `form:"location" validate:"max=255"`
	IsEmergency bool     `form:"is_emergency"`
	SOSType     string   `form:"sos_type" validate:"omitempty,oneof=life_threat medical standard"`
}

// ReportResponse DTO для ответа с информацией об отчете
// @Description DTO для ответа с информацией об отчете
type ReportResponse struct {
	ID                uuid.UUID `json:"id"`
	ImagePath         string    `json:"image_path"`
	ImageSource       string    `json:"image_source"`
	LocationName      string    `json:"location_name,omitempty"`
	Latitude          *float64  `json:"latitude,omitempty"`
	Longitude         *float64  `json:"longitude,omitempty"`
	DamageDetected    bool      `json:"damage_detected"`
	DamageTypes       []string  `json:"damage_types"`
	Severity          string    `json:"severity"`
	Confidence        float64   `json:"confidence"`
	PriorityScore     int       `json:"priority_score"`
	SuggestedActions  []string  `json:"suggested_actions"`
	SuggestedSupplies []string  `json:"suggested_supplies"`
	RequiredResources []string  `json:"required_resources"`
	IsEmergency       bool      `json:"is_emergency"`
	SOSType           string    `json:"sos_type,omitempty"`
	Summary           string    `json:"summary,omitempty"`
	Analyzer          string    `json:"analyzer"`
	Timestamp         time.Time `json:"timestamp"`
}

// StatsResponse DTO для ответа со статистикой
// @Description DTO для ответа со статистикой
type StatsResponse struct {
	Total       int            `json:"total"`
	Emergencies int            `json:"emergencies"`
	BySeverity  map[string]int `json:"by_severity"`
}

// TriageRequest - готовая оценка повреждений для расчета приоритета
// @Description Оценка повреждений для расчета приоритета без загрузки изображения
type TriageRequest struct {
	DamageDetected *bool    `json:"damage_detected" validate:"required"`
	DamageTypes    []string `json:"damage_types" validate:"max=50,dive,max=100"`
	Confidence     float64  `json:"confidence" validate:"gte=0,lte=1"`
}

// PriorityResponse - уровень серьезности и балл
type PriorityResponse struct {
	Severity string `json:"severity"`
	Score    int    `json:"score"`
}

// SuggestionsResponse - рекомендованные действия, ресурсы и припасы
type SuggestionsResponse struct {
	Actions   []string `json:"actions"`
	Resources []string `json:"resources"`
	Supplies  []string `json:"supplies"`
}

// TriageResponse DTO для ответа с результатом оценки
// @Description DTO для ответа с результатом оценки
type TriageResponse struct {
	Priority    PriorityResponse    `json:"priority"`
	Suggestions SuggestionsResponse `json:"suggestions"`
}

// ErrorResponse - тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}
