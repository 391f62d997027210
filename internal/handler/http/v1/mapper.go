package v1

import (
	"github.com/shenikar/resqnet/internal/models"
	"github.com/shenikar/resqnet/internal/service"
	"github.com/shenikar/resqnet/internal/triage"
)

// FormToSubmitInput собирает вход сервиса из полей формы и содержимого файла
func FormToSubmitInput(form SubmitReportForm, image []byte, fileName, contentType string) service.SubmitInput {
	return service.SubmitInput{
		Image:        image,
		FileName:     fileName,
		ContentType:  contentType,
		Source:       form.Source,
		LocationName: form.Location,
		Latitude:     form.Latitude,
		Longitude:    form.Longitude,
		IsEmergency:  form.IsEmergency,
		SOSType:      form.SOSType,
	}
}

// ModelToReportResponse преобразует доменную модель в DTO для ответа
func ModelToReportResponse(model *models.Report) *ReportResponse {
	return &ReportResponse{
		ID:                model.ID,
		ImagePath:         model.ImagePath,
		ImageSource:       model.ImageSource,
		LocationName:      model.LocationName,
		Latitude:          model.Latitude,
		Longitude:         model.Longitude,
		DamageDetected:    model.DamageDetected,
		DamageTypes:       nonNil(model.DamageTypes),
		Severity:          model.Severity,
		Confidence:        model.Confidence,
		PriorityScore:     model.PriorityScore,
		SuggestedActions:  nonNil(model.SuggestedActions),
		SuggestedSupplies: nonNil(model.SuggestedSupplies),
		RequiredResources: nonNil(model.RequiredResources),
		IsEmergency:       model.IsEmergency,
		SOSType:           model.SOSType,
		Summary:           model.Summary,
		Analyzer:          model.Analyzer,
		Timestamp:         model.CreatedAt,
	}
}

// ModelsToReportResponses преобразует слайс моделей в слайс DTO
func ModelsToReportResponses(reports []*models.Report) []*ReportResponse {
	responses := make([]*ReportResponse, len(reports))
	for i, report := range reports {
		responses[i] = ModelToReportResponse(report)
	}
	return responses
}

func ModelToStatsResponse(stats *models.ReportStats) StatsResponse {
	bySeverity := make(map[string]int, 3)
	for _, s := range []triage.Severity{triage.SeverityLow, triage.SeverityMedium, triage.SeverityCritical} {
		bySeverity[string(s)] = 0
	}
	for k, v := range stats.BySeverity {
		bySeverity[k] = v
	}
	return StatsResponse{
		Total:       stats.Total,
		Emergencies: stats.Emergencies,
		BySeverity:  bySeverity,
	}
}

func TriageRequestToAssessment(req TriageRequest) triage.DamageAssessment {
	detected := req.DamageDetected != nil && *req.DamageDetected
	return triage.DamageAssessment{
		DamageDetected: detected,
		DamageTypes:    req.DamageTypes,
		Confidence:     req.Confidence,
	}
}

func EvaluationToTriageResponse(e triage.Evaluation) TriageResponse {
	return TriageResponse{
		Priority: PriorityResponse{
			Severity: string(e.Priority.Severity),
			Score:    e.Priority.Score,
		},
		Suggestions: SuggestionsResponse{
			Actions:   nonNil(e.Suggestions.Actions),
			Resources: nonNil(e.Suggestions.Resources),
			Supplies:  nonNil(e.Suggestions.Supplies),
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
