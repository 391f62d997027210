package service

//go:generate mockgen -source=report.go -destination=mocks/mock_report.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shenikar/resqnet/internal/geocode"
	"github.com/shenikar/resqnet/internal/models"
	"github.com/shenikar/resqnet/internal/observability"
	"github.com/shenikar/resqnet/internal/triage"
	"github.com/shenikar/resqnet/internal/vision"
	"github.com/shenikar/resqnet/internal/webhook"
	"github.com/sirupsen/logrus"
)

const (
	maxPageSize     = 100
	noAnalyzerName  = "none"
	defaultImageExt = ".jpg"
)

var (
	// ErrReportNotFound - отчет с таким ID не существует
	ErrReportNotFound = errors.New("report not found")
	// ErrInvalidReport - входные данные отчета некорректны
	ErrInvalidReport = errors.New("invalid report")
)

// ListFilter - параметры выборки отчетов. PageSize = 0 означает "все отчеты".
type ListFilter struct {
	Page     int
	PageSize int
	Severity string
}

// Unfiltered - запрос полного списка без фильтров, его результат кешируется
func (f ListFilter) Unfiltered() bool {
	return f.PageSize == 0 && f.Severity == ""
}

type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	List(ctx context.Context, filter ListFilter) ([]*models.Report, error)
	Stats(ctx context.Context) (*models.ReportStats, error)
	GetListFromCache(ctx context.Context) ([]*models.Report, error)
	SetListCache(ctx context.Context, reports []*models.Report) error
	InvalidateListCache(ctx context.Context) error
}

type ImageStorage interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (vision.Result, error)
	Name() string
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (geocode.Point, error)
}

type EventPublisher interface {
	PublishReportCreated(ctx context.Context, report *models.Report) error
}

type ReportService interface {
	Submit(ctx context.Context, in SubmitInput) (*models.Report, error)
	GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ListReports(ctx context.Context, filter ListFilter) ([]*models.Report, error)
	GetStats(ctx context.Context) (*models.ReportStats, error)
	Triage(assessment triage.DamageAssessment) triage.Evaluation
}

// SubmitInput - загруженное изображение и метаданные отчета
type SubmitInput struct {
	Image        []byte
	FileName     string
	ContentType  string
	Source       string
	LocationName string
	Latitude     *float64
	Longitude    *float64
	IsEmergency  bool
	SOSType      string
}

// Deps - зависимости сервиса. Geocoder, Events и Webhooks необязательны.
type Deps struct {
	Repo     ReportRepository
	Storage  ImageStorage
	Analyzer Analyzer
	Engine   *triage.Engine
	Geocoder Geocoder
	Events   EventPublisher
	Webhooks webhook.WebhookPublisher
	Metrics  *observability.Metrics
	Clock    clockwork.Clock
	Logger   *logrus.Logger
}

type reportService struct {
	repo     ReportRepository
	storage  ImageStorage
	analyzer Analyzer
	engine   *triage.Engine
	geocoder Geocoder
	events   EventPublisher
	webhooks webhook.WebhookPublisher
	metrics  *observability.Metrics
	clock    clockwork.Clock
	logger   *logrus.Logger
}

func NewReportService(d Deps) ReportService {
	clock := d.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	metrics := d.Metrics
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	engine := d.Engine
	if engine == nil {
		engine = triage.NewEngine(triage.DefaultKnowledgeBase())
	}

	return &reportService{
		repo:     d.Repo,
		storage:  d.Storage,
		analyzer: d.Analyzer,
		engine:   engine,
		geocoder: d.Geocoder,
		events:   d.Events,
		webhooks: d.Webhooks,
		metrics:  metrics,
		clock:    clock,
		logger:   d.Logger,
	}
}

// Submit сохраняет изображение, анализирует его, оценивает приоритет и
// сохраняет отчет. Ошибки Kafka и вебхуков только логируются.
func (s *reportService) Submit(ctx context.Context, in SubmitInput) (*models.Report, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "report",
		"method":  "Submit",
		"source":  in.Source,
	})

	if err := validateSubmit(&in); err != nil {
		log.WithError(err).Warn("Rejected report submission")
		return nil, err
	}

	id := uuid.New()
	log = log.WithField("report_id", id.String())
	log.Info("Accepting new report")

	path, err := s.storage.Save(ctx, id.String()+imageExt(in.FileName), in.Image, in.ContentType)
	if err != nil {
		s.metrics.SubmitErrors.WithLabelValues("storage").Inc()
		log.WithError(err).Error("Failed to store report image")
		return nil, fmt.Errorf("service: could not store image: %w", err)
	}

	if in.Latitude == nil && in.LocationName != "" && s.geocoder != nil {
		point, err := s.geocoder.Geocode(ctx, in.LocationName)
		if err != nil {
			log.WithError(err).Warn("Failed to geocode location name")
		} else {
			in.Latitude, in.Longitude = &point.Lat, &point.Lng
		}
	}

	analysis := s.analyze(ctx, log, in.Image)
	eval := s.engine.Evaluate(analysis.Assessment)

	damageTypes := triage.NormalizeTags(analysis.Assessment.DamageTypes)

	report := &models.Report{
		ID:                id,
		ImagePath:         path,
		ImageSource:       in.Source,
		LocationName:      in.LocationName,
		Latitude:          in.Latitude,
		Longitude:         in.Longitude,
		DamageDetected:    analysis.Assessment.DamageDetected,
		DamageTypes:       damageTypes,
		Severity:          string(eval.Priority.Severity),
		Confidence:        analysis.Assessment.Confidence,
		PriorityScore:     eval.Priority.Score,
		SuggestedActions:  eval.Suggestions.Actions,
		SuggestedSupplies: eval.Suggestions.Supplies,
		RequiredResources: eval.Suggestions.Resources,
		IsEmergency:       in.IsEmergency,
		SOSType:           in.SOSType,
		Summary:           analysis.Summary,
		Analyzer:          analysis.Analyzer,
		CreatedAt:         s.clock.Now().UTC(),
	}

	if err := s.repo.Create(ctx, report); err != nil {
		s.metrics.SubmitErrors.WithLabelValues("persist").Inc()
		log.WithError(err).Error("Failed to create report in repository")
		return nil, fmt.Errorf("service: could not create report: %w", err)
	}

	if err := s.repo.InvalidateListCache(ctx); err != nil {
		log.WithError(err).Warn("Failed to invalidate reports cache")
	}

	s.metrics.ReportsSubmitted.WithLabelValues(report.Severity).Inc()
	s.metrics.PriorityScore.Observe(float64(report.PriorityScore))

	s.publish(ctx, log, report)

	log.WithFields(logrus.Fields{
		"severity":       report.Severity,
		"priority_score": report.PriorityScore,
		"damage_types":   report.DamageTypes,
	}).Info("Report created successfully")
	return report, nil
}

func (s *reportService) analyze(ctx context.Context, log *logrus.Entry, image []byte) vision.Result {
	name := s.analyzer.Name()
	start := s.clock.Now()
	res, err := s.analyzer.Analyze(ctx, image)
	s.metrics.AnalysisDuration.WithLabelValues(name).Observe(s.clock.Since(start).Seconds())

	if err != nil {
		s.metrics.AnalysisErrors.WithLabelValues(name).Inc()
		log.WithError(err).Error("Image analysis failed, recording report without detected damage")
		return vision.Result{
			Assessment: triage.DamageAssessment{DamageTypes: []string{}},
			Analyzer:   noAnalyzerName,
		}
	}
	return res
}

// publish отправляет событие в Kafka и, для критичных и SOS-отчетов, в очередь вебхуков
func (s *reportService) publish(ctx context.Context, log *logrus.Entry, report *models.Report) {
	if s.events != nil {
		outcome := "success"
		if err := s.events.PublishReportCreated(ctx, report); err != nil {
			outcome = "error"
			log.WithError(err).Warn("Failed to publish report event")
		}
		s.metrics.EventsPublished.WithLabelValues("kafka", outcome).Inc()
	}

	if s.webhooks == nil || !(report.Severity == string(triage.SeverityCritical) || report.IsEmergency) {
		return
	}

	event := webhook.ReportEvent{
		ReportID:      report.ID,
		Severity:      report.Severity,
		PriorityScore: report.PriorityScore,
		DamageTypes:   report.DamageTypes,
		IsEmergency:   report.IsEmergency,
		SOSType:       report.SOSType,
		LocationName:  report.LocationName,
		Latitude:      report.Latitude,
		Longitude:     report.Longitude,
		Timestamp:     report.CreatedAt,
	}
	outcome := "success"
	if err := s.webhooks.Publish(ctx, event); err != nil {
		outcome = "error"
		log.WithError(err).Warn("Failed to enqueue webhook event")
	}
	s.metrics.EventsPublished.WithLabelValues("webhook", outcome).Inc()
}

// GetReport возвращает отчет по ID
func (s *reportService) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "report",
		"method":    "GetReport",
		"report_id": id,
	})

	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			log.Info("Report not found")
		} else {
			log.WithError(err).Error("Failed to get report from repository")
		}
		return nil, fmt.Errorf("service: could not get report: %w", err)
	}
	return report, nil
}

// ListReports возвращает отчеты от новых к старым
func (s *reportService) ListReports(ctx context.Context, filter ListFilter) ([]*models.Report, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":   "report",
		"method":    "ListReports",
		"page":      filter.Page,
		"page_size": filter.PageSize,
		"severity":  filter.Severity,
	})

	if filter.Unfiltered() {
		cached, err := s.repo.GetListFromCache(ctx)
		if err != nil {
			log.WithError(err).Warn("Failed to read reports cache")
		}
		if cached != nil {
			s.metrics.ReportsCache.WithLabelValues("hit").Inc()
			return cached, nil
		}
		s.metrics.ReportsCache.WithLabelValues("miss").Inc()
	}

	reports, err := s.repo.List(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list reports from repository")
		return nil, fmt.Errorf("service: could not list reports: %w", err)
	}

	if filter.Unfiltered() {
		if err := s.repo.SetListCache(ctx, reports); err != nil {
			log.WithError(err).Warn("Failed to cache reports list")
		}
	}

	log.WithField("count", len(reports)).Debug("Reports listed successfully")
	return reports, nil
}

// GetStats возвращает сводку по отчетам
func (s *reportService) GetStats(ctx context.Context) (*models.ReportStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"service": "report",
			"method":  "GetStats",
		}).Error("Failed to get report stats")
		return nil, fmt.Errorf("service: could not get stats: %w", err)
	}
	return stats, nil
}

// Triage оценивает готовую оценку повреждений без сохранения
func (s *reportService) Triage(assessment triage.DamageAssessment) triage.Evaluation {
	return s.engine.Evaluate(assessment)
}

func validateSubmit(in *SubmitInput) error {
	in.Source = strings.TrimSpace(in.Source)
	in.LocationName = strings.TrimSpace(in.LocationName)
	in.SOSType = strings.TrimSpace(in.SOSType)

	switch {
	case len(in.Image) == 0:
		return fmt.Errorf("%w: image is empty", ErrInvalidReport)
	case in.Source == "":
		return fmt.Errorf("%w: source is required", ErrInvalidReport)
	case (in.Latitude == nil) != (in.Longitude == nil):
		return fmt.Errorf("%w: latitude and longitude must be set together", ErrInvalidReport)
	}

	if in.Latitude != nil && (*in.Latitude < -90 || *in.Latitude > 90 || *in.Longitude < -180 || *in.Longitude > 180) {
		return fmt.Errorf("%w: coordinates out of range", ErrInvalidReport)
	}

	switch in.SOSType {
	case "":
	case models.SOSLifeThreat, models.SOSMedical, models.SOSStandard:
		in.IsEmergency = true
	default:
		return fmt.Errorf("%w: unknown sos_type %q", ErrInvalidReport, in.SOSType)
	}
	return nil
}

func normalizeFilter(f ListFilter) (ListFilter, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 0 {
		f.PageSize = 0
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}

	switch triage.Severity(f.Severity) {
	case "", triage.SeverityLow, triage.SeverityMedium, triage.SeverityCritical:
	default:
		return f, fmt.Errorf("%w: unknown severity %q", ErrInvalidReport, f.Severity)
	}
	return f, nil
}

func imageExt(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" || len(ext) > 5 {
		return defaultImageExt
	}
	return ext
}
