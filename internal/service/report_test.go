package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shenikar/resqnet/internal/geocode"
	"github.com/shenikar/resqnet/internal/models"
	"github.com/shenikar/resqnet/internal/observability"
	"github.com/shenikar/resqnet/internal/service"
	"github.com/shenikar/resqnet/internal/service/mocks"
	"github.com/shenikar/resqnet/internal/triage"
	"github.com/shenikar/resqnet/internal/vision"
	"github.com/shenikar/resqnet/internal/webhook"
	webhook_mocks "github.com/shenikar/resqnet/internal/webhook/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type testDeps struct {
	repo     *mocks.MockReportRepository
	storage  *mocks.MockImageStorage
	analyzer *mocks.MockAnalyzer
	geocoder *mocks.MockGeocoder
	events   *mocks.MockEventPublisher
	webhooks *webhook_mocks.MockWebhookPublisher
	metrics  *observability.Metrics
}

// newTestReportService создает сервис с моками всех зависимостей
func newTestReportService(t *testing.T) (service.ReportService, *testDeps) {
	ctrl := gomock.NewController(t)
	d := &testDeps{
		repo:     mocks.NewMockReportRepository(ctrl),
		storage:  mocks.NewMockImageStorage(ctrl),
		analyzer: mocks.NewMockAnalyzer(ctrl),
		geocoder: mocks.NewMockGeocoder(ctrl),
		events:   mocks.NewMockEventPublisher(ctrl),
		webhooks: webhook_mocks.NewMockWebhookPublisher(ctrl),
		metrics:  observability.NewMetricsForTesting(),
	}
	d.analyzer.EXPECT().Name().Return("heuristic").AnyTimes()

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	svc := service.NewReportService(service.Deps{
		Repo:     d.repo,
		Storage:  d.storage,
		Analyzer: d.analyzer,
		Engine:   triage.NewEngine(triage.DefaultKnowledgeBase()),
		Geocoder: d.geocoder,
		Events:   d.events,
		Webhooks: d.webhooks,
		Metrics:  d.metrics,
		Clock:    clockwork.NewFakeClockAt(testNow),
		Logger:   logger,
	})
	return svc, d
}

func analysis(types ...string) vision.Result {
	return vision.Result{
		Assessment: triage.DamageAssessment{
			DamageDetected: len(types) > 0,
			DamageTypes:    types,
			Confidence:     0.8,
		},
		Analyzer: "heuristic",
	}
}

func floatPtr(v float64) *float64 { return &v }

func validInput() service.SubmitInput {
	return service.SubmitInput{
		Image:       []byte("jpeg-bytes"),
		FileName:    "photo.JPG",
		ContentType: "image/jpeg",
		Source:      "drone",
	}
}

func TestSubmit_CriticalReport(t *testing.T) {
	svc, d := newTestReportService(t)
	ctx := context.Background()
	in := validInput()
	in.Latitude, in.Longitude = floatPtr(12.5), floatPtr(-70.1)

	var storedName string
	d.storage.EXPECT().
		Save(ctx, gomock.Any(), in.Image, "image/jpeg").
		DoAndReturn(func(_ context.Context, name string, _ []byte, _ string) (string, error) {
			storedName = name
			return "/uploads/" + name, nil
		})
	d.analyzer.EXPECT().Analyze(gomock.Any(), in.Image).Return(analysis("infrastructure_collapse", "structure_fire"), nil)

	var created *models.Report
	d.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, r *models.Report) error {
		created = r
		return nil
	})
	d.repo.EXPECT().InvalidateListCache(ctx).Return(nil)
	d.events.EXPECT().PublishReportCreated(ctx, gomock.Any()).Return(nil)
	d.webhooks.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e webhook.ReportEvent) error {
		assert.Equal(t, "Critical", e.Severity)
		assert.Equal(t, 100, e.PriorityScore)
		assert.Equal(t, testNow, e.Timestamp)
		return nil
	})

	report, err := svc.Submit(ctx, in)

	require.NoError(t, err)
	require.Same(t, created, report)
	assert.NotEqual(t, uuid.Nil, report.ID)
	assert.Equal(t, report.ID.String()+".jpg", storedName)
	assert.Equal(t, "/uploads/"+storedName, report.ImagePath)
	assert.Equal(t, "Critical", report.Severity)
	assert.Equal(t, 100, report.PriorityScore)
	assert.True(t, report.DamageDetected)
	assert.Equal(t, []string{"infrastructure_collapse", "structure_fire"}, report.DamageTypes)
	assert.Contains(t, report.SuggestedActions, "Secure perimeter")
	assert.Contains(t, report.RequiredResources, "Fire Trucks")
	assert.Equal(t, testNow, report.CreatedAt)
	assert.Equal(t, "heuristic", report.Analyzer)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.ReportsSubmitted.WithLabelValues("Critical")))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.EventsPublished.WithLabelValues("webhook", "success")))
}

func TestSubmit_NoDamage_NoWebhook(t *testing.T) {
	svc, d := newTestReportService(t)
	ctx := context.Background()

	d.storage.EXPECT().Save(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return("/uploads/a.jpg", nil)
	d.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(analysis(), nil)
	d.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.repo.EXPECT().InvalidateListCache(ctx).Return(nil)
	d.events.EXPECT().PublishReportCreated(ctx, gomock.Any()).Return(nil)

	report, err := svc.Submit(ctx, validInput())

	require.NoError(t, err)
	assert.Equal(t, "Low", report.Severity)
	assert.Equal(t, 0, report.PriorityScore)
	assert.Empty(t, report.DamageTypes)
	assert.Equal(t, []string{"Verify sector status", "Continue routine monitoring"}, report.SuggestedActions)
}

func TestSubmit_EmergencyTriggersWebhook(t *testing.T) {
	svc, d := newTestReportService(t)
	ctx := context.Background()
	in := validInput()
	in.SOSType = models.SOSMedical

	d.storage.EXPECT().Save(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return("/uploads/a.jpg", nil)
	d.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(analysis(), nil)
	d.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.repo.EXPECT().InvalidateListCache(ctx).Return(nil)
	d.events.EXPECT().PublishReportCreated(ctx, gomock.Any()).Return(nil)
	d.webhooks.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e webhook.ReportEvent) error {
		assert.True(t, e.IsEmergency)
		assert.Equal(t, models.SOSMedical, e.SOSType)
		return nil
	})

	report, err := svc.Submit(ctx, in)

	require.NoError(t, err)
	assert.True(t, report.IsEmergency)
	assert.Equal(t, "Low", report.Severity)
}

func TestSubmit_AnalyzerFailure_RecordsNoDamage(t *testing.T) {
	svc, d := newTestReportService(t)
	ctx := context.Background()

	d.storage.EXPECT().Save(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return("/uploads/a.jpg", nil)
	d.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(vision.Result{}, errors.New("model timeout"))
	d.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.repo.EXPECT().InvalidateListCache(ctx).Return(nil)
	d.events.EXPECT().PublishReportCreated(ctx, gomock.Any()).Return(nil)

	report, err := svc.Submit(ctx, validInput())

	require.NoError(t, err)
	assert.False(t, report.DamageDetected)
	assert.Zero(t, report.Confidence)
	assert.Equal(t, "none", report.Analyzer)
	assert.Equal(t, "Low", report.Severity)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.AnalysisErrors.WithLabelValues("heuristic")))
}

func TestSubmit_GeocodesLocationName(t *testing.T) {
	svc, d := newTestReportService(t)
	ctx := context.Background()
	in := validInput()
	in.LocationName = " Sector 7 "

	d.storage.EXPECT().Save(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return("/uploads/a.jpg", nil)
	d.geocoder.EXPECT().Geocode(ctx, "Sector 7").Return(geocode.Point{Lat: 40.7, Lng: -74}, nil)
	d.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(analysis("road_block"), nil)
	d.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.repo.EXPECT().InvalidateListCache(ctx).Return(nil)
	d.events.EXPECT().PublishReportCreated(ctx, gomock.Any()).Return(nil)

	report, err := svc.Submit(ctx, in)

	require.NoError(t, err)
	require.NotNil(t, report.Latitude)
	require.NotNil(t, report.Longitude)
	assert.Equal(t, 40.7, *report.Latitude)
	assert.Equal(t, -74.0, *report.Longitude)
	assert.Equal(t, "Sector 7", report.LocationName)
	assert.Equal(t, "Medium", report.Severity)
}

func TestSubmit_GeocodeFailureIsNotFatal(t *testing.T) {
	svc, d := newTestReportService(t)
	ctx := context.Background()
	in := validInput()
	in.LocationName = "Atlantis"

	d.storage.EXPECT().Save(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return("/uploads/a.jpg", nil)
	d.geocoder.EXPECT().Geocode(ctx, "Atlantis").Return(geocode.Point{}, geocode.ErrNoResults)
	d.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(analysis(), nil)
	d.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.repo.EXPECT().InvalidateListCache(ctx).Return(nil)
	d.events.EXPECT().PublishReportCreated(ctx, gomock.Any()).Return(nil)

	report, err := svc.Submit(ctx, in)

	require.NoError(t, err)
	assert.Nil(t, report.Latitude)
	assert.Nil(t, report.Longitude)
}

func TestSubmit_InvalidInput(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(in *service.SubmitInput)
	}{
		{"Empty image", func(in *service.SubmitInput) { in.Image = nil }},
		{"Blank source", func(in *service.SubmitInput) { in.Source = "   " }},
		{"Latitude without longitude", func(in *service.SubmitInput) { in.Latitude = floatPtr(10) }},
		{"Latitude out of range", func(in *service.SubmitInput) { in.Latitude, in.Longitude = floatPtr(91), floatPtr(0) }},
		{"Unknown SOS type", func(in *service.SubmitInput) { in.SOSType = "panic" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestReportService(t)
			in := validInput()
			tc.modify(&in)

			report, err := svc.Submit(context.Background(), in)

			require.Error(t, err)
			assert.ErrorIs(t, err, service.ErrInvalidReport)
			assert.Nil(t, report)
		})
	}
}

func TestSubmit_StorageError(t *testing.T) {
	svc, d := newTestReportService(t)
	ctx := context.Background()

	d.storage.EXPECT().Save(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("disk full"))

	report, err := svc.Submit(ctx, validInput())

	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorContains(t, err, "could not store image")
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.SubmitErrors.WithLabelValues("storage")))
}

func TestSubmit_RepositoryError(t *testing.T) {
	svc, d := newTestReportService(t)
	ctx := context.Background()

	d.storage.EXPECT().Save(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return("/uploads/a.jpg", nil)
	d.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(analysis("fire"), nil)
	d.repo.EXPECT().Create(ctx, gomock.Any()).Return(fmt.Errorf("connection reset"))

	report, err := svc.Submit(ctx, validInput())

	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorContains(t, err, "could not create report")
}

func TestSubmit_PublishErrorsAreNotFatal(t *testing.T) {
	svc, d := newTestReportService(t)
	ctx := context.Background()

	d.storage.EXPECT().Save(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return("/uploads/a.jpg", nil)
	d.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(analysis("infrastructure_collapse", "flooded_roads"), nil)
	d.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.repo.EXPECT().InvalidateListCache(ctx).Return(errors.New("redis down"))
	d.events.EXPECT().PublishReportCreated(ctx, gomock.Any()).Return(errors.New("broker down"))
	d.webhooks.EXPECT().Publish(ctx, gomock.Any()).Return(errors.New("redis down"))

	report, err := svc.Submit(ctx, validInput())

	require.NoError(t, err)
	assert.Equal(t, "Critical", report.Severity)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.EventsPublished.WithLabelValues("kafka", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.EventsPublished.WithLabelValues("webhook", "error")))
}

func TestGetReport_Success(t *testing.T) {
	svc, d := newTestReportService(t)
	ctx := context.Background()
	id := uuid.New()
	expected := &models.Report{ID: id, Severity: "Medium"}

	d.repo.EXPECT().GetByID(ctx, id).Return(expected, nil).Times(1)

	report, err := svc.GetReport(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, expected, report)
}

func TestGetReport_NotFound(t *testing.T) {
	svc, d := newTestReportService(t)
	ctx := context.Background()
	id := uuid.New()

	d.repo.EXPECT().GetByID(ctx, id).Return(nil, fmt.Errorf("report %s: %w", id, service.ErrReportNotFound))

	report, err := svc.GetReport(ctx, id)

	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, service.ErrReportNotFound)
	assert.ErrorContains(t, err, "could not get report")
}

func TestListReports_FromCache(t *testing.T) {
	svc, d := newTestReportService(t)
	ctx := context.Background()
	cached := []*models.Report{{ID: uuid.New()}}

	d.repo.EXPECT().GetListFromCache(ctx).Return(cached, nil)

	reports, err := svc.ListReports(ctx, service.ListFilter{})

	require.NoError(t, err)
	assert.Equal(t, cached, reports)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.ReportsCache.WithLabelValues("hit")))
}

func TestListReports_CacheMiss(t *testing.T) {
	svc, d := newTestReportService(t)
	ctx := context.Background()
	fromDB := []*models.Report{{ID: uuid.New()}, {ID: uuid.New()}}

	// 1. Промах кеша
	d.repo.EXPECT().GetListFromCache(ctx).Return(nil, nil)
	// 2. Полный список из БД
	d.repo.EXPECT().List(ctx, service.ListFilter{Page: 1}).Return(fromDB, nil)
	// 3. Запись в кеш
	d.repo.EXPECT().SetListCache(ctx, fromDB).Return(nil)

	reports, err := svc.ListReports(ctx, service.ListFilter{})

	require.NoError(t, err)
	assert.Len(t, reports, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.ReportsCache.WithLabelValues("miss")))
}

func TestListReports_FilteredBypassesCache(t *testing.T) {
	svc, d := newTestReportService(t)
	ctx := context.Background()

	d.repo.EXPECT().
		List(ctx, service.ListFilter{Page: 2, PageSize: 100, Severity: "Critical"}).
		Return([]*models.Report{}, nil)

	reports, err := svc.ListReports(ctx, service.ListFilter{Page: 2, PageSize: 500, Severity: "Critical"})

	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestListReports_InvalidSeverity(t *testing.T) {
	svc, _ := newTestReportService(t)

	_, err := svc.ListReports(context.Background(), service.ListFilter{Severity: "Apocalyptic"})

	assert.ErrorIs(t, err, service.ErrInvalidReport)
}

func TestListReports_RepositoryError(t *testing.T) {
	svc, d := newTestReportService(t)
	ctx := context.Background()

	d.repo.EXPECT().List(ctx, gomock.Any()).Return(nil, errors.New("timeout"))

	_, err := svc.ListReports(ctx, service.ListFilter{PageSize: 10})

	assert.ErrorContains(t, err, "could not list reports")
}

func TestGetStats(t *testing.T) {
	svc, d := newTestReportService(t)
	ctx := context.Background()
	stats := &models.ReportStats{Total: 3, Emergencies: 1, BySeverity: map[string]int{"Low": 2, "Critical": 1}}

	d.repo.EXPECT().Stats(ctx).Return(stats, nil)

	got, err := svc.GetStats(ctx)

	require.NoError(t, err)
	assert.Equal(t, stats, got)
}

func TestGetStats_Error(t *testing.T) {
	svc, d := newTestReportService(t)
	ctx := context.Background()

	d.repo.EXPECT().Stats(ctx).Return(nil, errors.New("timeout"))

	_, err := svc.GetStats(ctx)

	assert.ErrorContains(t, err, "could not get stats")
}

func TestTriage(t *testing.T) {
	svc, _ := newTestReportService(t)

	eval := svc.Triage(triage.DamageAssessment{
		DamageDetected: true,
		DamageTypes:    []string{"flooded_roads"},
		Confidence:     0.9,
	})

	assert.Equal(t, triage.SeverityMedium, eval.Priority.Severity)
	assert.Equal(t, 55, eval.Priority.Score)
	assert.Contains(t, eval.Suggestions.Actions, "Deploy inflatable boats")
}
