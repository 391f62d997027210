package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/resqnet/internal/models"
	"github.com/shenikar/resqnet/internal/service"
)

const reportsListCacheKey = "reports:all"

const reportColumns = `
	id,
	image_path,
	image_source,
	location_name,
	latitude,
	longitude,
	damage_detected,
	damage_types,
	severity,
	confidence,
	priority_score,
	suggested_actions,
	suggested_supplies,
	required_resources,
	is_emergency,
	sos_type,
	summary,
	analyzer,
	created_at`

type ReportRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewReportRepository(db *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration) service.ReportRepository {
	return &ReportRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

// Create сохраняет новый отчет; ID и время создания задает сервис
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err := r.db.Exec(ctx, query,
		report.ID,
		report.ImagePath,
		report.ImageSource,
		report.LocationName,
		report.Latitude,
		report.Longitude,
		report.DamageDetected,
		report.DamageTypes,
		report.Severity,
		report.Confidence,
		report.PriorityScore,
		report.SuggestedActions,
		report.SuggestedSupplies,
		report.RequiredResources,
		report.IsEmergency,
		report.SOSType,
		report.Summary,
		report.Analyzer,
		report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// GetByID возвращает отчет по его UUID
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1;`

	report, err := scanReport(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("report with id %s: %w", id, service.ErrReportNotFound)
		}
		return nil, fmt.Errorf("failed to get report by id: %w", err)
	}
	return report, nil
}

// List возвращает отчеты от новых к старым
func (r *ReportRepository) List(ctx context.Context, filter service.ListFilter) ([]*models.Report, error) {
	query, args := buildListQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*models.Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return reports, nil
}

// Stats считает отчеты по уровням серьезности
func (r *ReportRepository) Stats(ctx context.Context) (*models.ReportStats, error) {
	query := `
		SELECT
			severity,
			COUNT(*),
			COUNT(*) FILTER (WHERE is_emergency)
		FROM reports
		GROUP BY severity;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get report stats: %w", err)
	}
	defer rows.Close()

	stats := &models.ReportStats{BySeverity: make(map[string]int)}
	for rows.Next() {
		var (
			severity           string
			total, emergencies int
		)
		if err := rows.Scan(&severity, &total, &emergencies); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats.BySeverity[severity] = total
		stats.Total += total
		stats.Emergencies += emergencies
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error stats iteration: %w", err)
	}
	return stats, nil
}

// GetListFromCache возвращает полный список из Redis; (nil, nil) при промахе
func (r *ReportRepository) GetListFromCache(ctx context.Context) ([]*models.Report, error) {
	val, err := r.redisClient.Get(ctx, reportsListCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reports from cache: %w", err)
	}

	reports := make([]*models.Report, 0)
	if err := json.Unmarshal(val, &reports); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reports from cache: %w", err)
	}
	return reports, nil
}

// SetListCache сохраняет полный список в Redis
func (r *ReportRepository) SetListCache(ctx context.Context, reports []*models.Report) error {
	val, err := json.Marshal(reports)
	if err != nil {
		return fmt.Errorf("failed to marshal reports for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, reportsListCacheKey, val, r.cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set reports in cache: %w", err)
	}
	return nil
}

// InvalidateListCache удаляет закешированный список
func (r *ReportRepository) InvalidateListCache(ctx context.Context) error {
	if err := r.redisClient.Del(ctx, reportsListCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate reports cache: %w", err)
	}
	return nil
}

func buildListQuery(filter service.ListFilter) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT ` + reportColumns + ` FROM reports`)

	if filter.Severity != "" {
		args = append(args, filter.Severity)
		fmt.Fprintf(&sb, " WHERE severity = $%d", len(args))
	}
	sb.WriteString(" ORDER BY created_at DESC")

	if filter.PageSize > 0 {
		page := max(filter.Page, 1)
		args = append(args, filter.PageSize, (page-1)*filter.PageSize)
		fmt.Fprintf(&sb, " LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	sb.WriteString(";")
	return sb.String(), args
}

func scanReport(row pgx.Row) (*models.Report, error) {
	report := &models.Report{}
	err := row.Scan(
		&report.ID,
		&report.ImagePath,
		&report.ImageSource,
		&report.LocationName,
		&report.Latitude,
		&report.Longitude,
		&report.DamageDetected,
		&report.DamageTypes,
		&report.Severity,
		&report.Confidence,
		&report.PriorityScore,
		&report.SuggestedActions,
		&report.SuggestedSupplies,
		&report.RequiredResources,
		&report.IsEmergency,
		&report.SOSType,
		&report.Summary,
		&report.Analyzer,
		&report.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return report, nil
}
