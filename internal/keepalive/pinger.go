package keepalive

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shenikar/resqnet/internal/observability"
	"github.com/sirupsen/logrus"
)

// HealthPath - путь проверки состояния сервиса
const HealthPath = "/api/v1/system/health"

// Pinger периодически опрашивает health-эндпоинт, чтобы хостинг
// не усыплял сервис при отсутствии трафика.
type Pinger struct {
	url        string
	schedule   string
	httpClient *http.Client
	logger     *logrus.Logger
	metrics    *observability.Metrics
	cron       *cron.Cron
}

// NewPinger создает пингер для baseURL. metrics может быть nil.
func NewPinger(baseURL, schedule string, logger *logrus.Logger, metrics *observability.Metrics) *Pinger {
	return &Pinger{
		url:        strings.TrimRight(baseURL, "/") + HealthPath,
		schedule:   schedule,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		metrics:    metrics,
	}
}

// URL возвращает адрес, который опрашивает пингер
func (p *Pinger) URL() string {
	return p.url
}

// Ping выполняет один запрос; любой ответ не 2xx считается ошибкой
func (p *Pinger) Ping(ctx context.Context) error {
	err := p.ping(ctx)
	if p.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		p.metrics.KeepAlivePings.WithLabelValues(outcome).Inc()
	}
	return err
}

func (p *Pinger) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("failed to build ping request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ping %s: %w", p.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ping %s: unexpected status %d", p.url, resp.StatusCode)
	}
	return nil
}

// Start регистрирует задачу по расписанию и запускает планировщик
func (p *Pinger) Start() error {
	c := cron.New()
	_, err := c.AddFunc(p.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.httpClient.Timeout)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			p.logger.WithError(err).Warn("Keep-alive ping failed")
			return
		}
		p.logger.WithField("url", p.url).Debug("Keep-alive ping succeeded")
	})
	if err != nil {
		return fmt.Errorf("invalid keep-alive schedule %q: %w", p.schedule, err)
	}

	p.cron = c
	c.Start()
	p.logger.WithFields(logrus.Fields{"url": p.url, "schedule": p.schedule}).Info("Keep-alive pinger started")
	return nil
}

// Stop останавливает планировщик и ждет завершения текущего запуска
func (p *Pinger) Stop() {
	if p.cron == nil {
		return
	}
	<-p.cron.Stop().Done()
}
