package vision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shenikar/resqnet/internal/triage"
	"github.com/sirupsen/logrus"
)

// ErrUnsupportedImage - изображение не удалось декодировать
var ErrUnsupportedImage = errors.New("vision: unsupported image")

// Result - результат анализа одного изображения
type Result struct {
	Assessment triage.DamageAssessment
	Summary    string
	Analyzer   string
}

// Analyzer определяет повреждения по байтам изображения
type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (Result, error)
	Name() string
}

// ChainAnalyzer опрашивает анализаторы по порядку; первый успешный ответ побеждает.
// У каждой попытки свой срок: зависший внешний анализатор не лишает
// следующие анализаторы времени на работу.
type ChainAnalyzer struct {
	analyzers      []Analyzer
	logger         *logrus.Logger
	attemptTimeout time.Duration
}

func NewChainAnalyzer(logger *logrus.Logger, analyzers ...Analyzer) *ChainAnalyzer {
	return &ChainAnalyzer{analyzers: analyzers, logger: logger}
}

// WithAttemptTimeout задает срок одной попытки; 0 - без ограничения
func (c *ChainAnalyzer) WithAttemptTimeout(d time.Duration) *ChainAnalyzer {
	c.attemptTimeout = d
	return c
}

func (c *ChainAnalyzer) Name() string {
	names := make([]string, 0, len(c.analyzers))
	for _, a := range c.analyzers {
		names = append(names, a.Name())
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c *ChainAnalyzer) Analyze(ctx context.Context, image []byte) (Result, error) {
	if len(c.analyzers) == 0 {
		return Result{}, errors.New("vision: no analyzers configured")
	}

	var errs []error
	for _, a := range c.analyzers {
		// Отмена вызывающим (клиент ушел) прерывает цепочку, истекший срок - нет
		if errors.Is(ctx.Err(), context.Canceled) {
			errs = append(errs, ctx.Err())
			break
		}

		res, err := c.attempt(ctx, a, image)
		if err == nil {
			return res, nil
		}
		c.logger.WithError(err).WithField("analyzer", a.Name()).Warn("Image analyzer failed, trying next")
		errs = append(errs, fmt.Errorf("%s: %w", a.Name(), err))
	}
	return Result{}, errors.Join(errs...)
}

func (c *ChainAnalyzer) attempt(ctx context.Context, a Analyzer, image []byte) (Result, error) {
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}
	if c.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()
	}
	return a.Analyze(ctx, image)
}

// normalizeTag приводит метку модели к виду snake_case в нижнем регистре
func normalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return '_'
		}
		return r
	}, tag)
}
