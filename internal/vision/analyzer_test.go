package vision

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"testing"
	"time"

	"github.com/shenikar/resqnet/internal/triage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	name  string
	res   Result
	err   error
	calls int
}

func (s *stubAnalyzer) Name() string { return s.name }

func (s *stubAnalyzer) Analyze(context.Context, []byte) (Result, error) {
	s.calls++
	return s.res, s.err
}

// blockingAnalyzer ждет отмены контекста, как зависший внешний сервис
type blockingAnalyzer struct {
	calls int
}

func (b *blockingAnalyzer) Name() string { return "slow" }

func (b *blockingAnalyzer) Analyze(ctx context.Context, _ []byte) (Result, error) {
	b.calls++
	<-ctx.Done()
	return Result{}, ctx.Err()
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return logger
}

func TestChainAnalyzer_FallsBack(t *testing.T) {
	first := &stubAnalyzer{name: "openai", err: errors.New("timeout")}
	second := &stubAnalyzer{name: "heuristic", res: Result{
		Assessment: triage.DamageAssessment{DamageDetected: true, DamageTypes: []string{"fire"}},
		Analyzer:   "heuristic",
	}}

	chain := NewChainAnalyzer(newTestLogger(), first, second)
	res, err := chain.Analyze(context.Background(), []byte("img"))

	require.NoError(t, err)
	assert.Equal(t, "heuristic", res.Analyzer)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, "chain(openai,heuristic)", chain.Name())
}

func TestChainAnalyzer_FirstWins(t *testing.T) {
	first := &stubAnalyzer{name: "openai", res: Result{Analyzer: "openai"}}
	second := &stubAnalyzer{name: "heuristic"}

	res, err := NewChainAnalyzer(newTestLogger(), first, second).Analyze(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "openai", res.Analyzer)
	assert.Zero(t, second.calls)
}

func TestChainAnalyzer_AllFail(t *testing.T) {
	first := &stubAnalyzer{name: "openai", err: errors.New("timeout")}
	second := &stubAnalyzer{name: "heuristic", err: ErrUnsupportedImage}

	_, err := NewChainAnalyzer(newTestLogger(), first, second).Analyze(context.Background(), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.Contains(t, err.Error(), "timeout")
}

func TestChainAnalyzer_HeuristicRunsAfterCallerDeadline(t *testing.T) {
	fire := encodePNG(t, solidImage(64, 48, color.RGBA{R: 255, G: 80, B: 0, A: 255}))
	slow := &blockingAnalyzer{}
	chain := NewChainAnalyzer(newTestLogger(), slow, NewHeuristicAnalyzer())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res, err := chain.Analyze(ctx, fire)

	require.NoError(t, err)
	assert.Equal(t, 1, slow.calls)
	assert.Equal(t, heuristicName, res.Analyzer)
	assert.True(t, res.Assessment.DamageDetected)
	assert.Equal(t, []string{"structure_fire"}, res.Assessment.DamageTypes)
}

func TestChainAnalyzer_AttemptTimeout(t *testing.T) {
	fire := encodePNG(t, solidImage(64, 48, color.RGBA{R: 255, G: 80, B: 0, A: 255}))
	slow := &blockingAnalyzer{}
	chain := NewChainAnalyzer(newTestLogger(), slow, NewHeuristicAnalyzer()).WithAttemptTimeout(50 * time.Millisecond)

	start := time.Now()
	res, err := chain.Analyze(context.Background(), fire)

	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, heuristicName, res.Analyzer)
	assert.Equal(t, []string{"structure_fire"}, res.Assessment.DamageTypes)
}

func TestChainAnalyzer_StopsWhenCallerCancels(t *testing.T) {
	first := &stubAnalyzer{name: "openai", err: errors.New("boom")}
	second := &stubAnalyzer{name: "heuristic"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewChainAnalyzer(newTestLogger(), first, second).Analyze(ctx, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, first.calls)
	assert.Zero(t, second.calls)
}

func TestChainAnalyzer_Empty(t *testing.T) {
	_, err := NewChainAnalyzer(newTestLogger()).Analyze(context.Background(), nil)
	assert.Error(t, err)
}

func TestNormalizeTag(t *testing.T) {
	assert.Equal(t, "flooded_roads", normalizeTag("  Flooded Roads "))
	assert.Equal(t, "road_block", normalizeTag("Road-Block"))
	assert.Equal(t, "", normalizeTag("   "))
}
