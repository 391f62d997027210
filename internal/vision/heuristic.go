package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/shenikar/resqnet/internal/triage"
)

const (
	heuristicName = "heuristic"

	// максимальная сторона изображения перед анализом
	maxSide = 320

	// уверенность без детектора объектов
	heuristicConfidence = 0.80

	fireRatio     = 0.01
	mudRatio      = 0.25
	mixedRatio    = 0.10
	edgeRatio     = 0.15
	edgeMagnitude = 200

	tagFire     = "structure_fire"
	tagFlood    = "flooded_roads"
	tagCollapse = "infrastructure_collapse"
)

// HeuristicAnalyzer ищет огонь, воду с грязью и обломки по цветам и
// плотности границ. Работает без внешних сервисов.
type HeuristicAnalyzer struct{}

func NewHeuristicAnalyzer() *HeuristicAnalyzer {
	return &HeuristicAnalyzer{}
}

func (h *HeuristicAnalyzer) Name() string {
	return heuristicName
}

func (h *HeuristicAnalyzer) Analyze(ctx context.Context, data []byte) (Result, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	px := downsample(img, maxSide)
	if px.w == 0 || px.h == 0 {
		return Result{}, fmt.Errorf("%w: empty image", ErrUnsupportedImage)
	}

	stats := px.colorStats()
	total := float64(px.w * px.h)

	types := make([]string, 0, 3)
	if float64(stats.fire)/total > fireRatio {
		types = append(types, tagFire)
	}
	mud := float64(stats.mud) / total
	water := float64(stats.water) / total
	if mud > mudRatio || (water > mixedRatio && mud > mixedRatio) {
		types = append(types, tagFlood)
	}
	if float64(px.edgeCount(edgeMagnitude))/total > edgeRatio {
		types = append(types, tagCollapse)
	}

	return Result{
		Assessment: triage.DamageAssessment{
			DamageDetected: len(types) > 0,
			DamageTypes:    types,
			Confidence:     heuristicConfidence,
		},
		Analyzer: heuristicName,
	}, nil
}

type pixels struct {
	w, h int
	rgb  []uint8 // r,g,b подряд
}

// downsample уменьшает изображение методом ближайшего соседа так,
// чтобы большая сторона не превышала limit
func downsample(img image.Image, limit int) pixels {
	b := img.Bounds()
	sw, sh := b.Dx(), b.Dy()
	w, h := sw, sh
	if m := max(sw, sh); m > limit {
		w = max(1, sw*limit/m)
		h = max(1, sh*limit/m)
	}

	p := pixels{w: w, h: h, rgb: make([]uint8, w*h*3)}
	for y := 0; y < h; y++ {
		sy := b.Min.Y + y*sh/h
		for x := 0; x < w; x++ {
			sx := b.Min.X + x*sw/w
			r, g, bl, _ := img.At(sx, sy).RGBA()
			i := (y*w + x) * 3
			p.rgb[i] = uint8(r >> 8)
			p.rgb[i+1] = uint8(g >> 8)
			p.rgb[i+2] = uint8(bl >> 8)
		}
	}
	return p
}

type colorStats struct {
	fire, mud, water int
}

// colorStats считает пиксели в диапазонах HSV; оттенок в шкале 0..180,
// насыщенность и яркость в шкале 0..255
func (p pixels) colorStats() colorStats {
	var s colorStats
	for i := 0; i < len(p.rgb); i += 3 {
		hue, sat, val := toHSV(p.rgb[i], p.rgb[i+1], p.rgb[i+2])

		if sat >= 150 && val >= 150 && (hue <= 35 || hue >= 170) {
			s.fire++
		}
		if hue >= 10 && hue <= 35 && sat >= 60 && sat <= 200 && val >= 50 && val <= 200 {
			s.mud++
		}
		if hue >= 90 && hue <= 130 && sat >= 50 && val >= 50 {
			s.water++
		}
	}
	return s
}

func toHSV(r, g, b uint8) (hue, sat, val float64) {
	rf, gf, bf := float64(r), float64(g), float64(b)
	hi := max(rf, gf, bf)
	lo := min(rf, gf, bf)
	delta := hi - lo

	val = hi
	if hi > 0 {
		sat = delta / hi * 255
	}
	if delta == 0 {
		return 0, sat, val
	}

	switch hi {
	case rf:
		hue = 60 * (gf - bf) / delta
	case gf:
		hue = 60*(bf-rf)/delta + 120
	default:
		hue = 60*(rf-gf)/delta + 240
	}
	if hue < 0 {
		hue += 360
	}
	return hue / 2, sat, val
}

// edgeCount считает пиксели с градиентом Собеля (L1) не ниже threshold,
// которые являются локальным максимумом вдоль направления градиента
func (p pixels) edgeCount(threshold int) int {
	if p.w < 3 || p.h < 3 {
		return 0
	}

	gray := make([]int, p.w*p.h)
	for i := range gray {
		r, g, b := int(p.rgb[i*3]), int(p.rgb[i*3+1]), int(p.rgb[i*3+2])
		gray[i] = (299*r + 587*g + 114*b) / 1000
	}
	at := func(x, y int) int { return gray[y*p.w+x] }

	gx := make([]int, p.w*p.h)
	gy := make([]int, p.w*p.h)
	mag := make([]int, p.w*p.h)
	for y := 1; y < p.h-1; y++ {
		for x := 1; x < p.w-1; x++ {
			dx := (at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)) - (at(x-1, y-1) + 2*at(x-1, y) + at(x-1, y+1))
			dy := (at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)) - (at(x-1, y-1) + 2*at(x, y-1) + at(x+1, y-1))
			i := y*p.w + x
			gx[i], gy[i] = dx, dy
			mag[i] = abs(dx) + abs(dy)
		}
	}

	count := 0
	for y := 1; y < p.h-1; y++ {
		for x := 1; x < p.w-1; x++ {
			i := y*p.w + x
			m := mag[i]
			if m < threshold {
				continue
			}
			var a, b int
			if abs(gx[i]) >= abs(gy[i]) {
				a, b = mag[i-1], mag[i+1]
			} else {
				a, b = mag[i-p.w], mag[i+p.w]
			}
			if m >= a && m >= b {
				count++
			}
		}
	}
	return count
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
