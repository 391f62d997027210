package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"googlemaps.github.io/maps"
)

const cacheKeyPrefix = "geocode:"

// ErrNoResults - адрес не удалось распознать
var ErrNoResults = errors.New("geocode: no results")

// Point - координаты найденного места
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GoogleGeocoder переводит название места в координаты через Google Maps.
// Результаты кешируются в Redis, если клиент передан.
type GoogleGeocoder struct {
	client *maps.Client
	cache  *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewGoogleGeocoder создает геокодер. Дополнительные опции передаются
// клиенту Google Maps как есть.
func NewGoogleGeocoder(apiKey string, cache *redis.Client, ttl time.Duration, logger *logrus.Logger, opts ...maps.ClientOption) (*GoogleGeocoder, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client, cache: cache, ttl: ttl, logger: logger}, nil
}

// Geocode возвращает координаты первого результата для адреса
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (Point, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Point{}, ErrNoResults
	}

	log := g.logger.WithField("address", address)
	key := cacheKeyPrefix + strings.ToLower(address)

	if g.cache != nil {
		cached, err := g.cache.Get(ctx, key).Bytes()
		if err == nil {
			var p Point
			if err := json.Unmarshal(cached, &p); err == nil {
				return p, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.WithError(err).Warn("Failed to read geocode cache")
		}
	}

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return Point{}, ErrNoResults
		}
		return Point{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	if len(results) == 0 {
		return Point{}, ErrNoResults
	}

	loc := results[0].Geometry.Location
	p := Point{Lat: loc.Lat, Lng: loc.Lng}

	if g.cache != nil {
		if data, err := json.Marshal(p); err == nil {
			if err := g.cache.Set(ctx, key, data, g.ttl).Err(); err != nil {
				log.WithError(err).Warn("Failed to write geocode cache")
			}
		}
	}

	return p, nil
}
