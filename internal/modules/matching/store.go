// README: Pending-package geo index, in memory or backed by Redis GEO.
package matching

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"roadie/internal/modules/location"
	"roadie/internal/types"
)

const pendingGeoKey = "roadie:packages:pending"

type Index interface {
	Add(ctx context.Context, id types.ID, pos types.Point) error
	Remove(ctx context.Context, id types.ID) error
	Nearby(ctx context.Context, p types.Point, radiusKm float64) ([]Candidate, error)
}

// MemoryIndex scans every entry; fine for demo-sized pools.
type MemoryIndex struct {
	mu  sync.RWMutex
	pos map[types.ID]types.Point
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{pos: make(map[types.ID]types.Point)}
}

func (m *MemoryIndex) Add(_ context.Context, id types.ID, pos types.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pos[id] = pos
	return nil
}

func (m *MemoryIndex) Remove(_ context.Context, id types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pos, id)
	return nil
}

func (m *MemoryIndex) Nearby(_ context.Context, p types.Point, radiusKm float64) ([]Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Candidate
	for id, pos := range m.pos {
		d := location.Haversine(p, pos)
		if d <= radiusKm {
			out = append(out, Candidate{ID: id, Position: pos, DistanceKm: d})
		}
	}
	location.SortByDistance(out, func(c Candidate) float64 { return c.DistanceKm })
	return out, nil
}

// RedisIndex keeps pending pickups in a GEO set. Members live until the
// package is accepted; the set itself never expires. Call Reset at startup
// so entries left by a previous process are dropped.
type RedisIndex struct {
	redis *redis.Client
	key   string
}

func NewRedisIndex(client *redis.Client) *RedisIndex {
	return &RedisIndex{redis: client, key: pendingGeoKey}
}

// Reset removes every entry.
func (s *RedisIndex) Reset(ctx context.Context) error {
	return s.redis.Del(ctx, s.key).Err()
}

func (s *RedisIndex) Add(ctx context.Context, id types.ID, pos types.Point) error {
	return s.redis.GeoAdd(ctx, s.key, &redis.GeoLocation{
		Name:      string(id),
		Longitude: pos.Lng,
		Latitude:  pos.Lat,
	}).Err()
}

func (s *RedisIndex) Remove(ctx context.Context, id types.ID) error {
	return s.redis.ZRem(ctx, s.key, string(id)).Err()
}

func (s *RedisIndex) Nearby(ctx context.Context, p types.Point, radiusKm float64) ([]Candidate, error) {
	results, err := s.redis.GeoSearchLocation(ctx, s.key, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  p.Lng,
			Latitude:   p.Lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
		},
		WithCoord: true,
		WithDist:  true,
	}).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, len(results))
	for i, r := range results {
		out[i] = Candidate{
			ID:         types.ID(r.Name),
			Position:   types.Point{Lat: r.Latitude, Lng: r.Longitude},
			DistanceKm: r.Dist,
		}
	}
	return out, nil
}
