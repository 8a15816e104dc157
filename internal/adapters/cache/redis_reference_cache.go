package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"hub-ops-service/internal/domain"
	"hub-ops-service/internal/platform/obs"
	"hub-ops-service/internal/ports"
)

// DefaultReferenceKey is the Redis key holding the reference snapshot.
const DefaultReferenceKey = "hub:reference:snapshot"

// RedisReferenceCache stores the reference snapshot as one JSON value with a
// Redis TTL, so several service instances share a single load.
type RedisReferenceCache struct {
	Client *redis.Client
	Key    string
}

func NewRedisReferenceCache(client *redis.Client) *RedisReferenceCache {
	return &RedisReferenceCache{Client: client, Key: DefaultReferenceKey}
}

var _ ports.ReferenceCache = (*RedisReferenceCache)(nil)

func (c *RedisReferenceCache) Get(ctx context.Context) (_ ports.ReferenceSnapshot, _ bool, err error) {
	defer obs.Time(ctx, "reference.cache.Get")(&err)

	if c.Client == nil {
		return ports.ReferenceSnapshot{}, false, errors.New("reference cache: redis client is nil")
	}

	raw, err := c.Client.Get(ctx, c.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.ReferenceSnapshot{}, false, nil
	}
	if err != nil {
		return ports.ReferenceSnapshot{}, false, fmt.Errorf("get reference cache: redis get %q: %w", c.Key, err)
	}

	var w wireSnapshot
	if err := json.Unmarshal(raw, &w); err != nil {
		return ports.ReferenceSnapshot{}, false, fmt.Errorf("get reference cache: decode snapshot: %w", err)
	}
	return w.toSnapshot(), true, nil
}

func (c *RedisReferenceCache) Set(ctx context.Context, snap ports.ReferenceSnapshot, ttl time.Duration) (err error) {
	defer obs.Time(ctx, "reference.cache.Set")(&err)

	if c.Client == nil {
		return errors.New("reference cache: redis client is nil")
	}

	raw, err := json.Marshal(fromSnapshot(snap))
	if err != nil {
		return fmt.Errorf("set reference cache: encode snapshot: %w", err)
	}
	if err := c.Client.Set(ctx, c.Key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set reference cache: redis set %q: %w", c.Key, err)
	}
	return nil
}

func (c *RedisReferenceCache) Invalidate(ctx context.Context) error {
	if c.Client == nil {
		return errors.New("reference cache: redis client is nil")
	}
	if err := c.Client.Del(ctx, c.Key).Err(); err != nil {
		return fmt.Errorf("invalidate reference cache: redis del %q: %w", c.Key, err)
	}
	return nil
}

// JSON has no NaN, so missing coordinates travel as null.
type wirePoint struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type wireLane struct {
	CorridorCage string    `json:"corridor_cage"`
	Location     wirePoint `json:"location"`
	LicensePlate string    `json:"license_plate,omitempty"`
	PlannedAt    string    `json:"planned_at,omitempty"`
}

type wirePackage struct {
	OrderID  string    `json:"order_id"`
	Location wirePoint `json:"location"`
}

type wireDriver struct {
	DriverID     string `json:"driver_id"`
	Name         string `json:"driver_name"`
	LicensePlate string `json:"license_plate"`
}

type wireSnapshot struct {
	Packages []wirePackage `json:"packages"`
	Lanes    []wireLane    `json:"lanes"`
	Drivers  []wireDriver  `json:"drivers"`
	LoadedAt time.Time     `json:"loaded_at"`
}

func fromSnapshot(s ports.ReferenceSnapshot) wireSnapshot {
	w := wireSnapshot{
		Packages: make([]wirePackage, 0, len(s.Packages)),
		Lanes:    make([]wireLane, 0, len(s.Lanes)),
		Drivers:  make([]wireDriver, 0, len(s.Drivers)),
		LoadedAt: s.LoadedAt,
	}
	for _, p := range s.Packages {
		w.Packages = append(w.Packages, wirePackage{OrderID: p.OrderID, Location: toWirePoint(p.Location)})
	}
	for _, l := range s.Lanes {
		w.Lanes = append(w.Lanes, wireLane{
			CorridorCage: l.CorridorCage,
			Location:     toWirePoint(l.Location),
			LicensePlate: l.LicensePlate,
			PlannedAt:    l.PlannedAt,
		})
	}
	for _, d := range s.Drivers {
		w.Drivers = append(w.Drivers, wireDriver(d))
	}
	return w
}

func (w wireSnapshot) toSnapshot() ports.ReferenceSnapshot {
	s := ports.ReferenceSnapshot{
		Packages: make([]domain.Package, 0, len(w.Packages)),
		Lanes:    make([]domain.Lane, 0, len(w.Lanes)),
		Drivers:  make([]domain.Driver, 0, len(w.Drivers)),
		LoadedAt: w.LoadedAt,
	}
	for _, p := range w.Packages {
		s.Packages = append(s.Packages, domain.Package{OrderID: p.OrderID, Location: p.Location.toCoordinates()})
	}
	for _, l := range w.Lanes {
		s.Lanes = append(s.Lanes, domain.Lane{
			CorridorCage: l.CorridorCage,
			Location:     l.Location.toCoordinates(),
			LicensePlate: l.LicensePlate,
			PlannedAt:    l.PlannedAt,
		})
	}
	for _, d := range w.Drivers {
		s.Drivers = append(s.Drivers, domain.Driver(d))
	}
	return s
}

func toWirePoint(c domain.Coordinates) wirePoint {
	return wirePoint{Lat: finiteOrNil(c.Lat), Lon: finiteOrNil(c.Lon)}
}

func (p wirePoint) toCoordinates() domain.Coordinates {
	c := domain.MissingCoordinates()
	if p.Lat != nil {
		c.Lat = *p.Lat
	}
	if p.Lon != nil {
		c.Lon = *p.Lon
	}
	return c
}

func finiteOrNil(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
