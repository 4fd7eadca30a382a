package platform

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"fieldtrack/internal/geo"
)

// SimulatedService emits fixes from a random walk around a configured
// origin, for development and tests without GPS hardware.
type SimulatedService struct {
	OriginLat float64
	OriginLon float64
	SpeedMPS  float64       // ground speed of the walk
	Interval  time.Duration // delay between fixes

	mu      sync.Mutex
	lat     float64
	lon     float64
	heading float64
	started bool

	rand *rand.Rand
	now  func() time.Time
}

// NewSimulatedService seeds the walk at the origin. A zero interval
// defaults to one second, a zero speed to walking pace.
func NewSimulatedService(originLat, originLon, speedMPS float64, interval time.Duration) *SimulatedService {
	if interval <= 0 {
		interval = time.Second
	}
	if speedMPS <= 0 {
		speedMPS = 1.4
	}
	return &SimulatedService{
		OriginLat: originLat,
		OriginLon: originLon,
		SpeedMPS:  speedMPS,
		Interval:  interval,
		lat:       originLat,
		lon:       originLon,
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
	}
}

// Enabled always succeeds for the simulated service.
func (s *SimulatedService) Enabled(context.Context) error { return nil }

// Subscribe starts the walk. Fixes arrive every Interval until stop is
// called or ctx is done.
func (s *SimulatedService) Subscribe(ctx context.Context) (<-chan geo.Fix, func(), error) {
	out := make(chan geo.Fix, 1)
	done := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(done) }) }

	go func() {
		defer close(out)
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fix := s.step()
				select {
				case out <- fix:
				default:
				}
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, stop, nil
}

// Current returns the walk's present position without advancing it.
func (s *SimulatedService) Current(context.Context) (geo.Fix, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fixLocked(), nil
}

// step advances the walk by one interval and returns the resulting fix.
func (s *SimulatedService) step() geo.Fix {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Drift the heading a little each step so the track meanders instead
	// of teleporting.
	s.heading += (s.rand.Float64() - 0.5) * math.Pi / 4
	dist := s.SpeedMPS * s.Interval.Seconds()
	dLat := dist * math.Cos(s.heading) / 111_000
	dLon := dist * math.Sin(s.heading) / (111_000 * math.Cos(s.lat*math.Pi/180))
	s.lat += dLat
	s.lon += dLon
	return s.fixLocked()
}

func (s *SimulatedService) fixLocked() geo.Fix {
	acc := 3 + s.rand.Float64()*12
	alt := 40 + s.rand.Float64()*5
	return geo.Fix{
		Latitude:  s.lat,
		Longitude: s.lon,
		Altitude:  &alt,
		Accuracy:  &acc,
		Timestamp: s.now().UTC(),
	}
}
