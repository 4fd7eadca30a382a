package platform

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"

	"fieldtrack/internal/geo"
)

// hdopUERE converts an HDOP value to an approximate horizontal accuracy in
// meters, assuming a consumer-grade receiver error of ~5m per unit.
const hdopUERE = 5.0

// NMEAService reads NMEA sentences from a serial GPS receiver. RMC carries
// position and time; GGA contributes altitude and HDOP between RMC fixes.
type NMEAService struct {
	Port string
	Baud uint
	Log  *slog.Logger
}

// NewNMEAService wires a serial NMEA source.
func NewNMEAService(port string, baud uint, log *slog.Logger) *NMEAService {
	if baud == 0 {
		baud = 9600
	}
	return &NMEAService{Port: port, Baud: baud, Log: log}
}

// Enabled checks that the serial device exists.
func (s *NMEAService) Enabled(context.Context) error {
	if _, err := os.Stat(s.Port); err != nil {
		return fmt.Errorf("%w: %s", ErrServiceDisabled, s.Port)
	}
	return nil
}

// Subscribe opens the port and streams parsed fixes until stop is called.
func (s *NMEAService) Subscribe(ctx context.Context) (<-chan geo.Fix, func(), error) {
	port, err := serial.Open(serial.OpenOptions{
		PortName:        s.Port,
		BaudRate:        s.Baud,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open gps port %s: %w", s.Port, err)
	}

	out := make(chan geo.Fix, 1)
	var once sync.Once
	stop := func() { once.Do(func() { port.Close() }) }

	go func() {
		defer close(out)
		reader := bufio.NewReader(port)
		var alt, acc *float64
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if ctx.Err() == nil {
					s.Log.Warn("gps read ended", "err", err)
				}
				return
			}
			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "$") {
				continue
			}
			sentence, err := nmea.Parse(line)
			if err != nil {
				// Partial or garbled sentences are normal on a noisy line.
				continue
			}
			switch sentence.DataType() {
			case nmea.TypeGGA:
				m := sentence.(nmea.GGA)
				alt = geo.Float(m.Altitude)
				if m.HDOP > 0 {
					acc = geo.Float(m.HDOP * hdopUERE)
				}
			case nmea.TypeRMC:
				m := sentence.(nmea.RMC)
				if m.Validity != "A" {
					continue
				}
				fix := geo.NewFix(m.Latitude, m.Longitude, alt, acc, rmcTime(m))
				select {
				case out <- fix:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, stop, nil
}

// Current takes one fix from a short-lived subscription.
func (s *NMEAService) Current(ctx context.Context) (geo.Fix, error) {
	subCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	fixes, stop, err := s.Subscribe(subCtx)
	if err != nil {
		return geo.Fix{}, err
	}
	defer stop()
	select {
	case fix, ok := <-fixes:
		if !ok {
			return geo.Fix{}, fmt.Errorf("gps stream ended before a fix")
		}
		return fix, nil
	case <-subCtx.Done():
		return geo.Fix{}, fmt.Errorf("no gps fix: %w", subCtx.Err())
	}
}

// rmcTime combines the RMC date and time-of-day fields into a UTC instant.
func rmcTime(m nmea.RMC) time.Time {
	return time.Date(
		2000+m.Date.YY, time.Month(m.Date.MM), m.Date.DD,
		m.Time.Hour, m.Time.Minute, m.Time.Second, m.Time.Millisecond*int(time.Millisecond),
		time.UTC,
	)
}
