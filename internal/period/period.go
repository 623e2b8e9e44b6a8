// Package period defines the aggregation bucket sizes used to key consolidators.
//
// A Key carries only its effective duration, so a named resolution and the
// equivalent explicit duration are the same key:
//
//	period.MustParse("daily") == period.FromDuration(24 * time.Hour)
package period

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
)

// Resolution is a named coarse granularity.
type Resolution string

const (
	ResolutionTick   Resolution = "tick"
	ResolutionSecond Resolution = "second"
	ResolutionMinute Resolution = "minute"
	ResolutionHour   Resolution = "hour"
	ResolutionDaily  Resolution = "daily"
)

const day = 24 * time.Hour

// Duration returns the duration of the resolution. Tick has no duration.
func (r Resolution) Duration() time.Duration {
	switch r {
	case ResolutionSecond:
		return time.Second
	case ResolutionMinute:
		return time.Minute
	case ResolutionHour:
		return time.Hour
	case ResolutionDaily:
		return day
	default:
		return 0
	}
}

// Key identifies the bucket size of a consolidator. The zero Key is invalid.
type Key struct {
	duration time.Duration
}

// shorthands lists the timespan notation accepted by Parse, in ascending order.
var shorthands = []struct {
	name     string
	duration time.Duration
}{
	{"1s", time.Second},
	{"1m", time.Minute},
	{"3m", 3 * time.Minute},
	{"5m", 5 * time.Minute},
	{"15m", 15 * time.Minute},
	{"30m", 30 * time.Minute},
	{"1h", time.Hour},
	{"2h", 2 * time.Hour},
	{"4h", 4 * time.Hour},
	{"6h", 6 * time.Hour},
	{"8h", 8 * time.Hour},
	{"12h", 12 * time.Hour},
	{"1d", day},
	{"3d", 3 * day},
	{"1w", 7 * day},
}

// FromDuration creates a key for an explicit duration.
func FromDuration(d time.Duration) (Key, error) {
	if d <= 0 {
		return Key{}, errors.Newf(errors.ErrCodeInvalidPeriod, "period duration must be positive, got %s", d)
	}

	return Key{duration: d}, nil
}

// FromResolution creates a key for a named resolution.
func FromResolution(r Resolution) (Key, error) {
	if r == ResolutionTick {
		return Key{}, errors.New(errors.ErrCodeInvalidPeriod, "tick resolution has no period to consolidate")
	}

	d := r.Duration()
	if d == 0 {
		return Key{}, errors.Newf(errors.ErrCodeInvalidPeriod, "unknown resolution %q", r)
	}

	return Key{duration: d}, nil
}

// Parse accepts a resolution name, a timespan shorthand such as "15m" or "1d",
// or any Go duration string.
func Parse(s string) (Key, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Key{}, errors.New(errors.ErrCodeInvalidPeriod, "period is empty")
	}

	switch name := Resolution(strings.ToLower(raw)); name {
	case ResolutionTick, ResolutionSecond, ResolutionMinute, ResolutionHour, ResolutionDaily:
		return FromResolution(name)
	case "day":
		return FromResolution(ResolutionDaily)
	}

	for _, sh := range shorthands {
		if sh.name == raw {
			return Key{duration: sh.duration}, nil
		}
	}

	if strings.HasSuffix(raw, "M") {
		return Key{}, errors.New(errors.ErrCodeInvalidPeriod, "calendar month is not a fixed-duration period")
	}

	if n, unit, ok := splitDayUnit(raw); ok {
		if n <= 0 || n > math.MaxInt64/int64(unit) {
			return Key{}, errors.Newf(errors.ErrCodeInvalidPeriod, "period %q is out of range", raw)
		}

		return FromDuration(time.Duration(n) * unit)
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return Key{}, errors.Wrapf(errors.ErrCodeInvalidPeriod, err, "invalid period %q", raw)
	}

	return FromDuration(d)
}

// splitDayUnit parses the "<n>d" and "<n>w" forms that time.ParseDuration does not know.
func splitDayUnit(raw string) (int64, time.Duration, bool) {
	var unit time.Duration

	switch {
	case strings.HasSuffix(raw, "d"):
		unit = day
	case strings.HasSuffix(raw, "w"):
		unit = 7 * day
	default:
		return 0, 0, false
	}

	n, err := strconv.ParseInt(raw[:len(raw)-1], 10, 64)
	if err != nil {
		return 0, 0, false
	}

	return n, unit, true
}

// MustParse is like Parse but panics on error. Intended for constants in tests and examples.
func MustParse(s string) Key {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return k
}

// Duration returns the effective duration of the key.
func (k Key) Duration() time.Duration {
	return k.duration
}

// IsZero reports whether the key is the invalid zero value.
func (k Key) IsZero() bool {
	return k.duration <= 0
}

// Floor aligns t down to the start of the period containing it. Alignment is
// relative to the zero time, so daily keys start at midnight UTC and weekly keys on Monday.
func (k Key) Floor(t time.Time) time.Time {
	return t.UTC().Truncate(k.duration)
}

// Bounds returns the half-open period [start, end) containing t.
func (k Key) Bounds(t time.Time) (time.Time, time.Time) {
	start := k.Floor(t)

	return start, start.Add(k.duration)
}

// Resolution returns the coarsest named resolution the key is a whole multiple of,
// or tick for sub-second keys.
func (k Key) Resolution() Resolution {
	switch {
	case k.duration >= day && k.duration%day == 0:
		return ResolutionDaily
	case k.duration >= time.Hour && k.duration%time.Hour == 0:
		return ResolutionHour
	case k.duration >= time.Minute && k.duration%time.Minute == 0:
		return ResolutionMinute
	case k.duration >= time.Second && k.duration%time.Second == 0:
		return ResolutionSecond
	default:
		return ResolutionTick
	}
}

// String renders the timespan shorthand when one exists, otherwise the Go duration.
func (k Key) String() string {
	for _, sh := range shorthands {
		if sh.duration == k.duration {
			return sh.name
		}
	}

	if k.duration%day == 0 && k.duration > 0 {
		return fmt.Sprintf("%dd", k.duration/day)
	}

	return k.duration.String()
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so keys can be read from config files.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}
