package ephemeris

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/openfroyo/bodygraph/pkg/engine"
)

// ZoneResolver loads IANA zones once per name. Unknown names resolve to UTC;
// the substitution is logged the first time a name is seen.
type ZoneResolver struct {
	mu    sync.Mutex
	zones map[string]*time.Location
}

// NewZoneResolver creates an empty resolver.
func NewZoneResolver() *ZoneResolver {
	return &ZoneResolver{zones: make(map[string]*time.Location)}
}

// Resolve returns the zone for name, or UTC if name is not a known zone.
func (r *ZoneResolver) Resolve(name string) *time.Location {
	r.mu.Lock()
	defer r.mu.Unlock()

	if loc, ok := r.zones[name]; ok {
		return loc
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn().
			Err(engine.NewUnknownTimezoneError(name, err)).
			Str("timezone", name).
			Msg("Unknown timezone, using UTC")
		loc = time.UTC
	}
	r.zones[name] = loc
	return loc
}

// Known reports whether name is a loadable zone identifier.
func (r *ZoneResolver) Known(name string) bool {
	return name == "UTC" || r.Resolve(name) != time.UTC
}

// CivilInstant reads instant on the civil clock of tz at minute resolution and
// converts the reading back to an absolute instant. It fails with
// engine.ErrAmbiguousLocalTime when the reading occurs twice in the zone.
func (r *ZoneResolver) CivilInstant(instant time.Time, tz string) (time.Time, error) {
	loc := r.Resolve(tz)
	local := instant.In(loc)
	local = time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), 0, 0, loc)

	if Ambiguous(local, loc) {
		return time.Time{}, engine.NewAmbiguousLocalTimeError(local.Format("2006-01-02 15:04"), loc.String())
	}
	return local.UTC(), nil
}

// Ambiguous reports whether the wall clock reading of t occurs at two
// different instants in loc, as happens during a daylight-saving fall-back.
func Ambiguous(t time.Time, loc *time.Location) bool {
	local := t.In(loc)
	wall := time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), time.UTC)

	offsets := make(map[int]bool, 3)
	for _, probe := range []time.Duration{-12 * time.Hour, 0, 12 * time.Hour} {
		_, off := t.Add(probe).In(loc).Zone()
		offsets[off] = true
	}

	matches := 0
	for off := range offsets {
		candidate := wall.Add(-time.Duration(off) * time.Second)
		c := candidate.In(loc)
		if _, cOff := c.Zone(); cOff == off && sameWall(c, local) {
			matches++
		}
	}
	return matches > 1
}

func sameWall(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day() &&
		a.Hour() == b.Hour() && a.Minute() == b.Minute() && a.Second() == b.Second()
}
