package domain

import "time"

type Performance struct {
	ID               int64
	Event            Event
	Venue            string
	Start            time.Time
	End              time.Time
	Performers       []string
	AirFiltration    bool
	SocialDistancing bool
	Outdoors         bool
	CapacityLimit    int
	VenueSize        int
}

// PerformanceSpec carries the caller-supplied attributes of a performance.
type PerformanceSpec struct {
	Venue            string
	Start            time.Time
	End              time.Time
	Performers       []string
	AirFiltration    bool
	SocialDistancing bool
	Outdoors         bool
	CapacityLimit    int
	VenueSize        int
}

func (s PerformanceSpec) Validate() error {
	if s.Start.After(s.End) {
		return ErrStartAfterEnd
	}
	if s.CapacityLimit < 1 {
		return ErrInvalidCapacity
	}
	if s.VenueSize < 1 {
		return ErrInvalidVenueSize
	}
	return nil
}

// NewPerformance validates spec and attaches the new performance to event.
func NewPerformance(id int64, event Event, spec PerformanceSpec) (*Performance, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	p := &Performance{
		ID:               id,
		Event:            event,
		Venue:            spec.Venue,
		Start:            spec.Start,
		End:              spec.End,
		Performers:       append([]string(nil), spec.Performers...),
		AirFiltration:    spec.AirFiltration,
		SocialDistancing: spec.SocialDistancing,
		Outdoors:         spec.Outdoors,
		CapacityLimit:    spec.CapacityLimit,
		VenueSize:        spec.VenueSize,
	}
	event.Base().addPerformance(p)
	return p, nil
}

func (p *Performance) HasStarted(now time.Time) bool { return p.Start.Before(now) }

func (p *Performance) HasEnded(now time.Time) bool { return p.End.Before(now) }

// SameTiming reports whether p runs exactly from start to end.
func (p *Performance) SameTiming(start, end time.Time) bool {
	return p.Start.Equal(start) && p.End.Equal(end)
}

// Satisfies reports whether p is a future performance matching prefs.
func (p *Performance) Satisfies(prefs Preferences, now time.Time) bool {
	if prefs.AirFiltration && !p.AirFiltration {
		return false
	}
	if prefs.SocialDistancing && !p.SocialDistancing {
		return false
	}
	if prefs.OutdoorsOnly && !p.Outdoors {
		return false
	}
	return p.CapacityLimit <= prefs.MaxCapacity &&
		p.VenueSize <= prefs.MaxVenueSize &&
		p.Start.After(now)
}

// WithinDayOf reports whether p starts and ends within a day either side of t.
func (p *Performance) WithinDayOf(t time.Time) bool {
	lo, hi := t.Add(-24*time.Hour), t.Add(24*time.Hour)
	return p.Start.After(lo) && p.Start.Before(hi) &&
		p.End.After(lo) && p.End.Before(hi)
}
