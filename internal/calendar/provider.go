package calendar

import "time"

// WeekDay pairs a weekday name with its date in the displayed week.
type WeekDay struct {
	Name string
	Date Date
}

// Provider computes the current Persian week in a fixed location.
type Provider struct {
	loc *time.Location
	now func() time.Time
}

// NewProvider builds a Provider. A nil loc means UTC and a nil now uses time.Now.
func NewProvider(loc *time.Location, now func() time.Time) *Provider {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Provider{loc: loc, now: now}
}

// LoadProvider resolves the named time zone and returns a Provider using time.Now.
func LoadProvider(timezone string) (*Provider, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return NewProvider(loc, time.Now), nil
}

// Location returns the provider's time zone.
func (p *Provider) Location() *time.Location { return p.loc }

// Today returns the current Jalali date.
func (p *Provider) Today() Date {
	return FromTime(p.now().In(p.loc))
}

// WeekDates returns the seven days, Saturday through Friday, of the week that
// contains now. It is recomputed on every call.
func (p *Provider) WeekDates() []WeekDay {
	local := p.now().In(p.loc)
	noon := time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, p.loc)
	start := noon.AddDate(0, 0, -WeekdayIndex(noon))

	week := make([]WeekDay, 0, len(weekdayNames))
	for i := range weekdayNames {
		day := start.AddDate(0, 0, i)
		week = append(week, WeekDay{Name: weekdayNames[i], Date: FromTime(day)})
	}
	return week
}
