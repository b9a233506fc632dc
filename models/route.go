package models

import (
	"fmt"
	"strings"
	"time"
)

type Route struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

func (r Route) Label() string {
	return fmt.Sprintf("%s → %s", r.Origin, r.Destination)
}

// Schedule is one departure of a bus on a route.
type Schedule struct {
	ID             int    `json:"id"`
	RouteID        int    `json:"route_id"`
	BusName        string `json:"bus_name"`
	Departure      string `json:"departure"`
	SeatsAvailable int    `json:"seats_available"`
}

var departureLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC1123,
}

// DepartureTime parses Departure. Layouts without a zone are read as local time.
func (s Schedule) DepartureTime() (time.Time, bool) {
	v := strings.TrimSpace(s.Departure)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range departureLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// HoursUntilDeparture is negative once the bus has left.
func (s Schedule) HoursUntilDeparture(now time.Time) (float64, bool) {
	t, ok := s.DepartureTime()
	if !ok {
		return 0, false
	}
	return t.Sub(now).Hours(), true
}

func (s Schedule) Label() string {
	t, ok := s.DepartureTime()
	if !ok {
		return s.BusName
	}
	return fmt.Sprintf("%s • %s", s.BusName, t.Format("02 Jan 2006 15:04"))
}
