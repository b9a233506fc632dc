package services

import (
	"context"
	"fmt"

	"bus-booking/models"

	"github.com/sirupsen/logrus"
)

// ReadResult is a read path outcome. FromCache marks a snapshot served in
// place of live data; Notice is shown to the user when set.
type ReadResult[T any] struct {
	Items     []T    `json:"items"`
	FromCache bool   `json:"from_cache"`
	Notice    string `json:"notice,omitempty"`
}

func loadWithSnapshot[T any](ctx context.Context, s *BookingSession, resource, key string, fetch func(context.Context) ([]T, error)) ReadResult[T] {
	items, err := fetch(ctx)
	if err == nil {
		if items == nil {
			items = []T{}
		}
		if err := s.snapshots.Save(ctx, key, items); err != nil {
			s.logger.WithFields(logrus.Fields{"resource": resource, "error": err}).Warn("failed to save snapshot")
		}
		s.monitor.TrackSnapshot(resource, "live")
		return ReadResult[T]{Items: items}
	}

	log := s.logger.WithFields(logrus.Fields{"resource": resource, "error": err})
	var cached []T
	ok, lerr := s.snapshots.Load(ctx, key, &cached)
	if lerr != nil {
		log = log.WithField("snapshot_error", lerr)
	}
	if ok {
		log.Warn("serving cached snapshot")
		s.monitor.TrackSnapshot(resource, "cache")
		if cached == nil {
			cached = []T{}
		}
		return ReadResult[T]{
			Items:     cached,
			FromCache: true,
			Notice:    fmt.Sprintf("Showing cached %s (offline or API unavailable)", resource),
		}
	}
	log.Warn("no data and no snapshot")
	s.monitor.TrackSnapshot(resource, "empty")
	return ReadResult[T]{
		Items:  []T{},
		Notice: fmt.Sprintf("Unable to load %s and no cache available.", resource),
	}
}

func (s *BookingSession) LoadRoutes(ctx context.Context) ReadResult[models.Route] {
	res := loadWithSnapshot(ctx, s, "routes", SnapshotRoutes, s.api.Routes)

	s.mu.Lock()
	for _, r := range res.Items {
		s.routes[r.ID] = r
	}
	s.mu.Unlock()
	return res
}

func (s *BookingSession) LoadSchedules(ctx context.Context) ReadResult[models.Schedule] {
	res := loadWithSnapshot(ctx, s, "schedules", SnapshotSchedules, s.api.Schedules)

	s.mu.Lock()
	for _, sc := range res.Items {
		s.schedules[sc.ID] = sc
	}
	s.mu.Unlock()
	return res
}

// LoadMyBookings fetches the user's bookings and joins them with the known
// routes, schedules and locally stored ratings.
func (s *BookingSession) LoadMyBookings(ctx context.Context) ReadResult[models.BookingView] {
	res := loadWithSnapshot(ctx, s, "bookings", SnapshotMyBookings, s.api.MyBookings)

	ratings, err := s.prefs.Ratings(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("local ratings unavailable")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings = res.Items
	views := make([]models.BookingView, 0, len(res.Items))
	for _, b := range res.Items {
		views = append(views, s.bookingViewLocked(b, ratings))
	}
	return ReadResult[models.BookingView]{Items: views, FromCache: res.FromCache, Notice: res.Notice}
}

func (s *BookingSession) bookingViewLocked(b models.Booking, ratings map[int]models.LocalRating) models.BookingView {
	v := models.BookingView{Booking: b, Status: b.NormalizedStatus()}
	if r, ok := ratings[b.ID]; ok && r.Rating > 0 {
		v.Rating = r.Rating
	} else if b.Rating != nil {
		v.Rating = *b.Rating
	}

	sched, ok := s.schedules[b.ScheduleID]
	if !ok {
		return v
	}
	v.ScheduleLabel = sched.Label()
	if route, ok := s.routes[sched.RouteID]; ok {
		v.RouteLabel = route.Label()
	}
	if hrs, ok := sched.HoursUntilDeparture(s.now()); ok {
		v.CanCancel = v.Status == models.BookingActive && hrs > 0
		v.CanRate = hrs <= 0
	}
	return v
}

// findBookingLocked returns the booking from the last bookings load.
func (s *BookingSession) findBookingLocked(id int) (models.Booking, bool) {
	for _, b := range s.bookings {
		if b.ID == id {
			return b, true
		}
	}
	return models.Booking{}, false
}
