package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bus-booking/internal/fare"
	"bus-booking/internal/seatmap"
	"bus-booking/internal/status"
	"bus-booking/models"
	"bus-booking/monitoring"

	"github.com/sirupsen/logrus"
)

// BookingAPI is the external booking service as seen by the session.
type BookingAPI interface {
	LookupReserved(ctx context.Context, scheduleID int) (models.ReservedSet, error)
	Routes(ctx context.Context) ([]models.Route, error)
	Schedules(ctx context.Context) ([]models.Schedule, error)
	MyBookings(ctx context.Context) ([]models.Booking, error)
	Pay(ctx context.Context, amount int64) (string, error)
	Book(ctx context.Context, req models.BookingRequest) (string, error)
	CancelBooking(ctx context.Context, bookingID int, reason string) error
	RateBooking(ctx context.Context, bookingID, rating int, comment string) error
}

type SnapshotStore interface {
	Save(ctx context.Context, key string, v any) error
	Load(ctx context.Context, key string, dst any) (bool, error)
}

type PreferenceStore interface {
	APIURL(ctx context.Context) (string, error)
	SetAPIURL(ctx context.Context, url string) error
	AuthToken(ctx context.Context) (string, error)
	SetAuthToken(ctx context.Context, token string) error
	HasBookedOnce(ctx context.Context) (bool, error)
	MarkBooked(ctx context.Context) error
	Ratings(ctx context.Context) (map[int]models.LocalRating, error)
	SaveRating(ctx context.Context, bookingID int, r models.LocalRating) error
}

// SeatMap is the rendered state of the active schedule's seat grid. Seats is
// empty while the reservation fetch is in flight.
type SeatMap struct {
	ScheduleID int               `json:"schedule_id"`
	Loading    bool              `json:"loading"`
	Seats      []models.SeatView `json:"seats"`
	Selected   []string          `json:"selected"`
	Reserved   []string          `json:"reserved"`
	FromCache  bool              `json:"from_cache"`
	Notice     string            `json:"notice,omitempty"`
}

// Text renders the grid for a terminal, one line per row.
func (m SeatMap) Text() string {
	return seatmap.Text(m.Seats)
}

// BookingSession owns the state of one user's booking screen: the schedule
// being viewed, its reserved seats, the current selection and the lookup maps
// used to label bookings. Methods are safe for concurrent use; network calls
// run without holding the lock.
type BookingSession struct {
	api       BookingAPI
	snapshots SnapshotStore
	prefs     PreferenceStore
	fare      *fare.Engine
	layout    models.SeatLayoutConfig
	labels    map[string]struct{}
	logger    *logrus.Logger
	monitor   *monitoring.Monitor
	now       func() time.Time

	mu         sync.Mutex
	scheduleID int
	generation uint64
	loading    bool
	reserved   models.ReservedSet
	fromCache  bool
	notice     string
	selection  seatmap.Selection
	routes     map[int]models.Route
	schedules  map[int]models.Schedule
	bookings   []models.Booking
}

type SessionDeps struct {
	API       BookingAPI
	Snapshots SnapshotStore
	Prefs     PreferenceStore
	Fare      *fare.Engine
	Layout    models.SeatLayoutConfig
	Logger    *logrus.Logger
	Monitor   *monitoring.Monitor
}

func NewBookingSession(deps SessionDeps) (*BookingSession, error) {
	seats, err := seatmap.Generate(deps.Layout)
	if err != nil {
		return nil, fmt.Errorf("seat layout: %w", err)
	}
	labels := make(map[string]struct{}, len(seats))
	for _, l := range seatmap.Labels(seats) {
		labels[l] = struct{}{}
	}

	engine := deps.Fare
	if engine == nil {
		engine = fare.NewEngine(fare.DefaultPerSeatPrice, nil)
	}
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	snapshots := deps.Snapshots
	prefs := deps.Prefs
	if snapshots == nil || prefs == nil {
		mem := NewMemoryStore()
		if snapshots == nil {
			snapshots = mem
		}
		if prefs == nil {
			prefs = mem
		}
	}

	return &BookingSession{
		api:       deps.API,
		snapshots: snapshots,
		prefs:     prefs,
		fare:      engine,
		layout:    deps.Layout,
		labels:    labels,
		logger:    logger,
		monitor:   deps.Monitor,
		now:       time.Now,
		reserved:  models.NewReservedSet(),
		routes:    make(map[int]models.Route),
		schedules: make(map[int]models.Schedule),
	}, nil
}

func (s *BookingSession) Layout() models.SeatLayoutConfig { return s.layout }

func (s *BookingSession) Offers() []models.PromoOffer { return s.fare.Catalog().Offers() }

// SelectSchedule switches the seat map to scheduleID. Selection and reserved
// seats are replaced at once; if another schedule is selected before the
// reservation fetch returns, the fetched result is dropped.
func (s *BookingSession) SelectSchedule(ctx context.Context, scheduleID int) (SeatMap, error) {
	if scheduleID <= 0 {
		return SeatMap{}, status.Invalid("select schedule", "Please select a schedule.")
	}

	s.mu.Lock()
	gen := s.resetLocked(scheduleID)
	s.mu.Unlock()

	return s.loadReserved(ctx, scheduleID, gen)
}

// resetLocked makes scheduleID the active schedule under a new generation and
// empties its selection and reserved seats.
func (s *BookingSession) resetLocked(scheduleID int) uint64 {
	s.generation++
	s.scheduleID = scheduleID
	s.loading = true
	s.reserved = models.NewReservedSet()
	s.fromCache = false
	s.notice = ""
	s.selection.Clear()
	s.monitor.SetSelectedSeats(0)
	return s.generation
}

func (s *BookingSession) loadReserved(ctx context.Context, scheduleID int, gen uint64) (SeatMap, error) {
	reserved, fromCache, notice := s.fetchReserved(ctx, scheduleID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.monitor.TrackStaleFetch()
		s.logger.WithFields(logrus.Fields{
			"schedule_id": scheduleID,
			"current":     s.scheduleID,
		}).Debug("discarding reserved seats for superseded schedule")
		return s.seatMapLocked()
	}
	s.loading = false
	s.reserved = reserved
	s.fromCache = fromCache
	s.notice = notice
	return s.seatMapLocked()
}

// reloadIfCurrent re-fetches the seat map only while gen is still the active
// generation. A schedule selected since then keeps its selection.
func (s *BookingSession) reloadIfCurrent(ctx context.Context, gen uint64) (SeatMap, error) {
	s.mu.Lock()
	if gen == 0 || gen != s.generation || s.scheduleID == 0 {
		current := s.scheduleID
		s.mu.Unlock()
		s.logger.WithField("schedule_id", current).Debug("seat map superseded, skipping reload")
		return s.SeatMap()
	}
	id := s.scheduleID
	next := s.resetLocked(id)
	s.mu.Unlock()

	return s.loadReserved(ctx, id, next)
}

// Reload re-fetches reserved seats for the current schedule and rebuilds the
// grid, clearing the selection.
func (s *BookingSession) Reload(ctx context.Context) (SeatMap, error) {
	s.mu.Lock()
	id := s.scheduleID
	s.mu.Unlock()
	if id == 0 {
		return SeatMap{}, status.Invalid("reload seat map", "Please select a schedule.")
	}
	return s.SelectSchedule(ctx, id)
}

// fetchReserved prefers live data, then the last snapshot for the schedule,
// then an empty set.
func (s *BookingSession) fetchReserved(ctx context.Context, scheduleID int) (models.ReservedSet, bool, string) {
	key := SnapshotReserved(scheduleID)
	reserved, err := s.api.LookupReserved(ctx, scheduleID)
	if err == nil {
		if err := s.snapshots.Save(ctx, key, reserved.Labels()); err != nil {
			s.logger.WithError(err).Warn("failed to save reserved seats snapshot")
		}
		s.monitor.TrackSnapshot("reserved", "live")
		return reserved, false, ""
	}

	log := s.logger.WithFields(logrus.Fields{"schedule_id": scheduleID, "error": err})
	var labels []string
	ok, lerr := s.snapshots.Load(ctx, key, &labels)
	if lerr != nil {
		log = log.WithField("snapshot_error", lerr)
	}
	if ok {
		log.Warn("reserved seats unavailable, using snapshot")
		s.monitor.TrackSnapshot("reserved", "cache")
		return models.NewReservedSet(labels...), true, "Showing cached seat availability (offline or API unavailable)"
	}
	log.Warn("reserved seats unavailable, showing all seats as free")
	s.monitor.TrackSnapshot("reserved", "empty")
	return models.NewReservedSet(), false, "Live seat availability unavailable; the operator confirms seats at booking."
}

func (s *BookingSession) SeatMap() (SeatMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seatMapLocked()
}

func (s *BookingSession) seatMapLocked() (SeatMap, error) {
	m := SeatMap{
		ScheduleID: s.scheduleID,
		Loading:    s.loading,
		Selected:   s.selection.Labels(),
		Reserved:   s.reserved.Labels(),
		FromCache:  s.fromCache,
		Notice:     s.notice,
	}
	if s.scheduleID == 0 || s.loading {
		return m, nil
	}
	views, err := seatmap.Render(s.layout, s.reserved, &s.selection)
	if err != nil {
		return SeatMap{}, fmt.Errorf("render seat map: %w", err)
	}
	s.monitor.TrackRender()
	m.Seats = views
	return m, nil
}

// Toggle flips label in the selection. Reserved seats are left untouched.
func (s *BookingSession) Toggle(label string) (SeatMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduleID == 0 {
		return SeatMap{}, status.Invalid("toggle seat", "Please select a schedule.")
	}
	if s.loading {
		return SeatMap{}, status.Invalid("toggle seat", "Seat map is still loading.")
	}
	label = models.NormalizeSeatLabel(label)
	if _, ok := s.labels[label]; !ok {
		return SeatMap{}, status.Invalid("toggle seat", fmt.Sprintf("Unknown seat %q.", label))
	}
	s.selection.Toggle(label, s.reserved)
	s.monitor.SetSelectedSeats(s.selection.Count())
	return s.seatMapLocked()
}

func (s *BookingSession) ClearSelection() (SeatMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Clear()
	s.monitor.SetSelectedSeats(0)
	return s.seatMapLocked()
}

// Quote prices the current selection, or manualSeats when nothing is selected.
func (s *BookingSession) Quote(ctx context.Context, manualSeats int, promoCode string) (models.FareQuote, error) {
	s.mu.Lock()
	count := seatmap.SeatCount(s.selection.Count(), manualSeats)
	s.mu.Unlock()

	hasBooked, err := s.prefs.HasBookedOnce(ctx)
	if err != nil {
		return models.FareQuote{}, fmt.Errorf("quote: %w", err)
	}
	q := s.fare.Quote(count, promoCode, hasBooked)
	s.monitor.TrackQuote(string(q.Reason))
	return q, nil
}
