package services

import (
	"context"
	"errors"
	"io"
	"slices"
	"testing"
	"time"

	"bus-booking/internal/fare"
	"bus-booking/internal/status"
	"bus-booking/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) LookupReserved(ctx context.Context, scheduleID int) (models.ReservedSet, error) {
	args := m.Called(ctx, scheduleID)
	set, _ := args.Get(0).(models.ReservedSet)
	return set, args.Error(1)
}

func (m *mockAPI) Routes(ctx context.Context) ([]models.Route, error) {
	args := m.Called(ctx)
	routes, _ := args.Get(0).([]models.Route)
	return routes, args.Error(1)
}

func (m *mockAPI) Schedules(ctx context.Context) ([]models.Schedule, error) {
	args := m.Called(ctx)
	schedules, _ := args.Get(0).([]models.Schedule)
	return schedules, args.Error(1)
}

func (m *mockAPI) MyBookings(ctx context.Context) ([]models.Booking, error) {
	args := m.Called(ctx)
	bookings, _ := args.Get(0).([]models.Booking)
	return bookings, args.Error(1)
}

func (m *mockAPI) Pay(ctx context.Context, amount int64) (string, error) {
	args := m.Called(ctx, amount)
	return args.String(0), args.Error(1)
}

func (m *mockAPI) Book(ctx context.Context, req models.BookingRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockAPI) CancelBooking(ctx context.Context, bookingID int, reason string) error {
	return m.Called(ctx, bookingID, reason).Error(0)
}

func (m *mockAPI) RateBooking(ctx context.Context, bookingID, rating int, comment string) error {
	return m.Called(ctx, bookingID, rating, comment).Error(0)
}

func newTestSession(t *testing.T) (*BookingSession, *mockAPI, *MemoryStore) {
	t.Helper()
	api := &mockAPI{}
	store := NewMemoryStore()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	s, err := NewBookingSession(SessionDeps{
		API:       api,
		Snapshots: store,
		Prefs:     store,
		Fare:      fare.NewEngine(100, fare.DefaultCatalog()),
		Layout:    models.DefaultSeatLayout,
		Logger:    logger,
	})
	require.NoError(t, err)
	s.now = func() time.Time { return testNow }
	return s, api, store
}

func departure(d time.Duration) string {
	return testNow.Add(d).Format(time.RFC3339)
}

func seatView(t *testing.T, m SeatMap, label string) models.SeatView {
	t.Helper()
	for _, v := range m.Seats {
		if v.Seat.Label == label {
			return v
		}
	}
	t.Fatalf("seat %s not rendered", label)
	return models.SeatView{}
}

var errOffline = status.Transport("GET", errors.New("connection refused"))

func TestNewBookingSession_RejectsInvalidLayout(t *testing.T) {
	_, err := NewBookingSession(SessionDeps{Layout: models.SeatLayoutConfig{Rows: -1}})
	assert.Error(t, err)
}

func TestSelectSchedule_RendersReserved(t *testing.T) {
	s, api, _ := newTestSession(t)
	api.On("LookupReserved", mock.Anything, 7).Return(models.NewReservedSet("1A", "3d"), nil)

	m, err := s.SelectSchedule(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 7, m.ScheduleID)
	assert.False(t, m.Loading)
	assert.Len(t, m.Seats, 55)
	assert.Equal(t, []string{"1A", "3D"}, m.Reserved)
	assert.True(t, seatView(t, m, "1A").Reserved)
	assert.True(t, seatView(t, m, "1A").Disabled)
	assert.False(t, seatView(t, m, "1B").Reserved)
	assert.Empty(t, m.Notice)
}

func TestSelectSchedule_InvalidID(t *testing.T) {
	s, _, _ := newTestSession(t)
	_, err := s.SelectSchedule(context.Background(), 0)
	assert.ErrorIs(t, err, status.ErrValidation)
}

func TestToggle_SelectionDrivesFare(t *testing.T) {
	s, api, _ := newTestSession(t)
	api.On("LookupReserved", mock.Anything, 7).Return(models.NewReservedSet(), nil)
	_, err := s.SelectSchedule(context.Background(), 7)
	require.NoError(t, err)

	_, err = s.Toggle("1A")
	require.NoError(t, err)
	_, err = s.Toggle("1b")
	require.NoError(t, err)
	m, err := s.Toggle("1A")
	require.NoError(t, err)

	assert.Equal(t, []string{"1B"}, m.Selected)
	assert.True(t, seatView(t, m, "1B").Selected)

	q, err := s.Quote(context.Background(), 4, "")
	require.NoError(t, err)
	assert.Equal(t, 1, q.SeatCount)
	assert.Equal(t, int64(100), q.FinalAmount)
}

func TestToggle_ReservedSeatIsInert(t *testing.T) {
	s, api, _ := newTestSession(t)
	api.On("LookupReserved", mock.Anything, 7).Return(models.NewReservedSet("1A"), nil)
	_, err := s.SelectSchedule(context.Background(), 7)
	require.NoError(t, err)

	m, err := s.Toggle("1A")
	require.NoError(t, err)
	assert.Empty(t, m.Selected)
}

func TestToggle_Rejections(t *testing.T) {
	s, api, _ := newTestSession(t)

	_, err := s.Toggle("1A")
	assert.ErrorIs(t, err, status.ErrValidation)

	api.On("LookupReserved", mock.Anything, 7).Return(models.NewReservedSet(), nil)
	_, err = s.SelectSchedule(context.Background(), 7)
	require.NoError(t, err)

	_, err = s.Toggle("99Z")
	assert.ErrorIs(t, err, status.ErrValidation)
	_, err = s.Toggle("")
	assert.ErrorIs(t, err, status.ErrValidation)
}

func TestQuote_ManualFallback(t *testing.T) {
	s, _, _ := newTestSession(t)

	q, err := s.Quote(context.Background(), 3, "bus20")
	require.NoError(t, err)
	assert.Equal(t, int64(300), q.BaseAmount)
	assert.Equal(t, int64(60), q.Discount)
}

func TestSelectSchedule_LastScheduleWins(t *testing.T) {
	s, api, _ := newTestSession(t)
	entered := make(chan struct{})
	release := make(chan struct{})

	api.On("LookupReserved", mock.Anything, 1).Run(func(mock.Arguments) {
		close(entered)
		<-release
	}).Return(models.NewReservedSet("1A"), nil).Once()
	api.On("LookupReserved", mock.Anything, 2).Return(models.NewReservedSet("2B"), nil)

	done := make(chan SeatMap)
	go func() {
		m, _ := s.SelectSchedule(context.Background(), 1)
		done <- m
	}()
	<-entered

	loading, err := s.SeatMap()
	require.NoError(t, err)
	assert.True(t, loading.Loading)
	assert.Empty(t, loading.Seats)

	second, err := s.SelectSchedule(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"2B"}, second.Reserved)

	close(release)
	stale := <-done

	assert.Equal(t, 2, stale.ScheduleID)
	current, err := s.SeatMap()
	require.NoError(t, err)
	assert.Equal(t, 2, current.ScheduleID)
	assert.Equal(t, []string{"2B"}, current.Reserved)
	assert.False(t, current.Loading)
}

func TestSelectSchedule_ClearsSelection(t *testing.T) {
	s, api, _ := newTestSession(t)
	api.On("LookupReserved", mock.Anything, mock.Anything).Return(models.NewReservedSet(), nil)

	_, err := s.SelectSchedule(context.Background(), 1)
	require.NoError(t, err)
	_, err = s.Toggle("2A")
	require.NoError(t, err)

	m, err := s.SelectSchedule(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, m.Selected)

	_, err = s.Toggle("2A")
	require.NoError(t, err)
	m, err = s.Reload(context.Background())
	require.NoError(t, err)
	assert.Empty(t, m.Selected)
}

func TestSelectSchedule_ReservedSnapshotFallback(t *testing.T) {
	s, api, _ := newTestSession(t)
	api.On("LookupReserved", mock.Anything, 3).Return(models.NewReservedSet("5C"), nil).Once()
	api.On("LookupReserved", mock.Anything, 3).Return(nil, errOffline)

	_, err := s.SelectSchedule(context.Background(), 3)
	require.NoError(t, err)

	m, err := s.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"5C"}, m.Reserved)
	assert.True(t, m.FromCache)
	assert.Contains(t, m.Notice, "cached")
}

func TestSelectSchedule_DegradedWithoutSnapshot(t *testing.T) {
	s, api, _ := newTestSession(t)
	api.On("LookupReserved", mock.Anything, 3).Return(nil, errOffline)

	m, err := s.SelectSchedule(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, m.Reserved)
	assert.False(t, m.FromCache)
	assert.NotEmpty(t, m.Notice)
	assert.Len(t, m.Seats, 55)

	_, err = s.Toggle("1A")
	assert.NoError(t, err)
}

func TestLoadRoutes_SnapshotLifecycle(t *testing.T) {
	s, api, _ := newTestSession(t)
	routes := []models.Route{{ID: 1, Name: "Coastal", Origin: "Pune", Destination: "Goa"}}

	api.On("Routes", mock.Anything).Return(routes, nil).Once()
	live := s.LoadRoutes(context.Background())
	assert.Equal(t, routes, live.Items)
	assert.False(t, live.FromCache)
	assert.Empty(t, live.Notice)

	api.On("Routes", mock.Anything).Return(nil, errOffline)
	cached := s.LoadRoutes(context.Background())
	assert.Equal(t, routes, cached.Items)
	assert.True(t, cached.FromCache)
	assert.Equal(t, "Showing cached routes (offline or API unavailable)", cached.Notice)
}

func TestLoadSchedules_NoCache(t *testing.T) {
	s, api, _ := newTestSession(t)
	api.On("Schedules", mock.Anything).Return(nil, status.Shape("GET /schedules", "no list"))

	res := s.LoadSchedules(context.Background())
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.False(t, res.FromCache)
	assert.Equal(t, "Unable to load schedules and no cache available.", res.Notice)
}

func loadFixtures(t *testing.T, s *BookingSession, api *mockAPI, bookings []models.Booking) {
	t.Helper()
	api.On("Routes", mock.Anything).Return([]models.Route{{ID: 1, Origin: "Pune", Destination: "Goa"}}, nil)
	api.On("Schedules", mock.Anything).Return([]models.Schedule{
		{ID: 7, RouteID: 1, BusName: "Volvo", Departure: departure(48 * time.Hour), SeatsAvailable: 30},
		{ID: 8, RouteID: 1, BusName: "Volvo", Departure: departure(-2 * time.Hour), SeatsAvailable: 30},
		{ID: 9, RouteID: 1, BusName: "Mini", Departure: departure(5 * time.Hour), SeatsAvailable: 2},
	}, nil)
	api.On("MyBookings", mock.Anything).Return(bookings, nil)
	s.LoadRoutes(context.Background())
	s.LoadSchedules(context.Background())
	s.LoadMyBookings(context.Background())
}

func TestLoadMyBookings_Views(t *testing.T) {
	s, api, store := newTestSession(t)
	stars := 2
	require.NoError(t, store.SaveRating(context.Background(), 11, models.LocalRating{Rating: 5}))

	loadFixtures(t, s, api, []models.Booking{
		{ID: 10, ScheduleID: 7, Seats: 2, Status: "confirmed"},
		{ID: 11, ScheduleID: 8, Seats: 1, Rating: &stars},
		{ID: 12, ScheduleID: 7, Seats: 1, IsCanceled: true},
		{ID: 13, ScheduleID: 99, Seats: 1, Rating: &stars},
	})
	res := s.LoadMyBookings(context.Background())
	require.Len(t, res.Items, 4)

	upcoming := res.Items[0]
	assert.Equal(t, models.BookingActive, upcoming.Status)
	assert.True(t, upcoming.CanCancel)
	assert.False(t, upcoming.CanRate)
	assert.Equal(t, "Pune → Goa", upcoming.RouteLabel)
	assert.Contains(t, upcoming.ScheduleLabel, "Volvo")

	departed := res.Items[1]
	assert.False(t, departed.CanCancel)
	assert.True(t, departed.CanRate)
	assert.Equal(t, 5, departed.Rating)

	cancelled := res.Items[2]
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
	assert.False(t, cancelled.CanCancel)

	unknown := res.Items[3]
	assert.False(t, unknown.CanCancel)
	assert.False(t, unknown.CanRate)
	assert.Equal(t, 2, unknown.Rating)
}

func TestBook_Success(t *testing.T) {
	s, api, store := newTestSession(t)
	loadFixtures(t, s, api, nil)
	api.On("LookupReserved", mock.Anything, 7).Return(models.NewReservedSet(), nil)

	_, err := s.SelectSchedule(context.Background(), 7)
	require.NoError(t, err)
	_, err = s.Toggle("1A")
	require.NoError(t, err)
	_, err = s.Toggle("1B")
	require.NoError(t, err)

	api.On("Pay", mock.Anything, int64(100)).Return("pt_1", nil).Once()
	api.On("Book", mock.Anything, mock.MatchedBy(func(req models.BookingRequest) bool {
		return req.ScheduleID == 7 &&
			req.Seats == 2 &&
			req.PaymentToken == "pt_1" &&
			req.PromoCode != nil && *req.PromoCode == "FIRST50" &&
			req.DiscountApplied == 100 &&
			req.AmountCharged == 100 &&
			slices.Equal(req.SeatNumbers, []string{"1A", "1B"})
	})).Return("42", nil).Once()

	conf, err := s.Book(context.Background(), BookInput{PromoCode: "first50"})
	require.NoError(t, err)

	assert.Equal(t, "42", conf.BookingID)
	assert.Equal(t, []string{"1A", "1B"}, conf.SeatLabels)
	assert.Equal(t, int64(100), conf.Quote.FinalAmount)

	booked, _ := store.HasBookedOnce(context.Background())
	assert.True(t, booked)

	m, err := s.SeatMap()
	require.NoError(t, err)
	assert.Empty(t, m.Selected)
	api.AssertExpectations(t)
	api.AssertNumberOfCalls(t, "LookupReserved", 2)
}

func TestBook_KeepsSelectionOfNewerSchedule(t *testing.T) {
	s, api, _ := newTestSession(t)
	loadFixtures(t, s, api, nil)
	api.On("LookupReserved", mock.Anything, 7).Return(models.NewReservedSet(), nil)
	api.On("LookupReserved", mock.Anything, 8).Return(models.NewReservedSet("3C"), nil)

	_, err := s.SelectSchedule(context.Background(), 7)
	require.NoError(t, err)
	_, err = s.Toggle("1A")
	require.NoError(t, err)

	// the user moves to schedule 8 while payment is in flight
	api.On("Pay", mock.Anything, int64(50)).Run(func(mock.Arguments) {
		_, err := s.SelectSchedule(context.Background(), 8)
		require.NoError(t, err)
		_, err = s.Toggle("2C")
		require.NoError(t, err)
	}).Return("pt_2", nil).Once()
	api.On("Book", mock.Anything, mock.MatchedBy(func(req models.BookingRequest) bool {
		return req.ScheduleID == 7 && slices.Equal(req.SeatNumbers, []string{"1A"})
	})).Return("44", nil).Once()

	conf, err := s.Book(context.Background(), BookInput{PromoCode: "FIRST50"})
	require.NoError(t, err)
	assert.Equal(t, 7, conf.ScheduleID)

	m, err := s.SeatMap()
	require.NoError(t, err)
	assert.Equal(t, 8, m.ScheduleID)
	assert.Equal(t, []string{"2C"}, m.Selected)
	assert.Equal(t, []string{"3C"}, m.Reserved)
	api.AssertNumberOfCalls(t, "LookupReserved", 2)
}

func TestBook_ManualCountOmitsSeatNumbers(t *testing.T) {
	s, api, _ := newTestSession(t)
	loadFixtures(t, s, api, nil)
	api.On("LookupReserved", mock.Anything, 7).Return(nil, errOffline)
	_, err := s.SelectSchedule(context.Background(), 7)
	require.NoError(t, err)

	api.On("Pay", mock.Anything, int64(300)).Return("pt", nil)
	api.On("Book", mock.Anything, mock.MatchedBy(func(req models.BookingRequest) bool {
		return req.Seats == 3 && req.SeatNumbers == nil && req.PromoCode == nil
	})).Return("43", nil)

	conf, err := s.Book(context.Background(), BookInput{ManualSeats: 3})
	require.NoError(t, err)
	assert.Equal(t, "43", conf.BookingID)
	assert.Empty(t, conf.SeatLabels)
}

func TestBook_ValidationBeforeNetwork(t *testing.T) {
	s, api, store := newTestSession(t)
	loadFixtures(t, s, api, nil)
	api.On("LookupReserved", mock.Anything, mock.Anything).Return(models.NewReservedSet(), nil)

	_, err := s.Book(context.Background(), BookInput{ManualSeats: 1})
	assert.ErrorIs(t, err, status.ErrValidation)

	_, err = s.SelectSchedule(context.Background(), 7)
	require.NoError(t, err)

	_, err = s.Book(context.Background(), BookInput{})
	assert.ErrorIs(t, err, status.ErrValidation)
	assert.Equal(t, "Please select at least one seat.", status.MessageOf(err))

	_, err = s.Book(context.Background(), BookInput{ManualSeats: 1, PromoCode: "FLAT50"})
	assert.ErrorIs(t, err, status.ErrValidation)
	assert.Equal(t, "Min amount is ₹200", status.MessageOf(err))

	_, err = s.Book(context.Background(), BookInput{ManualSeats: 1, PromoCode: "NOPE"})
	assert.Equal(t, "Invalid code", status.MessageOf(err))

	require.NoError(t, store.MarkBooked(context.Background()))
	_, err = s.Book(context.Background(), BookInput{ManualSeats: 2, PromoCode: "FIRST50"})
	assert.Equal(t, "Code valid only for first booking", status.MessageOf(err))

	_, err = s.SelectSchedule(context.Background(), 9)
	require.NoError(t, err)
	_, err = s.Book(context.Background(), BookInput{ManualSeats: 3})
	assert.ErrorIs(t, err, status.ErrValidation)

	api.AssertNotCalled(t, "Pay", mock.Anything, mock.Anything)
}

func TestBook_PaymentRejectedKeepsSelection(t *testing.T) {
	s, api, store := newTestSession(t)
	api.On("LookupReserved", mock.Anything, 7).Return(models.NewReservedSet(), nil)
	_, err := s.SelectSchedule(context.Background(), 7)
	require.NoError(t, err)
	_, err = s.Toggle("2C")
	require.NoError(t, err)

	api.On("Pay", mock.Anything, int64(100)).Return("", status.Rejected("pay", "Card declined"))

	_, err = s.Book(context.Background(), BookInput{})
	assert.ErrorIs(t, err, status.ErrServerRejection)
	assert.Equal(t, "Card declined", status.MessageOf(err))

	m, _ := s.SeatMap()
	assert.Equal(t, []string{"2C"}, m.Selected)
	booked, _ := store.HasBookedOnce(context.Background())
	assert.False(t, booked)
	api.AssertNotCalled(t, "Book", mock.Anything, mock.Anything)
}

func TestBook_NetworkError(t *testing.T) {
	s, api, _ := newTestSession(t)
	api.On("LookupReserved", mock.Anything, 7).Return(models.NewReservedSet(), nil)
	_, err := s.SelectSchedule(context.Background(), 7)
	require.NoError(t, err)

	api.On("Pay", mock.Anything, int64(200)).Return("pt", nil)
	api.On("Book", mock.Anything, mock.Anything).Return("", errOffline)

	_, err = s.Book(context.Background(), BookInput{ManualSeats: 2})
	assert.ErrorIs(t, err, status.ErrTransport)
	assert.Equal(t, "Booking failed due to a network error.", status.MessageOf(err))
}

func TestCancel(t *testing.T) {
	s, api, _ := newTestSession(t)
	loadFixtures(t, s, api, []models.Booking{
		{ID: 10, ScheduleID: 7, Seats: 2},
		{ID: 11, ScheduleID: 8, Seats: 1},
	})

	_, err := s.Cancel(context.Background(), 11, "")
	assert.ErrorIs(t, err, status.ErrValidation)
	api.AssertNotCalled(t, "CancelBooking", mock.Anything, mock.Anything, mock.Anything)

	api.On("CancelBooking", mock.Anything, 10, "changed plans").Return(nil).Once()
	out, err := s.Cancel(context.Background(), 10, " changed plans ")
	require.NoError(t, err)
	assert.Equal(t, models.RefundFull, out.Policy)
	api.AssertNumberOfCalls(t, "MyBookings", 2)

	api.On("CancelBooking", mock.Anything, 77, "").Return(status.Rejected("cancel", "Cancellation failed. Please try again."))
	_, err = s.Cancel(context.Background(), 77, "")
	assert.ErrorIs(t, err, status.ErrServerRejection)
}

func TestCancel_ReloadsCurrentSeatMap(t *testing.T) {
	s, api, _ := newTestSession(t)
	loadFixtures(t, s, api, []models.Booking{{ID: 10, ScheduleID: 7, Seats: 2}})
	api.On("LookupReserved", mock.Anything, 7).Return(models.NewReservedSet("1A"), nil)

	_, err := s.SelectSchedule(context.Background(), 7)
	require.NoError(t, err)

	api.On("CancelBooking", mock.Anything, 10, "").Return(nil).Once()
	_, err = s.Cancel(context.Background(), 10, "")
	require.NoError(t, err)

	api.AssertNumberOfCalls(t, "LookupReserved", 2)
}

func TestCancel_KeepsSelectionOfNewerSchedule(t *testing.T) {
	s, api, _ := newTestSession(t)
	loadFixtures(t, s, api, []models.Booking{{ID: 10, ScheduleID: 7, Seats: 2}})
	api.On("LookupReserved", mock.Anything, 7).Return(models.NewReservedSet(), nil)
	api.On("LookupReserved", mock.Anything, 9).Return(models.NewReservedSet(), nil)

	_, err := s.SelectSchedule(context.Background(), 7)
	require.NoError(t, err)

	api.On("CancelBooking", mock.Anything, 10, "").Run(func(mock.Arguments) {
		_, err := s.SelectSchedule(context.Background(), 9)
		require.NoError(t, err)
		_, err = s.Toggle("1B")
		require.NoError(t, err)
	}).Return(nil).Once()

	_, err = s.Cancel(context.Background(), 10, "")
	require.NoError(t, err)

	m, err := s.SeatMap()
	require.NoError(t, err)
	assert.Equal(t, 9, m.ScheduleID)
	assert.Equal(t, []string{"1B"}, m.Selected)
	api.AssertNumberOfCalls(t, "LookupReserved", 2)
}

func TestRate(t *testing.T) {
	s, api, store := newTestSession(t)
	loadFixtures(t, s, api, []models.Booking{
		{ID: 10, ScheduleID: 7, Seats: 2},
		{ID: 11, ScheduleID: 8, Seats: 1},
	})

	assert.ErrorIs(t, s.Rate(context.Background(), 11, 0, ""), status.ErrValidation)
	assert.ErrorIs(t, s.Rate(context.Background(), 11, 6, ""), status.ErrValidation)
	assert.ErrorIs(t, s.Rate(context.Background(), 10, 4, ""), status.ErrValidation)

	api.On("RateBooking", mock.Anything, 11, 4, "smooth ride").Return(nil).Once()
	require.NoError(t, s.Rate(context.Background(), 11, 4, "smooth ride"))

	ratings, _ := store.Ratings(context.Background())
	assert.Equal(t, models.LocalRating{Rating: 4, Comment: "smooth ride", UpdatedAt: testNow}, ratings[11])

	api.On("RateBooking", mock.Anything, 11, 2, "").Return(errOffline)
	err := s.Rate(context.Background(), 11, 2, "")
	assert.ErrorIs(t, err, status.ErrTransport)
	ratings, _ = store.Ratings(context.Background())
	assert.Equal(t, 4, ratings[11].Rating)
}
