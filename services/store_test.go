package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"bus-booking/models"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotService_SaveAndLoad(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewSnapshotService(db, time.Hour)
	ctx := context.Background()

	routes := []models.Route{{ID: 1, Name: "Coastal", Origin: "Pune", Destination: "Goa"}}
	payload := `[{"id":1,"name":"Coastal","origin":"Pune","destination":"Goa"}]`

	mock.ExpectSet("snapshot:cache_routes", payload, time.Hour).SetVal("OK")
	require.NoError(t, svc.Save(ctx, SnapshotRoutes, routes))

	mock.ExpectGet("snapshot:cache_routes").SetVal(payload)
	var got []models.Route
	ok, err := svc.Load(ctx, SnapshotRoutes, &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, routes, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotService_Missing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewSnapshotService(db, 0)

	mock.ExpectGet("snapshot:cache_reserved:7").RedisNil()
	var labels []string
	ok, err := svc.Load(context.Background(), SnapshotReserved(7), &labels)

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotService_Errors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewSnapshotService(db, 0)
	ctx := context.Background()

	mock.ExpectGet("snapshot:cache_schedules").SetErr(errors.New("connection reset"))
	var schedules []models.Schedule
	_, err := svc.Load(ctx, SnapshotSchedules, &schedules)
	assert.ErrorContains(t, err, "connection reset")

	mock.ExpectGet("snapshot:cache_schedules").SetVal("{broken")
	ok, err := svc.Load(ctx, SnapshotSchedules, &schedules)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestPreferenceService(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewPreferenceService(db)
	ctx := context.Background()

	mock.ExpectGet(prefAPIURL).RedisNil()
	url, err := svc.APIURL(ctx)
	require.NoError(t, err)
	assert.Empty(t, url)

	mock.ExpectSet(prefAPIURL, "http://api.local/api", 0).SetVal("OK")
	require.NoError(t, svc.SetAPIURL(ctx, "http://api.local/api"))

	mock.ExpectGet(prefHasBookedOnce).RedisNil()
	booked, err := svc.HasBookedOnce(ctx)
	require.NoError(t, err)
	assert.False(t, booked)

	mock.ExpectSet(prefHasBookedOnce, "true", 0).SetVal("OK")
	require.NoError(t, svc.MarkBooked(ctx))

	mock.ExpectGet(prefHasBookedOnce).SetVal("true")
	booked, err = svc.HasBookedOnce(ctx)
	require.NoError(t, err)
	assert.True(t, booked)

	mock.ExpectDel(prefAuthToken).SetVal(1)
	require.NoError(t, svc.SetAuthToken(ctx, ""))

	mock.ExpectGet(prefAuthToken).SetVal("tok")
	token, err := svc.AuthToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceService_Ratings(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewPreferenceService(db)
	ctx := context.Background()
	ts := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectHSet(prefRatings, "11", `{"rating":4,"comment":"ok","ts":"2026-05-01T08:00:00Z"}`).SetVal(1)
	require.NoError(t, svc.SaveRating(ctx, 11, models.LocalRating{Rating: 4, Comment: "ok", UpdatedAt: ts}))

	mock.ExpectHGetAll(prefRatings).SetVal(map[string]string{
		"11":  `{"rating":4,"comment":"ok","ts":"2026-05-01T08:00:00Z"}`,
		"abc": `{"rating":1}`,
		"12":  `garbage`,
	})
	ratings, err := svc.Ratings(ctx)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, 4, ratings[11].Rating)
	assert.True(t, ts.Equal(ratings[11].UpdatedAt))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	var missing []string
	ok, err := m.Load(ctx, "nope", &missing)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Save(ctx, SnapshotReserved(3), []string{"1A"}))
	var labels []string
	ok, err = m.Load(ctx, SnapshotReserved(3), &labels)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"1A"}, labels)

	require.NoError(t, m.SetAuthToken(ctx, "tok"))
	tok, _ := m.AuthToken(ctx)
	assert.Equal(t, "tok", tok)
	require.NoError(t, m.SetAuthToken(ctx, ""))
	tok, _ = m.AuthToken(ctx)
	assert.Empty(t, tok)

	require.NoError(t, m.SetAPIURL(ctx, "http://x"))
	url, _ := m.APIURL(ctx)
	assert.Equal(t, "http://x", url)

	require.NoError(t, m.SaveRating(ctx, 5, models.LocalRating{Rating: 3}))
	ratings, _ := m.Ratings(ctx)
	ratings[5] = models.LocalRating{Rating: 1}
	again, _ := m.Ratings(ctx)
	assert.Equal(t, 3, again[5].Rating)
}
