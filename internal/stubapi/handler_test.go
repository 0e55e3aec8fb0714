package stubapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/clinicdesk/schedule-sync/internal/domain/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := NewStore()
	NewHandler(store, zap.NewNop()).RegisterRoutes(router)
	return router, store
}

func seed(store *Store, id, resource string, start time.Time) {
	store.Seed(booking.Booking{
		ID:         id,
		SubjectID:  "user-1",
		ResourceID: resource,
		StartTime:  start,
		EndTime:    start.Add(30 * time.Minute),
	})
}

func TestListFiltersByResourceAndRange(t *testing.T) {
	router, store := newTestRouter(t)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	seed(store, "in", "provider-1", base)
	seed(store, "other", "provider-2", base)
	seed(store, "late", "provider-1", base.AddDate(0, 1, 0))

	w := httptest.NewRecorder()
	url := "/bookings?resource_id=provider-1" +
		"&start_date=" + base.Add(-time.Hour).Format(time.RFC3339) +
		"&end_date=" + base.AddDate(0, 0, 7).Format(time.RFC3339)
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got []bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "in", got[0].ID)
}

func TestListRequiresResourceID(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bookings", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRescheduleVersionCheck(t *testing.T) {
	router, store := newTestRouter(t)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	seed(store, "appt-1", "provider-1", base)

	body := func(version int64) string {
		return `{"start_time":"2026-03-10T11:00:00Z","end_time":"2026-03-10T11:30:00Z","version":` +
			strconv.FormatInt(version, 10) + `}`
	}

	// Stale version is rejected.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/bookings/appt-1", strings.NewReader(body(99)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Matching version succeeds and bumps.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/bookings/appt-1", strings.NewReader(body(1)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var got bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, "2026-03-10T11:00:00Z", got.StartTime)
}

func TestCancelUnknownBookingIs404(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings/nope/cancel", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckInUpdatesStatus(t *testing.T) {
	router, store := newTestRouter(t)
	seed(store, "appt-1", "provider-1", time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings/appt-1/checkin", nil))
	require.Equal(t, http.StatusOK, w.Code)

	got, _ := store.Get("appt-1")
	assert.Equal(t, booking.StatusCheckedIn, got.Status)
}
