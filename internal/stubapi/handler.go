package stubapi

import (
	"net/http"
	"time"

	"github.com/clinicdesk/schedule-sync/internal/domain/booking"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// bookingResponse is the wire representation of a booking record.
type bookingResponse struct {
	ID             string   `json:"id"`
	SubjectID      string   `json:"subject_id"`
	ResourceID     string   `json:"resource_id"`
	StartTime      string   `json:"start_time"`
	EndTime        string   `json:"end_time"`
	Status         string   `json:"status"`
	Version        int64    `json:"version"`
	ConflictingIDs []string `json:"conflicting_ids,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"`
	UpdatedAt      string   `json:"updated_at,omitempty"`
}

// rescheduleRequest is the PATCH body for a reschedule.
type rescheduleRequest struct {
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Version   int64  `json:"version"`
}

// Handler serves the stub scheduling API.
type Handler struct {
	store  *Store
	logger *zap.Logger
}

// NewHandler creates a Handler over the given store.
func NewHandler(store *Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// RegisterRoutes registers the wire-contract routes on the given router.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.HEAD("/health", h.Health)
	r.GET("/bookings", h.ListBookings)
	r.POST("/bookings/:id/cancel", h.CancelBooking)
	r.PATCH("/bookings/:id", h.RescheduleBooking)
	r.POST("/bookings/:id/checkin", h.CheckInBooking)
}

// Health handles GET/HEAD /health.
func (h *Handler) Health(c *gin.Context) {
	c.Status(http.StatusOK)
}

// ListBookings handles GET /bookings?resource_id=&start_date=&end_date=.
func (h *Handler) ListBookings(c *gin.Context) {
	resourceID := c.Query("resource_id")
	if resourceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource_id is required"})
		return
	}

	from, err := parseDateQuery(c.Query("start_date"), time.Time{})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	to, err := parseDateQuery(c.Query("end_date"), time.Now().UTC().AddDate(1, 0, 0))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}

	records := h.store.List(resourceID, from, to)
	out := make([]bookingResponse, 0, len(records))
	for _, b := range records {
		out = append(out, toResponse(b))
	}
	c.JSON(http.StatusOK, out)
}

// CancelBooking handles POST /bookings/:id/cancel.
func (h *Handler) CancelBooking(c *gin.Context) {
	id := c.Param("id")
	if !h.store.Delete(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}

	h.logger.Info("stub: booking cancelled",
		zap.String("booking_id", id),
		zap.String("trace_id", c.GetHeader("X-Trace-ID")),
	)
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// RescheduleBooking handles PATCH /bookings/:id with a version check; a stale
// version yields 409.
func (h *Handler) RescheduleBooking(c *gin.Context) {
	id := c.Param("id")

	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_time"})
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_time"})
		return
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
		return
	}

	current, ok := h.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	if current.Version != req.Version {
		h.logger.Warn("stub: version conflict",
			zap.String("booking_id", id),
			zap.Int64("have", current.Version),
			zap.Int64("got", req.Version),
		)
		c.JSON(http.StatusConflict, gin.H{"error": "version conflict"})
		return
	}

	updated, _ := h.store.Update(id, func(b *booking.Booking) {
		b.StartTime = start
		b.EndTime = end
		b.Status = booking.StatusBooked
	})
	c.JSON(http.StatusOK, toResponse(updated))
}

// CheckInBooking handles POST /bookings/:id/checkin.
func (h *Handler) CheckInBooking(c *gin.Context) {
	id := c.Param("id")

	updated, ok := h.store.Update(id, func(b *booking.Booking) {
		b.Status = booking.StatusCheckedIn
	})
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	c.JSON(http.StatusOK, toResponse(updated))
}

func toResponse(b booking.Booking) bookingResponse {
	resp := bookingResponse{
		ID:             b.ID,
		SubjectID:      b.SubjectID,
		ResourceID:     b.ResourceID,
		StartTime:      b.StartTime.UTC().Format(time.RFC3339),
		EndTime:        b.EndTime.UTC().Format(time.RFC3339),
		Status:         b.Status.String(),
		Version:        b.Version,
		ConflictingIDs: b.ConflictingIDs,
	}
	if b.CreatedAt != nil {
		resp.CreatedAt = b.CreatedAt.UTC().Format(time.RFC3339)
	}
	if b.UpdatedAt != nil {
		resp.UpdatedAt = b.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func parseDateQuery(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.Parse(time.RFC3339, raw)
}
