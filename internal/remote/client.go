// Package remote talks to the scheduling backend over HTTP and decodes its
// payloads into typed booking records. Every response body passes through a
// validating decode so the rest of the client never sees an unvalidated shape.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/clinicdesk/schedule-sync/internal/domain"
	"github.com/clinicdesk/schedule-sync/internal/domain/booking"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Backend is the remote scheduling API consumed by the sync layer. Transport
// failures and non-2xx responses come back as *domain.RemoteError, version
// conflicts as *domain.ConflictError; the caller decides whether a transport
// failure means offline.
type Backend interface {
	List(ctx context.Context, resourceID string, from, to time.Time) ([]booking.Booking, error)
	Cancel(ctx context.Context, id string) error
	Reschedule(ctx context.Context, id string, start, end time.Time, version int64) (booking.Booking, error)
	CheckIn(ctx context.Context, id string) (*booking.Booking, error)
}

// Client is the HTTP implementation of Backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a Client for the backend at baseURL. Timeouts are the
// transport's responsibility and surface as ordinary remote failures.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// List fetches all bookings for a resource within [from, to].
func (c *Client) List(ctx context.Context, resourceID string, from, to time.Time) ([]booking.Booking, error) {
	q := url.Values{}
	q.Set("resource_id", resourceID)
	q.Set("start_date", from.UTC().Format(time.RFC3339))
	q.Set("end_date", to.UTC().Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/bookings?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build list request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.WrapRemoteError("list bookings", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewRemoteError("list bookings", resp.StatusCode)
	}

	var wires []bookingWire
	if err := json.NewDecoder(resp.Body).Decode(&wires); err != nil {
		return nil, fmt.Errorf("failed to decode booking list: %w", err)
	}

	out := make([]booking.Booking, 0, len(wires))
	for _, w := range wires {
		b, err := w.toDomain()
		if err != nil {
			return nil, fmt.Errorf("invalid booking in list response: %w", err)
		}
		out = append(out, b)
	}
	return out, nil
}

// Cancel asks the backend to cancel a booking, tagging the request with a
// fresh trace id so a failed cancel can be chased through backend logs.
func (c *Client) Cancel(ctx context.Context, id string) error {
	traceID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bookings/"+id+"/cancel", nil)
	if err != nil {
		return fmt.Errorf("failed to build cancel request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Trace-ID", traceID)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("cancel request failed",
			zap.String("booking_id", id),
			zap.String("trace_id", traceID),
			zap.Error(err),
		)
		return domain.WrapRemoteError("cancel booking", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("cancel rejected by backend",
			zap.String("booking_id", id),
			zap.String("trace_id", traceID),
			zap.Int("status", resp.StatusCode),
		)
		return domain.NewRemoteError("cancel booking", resp.StatusCode)
	}
	return nil
}

// Reschedule patches a booking's time window, carrying the caller's version
// for the server-side optimistic-concurrency check. A 409 comes back as
// *domain.ConflictError.
func (c *Client) Reschedule(ctx context.Context, id string, start, end time.Time, version int64) (booking.Booking, error) {
	body, err := json.Marshal(reschedulePayload{
		StartTime: start.UTC().Format(time.RFC3339),
		EndTime:   end.UTC().Format(time.RFC3339),
		Version:   version,
	})
	if err != nil {
		return booking.Booking{}, fmt.Errorf("failed to encode reschedule payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/bookings/"+id, bytes.NewReader(body))
	if err != nil {
		return booking.Booking{}, fmt.Errorf("failed to build reschedule request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return booking.Booking{}, domain.WrapRemoteError("reschedule booking", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusConflict {
		return booking.Booking{}, domain.NewConflictError(id)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return booking.Booking{}, domain.NewRemoteError("reschedule booking", resp.StatusCode)
	}

	var w bookingWire
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		return booking.Booking{}, fmt.Errorf("failed to decode reschedule response: %w", err)
	}
	return w.toDomain()
}

// CheckIn marks a booking as checked in. The updated record is returned when
// the backend includes one in the response body.
func (c *Client) CheckIn(ctx context.Context, id string) (*booking.Booking, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bookings/"+id+"/checkin", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build check-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.WrapRemoteError("check in booking", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewRemoteError("check in booking", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var w bookingWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("failed to decode check-in response: %w", err)
	}
	b, err := w.toDomain()
	if err != nil {
		return nil, fmt.Errorf("invalid booking in check-in response: %w", err)
	}
	return &b, nil
}
