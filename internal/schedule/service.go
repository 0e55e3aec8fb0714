// Package schedule orchestrates the booking synchronization layer: it owns
// the sync state machine, executes user intents as optimistic mutations
// against the cache, and replays the offline queue when connectivity returns.
package schedule

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/clinicdesk/schedule-sync/internal/cache"
	"github.com/clinicdesk/schedule-sync/internal/connectivity"
	"github.com/clinicdesk/schedule-sync/internal/domain"
	"github.com/clinicdesk/schedule-sync/internal/domain/booking"
	"github.com/clinicdesk/schedule-sync/internal/remote"
	"go.uber.org/zap"
)

// Options tunes replay behavior. The zero value reproduces the baseline
// semantics: immediate, unbounded retry of queued actions on every reconnect.
type Options struct {
	// ReplayBackoff spaces out successive replay passes exponentially while
	// the queue stays non-empty.
	ReplayBackoff bool
	// ReplayMaxAttempts abandons an action after this many failed replays.
	// Zero means never abandon.
	ReplayMaxAttempts int
}

// Service is the synchronization core. It executes each user intent as an
// optimistic-apply / remote-call / commit-or-rollback sequence against the
// cache, keeps the sync state, and drives offline-queue replay.
//
// At most one mutation per booking id may be in flight; a concurrent attempt
// on the same id is rejected with *domain.MutationInFlightError.
type Service struct {
	backend remote.Backend
	store   *cache.Store
	monitor connectivity.Monitor
	states  *stateController
	queue   *offlineQueue
	opts    Options
	logger  *zap.Logger

	inFlight *inFlightSet

	unsubscribe func()
}

// NewService wires the synchronization core. The initial sync state is SYNCED
// unless the monitor already reports offline.
func NewService(
	backend remote.Backend,
	store *cache.Store,
	monitor connectivity.Monitor,
	opts Options,
	logger *zap.Logger,
) *Service {
	initial := StateSynced
	if !monitor.Online() {
		initial = StateOffline
	}

	s := &Service{
		backend:  backend,
		store:    store,
		monitor:  monitor,
		states:   newStateController(initial, logger),
		queue:    newOfflineQueue(),
		opts:     opts,
		logger:   logger,
		inFlight: newInFlightSet(),
	}
	s.unsubscribe = monitor.Subscribe(s.handleConnectivity)
	return s
}

// Close detaches the service from the connectivity monitor.
func (s *Service) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Store returns the booking cache this service mutates.
func (s *Service) Store() *cache.Store { return s.store }

// SyncState returns the current sync state.
func (s *Service) SyncState() SyncState { return s.states.current() }

// SubscribeState registers fn for sync-state transitions and returns its
// unsubscribe handle.
func (s *Service) SubscribeState(fn func(SyncState)) func() {
	return s.states.subscribe(fn)
}

// PendingActions returns a copy of the offline queue for inspection.
func (s *Service) PendingActions() []PendingAction {
	return s.queue.snapshot()
}

// Refresh pulls the full booking collection for a resource and time range and
// replaces the cache with it.
func (s *Service) Refresh(ctx context.Context, resourceID string, from, to time.Time) error {
	s.states.set(StateSyncing)

	records, err := s.backend.List(ctx, resourceID, from, to)
	if err != nil {
		if !s.monitor.Online() {
			s.states.set(StateOffline)
		} else {
			s.states.set(StateError)
		}
		s.logger.Error("refresh failed",
			zap.String("resource_id", resourceID),
			zap.Error(err),
		)
		return err
	}

	s.store.Replace(records)
	s.states.set(StateSynced)
	s.logger.Info("refreshed bookings",
		zap.String("resource_id", resourceID),
		zap.Int("count", len(records)),
	)
	return nil
}

// Cancel cancels a booking: the record goes to CANCELLING immediately, then is
// removed once the backend confirms. On failure the record is restored to its
// exact pre-cancel snapshot; while offline the intent is queued for replay.
// An id absent from the cache is a silent no-op.
func (s *Service) Cancel(ctx context.Context, id string) error {
	if !s.inFlight.acquire(id) {
		return domain.NewMutationInFlightError(id)
	}
	defer s.inFlight.release(id)

	return s.cancel(ctx, id, true)
}

// Reschedule moves a booking to a new time window, carrying the cached
// version for the server's optimistic-concurrency check. A version mismatch
// rolls back and surfaces *domain.ConflictError; the caller must re-fetch
// before retrying.
func (s *Service) Reschedule(ctx context.Context, id string, start, end time.Time) error {
	if !s.inFlight.acquire(id) {
		return domain.NewMutationInFlightError(id)
	}
	defer s.inFlight.release(id)

	return s.reschedule(ctx, id, start, end, true)
}

// UndoReschedule reverts a just-rescheduled booking to its original window by
// issuing a second reschedule with the cache's current (server-assigned)
// version. Undo failure is reported, never queued or retried.
func (s *Service) UndoReschedule(ctx context.Context, id string, originalStart, originalEnd time.Time) error {
	if !s.inFlight.acquire(id) {
		return domain.NewMutationInFlightError(id)
	}
	defer s.inFlight.release(id)

	return s.reschedule(ctx, id, originalStart, originalEnd, false)
}

// CheckIn marks a booking as checked in, optimistically first.
func (s *Service) CheckIn(ctx context.Context, id string) error {
	if !s.inFlight.acquire(id) {
		return domain.NewMutationInFlightError(id)
	}
	defer s.inFlight.release(id)

	return s.checkIn(ctx, id, true)
}

func (s *Service) cancel(ctx context.Context, id string, queueOnOffline bool) error {
	snapshot, ok := s.store.Get(id)
	if !ok {
		return nil
	}

	s.store.Apply(id, func(b *booking.Booking) {
		b.Status = booking.StatusCancelling
	})

	if err := s.backend.Cancel(ctx, id); err != nil {
		s.store.Put(snapshot)
		return s.settleFailure("cancel", id, err, queueOnOffline, PendingAction{
			Type:      ActionCancel,
			BookingID: id,
			Timestamp: time.Now().UTC(),
		})
	}

	s.store.Remove(id)
	s.logger.Info("booking cancelled", zap.String("booking_id", id))
	return nil
}

func (s *Service) reschedule(ctx context.Context, id string, start, end time.Time, queueOnOffline bool) error {
	snapshot, ok := s.store.Get(id)
	if !ok {
		return nil
	}

	s.store.Apply(id, func(b *booking.Booking) {
		b.StartTime = start
		b.EndTime = end
		b.Status = booking.StatusRescheduling
	})

	updated, err := s.backend.Reschedule(ctx, id, start, end, snapshot.Version)
	if err != nil {
		s.store.Put(snapshot)
		if domain.IsConflict(err) {
			s.logger.Warn("reschedule conflict, refresh required",
				zap.String("booking_id", id),
				zap.Int64("version", snapshot.Version),
			)
			return err
		}
		return s.settleFailure("reschedule", id, err, queueOnOffline, PendingAction{
			Type:      ActionReschedule,
			BookingID: id,
			Payload:   &ReschedulePayload{StartTime: start, EndTime: end},
			Timestamp: time.Now().UTC(),
		})
	}

	s.store.Put(updated)
	s.logger.Info("booking rescheduled",
		zap.String("booking_id", id),
		zap.Time("start", start),
		zap.Time("end", end),
	)
	return nil
}

func (s *Service) checkIn(ctx context.Context, id string, queueOnOffline bool) error {
	snapshot, ok := s.store.Get(id)
	if !ok {
		return nil
	}

	s.store.Apply(id, func(b *booking.Booking) {
		b.Status = booking.StatusCheckedIn
	})

	updated, err := s.backend.CheckIn(ctx, id)
	if err != nil {
		s.store.Put(snapshot)
		return s.settleFailure("check-in", id, err, queueOnOffline, PendingAction{
			Type:      ActionCheckIn,
			BookingID: id,
			Timestamp: time.Now().UTC(),
		})
	}

	if updated != nil {
		s.store.Put(*updated)
	}
	s.logger.Info("booking checked in", zap.String("booking_id", id))
	return nil
}

// settleFailure classifies a failed remote call after the cache has been
// rolled back: unreachable means the intent may be queued for replay, anything
// else propagates to the caller as-is.
func (s *Service) settleFailure(op, id string, err error, queueOnOffline bool, action PendingAction) error {
	if s.monitor.Online() {
		s.logger.Error(op+" failed, cache rolled back",
			zap.String("booking_id", id),
			zap.Error(err),
		)
		return err
	}

	if queueOnOffline {
		s.queue.push(action)
		s.logger.Warn(op+" deferred while offline",
			zap.String("booking_id", id),
			zap.Int("queue_length", s.queue.len()),
		)
		return domain.NewOfflineError(op, id, true)
	}
	return domain.NewOfflineError(op, id, false)
}

// handleConnectivity reacts to monitor transitions: lost connectivity forces
// OFFLINE from any state; regained connectivity starts a replay pass.
// Delivery is synchronous with the monitor's notification.
func (s *Service) handleConnectivity(online bool) {
	if !online {
		s.logger.Info("network offline")
		s.states.set(StateOffline)
		return
	}

	s.logger.Info("network reconnected, replaying pending actions",
		zap.Int("queue_length", s.queue.len()),
	)
	s.states.set(StateSyncing)
	s.Replay(context.Background())
}

// Replay drains the offline queue, replaying each action in enqueue order.
// Failed actions are re-enqueued at the tail; one action's failure never
// blocks later ones. The state becomes SYNCED only when a pass ends with the
// queue empty. With backoff enabled, passes repeat with growing delays while
// the queue stays non-empty and the network stays up.
func (s *Service) Replay(ctx context.Context) {
	if !s.opts.ReplayBackoff {
		s.replayPass(ctx)
		s.settleReplay()
		return
	}

	bo := backoff.NewExponentialBackOff()
	for {
		s.replayPass(ctx)
		if s.queue.len() == 0 || !s.monitor.Online() {
			break
		}
		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
	s.settleReplay()
}

// replayPass replays every currently queued action once. A replayed action
// holds the same per-id in-flight mark as a user mutation, so the two can
// never interleave on one booking; an action whose id is busy goes back to
// the tail untouched.
func (s *Service) replayPass(ctx context.Context) {
	for _, action := range s.queue.drain() {
		if !s.inFlight.acquire(action.BookingID) {
			s.logger.Warn("replay deferred, booking has a mutation in flight",
				zap.String("booking_id", action.BookingID),
			)
			s.queue.push(action)
			continue
		}
		err := s.replayAction(ctx, action)
		s.inFlight.release(action.BookingID)

		if err != nil {
			action.Attempts++
			if s.opts.ReplayMaxAttempts > 0 && action.Attempts >= s.opts.ReplayMaxAttempts {
				s.logger.Error("abandoning pending action after repeated failures",
					zap.String("type", string(action.Type)),
					zap.String("booking_id", action.BookingID),
					zap.Int("attempts", action.Attempts),
				)
				continue
			}
			s.logger.Warn("replay failed, re-enqueueing action",
				zap.String("type", string(action.Type)),
				zap.String("booking_id", action.BookingID),
				zap.Error(err),
			)
			s.queue.push(action)
		}
	}
}

// replayAction executes one queued action against the backend. Malformed
// actions are logged and dropped, reported as success so they are not
// re-enqueued.
func (s *Service) replayAction(ctx context.Context, action PendingAction) error {
	switch action.Type {
	case ActionCancel:
		return s.cancel(ctx, action.BookingID, false)
	case ActionReschedule:
		if action.Payload == nil {
			s.logger.Error("dropping reschedule action without payload",
				zap.String("booking_id", action.BookingID),
			)
			return nil
		}
		return s.reschedule(ctx, action.BookingID, action.Payload.StartTime, action.Payload.EndTime, false)
	case ActionCheckIn:
		return s.checkIn(ctx, action.BookingID, false)
	default:
		s.logger.Error("dropping pending action of unknown type",
			zap.String("type", string(action.Type)),
		)
		return nil
	}
}

func (s *Service) settleReplay() {
	if !s.monitor.Online() {
		s.states.set(StateOffline)
		return
	}
	if s.queue.len() == 0 {
		s.states.set(StateSynced)
	}
}
