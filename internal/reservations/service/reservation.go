package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	reserrors "seaview/internal/reservations/errors"
	"seaview/internal/reservations/notifier"
	"seaview/internal/reservations/repository"
	"seaview/internal/reservations/validator"
	"seaview/pkg/client"
	"seaview/pkg/config"
	apperrors "seaview/pkg/errors"
	"seaview/pkg/model"
)

// CreateReservationRequest is the strongly typed booking payload. Handlers
// build it from the wire body; everything downstream trusts its shape.
type CreateReservationRequest struct {
	RoomID         string
	GuestID        string
	CheckIn        time.Time
	CheckOut       time.Time
	GuestCount     int
	IdempotencyKey string
}

type ReservationService interface {
	CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error)
	Create(ctx context.Context, req CreateReservationRequest) (*model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	List(ctx context.Context, filter model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, int64, error)
	Cancel(ctx context.Context, reservationID string, requester client.Principal) error
	ModifyDates(ctx context.Context, reservationID string, update model.DatesUpdate, requester client.Principal) (*model.Reservation, error)
	ConfirmHold(ctx context.Context, reservationID string, requester client.Principal) (*model.Reservation, error)
	ExpireHolds(ctx context.Context) (int, error)
}

type reservationService struct {
	store      repository.ReservationStore
	lockRepo   repository.RoomLockRepository
	catalog    client.RoomCatalog
	validator  *validator.ReservationValidator
	dispatcher notifier.Dispatcher
	cfg        *config.Config
	rooms      *keyedMutex
	now        func() time.Time
}

func NewReservationService(
	store repository.ReservationStore,
	lockRepo repository.RoomLockRepository,
	catalog client.RoomCatalog,
	resValidator *validator.ReservationValidator,
	dispatcher notifier.Dispatcher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		store:      store,
		lockRepo:   lockRepo,
		catalog:    catalog,
		validator:  resValidator,
		dispatcher: dispatcher,
		cfg:        cfg,
		rooms:      newKeyedMutex(),
		now:        time.Now,
	}
}

// CheckAvailability never takes the room's lock: the answer is advisory and
// may be stale by the time a caller commits. Every commit path re-validates
// under the exclusive scope.
func (s *reservationService) CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	if roomID == "" {
		return false, apperrors.InvalidInput("room_id is required")
	}

	dates, err := model.NewDateRange(checkIn, checkOut)
	if err != nil {
		return false, apperrors.InvalidRange(err.Error(), map[string]any{"room_id": roomID})
	}

	overlapping, err := s.store.QueryOverlapping(ctx, roomID, dates)
	if err != nil {
		return false, apperrors.Storage("failed to query room availability", err)
	}

	return len(overlapping) == 0, nil
}

func (s *reservationService) Create(ctx context.Context, req CreateReservationRequest) (*model.Reservation, error) {
	reservation, replayed, err := s.create(ctx, req)
	if err != nil {
		s.cfg.Log.Error("Failed to create reservation",
			"room_id", req.RoomID,
			"guest_id", req.GuestID,
			"error", err,
		)
		return nil, err
	}

	if !replayed {
		s.cfg.Log.Info("Reservation created successfully",
			"id", reservation.ID,
			"room_id", reservation.RoomID,
			"guest_id", reservation.GuestID,
			"check_in", reservation.CheckIn,
			"check_out", reservation.CheckOut,
			"status", reservation.Status,
			"total_price", reservation.TotalPrice,
		)
		s.dispatcher.Notify(s.createdEvent(reservation.Status), reservation)
	}

	return reservation, nil
}

func (s *reservationService) createdEvent(status model.Status) string {
	if status == model.StatusPendingHold {
		return notifier.EventHeld
	}
	return notifier.EventConfirmed
}

// create runs the full commit path and returns before any notification so
// external I/O stays outside the exclusive scope. replayed reports that an
// idempotent retry matched an existing record.
func (s *reservationService) create(ctx context.Context, req CreateReservationRequest) (*model.Reservation, bool, error) {
	dates, err := model.NewBookingRange(req.CheckIn, req.CheckOut, s.now())
	if err != nil {
		return nil, false, apperrors.InvalidRange(err.Error(), map[string]any{
			"room_id":   req.RoomID,
			"check_in":  req.CheckIn.Format(model.DateLayout),
			"check_out": req.CheckOut.Format(model.DateLayout),
		})
	}

	reservation := &model.Reservation{
		RoomID:         req.RoomID,
		GuestID:        req.GuestID,
		CheckIn:        dates.CheckIn,
		CheckOut:       dates.CheckOut,
		GuestCount:     req.GuestCount,
		Status:         s.initialStatus(),
		IdempotencyKey: req.IdempotencyKey,
	}

	if err := s.validator.Validate(reservation); err != nil {
		return nil, false, apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}

	// Room data is fetched fresh per request; rate and capacity are never
	// cached across bookings.
	room, err := s.catalog.GetRoom(ctx, req.RoomID)
	if err != nil {
		return nil, false, err
	}
	if req.GuestCount > room.Capacity {
		return nil, false, apperrors.CapacityExceeded(room.ID, req.GuestCount, room.Capacity)
	}

	unlock := s.rooms.Lock(req.RoomID)
	defer unlock()

	lockID, err := s.acquireRoomLock(ctx, req.RoomID, dates)
	if err != nil {
		return nil, false, err
	}
	defer s.releaseRoomLock(lockID)

	var replayed bool
	err = s.store.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if req.IdempotencyKey != "" {
			existing, err := s.store.FindByIdempotencyKey(sessCtx, req.IdempotencyKey)
			if err == nil {
				*reservation = *existing
				replayed = true
				return nil
			}
			if !errors.Is(err, reserrors.ErrNotFound) {
				return apperrors.Storage("failed to check idempotency key", err)
			}
		}

		overlapping, err := s.store.QueryOverlapping(sessCtx, req.RoomID, dates)
		if err != nil {
			return apperrors.Storage("failed to re-check room availability", err)
		}
		if len(overlapping) > 0 {
			return apperrors.RoomUnavailable(
				req.RoomID,
				dates.CheckIn.Format(model.DateLayout),
				dates.CheckOut.Format(model.DateLayout),
			)
		}

		// Price is frozen here; later catalog rate changes never touch
		// committed reservations.
		reservation.TotalPrice = room.NightlyRate * int64(dates.Nights())

		if err := s.store.Insert(sessCtx, reservation); err != nil {
			if errors.Is(err, reserrors.ErrConflict) {
				return apperrors.RoomUnavailable(
					req.RoomID,
					dates.CheckIn.Format(model.DateLayout),
					dates.CheckOut.Format(model.DateLayout),
				)
			}
			return apperrors.Storage("failed to persist reservation", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return reservation, replayed, nil
}

func (s *reservationService) initialStatus() model.Status {
	if s.cfg.PreAuthHold {
		return model.StatusPendingHold
	}
	return model.StatusConfirmed
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreError(err, id)
	}

	reservation.Status = reservation.EffectiveStatus(s.now())
	return reservation, nil
}

func (s *reservationService) List(ctx context.Context, filter model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() && filter.Status != model.StatusCompleted {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("unknown status filter: %s", filter.Status))
	}

	// Completed is derived, never stored; translate it (and its confirmed
	// complement) into a check_out bound so the store computes pagination
	// and count over the true result set.
	now := s.now()
	storeFilter := filter
	switch filter.Status {
	case model.StatusCompleted:
		storeFilter.Status = model.StatusConfirmed
		storeFilter.CheckOutNotAfter = now
	case model.StatusConfirmed:
		storeFilter.CheckOutAfter = now
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.store.Count(ctx, storeFilter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "error", errCount)
			errCount = apperrors.Storage("failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.store.List(ctx, storeFilter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "error", errFind)
			errFind = apperrors.Storage("failed to list reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	for _, r := range reservations {
		r.Status = r.EffectiveStatus(now)
	}

	return reservations, count, nil
}

func (s *reservationService) Cancel(ctx context.Context, reservationID string, requester client.Principal) error {
	reservation, err := s.store.FindByID(ctx, reservationID)
	if err != nil {
		return s.mapStoreError(err, reservationID)
	}

	if !requester.CanActOn(reservation.GuestID) {
		return apperrors.Forbidden("only the reservation owner or an admin may cancel it")
	}

	cancelled, err := s.cancelLocked(ctx, reservationID)
	if err != nil {
		s.cfg.Log.Error("Failed to cancel reservation", "id", reservationID, "error", err)
		return err
	}

	s.cfg.Log.Info("Reservation cancelled",
		"id", cancelled.ID,
		"room_id", cancelled.RoomID,
		"requester_id", requester.UserID,
	)
	s.dispatcher.Notify(notifier.EventCancelled, cancelled)
	return nil
}

func (s *reservationService) cancelLocked(ctx context.Context, reservationID string) (*model.Reservation, error) {
	// The room id was read outside the lock; re-read inside the transaction
	// so the status check and the write see one consistent record.
	reservation, err := s.store.FindByID(ctx, reservationID)
	if err != nil {
		return nil, s.mapStoreError(err, reservationID)
	}

	unlock := s.rooms.Lock(reservation.RoomID)
	defer unlock()

	var cancelled *model.Reservation
	err = s.store.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		current, err := s.store.FindByID(sessCtx, reservationID)
		if err != nil {
			return s.mapStoreError(err, reservationID)
		}

		// Gate on the effective status: a confirmed stay whose checkout has
		// passed reads as completed, which is terminal like cancelled.
		effective := current.EffectiveStatus(s.now())
		if effective == model.StatusCancelled {
			return apperrors.AlreadyCancelled(reservationID)
		}
		if !effective.CanTransitionTo(model.StatusCancelled) {
			return apperrors.Conflict(fmt.Sprintf("reservation in status %s cannot be cancelled", effective))
		}

		if err := s.store.UpdateStatus(sessCtx, reservationID, model.StatusCancelled); err != nil {
			return apperrors.Storage("failed to mark reservation cancelled", err)
		}

		current.Status = model.StatusCancelled
		cancelled = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

// ModifyDates moves a reservation to a new range as one all-or-nothing
// transaction under the room's exclusive scope. On any failure the original
// dates and status remain observable, never zero or two records.
func (s *reservationService) ModifyDates(ctx context.Context, reservationID string, update model.DatesUpdate, requester client.Principal) (*model.Reservation, error) {
	if err := s.validator.ValidateDatesUpdate(&update); err != nil {
		return nil, apperrors.InvalidRange(err.Error(), map[string]any{"reservation_id": reservationID})
	}

	newDates, err := model.NewBookingRange(update.CheckIn, update.CheckOut, s.now())
	if err != nil {
		return nil, apperrors.InvalidRange(err.Error(), map[string]any{"reservation_id": reservationID})
	}

	reservation, err := s.store.FindByID(ctx, reservationID)
	if err != nil {
		return nil, s.mapStoreError(err, reservationID)
	}

	if !requester.CanActOn(reservation.GuestID) {
		return nil, apperrors.Forbidden("only the reservation owner or an admin may change its dates")
	}

	// Rate is re-read at modification time; the moved stay is priced as a
	// fresh commit.
	room, err := s.catalog.GetRoom(ctx, reservation.RoomID)
	if err != nil {
		return nil, err
	}

	unlock := s.rooms.Lock(reservation.RoomID)
	defer unlock()

	lockID, err := s.acquireRoomLock(ctx, reservation.RoomID, newDates)
	if err != nil {
		return nil, err
	}
	defer s.releaseRoomLock(lockID)

	var moved *model.Reservation
	err = s.store.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		current, err := s.store.FindByID(sessCtx, reservationID)
		if err != nil {
			return s.mapStoreError(err, reservationID)
		}
		// Effective status, so a finished stay cannot be moved to future
		// dates and resurrected.
		if effective := current.EffectiveStatus(s.now()); !effective.Active() {
			return apperrors.Conflict(fmt.Sprintf("reservation in status %s cannot be moved", effective))
		}

		// The old range is logically freed by excluding this reservation
		// from the conflict check; shrinking or shifting within it stays legal.
		overlapping, err := s.store.QueryOverlapping(sessCtx, current.RoomID, newDates)
		if err != nil {
			return apperrors.Storage("failed to re-check room availability", err)
		}
		for _, other := range overlapping {
			if other.ID != current.ID {
				return apperrors.RoomUnavailable(
					current.RoomID,
					newDates.CheckIn.Format(model.DateLayout),
					newDates.CheckOut.Format(model.DateLayout),
				)
			}
		}

		newPrice := room.NightlyRate * int64(newDates.Nights())
		if err := s.store.UpdateDates(sessCtx, reservationID, newDates, newPrice); err != nil {
			return apperrors.Storage("failed to update reservation dates", err)
		}

		current.CheckIn = newDates.CheckIn
		current.CheckOut = newDates.CheckOut
		current.TotalPrice = newPrice
		moved = current
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to modify reservation dates", "id", reservationID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Reservation dates modified",
		"id", moved.ID,
		"room_id", moved.RoomID,
		"check_in", moved.CheckIn,
		"check_out", moved.CheckOut,
		"requester_id", requester.UserID,
	)
	s.dispatcher.Notify(notifier.EventModified, moved)
	return moved, nil
}

// ConfirmHold completes the pending_hold -> confirmed transition after the
// external payment pre-authorization succeeds.
func (s *reservationService) ConfirmHold(ctx context.Context, reservationID string, requester client.Principal) (*model.Reservation, error) {
	reservation, err := s.store.FindByID(ctx, reservationID)
	if err != nil {
		return nil, s.mapStoreError(err, reservationID)
	}

	if !requester.CanActOn(reservation.GuestID) {
		return nil, apperrors.Forbidden("only the reservation owner or an admin may confirm it")
	}

	unlock := s.rooms.Lock(reservation.RoomID)
	defer unlock()

	var confirmed *model.Reservation
	err = s.store.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		current, err := s.store.FindByID(sessCtx, reservationID)
		if err != nil {
			return s.mapStoreError(err, reservationID)
		}
		if !current.Status.CanTransitionTo(model.StatusConfirmed) {
			return apperrors.Conflict(fmt.Sprintf("reservation in status %s cannot be confirmed", current.Status))
		}

		if err := s.store.UpdateStatus(sessCtx, reservationID, model.StatusConfirmed); err != nil {
			return apperrors.Storage("failed to confirm reservation", err)
		}

		current.Status = model.StatusConfirmed
		confirmed = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Reservation hold confirmed", "id", confirmed.ID, "room_id", confirmed.RoomID)
	s.dispatcher.Notify(notifier.EventConfirmed, confirmed)
	return confirmed, nil
}

// ExpireHolds cancels pending holds older than the configured hold TTL.
// Called periodically by the sweeper.
func (s *reservationService) ExpireHolds(ctx context.Context) (int, error) {
	const sweepBatch = 100

	cutoff := s.now().Add(-s.cfg.HoldTTL)
	stale, err := s.store.FindExpiredHolds(ctx, cutoff, sweepBatch)
	if err != nil {
		return 0, apperrors.Storage("failed to find expired holds", err)
	}

	expired := 0
	for _, hold := range stale {
		cancelled, err := s.expireHold(ctx, hold, cutoff)
		if err != nil {
			s.cfg.Log.Warn("Failed to expire hold", "id", hold.ID, "error", err)
			continue
		}
		if cancelled != nil {
			expired++
			s.dispatcher.Notify(notifier.EventHoldExpired, cancelled)
		}
	}

	if expired > 0 {
		s.cfg.Log.Info("Expired stale holds", "count", expired)
	}
	return expired, nil
}

func (s *reservationService) expireHold(ctx context.Context, hold *model.Reservation, cutoff time.Time) (*model.Reservation, error) {
	unlock := s.rooms.Lock(hold.RoomID)
	defer unlock()

	var cancelled *model.Reservation
	err := s.store.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		current, err := s.store.FindByID(sessCtx, hold.ID)
		if err != nil {
			return s.mapStoreError(err, hold.ID)
		}
		// The hold may have been confirmed or cancelled since the sweep read it.
		if current.Status != model.StatusPendingHold || !current.CreatedAt.Before(cutoff) {
			return nil
		}

		if err := s.store.UpdateStatus(sessCtx, hold.ID, model.StatusCancelled); err != nil {
			return apperrors.Storage("failed to expire hold", err)
		}

		current.Status = model.StatusCancelled
		cancelled = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

// RunHoldSweeper blocks until ctx is cancelled, expiring stale holds each
// period. No-op when pre-authorization holds are disabled.
func RunHoldSweeper(ctx context.Context, svc ReservationService, cfg *config.Config) {
	if !cfg.PreAuthHold {
		return
	}

	ticker := time.NewTicker(cfg.HoldSweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := svc.ExpireHolds(ctx); err != nil {
				cfg.Log.Error("Hold sweep failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// acquireRoomLock takes the database-level advisory lock that serializes
// mutators across service instances. The TTL bounds orphaned locks from a
// crashed holder. Contention maps to the same retryable error the overlap
// re-check produces, whichever instance the competing writer runs on.
func (s *reservationService) acquireRoomLock(ctx context.Context, roomID string, dates model.DateRange) (string, error) {
	lockID := fmt.Sprintf("room_lock_%s", roomID)

	_, err := s.lockRepo.Create(ctx, &model.RoomLock{
		ID:        lockID,
		ExpiresAt: s.now().Add(s.cfg.RoomLockTTL),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.RoomUnavailable(
				roomID,
				dates.CheckIn.Format(model.DateLayout),
				dates.CheckOut.Format(model.DateLayout),
			)
		}
		return "", apperrors.Storage("failed to acquire room lock", err)
	}

	return lockID, nil
}

// releaseRoomLock uses a background context so the lock is freed even when
// the caller's request was cancelled mid-operation.
func (s *reservationService) releaseRoomLock(lockID string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
	defer cancel()

	if err := s.lockRepo.Delete(ctx, lockID); err != nil {
		s.cfg.Log.Warn("Failed to release room lock", "lock_id", lockID, "error", err)
	}
}

func (s *reservationService) mapStoreError(err error, id string) error {
	switch {
	case errors.Is(err, reserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Reservation", id)
	case errors.Is(err, reserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid reservation ID format")
	case apperrors.IsAppError(err):
		return err
	default:
		return apperrors.Storage("reservation store operation failed", err)
	}
}
