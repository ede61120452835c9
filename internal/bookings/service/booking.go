package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "roomline/internal/bookings/errors"
	"roomline/internal/bookings/repository"
	"roomline/internal/bookings/validator"
	"roomline/pkg/auth"
	"roomline/pkg/config"
	apperrors "roomline/pkg/errors"
	"roomline/pkg/events"
	"roomline/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	lockLeaseTTL     = 10 * time.Second
	lockAcquireTries = 3
	lockRetryDelay   = 50 * time.Millisecond
)

// UserDirectory answers whether a user exists. Backed by the users service
// through the resilient caller in production.
type UserDirectory interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// RoomDirectory answers whether a room exists and is bookable.
type RoomDirectory interface {
	RoomState(ctx context.Context, roomID string) (*model.RoomState, error)
}

// Availability is the answer to an availability probe for one room and
// window.
type Availability struct {
	Available             bool     `json:"available"`
	ConflictingBookingIDs []string `json:"conflicting_booking_ids,omitempty"`
}

type BookingService interface {
	Create(ctx context.Context, identity *auth.Identity, booking *model.Booking, override bool) error
	GetByID(ctx context.Context, identity *auth.Identity, id string) (*model.Booking, error)
	List(ctx context.Context, identity *auth.Identity, filter repository.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error)
	Reschedule(ctx context.Context, identity *auth.Identity, id string, window *model.BookingWindowUpdate) error
	Cancel(ctx context.Context, identity *auth.Identity, id string) error
	CheckAvailability(ctx context.Context, roomID string, start, end time.Time) (*Availability, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.RoomLockRepository
	validator *validator.BookingValidator
	users     UserDirectory
	rooms     RoomDirectory
	publisher events.Publisher
	cfg       *config.Config
	roomMu    *roomMutexes
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.RoomLockRepository,
	validator *validator.BookingValidator,
	users UserDirectory,
	rooms RoomDirectory,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: validator,
		users:     users,
		rooms:     rooms,
		publisher: publisher,
		cfg:       cfg,
		roomMu:    newRoomMutexes(),
	}
}

func (s *bookingService) Create(ctx context.Context, identity *auth.Identity, booking *model.Booking, override bool) error {
	if !auth.Allowed(identity.Role, auth.OpCreateBooking) {
		return apperrors.Forbidden("Role is not permitted to create bookings")
	}
	if override && !auth.Allowed(identity.Role, auth.OpOverrideBooking) {
		return apperrors.Forbidden("Role is not permitted to override existing bookings")
	}

	booking.ID = ""
	booking.Status = model.StatusConfirmed
	if err := s.validate(booking); err != nil {
		return err
	}

	if err := s.verifyUser(ctx, booking.UserID); err != nil {
		return err
	}
	if err := s.verifyRoom(ctx, booking.RoomID); err != nil {
		return err
	}

	var displaced []*model.Booking
	err := s.withRoomLock(ctx, booking.RoomID, func() error {
		return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			conflicts, err := s.repo.FindConflicting(sessCtx, booking.RoomID, booking.StartTime, booking.EndTime, "")
			if err != nil {
				return apperrors.Internal("Failed to check existing bookings", err)
			}

			if len(conflicts) > 0 {
				if !override {
					return apperrors.BookingConflict(bookingIDs(conflicts))
				}
				for _, conflict := range conflicts {
					if err := s.repo.UpdateStatus(sessCtx, conflict.ID, model.StatusCancelled); err != nil {
						return apperrors.Internal("Failed to cancel displaced booking", err)
					}
				}
				displaced = conflicts
			}

			if err := s.repo.Create(sessCtx, booking); err != nil {
				return apperrors.Internal("Failed to create booking", err)
			}
			return nil
		})
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking",
			"room_id", booking.RoomID,
			"user_id", booking.UserID,
			"error", err,
		)
		return err
	}

	createdType := events.TypeBookingCreated
	if len(displaced) > 0 {
		createdType = events.TypeBookingOverridden
	}
	for _, d := range displaced {
		d.Status = model.StatusCancelled
		s.publisher.BookingChanged(ctx, events.TypeBookingCancelled, d)
	}
	s.publisher.BookingChanged(ctx, createdType, booking)

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"room_id", booking.RoomID,
		"user_id", booking.UserID,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
		"displaced", len(displaced),
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, identity *auth.Identity, id string) (*model.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.UserID != identity.UserID && !auth.Allowed(identity.Role, auth.OpListAllBookings) {
		return nil, apperrors.NotOwner("Booking belongs to another user")
	}

	return booking, nil
}

func (s *bookingService) List(ctx context.Context, identity *auth.Identity, filter repository.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	// Callers without the list-all capability only ever see their own
	// bookings, whatever filter they sent.
	if !auth.Allowed(identity.Role, auth.OpListAllBookings) {
		filter.UserID = identity.UserID
	}

	count, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to count bookings", "error", err)
		return nil, 0, apperrors.Internal("Failed to count bookings", err)
	}

	bookings, err := s.repo.FindAll(ctx, filter, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", err)
	}

	return bookings, count, nil
}

func (s *bookingService) Reschedule(ctx context.Context, identity *auth.Identity, id string, window *model.BookingWindowUpdate) error {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return err
	}
	if booking.UserID != identity.UserID && !auth.IsAdmin(identity.Role) {
		return apperrors.NotOwner("Only the booking owner or an admin can reschedule it")
	}
	if booking.Status == model.StatusCancelled {
		return apperrors.InvalidInput("Cancelled bookings cannot be rescheduled")
	}

	if err := s.validator.ValidateWindowUpdate(window); err != nil {
		s.cfg.Log.Warn("Booking reschedule validation failed", "id", id, "error", err)
		var windowErr *validator.WindowError
		if errors.As(err, &windowErr) {
			return apperrors.InvalidTimeRange(windowErr.Message)
		}
		return apperrors.Validation("Invalid time window", map[string]any{"error": err.Error()})
	}

	err = s.withRoomLock(ctx, booking.RoomID, func() error {
		return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			conflicts, err := s.repo.FindConflicting(sessCtx, booking.RoomID, window.StartTime, window.EndTime, booking.ID)
			if err != nil {
				return apperrors.Internal("Failed to check existing bookings", err)
			}
			if len(conflicts) > 0 {
				return apperrors.BookingConflict(bookingIDs(conflicts))
			}

			if err := s.repo.UpdateWindow(sessCtx, booking.ID, window); err != nil {
				return apperrors.Internal("Failed to reschedule booking", err)
			}
			return nil
		})
	})
	if err != nil {
		s.cfg.Log.Error("Failed to reschedule booking", "id", id, "error", err)
		return err
	}

	booking.StartTime = window.StartTime
	booking.EndTime = window.EndTime
	s.publisher.BookingChanged(ctx, events.TypeBookingRescheduled, booking)

	s.cfg.Log.Info("Booking rescheduled successfully",
		"id", id,
		"start_time", window.StartTime,
		"end_time", window.EndTime,
	)
	return nil
}

// Cancel is idempotent: cancelling an already cancelled booking succeeds
// without touching storage or emitting an event.
func (s *bookingService) Cancel(ctx context.Context, identity *auth.Identity, id string) error {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return err
	}
	if booking.UserID != identity.UserID && !auth.Allowed(identity.Role, auth.OpForceCancel) {
		return apperrors.NotOwner("Only the booking owner or an admin can cancel it")
	}

	if booking.Status == model.StatusCancelled {
		s.cfg.Log.Debug("Booking already cancelled", "id", id)
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, id, model.StatusCancelled); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.BookingNotFound(id)
		}
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return apperrors.Internal("Failed to cancel booking", err)
	}

	booking.Status = model.StatusCancelled
	s.publisher.BookingChanged(ctx, events.TypeBookingCancelled, booking)

	s.cfg.Log.Info("Booking cancelled successfully", "id", id)
	return nil
}

func (s *bookingService) CheckAvailability(ctx context.Context, roomID string, start, end time.Time) (*Availability, error) {
	if roomID == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}
	if !end.After(start) {
		return nil, apperrors.InvalidTimeRange("end_time must be strictly after start_time")
	}

	conflicts, err := s.repo.FindConflicting(ctx, roomID, start, end, "")
	if err != nil {
		s.cfg.Log.Error("Failed to check availability", "room_id", roomID, "error", err)
		return nil, apperrors.Internal("Failed to check availability", err)
	}

	return &Availability{
		Available:             len(conflicts) == 0,
		ConflictingBookingIDs: bookingIDs(conflicts),
	}, nil
}

// --- Helpers ---

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		var windowErr *validator.WindowError
		if errors.As(err, &windowErr) {
			return apperrors.InvalidTimeRange(windowErr.Message)
		}
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// verifyUser rejects the booking unless the users service positively
// confirms the user. An unreachable directory propagates as-is rather than
// being treated as confirmation.
func (s *bookingService) verifyUser(ctx context.Context, userID string) error {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		s.cfg.Log.Warn("User verification failed", "user_id", userID, "error", err)
		return err
	}
	if !exists {
		return apperrors.UserNotFound(userID)
	}
	return nil
}

// verifyRoom applies the same fail-safe stance to the rooms service: no
// positive confirmation, no booking.
func (s *bookingService) verifyRoom(ctx context.Context, roomID string) error {
	state, err := s.rooms.RoomState(ctx, roomID)
	if err != nil {
		s.cfg.Log.Warn("Room verification failed", "room_id", roomID, "error", err)
		return err
	}
	if !state.Exists {
		return apperrors.RoomNotFound(roomID)
	}
	if !state.Active {
		return apperrors.RoomInactive(roomID)
	}
	return nil
}

// withRoomLock runs fn while holding both the in-process mutex and the
// cross-instance advisory lock for the room.
func (s *bookingService) withRoomLock(ctx context.Context, roomID string, fn func() error) error {
	mu := s.roomMu.lock(roomID)
	defer mu.Unlock()

	lockID, lease, err := s.acquireRoomLock(ctx, roomID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.lockRepo.Release(ctx, lockID, lease); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	return fn()
}

func (s *bookingService) acquireRoomLock(ctx context.Context, roomID string) (lockID, lease string, err error) {
	lockID = fmt.Sprintf("room_lock_%s", roomID)
	lease = uuid.NewString()

	for attempt := 0; attempt < lockAcquireTries; attempt++ {
		lock := &model.RoomLock{
			ID:        lockID,
			Lease:     lease,
			ExpiresAt: time.Now().Add(lockLeaseTTL),
		}

		err = s.lockRepo.Acquire(ctx, lock)
		if err == nil {
			return lockID, lease, nil
		}
		if !errors.Is(err, bookingserrors.ErrLockHeld) {
			return "", "", apperrors.Internal("Failed to acquire room lock", err)
		}

		select {
		case <-ctx.Done():
			return "", "", apperrors.Internal("Context cancelled while waiting for room lock", ctx.Err())
		case <-time.After(lockRetryDelay):
		}
	}

	return "", "", apperrors.BookingConflict(nil).WithDetails(map[string]any{
		"room_id": roomID,
		"reason":  "room is locked by another request, retry shortly",
	})
}

func (s *bookingService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.BookingNotFound(id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func bookingIDs(bookings []*model.Booking) []string {
	if len(bookings) == 0 {
		return nil
	}
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
	}
	return ids
}
