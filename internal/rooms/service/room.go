package service

import (
	"context"
	"errors"
	"time"

	roomserrors "roomline/internal/rooms/errors"
	"roomline/internal/rooms/repository"
	"roomline/internal/rooms/validator"
	"roomline/pkg/auth"
	"roomline/pkg/client"
	"roomline/pkg/config"
	apperrors "roomline/pkg/errors"
	"roomline/pkg/model"
)

// AvailabilityChecker asks the bookings service whether a window is free.
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, roomID string, start, end time.Time) (*client.Availability, error)
}

type RoomService interface {
	Create(ctx context.Context, identity *auth.Identity, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error)
	SetActive(ctx context.Context, identity *auth.Identity, id string, active bool) error
	State(ctx context.Context, id string) (*model.RoomState, error)
	Availability(ctx context.Context, id string, start, end time.Time) (*client.Availability, error)
}

type roomService struct {
	repo      repository.RoomRepository
	validator *validator.RoomValidator
	bookings  AvailabilityChecker
	cfg       *config.Config
}

func NewRoomService(
	repo repository.RoomRepository,
	validator *validator.RoomValidator,
	bookings AvailabilityChecker,
	cfg *config.Config,
) RoomService {
	return &roomService{
		repo:      repo,
		validator: validator,
		bookings:  bookings,
		cfg:       cfg,
	}
}

func (s *roomService) Create(ctx context.Context, identity *auth.Identity, room *model.Room) error {
	if identity.Role != auth.RoleAdmin && identity.Role != auth.RoleFacilityManager {
		return apperrors.Forbidden("Role is not permitted to create rooms")
	}

	room.ID = ""
	room.Active = true
	if err := s.validator.Validate(room); err != nil {
		s.cfg.Log.Warn("Room validation failed", "error", err)
		return apperrors.Validation("Room validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, room); err != nil {
		s.cfg.Log.Error("Failed to create room", "name", room.Name, "error", err)
		return apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created successfully", "id", room.ID, "name", room.Name)
	return nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	return s.findRoom(ctx, id)
}

func (s *roomService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count rooms", "error", err)
		return nil, 0, apperrors.Internal("Failed to count rooms", err)
	}

	rooms, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list rooms", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve rooms", err)
	}

	return rooms, count, nil
}

func (s *roomService) SetActive(ctx context.Context, identity *auth.Identity, id string, active bool) error {
	if identity.Role != auth.RoleAdmin && identity.Role != auth.RoleFacilityManager {
		return apperrors.Forbidden("Role is not permitted to change room state")
	}

	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return apperrors.RoomNotFound(id)
		}
		if errors.Is(err, roomserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid room ID format")
		}
		s.cfg.Log.Error("Failed to update room active flag", "id", id, "error", err)
		return apperrors.Internal("Failed to update room", err)
	}

	s.cfg.Log.Info("Room active flag updated", "id", id, "active", active)
	return nil
}

// State answers existence and bookability in one call. A missing room is a
// normal answer here, not an error, so collaborators can distinguish "no
// such room" from "rooms service is down".
func (s *roomService) State(ctx context.Context, id string) (*model.RoomState, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) || errors.Is(err, roomserrors.ErrInvalidID) {
			return &model.RoomState{Exists: false, Active: false}, nil
		}
		s.cfg.Log.Error("Failed to read room state", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to read room state", err)
	}

	return &model.RoomState{Exists: true, Active: room.Active}, nil
}

func (s *roomService) Availability(ctx context.Context, id string, start, end time.Time) (*client.Availability, error) {
	if !end.After(start) {
		return nil, apperrors.InvalidTimeRange("end_time must be strictly after start_time")
	}

	if _, err := s.findRoom(ctx, id); err != nil {
		return nil, err
	}

	availability, err := s.bookings.CheckAvailability(ctx, id, start, end)
	if err != nil {
		s.cfg.Log.Warn("Availability check against bookings service failed", "room_id", id, "error", err)
		return nil, err
	}

	return availability, nil
}

func (s *roomService) findRoom(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return nil, apperrors.RoomNotFound(id)
		}
		if errors.Is(err, roomserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve room", err)
	}

	return room, nil
}
