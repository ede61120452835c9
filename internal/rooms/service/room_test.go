package service

import (
	"context"
	"testing"
	"time"

	roomserrors "roomline/internal/rooms/errors"
	"roomline/internal/rooms/validator"
	"roomline/pkg/auth"
	"roomline/pkg/client"
	"roomline/pkg/config"
	apperrors "roomline/pkg/errors"
	"roomline/pkg/logger"
	"roomline/pkg/model"
)

type mockRoomRepo struct {
	createFn    func(ctx context.Context, room *model.Room) error
	findByIDFn  func(ctx context.Context, id string) (*model.Room, error)
	findAllFn   func(ctx context.Context, limit int, offset int64) ([]*model.Room, error)
	countFn     func(ctx context.Context) (int64, error)
	setActiveFn func(ctx context.Context, id string, active bool) error
}

func (m *mockRoomRepo) Create(ctx context.Context, room *model.Room) error {
	return m.createFn(ctx, room)
}

func (m *mockRoomRepo) FindByID(ctx context.Context, id string) (*model.Room, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockRoomRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Room, error) {
	return m.findAllFn(ctx, limit, offset)
}

func (m *mockRoomRepo) Count(ctx context.Context) (int64, error) {
	return m.countFn(ctx)
}

func (m *mockRoomRepo) SetActive(ctx context.Context, id string, active bool) error {
	return m.setActiveFn(ctx, id, active)
}

type mockAvailability struct {
	checkFn func(ctx context.Context, roomID string, start, end time.Time) (*client.Availability, error)
}

func (m *mockAvailability) CheckAvailability(ctx context.Context, roomID string, start, end time.Time) (*client.Availability, error) {
	return m.checkFn(ctx, roomID, start, end)
}

func newRoomService(repo *mockRoomRepo, bookings *mockAvailability) RoomService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{Level: "error", Service: "test"}),
	}
	return NewRoomService(repo, validator.NewRoomValidator(cfg.Log), bookings, cfg)
}

func managerIdentity() *auth.Identity {
	return &auth.Identity{UserID: "mgr-1", Role: auth.RoleFacilityManager}
}

func TestCreateRoomRequiresPrivilegedRole(t *testing.T) {
	svc := newRoomService(&mockRoomRepo{}, &mockAvailability{})

	err := svc.Create(context.Background(), &auth.Identity{UserID: "u1", Role: auth.RoleRegular}, &model.Room{
		Name:     "Boardroom",
		Capacity: 12,
	})
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestCreateRoomValidatesInput(t *testing.T) {
	svc := newRoomService(&mockRoomRepo{}, &mockAvailability{})

	err := svc.Create(context.Background(), managerIdentity(), &model.Room{Name: "X"})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCreateRoomDefaultsToActive(t *testing.T) {
	var persisted *model.Room
	repo := &mockRoomRepo{
		createFn: func(_ context.Context, room *model.Room) error {
			room.ID = "room-1"
			persisted = room
			return nil
		},
	}
	svc := newRoomService(repo, &mockAvailability{})

	err := svc.Create(context.Background(), managerIdentity(), &model.Room{
		Name:     "Boardroom",
		Capacity: 12,
		Active:   false,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if persisted == nil || !persisted.Active {
		t.Fatal("expected new room to be active")
	}
}

func TestStateDistinguishesMissingFromInactive(t *testing.T) {
	repo := &mockRoomRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Room, error) {
			switch id {
			case "inactive-room":
				return &model.Room{ID: id, Name: "Old Lab", Capacity: 4, Active: false}, nil
			default:
				return nil, roomserrors.ErrNotFound
			}
		},
	}
	svc := newRoomService(repo, &mockAvailability{})
	ctx := context.Background()

	state, err := svc.State(ctx, "missing-room")
	if err != nil {
		t.Fatalf("state lookup failed: %v", err)
	}
	if state.Exists || state.Active {
		t.Fatalf("expected {exists:false active:false}, got %+v", state)
	}

	state, err = svc.State(ctx, "inactive-room")
	if err != nil {
		t.Fatalf("state lookup failed: %v", err)
	}
	if !state.Exists || state.Active {
		t.Fatalf("expected {exists:true active:false}, got %+v", state)
	}
}

func TestAvailabilityProxiesBookingsService(t *testing.T) {
	repo := &mockRoomRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Room, error) {
			return &model.Room{ID: id, Name: "Boardroom", Capacity: 12, Active: true}, nil
		},
	}
	bookings := &mockAvailability{
		checkFn: func(_ context.Context, roomID string, _, _ time.Time) (*client.Availability, error) {
			return &client.Availability{Available: false, ConflictingBookingIDs: []string{"b-1"}}, nil
		},
	}
	svc := newRoomService(repo, bookings)

	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	availability, err := svc.Availability(context.Background(), "room-1", start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("availability failed: %v", err)
	}
	if availability.Available || len(availability.ConflictingBookingIDs) != 1 {
		t.Fatalf("unexpected availability: %+v", availability)
	}
}

func TestAvailabilityPropagatesCircuitOpen(t *testing.T) {
	repo := &mockRoomRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Room, error) {
			return &model.Room{ID: id, Name: "Boardroom", Capacity: 12, Active: true}, nil
		},
	}
	bookings := &mockAvailability{
		checkFn: func(context.Context, string, time.Time, time.Time) (*client.Availability, error) {
			return nil, apperrors.CircuitOpen("bookings")
		},
	}
	svc := newRoomService(repo, bookings)

	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	_, err := svc.Availability(context.Background(), "room-1", start, start.Add(time.Hour))
	if !apperrors.HasCode(err, apperrors.CodeCircuitOpen) {
		t.Fatalf("expected CIRCUIT_OPEN, got %v", err)
	}
}

func TestAvailabilityRejectsUnknownRoom(t *testing.T) {
	repo := &mockRoomRepo{
		findByIDFn: func(context.Context, string) (*model.Room, error) {
			return nil, roomserrors.ErrNotFound
		},
	}
	svc := newRoomService(repo, &mockAvailability{})

	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	_, err := svc.Availability(context.Background(), "ghost-room", start, start.Add(time.Hour))
	if !apperrors.HasCode(err, apperrors.CodeRoomNotFound) {
		t.Fatalf("expected ROOM_NOT_FOUND, got %v", err)
	}
}
