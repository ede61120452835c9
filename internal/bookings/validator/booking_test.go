package validator

import (
	"testing"
	"time"

	"roomline/pkg/logger"
	"roomline/pkg/model"
)

func testValidator() *BookingValidator {
	log := logger.New(logger.Config{Level: "error", Service: "test"})
	return NewBookingValidator(log, 15*time.Minute, 8*time.Hour)
}

func TestValidateBooking(t *testing.T) {
	base := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		booking model.Booking
		wantErr bool
	}{
		{
			name: "valid one hour booking",
			booking: model.Booking{
				UserID:    "user-1",
				RoomID:    "room-1",
				StartTime: base,
				EndTime:   base.Add(time.Hour),
			},
		},
		{
			name: "missing user",
			booking: model.Booking{
				RoomID:    "room-1",
				StartTime: base,
				EndTime:   base.Add(time.Hour),
			},
			wantErr: true,
		},
		{
			name: "missing room",
			booking: model.Booking{
				UserID:    "user-1",
				StartTime: base,
				EndTime:   base.Add(time.Hour),
			},
			wantErr: true,
		},
		{
			name: "end equals start",
			booking: model.Booking{
				UserID:    "user-1",
				RoomID:    "room-1",
				StartTime: base,
				EndTime:   base,
			},
			wantErr: true,
		},
		{
			name: "end before start",
			booking: model.Booking{
				UserID:    "user-1",
				RoomID:    "room-1",
				StartTime: base,
				EndTime:   base.Add(-time.Hour),
			},
			wantErr: true,
		},
		{
			name: "below minimum duration",
			booking: model.Booking{
				UserID:    "user-1",
				RoomID:    "room-1",
				StartTime: base,
				EndTime:   base.Add(10 * time.Minute),
			},
			wantErr: true,
		},
		{
			name: "exactly minimum duration",
			booking: model.Booking{
				UserID:    "user-1",
				RoomID:    "room-1",
				StartTime: base,
				EndTime:   base.Add(15 * time.Minute),
			},
		},
		{
			name: "above maximum duration",
			booking: model.Booking{
				UserID:    "user-1",
				RoomID:    "room-1",
				StartTime: base,
				EndTime:   base.Add(9 * time.Hour),
			},
			wantErr: true,
		},
		{
			name: "exactly maximum duration",
			booking: model.Booking{
				UserID:    "user-1",
				RoomID:    "room-1",
				StartTime: base,
				EndTime:   base.Add(8 * time.Hour),
			},
		},
		{
			name: "unknown status",
			booking: model.Booking{
				UserID:    "user-1",
				RoomID:    "room-1",
				StartTime: base,
				EndTime:   base.Add(time.Hour),
				Status:    "tentative",
			},
			wantErr: true,
		},
	}

	v := testValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.booking)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateWindowUpdate(t *testing.T) {
	base := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	v := testValidator()

	if err := v.ValidateWindowUpdate(&model.BookingWindowUpdate{
		StartTime: base,
		EndTime:   base.Add(time.Hour),
	}); err != nil {
		t.Fatalf("valid window rejected: %v", err)
	}

	if err := v.ValidateWindowUpdate(&model.BookingWindowUpdate{
		StartTime: base,
		EndTime:   base.Add(5 * time.Minute),
	}); err == nil {
		t.Fatal("expected short window to be rejected")
	}
}
