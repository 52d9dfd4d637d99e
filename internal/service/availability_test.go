package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"turnoplus/config"
	"turnoplus/internal/domain"
)

func newAvailabilityTestService(t *testing.T) (*AvailabilityServiceImpl, *fakeAvailabilityRepo, int64) {
	t.Helper()

	users := newFakeUserRepo()
	doctorID := users.addUser(domain.UserRoleDoctor)
	repo := newFakeAvailabilityRepo()

	svc := NewAvailabilityService(repo, users, config.BookingConfig{DisplayTimeZone: "UTC"}, zap.NewNop())
	svc.now = func() time.Time {
		return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	}
	return svc, repo, doctorID
}

func TestCreateAvailabilityPartitionsBlocks(t *testing.T) {
	svc, _, doctorID := newAvailabilityTestService(t)

	startAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	window, err := svc.Create(context.Background(), domain.CreateAvailabilityDTO{
		DoctorID: doctorID,
		StartAt:  startAt,
		EndAt:    startAt.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if len(window.Blocks) != 2 {
		t.Fatalf("expected 2 blocks for a 1-hour window, got %d", len(window.Blocks))
	}

	first, second := window.Blocks[0], window.Blocks[1]
	if !first.StartAt.Equal(startAt) || !first.EndAt.Equal(startAt.Add(30*time.Minute)) {
		t.Errorf("unexpected first block bounds: %v - %v", first.StartAt, first.EndAt)
	}
	if !second.StartAt.Equal(startAt.Add(30*time.Minute)) || !second.EndAt.Equal(startAt.Add(time.Hour)) {
		t.Errorf("unexpected second block bounds: %v - %v", second.StartAt, second.EndAt)
	}
	if first.IsBooked || second.IsBooked {
		t.Error("new blocks must start unbooked")
	}
}

func TestCreateAvailabilityRejectsMisalignedStart(t *testing.T) {
	svc, _, doctorID := newAvailabilityTestService(t)

	startAt := time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), domain.CreateAvailabilityDTO{
		DoctorID: doctorID,
		StartAt:  startAt,
		EndAt:    startAt.Add(time.Hour),
	})
	if !errors.Is(err, domain.ErrInvalidAlignment) {
		t.Fatalf("expected ErrInvalidAlignment, got %v", err)
	}
}

func TestCreateAvailabilityRejectsPartialBlockDuration(t *testing.T) {
	svc, _, doctorID := newAvailabilityTestService(t)

	startAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), domain.CreateAvailabilityDTO{
		DoctorID: doctorID,
		StartAt:  startAt,
		EndAt:    startAt.Add(45 * time.Minute),
	})
	if !errors.Is(err, domain.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestCreateAvailabilityRejectsOverlap(t *testing.T) {
	svc, _, doctorID := newAvailabilityTestService(t)
	ctx := context.Background()

	startAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	if _, err := svc.Create(ctx, domain.CreateAvailabilityDTO{
		DoctorID: doctorID,
		StartAt:  startAt,
		EndAt:    startAt.Add(2 * time.Hour),
	}); err != nil {
		t.Fatalf("first Create returned error: %v", err)
	}

	// 10:00-12:00 intersects the 09:00-11:00 window.
	_, err := svc.Create(ctx, domain.CreateAvailabilityDTO{
		DoctorID: doctorID,
		StartAt:  startAt.Add(time.Hour),
		EndAt:    startAt.Add(3 * time.Hour),
	})
	if !errors.Is(err, domain.ErrOverlapConflict) {
		t.Fatalf("expected ErrOverlapConflict, got %v", err)
	}
}

func TestCreateAvailabilityAllowsAdjacentWindows(t *testing.T) {
	svc, _, doctorID := newAvailabilityTestService(t)
	ctx := context.Background()

	startAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	if _, err := svc.Create(ctx, domain.CreateAvailabilityDTO{
		DoctorID: doctorID,
		StartAt:  startAt,
		EndAt:    startAt.Add(time.Hour),
	}); err != nil {
		t.Fatalf("first Create returned error: %v", err)
	}

	// [09:00,10:00) and [10:00,11:00) share only the boundary instant.
	if _, err := svc.Create(ctx, domain.CreateAvailabilityDTO{
		DoctorID: doctorID,
		StartAt:  startAt.Add(time.Hour),
		EndAt:    startAt.Add(2 * time.Hour),
	}); err != nil {
		t.Fatalf("adjacent window rejected: %v", err)
	}
}

func TestCreateAvailabilityRequiresDoctor(t *testing.T) {
	svc, _, _ := newAvailabilityTestService(t)

	startAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), domain.CreateAvailabilityDTO{
		DoctorID: 999,
		StartAt:  startAt,
		EndAt:    startAt.Add(time.Hour),
	})
	if !errors.Is(err, domain.ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestUpdateAvailabilityRejectedWhenBooked(t *testing.T) {
	svc, repo, doctorID := newAvailabilityTestService(t)
	ctx := context.Background()

	startAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	window, err := svc.Create(ctx, domain.CreateAvailabilityDTO{
		DoctorID: doctorID,
		StartAt:  startAt,
		EndAt:    startAt.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	repo.blocks[window.Blocks[0].ID].IsBooked = true

	newEnd := startAt.Add(2 * time.Hour)
	_, err = svc.Update(ctx, window.ID, domain.UpdateAvailabilityDTO{EndAt: &newEnd})
	if !errors.Is(err, domain.ErrWindowHasBookings) {
		t.Fatalf("expected ErrWindowHasBookings, got %v", err)
	}
}

func TestUpdateAvailabilityRepartitionsBlocks(t *testing.T) {
	svc, _, doctorID := newAvailabilityTestService(t)
	ctx := context.Background()

	startAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	window, err := svc.Create(ctx, domain.CreateAvailabilityDTO{
		DoctorID: doctorID,
		StartAt:  startAt,
		EndAt:    startAt.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	newEnd := startAt.Add(2 * time.Hour)
	updated, err := svc.Update(ctx, window.ID, domain.UpdateAvailabilityDTO{EndAt: &newEnd})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if len(updated.Blocks) != 4 {
		t.Fatalf("expected 4 blocks after extending to 2 hours, got %d", len(updated.Blocks))
	}
}

func TestDeleteUnbookedKeepsBookedBlocks(t *testing.T) {
	svc, repo, doctorID := newAvailabilityTestService(t)
	ctx := context.Background()

	startAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	window, err := svc.Create(ctx, domain.CreateAvailabilityDTO{
		DoctorID: doctorID,
		StartAt:  startAt,
		EndAt:    startAt.Add(90 * time.Minute),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	repo.blocks[window.Blocks[1].ID].IsBooked = true

	result, err := svc.DeleteUnbooked(ctx, window.ID)
	if err != nil {
		t.Fatalf("DeleteUnbooked returned error: %v", err)
	}
	if result.Removed != 2 {
		t.Errorf("expected 2 removed blocks, got %d", result.Removed)
	}
	if result.Window == nil {
		t.Fatal("window must survive while a booked block remains")
	}
	if len(result.Window.Blocks) != 1 || !result.Window.Blocks[0].IsBooked {
		t.Errorf("expected the single booked block to remain, got %+v", result.Window.Blocks)
	}
}

func TestDeleteUnbookedRemovesEmptyWindow(t *testing.T) {
	svc, repo, doctorID := newAvailabilityTestService(t)
	ctx := context.Background()

	startAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	window, err := svc.Create(ctx, domain.CreateAvailabilityDTO{
		DoctorID: doctorID,
		StartAt:  startAt,
		EndAt:    startAt.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	result, err := svc.DeleteUnbooked(ctx, window.ID)
	if err != nil {
		t.Fatalf("DeleteUnbooked returned error: %v", err)
	}
	if result.Window != nil {
		t.Error("fully unbooked window should be deleted with its blocks")
	}
	if _, ok := repo.windows[window.ID]; ok {
		t.Error("window still present after DeleteUnbooked")
	}
}

func TestDeleteBlockRejectsBooked(t *testing.T) {
	svc, repo, doctorID := newAvailabilityTestService(t)
	ctx := context.Background()

	startAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	window, err := svc.Create(ctx, domain.CreateAvailabilityDTO{
		DoctorID: doctorID,
		StartAt:  startAt,
		EndAt:    startAt.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	repo.blocks[window.Blocks[0].ID].IsBooked = true

	if err := svc.DeleteBlock(ctx, window.Blocks[0].ID); !errors.Is(err, domain.ErrBlockNotFound) {
		t.Fatalf("expected ErrBlockNotFound for a booked block, got %v", err)
	}
	if err := svc.DeleteBlock(ctx, window.Blocks[1].ID); err != nil {
		t.Fatalf("deleting a free block failed: %v", err)
	}
}

func TestAvailableBlocksExcludesPastAndBooked(t *testing.T) {
	svc, repo, doctorID := newAvailabilityTestService(t)
	ctx := context.Background()

	// The window straddles "now": blocks at 07:00 and 07:30 are in the past.
	startAt := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)
	window, err := svc.Create(ctx, domain.CreateAvailabilityDTO{
		DoctorID: doctorID,
		StartAt:  startAt,
		EndAt:    startAt.Add(3 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	repo.blocks[window.Blocks[2].ID].IsBooked = true // 08:00

	blocks, err := svc.AvailableBlocks(ctx, doctorID, startAt, startAt.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("AvailableBlocks returned error: %v", err)
	}

	// 08:30, 09:00, 09:30 remain.
	if len(blocks) != 3 {
		t.Fatalf("expected 3 available blocks, got %d", len(blocks))
	}
	for _, block := range blocks {
		if block.StartAt.Before(svc.now()) {
			t.Errorf("past block %v offered as available", block.StartAt)
		}
		if block.IsBooked {
			t.Errorf("booked block %v offered as available", block.StartAt)
		}
	}
}

func TestAvailableBlocksExcludesBlockStartingNow(t *testing.T) {
	svc, _, doctorID := newAvailabilityTestService(t)
	ctx := context.Background()

	// The first block starts exactly at the injected now (08:00). It is not
	// bookable, so it must not be listed either.
	startAt := svc.now()
	if _, err := svc.Create(ctx, domain.CreateAvailabilityDTO{
		DoctorID: doctorID,
		StartAt:  startAt,
		EndAt:    startAt.Add(time.Hour),
	}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	blocks, err := svc.AvailableBlocks(ctx, doctorID, startAt, startAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("AvailableBlocks returned error: %v", err)
	}

	if len(blocks) != 1 {
		t.Fatalf("expected only the 08:30 block, got %d blocks", len(blocks))
	}
	if !blocks[0].StartAt.Equal(startAt.Add(30 * time.Minute)) {
		t.Errorf("remaining block starts at %v, want %v", blocks[0].StartAt, startAt.Add(30*time.Minute))
	}
}

func TestAvailableBlockCountsGroupsByDay(t *testing.T) {
	svc, _, doctorID := newAvailabilityTestService(t)
	ctx := context.Background()

	day1 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 3, 14, 0, 0, 0, time.UTC)
	for _, window := range []struct {
		start time.Time
		dur   time.Duration
	}{
		{day1, time.Hour},        // 2 blocks on March 2
		{day2, 90 * time.Minute}, // 3 blocks on March 3
	} {
		if _, err := svc.Create(ctx, domain.CreateAvailabilityDTO{
			DoctorID: doctorID,
			StartAt:  window.start,
			EndAt:    window.start.Add(window.dur),
		}); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	counts, err := svc.AvailableBlockCounts(ctx, doctorID, day1, day2.Add(24*time.Hour), "")
	if err != nil {
		t.Fatalf("AvailableBlockCounts returned error: %v", err)
	}

	if len(counts) != 2 {
		t.Fatalf("expected counts for 2 days, got %d: %v", len(counts), counts)
	}
	if counts["2026-03-02"] != 2 {
		t.Errorf("counts[2026-03-02] = %d, want 2", counts["2026-03-02"])
	}
	if counts["2026-03-03"] != 3 {
		t.Errorf("counts[2026-03-03] = %d, want 3", counts["2026-03-03"])
	}
}

func TestCalendarMonthBucketsBlocks(t *testing.T) {
	svc, _, doctorID := newAvailabilityTestService(t)
	ctx := context.Background()

	startAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	if _, err := svc.Create(ctx, domain.CreateAvailabilityDTO{
		DoctorID: doctorID,
		StartAt:  startAt,
		EndAt:    startAt.Add(time.Hour),
	}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	days, err := svc.CalendarMonth(ctx, doctorID, 2026, time.March, "")
	if err != nil {
		t.Fatalf("CalendarMonth returned error: %v", err)
	}
	if len(days) != 42 {
		t.Fatalf("expected a 42-cell grid, got %d", len(days))
	}

	// March 2026 starts on a Sunday; a Monday-start grid leads with Feb 23.
	if got := days[0].Date.Format("2006-01-02"); got != "2026-02-23" {
		t.Errorf("grid starts at %s, want 2026-02-23", got)
	}

	found := false
	for _, day := range days {
		if day.Date.Format("2006-01-02") == "2026-03-10" {
			found = true
			if len(day.Items) != 2 {
				t.Errorf("expected 2 blocks on March 10, got %d", len(day.Items))
			}
			if !day.IsCurrentMonth {
				t.Error("March 10 must be marked in-month")
			}
		} else if len(day.Items) != 0 {
			t.Errorf("unexpected blocks on %s", day.Date.Format("2006-01-02"))
		}
	}
	if !found {
		t.Fatal("March 10 missing from the grid")
	}
}
