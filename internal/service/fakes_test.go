package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"turnoplus/internal/domain"
)

// In-memory repository fakes. The appointment fake reproduces the database's
// compare-and-set semantics under a mutex so concurrency tests exercise the
// same single-winner guarantee the SQL claim provides.

type fakeUserRepo struct {
	users  map[int64]*domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*domain.User), nextID: 1}
}

func (r *fakeUserRepo) addUser(role domain.UserRole) int64 {
	id := r.nextID
	r.nextID++
	r.users[id] = &domain.User{
		ID:       id,
		Email:    "user@example.com",
		FullName: "Test User",
		Role:     role,
		IsActive: true,
	}
	return id
}

func (r *fakeUserRepo) Create(ctx context.Context, dto domain.CreateUserDTO, passwordHash string) (int64, error) {
	id := r.nextID
	r.nextID++
	r.users[id] = &domain.User{
		ID:           id,
		Email:        dto.Email,
		PasswordHash: passwordHash,
		FullName:     dto.FullName,
		Role:         dto.Role,
		IsActive:     true,
	}
	return id, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	user, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	user, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.IsActive = false
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, int, error) {
	var users []domain.User
	for _, user := range r.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		users = append(users, *user)
	}
	return users, len(users), nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int, error) {
	return len(r.users), nil
}

func (r *fakeUserRepo) CountByRole(ctx context.Context, role domain.UserRole, activeOnly bool) (int, error) {
	count := 0
	for _, user := range r.users {
		if user.Role == role && (!activeOnly || user.IsActive) {
			count++
		}
	}
	return count, nil
}

type fakeAvailabilityRepo struct {
	mu           sync.Mutex
	windows      map[int64]*domain.AvailabilityWindow
	blocks       map[int64]*domain.AppointmentBlock
	nextWindowID int64
	nextBlockID  int64
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{
		windows:      make(map[int64]*domain.AvailabilityWindow),
		blocks:       make(map[int64]*domain.AppointmentBlock),
		nextWindowID: 1,
		nextBlockID:  1,
	}
}

func (r *fakeAvailabilityRepo) blocksOf(windowID int64) []domain.AppointmentBlock {
	var out []domain.AppointmentBlock
	for _, block := range r.blocks {
		if block.WindowID == windowID {
			out = append(out, *block)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out
}

func (r *fakeAvailabilityRepo) CreateWindow(ctx context.Context, doctorID int64, startAt, endAt time.Time, blocks []domain.AppointmentBlock) (*domain.AvailabilityWindow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	window := &domain.AvailabilityWindow{
		ID:       r.nextWindowID,
		DoctorID: doctorID,
		StartAt:  startAt,
		EndAt:    endAt,
	}
	r.nextWindowID++
	r.windows[window.ID] = window

	for _, block := range blocks {
		block.ID = r.nextBlockID
		block.WindowID = window.ID
		r.nextBlockID++
		stored := block
		r.blocks[block.ID] = &stored
	}

	result := *window
	result.Blocks = r.blocksOf(window.ID)
	return &result, nil
}

func (r *fakeAvailabilityRepo) GetWindowByID(ctx context.Context, id int64) (*domain.AvailabilityWindow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	window, ok := r.windows[id]
	if !ok {
		return nil, domain.ErrAvailabilityNotFound
	}
	result := *window
	result.Blocks = r.blocksOf(id)
	return &result, nil
}

func (r *fakeAvailabilityRepo) ListWindows(ctx context.Context, filter domain.AvailabilityFilter) ([]domain.AvailabilityWindow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var windows []domain.AvailabilityWindow
	for _, window := range r.windows {
		if window.DoctorID != filter.DoctorID {
			continue
		}
		if filter.From != nil && !window.EndAt.After(*filter.From) {
			continue
		}
		if filter.To != nil && !window.StartAt.Before(*filter.To) {
			continue
		}
		result := *window
		result.Blocks = r.blocksOf(window.ID)
		windows = append(windows, result)
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].StartAt.Before(windows[j].StartAt) })
	return windows, nil
}

func (r *fakeAvailabilityRepo) AnyOverlapping(ctx context.Context, doctorID int64, startAt, endAt time.Time, excludeWindowID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, window := range r.windows {
		if window.DoctorID != doctorID || window.ID == excludeWindowID {
			continue
		}
		if window.Overlaps(startAt, endAt) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAvailabilityRepo) ReplaceWindow(ctx context.Context, window domain.AvailabilityWindow, blocks []domain.AppointmentBlock) (*domain.AvailabilityWindow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.windows[window.ID]
	if !ok {
		return nil, domain.ErrAvailabilityNotFound
	}

	for _, block := range r.blocks {
		if block.WindowID == window.ID && block.IsBooked {
			return nil, domain.ErrWindowHasBookings
		}
	}

	for id, block := range r.blocks {
		if block.WindowID == window.ID {
			delete(r.blocks, id)
		}
	}

	existing.StartAt = window.StartAt
	existing.EndAt = window.EndAt

	for _, block := range blocks {
		block.ID = r.nextBlockID
		block.WindowID = window.ID
		r.nextBlockID++
		stored := block
		r.blocks[block.ID] = &stored
	}

	result := *existing
	result.Blocks = r.blocksOf(window.ID)
	return &result, nil
}

func (r *fakeAvailabilityRepo) DeleteUnbooked(ctx context.Context, windowID int64) (*domain.DeleteUnbookedResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	window, ok := r.windows[windowID]
	if !ok {
		return nil, domain.ErrAvailabilityNotFound
	}

	removed := 0
	remaining := 0
	for id, block := range r.blocks {
		if block.WindowID != windowID {
			continue
		}
		if block.IsBooked {
			remaining++
			continue
		}
		delete(r.blocks, id)
		removed++
	}

	result := &domain.DeleteUnbookedResult{Removed: removed}
	if remaining == 0 {
		delete(r.windows, windowID)
	} else {
		kept := *window
		kept.Blocks = r.blocksOf(windowID)
		result.Window = &kept
	}
	return result, nil
}

func (r *fakeAvailabilityRepo) DeleteBlock(ctx context.Context, blockID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	block, ok := r.blocks[blockID]
	if !ok || block.IsBooked {
		return domain.ErrBlockNotFound
	}
	delete(r.blocks, blockID)
	return nil
}

func (r *fakeAvailabilityRepo) ListAvailableBlocks(ctx context.Context, doctorID int64, from, to, notBefore time.Time) ([]domain.AppointmentBlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var blocks []domain.AppointmentBlock
	for _, block := range r.blocks {
		window, ok := r.windows[block.WindowID]
		if !ok || window.DoctorID != doctorID || block.IsBooked {
			continue
		}
		if block.StartAt.Before(from) || !block.StartAt.Before(to) || !block.StartAt.After(notBefore) {
			continue
		}
		blocks = append(blocks, *block)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].StartAt.Before(blocks[j].StartAt) })
	return blocks, nil
}

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	avail        *fakeAvailabilityRepo
	appointments map[int64]*domain.Appointment
	nextID       int64
}

func newFakeAppointmentRepo(avail *fakeAvailabilityRepo) *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		avail:        avail,
		appointments: make(map[int64]*domain.Appointment),
		nextID:       1,
	}
}

func (r *fakeAppointmentRepo) Book(ctx context.Context, dto domain.CreateAppointmentDTO) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.avail.mu.Lock()
	defer r.avail.mu.Unlock()

	var claimed *domain.AppointmentBlock
	for _, block := range r.avail.blocks {
		window, ok := r.avail.windows[block.WindowID]
		if !ok || window.DoctorID != dto.DoctorID || block.IsBooked {
			continue
		}
		if block.StartAt.Equal(dto.StartAt) && block.EndAt.Equal(dto.EndAt) {
			claimed = block
			break
		}
	}
	if claimed == nil {
		return nil, domain.ErrBlockNotFound
	}
	claimed.IsBooked = true

	appointment := &domain.Appointment{
		ID:        r.nextID,
		DoctorID:  dto.DoctorID,
		PatientID: dto.PatientID,
		BlockID:   claimed.ID,
		StartAt:   dto.StartAt,
		EndAt:     dto.EndAt,
		Status:    domain.AppointmentStatusPending,
		Notes:     dto.Notes,
	}
	r.nextID++
	r.appointments[appointment.ID] = appointment

	result := *appointment
	return &result, nil
}

func (r *fakeAppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appointment, ok := r.appointments[id]
	if !ok {
		return nil, domain.ErrAppointmentNotFound
	}
	result := *appointment
	return &result, nil
}

func (r *fakeAppointmentRepo) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var appointments []domain.Appointment
	for _, appointment := range r.appointments {
		if !matchesFilter(appointment, filter) {
			continue
		}
		appointments = append(appointments, *appointment)
	}
	sort.Slice(appointments, func(i, j int) bool {
		return appointments[i].StartAt.Before(appointments[j].StartAt)
	})
	return appointments, nil
}

func (r *fakeAppointmentRepo) CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error) {
	appointments, err := r.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(appointments), nil
}

func matchesFilter(a *domain.Appointment, filter domain.AppointmentFilter) bool {
	if filter.DoctorID != nil && a.DoctorID != *filter.DoctorID {
		return false
	}
	if filter.PatientID != nil && a.PatientID != *filter.PatientID {
		return false
	}
	if filter.Status != nil && a.Status != *filter.Status {
		return false
	}
	if filter.ExcludeStatus != nil && a.Status == *filter.ExcludeStatus {
		return false
	}
	if filter.StartDate != nil && a.StartAt.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && !a.StartAt.Before(*filter.EndDate) {
		return false
	}
	return true
}

func (r *fakeAppointmentRepo) UpdateStatus(ctx context.Context, id int64, from []domain.AppointmentStatus, to domain.AppointmentStatus, releaseBlock bool) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appointment, ok := r.appointments[id]
	if !ok {
		return nil, domain.ErrAppointmentNotFound
	}

	allowed := false
	for _, status := range from {
		if appointment.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, domain.ErrAppointmentNotFound
	}

	appointment.Status = to
	if releaseBlock {
		r.avail.mu.Lock()
		if block, ok := r.avail.blocks[appointment.BlockID]; ok {
			block.IsBooked = false
		}
		r.avail.mu.Unlock()
	}

	result := *appointment
	return &result, nil
}

func (r *fakeAppointmentRepo) CountInRange(ctx context.Context, from, to time.Time, excludeStatus domain.AppointmentStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, appointment := range r.appointments {
		if appointment.Status == excludeStatus {
			continue
		}
		if appointment.StartAt.Before(from) || !appointment.StartAt.Before(to) {
			continue
		}
		count++
	}
	return count, nil
}
