package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type slotKey struct {
	classroomID string
	date        string
	hour        int
}

func slotKeyFor(booking Booking) slotKey {
	return slotKey{
		classroomID: booking.ClassroomID,
		date:        booking.Date.Format(DateLayout),
		hour:        booking.Hour,
	}
}

// Memory is the in-process Store implementation. A single mutex serializes
// every operation, so a cascade or a series insert is observed either not at
// all or in full.
type Memory struct {
	mu           sync.RWMutex
	users        map[string]User
	classrooms   map[string]Classroom
	blockedSlots map[string]BlockedSlot
	bookings     map[string]Booking
	series       map[string]BookingSeries
	slotIndex    map[slotKey]string
	seriesIndex  map[string]map[string]struct{}
	settings     AppSettings
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:        make(map[string]User),
		classrooms:   make(map[string]Classroom),
		blockedSlots: make(map[string]BlockedSlot),
		bookings:     make(map[string]Booking),
		series:       make(map[string]BookingSeries),
		slotIndex:    make(map[slotKey]string),
		seriesIndex:  make(map[string]map[string]struct{}),
	}
}

var _ Store = (*Memory)(nil)

// CreateUser stores a new user. The caller is responsible for assigning a
// fresh id.
func (m *Memory) CreateUser(_ context.Context, user User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return user, nil
}

func (m *Memory) GetUser(_ context.Context, id string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (m *Memory) ListUsers(_ context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]User, 0, len(m.users))
	for _, user := range m.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool {
		if strings.EqualFold(out[i].Name, out[j].Name) {
			return out[i].ID < out[j].ID
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// DeleteUser removes the user together with their bookings and series.
func (m *Memory) DeleteUser(_ context.Context, id string) (CascadeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return CascadeResult{}, ErrNotFound
	}
	delete(m.users, id)

	result := CascadeResult{}
	for _, series := range m.series {
		if series.TeacherID == id {
			result.Series = append(result.Series, series)
		}
	}
	sortSeries(result.Series)
	for _, series := range result.Series {
		result.Bookings += m.removeSeriesLocked(series.ID)
	}
	for bookingID, booking := range m.bookings {
		if booking.TeacherID == id {
			m.removeBookingLocked(bookingID)
			result.Bookings++
		}
	}

	return result, nil
}

func (m *Memory) CreateClassroom(_ context.Context, classroom Classroom) (Classroom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	classroom.Equipment = cloneStrings(classroom.Equipment)
	m.classrooms[classroom.ID] = classroom
	return cloneClassroom(classroom), nil
}

func (m *Memory) UpdateClassroom(_ context.Context, classroom Classroom) (Classroom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classrooms[classroom.ID]; !ok {
		return Classroom{}, ErrNotFound
	}
	classroom.Equipment = cloneStrings(classroom.Equipment)
	m.classrooms[classroom.ID] = classroom
	return cloneClassroom(classroom), nil
}

func (m *Memory) GetClassroom(_ context.Context, id string) (Classroom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	classroom, ok := m.classrooms[id]
	if !ok {
		return Classroom{}, ErrNotFound
	}
	return cloneClassroom(classroom), nil
}

func (m *Memory) ListClassrooms(_ context.Context) ([]Classroom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Classroom, 0, len(m.classrooms))
	for _, classroom := range m.classrooms {
		out = append(out, cloneClassroom(classroom))
	}
	sort.Slice(out, func(i, j int) bool {
		if strings.EqualFold(out[i].Name, out[j].Name) {
			return out[i].ID < out[j].ID
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// DeleteClassroom removes the classroom and every dependent entity.
func (m *Memory) DeleteClassroom(_ context.Context, id string) (CascadeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.classrooms[id]; !ok {
		return CascadeResult{}, ErrNotFound
	}
	delete(m.classrooms, id)

	result := CascadeResult{}
	for slotID, slot := range m.blockedSlots {
		if slot.ClassroomID == id {
			delete(m.blockedSlots, slotID)
			result.BlockedSlots++
		}
	}
	for _, series := range m.series {
		if series.ClassroomID == id {
			result.Series = append(result.Series, series)
		}
	}
	sortSeries(result.Series)
	for _, series := range result.Series {
		result.Bookings += m.removeSeriesLocked(series.ID)
	}
	for bookingID, booking := range m.bookings {
		if booking.ClassroomID == id {
			m.removeBookingLocked(bookingID)
			result.Bookings++
		}
	}

	return result, nil
}

func (m *Memory) ReplaceClassrooms(_ context.Context, classrooms []Classroom) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	replacement := make(map[string]Classroom, len(classrooms))
	for _, classroom := range classrooms {
		classroom.Equipment = cloneStrings(classroom.Equipment)
		replacement[classroom.ID] = classroom
	}
	m.classrooms = replacement
	return nil
}

func (m *Memory) CreateBlockedSlot(_ context.Context, slot BlockedSlot) (BlockedSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockedSlots[slot.ID] = slot
	return slot, nil
}

func (m *Memory) ListBlockedSlots(_ context.Context, classroomID string) ([]BlockedSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]BlockedSlot, 0, len(m.blockedSlots))
	for _, slot := range m.blockedSlots {
		if classroomID != "" && slot.ClassroomID != classroomID {
			continue
		}
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		if out[i].Hour != out[j].Hour {
			return out[i].Hour < out[j].Hour
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// CreateBooking inserts a booking, rejecting it with ErrSlotTaken when the
// (classroom, date, hour) slot is already occupied.
func (m *Memory) CreateBooking(_ context.Context, booking Booking) (Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := slotKeyFor(booking)
	if _, taken := m.slotIndex[key]; taken {
		return Booking{}, ErrSlotTaken
	}
	m.insertBookingLocked(booking, key)
	return booking, nil
}

func (m *Memory) GetBooking(_ context.Context, id string) (Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	booking, ok := m.bookings[id]
	if !ok {
		return Booking{}, ErrNotFound
	}
	return booking, nil
}

func (m *Memory) ListBookings(_ context.Context, filter BookingFilter) ([]Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Booking, 0, len(m.bookings))
	for _, booking := range m.bookings {
		if !matchBooking(booking, filter) {
			continue
		}
		out = append(out, booking)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].Hour != out[j].Hour {
			return out[i].Hour < out[j].Hour
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) DeleteBooking(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return ErrNotFound
	}
	m.removeBookingLocked(id)
	return nil
}

// CreateSeries inserts the series and its bookings all-or-nothing. When any
// booking collides with an occupied slot nothing is written and the returned
// *SlotConflictError lists every colliding date.
func (m *Memory) CreateSeries(_ context.Context, series BookingSeries, bookings []Booking) (BookingSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var conflicts []time.Time
	for _, booking := range bookings {
		if _, taken := m.slotIndex[slotKeyFor(booking)]; taken {
			conflicts = append(conflicts, booking.Date)
		}
	}
	if len(conflicts) > 0 {
		return BookingSeries{}, &SlotConflictError{Dates: conflicts}
	}

	m.series[series.ID] = series
	for _, booking := range bookings {
		booking.SeriesID = series.ID
		m.insertBookingLocked(booking, slotKeyFor(booking))
	}
	return series, nil
}

func (m *Memory) GetSeries(_ context.Context, id string) (BookingSeries, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	series, ok := m.series[id]
	if !ok {
		return BookingSeries{}, ErrNotFound
	}
	return series, nil
}

func (m *Memory) ListSeries(_ context.Context, filter SeriesFilter) ([]BookingSeries, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]BookingSeries, 0, len(m.series))
	for _, series := range m.series {
		if filter.ClassroomID != "" && series.ClassroomID != filter.ClassroomID {
			continue
		}
		if filter.TeacherID != "" && series.TeacherID != filter.TeacherID {
			continue
		}
		out = append(out, series)
	}
	sortSeries(out)
	return out, nil
}

func (m *Memory) DeleteSeries(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.series[id]; !ok {
		return ErrNotFound
	}
	m.removeSeriesLocked(id)
	return nil
}

func (m *Memory) GetSettings(_ context.Context) (AppSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneSettings(m.settings), nil
}

func (m *Memory) PutSettings(_ context.Context, settings AppSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = cloneSettings(settings)
	return nil
}

// Reset clears bookings, blocked slots, and series in one step.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = make(map[string]Booking)
	m.blockedSlots = make(map[string]BlockedSlot)
	m.series = make(map[string]BookingSeries)
	m.slotIndex = make(map[slotKey]string)
	m.seriesIndex = make(map[string]map[string]struct{})
	return nil
}

func (m *Memory) insertBookingLocked(booking Booking, key slotKey) {
	m.bookings[booking.ID] = booking
	m.slotIndex[key] = booking.ID
	if booking.SeriesID != "" {
		ids, ok := m.seriesIndex[booking.SeriesID]
		if !ok {
			ids = make(map[string]struct{})
			m.seriesIndex[booking.SeriesID] = ids
		}
		ids[booking.ID] = struct{}{}
	}
}

func (m *Memory) removeBookingLocked(id string) {
	booking, ok := m.bookings[id]
	if !ok {
		return
	}
	delete(m.bookings, id)
	delete(m.slotIndex, slotKeyFor(booking))
	if booking.SeriesID != "" {
		if ids, ok := m.seriesIndex[booking.SeriesID]; ok {
			delete(ids, id)
			if len(ids) == 0 {
				delete(m.seriesIndex, booking.SeriesID)
			}
		}
	}
}

func (m *Memory) removeSeriesLocked(id string) int {
	removed := 0
	for bookingID := range m.seriesIndex[id] {
		booking := m.bookings[bookingID]
		delete(m.bookings, bookingID)
		delete(m.slotIndex, slotKeyFor(booking))
		removed++
	}
	delete(m.seriesIndex, id)
	delete(m.series, id)
	return removed
}

func matchBooking(booking Booking, filter BookingFilter) bool {
	if filter.ClassroomID != "" && booking.ClassroomID != filter.ClassroomID {
		return false
	}
	if filter.TeacherID != "" && booking.TeacherID != filter.TeacherID {
		return false
	}
	if filter.SeriesID != "" && booking.SeriesID != filter.SeriesID {
		return false
	}
	if filter.Date != nil && !booking.Date.Equal(*filter.Date) {
		return false
	}
	return true
}

func sortSeries(series []BookingSeries) {
	sort.Slice(series, func(i, j int) bool {
		if !series[i].StartDate.Equal(series[j].StartDate) {
			return series[i].StartDate.Before(series[j].StartDate)
		}
		return series[i].ID < series[j].ID
	})
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func cloneClassroom(classroom Classroom) Classroom {
	classroom.Equipment = cloneStrings(classroom.Equipment)
	return classroom
}

func cloneSettings(settings AppSettings) AppSettings {
	out := settings
	out.ClassGroups = cloneStrings(settings.ClassGroups)
	out.Subjects = cloneStrings(settings.Subjects)
	if settings.Teachers != nil {
		out.Teachers = make([]TeacherRef, len(settings.Teachers))
		copy(out.Teachers, settings.Teachers)
	}
	return out
}
