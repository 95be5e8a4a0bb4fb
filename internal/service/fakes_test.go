package service

import (
	"context"
	"sort"
	"time"

	"parkhere/internal/domain/bookings"
	"parkhere/internal/domain/locations"
	"parkhere/internal/domain/paymentsrepo"
	"parkhere/internal/domain/storage"
)

// In-memory stores backing storage.NewContainerWithStores. They mirror the
// SQL semantics the real repositories rely on: the counter clamps, the
// live-interval exclusion backstop, and the completion sweep's slot
// release.

type memLocations struct {
	locs   map[int64]*locations.Location
	slots  map[int64]*locations.Slot
	nextID int64
}

func newMemLocations() *memLocations {
	return &memLocations{
		locs:  make(map[int64]*locations.Location),
		slots: make(map[int64]*locations.Slot),
	}
}

func (m *memLocations) CreateLocation(ctx context.Context, loc *locations.Location) error {
	m.nextID++
	loc.ID = m.nextID
	loc.IsActive = true
	cp := *loc
	m.locs[loc.ID] = &cp
	return nil
}

func (m *memLocations) GetLocation(ctx context.Context, locationID int64) (*locations.Location, error) {
	loc, ok := m.locs[locationID]
	if !ok {
		return nil, locations.ErrNotFound
	}
	cp := *loc
	return &cp, nil
}

func (m *memLocations) ListLocations(ctx context.Context, filter locations.LocationFilter) ([]locations.Location, error) {
	var out []locations.Location
	for _, loc := range m.locs {
		if filter.City != "" && loc.City != filter.City {
			continue
		}
		if filter.AvailableOnly && loc.AvailableSlots == 0 {
			continue
		}
		out = append(out, *loc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memLocations) AddPhotoURL(ctx context.Context, locationID int64, url string) error {
	loc, ok := m.locs[locationID]
	if !ok {
		return locations.ErrNotFound
	}
	loc.PhotoURLs = append(loc.PhotoURLs, url)
	return nil
}

func (m *memLocations) RemovePhotoURL(ctx context.Context, locationID int64, url string) error {
	loc, ok := m.locs[locationID]
	if !ok {
		return locations.ErrNotFound
	}
	kept := loc.PhotoURLs[:0]
	for _, u := range loc.PhotoURLs {
		if u != url {
			kept = append(kept, u)
		}
	}
	loc.PhotoURLs = kept
	return nil
}

func (m *memLocations) GetSlot(ctx context.Context, slotID int64) (*locations.Slot, error) {
	slot, ok := m.slots[slotID]
	if !ok {
		return nil, locations.ErrSlotNotFound
	}
	cp := *slot
	return &cp, nil
}

func (m *memLocations) GetSlotForUpdate(ctx context.Context, slotID int64) (*locations.Slot, error) {
	return m.GetSlot(ctx, slotID)
}

func (m *memLocations) ListSlots(ctx context.Context, locationID int64, filter locations.SlotFilter) ([]locations.Slot, error) {
	var out []locations.Slot
	for _, s := range m.slots {
		if s.LocationID != locationID {
			continue
		}
		if filter.Type != nil && s.Type != *filter.Type {
			continue
		}
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotNumber < out[j].SlotNumber })
	return out, nil
}

func (m *memLocations) CreateSlot(ctx context.Context, slot *locations.Slot) error {
	for _, s := range m.slots {
		if s.LocationID == slot.LocationID && s.SlotNumber == slot.SlotNumber {
			return locations.ErrDuplicateSlotNumber
		}
	}
	m.nextID++
	slot.ID = m.nextID
	cp := *slot
	m.slots[slot.ID] = &cp
	return nil
}

func (m *memLocations) UpdateSlot(ctx context.Context, slot *locations.Slot) error {
	if _, ok := m.slots[slot.ID]; !ok {
		return locations.ErrSlotNotFound
	}
	cp := *slot
	m.slots[slot.ID] = &cp
	return nil
}

func (m *memLocations) DeleteSlot(ctx context.Context, slotID int64) error {
	if _, ok := m.slots[slotID]; !ok {
		return locations.ErrSlotNotFound
	}
	delete(m.slots, slotID)
	return nil
}

func (m *memLocations) SetSlotStatus(ctx context.Context, slotID int64, status string) error {
	slot, ok := m.slots[slotID]
	if !ok {
		return locations.ErrSlotNotFound
	}
	slot.Status = status
	return nil
}

func (m *memLocations) AdjustCounters(ctx context.Context, locationID int64, totalDelta, availableDelta int) error {
	loc, ok := m.locs[locationID]
	if !ok {
		return locations.ErrNotFound
	}
	newTotal := max(0, loc.TotalSlots+totalDelta)
	loc.TotalSlots = newTotal
	loc.AvailableSlots = min(newTotal, max(0, loc.AvailableSlots+availableDelta))
	return nil
}

type memBookings struct {
	items  map[int64]*bookings.Booking
	locs   *memLocations
	nextID int64
}

func newMemBookings(locs *memLocations) *memBookings {
	return &memBookings{items: make(map[int64]*bookings.Booking), locs: locs}
}

func (m *memBookings) overlapsLive(slotID int64, start, end time.Time, excludeID int64) bool {
	for _, b := range m.items {
		if b.SlotID != slotID || b.ID == excludeID || !b.Live() {
			continue
		}
		if start.Before(b.EndTime) && b.StartTime.Before(end) {
			return true
		}
	}
	return false
}

func (m *memBookings) Create(ctx context.Context, b *bookings.Booking) error {
	if b.Live() && m.overlapsLive(b.SlotID, b.StartTime, b.EndTime, 0) {
		return bookings.ErrIntervalTaken
	}
	m.nextID++
	b.ID = m.nextID
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	m.items[b.ID] = &cp
	return nil
}

func (m *memBookings) GetByID(ctx context.Context, bookingID int64) (*bookings.Booking, error) {
	b, ok := m.items[bookingID]
	if !ok {
		return nil, bookings.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBookings) ListByUser(ctx context.Context, userID int64, filter bookings.Filter) ([]bookings.Booking, error) {
	var out []bookings.Booking
	for _, b := range m.items {
		if b.UserID != userID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.Upcoming && !b.Live() {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (m *memBookings) UpdateStatus(ctx context.Context, bookingID int64, status string, actualEnd *time.Time) error {
	b, ok := m.items[bookingID]
	if !ok {
		return bookings.ErrNotFound
	}
	b.Status = status
	if actualEnd != nil {
		b.ActualEndTime = actualEnd
	}
	b.UpdatedAt = time.Now()
	return nil
}

func (m *memBookings) Extend(ctx context.Context, bookingID int64, newEnd time.Time, newAmount float64) error {
	b, ok := m.items[bookingID]
	if !ok {
		return bookings.ErrNotFound
	}
	if m.overlapsLive(b.SlotID, b.StartTime, newEnd, b.ID) {
		return bookings.ErrIntervalTaken
	}
	b.EndTime = newEnd
	b.TotalAmount = newAmount
	b.UpdatedAt = time.Now()
	return nil
}

func (m *memBookings) LiveIntervalsBySlot(ctx context.Context, slotID int64) ([]bookings.Interval, error) {
	var out []bookings.Interval
	for _, b := range m.items {
		if b.SlotID == slotID && b.Live() {
			out = append(out, bookings.Interval{BookingID: b.ID, Start: b.StartTime, End: b.EndTime})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (m *memBookings) CountLiveBySlot(ctx context.Context, slotID int64) (int, error) {
	n := 0
	for _, b := range m.items {
		if b.SlotID == slotID && b.Live() {
			n++
		}
	}
	return n, nil
}

func (m *memBookings) ActivateDue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, b := range m.items {
		if b.Status == bookings.StatusUpcoming && !b.StartTime.After(now) {
			b.Status = bookings.StatusActive
			n++
		}
	}
	return n, nil
}

func (m *memBookings) CompleteDue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, b := range m.items {
		if b.Status != bookings.StatusActive || b.EndTime.After(now) {
			continue
		}
		b.Status = bookings.StatusCompleted
		end := b.EndTime
		b.ActualEndTime = &end
		if slot, ok := m.locs.slots[b.SlotID]; ok {
			slot.Status = locations.StatusAvailable
			_ = m.locs.AdjustCounters(ctx, slot.LocationID, 0, 1)
		}
		n++
	}
	return n, nil
}

type memPayments struct {
	items  map[int64]*paymentsrepo.Payment
	nextID int64
}

func newMemPayments() *memPayments {
	return &memPayments{items: make(map[int64]*paymentsrepo.Payment)}
}

func (m *memPayments) Create(ctx context.Context, p *paymentsrepo.Payment) error {
	for _, other := range m.items {
		if other.TransactionID == p.TransactionID {
			return paymentsrepo.ErrDuplicateTransaction
		}
	}
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memPayments) GetByID(ctx context.Context, paymentID int64) (*paymentsrepo.Payment, error) {
	p, ok := m.items[paymentID]
	if !ok {
		return nil, paymentsrepo.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPayments) GetByTransactionID(ctx context.Context, txnID string) (*paymentsrepo.Payment, error) {
	for _, p := range m.items {
		if p.TransactionID == txnID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, paymentsrepo.ErrNotFound
}

func (m *memPayments) GetCompletedByBooking(ctx context.Context, bookingID int64) (*paymentsrepo.Payment, error) {
	for _, p := range m.items {
		if p.BookingID == bookingID && p.Status == paymentsrepo.StatusCompleted {
			cp := *p
			return &cp, nil
		}
	}
	return nil, paymentsrepo.ErrNotFound
}

func (m *memPayments) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]paymentsrepo.Payment, int, error) {
	var all []paymentsrepo.Payment
	for _, p := range m.items {
		if p.UserID == userID {
			all = append(all, *p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *memPayments) SetStatus(ctx context.Context, paymentID int64, status string) error {
	p, ok := m.items[paymentID]
	if !ok {
		return paymentsrepo.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return nil
}

func (m *memPayments) MarkRefundRequested(ctx context.Context, paymentID int64, reason string) error {
	p, ok := m.items[paymentID]
	if !ok {
		return paymentsrepo.ErrNotFound
	}
	p.Status = paymentsrepo.StatusRefundRequested
	p.RefundReason = &reason
	return nil
}

func (m *memPayments) MarkRefunded(ctx context.Context, paymentID int64, at time.Time) error {
	p, ok := m.items[paymentID]
	if !ok {
		return paymentsrepo.ErrNotFound
	}
	p.Status = paymentsrepo.StatusRefunded
	p.RefundedAt = &at
	return nil
}

type testEnv struct {
	store *storage.Container
	locs  *memLocations
	books *memBookings
	pays  *memPayments
}

func newTestEnv() *testEnv {
	locs := newMemLocations()
	books := newMemBookings(locs)
	pays := newMemPayments()
	return &testEnv{
		store: storage.NewContainerWithStores(nil, locs, books, pays, nil),
		locs:  locs,
		books: books,
		pays:  pays,
	}
}

// seedSlot creates one active location with one available slot and counters
// already consistent (total 1, available 1).
func (e *testEnv) seedSlot(rate float64) (locationID, slotID int64) {
	ctx := context.Background()
	loc := &locations.Location{Name: "Central Park Lot", Address: "12 MG Road", City: "Pune"}
	_ = e.locs.CreateLocation(ctx, loc)
	slot := &locations.Slot{
		LocationID:   loc.ID,
		SlotNumber:   "A1",
		Type:         locations.TypeCar,
		Status:       locations.StatusAvailable,
		PricePerHour: rate,
	}
	_ = e.locs.CreateSlot(ctx, slot)
	_ = e.locs.AdjustCounters(ctx, loc.ID, 1, 1)
	return loc.ID, slot.ID
}
