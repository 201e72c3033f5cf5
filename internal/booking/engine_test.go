package booking

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/tickethub/internal/logging"
	"github.com/Shivanand-hulikatti/tickethub/internal/model"
)

// memStore keeps tickets, categories and bookings in maps. Each transaction
// works on a copy that replaces the live state only on commit.
type memStore struct {
	mu         sync.Mutex
	tickets    map[int64]model.Ticket
	categories map[int64]int
	bookings   map[int64]model.Booking
	nextID     int64
	failCreate error

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func newMemStore() *memStore {
	return &memStore{
		tickets:    map[int64]model.Ticket{},
		categories: map[int64]int{},
		bookings:   map[int64]model.Booking{},
	}
}

func (s *memStore) addTicket(id, eventID, categoryID int64) {
	s.tickets[id] = model.Ticket{ID: id, EventID: eventID, CategoryID: categoryID, Available: true}
	s.categories[categoryID]++
}

// WithinTx snapshots the state, runs fn without holding the store lock and
// commits the copy afterwards. Overlapping transactions are not isolated
// from each other; the last commit wins, and the overlap is recorded.
func (s *memStore) WithinTx(_ context.Context, fn func(tx Tx) error) error {
	n := s.inFlight.Add(1)
	for m := s.maxInFlight.Load(); n > m && !s.maxInFlight.CompareAndSwap(m, n); m = s.maxInFlight.Load() {
	}
	defer s.inFlight.Add(-1)

	s.mu.Lock()
	tx := &memTx{
		store:      s,
		tickets:    make(map[int64]model.Ticket, len(s.tickets)),
		categories: make(map[int64]int, len(s.categories)),
		bookings:   make(map[int64]model.Booking, len(s.bookings)),
		nextID:     s.nextID,
	}
	for k, v := range s.tickets {
		tx.tickets[k] = v
	}
	for k, v := range s.categories {
		tx.categories[k] = v
	}
	for k, v := range s.bookings {
		tx.bookings[k] = v
	}
	s.mu.Unlock()

	// widen the window in which unserialized callers would interleave
	runtime.Gosched()

	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets, s.categories, s.bookings, s.nextID = tx.tickets, tx.categories, tx.bookings, tx.nextID
	return nil
}

func (s *memStore) available(categoryID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories[categoryID]
}

func (s *memStore) ticket(id int64) model.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickets[id]
}

func (s *memStore) booking(id int64) model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[id]
}

func (s *memStore) activeBookings(ticketID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.bookings {
		if b.TicketID == ticketID && b.Status == model.BookingActive {
			n++
		}
	}
	return n
}

type memTx struct {
	store      *memStore
	tickets    map[int64]model.Ticket
	categories map[int64]int
	bookings   map[int64]model.Booking
	nextID     int64
}

func (tx *memTx) TicketForUpdate(_ context.Context, id int64) (*model.Ticket, error) {
	t, ok := tx.tickets[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &t, nil
}

func (tx *memTx) MarkTicketUnavailable(_ context.Context, id int64) (bool, error) {
	t, ok := tx.tickets[id]
	if !ok || !t.Available {
		return false, nil
	}
	t.Available = false
	tx.tickets[id] = t
	return true, nil
}

func (tx *memTx) RestoreTicket(_ context.Context, id int64) error {
	t := tx.tickets[id]
	t.Available = true
	tx.tickets[id] = t
	return nil
}

func (tx *memTx) RecountCategory(_ context.Context, categoryID int64) error {
	n := 0
	for _, t := range tx.tickets {
		if t.CategoryID == categoryID && t.Available {
			n++
		}
	}
	tx.categories[categoryID] = n
	return nil
}

func (tx *memTx) CreateBooking(_ context.Context, userID, ticketID, eventID int64) (int64, error) {
	if tx.store.failCreate != nil {
		return 0, tx.store.failCreate
	}
	tx.nextID++
	tx.bookings[tx.nextID] = model.Booking{
		ID: tx.nextID, UserID: userID, TicketID: ticketID, EventID: eventID, Status: model.BookingActive,
	}
	return tx.nextID, nil
}

func (tx *memTx) BookingForUpdate(_ context.Context, userID, bookingID int64) (*model.Booking, error) {
	b, ok := tx.bookings[bookingID]
	if !ok || b.UserID != userID {
		return nil, model.ErrNotFound
	}
	return &b, nil
}

func (tx *memTx) MarkBookingCancelled(_ context.Context, userID, bookingID int64) (bool, error) {
	b, ok := tx.bookings[bookingID]
	if !ok || b.UserID != userID || b.Status != model.BookingActive {
		return false, nil
	}
	b.Status = model.BookingCancelled
	tx.bookings[bookingID] = b
	return true, nil
}

func newEngine(t *testing.T) (*Engine, *memStore) {
	t.Helper()
	store := newMemStore()
	store.addTicket(1, 10, 100)
	store.addTicket(2, 10, 100)
	store.addTicket(3, 10, 100)
	store.addTicket(4, 20, 200)
	return NewEngine(store, logging.Discard()), store
}

func TestBook(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()

	id, err := engine.Book(ctx, 7, 1, 10)
	require.NoError(t, err)
	assert.Positive(t, id)

	assert.False(t, store.ticket(1).Available)
	assert.Equal(t, 2, store.available(100))
	assert.Equal(t, model.BookingActive, store.booking(id).Status)
	assert.Equal(t, int64(7), store.booking(id).UserID)
}

func TestBook_Failures(t *testing.T) {
	tests := []struct {
		name     string
		ticketID int64
		eventID  int64
		want     error
	}{
		{"missing ticket", 99, 10, model.ErrNotFound},
		{"ticket of another event", 4, 10, model.ErrNotFound},
		{"already booked", 1, 10, model.ErrTicketBooked},
	}

	engine, store := newEngine(t)
	_, err := engine.Book(context.Background(), 7, 1, 10)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Book(context.Background(), 8, tt.ticketID, tt.eventID)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 2, store.available(100))
	assert.Equal(t, 1, store.available(200))
}

func TestBook_RollsBackOnStorageFailure(t *testing.T) {
	engine, store := newEngine(t)
	store.failCreate = errors.New("connection reset")

	_, err := engine.Book(context.Background(), 7, 2, 10)
	require.Error(t, err)

	assert.True(t, store.ticket(2).Available)
	assert.Equal(t, 3, store.available(100))
}

func TestBook_ConcurrentRequestsForSameTicket(t *testing.T) {
	engine, store := newEngine(t)
	const workers = 64

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		conflicts atomic.Int32
		start     = make(chan struct{})
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			<-start
			_, err := engine.Book(context.Background(), userID, 3, 10)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, model.ErrTicketBooked):
				conflicts.Add(1)
			}
		}(int64(i + 1))
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, succeeded.Load())
	assert.EqualValues(t, workers-1, conflicts.Load())
	assert.Equal(t, 1, store.activeBookings(3))
	assert.Equal(t, 2, store.available(100))
	assert.EqualValues(t, 1, store.maxInFlight.Load(), "transactions overlapped")
}

func TestEngine_SerializesBookAndCancel(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()

	held := make([]int64, 0, 3)
	for _, ticketID := range []int64{1, 2, 3} {
		id, err := engine.Book(ctx, 7, ticketID, 10)
		require.NoError(t, err)
		held = append(held, id)
	}

	var (
		wg     sync.WaitGroup
		booked atomic.Int32
		start  = make(chan struct{})
	)
	for _, id := range held {
		wg.Add(1)
		go func(bookingID int64) {
			defer wg.Done()
			<-start
			assert.NoError(t, engine.Cancel(ctx, 7, bookingID))
		}(id)
	}
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			<-start
			if _, err := engine.Book(ctx, userID, 1+userID%3, 10); err == nil {
				booked.Add(1)
			}
		}(int64(100 + i))
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, store.maxInFlight.Load(), "transactions overlapped")
	active := 0
	for _, ticketID := range []int64{1, 2, 3} {
		n := store.activeBookings(ticketID)
		assert.LessOrEqual(t, n, 1, "ticket %d", ticketID)
		active += n
	}
	assert.Equal(t, 3-active, store.available(100))
	assert.EqualValues(t, active, booked.Load())
}

func TestCancel_RestoresAvailability(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()
	before := store.available(100)

	id, err := engine.Book(ctx, 7, 1, 10)
	require.NoError(t, err)
	require.NoError(t, engine.Cancel(ctx, 7, id))

	assert.True(t, store.ticket(1).Available)
	assert.Equal(t, before, store.available(100))
	assert.Equal(t, model.BookingCancelled, store.booking(id).Status)

	err = engine.Cancel(ctx, 7, id)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, before, store.available(100))

	// the released ticket can be booked again
	_, err = engine.Book(ctx, 8, 1, 10)
	assert.NoError(t, err)
}

func TestCancel_ForeignOrMissingBooking(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()

	id, err := engine.Book(ctx, 7, 1, 10)
	require.NoError(t, err)

	assert.ErrorIs(t, engine.Cancel(ctx, 8, id), model.ErrNotFound)
	assert.ErrorIs(t, engine.Cancel(ctx, 7, 12345), model.ErrNotFound)

	assert.False(t, store.ticket(1).Available)
	assert.Equal(t, model.BookingActive, store.booking(id).Status)
}
