package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/tickethub/internal/model"
)

type fakeUsers struct {
	mu     sync.Mutex
	byID   map[int64]*model.User
	nextID int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[int64]*model.User{}}
}

func (f *fakeUsers) add(u model.User) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	f.byID[u.ID] = &u
	return &u
}

func (f *fakeUsers) find(match func(*model.User) bool) *model.User {
	for _, u := range f.byID {
		if match(u) {
			c := *u
			return &c
		}
	}
	return nil
}

func (f *fakeUsers) LoginExists(_ context.Context, login string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(func(u *model.User) bool { return u.Login == login }) != nil, nil
}

func (f *fakeUsers) EmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(func(u *model.User) bool { return u.Email == email }) != nil, nil
}

func (f *fakeUsers) Create(_ context.Context, login, email, fullName, hash string) (int64, error) {
	u := f.add(model.User{Login: login, Email: email, FullName: fullName, PasswordHash: hash, IsVerified: true})
	return u.ID, nil
}

func (f *fakeUsers) ByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u := f.find(func(u *model.User) bool { return u.ID == id }); u != nil {
		return u, nil
	}
	return nil, model.ErrNotFound
}

func (f *fakeUsers) ByLogin(_ context.Context, login string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u := f.find(func(u *model.User) bool { return u.Login == login }); u != nil {
		return u, nil
	}
	return nil, model.ErrNotFound
}

func (f *fakeUsers) ByLoginAndEmail(_ context.Context, login, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u := f.find(func(u *model.User) bool { return u.Login == login && u.Email == email }); u != nil {
		return u, nil
	}
	return nil, model.ErrNotFound
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return model.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) SetAdminPassword(_ context.Context, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.IsAdmin && u.Login == "admin" {
			u.PasswordHash = hash
			return nil
		}
	}
	return model.ErrNotFound
}

type fakeCode struct {
	id        int64
	email     string
	code      string
	expiresAt time.Time
	used      bool
}

type fakeCodes struct {
	now   func() time.Time
	codes []*fakeCode
}

func (f *fakeCodes) Create(_ context.Context, email, code string, expiresAt time.Time) error {
	f.codes = append(f.codes, &fakeCode{id: int64(len(f.codes) + 1), email: email, code: code, expiresAt: expiresAt})
	return nil
}

func (f *fakeCodes) Find(_ context.Context, email, code string) (int64, error) {
	for i := len(f.codes) - 1; i >= 0; i-- {
		c := f.codes[i]
		if c.email == email && c.code == code && !c.used && c.expiresAt.After(f.now()) {
			return c.id, nil
		}
	}
	return 0, model.ErrInvalidCode
}

func (f *fakeCodes) MarkUsed(_ context.Context, id int64) error {
	for _, c := range f.codes {
		if c.id == id {
			c.used = true
		}
	}
	return nil
}

func (f *fakeCodes) last() *fakeCode {
	if len(f.codes) == 0 {
		return nil
	}
	return f.codes[len(f.codes)-1]
}

type sentMail struct {
	to, subject, body string
}

type recordingMailer struct {
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

// memCache is an in-memory cache.Cache that counts hits.
type memCache struct {
	data map[string][]byte
	hits int
	fail bool
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	if c.fail {
		return false, errors.New("cache down")
	}
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) SetJSON(_ context.Context, key string, v any) error {
	if c.fail {
		return errors.New("cache down")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type fakeCatalog struct {
	genreCalls int
	venues     map[int64]*model.Venue
	events     []model.Event
	lastFilter model.EventFilter
}

func (f *fakeCatalog) Events(_ context.Context, filter model.EventFilter) ([]model.Event, error) {
	f.lastFilter = filter
	return f.events, nil
}

func (f *fakeCatalog) EventByID(_ context.Context, id int64) (*model.Event, error) {
	for _, e := range f.events {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeCatalog) Genres(context.Context) ([]string, error) {
	f.genreCalls++
	return []string{"jazz", "rock"}, nil
}

func (f *fakeCatalog) Cities(context.Context) ([]string, error) {
	return []string{"Kazan"}, nil
}

func (f *fakeCatalog) Venues(_ context.Context, city string) ([]model.Venue, error) {
	var out []model.Venue
	for _, v := range f.venues {
		if city == "" || v.City == city {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeCatalog) VenueByID(_ context.Context, id int64) (*model.Venue, error) {
	if v, ok := f.venues[id]; ok {
		return v, nil
	}
	return nil, model.ErrNotFound
}

func (f *fakeCatalog) VenueCategories(context.Context, int64) ([]model.VenueCategory, error) {
	return nil, nil
}

func (f *fakeCatalog) Categories(context.Context, int64) ([]model.Category, error) {
	return nil, nil
}

func (f *fakeCatalog) AvailableTickets(context.Context, int64, int64) ([]model.Ticket, error) {
	return nil, nil
}

type fakeAdmin struct {
	created   []model.CreateEventRequest
	updated   []model.UpdateEventRequest
	deleted   []int64
	updateErr error
}

func (f *fakeAdmin) CreateEvent(_ context.Context, req model.CreateEventRequest, _ int64) (int64, error) {
	f.created = append(f.created, req)
	return int64(len(f.created)), nil
}

func (f *fakeAdmin) EventForEdit(_ context.Context, id int64) (*model.EventDetails, error) {
	return &model.EventDetails{ID: id}, nil
}

func (f *fakeAdmin) UpdateEvent(_ context.Context, req model.UpdateEventRequest) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, req)
	return nil
}

func (f *fakeAdmin) DeleteEvent(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeBooker struct {
	booked    [][3]int64
	cancelled [][2]int64
}

func (f *fakeBooker) Book(_ context.Context, userID, ticketID, eventID int64) (int64, error) {
	f.booked = append(f.booked, [3]int64{userID, ticketID, eventID})
	return 42, nil
}

func (f *fakeBooker) Cancel(_ context.Context, userID, bookingID int64) error {
	f.cancelled = append(f.cancelled, [2]int64{userID, bookingID})
	return nil
}
