package client

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultAlertTimeout is how long an alert stays in State.Alerts.
const DefaultAlertTimeout = 5 * time.Second

// Option configures a Store.
type Option func(*Store)

// WithToken starts the session with a token kept from an earlier login.
func WithToken(token string) Option {
	return func(s *Store) { s.state.Auth.Token = token }
}

// WithAlertTimeout overrides DefaultAlertTimeout.
func WithAlertTimeout(d time.Duration) Option {
	return func(s *Store) { s.alertTimeout = d }
}

// Store holds the session state. Every change goes through Dispatch.
type Store struct {
	api          *API
	alertTimeout time.Duration

	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int
	timers  map[string]*time.Timer
}

func NewStore(api *API, opts ...Option) *Store {
	s := &Store{
		api:          api,
		alertTimeout: DefaultAlertTimeout,
		state:        InitialState(""),
		subs:         make(map[int]func(State)),
		timers:       make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	api.SetToken(s.state.Auth.Token)
	return s
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to receive the state after every dispatch. The
// returned func removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Dispatch applies a, keeps the API token equal to auth.token and notifies
// subscribers outside the lock.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	before := s.state.Auth.Token
	s.state = Reduce(s.state, a)
	next := s.state
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	if ra, ok := a.(RemoveAlert); ok {
		if t := s.timers[ra.ID]; t != nil {
			t.Stop()
			delete(s.timers, ra.ID)
		}
	}
	s.mu.Unlock()

	if next.Auth.Token != before {
		s.api.SetToken(next.Auth.Token)
	}
	for _, fn := range subs {
		fn(next)
	}
}

// SetAlert shows msg until the alert timeout passes and returns its id.
func (s *Store) SetAlert(msg, alertType string) string {
	id := uuid.NewString()
	s.Dispatch(SetAlert{Alert: Alert{ID: id, Msg: msg, Type: alertType}})

	s.mu.Lock()
	s.timers[id] = time.AfterFunc(s.alertTimeout, func() {
		s.Dispatch(RemoveAlert{ID: id})
	})
	s.mu.Unlock()
	return id
}

// Close cancels pending alert expiries.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// alertErrors shows every message of a validation, conflict or
// authorization failure as a danger alert.
func (s *Store) alertErrors(err error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return
	}
	if apiErr.Status != 400 && apiErr.Status != 401 {
		return
	}
	for _, msg := range apiErr.Messages() {
		s.SetAlert(msg, AlertDanger)
	}
}

func errorState(err error) ErrorState {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return ErrorState{Msg: apiErr.Msg, Status: apiErr.Status}
	}
	return ErrorState{Msg: err.Error()}
}
