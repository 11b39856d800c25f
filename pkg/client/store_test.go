package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"devconnector/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI answers from a route table and records every request.
type fakeAPI struct {
	mu     sync.Mutex
	calls  []string
	tokens []string
	routes map[string]func(w http.ResponseWriter, r *http.Request)
}

func newFakeAPI(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) (*fakeAPI, *API) {
	f := &fakeAPI{routes: routes}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		f.mu.Lock()
		f.calls = append(f.calls, key)
		f.tokens = append(f.tokens, r.Header.Get(tokenHeader))
		f.mu.Unlock()

		h, ok := f.routes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return f, NewAPI(srv.URL, srv.Client())
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) LastToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tokens) == 0 {
		return ""
	}
	return f.tokens[len(f.tokens)-1]
}

func reply(status int, body any) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func alertMsgs(s State) []string {
	out := make([]string, 0, len(s.Alerts))
	for _, a := range s.Alerts {
		out = append(out, a.Msg)
	}
	return out
}

func TestStore_LoginKeepsTokenInSync(t *testing.T) {
	fake, api := newFakeAPI(t, map[string]func(http.ResponseWriter, *http.Request){
		"POST /api/auth": reply(200, map[string]string{"token": "tok-1"}),
		"GET /api/auth":  reply(200, User{ID: 3, Name: "Ada"}),
	})
	store := NewStore(api)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Login(ctx, "ada@example.com", "secret123"))
	assert.Equal(t, "tok-1", store.State().Auth.Token)
	assert.Equal(t, "tok-1", api.Token())

	require.NoError(t, store.LoadUser(ctx))
	assert.Equal(t, "tok-1", fake.LastToken())
	st := store.State()
	assert.True(t, st.Auth.IsAuthenticated)
	assert.Equal(t, "Ada", st.Auth.User.Name)

	store.Logout()
	assert.Empty(t, api.Token())
	assert.False(t, store.State().Auth.IsAuthenticated)
	assert.Equal(t, []string{"POST /api/auth", "GET /api/auth"}, fake.Calls())
}

func TestStore_WithTokenSendsIt(t *testing.T) {
	fake, api := newFakeAPI(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /api/auth": reply(401, models.ErrorResponse{Msg: "Token is not valid"}),
	})
	store := NewStore(api, WithToken("stale"))
	defer store.Close()

	err := store.LoadUser(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
	assert.Equal(t, "stale", fake.LastToken())

	// AUTH_ERROR drops the token.
	assert.Empty(t, store.State().Auth.Token)
	assert.Empty(t, api.Token())
	assert.Empty(t, store.State().Alerts)
}

func TestStore_RegisterFailureRaisesAlerts(t *testing.T) {
	_, api := newFakeAPI(t, map[string]func(http.ResponseWriter, *http.Request){
		"POST /api/users": reply(400, models.ErrorResponse{
			Msg:  "Name is required",
			Code: models.CodeValidation,
			Errors: []models.FieldError{
				{Param: "name", Msg: "Name is required"},
				{Param: "email", Msg: "Please include a valid email"},
			},
		}),
	})
	store := NewStore(api, WithToken("old"), WithAlertTimeout(time.Minute))
	defer store.Close()

	err := store.Register(context.Background(), RegisterInput{})
	require.Error(t, err)

	st := store.State()
	assert.Equal(t, []string{"Name is required", "Please include a valid email"}, alertMsgs(st))
	for _, a := range st.Alerts {
		assert.Equal(t, AlertDanger, a.Type)
		assert.NotEmpty(t, a.ID)
	}
	assert.Empty(t, st.Auth.Token)
}

func TestStore_AlertsExpire(t *testing.T) {
	_, api := newFakeAPI(t, nil)
	store := NewStore(api, WithAlertTimeout(20*time.Millisecond))
	defer store.Close()

	store.SetAlert("Saved", AlertSuccess)
	assert.Len(t, store.State().Alerts, 1)
	assert.Eventually(t, func() bool { return len(store.State().Alerts) == 0 }, time.Second, 5*time.Millisecond)
}

func TestStore_Subscribe(t *testing.T) {
	_, api := newFakeAPI(t, nil)
	store := NewStore(api)
	defer store.Close()

	var seen []int
	unsubscribe := store.Subscribe(func(s State) { seen = append(seen, len(s.Alerts)) })

	store.Dispatch(SetAlert{Alert: Alert{ID: "a"}})
	store.Dispatch(SetAlert{Alert: Alert{ID: "b"}})
	unsubscribe()
	store.Dispatch(RemoveAlert{ID: "a"})

	assert.Equal(t, []int{1, 2}, seen)
}

func TestStore_ProfileErrors(t *testing.T) {
	_, api := newFakeAPI(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /api/profile/me":          reply(400, models.ErrorResponse{Msg: "There is no profile for this user"}),
		"GET /api/profile/github/ghost": reply(404, models.ErrorResponse{Msg: "No Github profile found"}),
	})
	store := NewStore(api)
	defer store.Close()
	ctx := context.Background()

	require.Error(t, store.GetCurrentProfile(ctx))
	st := store.State()
	assert.Equal(t, &ErrorState{Msg: "There is no profile for this user", Status: 400}, st.Profile.Error)
	assert.Empty(t, st.Alerts)

	store.Dispatch(GetRepos{Repos: []Repo{{Name: "old"}}})
	require.Error(t, store.GetGithubRepos(ctx, "ghost"))
	assert.Empty(t, store.State().Profile.Repos)
}

func TestStore_PostConflictBecomesAlert(t *testing.T) {
	_, api := newFakeAPI(t, map[string]func(http.ResponseWriter, *http.Request){
		"PUT /api/posts/like/4": reply(400, models.ErrorResponse{Msg: "Post already liked", Code: models.CodeConflict}),
	})
	store := NewStore(api, WithAlertTimeout(time.Minute))
	defer store.Close()

	require.Error(t, store.AddLike(context.Background(), 4))
	st := store.State()
	assert.Equal(t, []string{"Post already liked"}, alertMsgs(st))
	assert.Equal(t, &ErrorState{Msg: "Post already liked", Status: 400}, st.Post.Error)
}

func TestStore_ServerErrorIsNotAlerted(t *testing.T) {
	_, api := newFakeAPI(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /api/posts": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
	})
	store := NewStore(api)
	defer store.Close()

	require.Error(t, store.GetPosts(context.Background()))
	st := store.State()
	assert.Empty(t, st.Alerts)
	assert.Equal(t, &ErrorState{Msg: "Internal Server Error", Status: 500}, st.Post.Error)
}

func TestStore_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	store := NewStore(NewAPI(srv.URL, nil))
	defer store.Close()

	err := store.GetPost(context.Background(), 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.Status)
	assert.Zero(t, store.State().Post.Error.Status)
}
