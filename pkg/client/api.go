package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"devconnector/internal/models"
)

const tokenHeader = "x-auth-token"

// APIError is a failed API call. Status is 0 when no response arrived.
type APIError struct {
	Status int
	Msg    string
	Errors []models.FieldError
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return "request failed: " + e.Msg
	}
	return fmt.Sprintf("%d %s", e.Status, e.Msg)
}

// Messages lists the field messages, or the top-level message when the
// server sent none.
func (e *APIError) Messages() []string {
	if len(e.Errors) == 0 {
		return []string{e.Msg}
	}
	out := make([]string, 0, len(e.Errors))
	for _, f := range e.Errors {
		out = append(out, f.Msg)
	}
	return out
}

// API calls the REST endpoints under baseURL, sending the current token in
// the x-auth-token header.
type API struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewAPI creates an API for the server at baseURL, e.g. "http://localhost:5000".
// A nil httpClient uses a client with a 15 second timeout.
func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &API{baseURL: strings.TrimRight(baseURL, "/") + "/api", httpClient: httpClient}
}

// SetToken replaces the session token; "" stops sending the header.
func (a *API) SetToken(token string) {
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
}

func (a *API) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

func (a *API) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return &APIError{Msg: err.Error()}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return &APIError{Msg: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := a.Token(); token != "" {
		req.Header.Set(tokenHeader, token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return &APIError{Msg: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload models.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&payload) == nil {
			apiErr.Msg = payload.Msg
			apiErr.Errors = payload.Errors
		}
		if apiErr.Msg == "" {
			apiErr.Msg = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Status: resp.StatusCode, Msg: "invalid response: " + err.Error()}
	}
	return nil
}

type tokenReply struct {
	Token string `json:"token"`
}

type msgReply struct {
	Msg string `json:"msg"`
}

type textBody struct {
	Text string `json:"text"`
}

// RegisterInput is the POST /api/users body.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileInput is the POST /api/profile body. Skills is comma separated.
// Every field is sent, so an edit that empties a field clears it.
type ProfileInput struct {
	Status         string `json:"status"`
	Skills         string `json:"skills"`
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	GithubUsername string `json:"githubusername"`
	YouTube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	LinkedIn       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

// ExperienceInput is the PUT /api/profile/experience body. Dates are
// YYYY-MM-DD.
type ExperienceInput struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	From        string `json:"from"`
	To          string `json:"to,omitempty"`
	Current     bool   `json:"current"`
	Description string `json:"description,omitempty"`
}

// EducationInput is the PUT /api/profile/education body.
type EducationInput struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to,omitempty"`
	Current      bool   `json:"current"`
	Description  string `json:"description,omitempty"`
}
