// Package client is a Go client for the DevConnector API. Store keeps the
// render-ready state of a single-page session and updates it only through
// Reduce.
package client

import "devconnector/internal/models"

type (
	User       = models.User
	Profile    = models.Profile
	Experience = models.Experience
	Education  = models.Education
	Post       = models.Post
	Like       = models.Like
	Comment    = models.Comment
)

// Repo is the subset of a GitHub repository the profile page renders.
type Repo struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	HTMLURL         string `json:"html_url"`
	Description     string `json:"description"`
	StargazersCount int    `json:"stargazers_count"`
	WatchersCount   int    `json:"watchers_count"`
	ForksCount      int    `json:"forks_count"`
}

// ErrorState is the failure recorded on the profile or post slice.
type ErrorState struct {
	Msg    string `json:"msg"`
	Status int    `json:"status"`
}

// Alert types.
const (
	AlertDanger  = "danger"
	AlertSuccess = "success"
)

// Alert is a transient user-facing message.
type Alert struct {
	ID   string `json:"id"`
	Msg  string `json:"msg"`
	Type string `json:"alertType"`
}

type AuthState struct {
	Token           string `json:"token"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	Loading         bool   `json:"loading"`
	User            *User  `json:"user"`
}

type ProfileState struct {
	Profile  *Profile    `json:"profile"`
	Profiles []Profile   `json:"profiles"`
	Repos    []Repo      `json:"repos"`
	Loading  bool        `json:"loading"`
	Error    *ErrorState `json:"error"`
}

type PostState struct {
	Posts   []Post      `json:"posts"`
	Post    *Post       `json:"post"`
	Loading bool        `json:"loading"`
	Error   *ErrorState `json:"error"`
}

// State is the whole client state. Slices are never mutated in place, so a
// State handed to a subscriber stays valid after later dispatches.
type State struct {
	Auth    AuthState    `json:"auth"`
	Profile ProfileState `json:"profile"`
	Post    PostState    `json:"post"`
	Alerts  []Alert      `json:"alert"`
}

// InitialState is the state of a fresh session holding token, which may be
// empty.
func InitialState(token string) State {
	return State{
		Auth:    AuthState{Token: token, Loading: true},
		Profile: ProfileState{Profiles: []Profile{}, Repos: []Repo{}, Loading: true},
		Post:    PostState{Posts: []Post{}, Loading: true},
		Alerts:  []Alert{},
	}
}
