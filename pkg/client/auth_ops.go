package client

import (
	"context"
	"net/http"
)

// LoadUser fetches the user behind the current token.
func (s *Store) LoadUser(ctx context.Context) error {
	var user User
	if err := s.api.do(ctx, http.MethodGet, "/auth", nil, &user); err != nil {
		s.Dispatch(AuthError{})
		return err
	}
	s.Dispatch(UserLoaded{User: user})
	return nil
}

// Register creates an account and keeps its token. Call LoadUser to fetch
// the user.
func (s *Store) Register(ctx context.Context, in RegisterInput) error {
	var reply tokenReply
	if err := s.api.do(ctx, http.MethodPost, "/users", in, &reply); err != nil {
		s.alertErrors(err)
		s.Dispatch(RegisterFail{})
		return err
	}
	s.Dispatch(RegisterSuccess{Token: reply.Token})
	return nil
}

// Login exchanges credentials for a token.
func (s *Store) Login(ctx context.Context, email, password string) error {
	var reply tokenReply
	body := map[string]string{"email": email, "password": password}
	if err := s.api.do(ctx, http.MethodPost, "/auth", body, &reply); err != nil {
		s.alertErrors(err)
		s.Dispatch(LoginFail{})
		return err
	}
	s.Dispatch(LoginSuccess{Token: reply.Token})
	return nil
}

// Logout forgets the session locally.
func (s *Store) Logout() {
	s.Dispatch(ClearProfile{})
	s.Dispatch(Logout{})
}
