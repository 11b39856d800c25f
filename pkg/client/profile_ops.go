package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// GetCurrentProfile loads the signed-in user's profile.
func (s *Store) GetCurrentProfile(ctx context.Context) error {
	var p Profile
	if err := s.api.do(ctx, http.MethodGet, "/profile/me", nil, &p); err != nil {
		s.Dispatch(ProfileError{Err: errorState(err)})
		return err
	}
	s.Dispatch(GetProfile{Profile: p})
	return nil
}

// GetProfiles clears the viewed profile and loads every profile.
func (s *Store) GetProfiles(ctx context.Context) error {
	s.Dispatch(ClearProfile{})

	var profiles []Profile
	if err := s.api.do(ctx, http.MethodGet, "/profile", nil, &profiles); err != nil {
		s.Dispatch(ProfileError{Err: errorState(err)})
		return err
	}
	s.Dispatch(GetProfiles{Profiles: profiles})
	return nil
}

// GetProfileByID loads the profile of userID.
func (s *Store) GetProfileByID(ctx context.Context, userID uint) error {
	var p Profile
	if err := s.api.do(ctx, http.MethodGet, fmt.Sprintf("/profile/user/%d", userID), nil, &p); err != nil {
		s.Dispatch(ProfileError{Err: errorState(err)})
		return err
	}
	s.Dispatch(GetProfile{Profile: p})
	return nil
}

// GetGithubRepos loads username's latest repositories. A failed lookup
// empties the list.
func (s *Store) GetGithubRepos(ctx context.Context, username string) error {
	var repos []Repo
	if err := s.api.do(ctx, http.MethodGet, "/profile/github/"+url.PathEscape(username), nil, &repos); err != nil {
		s.Dispatch(NoRepos{})
		return err
	}
	s.Dispatch(GetRepos{Repos: repos})
	return nil
}

// CreateProfile creates or, with edit set, updates the signed-in user's
// profile.
func (s *Store) CreateProfile(ctx context.Context, in ProfileInput, edit bool) error {
	var p Profile
	if err := s.api.do(ctx, http.MethodPost, "/profile", in, &p); err != nil {
		s.alertErrors(err)
		s.Dispatch(ProfileError{Err: errorState(err)})
		return err
	}
	s.Dispatch(GetProfile{Profile: p})
	if edit {
		s.SetAlert("Profile Updated", AlertSuccess)
	} else {
		s.SetAlert("Profile Created", AlertSuccess)
	}
	return nil
}

func (s *Store) AddExperience(ctx context.Context, in ExperienceInput) error {
	return s.updateProfile(ctx, http.MethodPut, "/profile/experience", in, "Experience Added")
}

func (s *Store) AddEducation(ctx context.Context, in EducationInput) error {
	return s.updateProfile(ctx, http.MethodPut, "/profile/education", in, "Education Added")
}

func (s *Store) DeleteExperience(ctx context.Context, id string) error {
	return s.updateProfile(ctx, http.MethodDelete, "/profile/experience/"+url.PathEscape(id), nil, "Experience Removed")
}

func (s *Store) DeleteEducation(ctx context.Context, id string) error {
	return s.updateProfile(ctx, http.MethodDelete, "/profile/education/"+url.PathEscape(id), nil, "Education Removed")
}

func (s *Store) updateProfile(ctx context.Context, method, path string, in any, success string) error {
	var p Profile
	if err := s.api.do(ctx, method, path, in, &p); err != nil {
		s.alertErrors(err)
		s.Dispatch(ProfileError{Err: errorState(err)})
		return err
	}
	s.Dispatch(UpdateProfile{Profile: p})
	s.SetAlert(success, AlertSuccess)
	return nil
}

// DeleteAccount removes the signed-in user with their profile and posts and
// ends the session.
func (s *Store) DeleteAccount(ctx context.Context) error {
	if err := s.api.do(ctx, http.MethodDelete, "/profile", nil, &msgReply{}); err != nil {
		s.Dispatch(ProfileError{Err: errorState(err)})
		return err
	}
	s.Dispatch(ClearProfile{})
	s.Dispatch(AccountDeleted{})
	s.SetAlert("Your account has been permanently deleted", AlertSuccess)
	return nil
}
