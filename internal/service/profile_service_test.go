package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"devconnector/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func decodeUpsert(t *testing.T, body string) UpsertProfileInput {
	t.Helper()
	var in UpsertProfileInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	return in
}

func TestProfileService_UpsertCreatesAndNormalizes(t *testing.T) {
	s := newServices(t)
	ada := s.register(t, "Ada", "ada@example.com")

	in := decodeUpsert(t, `{
		"status": "Developer",
		"skills": "js, node , react",
		"website": "http://Ada.dev/",
		"twitter": "twitter.com/ada",
		"githubusername": "ada"
	}`)
	in.UserID = ada.ID

	profile, err := s.profiles.Upsert(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"js", "node", "react"}, profile.Skills)
	assert.Equal(t, "https://ada.dev", profile.Website)
	assert.Equal(t, "https://twitter.com/ada", profile.Social.Twitter)
	assert.Equal(t, "ada", profile.GithubUsername)
	require.NotNil(t, profile.User)
	assert.Equal(t, "Ada", profile.User.Name)
	assert.Equal(t, []models.Experience{}, profile.Experience)
}

func TestProfileService_UpsertIsIdempotent(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	ada := s.register(t, "Ada", "ada@example.com")

	in := decodeUpsert(t, `{"status":"Dev","skills":["go","rust"],"company":"Acme"}`)
	in.UserID = ada.ID

	first, err := s.profiles.Upsert(ctx, in)
	require.NoError(t, err)
	second, err := s.profiles.Upsert(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Skills, second.Skills)
	assert.Equal(t, first.Company, second.Company)

	all, err := s.profiles.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProfileService_UpsertMergesIntoExisting(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	ada := s.register(t, "Ada", "ada@example.com")

	_, err := s.profiles.Upsert(ctx, UpsertProfileInput{
		UserID: ada.ID, Status: "Dev", Skills: []string{"go"},
		Company: strPtr("Acme"), Bio: strPtr("Hello"), YouTube: strPtr("youtube.com/ada"),
	})
	require.NoError(t, err)

	_, err = s.profiles.AddExperience(ctx, ada.ID, ExperienceInput{Title: "Engineer", Company: "Acme", From: "2019-01-01", Current: true})
	require.NoError(t, err)

	updated, err := s.profiles.Upsert(ctx, UpsertProfileInput{
		UserID: ada.ID, Status: "Lead", Skills: []string{"go", "sql"},
		Bio: strPtr(""), Twitter: strPtr("https://twitter.com/ada"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Lead", updated.Status)
	assert.Equal(t, "Acme", updated.Company)
	assert.Empty(t, updated.Bio)
	assert.Equal(t, "https://youtube.com/ada", updated.Social.YouTube)
	assert.Equal(t, "https://twitter.com/ada", updated.Social.Twitter)
	assert.Len(t, updated.Experience, 1)
}

func TestProfileService_UpsertValidation(t *testing.T) {
	s := newServices(t)
	ada := s.register(t, "Ada", "ada@example.com")

	_, err := s.profiles.Upsert(context.Background(), UpsertProfileInput{UserID: ada.ID, Status: "  "})
	assertValidationFields(t, err, "status", "skills")

	_, err = s.profiles.GetMine(context.Background(), ada.ID)
	assertAppError(t, err, models.CodeNotFound, "There is no profile for this user")
}

func newProfile(t *testing.T, s *services, name, email string) *models.User {
	t.Helper()
	user := s.register(t, name, email)
	_, err := s.profiles.Upsert(context.Background(), UpsertProfileInput{UserID: user.ID, Status: "Dev", Skills: []string{"go"}})
	require.NoError(t, err)
	return user
}

func TestProfileService_Experience(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	ada := newProfile(t, s, "Ada", "ada@example.com")

	_, err := s.profiles.AddExperience(ctx, ada.ID, ExperienceInput{Title: "Intern", Company: "Acme", From: "2015-06-01", To: "2016-06-01"})
	require.NoError(t, err)
	profile, err := s.profiles.AddExperience(ctx, ada.ID, ExperienceInput{Title: "Engineer", Company: "Acme", From: "2016-07-01", To: "2020-01-01", Current: true})
	require.NoError(t, err)

	require.Len(t, profile.Experience, 2)
	newest := profile.Experience[0]
	assert.Equal(t, "Engineer", newest.Title)
	assert.True(t, newest.Current)
	assert.Nil(t, newest.To)
	assert.NotEmpty(t, newest.ID)
	require.NotNil(t, profile.Experience[1].To)
	assert.Equal(t, time.Date(2016, 6, 1, 0, 0, 0, 0, time.UTC), *profile.Experience[1].To)

	unchanged, err := s.profiles.RemoveExperience(ctx, ada.ID, "does-not-exist")
	require.NoError(t, err)
	assert.Len(t, unchanged.Experience, 2)

	after, err := s.profiles.RemoveExperience(ctx, ada.ID, newest.ID)
	require.NoError(t, err)
	require.Len(t, after.Experience, 1)
	assert.Equal(t, "Intern", after.Experience[0].Title)

	stored, err := s.profiles.GetMine(ctx, ada.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Experience, 1)
}

func TestProfileService_AddExperienceWithoutFromFails(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	ada := newProfile(t, s, "Ada", "ada@example.com")

	_, err := s.profiles.AddExperience(ctx, ada.ID, ExperienceInput{Title: "Engineer", Company: "Acme"})
	assertValidationFields(t, err, "from")

	profile, err := s.profiles.GetMine(ctx, ada.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.Experience)
}

func TestProfileService_ExperienceDateRules(t *testing.T) {
	s := newServices(t)
	ada := newProfile(t, s, "Ada", "ada@example.com")

	tests := []struct {
		name   string
		in     ExperienceInput
		params []string
	}{
		{"Missing title and company", ExperienceInput{From: "2020-01-01"}, []string{"title", "company"}},
		{"Unparseable from", ExperienceInput{Title: "T", Company: "C", From: "yesterday"}, []string{"from"}},
		{"Unparseable to", ExperienceInput{Title: "T", Company: "C", From: "2020-01-01", To: "soon"}, []string{"to"}},
		{"To before from", ExperienceInput{Title: "T", Company: "C", From: "2020-01-01", To: "2019-01-01"}, []string{"to"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.profiles.AddExperience(context.Background(), ada.ID, tt.in)
			assertValidationFields(t, err, tt.params...)
		})
	}

	profile, err := s.profiles.AddExperience(context.Background(), ada.ID,
		ExperienceInput{Title: "Contractor", Company: "C", From: "2021-03-01", To: "2021-03-01"})
	require.NoError(t, err)
	require.Len(t, profile.Experience, 1)
	require.NotNil(t, profile.Experience[0].To)
	assert.True(t, profile.Experience[0].To.Equal(profile.Experience[0].From))
}

func TestProfileService_AddExperienceWithoutProfile(t *testing.T) {
	s := newServices(t)
	ada := s.register(t, "Ada", "ada@example.com")

	_, err := s.profiles.AddExperience(context.Background(), ada.ID, ExperienceInput{Title: "T", Company: "C", From: "2020-01-01"})
	assertAppError(t, err, models.CodeNotFound, "There is no profile for this user")
}

func TestProfileService_Education(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	ada := newProfile(t, s, "Ada", "ada@example.com")

	_, err := s.profiles.AddEducation(ctx, ada.ID, EducationInput{School: "MIT"})
	assertValidationFields(t, err, "degree", "fieldofstudy", "from")

	profile, err := s.profiles.AddEducation(ctx, ada.ID, EducationInput{
		School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: "2010-09-01T00:00:00Z", To: "2014-06-01",
	})
	require.NoError(t, err)
	require.Len(t, profile.Education, 1)
	edu := profile.Education[0]
	assert.Equal(t, "CS", edu.FieldOfStudy)

	profile, err = s.profiles.RemoveEducation(ctx, ada.ID, "missing")
	require.NoError(t, err)
	assert.Len(t, profile.Education, 1)

	profile, err = s.profiles.RemoveEducation(ctx, ada.ID, edu.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.Education)
}

func TestProfileService_DeleteAccountCascades(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	ada := newProfile(t, s, "Ada", "ada@example.com")
	bob := newProfile(t, s, "Bob", "bob@example.com")

	for _, text := range []string{"one", "two"} {
		_, err := s.posts.Create(ctx, CreatePostInput{UserID: ada.ID, Text: text})
		require.NoError(t, err)
	}
	bobPost, err := s.posts.Create(ctx, CreatePostInput{UserID: bob.ID, Text: "bob's"})
	require.NoError(t, err)

	require.NoError(t, s.profiles.DeleteAccount(ctx, ada.ID))

	_, err = s.profiles.GetByUser(ctx, ada.ID)
	assertAppError(t, err, models.CodeNotFound, "Profile not found")

	adaPosts, err := s.posts.ListByUser(ctx, ada.ID)
	require.NoError(t, err)
	assert.Empty(t, adaPosts)

	_, err = s.auth.CurrentUser(ctx, ada.ID)
	assertAppError(t, err, models.CodeNotFound, "")

	all, err := s.posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, bobPost.ID, all[0].ID)

	_, err = s.profiles.GetByUser(ctx, bob.ID)
	assert.NoError(t, err)
}

func TestProfileService_GithubRepos(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	repos, err := s.profiles.GithubRepos(ctx, "octocat")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"alpha"}]`, string(repos))
	assert.Equal(t, []string{"octocat"}, s.github.calls)

	s.github.err = errors.New("rate limited")
	_, err = s.profiles.GithubRepos(ctx, "octocat")
	assertAppError(t, err, models.CodeNotFound, "No Github profile found")
}
