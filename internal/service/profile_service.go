package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"devconnector/internal/github"
	"devconnector/internal/middleware"
	"devconnector/internal/models"
	"devconnector/internal/observability"
	"devconnector/internal/repository"
	"devconnector/internal/validation"

	"github.com/google/uuid"
)

// RepoLookup fetches a GitHub user's repositories as a raw JSON array.
type RepoLookup interface {
	Repos(ctx context.Context, username string) (json.RawMessage, error)
}

type ProfileService struct {
	store  *repository.Store
	github RepoLookup
	newID  func() string
}

// UpsertProfileInput carries the editable profile fields. Nil pointers leave
// the stored value untouched; URL fields are normalized before saving.
type UpsertProfileInput struct {
	UserID         uint                 `json:"-"`
	Status         string               `json:"status" validate:"required" msg:"Status is required"`
	Skills         validation.SkillList `json:"skills" validate:"min=1" msg:"Skills is required"`
	Company        *string              `json:"company"`
	Website        *string              `json:"website"`
	Location       *string              `json:"location"`
	Bio            *string              `json:"bio"`
	GithubUsername *string              `json:"githubusername"`
	YouTube        *string              `json:"youtube"`
	Twitter        *string              `json:"twitter"`
	Facebook       *string              `json:"facebook"`
	LinkedIn       *string              `json:"linkedin"`
	Instagram      *string              `json:"instagram"`
}

type ExperienceInput struct {
	Title       string `json:"title" validate:"required" msg:"Title is required"`
	Company     string `json:"company" validate:"required" msg:"Company is required"`
	Location    string `json:"location"`
	From        string `json:"from" validate:"required" msg:"From date is required and needs to be from the past"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type EducationInput struct {
	School       string `json:"school" validate:"required" msg:"School is required"`
	Degree       string `json:"degree" validate:"required" msg:"Degree is required"`
	FieldOfStudy string `json:"fieldofstudy" validate:"required" msg:"Field of study is required"`
	From         string `json:"from" validate:"required" msg:"From date is required and needs to be from the past"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

func NewProfileService(store *repository.Store, repos RepoLookup) *ProfileService {
	return &ProfileService{
		store:  store,
		github: repos,
		newID:  uuid.NewString,
	}
}

// GetMine returns the caller's own profile.
func (s *ProfileService) GetMine(ctx context.Context, userID uint) (*models.Profile, error) {
	profile, err := s.store.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return nil, models.NewNotFoundMessage("There is no profile for this user")
		}
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) List(ctx context.Context) ([]models.Profile, error) {
	return s.store.Profiles.List(ctx)
}

func (s *ProfileService) GetByUser(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.store.Profiles.GetByUserID(ctx, userID)
}

// Upsert creates the caller's profile or merges the supplied fields into it.
func (s *ProfileService) Upsert(ctx context.Context, in UpsertProfileInput) (*models.Profile, error) {
	in.Status = strings.TrimSpace(in.Status)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	profile, err := s.store.Profiles.GetByUserID(ctx, in.UserID)
	created := false
	switch {
	case err == nil:
	case models.ErrorCode(err) == models.CodeNotFound:
		profile = &models.Profile{UserID: in.UserID}
		created = true
	default:
		return nil, err
	}

	applyProfileFields(profile, in)
	profile.User = nil
	if err := s.store.Profiles.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	if created {
		observability.ProfileEvents.WithLabelValues("created").Inc()
	} else {
		observability.ProfileEvents.WithLabelValues("updated").Inc()
	}
	return s.store.Profiles.GetByUserID(ctx, in.UserID)
}

func applyProfileFields(p *models.Profile, in UpsertProfileInput) {
	p.Status = in.Status
	p.Skills = []string(in.Skills)

	setText := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	setURL := func(dst *string, v *string) {
		if v != nil {
			*dst = validation.NormalizeURL(*v)
		}
	}

	setText(&p.Company, in.Company)
	setText(&p.Location, in.Location)
	setText(&p.Bio, in.Bio)
	setText(&p.GithubUsername, in.GithubUsername)
	setURL(&p.Website, in.Website)
	setURL(&p.Social.YouTube, in.YouTube)
	setURL(&p.Social.Twitter, in.Twitter)
	setURL(&p.Social.Facebook, in.Facebook)
	setURL(&p.Social.LinkedIn, in.LinkedIn)
	setURL(&p.Social.Instagram, in.Instagram)
}

// DeleteAccount removes the caller's posts, then their profile, then the
// user record, inside one transaction.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID uint) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Posts.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		if err := tx.Profiles.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		return tx.Users.Delete(ctx, userID)
	})
	if err != nil {
		return err
	}
	observability.ProfileEvents.WithLabelValues("deleted").Inc()
	return nil
}

// AddExperience puts a job entry at the front of the caller's experience.
func (s *ProfileService) AddExperience(ctx context.Context, userID uint, in ExperienceInput) (*models.Profile, error) {
	if err := validation.Struct(trimExperience(&in)); err != nil {
		return nil, err
	}
	from, to, err := parseSpan(in.From, in.To, in.Current)
	if err != nil {
		return nil, err
	}

	profile, err := s.GetMine(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry := models.Experience{
		ID:          s.newID(),
		Title:       in.Title,
		Company:     in.Company,
		Location:    in.Location,
		From:        from,
		To:          to,
		Current:     in.Current,
		Description: in.Description,
	}
	profile.Experience = append([]models.Experience{entry}, profile.Experience...)
	return s.save(ctx, profile, "experience_added")
}

// RemoveExperience drops the entry with expID. Unknown ids leave the profile unchanged.
func (s *ProfileService) RemoveExperience(ctx context.Context, userID uint, expID string) (*models.Profile, error) {
	profile, err := s.GetMine(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := make([]models.Experience, 0, len(profile.Experience))
	for _, e := range profile.Experience {
		if e.ID != expID {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(profile.Experience) {
		return profile, nil
	}
	profile.Experience = kept
	return s.save(ctx, profile, "experience_removed")
}

// AddEducation puts a school entry at the front of the caller's education.
func (s *ProfileService) AddEducation(ctx context.Context, userID uint, in EducationInput) (*models.Profile, error) {
	if err := validation.Struct(trimEducation(&in)); err != nil {
		return nil, err
	}
	from, to, err := parseSpan(in.From, in.To, in.Current)
	if err != nil {
		return nil, err
	}

	profile, err := s.GetMine(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry := models.Education{
		ID:           s.newID(),
		School:       in.School,
		Degree:       in.Degree,
		FieldOfStudy: in.FieldOfStudy,
		From:         from,
		To:           to,
		Current:      in.Current,
		Description:  in.Description,
	}
	profile.Education = append([]models.Education{entry}, profile.Education...)
	return s.save(ctx, profile, "education_added")
}

// RemoveEducation drops the entry with eduID. Unknown ids leave the profile unchanged.
func (s *ProfileService) RemoveEducation(ctx context.Context, userID uint, eduID string) (*models.Profile, error) {
	profile, err := s.GetMine(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := make([]models.Education, 0, len(profile.Education))
	for _, e := range profile.Education {
		if e.ID != eduID {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(profile.Education) {
		return profile, nil
	}
	profile.Education = kept
	return s.save(ctx, profile, "education_removed")
}

// GithubRepos returns the newest repositories of username. Every upstream
// failure is reported as the same not-found error.
func (s *ProfileService) GithubRepos(ctx context.Context, username string) (json.RawMessage, error) {
	repos, err := s.github.Repos(ctx, username)
	if err != nil {
		observability.GithubLookups.WithLabelValues("not_found").Inc()
		middleware.Logger.InfoContext(ctx, "github lookup failed",
			slog.String("username", username), slog.String("error", err.Error()))
		return nil, models.NewNotFoundMessage("No Github profile found")
	}
	observability.GithubLookups.WithLabelValues("ok").Inc()
	middleware.Logger.DebugContext(ctx, "github repos fetched",
		slog.String("username", username), slog.Any("repos", github.RepoNames(repos)))
	return repos, nil
}

func (s *ProfileService) save(ctx context.Context, profile *models.Profile, kind string) (*models.Profile, error) {
	owner := profile.User
	profile.User = nil
	if err := s.store.Profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	profile.User = owner
	observability.ProfileEvents.WithLabelValues(kind).Inc()
	return profile, nil
}

func trimExperience(in *ExperienceInput) *ExperienceInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Company = strings.TrimSpace(in.Company)
	in.Location = strings.TrimSpace(in.Location)
	in.From = strings.TrimSpace(in.From)
	in.To = strings.TrimSpace(in.To)
	return in
}

func trimEducation(in *EducationInput) *EducationInput {
	in.School = strings.TrimSpace(in.School)
	in.Degree = strings.TrimSpace(in.Degree)
	in.FieldOfStudy = strings.TrimSpace(in.FieldOfStudy)
	in.From = strings.TrimSpace(in.From)
	in.To = strings.TrimSpace(in.To)
	return in
}

// parseSpan reads the from/to dates of an entry. A current entry has no end
// date, and an end date must not precede the start.
func parseSpan(rawFrom, rawTo string, current bool) (time.Time, *time.Time, error) {
	from, err := validation.ParseDate(rawFrom)
	if err != nil {
		return time.Time{}, nil, models.NewFieldValidationError([]models.FieldError{{Param: "from", Msg: "From date is invalid"}})
	}
	if current || rawTo == "" {
		return from, nil, nil
	}

	to, err := validation.ParseDate(rawTo)
	if err != nil {
		return time.Time{}, nil, models.NewFieldValidationError([]models.FieldError{{Param: "to", Msg: "To date is invalid"}})
	}
	if to.Before(from) {
		return time.Time{}, nil, models.NewFieldValidationError([]models.FieldError{{Param: "to", Msg: "To date cannot be before the from date"}})
	}
	return from, &to, nil
}
