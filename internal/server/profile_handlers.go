package server

import (
	"devconnector/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/profile/me
// @Summary Current user's profile
// @Tags profile
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Router /profile/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.GetMine(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, scopeProfile, err)
	}
	return c.JSON(profile)
}

// UpsertProfile handles POST /api/profile
// @Summary Create or update profile
// @Description Skills may be a list or a comma separated string. URLs are normalized to https.
// @Tags profile
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body service.UpsertProfileInput true "Profile fields"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Router /profile [post]
func (s *Server) UpsertProfile(c *fiber.Ctx) error {
	var in service.UpsertProfileInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.UserID = currentUserID(c)

	profile, err := s.profileService.Upsert(c.UserContext(), in)
	if err != nil {
		return s.respondError(c, scopeProfile, err)
	}
	return c.JSON(profile)
}

// GetProfiles handles GET /api/profile
// @Summary List profiles
// @Tags profile
// @Produce json
// @Success 200 {array} models.Profile
// @Router /profile [get]
func (s *Server) GetProfiles(c *fiber.Ctx) error {
	profiles, err := s.profileService.List(c.UserContext())
	if err != nil {
		return s.respondError(c, scopeProfile, err)
	}
	return c.JSON(profiles)
}

// GetProfileByUser handles GET /api/profile/user/:userId
// @Summary Profile by user id
// @Tags profile
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Router /profile/user/{userId} [get]
func (s *Server) GetProfileByUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId", scopeProfile)
	if err != nil {
		return nil
	}

	profile, err := s.profileService.GetByUser(c.UserContext(), userID)
	if err != nil {
		return s.respondError(c, scopeProfile, err)
	}
	return c.JSON(profile)
}

// DeleteAccount handles DELETE /api/profile. The caller's posts, profile and
// user record are removed together.
// @Summary Delete account
// @Tags profile
// @Security ApiKeyAuth
// @Success 200 {object} object{msg=string}
// @Router /profile [delete]
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if err := s.profileService.DeleteAccount(c.UserContext(), userID); err != nil {
		return s.respondError(c, scopeProfile, err)
	}
	s.publishBroadcastEvent(EventUserRemoved, fiber.Map{"user_id": userID})
	return c.JSON(fiber.Map{"msg": "User deleted"})
}

// AddExperience handles PUT /api/profile/experience
// @Summary Add experience
// @Tags profile
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body service.ExperienceInput true "Experience"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Router /profile/experience [put]
func (s *Server) AddExperience(c *fiber.Ctx) error {
	var in service.ExperienceInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	profile, err := s.profileService.AddExperience(c.UserContext(), currentUserID(c), in)
	if err != nil {
		return s.respondError(c, scopeProfile, err)
	}
	return c.JSON(profile)
}

// RemoveExperience handles DELETE /api/profile/experience/:exp_id
// @Summary Remove experience
// @Tags profile
// @Produce json
// @Security ApiKeyAuth
// @Param exp_id path string true "Experience ID"
// @Success 200 {object} models.Profile
// @Router /profile/experience/{exp_id} [delete]
func (s *Server) RemoveExperience(c *fiber.Ctx) error {
	profile, err := s.profileService.RemoveExperience(c.UserContext(), currentUserID(c), c.Params("exp_id"))
	if err != nil {
		return s.respondError(c, scopeProfile, err)
	}
	return c.JSON(profile)
}

// AddEducation handles PUT /api/profile/education
// @Summary Add education
// @Tags profile
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body service.EducationInput true "Education"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Router /profile/education [put]
func (s *Server) AddEducation(c *fiber.Ctx) error {
	var in service.EducationInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	profile, err := s.profileService.AddEducation(c.UserContext(), currentUserID(c), in)
	if err != nil {
		return s.respondError(c, scopeProfile, err)
	}
	return c.JSON(profile)
}

// RemoveEducation handles DELETE /api/profile/education/:edu_id
// @Summary Remove education
// @Tags profile
// @Produce json
// @Security ApiKeyAuth
// @Param edu_id path string true "Education ID"
// @Success 200 {object} models.Profile
// @Router /profile/education/{edu_id} [delete]
func (s *Server) RemoveEducation(c *fiber.Ctx) error {
	profile, err := s.profileService.RemoveEducation(c.UserContext(), currentUserID(c), c.Params("edu_id"))
	if err != nil {
		return s.respondError(c, scopeProfile, err)
	}
	return c.JSON(profile)
}

// GetGithubRepos handles GET /api/profile/github/:username
// @Summary GitHub repositories
// @Description Five repositories, oldest first, passed through from the GitHub API
// @Tags profile
// @Produce json
// @Param username path string true "GitHub username"
// @Success 200 {array} object
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/github/{username} [get]
func (s *Server) GetGithubRepos(c *fiber.Ctx) error {
	repos, err := s.profileService.GithubRepos(c.UserContext(), c.Params("username"))
	if err != nil {
		return s.respondError(c, scopeDefault, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(repos)
}
