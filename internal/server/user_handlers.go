package server

import (
	"net/url"

	"socialnet/internal/service"

	"github.com/gofiber/fiber/v2"
)

type updateProfileRequest struct {
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Bio            *string `json:"bio"`
	ProfilePicture string  `json:"profilePicture"`
}

// GetUserProfile handles GET /api/users/:identifier
// @Summary User profile
// @Description Lookup by numeric id or username. Includes follow counts and the ten newest posts.
// @Tags users
// @Produce json
// @Param identifier path string true "User ID or username"
// @Success 200 {object} object{user=models.Profile}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{identifier} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	identifier, err := url.PathUnescape(c.Params("identifier"))
	if err != nil {
		identifier = c.Params("identifier")
	}
	profile, err := s.userService.GetProfile(c.UserContext(), identifier)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": profile})
}

// UpdateProfile handles PUT /api/users/profile
// @Summary Update own profile
// @Description Empty name and picture fields are kept; a present bio replaces the stored one.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body updateProfileRequest true "Changes"
// @Success 200 {object} object{message=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Router /users/profile [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:         currentUserID(c),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// SearchUsers handles GET /api/users/search/:query
// @Summary Search users
// @Description Case-insensitive substring match on username and names
// @Tags users
// @Produce json
// @Param query path string true "Search text"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset"
// @Success 200 {object} object{users=[]models.UserCard}
// @Router /users/search/{query} [get]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	query, err := url.PathUnescape(c.Params("query"))
	if err != nil {
		query = c.Params("query")
	}
	page := parsePagination(c, defaultListLimit)

	users, err := s.userService.SearchUsers(c.UserContext(), query, page.Limit, page.Offset)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// ListUsers handles GET /api/users
// @Summary List users
// @Description Active users, newest first
// @Tags users
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset"
// @Success 200 {object} object{users=[]models.UserCard}
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	page := parsePagination(c, defaultListLimit)
	users, err := s.userService.ListUsers(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}
