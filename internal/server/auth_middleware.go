package server

import (
	"strings"

	"socialnet/internal/middleware"
	"socialnet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired resolves the bearer token to an active user. Missing or bad
// tokens get 401; tokens for deleted or deactivated accounts get 403. On
// success locals "userID" and "user" are set.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" && strings.HasPrefix(c.Path(), "/api/ws") {
			token = c.Query("token")
		}
		if token == "" {
			middleware.AuthFailures.WithLabelValues("missing_token").Inc()
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Access token required"))
		}

		user, err := s.authService.Authenticate(c.UserContext(), token)
		if err != nil {
			return s.respondError(c, err)
		}

		c.Locals("userID", user.ID)
		c.Locals("user", user)
		c.SetUserContext(middleware.WithUserID(c.UserContext(), user.ID))
		return c.Next()
	}
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header.
func bearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// currentUserID returns the id set by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// currentUser returns the user set by AuthRequired.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
