package server

import (
	"github.com/gofiber/fiber/v2"
)

// FollowUser handles POST /api/follow/:userId
// @Summary Follow user
// @Tags follow
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User to follow"
// @Success 201 {object} object{message=string,following=models.UserSummary}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /follow/{userId} [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}
	followerID := currentUserID(c)

	target, err := s.followService.Follow(c.UserContext(), followerID, targetID)
	if err != nil {
		return s.respondError(c, err)
	}

	s.notifyNewFollower(c.UserContext(), targetID, currentUser(c))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Successfully followed user",
		"following": target,
	})
}

// UnfollowUser handles DELETE /api/follow/:userId
// @Summary Unfollow user
// @Tags follow
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User to unfollow"
// @Success 200 {object} object{message=string,unfollowed=models.UserSummary}
// @Failure 404 {object} models.ErrorResponse
// @Router /follow/{userId} [delete]
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	targetID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	target, err := s.followService.Unfollow(c.UserContext(), currentUserID(c), targetID)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":    "Successfully unfollowed user",
		"unfollowed": target,
	})
}

// GetFollowers handles GET /api/follow/:userId/followers
// @Summary Followers
// @Tags follow
// @Produce json
// @Param userId path int true "User ID"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset"
// @Success 200 {object} object{userId=int,followers=[]models.UserSummary,count=int}
// @Failure 404 {object} models.ErrorResponse
// @Router /follow/{userId}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultGraphLimit)

	followers, err := s.followService.Followers(c.UserContext(), userID, page.Limit, page.Offset)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"userId":    userID,
		"followers": followers,
		"count":     len(followers),
	})
}

// GetFollowing handles GET /api/follow/:userId/following
// @Summary Following
// @Tags follow
// @Produce json
// @Param userId path int true "User ID"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset"
// @Success 200 {object} object{userId=int,following=[]models.UserSummary,count=int}
// @Failure 404 {object} models.ErrorResponse
// @Router /follow/{userId}/following [get]
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultGraphLimit)

	following, err := s.followService.Following(c.UserContext(), userID, page.Limit, page.Offset)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"userId":    userID,
		"following": following,
		"count":     len(following),
	})
}

// GetFollowStatus handles GET /api/follow/:userId/status
// @Summary Follow status
// @Description Whether the caller follows userId
// @Tags follow
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} object{userId=int,isFollowing=bool}
// @Router /follow/{userId}/status [get]
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	following, err := s.followService.IsFollowing(c.UserContext(), currentUserID(c), userID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"userId":      userID,
		"isFollowing": following,
	})
}

// GetMutualFollowing handles GET /api/follow/:userId/mutual
// @Summary Mutual following
// @Description Up to ten users followed by both the caller and userId
// @Tags follow
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} object{userId=int,mutualFollowers=[]models.UserSummary,count=int}
// @Failure 404 {object} models.ErrorResponse
// @Router /follow/{userId}/mutual [get]
func (s *Server) GetMutualFollowing(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	mutual, err := s.followService.Mutual(c.UserContext(), currentUserID(c), userID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"userId":          userID,
		"mutualFollowers": mutual,
		"count":           len(mutual),
	})
}
