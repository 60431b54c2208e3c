package server

import (
	"socialnet/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Content  string  `json:"content"`
	ImageURL *string `json:"imageUrl"`
}

type updatePostRequest struct {
	Content  string  `json:"content"`
	ImageURL *string `json:"imageUrl"`
}

// GetGlobalFeed handles GET /api/posts
// @Summary Global feed
// @Description Active posts from everyone, newest first, each with up to five recent comments
// @Tags posts
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset"
// @Success 200 {object} object{posts=[]models.Post}
// @Router /posts [get]
func (s *Server) GetGlobalFeed(c *fiber.Ctx) error {
	page := parsePagination(c, defaultListLimit)
	posts, err := s.feedService.GlobalFeed(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetPersonalFeed handles GET /api/posts/feed
// @Summary Personal feed
// @Description Active posts by the caller and the users they follow
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset"
// @Success 200 {object} object{posts=[]models.Post}
// @Failure 401 {object} models.ErrorResponse
// @Router /posts/feed [get]
func (s *Server) GetPersonalFeed(c *fiber.Ctx) error {
	page := parsePagination(c, defaultListLimit)
	posts, err := s.feedService.PersonalFeed(c.UserContext(), currentUserID(c), page.Limit, page.Offset)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetPost handles GET /api/posts/:id
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{post=models.Post}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"post": post})
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createPostRequest true "Post"
// @Success 201 {object} object{message=string,post=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:   currentUserID(c),
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Post created successfully",
		"post":    post,
	})
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update post
// @Description Empty content keeps the text; an empty imageUrl removes the image
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body updatePostRequest true "Changes"
// @Success 200 {object} object{message=string,post=models.Post}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req updatePostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:   currentUserID(c),
		PostID:   id,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Post updated successfully",
		"post":    post,
	})
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: currentUserID(c),
		PostID: id,
	}); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

// LikePost handles POST /api/posts/:id/like
// @Summary Like post
// @Description Increments the like counter. Repeated likes keep counting.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string,likes=int}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	post, err := s.postService.LikePost(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}

	if post.UserID != userID {
		s.notifyPostLiked(c.UserContext(), post, currentUser(c))
	}

	return c.JSON(fiber.Map{
		"message": "Post liked",
		"likes":   post.Likes,
	})
}
