// Package service holds the business rules between HTTP handlers and repositories.
package service

import (
	"context"
	"strings"

	"socialnet/internal/auth"
	"socialnet/internal/middleware"
	"socialnet/internal/models"
	"socialnet/internal/observability"
	"socialnet/internal/repository"
	"socialnet/internal/validation"
)

// AuthService registers accounts, checks credentials and resolves bearer tokens.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	hasher   *auth.PasswordHasher
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Bio       string
}

type LoginInput struct {
	// Login is an email address or a username.
	Login    string
	Password string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  *models.User
	Token string
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager, hasher *auth.PasswordHasher) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		hasher:   hasher,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	ctx, span := observability.StartServiceSpan(ctx, "AuthService", "Register")
	result, err := s.register(ctx, in)
	span.End(err)
	return result, err
}

func (s *AuthService) register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateName("firstName", firstName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateName("lastName", lastName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateBio(in.Bio); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	usernameTaken, emailTaken, err := s.userRepo.Taken(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if usernameTaken || emailTaken {
		return nil, models.NewConflictError("User with this email or username already exists")
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  username,
		Email:     email,
		Password:  hashed,
		FirstName: firstName,
		LastName:  lastName,
		Bio:       in.Bio,
		IsActive:  true,
	}
	// The unique indexes still decide when two registrations race past the pre-check.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	observability.SocialEvents.WithLabelValues("user_registered").Inc()
	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	login := strings.TrimSpace(in.Login)
	if login == "" || in.Password == "" {
		return nil, models.NewValidationError("Login and password are required")
	}

	user, err := s.userRepo.GetByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.hasher.CompareDummy(in.Password)
		middleware.AuthFailures.WithLabelValues("unknown_login").Inc()
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if !s.hasher.Compare(user.Password, in.Password) {
		middleware.AuthFailures.WithLabelValues("bad_password").Inc()
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if !user.IsActive {
		middleware.AuthFailures.WithLabelValues("inactive").Inc()
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Authenticate resolves a bearer token to an active user. Bad tokens are
// Unauthorized; tokens for missing or deactivated accounts are Forbidden.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		middleware.AuthFailures.WithLabelValues("invalid_token").Inc()
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			middleware.AuthFailures.WithLabelValues("user_missing").Inc()
			return nil, models.NewForbiddenError("User not found or inactive")
		}
		return nil, err
	}
	if !user.IsActive {
		middleware.AuthFailures.WithLabelValues("inactive").Inc()
		return nil, models.NewForbiddenError("User not found or inactive")
	}
	return user, nil
}
