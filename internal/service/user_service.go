package service

import (
	"context"
	"strconv"
	"strings"

	"socialnet/internal/models"
	"socialnet/internal/repository"
	"socialnet/internal/validation"
)

// ProfilePostLimit is how many recent posts a profile page carries.
const ProfilePostLimit = 10

type UserService struct {
	userRepo   repository.UserRepository
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
}

// UpdateProfileInput carries profile edits. Empty FirstName, LastName and
// ProfilePicture keep the stored value; a non-nil Bio always replaces it.
type UpdateProfileInput struct {
	UserID         uint
	FirstName      string
	LastName       string
	Bio            *string
	ProfilePicture string
}

func NewUserService(userRepo repository.UserRepository, postRepo repository.PostRepository, followRepo repository.FollowRepository) *UserService {
	return &UserService{
		userRepo:   userRepo,
		postRepo:   postRepo,
		followRepo: followRepo,
	}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetActiveUser returns the user if it exists and is active.
func (s *UserService) GetActiveUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewNotFoundMessage("User not found")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, models.NewNotFoundMessage("User not found")
	}
	return user, nil
}

// GetProfile resolves identifier as a numeric id first, then as a username.
func (s *UserService) GetProfile(ctx context.Context, identifier string) (*models.Profile, error) {
	user, err := s.resolveIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	followers, err := s.followRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	postCount, err := s.postRepo.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.ListByUser(ctx, user.ID, ProfilePostLimit)
	if err != nil {
		return nil, err
	}

	return &models.Profile{
		ID:             user.ID,
		Username:       user.Username,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Bio:            user.Bio,
		ProfilePicture: user.ProfilePicture,
		CreatedAt:      user.CreatedAt,
		FollowersCount: followers,
		FollowingCount: following,
		PostCount:      postCount,
		Posts:          posts,
	}, nil
}

func (s *UserService) resolveIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, models.NewNotFoundMessage("User not found")
	}

	if id, err := strconv.ParseUint(identifier, 10, 64); err == nil && id > 0 {
		user, err := s.GetActiveUser(ctx, uint(id))
		if err == nil {
			return user, nil
		}
		if !models.HasCode(err, models.CodeNotFound) {
			return nil, err
		}
	}

	user, err := s.userRepo.GetByUsername(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, models.NewNotFoundMessage("User not found")
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	fields := map[string]interface{}{}

	if name := strings.TrimSpace(in.FirstName); name != "" {
		if err := validation.ValidateName("firstName", name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["first_name"] = name
	}
	if name := strings.TrimSpace(in.LastName); name != "" {
		if err := validation.ValidateName("lastName", name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["last_name"] = name
	}
	if in.Bio != nil {
		if err := validation.ValidateBio(*in.Bio); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["bio"] = *in.Bio
	}
	if pic := strings.TrimSpace(in.ProfilePicture); pic != "" {
		if err := validation.ValidateURL("profilePicture", pic); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["profile_picture"] = pic
	}

	if err := s.userRepo.UpdateFields(ctx, in.UserID, fields); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, in.UserID)
}

func (s *UserService) SearchUsers(ctx context.Context, query string, limit, offset int) ([]models.UserCard, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.userRepo.Search(ctx, query, limit, offset)
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.UserCard, error) {
	return s.userRepo.List(ctx, limit, offset)
}
