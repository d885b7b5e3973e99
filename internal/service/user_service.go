package service

import (
	"context"
	"strings"

	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/pagination"
	"vidtube/internal/repository"
	"vidtube/internal/storage"
	"vidtube/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo repository.UserRepository
	store    storage.ObjectStore
}

type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	Avatar     models.MediaAsset
	CoverImage models.MediaAsset
}

// UpdateAccountInput carries optional profile changes. Nil fields are left
// untouched.
type UpdateAccountInput struct {
	UserID     uint
	FullName   *string
	Email      *string
	Bio        *string
	Avatar     *models.MediaAsset
	CoverImage *models.MediaAsset
}

func NewUserService(userRepo repository.UserRepository, store storage.ObjectStore) *UserService {
	if store == nil {
		store = storage.NoopStore{}
	}
	return &UserService{userRepo: userRepo, store: store}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := validation.NormalizeUsername(in.Username)
	email := validation.NormalizeEmail(in.Email)
	fullName := strings.TrimSpace(in.FullName)

	var errs validation.Errors
	errs.Add(validation.ValidateUsername(username))
	errs.Add(validation.ValidateEmail(email))
	errs.Add(validation.Required("fullName", fullName, validation.MaxFullNameLength))
	errs.Add(validation.ValidatePassword(in.Password))
	errs.Add(validation.Required("avatar.url", in.Avatar.URL, 0))
	if !errs.Empty() {
		return nil, validationFailed(errs)
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("User with email or username already exists")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("User with email or username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Password:   string(hash),
		Avatar:     in.Avatar,
		CoverImage: in.CoverImage,
	}
	// The unique indexes still catch a concurrent registration.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate resolves identifier as an email when it contains '@' and as
// a username otherwise. Unknown users and bad passwords are indistinguishable.
func (s *UserService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, models.NewValidationError("Username or email and password are required")
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.GetByEmail(ctx, validation.NormalizeEmail(identifier))
	} else {
		user, err = s.userRepo.GetByUsername(ctx, validation.NormalizeUsername(identifier))
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

func (s *UserService) GetCurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *UserService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if oldPassword == "" {
		return models.NewValidationError("Old password is required")
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	user, err := s.userRepo.GetAuthByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return models.NewValidationError("Invalid old password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, string(hash))
}

func (s *UserService) UpdateAccount(ctx context.Context, in UpdateAccountInput) (*models.User, error) {
	var errs validation.Errors
	if in.FullName != nil {
		errs.Add(validation.Required("fullName", *in.FullName, validation.MaxFullNameLength))
	}
	var email string
	if in.Email != nil {
		email = validation.NormalizeEmail(*in.Email)
		errs.Add(validation.ValidateEmail(email))
	}
	if in.Avatar != nil {
		errs.Add(validation.Required("avatar.url", in.Avatar.URL, 0))
	}
	if in.CoverImage != nil {
		errs.Add(validation.Required("coverImage.url", in.CoverImage.URL, 0))
	}
	if !errs.Empty() {
		return nil, validationFailed(errs)
	}

	user, err := s.userRepo.GetAuthByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && email != user.Email {
		existing, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, models.NewConflictError("Email is already in use")
		}
		user.Email = email
	}

	var replaced []models.MediaAsset
	if in.FullName != nil {
		user.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Bio != nil {
		user.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.Avatar != nil {
		if user.Avatar.ExternalID != in.Avatar.ExternalID {
			replaced = append(replaced, user.Avatar)
		}
		user.Avatar = *in.Avatar
	}
	if in.CoverImage != nil {
		if user.CoverImage.ExternalID != in.CoverImage.ExternalID {
			replaced = append(replaced, user.CoverImage)
		}
		user.CoverImage = *in.CoverImage
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	for _, asset := range replaced {
		if err := s.store.Delete(context.WithoutCancel(ctx), asset.ExternalID); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to delete replaced profile image",
				"user_id", user.ID, "external_id", asset.ExternalID, "error", err)
		}
	}
	return user, nil
}

func (s *UserService) WatchHistory(ctx context.Context, userID uint, p pagination.Params) (pagination.Page[models.WatchedVideo], error) {
	return s.userRepo.ListWatchHistory(ctx, userID, p)
}
