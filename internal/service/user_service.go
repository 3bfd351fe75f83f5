package service

import (
	"context"
	"strings"
	"time"

	"socialhub/internal/featureflags"
	"socialhub/internal/mediastore"
	"socialhub/internal/models"
	"socialhub/internal/observability"
	"socialhub/internal/repository"
	"socialhub/internal/validation"
)

// Profile image slots.
const (
	ImageTypeProfile = "profile"
	ImageTypeCover   = "cover"
)

type UserService struct {
	users repository.UserRepository
	media *Media
	flags featureflags.Checker
}

type UpdateProfileInput struct {
	ActorID   uint
	UserID    uint
	Username  *string
	Email     *string
	FullName  *string
	Bio       *string
	Image     *mediastore.File
	ImageType string
}

func NewUserService(users repository.UserRepository, media *Media, flags featureflags.Checker) *UserService {
	return &UserService{users: users, media: media, flags: flags}
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetProfile(ctx, userID)
}

func (s *UserService) Search(ctx context.Context, query string) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("search query is required")
	}
	return s.users.Search(ctx, query, 50)
}

// UpdateProfile changes profile fields and optionally one image slot. A new
// image is uploaded first and compensated if persisting fails; the replaced
// image is deleted only after the update commits.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	span, ctx := observability.StartCoordinatorSpan(ctx, "UserService", "UpdateProfile")
	defer span.End()

	if err := requireOwner(in.UserID, in.ActorID, "update your own account"); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	updates, err := s.fieldUpdates(ctx, in)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 && in.Image == nil {
		return nil, models.NewValidationError("nothing to update")
	}

	var newID, oldID string
	if in.Image != nil {
		urlColumn, idColumn := "profile_picture", "profile_picture_id"
		oldID = user.ProfilePictureID
		switch in.ImageType {
		case "", ImageTypeProfile:
		case ImageTypeCover:
			urlColumn, idColumn = "cover_picture", "cover_picture_id"
			oldID = user.CoverPictureID
		default:
			return nil, models.NewValidationError("imageType must be profile or cover")
		}

		ids, err := s.media.UploadAll(ctx, "user.update", []mediastore.File{*in.Image})
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		newID = ids[0]
		updates[urlColumn] = s.media.URL(newID)
		updates[idColumn] = newID
	}

	if err := s.users.Update(ctx, in.UserID, updates); err != nil {
		span.SetError(err)
		if newID != "" {
			s.media.Compensate(ctx, "user.update", []string{newID})
		}
		return nil, err
	}
	if oldID != "" && newID != "" {
		s.media.DeleteAll(ctx, DeleteReasonReplaced, "user.update", []string{oldID})
	}
	return s.users.GetByID(ctx, in.UserID)
}

func (s *UserService) fieldUpdates(ctx context.Context, in UpdateProfileInput) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if in.Username != nil {
		username := models.NormalizeIdentity(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		taken, err := s.users.ExistsByUsername(ctx, username, in.UserID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.NewConflictError("username already taken")
		}
		updates["username"] = username
	}
	if in.Email != nil {
		email := models.NormalizeIdentity(*in.Email)
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		taken, err := s.users.ExistsByEmail(ctx, email, in.UserID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.NewConflictError("email already registered")
		}
		updates["email"] = email
	}
	if in.FullName != nil {
		fullName, err := requireText(*in.FullName, "fullName")
		if err != nil {
			return nil, err
		}
		updates["full_name"] = fullName
	}
	if in.Bio != nil {
		updates["bio"] = strings.TrimSpace(*in.Bio)
	}
	return updates, nil
}

// DeleteAccount runs the cascading delete in one transaction, then purges
// every media object the removed records referenced.
func (s *UserService) DeleteAccount(ctx context.Context, actorID, userID uint) (*repository.CascadeResult, error) {
	span, ctx := observability.StartCoordinatorSpan(ctx, "UserService", "DeleteAccount")
	defer span.End()

	if err := requireOwner(userID, actorID, "delete your own account"); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.users.DeleteCascade(ctx, userID)
	observability.CascadeDeleteDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	if purgeEnabled(s.flags, userID) {
		s.media.DeleteAll(ctx, DeleteReasonPurge, "user.delete", result.MediaIDs)
	}
	return result, nil
}
