package service

import (
	"context"

	"socialhub/internal/middleware"
	"socialhub/internal/models"
	"socialhub/internal/repository"
	"socialhub/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration and credential checks.
type AuthService struct {
	users  repository.UserRepository
	tokens *middleware.Tokens
	cost   int
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

// Session is the result of a successful login.
type Session struct {
	Token  string
	Claims *middleware.SessionClaims
	User   *models.User
}

func NewAuthService(users repository.UserRepository, tokens *middleware.Tokens) *AuthService {
	return &AuthService{users: users, tokens: tokens, cost: bcrypt.DefaultCost}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = models.NormalizeIdentity(in.Username)
	in.Email = models.NormalizeIdentity(in.Email)
	fullName, err := requireText(in.FullName, "fullName")
	if err != nil {
		return nil, err
	}
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("username, email, password and fullName are required")
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	taken, err := s.users.ExistsByUsername(ctx, in.Username, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewConflictError("username already taken")
	}
	taken, err = s.users.ExistsByEmail(ctx, in.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewConflictError("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
		FullName: fullName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks credentials by username or email and issues a session token.
// Unknown users and wrong passwords get the same error.
func (s *AuthService) Login(ctx context.Context, login, password string) (*Session, error) {
	if login == "" || password == "" {
		return nil, models.NewValidationError("username or email and password are required")
	}
	invalid := models.NewUnauthorizedError("invalid credentials")

	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, invalid
	}

	token, claims, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &Session{Token: token, Claims: claims, User: user}, nil
}

// CurrentUser reloads the user behind a session.
func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}
