package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/Dias221467/World_Chronicle/internal/apperrors"
	"github.com/Dias221467/World_Chronicle/internal/models"
	"github.com/Dias221467/World_Chronicle/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserService encapsulates the business logic for user accounts.
type UserService struct {
	repo          *repository.UserRepository
	characterRepo *repository.CharacterRepository
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo *repository.UserRepository, characterRepo *repository.CharacterRepository) *UserService {
	return &UserService{
		repo:          repo,
		characterRepo: characterRepo,
	}
}

// RegisterUser registers a new user after hashing their password.
func (s *UserService) RegisterUser(ctx context.Context, user *models.User) (*models.User, error) {
	logrus.Info("Registering new user")

	if user.Email == "" || user.Username == "" || user.HashedPassword == "" {
		logrus.Warn("Missing required fields during registration")
		return nil, apperrors.InvalidInput("username, email and password are required")
	}

	if !emailRegex.MatchString(user.Email) {
		logrus.WithField("email", user.Email).Warn("Invalid email format during registration")
		return nil, apperrors.InvalidInput("invalid email format")
	}

	// Check if the email is already registered
	existingUser, _ := s.repo.GetUserByEmail(ctx, user.Email)
	if existingUser != nil {
		logrus.WithField("email", user.Email).Warn("Email already in use")
		return nil, apperrors.Conflict("email already in use")
	}

	// Hash the user's password.
	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(user.HashedPassword), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, apperrors.Internal("failed to hash password", err)
	}
	user.HashedPassword = string(hashedPwd)
	user.ID = newID()

	createdUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, apperrors.Internal("failed to register user", err)
	}

	logrus.WithField("userID", createdUser.ID).Info("User registered successfully")
	return createdUser, nil
}

// AuthenticateUser verifies credentials and returns the matching user.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperrors.Unauthenticated("invalid email or password")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", email).Warn("Password mismatch during login")
		return nil, apperrors.Unauthenticated("invalid email or password")
	}
	return user, nil
}

// GetProfile returns a user's public details plus the characters they own.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperrors.NotFound("user not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load user", err)
	}

	characters, err := s.characterRepo.ListCharactersByOwner(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Sprintf("failed to list characters for user %s", userID), err)
	}

	return &models.Profile{
		User: models.PublicUser{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
		Characters: characters,
	}, nil
}

// UpdateLastActive stamps the user's last activity time.
func (s *UserService) UpdateLastActive(ctx context.Context, userID string) error {
	return s.repo.UpdateLastActive(ctx, userID)
}
