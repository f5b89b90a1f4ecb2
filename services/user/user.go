package user

import (
	"fmt"
	"strings"

	"helpr/models"
	"helpr/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GetUserByID retrieves a user by its unique ID.
func (s *DefaultUserService) GetUserByID(userID string) (*models.User, error) {
	u, err := s.Repo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", userID, err)
	}
	return u, nil
}

// CreateUser inserts a new user profile, minting an ID when none is given.
func (s *DefaultUserService) CreateUser(u *models.User) (*models.User, error) {
	logger := utils.GetLogger()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Email == "" || u.Name == "" {
		return nil, fmt.Errorf("user name and email are required")
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}

	if err := s.Repo.Create(u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	logger.Info("created user", zap.String("userID", u.ID))
	return u, nil
}

// UpdateUser rewrites the user's profile fields.
func (s *DefaultUserService) UpdateUser(u models.User) (*models.User, error) {
	existing, err := s.Repo.GetByID(u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", u.ID, err)
	}

	existing.Name = u.Name
	existing.PhoneNumber = u.PhoneNumber
	if u.Email != "" {
		existing.Email = strings.ToLower(strings.TrimSpace(u.Email))
	}

	if err := s.Repo.Update(existing); err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", u.ID, err)
	}
	return existing, nil
}

// RegisterDevice stores the device's FCM push token for the user.
func (s *DefaultUserService) RegisterDevice(userID, fcmToken string) error {
	if fcmToken == "" {
		return fmt.Errorf("fcm token is required")
	}
	if err := s.Repo.UpdateFCMToken(userID, fcmToken); err != nil {
		return fmt.Errorf("failed to register device for user %s: %w", userID, err)
	}
	return nil
}

// DeleteUser removes the user profile.
func (s *DefaultUserService) DeleteUser(userID string) error {
	if err := s.Repo.Delete(userID); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	return nil
}
