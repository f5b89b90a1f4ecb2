package userRepo

import "helpr/models"

// UserRepository defines methods for customer profile data access.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(id string) (*models.User, error)
	// Create inserts a new user record.
	Create(user *models.User) error
	// Update modifies an existing user record.
	Update(user *models.User) error
	// UpdateFCMToken stores the device push token for the user.
	UpdateFCMToken(id, token string) error
	// Delete removes a user record by its ID.
	Delete(id string) error
}
