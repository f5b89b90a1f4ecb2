package user

import (
	userRepo "helpr/database/repository/user"
	"helpr/models"
)

// UserService manages customer profiles. Authentication happens upstream;
// callers arrive here already holding a verified user ID.
type UserService interface {
	GetUserByID(userID string) (*models.User, error)
	CreateUser(u *models.User) (*models.User, error)
	UpdateUser(u models.User) (*models.User, error)
	// RegisterDevice stores the device's FCM push token for the user.
	RegisterDevice(userID, fcmToken string) error
	DeleteUser(userID string) error
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo userRepo.UserRepository
}
