package handlers

import (
	"net/http"

	"helpr/services/provider"
	"helpr/services/user"
	"helpr/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DeviceHandler struct {
	UserService     user.UserService
	ProviderService provider.ProviderService
}

func NewDeviceHandler(userService user.UserService, providerService provider.ProviderService) *DeviceHandler {
	return &DeviceHandler{UserService: userService, ProviderService: providerService}
}

type registerDeviceInput struct {
	FCMToken   string `json:"fcmToken" binding:"required"`
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName"`
}

// RegisterUserDevice handles PUT /api/users/fcm-token.
func (h *DeviceHandler) RegisterUserDevice(c *gin.Context) {
	userID, ok := requireActorID(c, "userID")
	if !ok {
		return
	}
	h.register(c, utils.RoleUser, userID, func(in registerDeviceInput) error {
		return h.UserService.RegisterDevice(userID, in.FCMToken)
	})
}

// RegisterProviderDevice handles PUT /api/providers/fcm-token.
func (h *DeviceHandler) RegisterProviderDevice(c *gin.Context) {
	providerID, ok := requireActorID(c, "providerID")
	if !ok {
		return
	}
	h.register(c, utils.RoleProvider, providerID, func(in registerDeviceInput) error {
		return h.ProviderService.RegisterDevice(providerID, in.FCMToken)
	})
}

func (h *DeviceHandler) register(c *gin.Context, role, actorID string, save func(registerDeviceInput) error) {
	logger := utils.GetLogger()

	var in registerDeviceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if err := save(in); err != nil {
		logger.Error("device registration failed",
			zap.String("role", role), zap.String("actorID", actorID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register device"})
		return
	}

	// Session registry is best effort; the push token is what matters.
	if utils.AuthCacheClient != nil {
		err := utils.SaveActorSession(utils.AuthCacheClient, utils.ActorSession{
			ActorID:    actorID,
			Role:       role,
			DeviceID:   in.DeviceID,
			DeviceName: in.DeviceName,
			IP:         c.ClientIP(),
		})
		if err != nil {
			logger.Warn("failed to save device session", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device registered"})
}
