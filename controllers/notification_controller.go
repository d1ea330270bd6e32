package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	"postpilot/models"
	"postpilot/services"
	"postpilot/utils"
)

type NotificationController struct {
	DB            *gorm.DB
	Notifications *services.NotificationService
	Logger        *log.Logger
}

func NewNotificationController(db *gorm.DB, notifications *services.NotificationService, logger *log.Logger) *NotificationController {
	return &NotificationController{DB: db, Notifications: notifications, Logger: logger}
}

type SendNotificationRequest struct {
	UserID  uint   `json:"user_id" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type SendEmailRequest struct {
	UserID  uint   `json:"user_id" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// SendNotification queues a manual in-app notification. Delivery is
// fire-and-forget, so this always answers success once validated.
func (nc *NotificationController) SendNotification(c *fiber.Ctx) error {
	var req SendNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid request body"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.HandleError(c, err)
	}

	nc.Notifications.Notify(req.UserID, req.Message)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Notification sent successfully",
	})
}

func (nc *NotificationController) SendEmailNotification(c *fiber.Ctx) error {
	var req SendEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid request body"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.HandleError(c, err)
	}

	go nc.Notifications.SendEmail(req.UserID, req.Subject, req.Content)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Email notification sent successfully",
	})
}

func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	rows, err := nc.Notifications.GetNotifications(user.ID)
	if err != nil {
		return utils.HandleError(c, utils.NewInternalError(err))
	}

	return c.JSON(rows)
}

// StreamNotifications upgrades to a websocket and pushes the caller's
// notifications as they are dispatched. The connection is read-drained so
// client pings and close frames are handled.
func (nc *NotificationController) StreamNotifications() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(uint)
		if !ok {
			conn.Close()
			return
		}

		nc.Notifications.RegisterStream(userID, conn)
		defer nc.Notifications.UnregisterStream(userID, conn)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
