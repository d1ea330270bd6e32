package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"postpilot/models"
	"postpilot/services"
	"postpilot/utils"
)

type ActivityController struct {
	DB       *gorm.DB
	Activity *services.ActivityService
	Logger   *log.Logger
}

func NewActivityController(db *gorm.DB, activity *services.ActivityService, logger *log.Logger) *ActivityController {
	return &ActivityController{DB: db, Activity: activity, Logger: logger}
}

// GetActivities returns the activity feed for a team the caller belongs to.
func (ac *ActivityController) GetActivities(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	teamID := c.QueryInt("teamId")
	if teamID <= 0 {
		return utils.HandleError(c, utils.NewValidationError("Team ID is required"))
	}

	activities, err := ac.Activity.GetTeamActivities(uint(teamID), user.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    activities,
	})
}
