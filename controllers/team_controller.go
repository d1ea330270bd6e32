package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"postpilot/models"
	"postpilot/services"
	"postpilot/utils"
)

type TeamController struct {
	DB     *gorm.DB
	Teams  *services.TeamService
	Logger *log.Logger
}

func NewTeamController(db *gorm.DB, teams *services.TeamService, logger *log.Logger) *TeamController {
	return &TeamController{DB: db, Teams: teams, Logger: logger}
}

type CreateTeamRequest struct {
	Name       string  `json:"name" validate:"required,max=100"`
	WebhookURL *string `json:"webhook_url" validate:"omitempty,url"`
}

type AddMemberRequest struct {
	UserID uint   `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=ADMIN MEMBER VIEWER"`
}

type AddSocialAccountRequest struct {
	Platform string `json:"platform" validate:"required,oneof=twitter facebook instagram linkedin"`
	Username string `json:"username" validate:"required"`
	Token    string `json:"token" validate:"required"`
}

func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid request body"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.HandleError(c, err)
	}

	team, err := tc.Teams.CreateTeam(user.ID, services.CreateTeamInput{
		Name:       req.Name,
		WebhookURL: req.WebhookURL,
	})
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(team)
}

func (tc *TeamController) GetTeams(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	teams, err := tc.Teams.GetTeams(user.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(teams)
}

func (tc *TeamController) AddMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID, err := c.ParamsInt("teamId")
	if err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid team ID"))
	}

	var req AddMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid request body"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.HandleError(c, err)
	}

	member, err := tc.Teams.AddMember(uint(teamID), user.ID, services.AddMemberInput{
		UserID: req.UserID,
		Role:   models.TeamRole(req.Role),
	})
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(member)
}

func (tc *TeamController) RemoveMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID, err := c.ParamsInt("teamId")
	if err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid team ID"))
	}
	userID, err := c.ParamsInt("userId")
	if err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid user ID"))
	}

	if err := tc.Teams.RemoveMember(uint(teamID), user.ID, uint(userID)); err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Member removed successfully",
	})
}

func (tc *TeamController) AddSocialAccount(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID, err := c.ParamsInt("teamId")
	if err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid team ID"))
	}

	var req AddSocialAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid request body"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.HandleError(c, err)
	}

	account, err := tc.Teams.AddSocialAccount(uint(teamID), user.ID, services.AddSocialAccountInput{
		Platform: req.Platform,
		Username: req.Username,
		Token:    req.Token,
	})
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(account)
}

func (tc *TeamController) GetSocialAccounts(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID, err := c.ParamsInt("teamId")
	if err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid team ID"))
	}

	accounts, err := tc.Teams.GetSocialAccounts(uint(teamID), user.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(accounts)
}
