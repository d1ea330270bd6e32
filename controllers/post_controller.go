package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"postpilot/models"
	"postpilot/services"
	"postpilot/utils"
)

type PostController struct {
	DB       *gorm.DB
	Posts    *services.PostService
	Workflow *services.WorkflowService
	Logger   *log.Logger
}

func NewPostController(db *gorm.DB, posts *services.PostService, workflow *services.WorkflowService, logger *log.Logger) *PostController {
	return &PostController{
		DB:       db,
		Posts:    posts,
		Workflow: workflow,
		Logger:   logger,
	}
}

type CreatePostRequest struct {
	Content     string  `json:"content" validate:"required"`
	TeamID      *uint   `json:"team_id"`
	MediaURL    *string `json:"media_url"`
	ScheduledAt *string `json:"scheduled_at"` // RFC 3339
}

type UpdatePostRequest struct {
	Content     *string `json:"content"`
	MediaURL    *string `json:"media_url"`
	ScheduledAt *string `json:"scheduled_at"` // RFC 3339
}

func parseScheduledAt(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, utils.NewValidationError("scheduled_at must be an RFC 3339 timestamp")
	}
	return &t, nil
}

func (pc *PostController) CreatePost(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid request body"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.HandleError(c, err)
	}

	scheduledAt, err := parseScheduledAt(req.ScheduledAt)
	if err != nil {
		return utils.HandleError(c, err)
	}

	post, err := pc.Posts.Create(user.ID, services.CreatePostInput{
		Content:     req.Content,
		MediaURL:    req.MediaURL,
		ScheduledAt: scheduledAt,
		TeamID:      req.TeamID,
	})
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

func (pc *PostController) GetPosts(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	filters := services.PostFilters{
		Status: models.PostStatus(c.Query("status")),
	}
	if teamID := c.QueryInt("teamId"); teamID > 0 {
		id := uint(teamID)
		filters.TeamID = &id
	}

	posts, err := pc.Posts.List(user.ID, filters)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(posts)
}

func (pc *PostController) GetPost(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	postID, err := c.ParamsInt("postId")
	if err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid post ID"))
	}

	post, err := pc.Posts.Get(uint(postID), user.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(post)
}

func (pc *PostController) UpdatePost(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	postID, err := c.ParamsInt("postId")
	if err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid post ID"))
	}

	var req UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid request body"))
	}

	scheduledAt, err := parseScheduledAt(req.ScheduledAt)
	if err != nil {
		return utils.HandleError(c, err)
	}

	post, err := pc.Posts.Update(uint(postID), user.ID, services.UpdatePostInput{
		Content:     req.Content,
		MediaURL:    req.MediaURL,
		ScheduledAt: scheduledAt,
	})
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(post)
}

func (pc *PostController) DeletePost(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	postID, err := c.ParamsInt("postId")
	if err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid post ID"))
	}

	if err := pc.Posts.Delete(uint(postID), user.ID); err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Post deleted successfully",
	})
}

func (pc *PostController) SubmitPost(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	postID, err := c.ParamsInt("postId")
	if err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid post ID"))
	}

	post, err := pc.Workflow.SubmitForReview(uint(postID), user.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(post)
}

func (pc *PostController) ApprovePost(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	postID, err := c.ParamsInt("postId")
	if err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid post ID"))
	}

	post, err := pc.Workflow.Approve(uint(postID), user.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(post)
}

func (pc *PostController) RejectPost(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	postID, err := c.ParamsInt("postId")
	if err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid post ID"))
	}

	post, err := pc.Workflow.Reject(uint(postID), user.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Post rejected successfully",
		"post":    post,
	})
}
