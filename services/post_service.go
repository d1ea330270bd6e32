package services

import (
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"postpilot/models"
	"postpilot/utils"
)

// PostService handles post creation, queries and the guarded update/delete
// operations. Review transitions live on WorkflowService.
type PostService struct {
	DB       *gorm.DB
	Activity *ActivityService
	Logger   *logrus.Logger
}

func NewPostService(db *gorm.DB, activity *ActivityService, logger *logrus.Logger) *PostService {
	return &PostService{DB: db, Activity: activity, Logger: logger}
}

type CreatePostInput struct {
	Content     string
	MediaURL    *string
	ScheduledAt *time.Time
	TeamID      *uint
}

type UpdatePostInput struct {
	Content     *string
	MediaURL    *string
	ScheduledAt *time.Time
}

type PostFilters struct {
	TeamID *uint
	Status models.PostStatus
}

// Create validates the input and inserts a new post. Initial status is
// DRAFT, or SCHEDULED when a future schedule time is given. Team posts
// require the caller to be a member of the team; the membership check runs
// before the insert so no row is created on failure.
func (ps *PostService) Create(callerID uint, input CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, utils.NewValidationError("Content cannot be empty")
	}

	if input.ScheduledAt != nil && !input.ScheduledAt.After(time.Now()) {
		return nil, utils.NewValidationError("Schedule date must be in the future")
	}

	if input.TeamID != nil {
		member, err := findMembership(ps.DB, *input.TeamID, callerID)
		if err != nil {
			return nil, err
		}
		if member == nil {
			return nil, utils.NewAuthorizationError("User is not a member of this team")
		}
	}

	status := models.PostStatusDraft
	if input.ScheduledAt != nil {
		status = models.PostStatusScheduled
	}

	post := models.Post{
		Content:     content,
		MediaURL:    input.MediaURL,
		ScheduledAt: input.ScheduledAt,
		Status:      status,
		UserID:      callerID,
		TeamID:      input.TeamID,
	}

	if err := ps.DB.Create(&post).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	ps.Activity.Log(models.ActivityPostCreate, models.ActivityStatusSuccess, callerID, &post)
	return &post, nil
}

// List returns posts visible to the caller: their own posts plus posts of
// teams they belong to, newest first. A team filter requires the team to
// exist and the caller to be a member.
func (ps *PostService) List(callerID uint, filters PostFilters) ([]models.Post, error) {
	memberTeams := ps.DB.Model(&models.TeamMember{}).
		Select("team_id").
		Where("user_id = ?", callerID)

	q := ps.DB.Model(&models.Post{}).
		Where("user_id = ? OR team_id IN (?)", callerID, memberTeams)

	if filters.TeamID != nil {
		var team models.Team
		if err := ps.DB.First(&team, *filters.TeamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.NewNotFoundError("Team not found")
			}
			return nil, utils.NewInternalError(err)
		}

		member, err := findMembership(ps.DB, *filters.TeamID, callerID)
		if err != nil {
			return nil, err
		}
		if member == nil {
			return nil, utils.NewAuthorizationError("User is not a member of this team")
		}

		q = q.Where("team_id = ?", *filters.TeamID)
	}

	if filters.Status != "" {
		if !models.ValidPostStatus(filters.Status) {
			return nil, utils.NewValidationError("Invalid post status")
		}
		q = q.Where("status = ?", filters.Status)
	}

	var posts []models.Post
	if err := q.Preload("User").Preload("Team").
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}
	return posts, nil
}

// Get returns a single post when the caller owns it or belongs to its team.
func (ps *PostService) Get(postID, callerID uint) (*models.Post, error) {
	post, err := loadPost(ps.DB, postID)
	if err != nil {
		return nil, err
	}

	if post.UserID != callerID {
		if post.TeamID == nil {
			return nil, utils.NewAuthorizationError("Not authorized to view this post")
		}
		member, err := findMembership(ps.DB, *post.TeamID, callerID)
		if err != nil {
			return nil, err
		}
		if member == nil {
			return nil, utils.NewAuthorizationError("Not authorized to view this post")
		}
	}

	return post, nil
}

// Update mutates content, media or schedule on a non-published post. The
// caller must own the post or hold a non-VIEWER membership in its team.
// Setting a schedule moves the post to SCHEDULED; other edits keep the
// current status.
func (ps *PostService) Update(postID, callerID uint, input UpdatePostInput) (*models.Post, error) {
	if input.Content == nil && input.MediaURL == nil && input.ScheduledAt == nil {
		return nil, utils.NewValidationError("No fields to update")
	}

	if input.Content != nil && strings.TrimSpace(*input.Content) == "" {
		return nil, utils.NewValidationError("Content cannot be empty")
	}

	if input.ScheduledAt != nil && !input.ScheduledAt.After(time.Now()) {
		return nil, utils.NewValidationError("Schedule date must be in the future")
	}

	post, err := loadPost(ps.DB, postID)
	if err != nil {
		return nil, err
	}

	// Published posts are immutable for every caller; the status check runs
	// before authorization on purpose.
	if post.Status == models.PostStatusPublished {
		return nil, utils.NewValidationError("Cannot update published post")
	}

	member, err := ps.postMembership(post, callerID)
	if err != nil {
		return nil, err
	}
	if !canEdit(post, member, callerID) {
		return nil, utils.NewAuthorizationError("Not authorized to edit this post")
	}

	updates := map[string]interface{}{}
	if input.Content != nil {
		content := strings.TrimSpace(*input.Content)
		updates["content"] = content
		post.Content = content
	}
	if input.MediaURL != nil {
		updates["media_url"] = *input.MediaURL
		post.MediaURL = input.MediaURL
	}
	if input.ScheduledAt != nil {
		updates["scheduled_at"] = *input.ScheduledAt
		updates["status"] = models.PostStatusScheduled
		post.ScheduledAt = input.ScheduledAt
		post.Status = models.PostStatusScheduled
	}

	if err := ps.DB.Model(&models.Post{}).Where("id = ?", post.ID).
		Updates(updates).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	ps.Activity.Log(models.ActivityPostUpdate, models.ActivityStatusSuccess, callerID, post)
	return post, nil
}

// Delete removes a non-published post. Same authorization as Update.
func (ps *PostService) Delete(postID, callerID uint) error {
	post, err := loadPost(ps.DB, postID)
	if err != nil {
		return err
	}

	if post.Status == models.PostStatusPublished {
		return utils.NewValidationError("Cannot delete published post")
	}

	member, err := ps.postMembership(post, callerID)
	if err != nil {
		return err
	}
	if !canEdit(post, member, callerID) {
		return utils.NewAuthorizationError("Not authorized to delete this post")
	}

	if err := ps.DB.Delete(post).Error; err != nil {
		return utils.NewInternalError(err)
	}

	ps.Activity.Log(models.ActivityPostDelete, models.ActivityStatusSuccess, callerID, post)
	return nil
}

func (ps *PostService) postMembership(post *models.Post, callerID uint) (*models.TeamMember, error) {
	if post.TeamID == nil {
		return nil, nil
	}
	return findMembership(ps.DB, *post.TeamID, callerID)
}
