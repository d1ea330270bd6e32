package services

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"postpilot/models"
	"postpilot/utils"
)

// TeamService handles teams, memberships and linked social accounts.
type TeamService struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewTeamService(db *gorm.DB, logger *logrus.Logger) *TeamService {
	return &TeamService{DB: db, Logger: logger}
}

type CreateTeamInput struct {
	Name       string
	WebhookURL *string
}

type AddMemberInput struct {
	UserID uint
	Role   models.TeamRole
}

type AddSocialAccountInput struct {
	Platform string
	Username string
	Token    string
}

// CreateTeam creates a team and grants the creator an OWNER membership in
// the same transaction.
func (ts *TeamService) CreateTeam(callerID uint, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, utils.NewValidationError("Team name cannot be empty")
	}

	team := models.Team{
		Name:       name,
		OwnerID:    callerID,
		WebhookURL: input.WebhookURL,
	}

	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		owner := models.TeamMember{
			TeamID: team.ID,
			UserID: callerID,
			Role:   models.TeamRoleOwner,
		}
		return tx.Create(&owner).Error
	})
	if err != nil {
		return nil, utils.NewInternalError(err)
	}

	return &team, nil
}

// GetTeams returns the teams the caller owns or belongs to, with members.
func (ts *TeamService) GetTeams(callerID uint) ([]models.Team, error) {
	memberTeams := ts.DB.Model(&models.TeamMember{}).
		Select("team_id").
		Where("user_id = ?", callerID)

	var teams []models.Team
	if err := ts.DB.
		Where("owner_id = ? OR id IN (?)", callerID, memberTeams).
		Preload("Members").
		Preload("Members.User").
		Find(&teams).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}
	return teams, nil
}

// AddMember adds a user to a team. Only team OWNER/ADMIN may add members;
// the assignable roles are ADMIN, MEMBER and VIEWER. At most one membership
// row exists per (team, user) pair.
func (ts *TeamService) AddMember(teamID, callerID uint, input AddMemberInput) (*models.TeamMember, error) {
	if !models.ValidMemberRole(input.Role) {
		return nil, utils.NewValidationError("Role must be one of ADMIN, MEMBER, VIEWER")
	}

	if err := ts.requireModerator(teamID, callerID); err != nil {
		return nil, err
	}

	var user models.User
	if err := ts.DB.First(&user, input.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("User not found")
		}
		return nil, utils.NewInternalError(err)
	}

	existing, err := findMembership(ts.DB, teamID, input.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.NewValidationError("User is already a member of this team")
	}

	member := models.TeamMember{
		TeamID: teamID,
		UserID: input.UserID,
		Role:   input.Role,
	}
	if err := ts.DB.Create(&member).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	member.User = user
	return &member, nil
}

// RemoveMember removes a membership. Only OWNER/ADMIN may remove, and the
// team owner's membership cannot be removed.
func (ts *TeamService) RemoveMember(teamID, callerID, userID uint) error {
	if err := ts.requireModerator(teamID, callerID); err != nil {
		return err
	}

	member, err := findMembership(ts.DB, teamID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return utils.NewNotFoundError("Member not found")
	}
	if member.Role == models.TeamRoleOwner {
		return utils.NewValidationError("Cannot remove the team owner")
	}

	if err := ts.DB.Delete(member).Error; err != nil {
		return utils.NewInternalError(err)
	}
	return nil
}

// AddSocialAccount links a platform account to a team. Any member except
// VIEWER may link accounts. The returned account is sanitized.
func (ts *TeamService) AddSocialAccount(teamID, callerID uint, input AddSocialAccountInput) (*models.SocialAccount, error) {
	member, err := findMembership(ts.DB, teamID, callerID)
	if err != nil {
		return nil, err
	}
	if member == nil || member.Role == models.TeamRoleViewer {
		return nil, utils.NewAuthorizationError("Not authorized to manage team accounts")
	}

	account := models.SocialAccount{
		TeamID:   teamID,
		Platform: strings.ToLower(input.Platform),
		Username: input.Username,
		Token:    input.Token,
	}
	if err := ts.DB.Create(&account).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	account.Sanitize()
	return &account, nil
}

// GetSocialAccounts lists a team's linked accounts with tokens stripped.
// The caller must be a member.
func (ts *TeamService) GetSocialAccounts(teamID, callerID uint) ([]models.SocialAccount, error) {
	member, err := findMembership(ts.DB, teamID, callerID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, utils.NewAuthorizationError("User is not a member of this team")
	}

	var accounts []models.SocialAccount
	if err := ts.DB.Where("team_id = ?", teamID).Find(&accounts).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}
	for i := range accounts {
		accounts[i].Sanitize()
	}
	return accounts, nil
}

func (ts *TeamService) requireModerator(teamID, callerID uint) error {
	var team models.Team
	if err := ts.DB.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("Team not found")
		}
		return utils.NewInternalError(err)
	}

	member, err := findMembership(ts.DB, teamID, callerID)
	if err != nil {
		return err
	}
	if !canModerate(member) {
		return utils.NewAuthorizationError("Not authorized to manage team members")
	}
	return nil
}
