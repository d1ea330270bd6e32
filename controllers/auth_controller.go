package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"postpilot/config"
	"postpilot/models"
	"postpilot/utils"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

func Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid request body"))
	}

	if err := utils.ValidateStruct(req); err != nil {
		return utils.HandleError(c, err)
	}
	if err := checkmail.ValidateFormat(req.Email); err != nil {
		return utils.HandleError(c, utils.NewValidationError("email must be a valid email"))
	}

	// Check if user already exists
	var existingUser models.User
	if err := config.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return utils.HandleError(c, utils.NewValidationError("Email already registered"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.HandleError(c, utils.NewInternalError(err))
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Role:         models.UserRoleStandard,
		IsActive:     true,
	}
	if req.Name != "" {
		user.Name = &req.Name
	}

	if err := config.DB.Create(&user).Error; err != nil {
		return utils.HandleError(c, utils.NewInternalError(err))
	}

	accessToken, refreshToken, err := utils.GenerateJWTToken(&user)
	if err != nil {
		return utils.HandleError(c, utils.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		User:         &user,
	})
}

func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid request body"))
	}

	if err := utils.ValidateStruct(req); err != nil {
		return utils.HandleError(c, err)
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return utils.HandleError(c, utils.NewAuthenticationError("Invalid email or password"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return utils.HandleError(c, utils.NewAuthenticationError("Invalid email or password"))
	}

	if !user.IsActive {
		return utils.HandleError(c, utils.NewAuthorizationError("Account is not active"))
	}

	accessToken, refreshToken, err := utils.GenerateJWTToken(&user)
	if err != nil {
		return utils.HandleError(c, utils.NewInternalError(err))
	}

	return c.JSON(AuthResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		User:         &user,
	})
}

func RefreshToken(c *fiber.Ctx) error {
	var req RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid request body"))
	}

	accessToken, refreshToken, err := utils.RefreshTokens(req.RefreshToken)
	if err != nil {
		return utils.HandleError(c, utils.NewAuthenticationError(err.Error()))
	}

	return c.JSON(fiber.Map{
		"token":         accessToken,
		"refresh_token": refreshToken,
	})
}

func GetCurrentUser(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	return c.JSON(user)
}

var googleOAuthConfig *oauth2.Config

// InitOAuth wires the Google OAuth client from config. Called from route
// setup after config is loaded.
func InitOAuth() {
	googleOAuthConfig = &oauth2.Config{
		ClientID:     config.AppConfig.Google.ClientID,
		ClientSecret: config.AppConfig.Google.ClientSecret,
		RedirectURL:  config.AppConfig.Google.RedirectURI,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

func GoogleOAuth(c *fiber.Ctx) error {
	state, err := utils.GenerateStateToken()
	if err != nil {
		return utils.HandleError(c, utils.NewInternalError(err))
	}

	cookie := new(fiber.Cookie)
	cookie.Name = "oauth_state"
	cookie.Value = state
	cookie.Expires = time.Now().Add(10 * time.Minute)
	cookie.HTTPOnly = true
	cookie.Secure = true
	cookie.SameSite = "Lax"
	c.Cookie(cookie)

	url := googleOAuthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	return c.Redirect(url, fiber.StatusTemporaryRedirect)
}

func GoogleOAuthCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	cookieState := c.Cookies("oauth_state")
	if state == "" || cookieState == "" || state != cookieState {
		return utils.HandleError(c, utils.NewValidationError("Invalid state parameter"))
	}
	c.ClearCookie("oauth_state")

	code := c.Query("code")
	if code == "" {
		return utils.HandleError(c, utils.NewValidationError("Authorization code not provided"))
	}

	token, err := googleOAuthConfig.Exchange(context.Background(), code)
	if err != nil {
		return utils.HandleError(c, utils.NewInternalError(err))
	}

	client := googleOAuthConfig.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return utils.HandleError(c, utils.NewInternalError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return utils.HandleError(c, utils.NewInternalError(errors.New("google api error: "+string(body))))
	}

	var googleUser struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return utils.HandleError(c, utils.NewInternalError(err))
	}
	if googleUser.Email == "" {
		return utils.HandleError(c, utils.NewValidationError("Google account email is required"))
	}

	// Find or create user
	var user models.User
	err = config.DB.Where("email = ?", googleUser.Email).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.HandleError(c, utils.NewInternalError(err))
		}
		user = models.User{
			Email:          googleUser.Email,
			PasswordHash:   "-", // OAuth-only account, no local password
			Name:           &googleUser.Name,
			GoogleID:       &googleUser.ID,
			GoogleImageURL: &googleUser.Picture,
			Role:           models.UserRoleStandard,
			IsActive:       true,
		}
		if err := config.DB.Create(&user).Error; err != nil {
			return utils.HandleError(c, utils.NewInternalError(err))
		}
	} else if user.GoogleID == nil || *user.GoogleID != googleUser.ID {
		user.GoogleID = &googleUser.ID
		user.GoogleImageURL = &googleUser.Picture
		if err := config.DB.Save(&user).Error; err != nil {
			return utils.HandleError(c, utils.NewInternalError(err))
		}
	}

	accessToken, refreshToken, err := utils.GenerateJWTToken(&user)
	if err != nil {
		return utils.HandleError(c, utils.NewInternalError(err))
	}

	return c.JSON(AuthResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		User:         &user,
	})
}
