package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	controller "postpilot/controllers"
	"postpilot/middleware"
	"postpilot/services"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	auth := app.Group("/auth", fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Google OAuth routes
	auth.Get("/google", controller.GoogleOAuth)
	auth.Get("/google/callback", controller.GoogleOAuthCallback)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Get("/me", controller.GetCurrentUser)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB, notifications *services.NotificationService, svcLogger *logrus.Logger) {
	activityService := services.NewActivityService(db, notifications, svcLogger)
	postService := services.NewPostService(db, activityService, svcLogger)
	workflowService := services.NewWorkflowService(db, notifications, activityService, svcLogger)
	teamService := services.NewTeamService(db, svcLogger)

	postController := controller.NewPostController(db, postService, workflowService,
		log.New(os.Stdout, "POST: ", log.LstdFlags))
	teamController := controller.NewTeamController(db, teamService,
		log.New(os.Stdout, "TEAM: ", log.LstdFlags))
	activityController := controller.NewActivityController(db, activityService,
		log.New(os.Stdout, "ACTIVITY: ", log.LstdFlags))
	notificationController := controller.NewNotificationController(db, notifications,
		log.New(os.Stdout, "NOTIFY: ", log.LstdFlags))

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Post routes
	post := api.Group("/posts")
	post.Post("/", postController.CreatePost)
	post.Get("/", postController.GetPosts)
	post.Get("/:postId", postController.GetPost)
	post.Put("/:postId", postController.UpdatePost)
	post.Delete("/:postId", postController.DeletePost)
	post.Post("/:postId/submit", postController.SubmitPost)
	post.Post("/:postId/approve", postController.ApprovePost)
	post.Post("/:postId/reject", postController.RejectPost)

	// Team routes
	team := api.Group("/teams")
	team.Post("/", teamController.CreateTeam)
	team.Get("/", teamController.GetTeams)
	team.Post("/:teamId/members", teamController.AddMember)
	team.Delete("/:teamId/members/:userId", teamController.RemoveMember)
	team.Post("/:teamId/accounts", teamController.AddSocialAccount)
	team.Get("/:teamId/accounts", teamController.GetSocialAccounts)

	// Activity feed
	api.Get("/activity", activityController.GetActivities)

	// Notification routes
	notify := api.Group("/notifications")
	notify.Post("/", notificationController.SendNotification)
	notify.Post("/email", notificationController.SendEmailNotification)
	notify.Get("/", notificationController.GetNotifications)
	notify.Get("/ws", notificationController.StreamNotifications())

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB, notifications *services.NotificationService, svcLogger *logrus.Logger) {
	controller.InitOAuth()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupAuthRoutes(app, db)
	SetupAPIRoutes(app, db, notifications, svcLogger)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
