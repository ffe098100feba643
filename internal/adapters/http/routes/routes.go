package routes

import (
	"simia-portal/internal/adapters/http/handlers"
	"simia-portal/internal/adapters/http/middleware"
	"simia-portal/internal/adapters/persistence/repositories"
	"simia-portal/internal/config"
	"simia-portal/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	taskRepo := repositories.NewTaskRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo)
	taskService := services.NewTaskService(taskRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	taskHandler := handlers.NewTaskHandler(taskService)

	// Auth strategy is chosen exactly once, here
	authenticator := middleware.NewAuthenticator(cfg, userRepo)
	requireAuth := middleware.AuthMiddleware(authenticator)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/api/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")

	// Auth routes (public, stricter rate limit)
	authRoutes := api.Group("/auth")
	authRoutes.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)

	// Task routes (authenticated)
	taskRoutes := api.Group("/tasks")
	taskRoutes.Use(requireAuth)
	taskRoutes.Get("/", taskHandler.List)
	taskRoutes.Get("/:id", taskHandler.GetByID)
	taskRoutes.Post("/", taskHandler.Create)
	taskRoutes.Put("/:id", taskHandler.Update)
	taskRoutes.Delete("/:id", taskHandler.Delete)

	// User routes (authenticated; onboarding is admin only)
	userRoutes := api.Group("/users")
	userRoutes.Use(requireAuth)
	userRoutes.Get("/", userHandler.ListUsers)
	userRoutes.Get("/me", userHandler.Me)
	userRoutes.Post("/", middleware.AdminOnly(), userHandler.CreateUser)
}
