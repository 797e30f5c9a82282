package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/taskhive/taskhive-api/internal/config"
	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/handlers"
	authmw "github.com/taskhive/taskhive-api/internal/middleware"
	"github.com/taskhive/taskhive-api/internal/notify"
	"github.com/taskhive/taskhive-api/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	accessService := services.NewAccessService(db)
	projectService := services.NewProjectService(db)
	itemService := services.NewItemService(db)
	commentService := services.NewCommentService(db)
	serverService := services.NewServerService(db)
	feedService := services.NewFeedService(db)
	emailService := services.NewEmailService(cfg.SMTP)
	settingsService := services.NewSettingsService(db)
	dashboardService := services.NewDashboardService(db)

	hub := notify.NewHub()
	go hub.Run()

	notificationService := services.NewNotificationService(db, accessService, hub)

	authHandler := handlers.NewAuthHandler(cfg, userService, tokenService, jwtService, notificationService)
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService, accessService, userService, notificationService, emailService)
	itemHandler := handlers.NewItemHandler(itemService, projectService, accessService, notificationService)
	commentHandler := handlers.NewCommentHandler(commentService, itemService, accessService)
	serverHandler := handlers.NewServerHandler(serverService, accessService, userService, projectService, notificationService)
	inviteHandler := handlers.NewInviteHandler(serverService, accessService, userService, notificationService, emailService, cfg.BaseURL)
	notificationHandler := handlers.NewNotificationHandler(notificationService, hub)
	feedHandler := handlers.NewFeedHandler(feedService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, settingsService, userService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Get("/:provider/consent", authHandler.GetConsentURL)
	auth.Get("/:provider/callback", authHandler.Callback)
	auth.Post("/exchange", authHandler.ExchangeCode)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)

	protected.Get("/users/me", userHandler.Me)
	protected.Patch("/users/me", userHandler.UpdateMe)
	protected.Get("/users/me/settings", settingsHandler.Get)
	protected.Patch("/users/me/settings", settingsHandler.Update)

	protected.Get("/dashboard", dashboardHandler.Get)

	protected.Get("/projects", projectHandler.List)
	protected.Post("/projects", projectHandler.Create)
	protected.Get("/projects/:projectId", projectHandler.Get)
	protected.Patch("/projects/:projectId", projectHandler.Update)
	protected.Delete("/projects/:projectId", projectHandler.Delete)

	protected.Get("/projects/:projectId/access", projectHandler.GetAccessList)
	protected.Post("/projects/:projectId/access", projectHandler.GrantAccess)
	protected.Delete("/projects/:projectId/access/:userId", projectHandler.RevokeAccess)

	protected.Get("/projects/:projectId/items", itemHandler.List)
	protected.Post("/projects/:projectId/items", itemHandler.Create)
	protected.Get("/projects/:projectId/items/:itemId", itemHandler.Get)
	protected.Patch("/projects/:projectId/items/:itemId", itemHandler.Update)
	protected.Delete("/projects/:projectId/items/:itemId", itemHandler.Delete)
	protected.Post("/projects/:projectId/items/:itemId/start", itemHandler.Start)
	protected.Post("/projects/:projectId/items/:itemId/complete", itemHandler.Complete)

	protected.Get("/projects/:projectId/items/:itemId/comments", commentHandler.List)
	protected.Post("/projects/:projectId/items/:itemId/comments", commentHandler.Create)
	protected.Delete("/projects/:projectId/items/:itemId/comments/:commentId", commentHandler.Delete)

	protected.Get("/servers", serverHandler.List)
	protected.Post("/servers", serverHandler.Create)
	protected.Get("/servers/:serverId", serverHandler.Get)
	protected.Patch("/servers/:serverId", serverHandler.Update)
	protected.Delete("/servers/:serverId", serverHandler.Delete)
	protected.Get("/servers/:serverId/projects", serverHandler.ListProjects)
	protected.Get("/servers/:serverId/members", serverHandler.GetMembers)
	protected.Post("/servers/:serverId/members", serverHandler.AddMember)
	protected.Patch("/servers/:serverId/members/:memberId", serverHandler.UpdateMemberRole)
	protected.Delete("/servers/:serverId/members/:memberId", serverHandler.RemoveMember)

	protected.Get("/servers/:serverId/invitations", inviteHandler.List)
	protected.Post("/servers/:serverId/invitations", inviteHandler.Create)
	protected.Delete("/servers/:serverId/invitations/:inviteId", inviteHandler.Revoke)
	protected.Post("/invitations/:code/join", inviteHandler.Join)

	protected.Get("/feed", feedHandler.List)
	protected.Post("/feed", feedHandler.Create)
	protected.Delete("/feed/:postId", feedHandler.Delete)

	protected.Get("/notifications", notificationHandler.List)
	protected.Get("/notifications/unread-count", notificationHandler.UnreadCount)
	protected.Post("/notifications/:notificationId/read", notificationHandler.MarkRead)
	protected.Post("/notifications/read-all", notificationHandler.MarkAllRead)
	protected.Get("/notifications/stream", notificationHandler.Stream)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			_ = tokenService.CleanupExpired(context.Background())
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
