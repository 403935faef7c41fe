// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"festes-portal/controllers"
	"festes-portal/database"
	"festes-portal/logger"
	"festes-portal/middleware"
	"festes-portal/services"
	"festes-portal/websocket"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		logger.Info.Println("No .env file found; using environment variables")
	}

	if os.Getenv("APP_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
		logger.SetLogLevel("production")
	}

	ctx := context.Background()
	client, err := database.NewFirestoreClient(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to Firestore: %v", err)
	}
	defer client.Close()

	// Service wiring. Payments feed seasons and partners; games feed crews.
	paymentService := services.NewPaymentService(client)
	seasonService := services.NewSeasonService(client, paymentService)
	changeService := services.NewChangeService(client)
	partnerService := services.NewPartnerService(client, paymentService, seasonService, changeService)
	gameService := services.NewGameService(client)
	crewService := services.NewCrewService(client, gameService)
	eventService := services.NewEventService(client)
	userService := services.NewUserService(client)
	chatService := services.NewChatService(client)
	storageService := services.NewStorageService(client)

	mailer, err := services.NewSMTPMailer()
	if err != nil {
		log.Fatalf("Failed to configure mailer: %v", err)
	}

	authController := controllers.NewAuthController(userService)
	partnerController := controllers.NewPartnerController(partnerService, paymentService)
	seasonController := controllers.NewSeasonController(seasonService)
	gameController := controllers.NewGameController(gameService)
	crewController := controllers.NewCrewController(crewService)
	eventController := controllers.NewEventController(eventService)
	notificationController := controllers.NewNotificationController(mailer)
	uploadController := controllers.NewUploadController(storageService)
	chatController := controllers.NewChatController(chatService)

	router := gin.Default()

	// Health check for the load balancer
	router.GET("/health", controllers.Health)

	// Session store
	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		sessionSecret = "festes-dev-secret"
		logger.Warn.Println("SESSION_SECRET not set; using development default")
	}
	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   os.Getenv("APP_ENV") == "production",
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("festes_session", store))

	// Public routes
	router.POST("/login", authController.PerformLogin)
	router.GET("/logout", authController.Logout)
	router.POST("/register", authController.Register)
	router.POST("/partners/register", partnerController.Register)
	router.Any("/sendContactEmail", notificationController.SendContactEmail)
	router.GET("/events", eventController.List)
	router.GET("/events/:slug", eventController.GetBySlug)
	router.GET("/events/:slug/qrcode", eventController.QRCode)
	router.GET("/crews", crewController.List)

	// Member routes
	member := router.Group("/", middleware.AuthRequired)
	{
		member.POST("/preferences", authController.UpdatePreferences)
		member.POST("/events/id/:id/inscriptions", eventController.Inscribe)
		member.GET("/chat/messages/:id", chatController.Messages)
		member.GET("/chat/ws", chatController.Connect)
	}

	// Staff routes
	staff := router.Group("/admin", middleware.AuthRequired, middleware.StaffRequired())
	{
		staff.GET("/partners", partnerController.List)
		staff.GET("/partners/:id", partnerController.Get)
		staff.POST("/partners/:id/approve", partnerController.Approve)
		staff.POST("/partners/:id/reject", partnerController.Reject)
		staff.PATCH("/partners/:id", partnerController.Update)
		staff.DELETE("/partners/:id", partnerController.Delete)
		staff.GET("/partners/:id/payments", partnerController.Payments)
		staff.POST("/partners/:id/payments", partnerController.CreatePayment)
		staff.PATCH("/partners/:id/payments/:paymentId", partnerController.UpdatePayment)

		staff.GET("/seasons", seasonController.List)
		staff.GET("/seasons/active", seasonController.Active)
		staff.POST("/seasons", seasonController.Create)
		staff.POST("/seasons/:id/activate", seasonController.Activate)

		staff.GET("/games", gameController.List)
		staff.GET("/games/:id", gameController.Get)
		staff.POST("/games", gameController.Create)
		staff.PATCH("/games/:id", gameController.Update)
		staff.POST("/games/:id/status", gameController.SetStatus)
		staff.DELETE("/games/:id", gameController.Delete)

		staff.GET("/crews/:id", crewController.Get)
		staff.POST("/crews", crewController.Create)
		staff.PATCH("/crews/:id", crewController.Update)
		staff.POST("/crews/:id/backfill", crewController.Backfill)
		staff.GET("/crews/:id/games", crewController.Games)
		staff.POST("/crews/:id/games/:gameId/result", crewController.SetResult)

		staff.POST("/events", eventController.Create)
		staff.GET("/events/:id/inscriptions", eventController.Inscriptions)
		staff.DELETE("/events/:id", eventController.Delete)

		staff.POST("/uploads", uploadController.Upload)
		staff.GET("/uploads", uploadController.List)
		staff.POST("/collaborators", uploadController.CreateCollaborator)
		staff.POST("/participants", uploadController.CreateParticipant)

		staff.GET("/chats", chatController.ActiveChats)
	}

	router.Any("/sendBulkEmails", middleware.AuthRequired, middleware.StaffRequired(), notificationController.SendBulkEmails)

	// Chat heartbeat keeps the staff inbox presence fresh
	router.GET("/chat/heartbeat", gin.WrapF(HeartbeatHandler))
	go websocket.CleanupPresence()

	// Websocket delivery loop
	websocket.SetChatStore(chatService)
	go websocket.HandleMessages()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info.Printf("Starting server on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
