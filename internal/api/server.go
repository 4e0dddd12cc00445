package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/evenio/billetterie-api/docs"
	v1 "github.com/evenio/billetterie-api/internal/api/handler/v1"
	"github.com/evenio/billetterie-api/internal/api/middleware"
	"github.com/evenio/billetterie-api/internal/config"
	"github.com/evenio/billetterie-api/internal/repository"
	"github.com/evenio/billetterie-api/internal/repository/dao"
	"github.com/evenio/billetterie-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(db)
	userHandler := s.initUserHandler(db)
	eventHandler := s.initEventHandler(db)
	ticketHandler := s.initTicketHandler(db)
	scannerHandler := s.initScannerHandler(db)
	s.MountHandlers(authHandler, userHandler, eventHandler, ticketHandler, scannerHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initEventHandler(db *gorm.DB) *v1.EventHandler {
	eventDAO := dao.NewEventDAO(db)
	repo := repository.NewEventRepository(eventDAO)
	svc := service.NewEventService(repo)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewEventHandler(svc, uSvc)

	return handler
}

func (s *Server) initTicketService(db *gorm.DB) *service.TicketService {
	repo := repository.NewTicketRepository(dao.NewTicketDAO(db))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	audit := repository.NewAuditRepository(dao.NewAuditDAO(db))
	auth := service.NewAuthService(userRepo)

	return service.NewTicketService(repo, eventRepo, userRepo, audit, auth, s.Config.Scanner.DefaultLocation)
}

func (s *Server) initTicketHandler(db *gorm.DB) *v1.TicketHandler {
	svc := s.initTicketService(db)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewTicketHandler(svc, uSvc)

	return handler
}

func (s *Server) initScannerHandler(db *gorm.DB) *v1.ScannerHandler {
	svc := s.initTicketService(db)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewScannerHandler(svc, uSvc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, userHandler *v1.UserHandler, eventHandler *v1.EventHandler, ticketHandler *v1.TicketHandler, scannerHandler *v1.ScannerHandler) {
	const basePath = "/api/v1"

	verifyJWT := middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT()

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/signup", authHandler.HandleSignup)
		public.POST("/auth/login", authHandler.HandleLogin)

		public.GET("/events", eventHandler.HandleListEvents)
		public.GET("/events/:eventID", eventHandler.HandleGetEvent)

		// Guests purchase without an account.
		public.POST("/tickets/purchase", ticketHandler.HandlePurchaseTickets)
	}

	users := s.Router.Group(basePath, verifyJWT)
	{
		users.GET("/users/:userID", userHandler.HandleGetUser)
	}

	events := s.Router.Group(basePath, verifyJWT)
	{
		events.POST("/events", eventHandler.HandleCreateEvent)
		events.PUT("/events/:eventID", eventHandler.HandleUpdateEvent)
		events.PATCH("/events/:eventID/status", eventHandler.HandleChangeEventStatus)
		events.POST("/events/:eventID/tickets/free", ticketHandler.HandleIssueFreeTicket)
	}

	tickets := s.Router.Group(basePath, verifyJWT)
	{
		tickets.GET("/tickets", ticketHandler.HandleListMyTickets)
		tickets.GET("/tickets/:ticketID", ticketHandler.HandleGetTicket)
		tickets.GET("/tickets/:ticketID/qrcode", ticketHandler.HandleTicketQRCode)
		tickets.POST("/tickets/:ticketID/cancel", ticketHandler.HandleCancelTicket)
	}

	limiter := middleware.NewRateLimiter(s.Config.Scanner.RateLimitRPS, s.Config.Scanner.RateLimitBurst)
	scanner := s.Router.Group(basePath, verifyJWT, limiter.Limit())
	{
		scanner.POST("/scanner/validate", scannerHandler.HandleValidateTicket)
		scanner.POST("/scanner/verify", scannerHandler.HandleVerifyTicket)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Billetterie API"
	docs.SwaggerInfo.Description = "Event ticketing API: events, tickets, QR admission scanning."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
