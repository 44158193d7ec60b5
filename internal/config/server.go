package config

import (
	"fmt"
	"os"

	"AssistantGolang/database/postgres"
	assistantHandler "AssistantGolang/internal/api/assistant/handler"
	assistantRepository "AssistantGolang/internal/api/assistant/repository"
	assistantService "AssistantGolang/internal/api/assistant/service"
	memoryHandler "AssistantGolang/internal/api/memory/handler"
	memoryRepository "AssistantGolang/internal/api/memory/repository"
	memoryService "AssistantGolang/internal/api/memory/service"
	reminderHandler "AssistantGolang/internal/api/reminder/handler"
	reminderRepository "AssistantGolang/internal/api/reminder/repository"
	reminderService "AssistantGolang/internal/api/reminder/service"
	"AssistantGolang/internal/middleware"
	"AssistantGolang/internal/scheduler"
	"AssistantGolang/internal/tool"
	"AssistantGolang/pkg/bcrypt"
	"AssistantGolang/pkg/calendar"
	"AssistantGolang/pkg/gemini"
	"AssistantGolang/pkg/nlp"
	"AssistantGolang/pkg/redis"
	"AssistantGolang/pkg/s3"
	"AssistantGolang/pkg/utils"
	"AssistantGolang/pkg/voicecall"
	websocketPkg "AssistantGolang/pkg/websocket"
	"AssistantGolang/pkg/whatsapp"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine         *fiber.App
	db             *sqlx.DB
	log            *logrus.Logger
	middleware     middleware.Middleware
	validator      *validator.Validate
	utils          utils.IUtils
	bcryptUtils    bcrypt.IBcrypt
	handlers       []handler
	redisServer    redis.IRedis
	agentClient    websocketPkg.IAgentClient
	whatsappClient whatsapp.IMessageSender
	voiceCaller    voicecall.IVoiceCaller
	geminiClient   gemini.IGemini
	calendarClient calendar.ICalendar
	s3Client       s3.ItfS3
	scheduler      *scheduler.Scheduler
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithAgentClient(agentClient websocketPkg.IAgentClient) ServerOption {
	return func(s *Server) error {
		s.agentClient = agentClient
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithWhatsappClient() ServerOption {
	return func(s *Server) error {
		client, err := whatsapp.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize WhatsApp client: %v", err)
			}
			return fmt.Errorf("failed to create WhatsApp client: %w", err)
		}
		s.whatsappClient = client
		return nil
	}
}

func WithVoiceCaller() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before voice caller")
		}
		s.voiceCaller = voicecall.New(s.log)
		return nil
	}
}

func WithGeminiClient() ServerOption {
	return func(s *Server) error {
		client, err := gemini.NewGeminiClient()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create Gemini client: %v", err)
			}
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}
		s.geminiClient = client
		return nil
	}
}

func WithCalendarClient() ServerOption {
	return func(s *Server) error {
		client, err := calendar.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create calendar client: %v", err)
			}
			return fmt.Errorf("failed to create calendar client: %w", err)
		}
		s.calendarClient = client
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func WithBcryptUtils() ServerOption {
	return func(s *Server) error {
		s.bcryptUtils = bcrypt.New()
		return nil
	}
}

func (s *Server) RegisterHandler() error {
	// Memory Domain
	memoryRepo := memoryRepository.New(s.db, s.log)
	memoryServices := memoryService.NewMemoryService(s.log, memoryRepo, s.utils)
	contextServices := memoryService.NewContextService(s.log, memoryRepo, s.redisServer, memoryService.DefaultRankingPolicy())
	memoryHandlers := memoryHandler.New(s.log, s.validator, s.middleware, memoryServices)

	// Reminder Domain
	reminderRepo := reminderRepository.New(s.db, s.log)
	reminderServices := reminderService.NewReminderService(s.log, reminderRepo, s.whatsappClient, s.voiceCaller, s.utils)
	reminderHandlers := reminderHandler.New(s.log, s.validator, s.middleware, reminderServices)

	// Tooling
	registry := tool.NewRegistry(s.log)
	registry.Register(tool.NewCalculator())
	registry.Register(tool.NewWebSearch())
	registry.Register(tool.NewScreenshot(s.agentClient, s.geminiClient))
	registry.Register(tool.NewScriptRunner())
	registry.Register(tool.NewSelfModify(memoryServices, s.utils))

	// Assistant Domain
	assistantRepo := assistantRepository.New(s.redisServer, s.bcryptUtils, s.utils, s.log, 0, 0)
	reminderClient, err := reminderRepo.NewClient(false)
	if err != nil {
		return fmt.Errorf("failed to create reminder repository client: %w", err)
	}
	assistantServices := assistantService.NewAssistantService(
		s.log, assistantRepo, nlp.NewProcessor(), registry,
		memoryServices, contextServices, reminderServices,
		s.geminiClient, s.calendarClient, s.whatsappClient,
		reminderClient.User, s.s3Client, s.utils,
	)
	assistantHandlers := assistantHandler.New(s.log, s.validator, s.middleware, assistantServices)

	s.scheduler = scheduler.New(s.log, reminderServices, memoryServices, assistantServices, 0)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, assistantHandlers, memoryHandlers, reminderHandlers)

	return nil
}

func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())

	router := s.engine.Group("/api/v1")
	router.Use(s.middleware.NewRateLimiter)

	for _, h := range s.handlers {
		h.Start(router)
	}

	if s.scheduler != nil {
		s.scheduler.Start()
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	if err := s.engine.Listen(fmt.Sprintf(":%s", port)); err != nil {
		s.Shutdown()
		return err
	}

	return nil
}

func (s *Server) Shutdown() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if s.whatsappClient != nil {
		s.whatsappClient.Disconnect()
	}
	if s.agentClient != nil {
		s.agentClient.Close()
	}
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
