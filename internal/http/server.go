package http

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/nklact/normaai/internal/auth"
	"github.com/nklact/normaai/internal/config"
	"github.com/nklact/normaai/internal/services"
	"github.com/nklact/normaai/internal/storage"
)

type Server struct {
	engine    *gin.Engine
	cfg       config.Config
	scheduler *services.CleanupScheduler
}

func NewServer(cfg config.Config) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	fm, err := storage.NewFileManager(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("init file manager: %w", err)
	}

	queue, err := storage.NewCleanupQueue(fm.QueuePath())
	if err != nil {
		return nil, fmt.Errorf("init cleanup queue: %w", err)
	}

	generator := services.NewDocumentGenerator(fm)
	scheduler := services.NewCleanupScheduler(queue, fm, cfg.ContractTTL, cfg.CleanupInterval)
	authorizer := auth.NewPlanAuthorizer(cfg.IndividualMonthlyLimit)
	pipeline := services.NewPipeline(generator, scheduler, authorizer, cfg.BaseURL)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger())
	engine.Use(MaxBodySize(cfg.MaxBodyBytes))
	engine.Use(CORS(cfg.AllowedOrigins))

	api := NewAPI(cfg, fm, pipeline, scheduler)
	registerRoutes(engine, api, cfg.JWTSecret)

	return &Server{engine: engine, cfg: cfg, scheduler: scheduler}, nil
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Scheduler() *services.CleanupScheduler {
	return s.scheduler
}

func (s *Server) Addr() string {
	return fmt.Sprintf(":%s", s.cfg.Port)
}
