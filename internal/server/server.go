package server

import (
	"ctchen222/tictactoe-service/internal/api/controller"
	"ctchen222/tictactoe-service/internal/config"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("server")

type Server struct {
	engine *gin.Engine
	cfg    config.HTTP
}

func NewServer(cfg config.HTTP, gameController *controller.GameController) *Server {
	engine := gin.New()
	engine.Use(
		Recovery(),
		RequestID(),
		Tracing(),
		AccessLog(),
		CORS(cfg.AllowedOrigins),
	)

	s := &Server{engine: engine, cfg: cfg}
	s.RegisterHandlers(gameController)
	return s
}

func (s *Server) RegisterHandlers(gc *controller.GameController) {
	s.engine.GET("/healthz", gc.Health)

	games := s.engine.Group("/api/games")
	{
		games.POST("", gc.CreateGame)
		games.GET("", gc.GetGames)
		games.GET("/stats", gc.Stats)
		games.GET("/:id", gc.GetGame)
		games.POST("/:id/moves", gc.MakeMove)
		games.POST("/:id/reset", gc.ResetGame)
	}
}

// Engine exposes the gin engine, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// HTTPServer wraps the engine in an http.Server configured from cfg.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
}
