package controller

import (
	"ctchen222/tictactoe-service/internal/api/models"
	"ctchen222/tictactoe-service/internal/api/response"
	"ctchen222/tictactoe-service/internal/api/service"
	"ctchen222/tictactoe-service/internal/apperror"
	"ctchen222/tictactoe-service/internal/validator"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GameController handles game-related HTTP requests.
type GameController struct {
	gameService service.GameService
}

// NewGameController creates a new GameController.
func NewGameController(gameService service.GameService) *GameController {
	validator.RegisterBindings()
	return &GameController{
		gameService: gameService,
	}
}

// Health reports that the service is up.
func (gc *GameController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}

// CreateGame handles the create game endpoint.
func (gc *GameController) CreateGame(c *gin.Context) {
	g, err := gc.gameService.CreateGame(c.Request.Context())
	if err != nil {
		gc.fail(c, err)
		return
	}

	response.CreatedResponse(c, g)
}

// GetGames lists every game, newest first.
func (gc *GameController) GetGames(c *gin.Context) {
	games, err := gc.gameService.GetGames(c.Request.Context())
	if err != nil {
		gc.fail(c, err)
		return
	}

	response.SuccessResponseList(c, games)
}

// GetGame returns a single game.
func (gc *GameController) GetGame(c *gin.Context) {
	var req models.GameIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		gc.fail(c, apperror.Validation(err))
		return
	}

	g, err := gc.gameService.GetGame(c.Request.Context(), req.GameID)
	if err != nil {
		gc.fail(c, err)
		return
	}

	response.SuccessResponse(c, g)
}

// MakeMove places the current player's mark on the game.
func (gc *GameController) MakeMove(c *gin.Context) {
	var uri models.GameIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		gc.fail(c, apperror.Validation(err))
		return
	}

	var req models.MakeMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		gc.fail(c, apperror.Validation(err))
		return
	}
	req.GameID = uri.GameID

	g, err := gc.gameService.MakeMove(c.Request.Context(), &req)
	if err != nil {
		gc.fail(c, err)
		return
	}

	response.SuccessResponse(c, g)
}

// ResetGame reverts a game to a fresh board.
func (gc *GameController) ResetGame(c *gin.Context) {
	var req models.GameIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		gc.fail(c, apperror.Validation(err))
		return
	}

	g, err := gc.gameService.ResetGame(c.Request.Context(), req.GameID)
	if err != nil {
		gc.fail(c, err)
		return
	}

	response.SuccessResponse(c, g)
}

// Stats summarises all games.
func (gc *GameController) Stats(c *gin.Context) {
	stats, err := gc.gameService.Stats(c.Request.Context())
	if err != nil {
		gc.fail(c, err)
		return
	}

	response.SuccessResponse(c, stats)
}

func (gc *GameController) fail(c *gin.Context, err error) {
	e := response.FromError(err)
	if e.Code >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "Request failed", "http.route", c.FullPath(), "error", err)
	}
	_ = c.Error(err)
	response.ErrorResponse(c, e.Code, e.Extras)
}
