package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/checkers-backend/internal/apperror"
	"github.com/rocketscienceinc/checkers-backend/internal/entity"
	"github.com/rocketscienceinc/checkers-backend/internal/game"
)

const (
	modePlay      = "PLAY"
	modeSpectator = "SPECTATOR"
	modeReplay    = "REPLAY"
)

var ErrBadRequest = errors.New("bad request")

type gameCenter interface {
	NewGame(ctx context.Context, red, white entity.Player) (entity.GameID, error)
	GetGame(ctx context.Context, id entity.GameID) (*game.Game, error)
	RemoveGame(ctx context.Context, id entity.GameID) error
	CurrentGames(ctx context.Context) ([]game.Snapshot, error)

	RequestMove(ctx context.Context, id entity.GameID, playerID string, move entity.Move) error
	SubmitTurn(ctx context.Context, id entity.GameID, playerID string) (game.Snapshot, error)
	BackupMove(ctx context.Context, id entity.GameID, playerID string) error
	Resign(ctx context.Context, id entity.GameID, playerID string) (entity.ReplayID, error)

	AddToPreviousGames(ctx context.Context, g *game.Game, id entity.GameID) (entity.ReplayID, error)
	GetReplayGame(ctx context.Context, id entity.ReplayID) (*game.ReplayGame, error)
	SortPreviousGames(ctx context.Context) ([]*game.ReplayGame, error)
}

type spectatorHub interface {
	ServeWS(w http.ResponseWriter, r *http.Request, gameID entity.GameID, orientation entity.Color, initial *entity.GameEvent)
}

type handlers struct {
	logger *slog.Logger
	center gameCenter
	hub    spectatorHub
}

func newHandlers(logger *slog.Logger, center gameCenter, hub spectatorHub) *handlers {
	return &handlers{
		logger: logger.With("component", "rest"),
		center: center,
		hub:    hub,
	}
}

type newGameRequest struct {
	Red   entity.Player `json:"red"`
	White entity.Player `json:"white"`
}

type playerRequest struct {
	Player string `json:"player" binding:"required"`
}

type moveRequest struct {
	Player string          `json:"player" binding:"required"`
	Start  entity.Position `json:"start"`
	End    entity.Position `json:"end"`
}

type gameSummary struct {
	ID          entity.GameID `json:"id"`
	Red         entity.Player `json:"red"`
	White       entity.Player `json:"white"`
	ActiveColor entity.Color  `json:"active_color"`
	Turns       int           `json:"turns"`
}

type gameResponse struct {
	gameSummary
	Mode        string          `json:"mode"`
	ViewerColor entity.Color    `json:"viewer_color,omitempty"`
	State       string          `json:"state"`
	Pending     []entity.Move   `json:"pending"`
	Board       game.BoardView  `json:"board"`
	Over        bool            `json:"over"`
	Winner      entity.Color    `json:"winner,omitempty"`
	ReplayID    entity.ReplayID `json:"replay_id,omitempty"`
}

type replaySummary struct {
	ID         entity.ReplayID `json:"id"`
	GameID     entity.GameID   `json:"game_id"`
	Red        entity.Player   `json:"red"`
	White      entity.Player   `json:"white"`
	Winner     entity.Color    `json:"winner,omitempty"`
	Turns      int             `json:"turns"`
	FinishedAt time.Time       `json:"finished_at"`
}

type replayResponse struct {
	replaySummary
	Mode    string         `json:"mode"`
	Turn    int            `json:"turn"`
	History []entity.Turn  `json:"history"`
	Board   game.BoardView `json:"board"`
}

func (that *handlers) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

func (that *handlers) CreateGame(c *gin.Context) {
	var req newGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		that.writeError(c, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	id, err := that.center.NewGame(c.Request.Context(), req.Red, req.White)
	if err != nil {
		that.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (that *handlers) ListGames(c *gin.Context) {
	snapshots, err := that.center.CurrentGames(c.Request.Context())
	if err != nil {
		that.writeError(c, err)
		return
	}

	summaries := make([]gameSummary, 0, len(snapshots))
	for _, snapshot := range snapshots {
		summaries = append(summaries, newGameSummary(snapshot))
	}

	c.JSON(http.StatusOK, summaries)
}

func (that *handlers) GetGame(c *gin.Context) {
	g, err := that.center.GetGame(c.Request.Context(), gameID(c))
	if err != nil {
		that.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newGameResponse(g.Snapshot(), c.Query("viewer")))
}

func (that *handlers) RemoveGame(c *gin.Context) {
	if err := that.center.RemoveGame(c.Request.Context(), gameID(c)); err != nil {
		that.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (that *handlers) MakeMove(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		that.writeError(c, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	ctx := c.Request.Context()
	id := gameID(c)

	if err := that.center.RequestMove(ctx, id, req.Player, entity.Move{Start: req.Start, End: req.End}); err != nil {
		that.writeError(c, err)
		return
	}

	that.respondWithGame(c, id, req.Player)
}

// SubmitTurn commits the turn and archives the game when the opponent is left without a move.
func (that *handlers) SubmitTurn(c *gin.Context) {
	log := that.logger.With("method", "SubmitTurn")

	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		that.writeError(c, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	ctx := c.Request.Context()
	id := gameID(c)

	snapshot, err := that.center.SubmitTurn(ctx, id, req.Player)
	if err != nil {
		that.writeError(c, err)
		return
	}

	response := newGameResponse(snapshot, req.Player)

	if snapshot.Over {
		g, err := that.center.GetGame(ctx, id)
		if err != nil {
			that.writeError(c, err)
			return
		}

		replayID, err := that.center.AddToPreviousGames(ctx, g, id)
		if err != nil {
			that.writeError(c, err)
			return
		}

		log.Info("game over", "game_id", id, "winner", snapshot.Winner, "replay_id", replayID)
		response.ReplayID = replayID
	}

	c.JSON(http.StatusOK, response)
}

func (that *handlers) Backup(c *gin.Context) {
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		that.writeError(c, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	ctx := c.Request.Context()
	id := gameID(c)

	if err := that.center.BackupMove(ctx, id, req.Player); err != nil {
		that.writeError(c, err)
		return
	}

	that.respondWithGame(c, id, req.Player)
}

func (that *handlers) Resign(c *gin.Context) {
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		that.writeError(c, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	replayID, err := that.center.Resign(c.Request.Context(), gameID(c), req.Player)
	if err != nil {
		that.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"replay_id": replayID})
}

// Watch upgrades to a websocket feed of the game, oriented for the viewer.
func (that *handlers) Watch(c *gin.Context) {
	id := gameID(c)

	g, err := that.center.GetGame(c.Request.Context(), id)
	if err != nil {
		that.writeError(c, err)
		return
	}

	orientation, ok := g.ColorOf(c.Query("viewer"))
	if !ok {
		orientation = entity.Red
	}

	snapshot := g.Snapshot()
	initial := &entity.GameEvent{
		Kind:        entity.EventGameCreated,
		GameID:      snapshot.ID,
		Red:         snapshot.Red,
		White:       snapshot.White,
		ActiveColor: snapshot.ActiveColor,
		Board:       &snapshot.Board,
		At:          time.Now(),
	}

	that.hub.ServeWS(c.Writer, c.Request, id, orientation, initial)
}

func (that *handlers) ListReplays(c *gin.Context) {
	replays, err := that.center.SortPreviousGames(c.Request.Context())
	if err != nil {
		that.writeError(c, err)
		return
	}

	summaries := make([]replaySummary, 0, len(replays))
	for _, replay := range replays {
		summaries = append(summaries, newReplaySummary(replay))
	}

	c.JSON(http.StatusOK, summaries)
}

// GetReplay shows the board after ?turn=n, or the final board when turn is omitted.
func (that *handlers) GetReplay(c *gin.Context) {
	id, err := entity.ParseReplayID(c.Param("id"))
	if err != nil {
		that.writeError(c, fmt.Errorf("%w: replay id %q: %w", ErrBadRequest, c.Param("id"), err))
		return
	}

	replay, err := that.center.GetReplayGame(c.Request.Context(), id)
	if err != nil {
		that.writeError(c, err)
		return
	}

	turn := replay.TurnCount()
	if raw, ok := c.GetQuery("turn"); ok {
		if turn, err = strconv.Atoi(raw); err != nil {
			that.writeError(c, fmt.Errorf("%w: turn %q: %w", ErrBadRequest, raw, err))
			return
		}
	}

	board, err := replay.BoardAt(turn)
	if err != nil {
		that.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, replayResponse{
		replaySummary: newReplaySummary(replay),
		Mode:          modeReplay,
		Turn:          turn,
		History:       replay.Turns(),
		Board:         game.NewBoardView(board, entity.Red),
	})
}

func (that *handlers) respondWithGame(c *gin.Context, id entity.GameID, viewer string) {
	g, err := that.center.GetGame(c.Request.Context(), id)
	if err != nil {
		that.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newGameResponse(g.Snapshot(), viewer))
}

func (that *handlers) writeError(c *gin.Context, err error) {
	log := that.logger.With("method", "writeError")

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", "path", c.FullPath(), "error", err)
	}

	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrIllegalMove):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrInvalidTurnState), errors.Is(err, apperror.ErrGameAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrInvalidPlayer), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func gameID(c *gin.Context) entity.GameID {
	return entity.GameID(c.Param("id"))
}

func newGameSummary(snapshot game.Snapshot) gameSummary {
	return gameSummary{
		ID:          snapshot.ID,
		Red:         snapshot.Red,
		White:       snapshot.White,
		ActiveColor: snapshot.ActiveColor,
		Turns:       len(snapshot.Turns),
	}
}

// newGameResponse picks the play mode from the viewer: participants see their own side, everyone else spectates from red.
func newGameResponse(snapshot game.Snapshot, viewer string) gameResponse {
	mode := modeSpectator
	orientation := entity.Red

	var viewerColor entity.Color
	switch {
	case snapshot.Red.Is(viewer):
		mode, viewerColor = modePlay, entity.Red
	case snapshot.White.Is(viewer):
		mode, viewerColor, orientation = modePlay, entity.White, entity.White
	}

	return gameResponse{
		gameSummary: newGameSummary(snapshot),
		Mode:        mode,
		ViewerColor: viewerColor,
		State:       snapshot.State.String(),
		Pending:     snapshot.Pending,
		Board:       game.NewBoardView(snapshot.Board, orientation),
		Over:        snapshot.Over,
		Winner:      snapshot.Winner,
	}
}

func newReplaySummary(replay *game.ReplayGame) replaySummary {
	return replaySummary{
		ID:         replay.ID(),
		GameID:     replay.GameID(),
		Red:        replay.RedPlayer(),
		White:      replay.WhitePlayer(),
		Winner:     replay.Winner(),
		Turns:      replay.TurnCount(),
		FinishedAt: replay.FinishedAt(),
	}
}
