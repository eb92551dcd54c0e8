package game

import (
	"context"
	goerrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"TDProject/logger"
	gamemodel "TDProject/module/game/model"
	playermodel "TDProject/module/player/model"
	"TDProject/tools/errs"

	"github.com/gin-gonic/gin"
)

// Players is the credential-store slice used to reject saves/loads for
// unknown players.
type Players interface {
	FindByID(ctx context.Context, id int64) (*playermodel.Player, error)
}

// States is the snapshot-store slice the handlers need.
type States interface {
	Load(ctx context.Context, playerID int64) (*gamemodel.Snapshot, error)
	Save(ctx context.Context, req *gamemodel.SaveRequest) (*gamemodel.Snapshot, error)
}

type Handler struct {
	players Players
	states  States
}

func NewHandler(players Players, states States) *Handler {
	return &Handler{players: players, states: states}
}

// Save handles POST /api/save. Missing fields retain previous values.
func (h *Handler) Save(c *gin.Context) {
	var req gamemodel.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PlayerID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player_id is required"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.players.FindByID(ctx, req.PlayerID); err != nil {
		if goerrors.Is(err, errs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
			return
		}
		logger.Errorf("[save] lookup player %d: %v", req.PlayerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if _, err := h.states.Save(ctx, &req); err != nil {
		logger.Errorf("[save] persist player %d: %v", req.PlayerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("game saved for player %d", req.PlayerID)})
}

// Load handles GET /api/load/:playerId.
func (h *Handler) Load(c *gin.Context) {
	playerID, err := strconv.ParseInt(c.Param("playerId"), 10, 64)
	if err != nil || playerID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player id"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.players.FindByID(ctx, playerID); err != nil {
		if goerrors.Is(err, errs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
			return
		}
		logger.Errorf("[load] lookup player %d: %v", playerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	snap, err := h.states.Load(ctx, playerID)
	if goerrors.Is(err, errs.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no saved game found for this player"})
		return
	}
	if err != nil {
		logger.Errorf("[load] snapshot player %d: %v", playerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, snap)
}
