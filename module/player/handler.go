package player

import (
	"context"
	goerrors "errors"
	"net/http"

	"TDProject/logger"
	"TDProject/module/player/model"
	"TDProject/tools/errs"
	"TDProject/tools/security"

	"github.com/gin-gonic/gin"
)

// Credentials is the slice of the store the REST handlers need.
type Credentials interface {
	Create(ctx context.Context, username, passwordHash string) (int64, error)
	FindByUsername(ctx context.Context, username string) (*model.Player, error)
}

type Handler struct {
	store  Credentials
	tokens *security.Service
}

func NewHandler(store Credentials, tokens *security.Service) *Handler {
	return &Handler{store: store, tokens: tokens}
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /api/register.
func (h *Handler) Register(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	hash, err := model.HashPassword(req.Password)
	if err != nil {
		logger.Errorf("[register] hash password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	id, err := h.store.Create(c.Request.Context(), req.Username, hash)
	if goerrors.Is(err, errs.ErrDuplicate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username already exists"})
		return
	}
	if err != nil {
		logger.Errorf("[register] create player %q: %v", req.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	logger.Infof("[register] player %q registered id=%d", req.Username, id)
	c.JSON(http.StatusCreated, gin.H{"message": "player registered successfully"})
}

// Login handles POST /api/login and issues a 24h token on success.
func (h *Handler) Login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	p, err := h.store.FindByUsername(c.Request.Context(), req.Username)
	if goerrors.Is(err, errs.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		logger.Errorf("[login] lookup %q: %v", req.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !p.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, _, err := h.tokens.Issue(p.ID)
	if err != nil {
		logger.Errorf("[login] issue token for player %d: %v", p.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
