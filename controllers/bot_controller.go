package controllers

import (
	"errors"
	"net/http"

	"clawcypher/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateBotRequest struct {
	Name        string `json:"name" binding:"required"`
	Personality string `json:"personality" binding:"required"`
}

// BotController exposes the bot roster and leaderboard.
type BotController struct {
	bots *services.BotService
}

func NewBotController(bots *services.BotService) *BotController {
	return &BotController{bots: bots}
}

// CreateBot registers a new bot at the default rating.
func (bc *BotController) CreateBot(c *gin.Context) {
	var req CreateBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	bot, err := bc.bots.Create(c.Request.Context(), req.Name, req.Personality)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create bot: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, bot)
}

// ListBots returns the roster ordered by rating.
func (bc *BotController) ListBots(c *gin.Context) {
	bots, err := bc.bots.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bots"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bots": bots})
}

// GetBot returns one bot.
func (bc *BotController) GetBot(c *gin.Context) {
	botID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bot id"})
		return
	}

	bot, err := bc.bots.Get(c.Request.Context(), botID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bot not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bot"})
		return
	}

	c.JSON(http.StatusOK, bot)
}

// GetLeaderboard returns all bots ranked by rating.
func (bc *BotController) GetLeaderboard(c *gin.Context) {
	entries, err := bc.bots.Leaderboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
