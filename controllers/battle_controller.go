package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"clawcypher/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateBattleRequest struct {
	Bot1ID string `json:"bot1_id"`
	Bot2ID string `json:"bot2_id"`
}

type NextRoundRequest struct {
	BattleID string `json:"battle_id"`
}

// BattleController exposes the battle state machine over HTTP.
type BattleController struct {
	battles *services.BattleService
}

func NewBattleController(battles *services.BattleService) *BattleController {
	return &BattleController{battles: battles}
}

// CreateBattle starts a battle and returns the round-1 result.
func (bc *BattleController) CreateBattle(c *gin.Context) {
	var req CreateBattleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Bot1ID == "" || req.Bot2ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing bot IDs"})
		return
	}

	bot1ID, err1 := primitive.ObjectIDFromHex(req.Bot1ID)
	bot2ID, err2 := primitive.ObjectIDFromHex(req.Bot2ID)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bot IDs"})
		return
	}

	result, err := bc.battles.Create(c.Request.Context(), bot1ID, bot2ID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bots not found"})
			return
		}
		log.Printf("battle creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Battle failed", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// NextRound advances an in-progress battle by one round.
func (bc *BattleController) NextRound(c *gin.Context) {
	var req NextRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BattleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing battle_id"})
		return
	}

	battleID, err := primitive.ObjectIDFromHex(req.BattleID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid battle_id"})
		return
	}

	result, err := bc.battles.Advance(c.Request.Context(), battleID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBattleCompleted):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Battle already completed"})
		case errors.Is(err, services.ErrFinalRound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Battle has already reached final round"})
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Battle not found"})
		default:
			log.Printf("round generation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Round failed", "message": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBattle returns one battle with its verses.
func (bc *BattleController) GetBattle(c *gin.Context) {
	battleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid battle id"})
		return
	}

	detail, err := bc.battles.Get(c.Request.Context(), battleID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Battle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch battle"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// ListBattles returns recent battles, newest first.
func (bc *BattleController) ListBattles(c *gin.Context) {
	limit := int64(20)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	battles, err := bc.battles.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch battles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"battles": battles})
}
