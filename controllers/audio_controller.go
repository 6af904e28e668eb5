package controllers

import (
	"errors"
	"log"
	"net/http"

	"clawcypher/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GenerateAudioRequest struct {
	VerseID string `json:"verse_id"`
	Text    string `json:"text"`
	Voice   string `json:"voice"`
}

// AudioController exposes the audio generation tracker over HTTP.
type AudioController struct {
	audio *services.AudioService
}

func NewAudioController(audio *services.AudioService) *AudioController {
	return &AudioController{audio: audio}
}

// GenerateAudio submits a rendering job for a verse (or for raw text with
// a voice label). A fresh submission answers 202; an existing reference
// answers 200.
func (ac *AudioController) GenerateAudio(c *gin.Context) {
	var req GenerateAudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	if req.VerseID == "" && req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing verse_id or text"})
		return
	}

	var result *services.SubmitResult
	var err error
	if req.VerseID != "" {
		var verseID primitive.ObjectID
		verseID, err = primitive.ObjectIDFromHex(req.VerseID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verse_id"})
			return
		}
		result, err = ac.audio.SubmitForVerse(c.Request.Context(), verseID)
	} else {
		result, err = ac.audio.SubmitRaw(c.Request.Context(), req.Text, req.Voice)
	}

	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Verse not found"})
			return
		}
		log.Printf("audio submission failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Audio generation failed", "message": err.Error()})
		return
	}

	if result.Cached {
		c.JSON(http.StatusOK, result)
		return
	}
	c.JSON(http.StatusAccepted, result)
}

// AudioStatus polls a verse's audio reference, or a raw job id.
func (ac *AudioController) AudioStatus(c *gin.Context) {
	rawVerseID := c.Query("verse_id")
	jobID := c.Query("job_id")

	if rawVerseID == "" && jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing verse_id or job_id query parameter"})
		return
	}

	var status *services.AudioStatus
	var err error
	if rawVerseID != "" {
		var verseID primitive.ObjectID
		verseID, err = primitive.ObjectIDFromHex(rawVerseID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verse_id"})
			return
		}
		status, err = ac.audio.Status(c.Request.Context(), verseID)
	} else {
		status, err = ac.audio.StatusByJob(c.Request.Context(), jobID)
	}

	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Verse not found"})
			return
		}
		log.Printf("audio status check failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Status check failed", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, status)
}
