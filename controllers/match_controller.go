// Package controllers holds the gin HTTP handlers.
// file: controllers/match_controller.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"codeclash/logger"
	"codeclash/middleware"
	"codeclash/models"
	"codeclash/services"
)

// PairingStore is the slice of persistence the pairing flow needs.
type PairingStore interface {
	UpsertUser(user *models.User) error
	FindQuestion(topic, difficulty string) (*models.Question, error)
	CreatePairing(team *models.Team, match *models.Match) error
}

// matchRequest is the body shared by the create and join actions. The
// original client sends Difficulty capitalised; keep the wire shape.
type matchRequest struct {
	Difficulty []string `json:"Difficulty"`
	Topic      []string `json:"topic"`
}

// MatchController drives the buddy-match pairing flow: create a joining
// code, join with one, check one, and render one as a QR invite.
type MatchController struct {
	Broker *services.JoinCodeBroker
	Store  PairingStore
}

// NewMatchController creates an instance of MatchController.
func NewMatchController(broker *services.JoinCodeBroker, store PairingStore) *MatchController {
	return &MatchController{Broker: broker, Store: store}
}

// HandleMatchmaking dispatches on the action query parameter.
func (mc *MatchController) HandleMatchmaking(c *gin.Context) {
	switch c.Query("action") {
	case "create":
		mc.createCode(c)
	case "join":
		mc.joinCode(c)
	case "check":
		mc.checkCode(c)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "unknown action"})
	}
}

func (mc *MatchController) createCode(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}

	if err := mc.upsertCaller(c); err != nil {
		logger.Error.Printf("createCode: failed to persist user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to create joining code"})
		return
	}

	entry := mc.Broker.Create(userID, req.Difficulty, req.Topic)

	session := sessions.Default(c)
	session.Set("matchId", entry.MatchID)
	if err := session.Save(); err != nil {
		logger.Error.Printf("createCode: error saving session for user %s: %v", userID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"joiningCode": entry.Code,
		"matchId":     entry.MatchID,
	})
}

func (mc *MatchController) joinCode(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	code := c.Query("code")

	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}

	entry, err := mc.Broker.Join(code, userID, req.Difficulty, req.Topic)
	if err != nil {
		c.JSON(joinStatus(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := mc.upsertCaller(c); err != nil {
		logger.Error.Printf("joinCode: failed to persist user %s: %v", userID, err)
		mc.Broker.Release(code)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to join match"})
		return
	}

	question, err := mc.Store.FindQuestion(first(entry.Topic), first(entry.Difficulty))
	if err != nil {
		logger.Error.Printf("joinCode: question lookup failed: %v", err)
		mc.Broker.Release(code)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to join match"})
		return
	}
	if question == nil {
		mc.Broker.Release(code)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No questions available"})
		return
	}

	team := &models.Team{
		PlayerOneID: entry.CreatorID,
		PlayerTwoID: userID,
		JoinCode:    entry.Code,
		IsPrivate:   true,
	}
	match := &models.Match{
		ID:         entry.MatchID,
		QuestionID: question.ID,
		Status:     models.MatchStatusActive,
	}
	if err := mc.Store.CreatePairing(team, match); err != nil {
		logger.Error.Printf("joinCode: failed to persist pairing for code %s: %v", code, err)
		mc.Broker.Release(code)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to join match"})
		return
	}

	session := sessions.Default(c)
	session.Set("matchId", entry.MatchID)
	if err := session.Save(); err != nil {
		logger.Error.Printf("joinCode: error saving session for user %s: %v", userID, err)
	}

	logger.Info.Printf("joinCode: user %s paired into match %s", userID, entry.MatchID)
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"matchId":    entry.MatchID,
		"teamId":     team.ID,
		"questionId": question.ID,
	})
}

func (mc *MatchController) checkCode(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	entry, err := mc.Broker.Check(c.Query("code"), userID)
	if err != nil {
		status := http.StatusNotFound
		if errors.Is(err, services.ErrNotCodeCreator) {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{"success": false, "message": err.Error()})
		return
	}

	resp := gin.H{
		"success":   true,
		"status":    "waiting",
		"expiresAt": entry.Expiry,
	}
	if entry.Matched {
		resp["status"] = "matched"
		resp["matchId"] = entry.MatchID
	}
	c.JSON(http.StatusOK, resp)
}

// ShowJoinCodeQR renders a joining code as a scannable PNG invite.
func (mc *MatchController) ShowJoinCodeQR(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "code is required"})
		return
	}

	png, err := services.GenerateJoinCodeQR(code, 256)
	if err != nil {
		logger.Error.Printf("ShowJoinCodeQR: failed to generate QR for code %s: %v", code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to generate QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// upsertCaller mirrors the identity claims into the users table.
func (mc *MatchController) upsertCaller(c *gin.Context) error {
	return mc.Store.UpsertUser(&models.User{
		ID:    c.GetString(middleware.ContextUserID),
		Name:  c.GetString(middleware.ContextUsername),
		Email: c.GetString(middleware.ContextEmail),
	})
}

// joinStatus maps broker errors onto response codes.
func joinStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrCodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrCodeExpired):
		return http.StatusGone
	case errors.Is(err, services.ErrAlreadyMatched):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func first(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}
