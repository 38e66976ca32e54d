// file: controllers/playground_controller.go
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
	"codeclash/websocket"
)

// MatchReader loads a match for the playground page.
type MatchReader interface {
	MatchWithQuestion(matchID string) (*models.Match, error)
}

// submitRequest is the submission body: the answer source plus its language.
type submitRequest struct {
	Answer   string `json:"answer" binding:"required"`
	Language string `json:"language" binding:"required"`
}

// PlaygroundController accepts code submissions and serves the match view.
type PlaygroundController struct {
	Submissions *services.SubmissionService
	Store       MatchReader
}

// NewPlaygroundController creates an instance of PlaygroundController.
func NewPlaygroundController(submissions *services.SubmissionService, store MatchReader) *PlaygroundController {
	return &PlaygroundController{Submissions: submissions, Store: store}
}

// SubmitSolution runs the caller's code against the match's test cases. The
// match id comes from the session set at pairing time, never from the body.
func (pc *PlaygroundController) SubmitSolution(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	session := sessions.Default(c)
	matchID, ok := session.Get("matchId").(string)
	if !ok || matchID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "no active match in session"})
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "answer and language are required"})
		return
	}

	result, err := pc.Submissions.Submit(c.Request.Context(), matchID, userID, req.Answer, req.Language)
	if err != nil {
		status, message := submitStatus(err)
		logger.Warn.Printf("SubmitSolution: submission by %s for match %s rejected: %v", userID, matchID, err)
		c.JSON(status, gin.H{"success": false, "message": message})
		return
	}

	websocket.PublishSubmissionProcessed(matchID)

	matchResult := gin.H{"isComplete": false}
	if result.MatchResult != nil {
		matchResult = gin.H{
			"isComplete":      true,
			"isTie":           result.MatchResult.IsTie,
			"winner":          result.MatchResult.Winner,
			"loser":           result.MatchResult.Loser,
			"allParticipants": result.MatchResult.AllParticipants,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"solutionId":  result.SolutionID,
		"language":    result.Language,
		"submittedAt": result.SubmittedAt,
		"execution":   result.Execution,
		"testResults": result.TestResults,
		"matchResult": matchResult,
	})
}

// ShowMatch returns the match and its question for the playground view.
func (pc *PlaygroundController) ShowMatch(c *gin.Context) {
	matchID := c.Param("matchId")

	match, err := pc.Store.MatchWithQuestion(matchID)
	if err != nil {
		logger.Error.Printf("ShowMatch: failed to load match %s: %v", matchID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load match"})
		return
	}
	if match == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "match not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "match": match})
}

// submitStatus maps pipeline errors onto response codes.
func submitStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrMatchNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrUnsupportedLanguage):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrNoTestCases):
		return http.StatusInternalServerError, err.Error()
	default:
		return http.StatusInternalServerError, "submission failed"
	}
}
