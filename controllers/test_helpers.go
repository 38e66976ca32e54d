// file: controllers/test_helpers.go
//go:build unit

package controllers

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"codeclash/middleware"
	"codeclash/models"
)

// setupTestRouter creates a gin engine with the cookie session middleware.
func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions("testsession", store))
	return router
}

// asUser stands in for the auth middleware, injecting a fixed identity.
func asUser(id, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Set(middleware.ContextUsername, name)
		c.Set(middleware.ContextEmail, name+"@example.com")
		c.Next()
	}
}

// withSessionMatch seeds the session the way a completed pairing would.
func withSessionMatch(matchID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set("matchId", matchID)
		_ = session.Save()
		c.Next()
	}
}

// fakePairingStore is an in-memory PairingStore and MatchReader.
type fakePairingStore struct {
	users        []*models.User
	question     *models.Question
	questionErr  error
	pairings     int
	pairingErr   error
	match        *models.Match
	matchErr     error
	createdTeam  *models.Team
	createdMatch *models.Match
}

func (f *fakePairingStore) UpsertUser(user *models.User) error {
	f.users = append(f.users, user)
	return nil
}

func (f *fakePairingStore) FindQuestion(string, string) (*models.Question, error) {
	return f.question, f.questionErr
}

func (f *fakePairingStore) CreatePairing(team *models.Team, match *models.Match) error {
	if f.pairingErr != nil {
		return f.pairingErr
	}
	f.pairings++
	team.ID = "team-1"
	match.TeamID = team.ID
	f.createdTeam = team
	f.createdMatch = match
	return nil
}

func (f *fakePairingStore) MatchWithQuestion(string) (*models.Match, error) {
	return f.match, f.matchErr
}
