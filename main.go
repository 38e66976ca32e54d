// main.go
package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"codeclash/config"
	"codeclash/controllers"
	"codeclash/database"
	"codeclash/logger"
	"codeclash/middleware"
	"codeclash/services"
	"codeclash/websocket"
)

// completionNotifier adapts the outcome payload onto the channel broadcast.
type completionNotifier struct {
	coordinator *websocket.Coordinator
}

func (n *completionNotifier) MatchCompleted(matchID string, outcome *services.MatchOutcome) {
	data := websocket.MatchCompletedData{
		MatchID:     matchID,
		IsTie:       outcome.IsTie,
		CompletedAt: time.Now().UnixMilli(),
	}
	if !outcome.IsTie && outcome.Winner != nil {
		data.WinnerID = outcome.Winner.UserID
		data.WinnerUsername = outcome.Winner.Username
		data.PassedTests = outcome.Winner.Metrics.PassedTests
		data.TotalTests = outcome.Winner.Metrics.TotalTests
		data.ExecutionTime = outcome.Winner.Metrics.ExecutionTime
	}
	for _, p := range outcome.AllParticipants {
		data.Participants = append(data.Participants, websocket.CompletedParticipant{
			UserID:   p.UserID,
			Username: p.Username,
			Score:    p.Score,
			Rank:     p.Rank,
		})
	}
	n.coordinator.NotifyMatchCompleted(matchID, data)
}

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn.Println("main: no .env file found, using environment")
	}
	cfg := config.Load()
	logger.SetLogLevel(cfg.Env)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Error.Fatalf("main: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Error.Fatalf("main: %v", err)
	}
	store := database.NewStore(db)

	if cfg.MetricsEnabled {
		websocket.EnableMetrics()
	}
	websocket.SetAllowedOrigins(cfg.AllowedOrigins)

	// channel plumbing
	registry := websocket.NewRegistry()
	presence := websocket.NewPresenceTable()
	coordinator := websocket.NewCoordinator(registry, presence)
	wsHandler := websocket.NewHandler(registry, coordinator)

	// domain services
	broker := services.NewJoinCodeBroker()
	broker.StartSweeper()
	defer broker.Stop()

	judge := services.NewJudge0Client(cfg.JudgeURL, cfg.JudgeAPIKey, cfg.JudgeAPIHost)
	outcomes := services.NewOutcomeService(store)
	submissions := services.NewSubmissionService(store, judge, outcomes, &completionNotifier{coordinator: coordinator})

	matchController := controllers.NewMatchController(broker, store)
	playgroundController := controllers.NewPlaygroundController(submissions, store)

	router := gin.Default()

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("codeclash", sessionStore))

	router.GET("/health", controllers.Health)
	router.GET("/ws", func(c *gin.Context) {
		wsHandler.ServeWs(c.Writer, c.Request)
	})

	protected := router.Group("/", middleware.RequireAuth(cfg.JWTSecret))
	{
		protected.POST("/match-with-your-buddy", matchController.HandleMatchmaking)
		protected.GET("/match-with-your-buddy/qr", matchController.ShowJoinCodeQR)
		protected.POST("/playground", playgroundController.SubmitSolution)
		protected.GET("/playground/:matchId", playgroundController.ShowMatch)
	}

	logger.Info.Printf("main: listening on :%s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		logger.Error.Fatalf("main: failed to run server: %v", err)
	}
}
