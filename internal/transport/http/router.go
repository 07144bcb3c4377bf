package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"quizverse/internal/app"
	"quizverse/internal/content"
	"quizverse/internal/identity"
)

// RouterDeps groups everything the HTTP surface needs.
type RouterDeps struct {
	Player         *app.PlayerService
	Content        *content.Repository
	Cache          QuizInvalidator
	Verifier       *identity.Verifier
	Admin          *identity.AdminAuthenticator
	AllowedOrigins []string
	Log            zerolog.Logger
}

// NewRouter configures all routes with their middlewares.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(deps.Log.With().Str("component", "http").Logger()))

	// If AllowedOrigins is set, restrict to that list; otherwise allow all.
	corsConfig := cors.DefaultConfig()
	if len(deps.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = deps.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	ws := NewWSHandler(deps.Player, deps.AllowedOrigins, deps.Log)
	router.GET("/ws", gin.WrapF(ws.ServeWS))

	player := NewPlayerHandler(deps.Player, deps.Content)
	api := router.Group("/api")
	api.Use(resolveIdentity(deps.Verifier))
	{
		api.GET("/quizzes", player.Catalog)
		api.GET("/categories", player.Categories)
		api.GET("/subcategories", player.Subcategories)

		attempts := api.Group("/attempts")
		attempts.POST("", player.Start)
		attempts.GET("/:id", player.View)
		attempts.POST("/:id/answer", player.Answer)
		attempts.POST("/:id/mark", player.Mark)
		attempts.POST("/:id/goto", player.GoTo)
		attempts.POST("/:id/next", player.Next)
		attempts.POST("/:id/prev", player.Prev)
		attempts.POST("/:id/submit", player.Submit)
		attempts.DELETE("/:id", player.Exit)
	}

	admin := NewAdminHandler(deps.Admin, deps.Content, deps.Cache, deps.Log)
	api.POST("/admin/login", admin.Login)

	adminAPI := api.Group("/admin")
	adminAPI.Use(requireAdmin())
	{
		adminAPI.GET("/categories", admin.ListCategories)
		adminAPI.POST("/categories", admin.CreateCategory)
		adminAPI.DELETE("/categories/:id", admin.DeleteCategory)

		adminAPI.GET("/subcategories", admin.ListSubcategories)
		adminAPI.POST("/subcategories", admin.CreateSubcategory)
		adminAPI.DELETE("/subcategories/:id", admin.DeleteSubcategory)

		adminAPI.GET("/quizzes", admin.ListQuizzes)
		adminAPI.POST("/quizzes", admin.CreateQuiz)
		adminAPI.PUT("/quizzes/:id", admin.UpdateQuiz)
		adminAPI.DELETE("/quizzes/:id", admin.DeleteQuiz)
	}

	return router
}
