package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"social-content/cmd/api/auth"
	"social-content/cmd/api/handlers"
	"social-content/cmd/api/middleware"
	"social-content/logger"
)

// Deps 는 라우터가 필요로 하는 핸들러와 인증기다.
type Deps struct {
	Posts    *handlers.PostHandler
	Articles *handlers.ArticleHandler
	Series   *handlers.SeriesHandler
	Search   *handlers.SearchHandler
	JWT      *auth.JWTManager
	Logger   logger.Logger

	// DeadLetters 가 nil 이면 dead-letter 조회 라우트를 열지 않는다.
	DeadLetters *handlers.DeadLetterHandler

	// Health 는 의존 저장소 상태를 확인한다. nil 이면 항상 정상이다.
	Health         func(ctx context.Context) error
	AllowedOrigins []string
}

// New 는 gin 엔진을 CORS 핸들러로 감싸 반환한다.
func New(d Deps) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestTrace(d.Logger))

	r.GET("/health", func(c *gin.Context) {
		if d.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if err := d.Health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// media-service 콜백은 내부망에서만 열린다.
	internal := r.Group("/internal/v1")
	internal.POST("/posts/:id/videos/processed", d.Posts.VideoProcessed)
	if d.DeadLetters != nil {
		internal.GET("/failed-process-logs", d.DeadLetters.List)
	}

	api := r.Group("/api/v1", auth.RequireActor(d.JWT))
	moderate := auth.RequireRole(auth.RoleModerator)
	{
		posts := api.Group("/posts")
		posts.POST("/:id/publish", d.Posts.Publish)
		posts.POST("/:id/schedule", d.Posts.Schedule)
		posts.PUT("/:id", d.Posts.Update)
		posts.PUT("/:id/autosave", d.Posts.AutoSave)
		posts.DELETE("/:id", d.Posts.Delete)
		posts.POST("/:id/hide", moderate, d.Posts.Hide)

		articles := api.Group("/articles")
		articles.POST("/:id/publish", d.Articles.Publish)
		articles.POST("/:id/schedule", d.Articles.Schedule)
		articles.PUT("/:id", d.Articles.Update)
		articles.PUT("/:id/autosave", d.Articles.AutoSave)
		articles.DELETE("/:id", d.Articles.Delete)
		articles.POST("/:id/hide", moderate, d.Articles.Hide)

		series := api.Group("/series")
		series.POST("", d.Series.Create)
		series.PUT("/:id", d.Series.Update)
		series.DELETE("/:id", d.Series.Delete)
		series.POST("/:id/hide", moderate, d.Series.Hide)
		series.POST("/:id/items", d.Series.AddItems())
		series.DELETE("/:id/items", d.Series.RemoveItems())
		series.PUT("/:id/items/order", d.Series.ReorderItems())

		api.GET("/search", d.Search.Search)
		api.GET("/search/communities", d.Search.CommunityCounts)
	}

	return cors.New(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
	}).Handler(r)
}
