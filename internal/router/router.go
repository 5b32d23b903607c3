package router

import (
	"yatube/internal/cache"
	"yatube/internal/feed"
	"yatube/internal/handlers"
	"yatube/internal/middleware"
	"yatube/internal/services"
	"yatube/internal/store"

	"github.com/gin-gonic/gin"
)

// Deps carries everything the handlers need. Assembled in main, or by tests
// with in-memory backends.
type Deps struct {
	Store   *store.Store
	Feed    *feed.Composer
	Cache   cache.Cache
	Storage services.ImageStorage
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	r.Use(middleware.LoadUser(deps.Store))

	// Handlers
	authHandler := handlers.NewAuthHandler(deps.Store)
	postHandler := handlers.NewPostHandler(deps.Store, deps.Feed, deps.Storage)
	followHandler := handlers.NewFollowHandler(deps.Store, deps.Feed)

	// Public Routes
	r.GET("/",
		middleware.CachePage(deps.Cache, middleware.IndexCacheKey, middleware.IndexCacheTTL),
		postHandler.Index) // global timeline, the only cached view
	r.GET("/group/:slug", postHandler.GroupPosts)
	r.GET("/profile/:username", postHandler.Profile)
	r.GET("/posts/:id", postHandler.Detail)

	r.GET("/auth/signup", authHandler.ShowSignup)
	r.POST("/auth/signup", authHandler.Signup)
	r.GET("/auth/login", authHandler.ShowLogin)
	r.POST("/auth/login", authHandler.Login)
	r.GET("/auth/logout", authHandler.Logout)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/create", postHandler.ShowCreate)
		authorized.POST("/create", postHandler.Create)
		authorized.GET("/posts/:id/edit", postHandler.ShowEdit)
		authorized.POST("/posts/:id/edit", postHandler.Edit)
		authorized.POST("/posts/:id/comment", postHandler.AddComment)
		authorized.POST("/posts/:id/delete", postHandler.Delete)

		authorized.GET("/follow", followHandler.Index)
		authorized.POST("/profile/:username/follow", followHandler.Follow)
		authorized.POST("/profile/:username/unfollow", followHandler.Unfollow)
	}
}
