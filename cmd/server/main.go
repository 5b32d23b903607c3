package main

import (
	"html/template"
	"log"
	"os"
	"path/filepath"
	"yatube/internal/cache"
	"yatube/internal/db"
	"yatube/internal/feed"
	"yatube/internal/router"
	"yatube/internal/services"
	"yatube/internal/store"
	"yatube/internal/utils"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading env vars from system")
	}

	utils.InitLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_PATH"))
	defer utils.Logger.Sync()

	// Initialize Database
	database := db.Init()
	dataStore := store.New(database)
	composer := feed.New(dataStore)
	pageCache := newCache()
	storage := newImageStorage()

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	cookieStore := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("yatube_session", cookieStore))

	// Load Templates using Multitemplate to avoid collision and allow handler names
	r.HTMLRender = loadTemplates("./web/templates")

	// Static Assets & locally stored media
	r.Static("/static", "./web/static")
	if mediaRoot := mediaRoot(); mediaRoot != "" {
		r.Static("/media", mediaRoot)
	}

	// Routes
	router.RegisterRoutes(r, router.Deps{
		Store:   dataStore,
		Feed:    composer,
		Cache:   pageCache,
		Storage: storage,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.Sugar.Infof("yatube server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		utils.Sugar.Fatalf("server stopped: %v", err)
	}
}

// newCache picks Redis when configured, in-process LRU otherwise.
func newCache() cache.Cache {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       utils.StringToInt(os.Getenv("REDIS_DB")),
		})
		utils.Sugar.Infof("using redis page cache at %s", addr)
		return cache.NewRedis(client)
	}

	memory, err := cache.NewMemory(500)
	if err != nil {
		utils.Sugar.Fatalf("failed to create memory cache: %v", err)
	}
	return memory
}

// newImageStorage picks MinIO when configured, local disk otherwise.
func newImageStorage() services.ImageStorage {
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		bucket := os.Getenv("MINIO_BUCKET")
		if bucket == "" {
			bucket = "yatube"
		}
		storage, err := services.NewMinioStorage(
			endpoint,
			os.Getenv("MINIO_ACCESS_KEY"),
			os.Getenv("MINIO_SECRET_KEY"),
			bucket,
			os.Getenv("MINIO_USE_SSL") == "true",
		)
		if err != nil {
			utils.Sugar.Fatalf("failed to init minio storage: %v", err)
		}
		utils.Sugar.Infof("using minio image storage at %s", endpoint)
		return storage
	}
	return services.NewLocalStorage(mediaRoot())
}

func mediaRoot() string {
	if os.Getenv("MINIO_ENDPOINT") != "" {
		return ""
	}
	root := os.Getenv("MEDIA_ROOT")
	if root == "" {
		root = "./media"
	}
	return root
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	// Helper to assemble files
	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+1)
		files = append(files, layouts...)
		files = append(files, view)
		return files
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
	}

	// Manual registration to ensure keys match handler expectation
	// Posts
	r.AddFromFilesFuncs("posts/index.html", funcMap, assemble(templatesDir+"/views/posts/index.html")...)
	r.AddFromFilesFuncs("posts/group_list.html", funcMap, assemble(templatesDir+"/views/posts/group_list.html")...)
	r.AddFromFilesFuncs("posts/profile.html", funcMap, assemble(templatesDir+"/views/posts/profile.html")...)
	r.AddFromFilesFuncs("posts/post_detail.html", funcMap, assemble(templatesDir+"/views/posts/post_detail.html")...)
	r.AddFromFilesFuncs("posts/create_post.html", funcMap, assemble(templatesDir+"/views/posts/create_post.html")...)
	r.AddFromFilesFuncs("posts/follow.html", funcMap, assemble(templatesDir+"/views/posts/follow.html")...)

	// Auth
	r.AddFromFilesFuncs("auth/login.html", funcMap, assemble(templatesDir+"/views/auth/login.html")...)
	r.AddFromFilesFuncs("auth/signup.html", funcMap, assemble(templatesDir+"/views/auth/signup.html")...)

	// Error
	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)

	return r
}
