// Package blogapi is the REST backend of the Clothes2Wear content platform.
// It serves posts, categories, images, quotes and newsletter subscriptions
// over Echo, with JWT-guarded write routes, an RSS feed and a sitemap.
package blogapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/blogapi/auth"
	"github.com/eringen/blogapi/cache"
	"github.com/eringen/blogapi/content"
	"github.com/eringen/blogapi/events"
	"github.com/eringen/blogapi/store"
)

// Gateway is the persistence layer the App runs on. *store.Store satisfies it.
type Gateway interface {
	content.PostGateway
	content.CategoryGateway
	content.ImageGateway
	content.QuoteGateway
	content.NewsletterGateway
	Ping() error
	Close() error
}

// App is the central application. It wires together the store, services,
// middleware and routes.
type App struct {
	Config   Config
	Echo     *echo.Echo
	Store    Gateway
	Cache    content.Cache
	Events   content.Publisher
	Verifier *auth.Verifier

	Posts       *content.PostService
	Categories  *content.CategoryService
	Images      *content.ImageService
	Quotes      *content.QuoteService
	Newsletters *content.NewsletterService

	limiter      *Limiter
	customRoutes []func(*App)
	closers      []func() error
	initialized  bool
}

// New creates a new App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init opens the backends and registers middleware and routes. Start calls
// it; tests call it directly and drive a.Echo with httptest.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if a.Config.JWTSecret == "" {
		return fmt.Errorf("blogapi: JWTSecret is required")
	}
	if err := a.Open(); err != nil {
		return err
	}

	a.limiter = NewLimiter(a.Config.RateLimit, a.Config.RateWindow)
	a.closers = append(a.closers, func() error { a.limiter.Stop(); return nil })

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// Open connects the store, the post cache and the event publisher and
// builds the services. Maintenance jobs use it without starting a server.
func (a *App) Open() error {
	if a.Posts != nil {
		return nil
	}

	if a.Store == nil {
		s, err := store.Open(a.Config.DBDriver, a.Config.DatabaseURL)
		if err != nil {
			return fmt.Errorf("blogapi: init store: %w", err)
		}
		a.Store = s
		a.closers = append(a.closers, s.Close)
	}

	if a.Cache == nil {
		if a.Config.RedisAddr != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			rc, err := cache.NewRedis(ctx, a.Config.RedisAddr, a.Config.RedisPassword, a.Config.CacheTTL)
			if err != nil {
				return fmt.Errorf("blogapi: init cache: %w", err)
			}
			a.Cache = rc
			a.closers = append(a.closers, rc.Close)
		} else {
			a.Cache = cache.NewMemory(a.Config.CacheTTL)
		}
	}

	if a.Events == nil {
		if a.Config.NATSURL != "" {
			pub, err := events.Connect(a.Config.NATSURL)
			if err != nil {
				return fmt.Errorf("blogapi: init events: %w", err)
			}
			a.Events = pub
			a.closers = append(a.closers, pub.Close)
		} else {
			a.Events = events.Nop{}
		}
	}

	a.Verifier = auth.NewVerifier(a.Config.JWTSecret)
	opts := []content.Option{
		content.WithCache(a.Cache),
		content.WithPublisher(a.Events),
		content.WithLogger(a.Echo.Logger),
	}
	a.Posts = content.NewPostService(a.Store, a.Verifier, a.Config.ImageBaseURL, opts...)
	a.Categories = content.NewCategoryService(a.Store, opts...)
	a.Images = content.NewImageService(a.Store, opts...)
	a.Quotes = content.NewQuoteService(a.Store, opts...)
	a.Newsletters = content.NewNewsletterService(a.Store, opts...)
	return nil
}

// Start initializes the app and starts the server.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo
	guard := a.requireAuth

	e.GET("/healthz", a.handleHealth)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.Static("/uploads", a.Config.UploadDir)

	api := e.Group("/api")

	posts := api.Group("/posts")
	posts.GET("", a.handleListPosts)
	posts.GET("/get-most-liked", a.handleMostLiked)
	posts.GET("/:id", a.handleGetPost, guard)
	posts.GET("/post/category-wise-post", a.handleCategoryWise)
	posts.GET("/latest/posts", a.handleLatest)
	posts.GET("/post-by-category/:slug/:page", a.handlePostsByCategory)
	posts.GET("/post/:slug", a.handlePostBySlug)
	posts.GET("/query", a.handleSearch)
	posts.GET("/get/tags", a.handleTags)
	posts.POST("", a.handleCreatePost, guard)
	posts.PUT("", a.handleUpdatePost, guard)
	posts.PUT("/like-post", a.handleLikePost)
	posts.PUT("/active/:id", a.handleSetStatus(content.StatusActive), guard)
	posts.PUT("/inactive/:id", a.handleSetStatus(content.StatusInactive), guard)
	posts.DELETE("/:id", a.handleDeletePost, guard)

	categories := api.Group("/categories")
	categories.GET("", a.handleListCategories, guard)
	categories.GET("/:id", a.handleGetCategory)
	categories.POST("", a.handleCreateCategory, guard)
	categories.PUT("", a.handleUpdateCategory, guard)
	categories.DELETE("/:id", a.handleDeleteCategory, guard)

	images := api.Group("/images")
	images.GET("", a.handleListImages, guard)
	images.GET("/:id", a.handleGetImage)
	images.POST("", a.handleCreateImage, guard)
	images.POST("/upload", a.handleImageUpload, guard)
	images.PUT("", a.handleUpdateImage, guard)
	images.DELETE("/:id", a.handleDeleteImage, guard)

	newsletters := api.Group("/newsletters")
	newsletters.GET("", a.handleListSubscribers, guard)
	newsletters.POST("", a.handleSubscribe)
	newsletters.DELETE("/:id", a.handleDeleteSubscriber, guard)

	quotes := api.Group("/quotes", guard)
	quotes.GET("", a.handleListQuotes)
	quotes.POST("", a.handleCreateQuote)
	quotes.PATCH("", a.handleUpdateQuote)
	quotes.DELETE("/:id", a.handleDeleteQuote)
}

// Close cleans up resources opened by Init. Call this when the app is
// shutting down.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
