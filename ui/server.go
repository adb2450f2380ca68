package ui

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mlstudio/app"
	"mlstudio/internal"
	apperrors "mlstudio/internal/errors"
)

// Config holds HTTP server settings
type Config struct {
	MaxUploadBytes   int64
	FetchTimeout     time.Duration // for POST /upload-url
	AllowPrivateURLs bool          // let /upload-url reach loopback and private networks
}

// Server is the ML Studio JSON API
type Server struct {
	router   *gin.Engine
	studio   *app.StudioService
	training *app.TrainingService
	config   Config
	fetcher  *http.Client
	logger   *internal.Logger
}

// NewServer creates the API server and registers every route
func NewServer(config Config, studio *app.StudioService, training *app.TrainingService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 32 << 20
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = 30 * time.Second
	}

	s := &Server{
		router:   gin.New(),
		studio:   studio,
		training: training,
		config:   config,
		fetcher:  newFetcher(config),
		logger:   logger.With("api"),
	}
	s.router.MaxMultipartMemory = config.MaxUploadBytes

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(cors())
}

// cors lets the browser frontend call the API from another origin
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	// Loading
	s.router.POST("/upload", s.handleUpload)
	s.router.POST("/upload-url", s.handleUploadURL)
	s.router.POST("/load", s.handleLoad)
	s.router.GET("/demos", s.handleDemos)
	s.router.POST("/demo/:name", s.handleDemo)

	// Inspection
	s.router.GET("/columns", s.handleColumns)
	s.router.GET("/data", s.handleData)
	s.router.GET("/summary", s.handleSummary)
	s.router.GET("/distribution/:column", s.handleDistribution)
	s.router.GET("/correlation", s.handleCorrelation)

	// Editing
	s.router.POST("/clean", s.handleClean)
	s.router.POST("/feature", s.handleFeature)
	s.router.POST("/undo", s.handleUndo)
	s.router.POST("/reset", s.handleReset)

	// Training
	s.router.POST("/train", s.handleTrain)
	s.router.POST("/compare", s.handleCompare)
	s.router.GET("/leaderboard", s.handleLeaderboard)
	s.router.DELETE("/leaderboard", s.handleClearLeaderboard)
	s.router.GET("/runs/:id", s.handleRun)

	s.router.GET("/report", s.handleReport)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting ML Studio API on http://%s", addr)
	return s.router.Run(addr)
}

// respondError writes the error envelope with the status matching err
func (s *Server) respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"message": err.Error(),
		"code":    apperrors.CodeOf(err),
	})
}

// bindJSON decodes the body, answering 400 on failure
func (s *Server) bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		s.respondError(c, apperrors.InvalidInput("invalid request body: "+err.Error()))
		return false
	}
	return true
}
