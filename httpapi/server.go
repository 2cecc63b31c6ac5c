// Package httpapi exposes the routing service over REST.
//
// Register/login are open; everything else sits behind a JWT bearer
// middleware. Handlers translate domain sentinels onto HTTP statuses and
// never leak internal errors beyond a logged 500.
package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/routecore/routecore/auth"
	"github.com/routecore/routecore/jobs"
	"github.com/routecore/routecore/routing"
	"github.com/routecore/routecore/store"
)

// claimsKey is the gin context key for verified token claims.
const claimsKey = "httpapi.claims"

// Server bundles the HTTP surface over the domain services.
type Server struct {
	engine  *gin.Engine
	routing *routing.Service
	store   *store.Store
	auth    *auth.Service
	jobs    *jobs.Manager
	log     logrus.FieldLogger
}

// Options collects the dependencies of a Server.
type Options struct {
	Routing *routing.Service
	Store   *store.Store
	Auth    *auth.Service
	Jobs    *jobs.Manager
	Logger  logrus.FieldLogger
	// CORSOrigins limits allowed origins; empty allows all.
	CORSOrigins []string
}

// New builds the engine with all routes mounted.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(opts.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = opts.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	engine.Use(cors.New(corsCfg))

	s := &Server{
		engine:  engine,
		routing: opts.Routing,
		store:   opts.Store,
		auth:    opts.Auth,
		jobs:    opts.Jobs,
		log:     logger.WithField("module", "httpapi"),
	}
	s.mountRoutes()

	return s
}

// Handler returns the engine as an http.Handler for the server loop and
// for tests.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) mountRoutes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api")

	api.POST("/auth/register", s.handleRegister)
	api.POST("/auth/login", s.handleLogin)

	protected := api.Group("", s.requireAuth)

	protected.GET("/graph/info", s.handleGraphInfo)
	protected.POST("/graph/nodes", s.handleAddNode)
	protected.POST("/graph/edges", s.handleAddEdge)
	protected.POST("/graph/import/csv", s.handleImportCSV)
	protected.GET("/graph/edges/metadata", s.handleEdgeMetadata)
	protected.GET("/graph/quality/check", s.handleQualityCheck)
	protected.POST("/graph/quality/fix", s.handleQualityFix)

	protected.POST("/routes", s.handleRoute)
	protected.POST("/routes/batch", s.handleRouteBatch)
	protected.POST("/routes/async/submit", s.handleAsyncSubmit)
	protected.GET("/routes/async/jobs/:id", s.handleAsyncJob)
	protected.GET("/routes/async/metrics", s.handleAsyncMetrics)

	protected.GET("/history/queries", s.handleHistory)
	protected.GET("/stats/performance", s.handleStats)

	protected.POST("/scenarios", s.handleCreateScenario)
	protected.GET("/scenarios", s.handleListScenarios)
	protected.GET("/scenarios/:id", s.handleGetScenario)
	protected.POST("/scenarios/:id/modifications", s.handleAppendModifications)

	protected.POST("/profiles", s.handleCreateProfile)
	protected.GET("/profiles", s.handleListProfiles)
}

// requireAuth verifies the bearer token and stashes its claims.
func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})

		return
	}

	claims, err := s.auth.VerifyToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})

		return
	}

	c.Set(claimsKey, claims)
	c.Next()
}

// subjectFrom returns the authenticated account email, or "unknown" when
// the middleware did not run.
func subjectFrom(c *gin.Context) string {
	v, ok := c.Get(claimsKey)
	if !ok {
		return "unknown"
	}
	claims, ok := v.(*auth.Claims)
	if !ok {
		return "unknown"
	}

	return claims.Subject
}

// internalError logs the cause and answers with an opaque 500.
func (s *Server) internalError(c *gin.Context, err error) {
	s.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
