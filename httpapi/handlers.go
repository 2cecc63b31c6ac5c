package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/routecore/routecore/auth"
	"github.com/routecore/routecore/csvio"
	"github.com/routecore/routecore/profile"
	"github.com/routecore/routecore/quality"
	"github.com/routecore/routecore/routing"
	"github.com/routecore/routecore/scenario"
	"github.com/routecore/routecore/store"
)

// --- auth ---------------------------------------------------------------

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// userView is the API shape of an account; the persisted record carries
// the password hash and must never be serialized directly.
type userView struct {
	ID        uint64 `json:"id"`
	Email     string `json:"email"`
	IsActive  bool   `json:"is_active"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt int64  `json:"created_at"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	user, err := s.auth.Register(req.Email, req.Password, false)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})

			return
		}
		s.internalError(c, err)

		return
	}

	c.JSON(http.StatusCreated, userView{
		ID:        user.ID,
		Email:     user.Email,
		IsActive:  user.IsActive,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	token, err := s.auth.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})

			return
		}
		s.internalError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// --- graph --------------------------------------------------------------

func (s *Server) handleGraphInfo(c *gin.Context) {
	g := s.routing.Graph()
	c.JSON(http.StatusOK, gin.H{
		"node_count": g.NodeCount(),
		"edge_count": g.EdgeCount(),
	})
}

type addNodeRequest struct {
	Node *int `json:"node" binding:"required"`
}

func (s *Server) handleAddNode(c *gin.Context) {
	var req addNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	g := s.routing.Graph()
	if err := g.EnsureNode(*req.Node); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusCreated, gin.H{"node_count": g.NodeCount()})
}

type addEdgeRequest struct {
	FromNode *int     `json:"from_node" binding:"required"`
	ToNode   *int     `json:"to_node" binding:"required"`
	Weight   *float64 `json:"weight" binding:"required"`
}

func (s *Server) handleAddEdge(c *gin.Context) {
	var req addEdgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	g := s.routing.Graph()
	if err := g.AddEdge(*req.FromNode, *req.ToNode, *req.Weight); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusCreated, gin.H{"edge_count": g.EdgeCount()})
}

func (s *Server) handleImportCSV(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})

		return
	}
	src, err := file.Open()
	if err != nil {
		s.internalError(c, err)

		return
	}
	defer src.Close()

	result, err := csvio.ImportEdges(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}
	if err := result.ApplyTo(s.routing.Graph()); err != nil {
		s.internalError(c, err)

		return
	}
	if len(result.Metadata) > 0 {
		if err := s.store.SaveEdgeMetadata(result.Metadata); err != nil {
			s.internalError(c, err)

			return
		}
	}

	c.JSON(http.StatusOK, result.Summary)
}

func (s *Server) handleEdgeMetadata(c *gin.Context) {
	meta, err := s.store.EdgeMetadata()
	if err != nil {
		s.internalError(c, err)

		return
	}
	if meta == nil {
		meta = []profile.EdgeMetadata{}
	}

	c.JSON(http.StatusOK, meta)
}

// --- quality ------------------------------------------------------------

func (s *Server) handleQualityCheck(c *gin.Context) {
	report := quality.Analyze(s.routing.Graph(), quality.DefaultOptions())
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleQualityFix(c *gin.Context) {
	g := s.routing.Graph()
	report := quality.Analyze(g, quality.DefaultOptions())
	result := quality.Fix(g, report)

	if result.RemovedZeroWeightArcs > 0 {
		rec := &store.FixLogRecord{
			FixType:     "zero_weight_cycles",
			Description: "removed arcs participating in zero-weight cycles",
			Details: fmt.Sprintf("removed_arcs=%d cycles=%d by=%s",
				result.RemovedZeroWeightArcs, len(report.ZeroWeightCycles), subjectFrom(c)),
		}
		if err := s.store.LogFix(rec); err != nil {
			s.log.WithError(err).Warn("fix log write failed")
		}
	}

	c.JSON(http.StatusOK, result)
}

// --- routes -------------------------------------------------------------

func (s *Server) handleRoute(c *gin.Context) {
	var req routing.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	resp, err := s.routing.FindRoute(req)
	if err != nil {
		switch {
		case errors.Is(err, routing.ErrScenarioProfileCombo):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, scenario.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "scenario not found"})
		case errors.Is(err, profile.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		default:
			s.internalError(c, err)
		}

		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleRouteBatch(c *gin.Context) {
	var req routing.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	items, err := s.routing.FindRoutesBatch(req)
	if err != nil {
		if errors.Is(err, routing.ErrBatchOverlay) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

			return
		}
		s.internalError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(items), "results": items})
}

// --- async jobs ---------------------------------------------------------

func (s *Server) handleAsyncSubmit(c *gin.Context) {
	var req routing.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	job, err := s.jobs.Submit(req)
	if err != nil {
		s.internalError(c, err)

		return
	}

	c.JSON(http.StatusAccepted, job)
}

func (s *Server) handleAsyncJob(c *gin.Context) {
	job, ok := s.jobs.Snapshot(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})

		return
	}

	c.JSON(http.StatusOK, job)
}

func (s *Server) handleAsyncMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.jobs.Metrics())
}

// --- history and stats --------------------------------------------------

func (s *Server) handleHistory(c *gin.Context) {
	filter := store.HistoryFilter{
		Algorithm:   c.Query("algorithm"),
		OnlySuccess: c.Query("success") == "true",
		OnlyBatch:   c.Query("batch") == "true",
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})

			return
		}
		filter.Limit = limit
	}

	recs, err := s.store.QueryHistory(filter)
	if err != nil {
		s.internalError(c, err)

		return
	}
	if recs == nil {
		recs = []store.QueryRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"count": len(recs), "queries": recs})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.store.QueryStats()
	if err != nil {
		s.internalError(c, err)

		return
	}
	if stats == nil {
		stats = []store.PerformanceStats{}
	}

	c.JSON(http.StatusOK, stats)
}

// --- scenarios ----------------------------------------------------------

type createScenarioRequest struct {
	Name          string                  `json:"name" binding:"required"`
	Description   string                  `json:"description"`
	IsActive      *bool                   `json:"is_active"`
	Modifications []scenario.Modification `json:"modifications"`
}

func (s *Server) handleCreateScenario(c *gin.Context) {
	var req createScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	rec := &store.ScenarioRecord{
		Name:          req.Name,
		Description:   req.Description,
		IsActive:      req.IsActive == nil || *req.IsActive,
		Modifications: req.Modifications,
	}
	if rec.Modifications == nil {
		rec.Modifications = []scenario.Modification{}
	}
	if err := s.store.CreateScenario(rec); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "scenario name already exists"})

			return
		}
		s.internalError(c, err)

		return
	}

	c.JSON(http.StatusCreated, rec)
}

func (s *Server) handleListScenarios(c *gin.Context) {
	recs, err := s.store.Scenarios()
	if err != nil {
		s.internalError(c, err)

		return
	}
	if recs == nil {
		recs = []store.ScenarioRecord{}
	}

	c.JSON(http.StatusOK, recs)
}

func (s *Server) handleGetScenario(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scenario id must be an integer"})

		return
	}

	rec, err := s.store.Scenario(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "scenario not found"})

			return
		}
		s.internalError(c, err)

		return
	}

	c.JSON(http.StatusOK, rec)
}

type appendModificationsRequest struct {
	Modifications []scenario.Modification `json:"modifications" binding:"required"`
}

func (s *Server) handleAppendModifications(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scenario id must be an integer"})

		return
	}

	var req appendModificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	rec, err := s.store.AppendModifications(id, req.Modifications)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "scenario not found"})

			return
		}
		s.internalError(c, err)

		return
	}

	c.JSON(http.StatusOK, rec)
}

// --- profiles -----------------------------------------------------------

type createProfileRequest struct {
	Name           string  `json:"name" binding:"required"`
	Description    string  `json:"description"`
	WeightTime     float64 `json:"weight_time"`
	WeightDistance float64 `json:"weight_distance"`
	WeightCost     float64 `json:"weight_cost"`
}

func (s *Server) handleCreateProfile(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	rec := &store.ProfileRecord{
		Name:           req.Name,
		Description:    req.Description,
		WeightTime:     req.WeightTime,
		WeightDistance: req.WeightDistance,
		WeightCost:     req.WeightCost,
	}
	if err := s.store.CreateProfile(rec); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "profile name already exists"})

			return
		}
		s.internalError(c, err)

		return
	}

	c.JSON(http.StatusCreated, rec)
}

func (s *Server) handleListProfiles(c *gin.Context) {
	recs, err := s.store.Profiles()
	if err != nil {
		s.internalError(c, err)

		return
	}
	if recs == nil {
		recs = []store.ProfileRecord{}
	}

	c.JSON(http.StatusOK, recs)
}
