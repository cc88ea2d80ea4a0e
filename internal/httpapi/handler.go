package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classtrack/internal/attendance"
	"classtrack/internal/auth"
	"classtrack/internal/config"
	"classtrack/internal/metrics"
	"classtrack/internal/queue"
	"classtrack/internal/schedule"
	"classtrack/internal/store"
	"classtrack/internal/user"
)

// Handler wires the API routes to the session stores and collaborators.
type Handler struct {
	cfg      config.App
	log      *zap.SugaredLogger
	users    *user.Repository
	sessions *attendance.Sessions
	cache    *store.Redis
	q        queue.Queue
}

// New creates the handler.
func New(cfg config.App, log *zap.SugaredLogger, users *user.Repository, sessions *attendance.Sessions, cache *store.Redis, q queue.Queue) *Handler {
	return &Handler{cfg: cfg, log: log, users: users, sessions: sessions, cache: cache, q: q}
}

// Register mounts all routes on the engine.
func (h *Handler) Register(r *gin.Engine, db *store.DB) {
	r.GET("/healthz", func(c *gin.Context) {
		redisOK := h.cache.Healthy(c.Request.Context())
		dbOK := db.Healthy(c.Request.Context())
		status := http.StatusOK
		if !redisOK || !dbOK {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisOK, "db": dbOK})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.POST("/v1/auth/register", h.RegisterUser)
	r.POST("/v1/auth/login", h.Login)

	authed := r.Group("/v1", auth.UserAuth(h.cfg.JWTSigningKey, h.cfg.JWTIssuer))
	authed.POST("/auth/logout", h.Logout)

	authed.GET("/subjects", h.ListSubjects)
	authed.POST("/subjects", h.CreateSubject)
	authed.GET("/subjects/:id", h.GetSubject)
	authed.PUT("/subjects/:id", h.UpdateSubject)
	authed.DELETE("/subjects/:id", h.DeleteSubject)
	authed.GET("/subjects/:id/attendance", h.SubjectAttendance)

	authed.GET("/attendance", h.ListAttendance)
	authed.POST("/attendance", h.CreateAttendance)
	authed.PUT("/attendance/:id", h.UpdateAttendance)
	authed.DELETE("/attendance/:id", h.DeleteAttendance)

	authed.GET("/stats", h.Stats)
}

// sessionStore resolves the caller's mirror, building it on first use.
func (h *Handler) sessionStore(c *gin.Context) (*attendance.Store, bool) {
	st, err := h.sessions.Get(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.log.Errorw("session load failed", "user", auth.UserID(c), "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not load your data"})
		return nil, false
	}
	return st, true
}

func (h *Handler) notifyStatsDirty(c *gin.Context, kind string) {
	metrics.Mutations.WithLabelValues(kind).Inc()
	userID := auth.UserID(c)
	if err := h.cache.InvalidateStats(c.Request.Context(), userID); err != nil {
		h.log.Debugw("stats invalidate failed", "err", err)
	}
	if err := h.q.Publish(c.Request.Context(), queue.Message{Type: queue.TypeStatsDirty, Body: userID}); err != nil {
		h.log.Warnw("queue publish failed", "err", err)
	}
}

// ---------- Auth ----------

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

func (h *Handler) RegisterUser(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.users.Create(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		h.log.Errorw("register failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	h.issueTokens(c, http.StatusCreated, u)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		h.log.Errorw("login failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	// login rebuilds the mirror from committed state
	h.sessions.Drop(u.ID)
	if _, err := h.sessions.Get(c.Request.Context(), u.ID); err != nil {
		h.log.Errorw("mirror rebuild failed", "user", u.ID, "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not load your data"})
		return
	}
	h.issueTokens(c, http.StatusOK, u)
}

func (h *Handler) issueTokens(c *gin.Context, status int, u user.User) {
	tokens, err := auth.Issue(u.ID, "user", h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.AccessTTL, h.cfg.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(status, gin.H{
		"user":          u,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

func (h *Handler) Logout(c *gin.Context) {
	h.sessions.Drop(auth.UserID(c))
	c.Status(http.StatusNoContent)
}

// ---------- Subjects ----------

type subjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Code        string `json:"code"`
	Schedule    string `json:"schedule"`
	Description string `json:"description"`
}

func (h *Handler) ListSubjects(c *gin.Context) {
	st, ok := h.sessionStore(c)
	if !ok {
		return
	}
	subjects := st.Subjects()
	if subjects == nil {
		subjects = []attendance.Subject{}
	}
	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

func (h *Handler) GetSubject(c *gin.Context) {
	st, ok := h.sessionStore(c)
	if !ok {
		return
	}
	sub, found := st.SubjectByID(c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "subject not found"})
		return
	}
	c.JSON(http.StatusOK, sub)
}

// CreateSubject runs the conflict detector before committing; an overlap is
// a 409 with the conflict payload, not an internal error.
func (h *Handler) CreateSubject(c *gin.Context) {
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, ok := h.sessionStore(c)
	if !ok {
		return
	}
	if conflict := schedule.Check(req.Schedule, st.Schedules(), ""); conflict.HasConflict {
		metrics.ConflictsDetected.Inc()
		c.JSON(http.StatusConflict, gin.H{"conflict": conflict})
		return
	}
	sub, err := st.AddSubject(c.Request.Context(), attendance.Subject{
		Name:        req.Name,
		Code:        req.Code,
		Schedule:    req.Schedule,
		Description: req.Description,
	})
	if err != nil {
		h.log.Errorw("add subject failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save subject"})
		return
	}
	h.notifyStatsDirty(c, "subject_add")
	c.JSON(http.StatusCreated, sub)
}

func (h *Handler) UpdateSubject(c *gin.Context) {
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, ok := h.sessionStore(c)
	if !ok {
		return
	}
	id := c.Param("id")
	// a subject never conflicts with its own slots while being edited
	if conflict := schedule.Check(req.Schedule, st.Schedules(), id); conflict.HasConflict {
		metrics.ConflictsDetected.Inc()
		c.JSON(http.StatusConflict, gin.H{"conflict": conflict})
		return
	}
	sub, err := st.UpdateSubject(c.Request.Context(), attendance.Subject{
		ID:          id,
		Name:        req.Name,
		Code:        req.Code,
		Schedule:    req.Schedule,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "subject not found"})
			return
		}
		h.log.Errorw("update subject failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save subject"})
		return
	}
	h.notifyStatsDirty(c, "subject_update")
	c.JSON(http.StatusOK, sub)
}

func (h *Handler) DeleteSubject(c *gin.Context) {
	st, ok := h.sessionStore(c)
	if !ok {
		return
	}
	if err := st.DeleteSubject(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "subject not found"})
			return
		}
		h.log.Errorw("delete subject failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete subject"})
		return
	}
	h.notifyStatsDirty(c, "subject_delete")
	c.Status(http.StatusNoContent)
}

func (h *Handler) SubjectAttendance(c *gin.Context) {
	st, ok := h.sessionStore(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, found := st.SubjectByID(id); !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "subject not found"})
		return
	}
	records := st.AttendanceBySubject(id)
	if records == nil {
		records = []attendance.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// ---------- Attendance ----------

type attendanceRequest struct {
	SubjectID string  `json:"subject_id" binding:"required"`
	Date      string  `json:"date" binding:"required"`
	Status    string  `json:"status" binding:"required"`
	Hours     float64 `json:"hours"`
	Note      string  `json:"note"`
}

func (h *Handler) CreateAttendance(c *gin.Context) {
	var req attendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, ok := h.sessionStore(c)
	if !ok {
		return
	}
	rec, err := st.AddAttendance(c.Request.Context(), attendance.Record{
		SubjectID: req.SubjectID,
		Date:      req.Date,
		Status:    attendance.Status(req.Status),
		Hours:     req.Hours,
		Note:      req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrDuplicateAttendance):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, attendance.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "subject not found"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	h.notifyStatsDirty(c, "attendance_add")
	c.JSON(http.StatusCreated, rec)
}

type attendanceUpdateRequest struct {
	Status string  `json:"status" binding:"required"`
	Hours  float64 `json:"hours"`
	Note   string  `json:"note"`
}

func (h *Handler) UpdateAttendance(c *gin.Context) {
	var req attendanceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, ok := h.sessionStore(c)
	if !ok {
		return
	}
	rec, err := st.UpdateAttendance(c.Request.Context(), attendance.Record{
		ID:     c.Param("id"),
		Status: attendance.Status(req.Status),
		Hours:  req.Hours,
		Note:   req.Note,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.notifyStatsDirty(c, "attendance_update")
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteAttendance(c *gin.Context) {
	st, ok := h.sessionStore(c)
	if !ok {
		return
	}
	if err := st.DeleteAttendance(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		h.log.Errorw("delete attendance failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete record"})
		return
	}
	h.notifyStatsDirty(c, "attendance_delete")
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListAttendance(c *gin.Context) {
	st, ok := h.sessionStore(c)
	if !ok {
		return
	}
	var records []attendance.Record
	if date := c.Query("date"); date != "" {
		records = st.AttendanceForDate(date)
	} else {
		records = st.Records()
	}
	if records == nil {
		records = []attendance.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// ---------- Stats ----------

// Stats serves the aggregation, preferring the worker-warmed Redis snapshot.
func (h *Handler) Stats(c *gin.Context) {
	userID := auth.UserID(c)
	if payload, ok := h.cache.CachedStats(c.Request.Context(), userID); ok {
		metrics.StatsCacheHits.Inc()
		c.Data(http.StatusOK, "application/json", payload)
		return
	}
	metrics.StatsCacheMisses.Inc()

	st, ok := h.sessionStore(c)
	if !ok {
		return
	}
	stats := st.Stats()
	if payload, err := json.Marshal(stats); err == nil {
		if err := h.cache.CacheStats(c.Request.Context(), userID, payload, h.cfg.StatsCacheTTL); err != nil {
			h.log.Debugw("stats cache write failed", "err", err)
		}
	}
	c.JSON(http.StatusOK, stats)
}
