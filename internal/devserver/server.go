package devserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RequestIDHeader carries the client-generated request ID.
const RequestIDHeader = "X-Request-ID"

// Server is an in-memory implementation of the question service API.
type Server struct {
	tutor *Tutor
	log   *zap.Logger
	eng   *gin.Engine
}

// New builds the router over tutor. A nil log discards request logs.
func New(tutor *Tutor, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{tutor: tutor, log: log}
	s.eng = s.router()
	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler { return s.eng }

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.log))

	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/topics", s.topics)
		api.POST("/ingest", s.ingest)
		api.GET("/kb/graph", s.graph)

		session := api.Group("/session")
		session.POST("/start", s.start)
		session.GET("/next", s.next)
		session.POST("/submit", s.submit)
		session.GET("/status", s.status)
	}
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.eng,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("dev server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.log.Info("dev server stopped")
		return nil
	})
	return g.Wait()
}

// respondError writes the {"detail": ...} body the client surfaces.
func respondError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"detail": err.Error()})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "running"})
}

func (s *Server) topics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"topics": s.tutor.Topics()})
}

type ingestRequest struct {
	TopicName string `json:"topic_name"`
}

func (s *Server) ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, err)
		return
	}
	topic := strings.TrimSpace(req.TopicName)
	if topic == "" {
		respondError(c, http.StatusUnprocessableEntity, errors.New("topic_name is required"))
		return
	}

	if s.tutor.Ingest(topic) {
		s.log.Info("topic ingested", zap.String("topic", topic))
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully ingested " + topic,
		"kb_path": "memory://" + topic,
	})
}

type startRequest struct {
	UserID    string `json:"user_id"`
	TopicName string `json:"topic_name"`
}

func (s *Server) start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	id, err := s.tutor.Start(req.UserID, req.TopicName)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrUnknownTopic) {
			status = http.StatusNotFound
		}
		respondError(c, status, err)
		return
	}
	s.log.Info("session started",
		zap.String("session_id", id),
		zap.String("user_id", req.UserID),
		zap.String("topic", req.TopicName))
	c.JSON(http.StatusOK, gin.H{
		"message":    "Session started for " + req.TopicName,
		"session_id": id,
	})
}

func (s *Server) next(c *gin.Context) {
	q, err := s.tutor.Next()
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

type submitRequest struct {
	QuestionID string `json:"question_id"`
	UserAnswer string `json:"user_answer"`
}

func (s *Server) submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, err)
		return
	}
	res, err := s.tutor.Submit(req.QuestionID, req.UserAnswer)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, s.tutor.Status())
}

func (s *Server) graph(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"elements": s.tutor.Graph()})
}

// requestLogger logs one line per request, tagged with the client's
// request ID.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if id := c.GetHeader(RequestIDHeader); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}

		switch {
		case status >= 500:
			log.Error("http request", fields...)
		case status >= 400:
			log.Warn("http request", fields...)
		default:
			log.Info("http request", fields...)
		}
	}
}
