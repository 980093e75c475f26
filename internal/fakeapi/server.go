// Package fakeapi is an in-memory stand-in for the school administration
// backend. It speaks the same REST contract (envelope, bearer auth,
// pagination, populated references) and records every request so tests and
// local demos can observe exactly what the console sends.
package fakeapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/middleware"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/models"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/logger"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/middleware/requestid"
)

// Doc is one stored document.
type Doc = map[string]interface{}

// Collection names.
const (
	Institutions  = "institutions"
	Departments   = "departments"
	Classes       = "classes"
	Sections      = "sections"
	Groups        = "groups"
	Admissions    = "admissions"
	Users         = "users"
	Results       = "results"
	Messages      = "messages"
	Templates     = "templates"
	Calendar      = "calendar"
	Reports       = "reports"
	Settings      = "settings"
	Promotions    = "student-promotions"
	defaultPrefix = "/api/v1"
)

// populated maps reference fields to the collection they point into. Only
// these are expanded into {_id, name} objects on reads; every other
// reference stays a bare id.
var populated = map[string]string{
	"institution": Institutions,
	"class":       Classes,
	"student":     Users,
}

// Recorded is one request as received.
type Recorded struct {
	Method   string
	Path     string
	RawQuery string
	Query    url.Values
	Body     []byte
	Auth     string
}

// Options configures a Server.
type Options struct {
	Prefix   string
	Secret   string
	TokenTTL time.Duration
	Logger   *zap.Logger
	Now      func() time.Time
}

type failure struct {
	status  int
	message string
}

// Server is safe for concurrent use.
type Server struct {
	prefix   string
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
	engine   *gin.Engine

	mu          sync.Mutex
	collections map[string]*collection
	requests    []Recorded
	failures    map[string]failure
	statuses    map[int]int
	started     time.Time
}

// New builds a server with empty collections.
func New(opts Options) *Server {
	prefix := "/" + strings.Trim(opts.Prefix, "/")
	if prefix == "/" {
		prefix = defaultPrefix
	}
	secret := opts.Secret
	if secret == "" {
		secret = "fakeapi-secret"
	}
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &Server{
		prefix:      prefix,
		secret:      []byte(secret),
		tokenTTL:    ttl,
		logger:      log,
		now:         now,
		collections: make(map[string]*collection),
		failures:    make(map[string]failure),
		statuses:    make(map[int]int),
		started:     now(),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the gin engine.
func (s *Server) Handler() http.Handler { return s.engine }

// Prefix is the API base path, e.g. /api/v1.
func (s *Server) Prefix() string { return s.prefix }

// Seed stores docs in name, keeping ids that are present.
func (s *Server) Seed(name string, docs ...Doc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collection(name)
	for _, doc := range docs {
		doc = cloneDoc(doc)
		if name == Users {
			if err := hashPassword(doc); err != nil {
				s.logger.Error("seed user", zap.Error(err))
				continue
			}
		}
		col.insert(doc)
	}
}

// Doc returns a copy of a stored document.
func (s *Server) Doc(name, id string) (Doc, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.collection(name).get(id)
	if !ok {
		return nil, false
	}
	return cloneDoc(doc), true
}

// Count returns the number of documents in name.
func (s *Server) Count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collection(name).order)
}

// FailNext makes the next request for method and path (relative to the
// prefix, e.g. "institutions") fail with status and message.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+strings.Trim(path, "/")] = failure{status: status, message: message}
}

// Requests returns every recorded request in arrival order.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// RequestsTo filters Requests by method and relative path.
func (s *Server) RequestsTo(method, path string) []Recorded {
	path = strings.Trim(path, "/")
	var out []Recorded
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// ResetRequests forgets recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestid.Middleware(), logger.GinMiddleware(s.logger), s.record, s.injectFailures)

	api := r.Group(s.prefix)
	api.POST("/auth/login", s.login)

	authed := api.Group("")
	authed.Use(middleware.JWT(s))
	admins := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)
	superAdmins := middleware.RequireRoles(models.RoleSuperAdmin)
	staff := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher)

	authed.GET("/auth/me", s.me)

	authed.GET("/results/stats/overview", s.resultStats)
	authed.POST("/results/:id/publish", staff, s.publishResult)
	authed.GET("/messages/templates", s.list(Templates))
	authed.POST("/messages/:id/send", admins, s.sendMessage)
	authed.POST("/reports/:id/generate", admins, s.generateReport)
	authed.GET("/settings/by-category", s.settingsByCategory)
	authed.PUT("/settings/:id", superAdmins, s.updateSetting)
	authed.POST("/student-promotions", admins, s.promote)
	authed.PUT("/institutions/:id/toggle-status", superAdmins, s.toggleStatus(Institutions))
	authed.PUT("/users/:id/toggle-status", admins, s.toggleStatus(Users))

	for _, name := range []string{Institutions, Departments, Classes, Sections, Groups, Admissions, Users, Results, Messages, Calendar, Reports, Settings, Promotions} {
		authed.GET("/"+name, s.list(name))
		authed.GET("/"+name+"/:id", s.get(name))
	}
	authed.POST("/institutions", superAdmins, s.create(Institutions))
	authed.PUT("/institutions/:id", superAdmins, s.update(Institutions))
	for _, name := range []string{Departments, Classes, Sections, Groups, Users, Messages, Calendar, Reports} {
		authed.POST("/"+name, admins, s.create(name))
		authed.PUT("/"+name+"/:id", admins, s.update(name))
		authed.DELETE("/"+name+"/:id", admins, s.remove(name))
	}
	authed.POST("/results", staff, s.create(Results))
	authed.PUT("/results/:id", staff, s.update(Results))
	authed.DELETE("/results/:id", admins, s.remove(Results))

	perf := authed.Group("/performance", superAdmins)
	perf.GET("/system-health", s.systemHealth)
	perf.GET("/database-stats", s.databaseStats)
	perf.GET("/active-sessions", s.activeSessions)
	perf.GET("/error-rates", s.errorRates)
	perf.GET("/metrics", s.perfMetrics)
	return r
}

func (s *Server) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}
	rec := Recorded{
		Method:   c.Request.Method,
		Path:     s.relative(c.Request.URL.Path),
		RawQuery: c.Request.URL.RawQuery,
		Query:    c.Request.URL.Query(),
		Body:     body,
		Auth:     c.GetHeader("Authorization"),
	}
	s.mu.Lock()
	s.requests = append(s.requests, rec)
	s.mu.Unlock()
	c.Next()

	s.mu.Lock()
	s.statuses[c.Writer.Status()]++
	s.mu.Unlock()
}

func (s *Server) injectFailures(c *gin.Context) {
	key := c.Request.Method + " " + s.relative(c.Request.URL.Path)
	s.mu.Lock()
	f, ok := s.failures[key]
	if ok {
		delete(s.failures, key)
	}
	s.mu.Unlock()
	if !ok {
		c.Next()
		return
	}
	body := gin.H{}
	if f.message != "" {
		body["message"] = f.message
	}
	c.AbortWithStatusJSON(f.status, body)
}

func (s *Server) relative(path string) string {
	return strings.Trim(strings.TrimPrefix(path, s.prefix), "/")
}

// collection must be called with mu held.
func (s *Server) collection(name string) *collection {
	col, ok := s.collections[name]
	if !ok {
		col = newCollection(name)
		s.collections[name] = col
	}
	return col
}

// populate must be called with mu held. It returns a copy of doc with the
// populated reference fields expanded and write-only fields removed.
func (s *Server) populate(doc Doc) Doc {
	out := cloneDoc(doc)
	delete(out, "password")
	for field, target := range populated {
		id, ok := out[field].(string)
		if !ok || id == "" {
			continue
		}
		ref, ok := s.collection(target).get(id)
		if !ok {
			continue
		}
		out[field] = Doc{"_id": id, "name": displayName(ref)}
	}
	return out
}

func displayName(doc Doc) string {
	for _, key := range []string{"name", "title", "subject"} {
		if v, ok := doc[key].(string); ok && v != "" {
			return v
		}
	}
	first, _ := doc["firstName"].(string)
	last, _ := doc["lastName"].(string)
	return strings.TrimSpace(first + " " + last)
}

func notFound(c *gin.Context, what string) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("%s not found", what)})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": message})
}
