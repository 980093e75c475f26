package fakeapi

import (
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/models"
)

func (s *Server) systemHealth(c *gin.Context) {
	uptime := s.now().Sub(s.started).Seconds()
	respond(c, models.SystemHealth{
		Status:   "healthy",
		Uptime:   round2(uptime),
		CPUUsage: 12.5,
		Memory:   models.MemoryUsage{Used: 256 << 20, Total: 1 << 30, Percentage: 25},
		Services: map[string]string{"database": "connected", "cache": "connected"},
	})
}

func (s *Server) databaseStats(c *gin.Context) {
	s.mu.Lock()
	stats := models.DatabaseStats{Collections: len(s.collections), Indexes: len(s.collections)}
	for _, col := range s.collections {
		stats.Documents += len(col.order)
	}
	s.mu.Unlock()
	stats.DataSize = float64(stats.Documents * 512)
	stats.StorageSize = stats.DataSize * 2
	stats.Connections.Current = 1
	stats.Connections.Available = 99
	respond(c, stats)
}

// activeSessions treats every active user as logged in.
func (s *Server) activeSessions(c *gin.Context) {
	s.mu.Lock()
	out := models.ActiveSessions{ByRole: map[string]int{}}
	for _, u := range s.collection(Users).all() {
		if active, _ := u["isActive"].(bool); !active {
			continue
		}
		id, _ := u["_id"].(string)
		role, _ := u["role"].(string)
		out.Total++
		out.ByRole[role]++
		ref := models.NewRef(id)
		ref.Name = displayName(u)
		out.Sessions = append(out.Sessions, models.SessionEntry{User: ref, Role: models.Role(role)})
	}
	s.mu.Unlock()
	respond(c, out)
}

// errorRates is computed from the responses this server has written.
func (s *Server) errorRates(c *gin.Context) {
	s.mu.Lock()
	out := models.ErrorRates{ByStatus: map[string]int{}}
	served := 0
	for status, n := range s.statuses {
		served += n
		if status >= 400 {
			out.Total += n
			out.ByStatus[strconv.Itoa(status)] = n
		}
	}
	s.mu.Unlock()
	if served > 0 {
		out.Rate = round2(float64(out.Total) * 100 / float64(served))
	}
	respond(c, out)
}

func (s *Server) perfMetrics(c *gin.Context) {
	s.mu.Lock()
	counts := map[string]*models.EndpointMetric{}
	for _, r := range s.requests {
		key := r.Method + " " + r.Path
		m, ok := counts[key]
		if !ok {
			m = &models.EndpointMetric{Method: r.Method, Path: "/" + r.Path}
			counts[key] = m
		}
		m.Count++
	}
	total := len(s.requests)
	s.mu.Unlock()

	out := models.Metrics{RequestsPerMinute: float64(total), AvgResponseTime: 3, P95ResponseTime: 8}
	for _, m := range counts {
		m.AvgResponseTime = 3
		out.Endpoints = append(out.Endpoints, *m)
	}
	sort.Slice(out.Endpoints, func(i, j int) bool {
		if out.Endpoints[i].Count != out.Endpoints[j].Count {
			return out.Endpoints[i].Count > out.Endpoints[j].Count
		}
		return out.Endpoints[i].Path < out.Endpoints[j].Path
	})
	respond(c, out)
}
