package models

// MemoryUsage is reported in bytes.
type MemoryUsage struct {
	Used       float64 `json:"used"`
	Total      float64 `json:"total"`
	Percentage float64 `json:"percentage"`
}

// SystemHealth is the performance/system-health feed.
type SystemHealth struct {
	Status   string            `json:"status"`
	Uptime   float64           `json:"uptime"`
	CPUUsage float64           `json:"cpuUsage"`
	Memory   MemoryUsage       `json:"memory"`
	Services map[string]string `json:"services,omitempty"`
}

// DatabaseStats is the performance/database-stats feed.
type DatabaseStats struct {
	Collections int     `json:"collections"`
	Documents   int     `json:"documents"`
	DataSize    float64 `json:"dataSize"`
	StorageSize float64 `json:"storageSize"`
	Indexes     int     `json:"indexes"`
	Connections struct {
		Current   int `json:"current"`
		Available int `json:"available"`
	} `json:"connections"`
}

// SessionEntry is one logged-in user in the active sessions feed.
type SessionEntry struct {
	User         Ref    `json:"user"`
	Role         Role   `json:"role"`
	LastActivity string `json:"lastActivity,omitempty"`
}

// ActiveSessions is the performance/active-sessions feed.
type ActiveSessions struct {
	Total    int            `json:"total"`
	ByRole   map[string]int `json:"byRole,omitempty"`
	Sessions []SessionEntry `json:"sessions,omitempty"`
}

// ErrorRates is the performance/error-rates feed.
type ErrorRates struct {
	Total    int            `json:"total"`
	Rate     float64        `json:"rate"`
	ByStatus map[string]int `json:"byStatus,omitempty"`
}

// EndpointMetric aggregates latency for one backend route.
type EndpointMetric struct {
	Path            string  `json:"path"`
	Method          string  `json:"method"`
	Count           int     `json:"count"`
	AvgResponseTime float64 `json:"avgResponseTime"`
}

// Metrics is the performance/metrics feed.
type Metrics struct {
	RequestsPerMinute float64          `json:"requestsPerMinute"`
	AvgResponseTime   float64          `json:"avgResponseTime"`
	P95ResponseTime   float64          `json:"p95ResponseTime"`
	Endpoints         []EndpointMetric `json:"endpoints,omitempty"`
}
