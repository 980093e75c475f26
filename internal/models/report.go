package models

import "time"

// ReportSchedule makes the backend generate a report periodically.
type ReportSchedule struct {
	Enabled   bool   `json:"enabled"`
	Frequency string `json:"frequency,omitempty"`
	Time      string `json:"time,omitempty"`
}

// Report is a report definition.
type Report struct {
	ID            string          `json:"_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Type          ReportType      `json:"type"`
	Format        ExportFormat    `json:"format"`
	Schedule      *ReportSchedule `json:"schedule,omitempty"`
	Institution   Ref             `json:"institution"`
	LastGenerated *time.Time      `json:"lastGenerated,omitempty"`
}

// ReportResult is the transient output of generating a report. It is never
// persisted by the console.
type ReportResult struct {
	Summary     map[string]interface{}   `json:"summary"`
	Data        []map[string]interface{} `json:"data"`
	GeneratedAt *time.Time               `json:"generatedAt,omitempty"`
}
