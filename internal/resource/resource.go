// Package resource describes the backend collections the console works
// with: endpoint, accepted list parameters and operator-facing names.
package resource

import (
	"net/url"
	"strings"
)

// Descriptor configures list controllers and mutations for one collection.
type Descriptor struct {
	// Name is the plural label, e.g. "institutions".
	Name string
	// Singular is used in save/delete messages.
	Singular string
	// Path is the collection path relative to the API base.
	Path string
	// Params lists the query parameters the backend accepts for listing.
	// Anything else is never sent.
	Params []string
	// Scoped lists are filtered by the session institution.
	Scoped bool
	// Actions are the custom actions exposed on items.
	Actions []string
}

// Accepts reports whether key may be sent to the backend.
func (d Descriptor) Accepts(key string) bool {
	switch key {
	case "page", "limit":
		return true
	}
	for _, p := range d.Params {
		if p == key {
			return true
		}
	}
	return false
}

// Supports reports whether action is exposed on items.
func (d Descriptor) Supports(action string) bool {
	for _, a := range d.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// ItemPath is the path of one item.
func (d Descriptor) ItemPath(id string) string {
	return d.Path + "/" + url.PathEscape(strings.TrimSpace(id))
}

// ActionPath is the path of an item action such as toggle-status.
func (d Descriptor) ActionPath(id, action string) string {
	return d.ItemPath(id) + "/" + action
}

// FetchFallback is shown when a list fails without a backend message.
func (d Descriptor) FetchFallback() string {
	return "Failed to fetch " + d.Name
}

// SaveFallback is shown when a save fails without a backend message.
func (d Descriptor) SaveFallback() string {
	return "Failed to save " + d.Singular
}

// DeleteFallback is shown when a delete fails without a backend message.
func (d Descriptor) DeleteFallback() string {
	return "Failed to delete " + d.Singular
}

// Item actions.
const (
	ActionToggleStatus = "toggle-status"
	ActionPublish      = "publish"
	ActionSend         = "send"
	ActionGenerate     = "generate"
)

// Paths that are not plain collections.
const (
	PathLogin              = "auth/login"
	PathResultStats        = "results/stats/overview"
	PathSettingsByCategory = "settings/by-category"
	PathSystemHealth       = "performance/system-health"
	PathDatabaseStats      = "performance/database-stats"
	PathActiveSessions     = "performance/active-sessions"
	PathErrorRates         = "performance/error-rates"
	PathMetrics            = "performance/metrics"
)

var (
	Institutions = Descriptor{
		Name:     "institutions",
		Singular: "institution",
		Path:     "institutions",
		Params:   []string{"search", "type", "status", "isActive"},
		Actions:  []string{ActionToggleStatus},
	}
	Departments = Descriptor{
		Name:     "departments",
		Singular: "department",
		Path:     "departments",
		Params:   []string{"institution", "search"},
		Scoped:   true,
	}
	Classes = Descriptor{
		Name:     "classes",
		Singular: "class",
		Path:     "classes",
		Params:   []string{"institution", "department", "group", "search", "academicYear"},
		Scoped:   true,
	}
	Sections = Descriptor{
		Name:     "sections",
		Singular: "section",
		Path:     "sections",
		Params:   []string{"institution", "class", "search"},
		Scoped:   true,
	}
	Groups = Descriptor{
		Name:     "groups",
		Singular: "group",
		Path:     "groups",
		Params:   []string{"institution", "type", "search"},
		Scoped:   true,
	}
	Admissions = Descriptor{
		Name:     "admissions",
		Singular: "admission",
		Path:     "admissions",
		Params:   []string{"institution", "class", "section", "group", "status", "academicYear"},
		Scoped:   true,
	}
	Users = Descriptor{
		Name:     "users",
		Singular: "user",
		Path:     "users",
		Params:   []string{"institution", "department", "role", "status", "search"},
		Scoped:   true,
		Actions:  []string{ActionToggleStatus},
	}
	Results = Descriptor{
		Name:     "results",
		Singular: "result",
		Path:     "results",
		Params:   []string{"institution", "class", "section", "group", "student", "examType", "academicYear", "status"},
		Scoped:   true,
		Actions:  []string{ActionPublish},
	}
	Messages = Descriptor{
		Name:     "messages",
		Singular: "message",
		Path:     "messages",
		Params:   []string{"institution", "type", "status", "search"},
		Scoped:   true,
		Actions:  []string{ActionSend},
	}
	MessageTemplates = Descriptor{
		Name:     "message templates",
		Singular: "message template",
		Path:     "messages/templates",
		Params:   []string{"type"},
	}
	Calendar = Descriptor{
		Name:     "events",
		Singular: "event",
		Path:     "calendar",
		Params:   []string{"institution", "type", "startDate", "endDate", "search"},
		Scoped:   true,
	}
	Reports = Descriptor{
		Name:     "reports",
		Singular: "report",
		Path:     "reports",
		Params:   []string{"institution", "type", "search"},
		Scoped:   true,
		Actions:  []string{ActionGenerate},
	}
	Settings = Descriptor{
		Name:     "settings",
		Singular: "setting",
		Path:     "settings",
		Params:   []string{"category", "isPublic"},
	}
	StudentPromotions = Descriptor{
		Name:     "student promotions",
		Singular: "promotion",
		Path:     "student-promotions",
		Params:   []string{"institution", "operationType", "academicYear", "student"},
		Scoped:   true,
	}
)

// All lists every collection the console can browse, keyed by CLI name.
var All = map[string]Descriptor{
	"institutions": Institutions,
	"departments":  Departments,
	"classes":      Classes,
	"sections":     Sections,
	"groups":       Groups,
	"admissions":   Admissions,
	"users":        Users,
	"results":      Results,
	"messages":     Messages,
	"templates":    MessageTemplates,
	"calendar":     Calendar,
	"reports":      Reports,
	"settings":     Settings,
	"promotions":   StudentPromotions,
}
