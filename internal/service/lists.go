// Package service composes the building blocks (client, session, list
// controllers, mutation executor, forms) into the use cases the console
// exposes: logging in, browsing and changing each collection, and polling
// the performance feeds.
package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/listing"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/models"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/query"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/resource"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/metrics"
)

// ListConfig tunes every controller opened by a ListFactory.
type ListConfig struct {
	PageSize          int
	FullFetchPageSize int
}

// ListFactory opens list controllers sharing one client, scope and logger.
type ListFactory struct {
	client  listing.Doer
	scope   listing.ScopeProvider
	config  ListConfig
	logger  *zap.Logger
	metrics *metrics.Recorder
	query   *query.State
}

// NewListFactory constructs a ListFactory.
func NewListFactory(c listing.Doer, scope listing.ScopeProvider, cfg ListConfig, logger *zap.Logger, m *metrics.Recorder) *ListFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListFactory{client: c, scope: scope, config: cfg, logger: logger, metrics: m}
}

// WithQuery returns a factory whose next controller starts from q instead
// of an empty query. Filters already in q cause no fetch until Refresh.
// q must not be shared between controllers.
func (f *ListFactory) WithQuery(q *query.State) *ListFactory {
	clone := *f
	clone.query = q
	return &clone
}

func openList[T any](ctx context.Context, f *ListFactory, d resource.Descriptor, match listing.MatchFunc[T], localKeys ...string) *listing.Controller[T] {
	return listing.New(ctx, listing.Options[T]{
		Descriptor:        d,
		Client:            f.client,
		Query:             f.query,
		PageSize:          f.config.PageSize,
		Scope:             f.scope,
		LocalKeys:         localKeys,
		Match:             match,
		FullFetchPageSize: f.config.FullFetchPageSize,
		Logger:            f.logger.With(zap.String("resource", d.Name)),
		Metrics:           f.metrics,
	})
}

// Institutions opens the institutions list.
func (f *ListFactory) Institutions(ctx context.Context) *listing.Controller[models.Institution] {
	return openList[models.Institution](ctx, f, resource.Institutions, nil)
}

// Departments opens the departments list.
func (f *ListFactory) Departments(ctx context.Context) *listing.Controller[models.Department] {
	return openList[models.Department](ctx, f, resource.Departments, nil)
}

// Classes opens the classes list.
func (f *ListFactory) Classes(ctx context.Context) *listing.Controller[models.Class] {
	return openList[models.Class](ctx, f, resource.Classes, nil)
}

// Sections opens the sections list.
func (f *ListFactory) Sections(ctx context.Context) *listing.Controller[models.Section] {
	return openList[models.Section](ctx, f, resource.Sections, nil)
}

// Groups opens the groups list.
func (f *ListFactory) Groups(ctx context.Context) *listing.Controller[models.Group] {
	return openList[models.Group](ctx, f, resource.Groups, nil)
}

// Admissions opens the admissions list. The backend has no text search on
// admissions, so search runs over applicant name and roll number here.
func (f *ListFactory) Admissions(ctx context.Context) *listing.Controller[models.Admission] {
	return openList[models.Admission](ctx, f, resource.Admissions, matchAdmission, query.KeySearch)
}

// Users opens the users list.
func (f *ListFactory) Users(ctx context.Context) *listing.Controller[models.User] {
	return openList[models.User](ctx, f, resource.Users, nil)
}

// Results opens the results list with console-side search over student and
// subject.
func (f *ListFactory) Results(ctx context.Context) *listing.Controller[models.Result] {
	return openList[models.Result](ctx, f, resource.Results, matchResult, query.KeySearch)
}

// Messages opens the messages list.
func (f *ListFactory) Messages(ctx context.Context) *listing.Controller[models.Message] {
	return openList[models.Message](ctx, f, resource.Messages, nil)
}

// Templates opens the message templates list.
func (f *ListFactory) Templates(ctx context.Context) *listing.Controller[models.MessageTemplate] {
	return openList[models.MessageTemplate](ctx, f, resource.MessageTemplates, matchTemplate, query.KeySearch)
}

// Calendar opens the calendar events list.
func (f *ListFactory) Calendar(ctx context.Context) *listing.Controller[models.CalendarEvent] {
	return openList[models.CalendarEvent](ctx, f, resource.Calendar, nil)
}

// Reports opens the report definitions list.
func (f *ListFactory) Reports(ctx context.Context) *listing.Controller[models.Report] {
	return openList[models.Report](ctx, f, resource.Reports, nil)
}

// Settings opens the settings list.
func (f *ListFactory) Settings(ctx context.Context) *listing.Controller[models.Setting] {
	return openList[models.Setting](ctx, f, resource.Settings, matchSetting, query.KeySearch)
}

// Promotions opens the promotion history.
func (f *ListFactory) Promotions(ctx context.Context) *listing.Controller[models.Promotion] {
	return openList[models.Promotion](ctx, f, resource.StudentPromotions, nil)
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

func matchResult(r models.Result, q query.Snapshot) bool {
	search := q.Get(query.KeySearch)
	return contains(r.Student.Label(), search) || contains(r.Subject, search) || contains(r.ExamName, search)
}

func matchAdmission(a models.Admission, q query.Snapshot) bool {
	search := q.Get(query.KeySearch)
	return contains(a.DisplayName(), search) || contains(a.RollNumber, search) || contains(a.ApplicationNo, search)
}

func matchTemplate(t models.MessageTemplate, q query.Snapshot) bool {
	search := q.Get(query.KeySearch)
	return contains(t.Name, search) || contains(t.Subject, search)
}

func matchSetting(s models.Setting, q query.Snapshot) bool {
	search := q.Get(query.KeySearch)
	return contains(s.Key, search) || contains(s.Description, search)
}

// ListRefresher adapts a controller to Refresher.
func ListRefresher[T any](c *listing.Controller[T]) Refresher {
	return RefreshFunc(func(ctx context.Context) error {
		_, err := c.Refresh(ctx)
		return err
	})
}
