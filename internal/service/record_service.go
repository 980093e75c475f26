package service

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/client"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/models"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/mutation"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/query"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/resource"
	appErrors "github.com/shehrozeikram/SGCEducation-sub002/pkg/errors"
)

type recordExecutor interface {
	Delete(ctx context.Context, d resource.Descriptor, id string) (mutation.Result, error)
	Action(ctx context.Context, d resource.Descriptor, id, action string, body interface{}) (mutation.Result, error)
}

// Refresher is a list that can re-fetch its current page.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(ctx context.Context) error

// Refresh implements Refresher.
func (f RefreshFunc) Refresh(ctx context.Context) error { return f(ctx) }

// RecordService handles single-item reads and the item actions of every
// collection: delete, toggle-status, publish, send and generate.
type RecordService struct {
	client requester
	exec   recordExecutor
	logger *zap.Logger
}

// NewRecordService constructs a RecordService instance.
func NewRecordService(c requester, exec recordExecutor, logger *zap.Logger) *RecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordService{client: c, exec: exec, logger: logger}
}

// Get loads one item into out.
func (s *RecordService) Get(ctx context.Context, d resource.Descriptor, id string, out interface{}) error {
	if id == "" {
		return appErrors.Local(d.Singular+" id is required", nil)
	}
	resp, err := s.client.Do(ctx, client.Request{Method: http.MethodGet, Path: d.ItemPath(id)})
	if err != nil {
		return banner(err, "Failed to fetch "+d.Singular)
	}
	return resp.Decode(out)
}

// Delete removes an item once the operator confirmed it. An unconfirmed
// delete sends nothing.
func (s *RecordService) Delete(ctx context.Context, d resource.Descriptor, id string, confirmed bool) (string, error) {
	if !confirmed {
		return "", appErrors.Local("delete of "+d.Singular+" "+id+" was not confirmed", nil)
	}
	res, err := s.exec.Delete(ctx, d, id)
	if err != nil {
		return "", banner(err, d.DeleteFallback())
	}
	return messageOr(res.Message, capitalize(d.Singular)+" deleted successfully"), nil
}

// ToggleStatus flips isActive and then refreshes list, so the row shows
// the new state. list may be nil.
func (s *RecordService) ToggleStatus(ctx context.Context, d resource.Descriptor, id string, list Refresher) (string, error) {
	res, err := s.exec.Action(ctx, d, id, resource.ActionToggleStatus, nil)
	if err != nil {
		return "", banner(err, "Failed to update "+d.Singular+" status")
	}
	if list != nil {
		if err := list.Refresh(ctx); err != nil {
			s.logger.Warn("refresh after toggle failed", zap.String("resource", d.Name), zap.Error(err))
		}
	}
	return messageOr(res.Message, capitalize(d.Singular)+" status updated"), nil
}

// PublishResult moves a result from draft to published.
func (s *RecordService) PublishResult(ctx context.Context, id string) (models.Result, string, error) {
	var out models.Result
	res, err := s.exec.Action(ctx, resource.Results, id, resource.ActionPublish, nil)
	if err != nil {
		return out, "", banner(err, "Failed to publish result")
	}
	if err := res.Decode(&out); err != nil {
		return out, "", err
	}
	return out, messageOr(res.Message, "Result published successfully"), nil
}

// SendMessage delivers a draft or scheduled message.
func (s *RecordService) SendMessage(ctx context.Context, id string) (models.Message, string, error) {
	var out models.Message
	res, err := s.exec.Action(ctx, resource.Messages, id, resource.ActionSend, nil)
	if err != nil {
		return out, "", banner(err, "Failed to send message")
	}
	if err := res.Decode(&out); err != nil {
		return out, "", err
	}
	return out, messageOr(res.Message, "Message sent successfully"), nil
}

// GenerateReport runs a report definition. The output is returned to the
// caller and never stored.
func (s *RecordService) GenerateReport(ctx context.Context, id string) (models.ReportResult, error) {
	var out models.ReportResult
	res, err := s.exec.Action(ctx, resource.Reports, id, resource.ActionGenerate, nil)
	if err != nil {
		return out, banner(err, "Failed to generate report")
	}
	if err := res.Decode(&out); err != nil {
		return models.ReportResult{}, err
	}
	return out, nil
}

// ResultStats loads the results overview, scoped to institution when set.
func (s *RecordService) ResultStats(ctx context.Context, institution string) (models.ResultStats, error) {
	var out models.ResultStats
	params := url.Values{}
	if institution != "" {
		params.Set(query.KeyInstitution, institution)
	}
	resp, err := s.client.Do(ctx, client.Request{Method: http.MethodGet, Path: resource.PathResultStats, Query: params})
	if err != nil {
		return out, banner(err, "Failed to fetch result statistics")
	}
	if err := resp.Decode(&out); err != nil {
		return models.ResultStats{}, err
	}
	return out, nil
}

// SettingsByCategory loads every setting grouped by category.
func (s *RecordService) SettingsByCategory(ctx context.Context) (map[string][]models.Setting, error) {
	out := map[string][]models.Setting{}
	resp, err := s.client.Do(ctx, client.Request{Method: http.MethodGet, Path: resource.PathSettingsByCategory})
	if err != nil {
		return nil, banner(err, "Failed to fetch settings")
	}
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// banner keeps err's kind and replaces its text with what the operator
// should read.
func banner(err error, fallback string) error {
	return appErrors.Clone(appErrors.FromError(err), appErrors.Banner(err, fallback))
}

func messageOr(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
