// Package mutation issues create, update, delete and custom-action requests
// for single resource instances. It performs no validation and never
// refreshes lists on its own: callers decide what to re-fetch.
package mutation

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/client"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/resource"
	appErrors "github.com/shehrozeikram/SGCEducation-sub002/pkg/errors"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/metrics"
)

// Doer performs backend requests.
type Doer interface {
	Do(ctx context.Context, req client.Request) (*client.Response, error)
}

// Result is the decoded success envelope of a mutation.
type Result struct {
	Data    json.RawMessage
	Message string
}

// Decode unmarshals the returned entity into out.
func (r Result) Decode(out interface{}) error {
	return (&client.Response{Data: r.Data}).Decode(out)
}

// Executor is stateless and safe for concurrent use.
type Executor struct {
	client  Doer
	logger  *zap.Logger
	metrics *metrics.Recorder
}

// New builds an executor.
func New(c Doer, logger *zap.Logger, m *metrics.Recorder) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{client: c, logger: logger, metrics: m}
}

// Execute sends one request. Errors are *appErrors.Error.
func (e *Executor) Execute(ctx context.Context, method, path string, body interface{}) (Result, error) {
	resp, err := e.client.Do(ctx, client.Request{Method: method, Path: path, Body: body})
	action := actionLabel(method, path)
	e.metrics.RecordMutation(resourceName(path), action, err)
	if err != nil {
		e.logger.Info("mutation failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return Result{}, appErrors.FromError(err)
	}
	return Result{Data: resp.Data, Message: resp.Message}, nil
}

// Create POSTs a new item to the collection.
func (e *Executor) Create(ctx context.Context, d resource.Descriptor, body interface{}) (Result, error) {
	return e.Execute(ctx, http.MethodPost, d.Path, body)
}

// Update PUTs the item.
func (e *Executor) Update(ctx context.Context, d resource.Descriptor, id string, body interface{}) (Result, error) {
	if id == "" {
		return Result{}, appErrors.Local(d.Singular+" id is required", nil)
	}
	return e.Execute(ctx, http.MethodPut, d.ItemPath(id), body)
}

// Delete removes the item. Confirmation is the caller's responsibility.
func (e *Executor) Delete(ctx context.Context, d resource.Descriptor, id string) (Result, error) {
	if id == "" {
		return Result{}, appErrors.Local(d.Singular+" id is required", nil)
	}
	return e.Execute(ctx, http.MethodDelete, d.ItemPath(id), nil)
}

// Action invokes a custom item action such as toggle-status or publish.
// toggle-status is a PUT; the remaining actions are POSTs.
func (e *Executor) Action(ctx context.Context, d resource.Descriptor, id, action string, body interface{}) (Result, error) {
	if id == "" {
		return Result{}, appErrors.Local(d.Singular+" id is required", nil)
	}
	if !d.Supports(action) {
		return Result{}, appErrors.Local(action+" is not available for "+d.Name, nil)
	}
	method := http.MethodPost
	if action == resource.ActionToggleStatus {
		method = http.MethodPut
	}
	return e.Execute(ctx, method, d.ActionPath(id, action), body)
}

func resourceName(path string) string {
	name, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	return name
}

func actionLabel(method, path string) string {
	switch method {
	case http.MethodPost:
		if n := lastSegment(path); n == resource.ActionPublish || n == resource.ActionSend || n == resource.ActionGenerate {
			return n
		}
		return "create"
	case http.MethodPut:
		if lastSegment(path) == resource.ActionToggleStatus {
			return resource.ActionToggleStatus
		}
		return "update"
	case http.MethodDelete:
		return "delete"
	}
	return method
}

func lastSegment(path string) string {
	return path[strings.LastIndexByte(path, '/')+1:]
}
