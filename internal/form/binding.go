// Package form binds operator input for one entity to a validated,
// normalised request payload and submits it through the mutation executor.
package form

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/mutation"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/resource"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/session"
	appErrors "github.com/shehrozeikram/SGCEducation-sub002/pkg/errors"
)

// DefaultRedirectAfter is how long the success state stays up before the
// caller returns to the list.
const DefaultRedirectAfter = 1500 * time.Millisecond

// Fields is implemented by every form in this package.
type Fields interface {
	// Payload returns the normalised request body. It is only meaningful
	// after validation passed.
	Payload() interface{}
}

// Submitter sends create and update requests. *mutation.Executor
// implements it.
type Submitter interface {
	Create(ctx context.Context, d resource.Descriptor, body interface{}) (mutation.Result, error)
	Update(ctx context.Context, d resource.Descriptor, id string, body interface{}) (mutation.Result, error)
}

// ScopeProvider supplies the session institution scope.
type ScopeProvider interface {
	InstitutionScope() session.Scope
}

// Options configures a Binding.
type Options struct {
	Submitter     Submitter
	Validate      *validator.Validate
	Scope         ScopeProvider
	RedirectAfter time.Duration
	Logger        *zap.Logger
}

// Outcome is the success state of a submit.
type Outcome struct {
	Data          json.RawMessage
	Message       string
	RedirectAfter time.Duration
}

// Binding holds the field state of one entity instance, new or existing.
type Binding[F Fields] struct {
	Values F

	desc          resource.Descriptor
	id            string
	submitter     Submitter
	validate      *validator.Validate
	scope         ScopeProvider
	redirectAfter time.Duration
	logger        *zap.Logger
}

type editable interface {
	setEditing(bool)
}

type institutionScoped interface {
	institutionField() *string
}

// New binds values for creating a new item of d.
func New[F Fields](d resource.Descriptor, values F, opts Options) *Binding[F] {
	return bind(d, "", values, opts)
}

// Edit binds values for updating the item id of d.
func Edit[F Fields](d resource.Descriptor, id string, values F, opts Options) *Binding[F] {
	return bind(d, strings.TrimSpace(id), values, opts)
}

func bind[F Fields](d resource.Descriptor, id string, values F, opts Options) *Binding[F] {
	validate := opts.Validate
	if validate == nil {
		validate = NewValidator()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	delay := opts.RedirectAfter
	if delay <= 0 {
		delay = DefaultRedirectAfter
	}
	if e, ok := any(values).(editable); ok {
		e.setEditing(id != "")
	}
	b := &Binding[F]{
		Values:        values,
		desc:          d,
		id:            id,
		submitter:     opts.Submitter,
		validate:      validate,
		scope:         opts.Scope,
		redirectAfter: delay,
		logger:        logger,
	}
	if field := b.institution(); field != nil && *field == "" && b.scope != nil {
		*field = b.scope.InstitutionScope().InstitutionID
	}
	return b
}

// Editing reports whether the binding updates an existing item.
func (b *Binding[F]) Editing() bool { return b.id != "" }

// InstitutionLocked reports whether the institution field is read-only for
// this session.
func (b *Binding[F]) InstitutionLocked() bool {
	if b.scope == nil || b.institution() == nil {
		return false
	}
	scope := b.scope.InstitutionScope()
	return scope.Locked && scope.InstitutionID != ""
}

// Validate runs every local check. Failures are LocalValidationFailed
// errors whose message is ready for the banner.
func (b *Binding[F]) Validate() error {
	if b.InstitutionLocked() {
		field := b.institution()
		locked := b.scope.InstitutionScope().InstitutionID
		if *field != "" && *field != locked {
			return appErrors.ErrInstitutionScopeLocked
		}
		*field = locked
	}
	if err := b.validate.Struct(b.Values); err != nil {
		return localError(err)
	}
	return nil
}

// Submit validates, then creates or updates. Local failures send nothing.
// Backend failures carry the backend message, or "Failed to save <x>".
func (b *Binding[F]) Submit(ctx context.Context) (Outcome, error) {
	if err := b.Validate(); err != nil {
		return Outcome{}, err
	}

	var (
		res mutation.Result
		err error
	)
	payload := b.Values.Payload()
	if b.Editing() {
		res, err = b.submitter.Update(ctx, b.desc, b.id, payload)
	} else {
		res, err = b.submitter.Create(ctx, b.desc, payload)
	}
	if err != nil {
		b.logger.Debug("form submit rejected", zap.String("resource", b.desc.Name), zap.Error(err))
		return Outcome{}, appErrors.Clone(appErrors.FromError(err), appErrors.Banner(err, b.desc.SaveFallback()))
	}

	message := res.Message
	if message == "" {
		verb := "created"
		if b.Editing() {
			verb = "updated"
		}
		message = capitalize(b.desc.Singular) + " " + verb + " successfully"
	}
	return Outcome{Data: res.Data, Message: message, RedirectAfter: b.redirectAfter}, nil
}

func (b *Binding[F]) institution() *string {
	if s, ok := any(b.Values).(institutionScoped); ok {
		return s.institutionField()
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
