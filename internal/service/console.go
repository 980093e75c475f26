package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/cascade"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/client"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/form"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/mutation"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/session"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/config"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/metrics"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/storage"
)

// Console wires one operator session to the backend.
type Console struct {
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *metrics.Recorder
	Store     storage.Store
	Session   *session.Session
	Client    *client.Client
	Executor  *mutation.Executor
	Validator *validator.Validate

	Auth    *AuthService
	Records *RecordService
	Lists   *ListFactory
	Monitor *PerformanceMonitor
}

// NewConsole opens the session store, loads the persisted session and
// builds every service on top of it. A nil store opens the one cfg names.
func NewConsole(ctx context.Context, cfg *config.Config, store storage.Store, logger *zap.Logger, rec *metrics.Recorder) (*Console, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		var err error
		if store, err = storage.Open(cfg); err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
	}

	sess := session.New(store, logger.Named("session"))
	if err := sess.Load(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	apiClient := client.New(client.Options{
		BaseURL:        cfg.API.BaseURL(),
		Timeout:        cfg.API.Timeout,
		Tokens:         sess,
		Logger:         logger.Named("api"),
		Metrics:        rec,
		OnUnauthorized: sess.ForceReauthentication,
	})
	exec := mutation.New(apiClient, logger.Named("mutation"), rec)
	validate := form.NewValidator()

	return &Console{
		Config:    cfg,
		Logger:    logger,
		Metrics:   rec,
		Store:     store,
		Session:   sess,
		Client:    apiClient,
		Executor:  exec,
		Validator: validate,
		Auth:      NewAuthService(apiClient, sess, validate, logger.Named("auth")),
		Records:   NewRecordService(apiClient, exec, logger.Named("records")),
		Lists: NewListFactory(apiClient, sess, ListConfig{
			PageSize:          cfg.Listing.DefaultPageSize,
			FullFetchPageSize: cfg.Listing.FullFetchPageSize,
		}, logger.Named("listing"), rec),
		Monitor: NewPerformanceMonitor(apiClient, logger.Named("monitor"), rec),
	}, nil
}

// FormOptions returns the options every form binding of this console uses.
func (c *Console) FormOptions() form.Options {
	return form.Options{
		Submitter:     c.Executor,
		Validate:      c.Validator,
		Scope:         c.Session,
		RedirectAfter: c.Config.Forms.SuccessRedirectDelay,
		Logger:        c.Logger.Named("form"),
	}
}

// Selector builds the dependent selectors for the session. Sessions locked
// to an institution get it pre-selected and pinned.
func (c *Console) Selector(ctx context.Context) (*cascade.Selector, error) {
	sel := cascade.New(CascadeLoaders(c.Client), c.Logger.Named("cascade"))
	scope := c.Session.InstitutionScope()
	if scope.Locked && scope.InstitutionID != "" {
		return sel, sel.Lock(ctx, scope.InstitutionID)
	}
	return sel, sel.Init(ctx)
}

// Placement replays target on a fresh selector and verifies each chosen
// value against the options the backend offers for it. An empty
// institution falls back to the session's.
func (c *Console) Placement(ctx context.Context, target cascade.Selection) (*cascade.Selector, error) {
	sel, err := c.Selector(ctx)
	if err != nil {
		return nil, err
	}
	if target.Institution == "" {
		target.Institution = sel.Selection().Institution
	}
	if err := sel.Restore(ctx, target); err != nil {
		return sel, err
	}
	return sel, sel.Verify()
}

// Close stops polling and releases the session store.
func (c *Console) Close() error {
	c.Monitor.Stop()
	return c.Store.Close()
}
