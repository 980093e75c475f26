// Package cascade implements dependent selectors: institution, then class,
// then section, then student, with department and group hanging off the
// institution. Choosing a value clears everything below it and loads the
// options of the next levels scoped to the new value.
package cascade

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	appErrors "github.com/shehrozeikram/SGCEducation-sub002/pkg/errors"
)

// Level identifies one selector. The order is the restore order.
type Level int

const (
	LevelInstitution Level = iota
	LevelDepartment
	LevelGroup
	LevelClass
	LevelSection
	LevelStudent
	levelCount
)

var levelNames = [levelCount]string{"institution", "department", "group", "class", "section", "student"}

func (l Level) String() string {
	if l < 0 || l >= levelCount {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel maps a selector name to its level.
func ParseLevel(name string) (Level, bool) {
	for i, n := range levelNames {
		if n == name {
			return Level(i), true
		}
	}
	return 0, false
}

// children lists the levels whose options depend on each level.
var children = map[Level][]Level{
	LevelInstitution: {LevelDepartment, LevelGroup, LevelClass},
	LevelClass:       {LevelSection, LevelStudent},
	LevelSection:     {LevelStudent},
}

// State is the coarse position in the institution/class/section chain.
type State string

const (
	StateNoInstitution       State = "NoInstitution"
	StateInstitutionSelected State = "InstitutionSelected"
	StateClassSelected       State = "ClassSelected"
	StateSectionSelected     State = "SectionSelected"
)

// Option is one choice in a selector.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Selection holds the chosen id per level.
type Selection struct {
	Institution string `json:"institution,omitempty"`
	Department  string `json:"department,omitempty"`
	Group       string `json:"group,omitempty"`
	Class       string `json:"class,omitempty"`
	Section     string `json:"section,omitempty"`
	Student     string `json:"student,omitempty"`
}

// Get returns the id chosen at level.
func (s Selection) Get(level Level) string {
	return *s.field(level)
}

func (s *Selection) field(level Level) *string {
	switch level {
	case LevelInstitution:
		return &s.Institution
	case LevelDepartment:
		return &s.Department
	case LevelGroup:
		return &s.Group
	case LevelClass:
		return &s.Class
	case LevelSection:
		return &s.Section
	default:
		return &s.Student
	}
}

// Loader fetches the options of one level given the current selection.
type Loader func(ctx context.Context, sel Selection) ([]Option, error)

// Loaders holds one loader per level. Levels without a loader keep no
// options.
type Loaders map[Level]Loader

// Selector is safe for concurrent use.
type Selector struct {
	loaders Loaders
	logger  *zap.Logger

	mu      sync.Mutex
	sel     Selection
	options [levelCount][]Option
	loaded  [levelCount]bool
	errs    [levelCount]error
	locked  string
}

// New builds a selector. Call Init to load the institutions.
func New(loaders Loaders, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{loaders: loaders, logger: logger}
}

// Lock pins the institution, as for sessions that may not switch tenant.
// The institution is selected immediately.
func (s *Selector) Lock(ctx context.Context, institutionID string) error {
	s.mu.Lock()
	s.locked = institutionID
	s.mu.Unlock()
	return s.Select(ctx, LevelInstitution, institutionID)
}

// Init loads the institution options.
func (s *Selector) Init(ctx context.Context) error {
	return s.load(ctx, LevelInstitution, s.Selection())
}

// Select chooses id at level, clears every dependent level and loads the
// options of the direct dependents, one after another.
func (s *Selector) Select(ctx context.Context, level Level, id string) error {
	if level < 0 || level >= levelCount {
		return fmt.Errorf("cascade: unknown level %d", int(level))
	}
	s.mu.Lock()
	if level == LevelInstitution && s.locked != "" && id != s.locked {
		s.mu.Unlock()
		return appErrors.ErrInstitutionScopeLocked
	}
	changed := s.sel.Get(level) != id
	*s.sel.field(level) = id
	if changed {
		s.clearBelow(level)
	}
	sel := s.sel
	s.mu.Unlock()

	if !changed || id == "" {
		return nil
	}
	for _, child := range children[level] {
		if err := s.load(ctx, child, sel); err != nil {
			return err
		}
	}
	return nil
}

// Restore replays an existing selection level by level, as when an edit
// form loads a stored record.
func (s *Selector) Restore(ctx context.Context, target Selection) error {
	for level := LevelInstitution; level < levelCount; level++ {
		id := target.Get(level)
		if id == "" {
			continue
		}
		if err := s.Select(ctx, level, id); err != nil {
			return fmt.Errorf("restore %s: %w", level, err)
		}
	}
	return nil
}

// Selection returns the current choices.
func (s *Selector) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// Options returns the loaded options of level.
func (s *Selector) Options(level Level) []Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Option(nil), s.options[level]...)
}

// Err returns the last load failure of level.
func (s *Selector) Err(level Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs[level]
}

// Contains reports whether id is among the loaded options of level.
func (s *Selector) Contains(level Level, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return hasOption(s.options[level], id)
}

// Verify checks every chosen value against the options loaded for its
// level, so a class from another institution or a section from another
// class is caught before anything is sent. Levels whose options were never
// loaded, like a locked institution, are skipped.
func (s *Selector) Verify() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for level := LevelInstitution; level < levelCount; level++ {
		id := s.sel.Get(level)
		if id == "" || !s.loaded[level] {
			continue
		}
		if !hasOption(s.options[level], id) {
			return appErrors.Local(fmt.Sprintf("%s %s is not available for the current selection", level, id), nil)
		}
	}
	return nil
}

func hasOption(options []Option, id string) bool {
	for _, o := range options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// Enabled reports whether level can be chosen: its parent has a value.
// Department, group and class wait for the institution.
func (s *Selector) Enabled(level Level) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch level {
	case LevelInstitution:
		return s.locked == ""
	case LevelSection, LevelStudent:
		return s.sel.Class != ""
	}
	return s.sel.Institution != ""
}

// State reports the position in the institution/class/section chain.
func (s *Selector) State() State {
	sel := s.Selection()
	switch {
	case sel.Institution == "":
		return StateNoInstitution
	case sel.Class == "":
		return StateInstitutionSelected
	case sel.Section == "":
		return StateClassSelected
	}
	return StateSectionSelected
}

// clearBelow must be called with mu held.
func (s *Selector) clearBelow(level Level) {
	for _, child := range children[level] {
		*s.sel.field(child) = ""
		s.options[child] = nil
		s.loaded[child] = false
		s.errs[child] = nil
		s.clearBelow(child)
	}
}

func (s *Selector) load(ctx context.Context, level Level, sel Selection) error {
	loader, ok := s.loaders[level]
	if !ok || loader == nil {
		return nil
	}
	options, err := loader(ctx, sel)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.parentsMatch(level, sel) {
		s.logger.Debug("dropping options for superseded selection", zap.Stringer("level", level))
		return nil
	}
	if err != nil {
		s.loaded[level] = false
		s.errs[level] = appErrors.FromError(err)
		return s.errs[level]
	}
	s.options[level] = options
	s.loaded[level] = true
	s.errs[level] = nil
	return nil
}

// parentsMatch reports whether the selection a load was issued for is
// still current for every ancestor of level. Must be called with mu held.
func (s *Selector) parentsMatch(level Level, sel Selection) bool {
	for parent, kids := range children {
		for _, kid := range kids {
			if kid == level && s.sel.Get(parent) != sel.Get(parent) {
				return false
			}
		}
	}
	if level == LevelStudent || level == LevelSection {
		return s.sel.Institution == sel.Institution
	}
	return true
}
