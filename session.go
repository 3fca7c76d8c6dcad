package unitconv

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"
)

// Placeholder is shown instead of a result sentence while the input is
// empty, zero or not a number.
const Placeholder = "변환 결과가 여기에 표시됩니다"

// HookFunc observes a session after each recomputation.
type HookFunc func(st State)

// State is a snapshot of one converter.
type State struct {
	ID         string
	Category   string
	FromUnit   string
	ToUnit     string
	Input      string
	Output     string
	Result     float64
	ResultText string
}

// Session is the state of one converter instance: a category, a unit pair
// and the raw input. Every change recomputes the output synchronously.
type Session struct {
	ID string

	mutex   sync.Mutex
	catalog *Catalog
	state   State
	hooks   []HookFunc
	metrics *Metrics
	logger  *slog.Logger

	pendingCategory string
	pendingText     string
	pending         func() bool
}

type SessionOption func(*Session)

func WithMetrics(m *Metrics) SessionOption {
	return func(s *Session) {
		s.metrics = m
	}
}

func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithHook(h HookFunc) SessionOption {
	return func(s *Session) {
		s.hooks = append(s.hooks, h)
	}
}

// WithPending replaces the result sentence of category with text while
// pending reports true, e.g. until live exchange rates arrive. Callers swap
// in the refreshed catalog with SetCatalog, which recomputes the sentence.
func WithPending(category, text string, pending func() bool) SessionOption {
	return func(s *Session) {
		s.pendingCategory = category
		s.pendingText = text
		s.pending = pending
	}
}

// NewSession opens a converter on category with the first unit as source
// and the second as target.
func NewSession(catalog *Catalog, category string, opts ...SessionOption) (*Session, error) {
	s := &Session{
		ID:      uuid.New().String(),
		catalog: catalog,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.ID = s.ID
	if err := s.loadCategory(category); err != nil {
		return nil, err
	}
	st := s.recompute()
	s.runHooks(st)
	return s, nil
}

func (s *Session) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

// Catalog returns the catalog the session currently converts with.
func (s *Session) Catalog() *Catalog {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.catalog
}

func (s *Session) SetInput(raw string) {
	s.update(func() error {
		s.state.Input = raw
		return nil
	})
}

func (s *Session) SetFromUnit(unit string) error {
	return s.update(func() error {
		if _, err := s.catalog.Unit(s.state.Category, unit); err != nil {
			return err
		}
		s.state.FromUnit = unit
		return nil
	})
}

func (s *Session) SetToUnit(unit string) error {
	return s.update(func() error {
		if _, err := s.catalog.Unit(s.state.Category, unit); err != nil {
			return err
		}
		s.state.ToUnit = unit
		return nil
	})
}

// SetCategory switches to another category and resets the unit pair. The
// input is kept.
func (s *Session) SetCategory(category string) error {
	return s.update(func() error {
		return s.loadCategory(category)
	})
}

// Swap exchanges the units and feeds the displayed output back as the new
// input verbatim, without inverting the previous conversion.
func (s *Session) Swap() {
	s.update(func() error {
		s.state.FromUnit, s.state.ToUnit = s.state.ToUnit, s.state.FromUnit
		s.state.Input = s.state.Output
		return nil
	})
}

// SetCatalog replaces the catalog, e.g. once live exchange rates arrive.
// The selection survives when the new catalog still has it.
func (s *Session) SetCatalog(catalog *Catalog) error {
	return s.update(func() error {
		if _, err := catalog.Category(s.state.Category); err != nil {
			return err
		}
		prev := s.catalog
		s.catalog = catalog
		_, errFrom := catalog.Unit(s.state.Category, s.state.FromUnit)
		_, errTo := catalog.Unit(s.state.Category, s.state.ToUnit)
		if errFrom != nil || errTo != nil {
			if err := s.loadCategory(s.state.Category); err != nil {
				s.catalog = prev
				return err
			}
		}
		return nil
	})
}

func (s *Session) update(change func() error) error {
	s.mutex.Lock()
	if err := change(); err != nil {
		s.mutex.Unlock()
		return err
	}
	st := s.recompute()
	s.mutex.Unlock()
	s.runHooks(st)
	return nil
}

// loadCategory must be called with the mutex held or before the session
// is shared.
func (s *Session) loadCategory(category string) error {
	units, err := s.catalog.Units(category)
	if err != nil {
		return err
	}
	s.state.Category = category
	s.state.FromUnit = units[0].Key
	s.state.ToUnit = units[0].Key
	if len(units) > 1 {
		s.state.ToUnit = units[1].Key
	}
	return nil
}

func (s *Session) recompute() State {
	st := &s.state
	res, err := s.catalog.ConvertStrict(st.Category, st.FromUnit, st.ToUnit, st.Input)
	st.Result = res
	st.Output = Format(res)

	_, numeric := ParseValue(st.Input)
	switch {
	case err != nil:
		s.logger.Error("conversion failed", "session", s.ID, "category", st.Category, "error", err)
		s.metrics.RecordConversion(st.Category, ResultUndefined)
	case !numeric:
		s.metrics.RecordConversion(st.Category, ResultInvalidInput)
	case math.IsNaN(res):
		s.metrics.RecordConversion(st.Category, ResultUndefined)
	default:
		s.metrics.RecordConversion(st.Category, ResultOK)
	}

	if !numeric || st.Input == "0" || err != nil {
		st.ResultText = Placeholder
	} else {
		fromName, _ := s.catalog.UnitName(st.Category, st.FromUnit)
		toName, _ := s.catalog.UnitName(st.Category, st.ToUnit)
		st.ResultText = fmt.Sprintf("%s %s = %s %s", st.Input, fromName, st.Output, toName)
	}
	if s.pending != nil && st.Category == s.pendingCategory && s.pending() {
		st.ResultText = s.pendingText
	}
	s.logger.Debug("conversion updated", "session", s.ID, "category", st.Category,
		"from", st.FromUnit, "to", st.ToUnit, "input", st.Input, "output", st.Output)
	return *st
}

func (s *Session) runHooks(st State) {
	for _, hook := range s.hooks {
		hook(st)
	}
}
