// Package selection holds the viewer state of each browser session: the
// selected scenario, sequence and frame, the pending frame input and the
// theme. Every change is announced through a Publisher.
package selection

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/scenaview/internal/apperr"
	"github.com/starford/scenaview/internal/catalog"
	"github.com/starford/scenaview/internal/models"
	"github.com/starford/scenaview/internal/prefs"
	"github.com/starford/scenaview/internal/sse"
	"github.com/starford/scenaview/internal/viewstate"
)

// DefaultInputDebounce is the quiet period before typed frame input is applied.
const DefaultInputDebounce = 300 * time.Millisecond

// Publisher receives state change events.
type Publisher interface {
	Publish(sse.Event)
}

// Session is a snapshot of one viewer's selection.
type Session struct {
	ID          string    `json:"id" msgpack:"id"`
	ScenarioID  string    `json:"scenarioId,omitempty" msgpack:"scenarioId,omitempty"`
	SequenceID  string    `json:"sequenceId,omitempty" msgpack:"sequenceId,omitempty"`
	FrameNumber int       `json:"frameNumber,omitempty" msgpack:"frameNumber,omitempty"`
	FrameInput  string    `json:"frameInput" msgpack:"frameInput"`
	DarkMode    bool      `json:"darkMode" msgpack:"darkMode"`
	CreatedAt   time.Time `json:"createdAt" msgpack:"createdAt"`
}

type state struct {
	Session
	inputTimer *time.Timer
	// last debounced input value that was applied
	lastInput string
}

// Service owns all sessions.
type Service struct {
	cat      *catalog.Catalog
	store    prefs.Store
	pub      Publisher
	logger   *slog.Logger
	debounce time.Duration

	mu       sync.Mutex
	sessions map[string]*state

	// storeMu orders preference writes against Delete so a removed session
	// never leaves a row behind.
	storeMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithDebounce overrides DefaultInputDebounce.
func WithDebounce(d time.Duration) Option {
	return func(s *Service) { s.debounce = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service. pub may be nil.
func New(cat *catalog.Catalog, store prefs.Store, pub Publisher, opts ...Option) *Service {
	s := &Service{
		cat:      cat,
		store:    store,
		pub:      pub,
		logger:   slog.Default(),
		debounce: DefaultInputDebounce,
		sessions: make(map[string]*state),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new session with nothing selected.
func (s *Service) Create() (Session, error) {
	sess := Session{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	dark, err := s.store.DarkMode(sess.ID)
	if err != nil {
		return Session{}, fmt.Errorf("selection: create: %w", err)
	}
	sess.DarkMode = dark

	s.mu.Lock()
	s.sessions[sess.ID] = &state{Session: sess}
	s.mu.Unlock()

	s.logger.Debug("session created", slog.String("session", sess.ID))
	return sess, nil
}

// Get returns the current state of session id.
func (s *Service) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.lookup(id)
	if err != nil {
		return Session{}, err
	}
	return st.Session, nil
}

// SelectScenario selects scenarioID, or clears the selection when it is
// empty. The sequence and frame are always cleared.
func (s *Service) SelectScenario(id, scenarioID string) (Session, error) {
	var sc models.Scenario
	if scenarioID != "" {
		var err error
		if sc, err = s.cat.ScenarioByID(scenarioID); err != nil {
			return Session{}, err
		}
	}

	s.mu.Lock()
	st, err := s.lookup(id)
	if err != nil {
		s.mu.Unlock()
		return Session{}, err
	}
	st.ScenarioID = sc.ID
	st.clearSequence()
	snap := st.Session
	s.mu.Unlock()

	s.publish(sse.Event{Type: sse.TypeScenarioSelected, Session: id, Data: map[string]string{
		"scenarioId":   sc.ID,
		"scenarioName": sc.Name,
	}})
	return snap, nil
}

// SelectSequence selects sequenceID within the current scenario, or clears
// it when empty. The frame is cleared.
func (s *Service) SelectSequence(id, sequenceID string) (Session, error) {
	var sq models.Sequence
	if sequenceID != "" {
		var err error
		if sq, err = s.cat.SequenceByID(sequenceID); err != nil {
			return Session{}, err
		}
	}

	s.mu.Lock()
	st, err := s.lookup(id)
	if err != nil {
		s.mu.Unlock()
		return Session{}, err
	}
	if sq.ID != "" && st.ScenarioID == "" {
		s.mu.Unlock()
		return Session{}, fmt.Errorf("select sequence: scenario: %w", apperr.ErrNoSelection)
	}
	st.clearSequence()
	st.SequenceID = sq.ID
	snap := st.Session
	s.mu.Unlock()

	s.publish(sse.Event{Type: sse.TypeSequenceSelected, Session: id, Data: map[string]any{
		"sequenceId":   sq.ID,
		"sequenceName": sq.Name,
		"maxFrames":    viewstate.MaxFrames(sq),
	}})
	return snap, nil
}

// SelectFrame selects frame of the current sequence.
func (s *Service) SelectFrame(id string, frame int) (Session, error) {
	s.mu.Lock()
	st, err := s.lookup(id)
	if err != nil {
		s.mu.Unlock()
		return Session{}, err
	}
	snap, err := s.applyFrame(st, frame)
	s.mu.Unlock()
	if err != nil {
		return Session{}, err
	}
	s.publishFrame(snap)
	return snap, nil
}

// Navigate steps the current frame by delta. Steps leaving the valid range
// are rejected with ErrInvalidInput.
func (s *Service) Navigate(id string, delta int) (Session, error) {
	s.mu.Lock()
	st, err := s.lookup(id)
	if err != nil {
		s.mu.Unlock()
		return Session{}, err
	}
	seq, err := s.currentSequence(st)
	if err != nil {
		s.mu.Unlock()
		return Session{}, err
	}
	if !viewstate.CanNavigate(st.FrameNumber, delta, viewstate.MaxFrames(seq)) {
		s.mu.Unlock()
		return Session{}, fmt.Errorf("navigate %+d from %d: %w", delta, st.FrameNumber, apperr.ErrInvalidInput)
	}
	snap, err := s.applyFrame(st, st.FrameNumber+delta)
	s.mu.Unlock()
	if err != nil {
		return Session{}, err
	}
	s.publishFrame(snap)
	return snap, nil
}

// SetFrameInput records typed frame input. It is applied once no further
// input arrives for the debounce period, and only if it differs from the
// previously applied input. Valid input selects the frame; invalid input
// emits frame.invalid.
func (s *Service) SetFrameInput(id, raw string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.lookup(id)
	if err != nil {
		return Session{}, err
	}
	if st.SequenceID == "" {
		return Session{}, fmt.Errorf("frame input: sequence: %w", apperr.ErrNoSelection)
	}
	st.FrameInput = raw
	if st.inputTimer != nil {
		st.inputTimer.Stop()
	}
	st.inputTimer = time.AfterFunc(s.debounce, func() { s.flushInput(id, raw) })
	return st.Session, nil
}

func (s *Service) flushInput(id, raw string) {
	s.mu.Lock()
	st, err := s.lookup(id)
	if err != nil || st.FrameInput != raw || st.lastInput == raw {
		s.mu.Unlock()
		return
	}
	st.lastInput = raw
	seq, err := s.currentSequence(st)
	if err != nil {
		s.mu.Unlock()
		return
	}
	frame, err := viewstate.ParseFrame(raw, viewstate.MaxFrames(seq))
	if err != nil {
		s.mu.Unlock()
		s.publish(sse.Event{Type: sse.TypeFrameInvalid, Session: id, Data: map[string]any{
			"input":     raw,
			"error":     err.Error(),
			"maxFrames": viewstate.MaxFrames(seq),
		}})
		return
	}
	st.FrameNumber = frame
	snap := st.Session
	s.mu.Unlock()
	s.publishFrame(snap)
}

// SetDarkMode persists the theme flag of session id.
func (s *Service) SetDarkMode(id string, dark bool) (Session, error) {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	s.mu.Lock()
	st, err := s.lookup(id)
	s.mu.Unlock()
	if err != nil {
		return Session{}, err
	}
	if err := s.store.SetDarkMode(id, dark); err != nil {
		return Session{}, fmt.Errorf("selection: theme: %w", err)
	}

	s.mu.Lock()
	st.DarkMode = dark
	snap := st.Session
	s.mu.Unlock()

	s.publish(sse.Event{Type: sse.TypeThemeChanged, Session: id, Data: map[string]bool{"darkMode": dark}})
	return snap, nil
}

// Delete drops session id and its stored preferences.
func (s *Service) Delete(id string) error {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	s.mu.Lock()
	st, err := s.lookup(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if st.inputTimer != nil {
		st.inputTimer.Stop()
	}
	delete(s.sessions, id)
	s.mu.Unlock()

	if err := s.store.Delete(id); err != nil {
		return fmt.Errorf("selection: delete: %w", err)
	}
	s.publish(sse.Event{Type: sse.TypeSessionDeleted, Session: id, Data: map[string]string{"id": id}})
	s.logger.Debug("session deleted", slog.String("session", id))
	return nil
}

// Close stops pending input timers.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.sessions {
		if st.inputTimer != nil {
			st.inputTimer.Stop()
		}
	}
}

// Count returns the number of live sessions.
func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Service) lookup(id string) (*state, error) {
	st, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, apperr.ErrNotFound)
	}
	return st, nil
}

func (s *Service) currentSequence(st *state) (models.Sequence, error) {
	if st.SequenceID == "" {
		return models.Sequence{}, fmt.Errorf("sequence: %w", apperr.ErrNoSelection)
	}
	return s.cat.SequenceByID(st.SequenceID)
}

// applyFrame must be called with s.mu held.
func (s *Service) applyFrame(st *state, frame int) (Session, error) {
	seq, err := s.currentSequence(st)
	if err != nil {
		return Session{}, err
	}
	if err := viewstate.ValidateFrame(frame, viewstate.MaxFrames(seq)); err != nil {
		return Session{}, err
	}
	st.FrameNumber = frame
	st.FrameInput = strconv.Itoa(frame)
	st.lastInput = st.FrameInput
	if st.inputTimer != nil {
		st.inputTimer.Stop()
	}
	return st.Session, nil
}

func (s *Service) publishFrame(sess Session) {
	s.publish(sse.Event{Type: sse.TypeFrameSelected, Session: sess.ID, Data: map[string]any{
		"sequenceId":  sess.SequenceID,
		"frameNumber": sess.FrameNumber,
	}})
}

func (s *Service) publish(ev sse.Event) {
	if s.pub != nil {
		s.pub.Publish(ev)
	}
}

func (st *state) clearSequence() {
	st.SequenceID = ""
	st.FrameNumber = 0
	st.FrameInput = ""
	st.lastInput = ""
	if st.inputTimer != nil {
		st.inputTimer.Stop()
		st.inputTimer = nil
	}
}
