package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
	"github.com/andresuchdata/scenario-planner/backend-go/pkg/logger"
)

// SimulationClient runs a scenario on the simulation backend.
type SimulationClient interface {
	RunScenario(ctx context.Context, req domain.SimulationRequest) (*domain.SimulationResponse, error)
}

// Speaker reads text aloud. Implementations must not block on playback and
// must cancel any utterance still in progress before starting a new one.
type Speaker interface {
	Speak(ctx context.Context, text, lang string) error
}

// Options configures a Session.
type Options struct {
	Client  SimulationClient
	Speaker Speaker
	Lang    string
	Now     func() time.Time
	NewID   func() (string, error)
}

// Session owns the state of one dashboard user and drives its transitions.
type Session struct {
	id      string
	client  SimulationClient
	speaker Speaker
	lang    string
	now     func() time.Time
	newID   func() (string, error)
	log     zerolog.Logger

	mu    sync.Mutex
	state State
}

// NewSession creates an idle session.
func NewSession(id string, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = newScenarioID
	}
	if opts.Lang == "" {
		opts.Lang = "en-US"
	}

	return &Session{
		id:      id,
		client:  opts.Client,
		speaker: opts.Speaker,
		lang:    opts.Lang,
		now:     opts.Now,
		newID:   opts.NewID,
		log:     logger.Component("engine").With().Str("session", id).Logger(),
		state:   NewState(),
	}
}

func newScenarioID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ID returns the session key.
func (s *Session) ID() string {
	return s.id
}

// State returns a snapshot of the session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) apply(fn func(State) State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state)
	return s.state
}

// Run calls the simulation backend once and publishes the merged result.
// The backend call is detached from ctx cancellation: an in-flight run is never
// aborted, and overlapping runs are not serialized, so the last to settle wins.
// On failure the current result is left as it was.
func (s *Session) Run(ctx context.Context, in domain.ScenarioInput) (*domain.Result, error) {
	s.apply(State.StartRun)

	resp, err := s.client.RunScenario(context.WithoutCancel(ctx), domain.NewSimulationRequest(in))
	if err != nil {
		s.apply(State.FailRun)
		s.log.Error().Err(err).Msg("simulation run failed")
		if !errors.Is(err, domain.ErrBackendUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
		}
		return nil, err
	}

	result := AssembleResult(in, resp)
	s.apply(func(st State) State { return st.CompleteRun(in, result) })

	s.say(ctx, BuildSpokenSummary(result))
	return result, nil
}

// Save stores the current result under name (or the default name).
func (s *Session) Save(name string) (*domain.SavedScenario, error) {
	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("generate scenario id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, saved, err := s.state.Save(name, id, s.now())
	s.state = next
	if err != nil {
		s.log.Info().Msg("save refused: no current result")
		return nil, err
	}
	return saved, nil
}

// Select sets one comparison slot.
func (s *Session) Select(slot domain.ComparisonSlot, id string) State {
	return s.apply(func(st State) State { return st.Select(slot, id) })
}

// Comparison renders the comparison table for the current selection.
func (s *Session) Comparison() Comparison {
	return BuildComparison(s.State())
}

// Projection returns the synthetic inventory curve for demand, or for the
// last run's demand when demand is nil.
func (s *Session) Projection(demand *float64) []domain.ProjectionPoint {
	if demand != nil {
		return ProjectInventory(*demand)
	}
	st := s.State()
	if st.CurrentInputs != nil {
		return ProjectInventory(st.CurrentInputs.Demand)
	}
	return ProjectInventory(0)
}

// Speak reads the latest result aloud, or a fixed sentence when there is none.
// It returns the text handed to the speaker.
func (s *Session) Speak(ctx context.Context) string {
	text := BuildSpokenSummary(s.State().Current)
	if text == "" {
		text = NoResultUtterance
	}
	s.say(ctx, text)
	return text
}

func (s *Session) say(ctx context.Context, text string) {
	if s.speaker == nil || text == "" {
		return
	}
	if err := s.speaker.Speak(context.WithoutCancel(ctx), text, s.lang); err != nil {
		s.log.Warn().Err(err).Msg("speech output failed")
	}
}
