package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
)

type fakeClient struct {
	mu      sync.Mutex
	calls   []domain.SimulationRequest
	resp    *domain.SimulationResponse
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeClient) RunScenario(ctx context.Context, req domain.SimulationRequest) (*domain.SimulationResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeSpeaker struct {
	mu    sync.Mutex
	texts []string
	langs []string
}

func (f *fakeSpeaker) Speak(ctx context.Context, text, lang string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	f.langs = append(f.langs, lang)
	return nil
}

func newTestSession(c SimulationClient, sp Speaker) *Session {
	n := 0
	return NewSession("test", Options{
		Client:  c,
		Speaker: sp,
		Lang:    "en-GB",
		Now:     func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
		NewID: func() (string, error) {
			n++
			return "id-" + string(rune('0'+n)), nil
		},
	})
}

func TestSessionRunPublishesAndSpeaks(t *testing.T) {
	client := &fakeClient{resp: &domain.SimulationResponse{TotalCost: 5000, ExpectedDelay: 3.5, ServiceLevel: 0.95}}
	speaker := &fakeSpeaker{}
	s := newTestSession(client, speaker)

	result, err := s.Run(context.Background(), testInput)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(client.calls) != 1 {
		t.Fatalf("expected one backend call, got %d", len(client.calls))
	}
	if client.calls[0] != (domain.SimulationRequest{Demand: 500, LeadTime: 7, Cost: 10}) {
		t.Errorf("unexpected request %+v", client.calls[0])
	}

	st := s.State()
	if st.Current != result {
		t.Error("expected result published as current")
	}
	if st.Running() {
		t.Error("expected idle after success")
	}

	if len(speaker.texts) != 1 || !strings.Contains(speaker.texts[0], "5000") {
		t.Errorf("expected summary spoken, got %v", speaker.texts)
	}
	if speaker.langs[0] != "en-GB" {
		t.Errorf("expected configured language, got %s", speaker.langs[0])
	}
}

func TestSessionRunFailureKeepsCurrentResult(t *testing.T) {
	client := &fakeClient{resp: &domain.SimulationResponse{TotalCost: 1}}
	s := newTestSession(client, nil)

	first, err := s.Run(context.Background(), testInput)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	client.err = errors.New("connection refused")
	_, err = s.Run(context.Background(), testInput)
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}

	st := s.State()
	if st.Current != first {
		t.Error("failed run replaced the current result")
	}
	if st.Running() {
		t.Error("expected idle after failure")
	}
	if st.Notice == "" {
		t.Error("expected a user notice after failure")
	}
}

func TestSessionRunningFlag(t *testing.T) {
	client := &fakeClient{
		resp:    &domain.SimulationResponse{TotalCost: 1},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	s := newTestSession(client, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.Run(context.Background(), testInput)
		done <- err
	}()

	<-client.entered
	if !s.State().Running() {
		t.Error("expected running while the request is outstanding")
	}

	close(client.block)
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.State().Running() {
		t.Error("expected idle after the request settled")
	}
}

// gatedClient holds each request until the gate for its demand is released
// and answers with the demand as total cost.
type gatedClient struct {
	gates   map[float64]chan struct{}
	entered chan float64
}

func (g *gatedClient) RunScenario(ctx context.Context, req domain.SimulationRequest) (*domain.SimulationResponse, error) {
	g.entered <- req.Demand
	<-g.gates[req.Demand]
	return &domain.SimulationResponse{TotalCost: req.Demand, ServiceLevel: 0.95}, nil
}

func TestSessionOverlappingRunsLastSettledWins(t *testing.T) {
	client := &gatedClient{
		gates: map[float64]chan struct{}{
			1: make(chan struct{}),
			2: make(chan struct{}),
		},
		entered: make(chan float64, 2),
	}
	s := newTestSession(client, nil)

	done := make(chan error, 2)
	start := func(demand float64) {
		go func() {
			_, err := s.Run(context.Background(), domain.ScenarioInput{Demand: demand, TargetServiceLevel: domain.ServiceLevel95})
			done <- err
		}()
		<-client.entered
	}
	start(1)
	start(2)

	close(client.gates[2])
	if err := <-done; err != nil {
		t.Fatalf("second run: %v", err)
	}
	if cur := s.State().Current; cur == nil || cur.TotalCost != 2 {
		t.Fatalf("expected second run's result once it settled, got %+v", cur)
	}

	close(client.gates[1])
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}

	st := s.State()
	if st.Current == nil || st.Current.TotalCost != 1 {
		t.Errorf("expected the run that settled last to win, got %+v", st.Current)
	}
	if st.CurrentInputs == nil || st.CurrentInputs.Demand != 1 {
		t.Errorf("expected inputs of the last settled run, got %+v", st.CurrentInputs)
	}
	if st.Running() {
		t.Error("expected idle once both runs settled")
	}
}

func TestSessionRunIgnoresCallerCancellation(t *testing.T) {
	client := &fakeClient{resp: &domain.SimulationResponse{TotalCost: 1}}
	s := newTestSession(client, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Run(ctx, testInput); err != nil {
		t.Fatalf("expected run to complete despite cancelled caller, got %v", err)
	}
}

func TestSessionSaveAndCompare(t *testing.T) {
	client := &fakeClient{resp: &domain.SimulationResponse{TotalCost: 1000}}
	s := newTestSession(client, nil)

	if _, err := s.Save(""); !errors.Is(err, domain.ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
	if n := len(s.State().Scenarios); n != 0 {
		t.Fatalf("expected no scenarios, got %d", n)
	}

	s.Run(context.Background(), testInput)
	first, err := s.Save("")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	client.resp = &domain.SimulationResponse{TotalCost: 2500}
	s.Run(context.Background(), testInput)
	second, err := s.Save("")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	cmp := s.Comparison()
	if !cmp.Available {
		t.Fatal("expected comparison available with two scenarios")
	}
	if cmp.A.ID != first.ID || cmp.B.ID != second.ID {
		t.Errorf("expected A=%s B=%s, got A=%s B=%s", first.ID, second.ID, cmp.A.ID, cmp.B.ID)
	}
	if cmp.Rows[0].A != "1,000" || cmp.Rows[0].B != "2,500" {
		t.Errorf("unexpected total cost row %+v", cmp.Rows[0])
	}

	s.Select(domain.SlotA, second.ID)
	if got := s.Comparison().A.ID; got != second.ID {
		t.Errorf("expected A reselected to %s, got %s", second.ID, got)
	}
}

func TestSessionSpeakWithoutResult(t *testing.T) {
	speaker := &fakeSpeaker{}
	s := newTestSession(&fakeClient{}, speaker)

	text := s.Speak(context.Background())
	if text != NoResultUtterance {
		t.Errorf("expected no-result utterance, got %q", text)
	}
	if len(speaker.texts) != 1 || speaker.texts[0] != NoResultUtterance {
		t.Errorf("expected speaker called with no-result utterance, got %v", speaker.texts)
	}
}

func TestSessionProjection(t *testing.T) {
	s := newTestSession(&fakeClient{resp: &domain.SimulationResponse{}}, nil)

	if got := s.Projection(nil)[0].Level; got != 50 {
		t.Errorf("expected curve from 50 without a run, got %v", got)
	}

	s.Run(context.Background(), testInput)
	if got := s.Projection(nil)[0].Level; got != 550 {
		t.Errorf("expected curve from last run demand, got %v", got)
	}

	demand := 10.0
	if got := s.Projection(&demand)[0].Level; got != 60 {
		t.Errorf("expected explicit demand to win, got %v", got)
	}
}

func TestRegistryReusesSessions(t *testing.T) {
	r := NewRegistry(Options{Client: &fakeClient{}})

	a := r.Get("")
	if a.ID() != DefaultSessionID {
		t.Errorf("expected default session id, got %s", a.ID())
	}
	if r.Get("default") != a {
		t.Error("expected same session for same id")
	}
	if r.Get("other") == a {
		t.Error("expected distinct session for another id")
	}
	if r.Len() != 2 {
		t.Errorf("expected 2 sessions, got %d", r.Len())
	}
}
