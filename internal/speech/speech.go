// Package speech provides speakers for reading scenario results aloud.
package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/config"
	"github.com/andresuchdata/scenario-planner/backend-go/pkg/logger"
)

const (
	EngineNone   = "none"
	EngineEspeak = "espeak"
	EngineSay    = "say"
)

// ArgsFunc builds the argv for one utterance.
type ArgsFunc func(text, lang string) []string

// New returns the speaker configured by cfg. Unknown engines and engines whose
// binary is missing degrade to a Noop speaker.
func New(cfg config.SpeechConfig) Speaker {
	log := logger.Component("speech")

	var args ArgsFunc
	switch strings.ToLower(strings.TrimSpace(cfg.Engine)) {
	case EngineEspeak:
		args = espeakArgs
	case EngineSay:
		args = sayArgs
	case EngineNone, "":
		return NewNoop()
	default:
		log.Warn().Str("engine", cfg.Engine).Msg("unknown speech engine, speech disabled")
		return NewNoop()
	}

	sp, err := NewCommandSpeaker(args)
	if err != nil {
		log.Warn().Err(err).Str("engine", cfg.Engine).Msg("speech engine unavailable, speech disabled")
		return NewNoop()
	}
	return sp
}

// Speaker mirrors engine.Speaker so this package does not import the engine.
type Speaker interface {
	Speak(ctx context.Context, text, lang string) error
}

func espeakArgs(text, lang string) []string {
	return []string{"espeak-ng", "-v", strings.ToLower(lang), text}
}

func sayArgs(text, _ string) []string {
	return []string{"say", text}
}

// Noop accepts every utterance and only logs it.
type Noop struct {
	log zerolog.Logger
}

func NewNoop() *Noop {
	return &Noop{log: logger.Component("speech")}
}

func (n *Noop) Speak(ctx context.Context, text, lang string) error {
	n.log.Debug().Str("lang", lang).Str("text", text).Msg("speech output not supported, skipping")
	return nil
}

// CommandSpeaker speaks through an external text-to-speech binary. At most one
// utterance is active: Speak stops the previous process before starting the next.
type CommandSpeaker struct {
	args ArgsFunc
	log  zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCommandSpeaker checks that the binary named by args exists.
func NewCommandSpeaker(args ArgsFunc) (*CommandSpeaker, error) {
	argv := args("", "")
	if len(argv) == 0 {
		return nil, fmt.Errorf("speech command is empty")
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return nil, fmt.Errorf("speech command %q not found: %w", argv[0], err)
	}
	return &CommandSpeaker{args: args, log: logger.Component("speech")}, nil
}

// Speak starts the utterance and returns without waiting for playback.
func (s *CommandSpeaker) Speak(ctx context.Context, text, lang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	argv := s.args(text, lang)
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start speech command: %w", err)
	}

	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		if err := cmd.Wait(); err != nil && runCtx.Err() == nil {
			s.log.Warn().Err(err).Msg("speech command failed")
		}
	}()

	return nil
}

// Active reports whether an utterance is still playing.
func (s *CommandSpeaker) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Stop cancels the utterance in progress, if any.
func (s *CommandSpeaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *CommandSpeaker) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}
