package speech

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/config"
)

func TestNewFallsBackToNoop(t *testing.T) {
	tests := []string{"", "none", "klingon"}
	for _, engine := range tests {
		if _, ok := New(config.SpeechConfig{Engine: engine}).(*Noop); !ok {
			t.Errorf("engine %q: expected Noop speaker", engine)
		}
	}
}

func TestNoopSpeak(t *testing.T) {
	if err := NewNoop().Speak(context.Background(), "hello", "en-US"); err != nil {
		t.Errorf("noop speaker returned error: %v", err)
	}
}

func TestNewCommandSpeakerMissingBinary(t *testing.T) {
	_, err := NewCommandSpeaker(func(text, lang string) []string {
		return []string{"definitely-not-a-speech-binary", text}
	})
	if err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestCommandSpeakerCancelsPreviousUtterance(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}

	sp, err := NewCommandSpeaker(func(text, lang string) []string {
		return []string{"sleep", "30"}
	})
	if err != nil {
		t.Fatalf("NewCommandSpeaker: %v", err)
	}
	defer sp.Stop()

	if err := sp.Speak(context.Background(), "first", "en-US"); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	firstDone := sp.done

	start := time.Now()
	if err := sp.Speak(context.Background(), "second", "en-US"); err != nil {
		t.Fatalf("Speak: %v", err)
	}

	select {
	case <-firstDone:
	default:
		t.Error("first utterance still running after second Speak")
	}
	if time.Since(start) > 10*time.Second {
		t.Error("second Speak waited for the first utterance to finish")
	}
	if !sp.Active() {
		t.Error("expected second utterance active")
	}

	sp.Stop()
	if sp.Active() {
		t.Error("expected no active utterance after Stop")
	}
}
