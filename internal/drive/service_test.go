package drive

import (
	"context"
	"testing"
)

func TestNewServiceRequiresCredentials(t *testing.T) {
	if _, err := NewService(context.Background(), "  "); err == nil {
		t.Error("expected error for empty credentials")
	}
	if _, err := NewService(context.Background(), "{not json"); err == nil {
		t.Error("expected error for malformed credentials")
	}
}

func TestEscapeQuery(t *testing.T) {
	if got := escapeQuery("it's"); got != `it\'s` {
		t.Errorf("escapeQuery = %q", got)
	}
}
