package log

import (
	"strings"
	"testing"
)

func TestLogger_Info_WritesLevelAndFields(t *testing.T) {
	// Arrange
	var buf strings.Builder
	l := NewWithWriter(Debug, &buf)

	// Act
	l.Info("note fetched", "note_id", "abc123", "images", 3)

	// Assert
	out := buf.String()
	if !strings.Contains(out, "INFO") {
		t.Errorf("expected INFO in output, got %q", out)
	}
	if !strings.Contains(out, "note fetched") {
		t.Errorf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, "note_id=abc123") {
		t.Errorf("expected note_id field in output, got %q", out)
	}
	if !strings.Contains(out, "images=3") {
		t.Errorf("expected images field in output, got %q", out)
	}
}

func TestLogger_Level_FiltersBelowMinimum(t *testing.T) {
	// Arrange
	var buf strings.Builder
	l := NewWithWriter(Warn, &buf)

	// Act
	l.Debug("hidden")
	l.Info("also hidden")
	l.Warn("visible")

	// Assert
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected debug/info suppressed, got %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("expected warn emitted, got %q", out)
	}
}

func TestLogger_With_CarriesBaseFields(t *testing.T) {
	// Arrange
	var buf strings.Builder
	l := NewWithWriter(Info, &buf).With("component", "scraper")

	// Act
	l.Info("started")

	// Assert
	if !strings.Contains(buf.String(), "component=scraper") {
		t.Errorf("expected base field in output, got %q", buf.String())
	}
}

func TestLogger_With_CallFieldOverridesBaseField(t *testing.T) {
	// Arrange
	var buf strings.Builder
	l := NewWithWriter(Info, &buf).With("component", "scraper", "phase", "init")

	// Act
	l.Info("hovering", "phase", "hover", "item", 2)

	// Assert
	out := buf.String()
	if !strings.Contains(out, "phase=hover") {
		t.Errorf("expected call field to win, got %q", out)
	}
	if strings.Contains(out, "phase=init") {
		t.Errorf("expected base value replaced, got %q", out)
	}
	if !strings.Contains(out, "component=scraper") || !strings.Contains(out, "item=2") {
		t.Errorf("expected remaining fields kept, got %q", out)
	}
}

func TestLogger_QuietMode_SuppressesBelowError(t *testing.T) {
	// Arrange
	t.Setenv(QuietEnv, "true")
	var buf strings.Builder
	l := NewWithWriter(Debug, &buf)

	// Act
	l.Info("chatter")
	l.Error("broken")

	// Assert
	out := buf.String()
	if strings.Contains(out, "chatter") {
		t.Errorf("expected info suppressed in quiet mode, got %q", out)
	}
	if !strings.Contains(out, "broken") {
		t.Errorf("expected error emitted in quiet mode, got %q", out)
	}
}
