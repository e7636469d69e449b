package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// -----------------------------------------------------------------------------
// Severity Tests
// -----------------------------------------------------------------------------

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// ConfigurationError Tests
// -----------------------------------------------------------------------------

func TestNewConfigurationError(t *testing.T) {
	err := NewConfigurationError("read line", ErrNotAttached)

	if err.Operation != "read line" {
		t.Errorf("Operation = %q, want %q", err.Operation, "read line")
	}
	if err.Severity() != SeverityCritical {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityCritical)
	}
	if err.IsRetryable() {
		t.Error("IsRetryable() = true, want false")
	}
	if !err.IsUserFacing() {
		t.Error("IsUserFacing() = false, want true")
	}
	if !errors.Is(err, ErrNotAttached) {
		t.Error("errors.Is(err, ErrNotAttached) = false, want true")
	}

	want := "configuration error [op=read line]: cannot read line: " + ErrNotAttached.Error()
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIsConfiguration(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", New("boom"), false},
		{"configuration error", NewConfigurationError("attach", ErrNoHost), true},
		{"wrapped configuration error", fmt.Errorf("outer: %w", NewConfigurationError("attach", ErrNoSurface)), true},
		{"subscriber fault", NewSubscriberFault("*sink.LogFile", "output", New("x")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConfiguration(tt.err); got != tt.want {
				t.Errorf("IsConfiguration() = %v, want %v", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// SubscriberFault Tests
// -----------------------------------------------------------------------------

func TestNewSubscriberFault(t *testing.T) {
	cause := New("disk full")
	err := NewSubscriberFault("*sink.LogFile", "error", cause)

	if err.Panicked() {
		t.Error("Panicked() = true for returned error")
	}
	if err.Severity() != SeverityWarning {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityWarning)
	}
	if err.IsUserFacing() {
		t.Error("subscriber faults must not be user facing")
	}
	if !errors.Is(err, cause) {
		t.Error("fault should wrap its cause")
	}
	if !strings.Contains(err.Error(), "subscriber=*sink.LogFile") {
		t.Errorf("Error() = %q, want subscriber context", err.Error())
	}
	if !strings.Contains(err.Error(), "stream=error") {
		t.Errorf("Error() = %q, want stream context", err.Error())
	}
}

func TestNewSubscriberPanic(t *testing.T) {
	err := NewSubscriberPanic("*main.sub", "output", "nil map write", []byte("stack"))

	if !err.Panicked() {
		t.Error("Panicked() = false, want true")
	}
	if err.Recovered != "nil map write" {
		t.Errorf("Recovered = %v, want %q", err.Recovered, "nil map write")
	}
	if !errors.Is(err, ErrSubscriberPanic) {
		t.Error("panic fault should wrap ErrSubscriberPanic")
	}
	if !IsSubscriberFault(fmt.Errorf("dispatch: %w", err)) {
		t.Error("IsSubscriberFault should see through wrapping")
	}
}

// -----------------------------------------------------------------------------
// SinkError Tests
// -----------------------------------------------------------------------------

func TestNewSinkError(t *testing.T) {
	cause := New("permission denied")
	err := NewSinkError("append", "/tmp/x.log", cause)

	if !err.IsRetryable() {
		t.Error("sink errors should be retryable")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable(sink error) = false")
	}
	want := "sink error [path=/tmp/x.log]: append failed: permission denied"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// -----------------------------------------------------------------------------
// Classification Tests
// -----------------------------------------------------------------------------

func TestGetSeverity(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Severity
	}{
		{"nil", nil, SeverityDebug},
		{"unknown", New("x"), SeverityError},
		{"configuration", NewConfigurationError("attach", ErrNoHost), SeverityCritical},
		{"fault", NewSubscriberFault("s", "output", New("x")), SeverityWarning},
		{"sink", NewSinkError("open", "p", New("x")), SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetSeverity(tt.err); got != tt.want {
				t.Errorf("GetSeverity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
	if IsUserFacing(New("internal")) {
		t.Error("plain errors should not be user facing")
	}
	if !IsUserFacing(NewConfigurationError("prompt", ErrNotAttached)) {
		t.Error("configuration errors should be user facing")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "ctx") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	if Wrapf(nil, "ctx %d", 1) != nil {
		t.Error("Wrapf(nil) should be nil")
	}

	base := NewSinkError("append", "p", New("x"))
	wrapped := Wrapf(base, "log file %d", 2)
	if !strings.HasPrefix(wrapped.Error(), "log file 2: ") {
		t.Errorf("Wrapf() = %q", wrapped.Error())
	}
	var sinkErr *SinkError
	if !As(wrapped, &sinkErr) {
		t.Error("Wrapf should preserve the wrapped type")
	}
}
