package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("custom logger was not called")
	}

	called = false
	SetLogger(nil)
	Logf("test message")
	if called {
		t.Error("no-op logger should not reach the previous logger")
	}
}

func TestScoped(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})

	logf := Scoped("session")
	logf("frame %d", 12)
	if got != "[session] frame 12" {
		t.Errorf("expected scoped message, got %q", got)
	}

	// Scoped loggers follow later SetLogger calls.
	var second string
	SetLogger(func(format string, v ...interface{}) {
		second = fmt.Sprintf(format, v...)
	})
	logf("again")
	if second != "[session] again" {
		t.Errorf("expected scoped logger to use replacement, got %q", second)
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}
}
