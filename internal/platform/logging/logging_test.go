package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_Level(t *testing.T) {
	log, err := New("debug", "moviedb")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = log.Sync() }()
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug to be enabled")
	}
}

func TestNew_BogusLevelFallsBackToInfo(t *testing.T) {
	log, err := New("chatty", "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = log.Sync() }()
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug to be disabled at info")
	}
	if !log.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("expected info to be enabled")
	}
}
