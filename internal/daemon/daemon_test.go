package daemon_test

import (
	"context"
	"testing"

	"dubsmart/internal/daemon"
	"dubsmart/internal/logging"
	"dubsmart/internal/testsupport"
	"dubsmart/internal/workflow"
)

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()

	mgr := workflow.NewManager(cfg, store, logger)
	first, err := daemon.New(cfg, store, logger, mgr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	second, err := daemon.New(cfg, store, logger, workflow.NewManager(cfg, store, logger))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second worker acquired the lock")
	}

	if !first.Running() {
		t.Fatal("first worker not running")
	}
	first.Stop()
	if first.Running() {
		t.Fatal("worker still running after Stop")
	}
}
