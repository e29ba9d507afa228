package runstore

import (
	"errors"
	"strings"
	"testing"
)

func TestAcquireWorkLock_BlocksConcurrentAcquire(t *testing.T) {
	workDir := t.TempDir()

	lock, err := AcquireWorkLock(workDir, "s1")
	if err != nil {
		t.Fatalf("acquire first lock: %v", err)
	}
	defer func() {
		_ = lock.Release()
	}()

	_, err = AcquireWorkLock(workDir, "s2")
	if !errors.Is(err, ErrWorkDirLocked) {
		t.Fatalf("expected ErrWorkDirLocked, got %v", err)
	}
	if !strings.Contains(err.Error(), "session s1") {
		t.Fatalf("expected holder session in error, got %v", err)
	}

	owner, ok := LockHolder(workDir)
	if !ok || owner.SessionID != "s1" || owner.WorkDir != workDir {
		t.Fatalf("unexpected lock holder: %+v ok=%v", owner, ok)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("release lock: %v", err)
	}
	if _, ok := LockHolder(workDir); ok {
		t.Fatalf("expected no holder after release")
	}

	lock2, err := AcquireWorkLock(workDir, "s3")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	if err := lock2.Release(); err != nil {
		t.Fatalf("release second lock: %v", err)
	}
}
