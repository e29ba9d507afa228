package runstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	workLockDirName   = ".mergeout.lock"
	workLockOwnerFile = "owner.json"
)

var ErrWorkDirLocked = errors.New("another mergeout session is merging this work directory")

// LockOwner is the session holding a work directory.
type LockOwner struct {
	SessionID string `json:"session_id"`
	PID       int    `json:"pid"`
	Host      string `json:"host"`
	StartedAt string `json:"started_at"`
	WorkDir   string `json:"work_dir"`
}

func (o LockOwner) String() string {
	return fmt.Sprintf("session %s, pid %d on %s since %s", o.SessionID, o.PID, o.Host, o.StartedAt)
}

type WorkLock struct {
	dir   string
	Owner LockOwner
}

// AcquireWorkLock marks workDir as being merged by sessionID. A second
// session fails with ErrWorkDirLocked naming the current holder; a lock left
// by a crashed run has to be removed by hand.
func AcquireWorkLock(workDir, sessionID string) (WorkLock, error) {
	target := strings.TrimSpace(workDir)
	if target == "" {
		return WorkLock{}, errors.New("work directory is required")
	}

	dir := filepath.Join(target, workLockDirName)
	if err := os.Mkdir(dir, 0o755); err != nil {
		if !os.IsExist(err) {
			return WorkLock{}, fmt.Errorf("lock work directory %s: %w", target, err)
		}
		if owner, ok := LockHolder(target); ok {
			return WorkLock{}, fmt.Errorf("%w (%s); remove %s if that session is gone", ErrWorkDirLocked, owner, dir)
		}
		return WorkLock{}, fmt.Errorf("%w; remove %s if no merge is running", ErrWorkDirLocked, dir)
	}

	owner := LockOwner{
		SessionID: sessionID,
		PID:       os.Getpid(),
		Host:      hostname(),
		StartedAt: time.Now().UTC().Format(time.RFC3339),
		WorkDir:   target,
	}
	if err := WriteJSON(filepath.Join(dir, workLockOwnerFile), owner); err != nil {
		_ = os.Remove(dir)
		return WorkLock{}, fmt.Errorf("record lock owner for %s: %w", target, err)
	}
	return WorkLock{dir: dir, Owner: owner}, nil
}

// LockHolder reports the session currently merging workDir, if any.
func LockHolder(workDir string) (LockOwner, bool) {
	var owner LockOwner
	if err := ReadJSON(filepath.Join(workDir, workLockDirName, workLockOwnerFile), &owner); err != nil {
		return LockOwner{}, false
	}
	return owner, owner.SessionID != "" || owner.PID > 0
}

func (l WorkLock) Release() error {
	if l.dir == "" {
		return nil
	}
	_ = os.Remove(filepath.Join(l.dir, workLockOwnerFile))
	if err := os.Remove(l.dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unlock %s: %w", filepath.Dir(l.dir), err)
	}
	return nil
}

func hostname() string {
	if host, err := os.Hostname(); err == nil && strings.TrimSpace(host) != "" {
		return strings.TrimSpace(host)
	}
	return "unknown"
}
