package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// LockFileName is created in the data directory while the bot is running.
const LockFileName = "bot.lock"

// ErrBotRunning is returned when a live process holds the data directory lock.
var ErrBotRunning = errors.New("bot is running against this data directory")

// InstanceLock marks a data directory as owned by a running bot.
type InstanceLock struct {
	path string
}

// CheckUnlocked returns ErrBotRunning when a live process holds the lock in dir.
// A lock left behind by a dead process is ignored.
func CheckUnlocked(dir string) error {
	pid, ok := lockHolder(filepath.Join(dir, LockFileName))
	if !ok {
		return nil
	}
	return fmt.Errorf("%w (pid %d); stop it first", ErrBotRunning, pid)
}

// AcquireLock takes the lock in dir, replacing a stale one.
func AcquireLock(dir string) (*InstanceLock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, LockFileName)
	if pid, ok := lockHolder(path); ok {
		return nil, fmt.Errorf("%w (pid %d)", ErrBotRunning, pid)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error removing stale lock %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrBotRunning
		}
		return nil, fmt.Errorf("error creating lock %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("error writing lock %s: %w", path, err)
	}
	return &InstanceLock{path: path}, nil
}

// Release removes the lock file.
func (l *InstanceLock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// lockHolder reports the pid recorded in the lock file when that process is alive.
func lockHolder(path string) (int32, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 32)
	if err != nil || pid <= 0 {
		return 0, false
	}
	alive, err := process.PidExists(int32(pid))
	if err != nil || !alive {
		return 0, false
	}
	return int32(pid), true
}
