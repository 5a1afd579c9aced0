package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// pidFile holds the server's PID on disk, optionally under an exclusive flock
type pidFile struct {
	path   string
	file   *os.File
	locked bool
}

// managePIDFile writes the current PID to path. With lock set, a second
// server pointed at the same file fails to start. The returned func removes
// the file.
func managePIDFile(path string, lock bool) (func(), error) {
	p := &pidFile{path: path}
	if err := p.open(lock); err != nil {
		return nil, err
	}
	if lock {
		if err := p.lock(); err != nil {
			p.file.Close()
			return nil, err
		}
	}
	if err := p.write(os.Getpid()); err != nil {
		p.file.Close()
		os.Remove(path)
		return nil, err
	}
	return p.release, nil
}

func (p *pidFile) open(lock bool) error {
	f, err := os.OpenFile(p.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err == nil {
		p.file = f
		return nil
	}
	if !os.IsExist(err) {
		return fmt.Errorf("cannot create PID file: %w", err)
	}

	if lock {
		running, pid, err := readPID(p.path)
		if err != nil {
			return err
		}
		if running {
			return fmt.Errorf("process %d already owns PID file %s", pid, p.path)
		}
	}

	f, err = os.OpenFile(p.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("cannot open PID file: %w", err)
	}
	p.file = f
	return nil
}

func (p *pidFile) lock() error {
	err := syscall.Flock(int(p.file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	switch {
	case err == nil:
		p.locked = true
		return nil
	case errors.Is(err, syscall.EWOULDBLOCK):
		return errors.New("cannot acquire PID lock: another arena server is running")
	default:
		return fmt.Errorf("PID lock failed: %w", err)
	}
}

func (p *pidFile) write(pid int) error {
	if _, err := fmt.Fprintf(p.file, "%d\n", pid); err != nil {
		return fmt.Errorf("cannot write PID: %w", err)
	}
	if err := p.file.Sync(); err != nil {
		return fmt.Errorf("cannot sync PID file: %w", err)
	}
	return nil
}

func (p *pidFile) release() {
	if p.locked {
		syscall.Flock(int(p.file.Fd()), syscall.LOCK_UN)
	}
	p.file.Close()
	os.Remove(p.path)
}

// readPID reports whether the process recorded in path is still alive.
// A defunct owner leaves a stale file that may be reused.
func readPID(path string) (bool, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, 0, fmt.Errorf("cannot read existing PID file: %w", err)
	}

	raw := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(raw)
	if err != nil {
		return false, 0, fmt.Errorf("corrupted PID file (contains: %q)", raw)
	}

	// FindProcess never fails on Unix; signal 0 probes for existence
	proc, _ := os.FindProcess(pid)
	err = proc.Signal(syscall.Signal(0))
	switch {
	case err == nil:
		return true, pid, nil
	case errors.Is(err, os.ErrProcessDone), errors.Is(err, syscall.ESRCH):
		return false, pid, nil
	default:
		return false, pid, fmt.Errorf("process %d exists but cannot be verified: %w", pid, err)
	}
}
