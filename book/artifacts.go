// Copyright 2022 Hal Canary
// Use of this program is governed by the file LICENSE.
package book

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

var errPurged = errors.New("artifacts already purged")

// Artifacts is the run state: the temporary per-chapter files of one run.
//
// Once Purge starts, Register and Write refuse new work, and Purge waits for
// writes already in progress before deleting, so no file can be recreated
// behind the cleanup pass.
type Artifacts struct {
	dir string

	mu      sync.Mutex
	paths   []string
	purged  bool
	writers sync.WaitGroup
}

// Temporary files will live in dir, or os.TempDir() if dir is empty.
func NewArtifacts(dir string) *Artifacts {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Artifacts{dir: dir}
}

// Reserve a fresh, unique path. The file is not created.
func (a *Artifacts) Register() (string, error) {
	path := filepath.Join(a.dir, "noveldl-"+uuid.NewString()+".part")
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.purged {
		return "", errPurged
	}
	a.paths = append(a.paths, path)
	return path, nil
}

// Write data to a registered path unless a purge has begun.
func (a *Artifacts) Write(path string, data []byte) error {
	a.mu.Lock()
	if a.purged {
		a.mu.Unlock()
		return errPurged
	}
	a.writers.Add(1)
	a.mu.Unlock()
	defer a.writers.Done()
	return os.WriteFile(path, data, 0o600)
}

// Snapshot of the registered paths, in registration order.
func (a *Artifacts) Paths() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.paths...)
}

// Delete every registered file that exists and stop accepting writes.
// Returns the number of files removed. Safe to call more than once and from
// any goroutine.
func (a *Artifacts) Purge() int {
	a.mu.Lock()
	a.purged = true
	paths := append([]string(nil), a.paths...)
	a.mu.Unlock()

	a.writers.Wait()
	removed := 0
	for _, p := range paths {
		if err := os.Remove(p); err == nil {
			removed++
		}
	}
	return removed
}
