// Copyright 2022 Hal Canary
// Use of this program is governed by the file LICENSE.
package book

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactsRegisterAndPurge(t *testing.T) {
	dir := t.TempDir()
	a := NewArtifacts(dir)

	p1, err := a.Register()
	require.NoError(t, err)
	p2, err := a.Register()
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)
	assert.Equal(t, []string{p1, p2}, a.Paths())

	require.NoError(t, a.Write(p1, []byte("Ch1\nhello")))
	_, err = os.Stat(p2)
	assert.True(t, os.IsNotExist(err), "registering must not create the file")

	assert.Equal(t, 1, a.Purge())
	assertEmptyDir(t, dir)

	_, err = a.Register()
	assert.ErrorIs(t, err, errPurged)
	assert.ErrorIs(t, a.Write(p2, []byte("late")), errPurged)
	assertEmptyDir(t, dir)
	assert.Equal(t, 0, a.Purge())
}

func TestArtifactsPurgeRacingWriters(t *testing.T) {
	dir := t.TempDir()
	a := NewArtifacts(dir)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for {
				p, err := a.Register()
				if err != nil {
					return
				}
				if err := a.Write(p, []byte("chapter")); err != nil {
					return
				}
			}
		}()
	}
	close(start)
	require.Eventually(t, func() bool { return len(a.Paths()) >= 100 }, 5*time.Second, time.Millisecond)
	a.Purge()
	wg.Wait()
	assertEmptyDir(t, dir)
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Empty(t, names)
}
