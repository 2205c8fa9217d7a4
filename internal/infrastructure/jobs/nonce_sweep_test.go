package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"plumise.backend/pkg/nonce"
)

func TestNonceSweepJob_StopTerminatesLoop(t *testing.T) {
	store := nonce.NewMemoryStore()
	job := NewNonceSweepJob(store)
	job.interval = 10 * time.Millisecond

	done := make(chan struct{})
	go func() {
		job.Start(context.Background())
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	job.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop")
	}
}

func TestNonceSweepJob_ContextCancelTerminatesLoop(t *testing.T) {
	store := nonce.NewMemoryStore()
	job := NewNonceSweepJob(store)
	job.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop on context cancel")
	}
}

func TestNonceSweepJob_FreshNoncesSurviveSweep(t *testing.T) {
	store := nonce.NewMemoryStore()
	_, err := store.Issue(context.Background())
	require.NoError(t, err)

	job := NewNonceSweepJob(store)
	job.interval = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	job.Start(ctx)

	assert.Equal(t, 1, store.Len())
}
