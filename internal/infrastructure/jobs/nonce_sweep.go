package jobs

import (
	"context"
	"log"
	"time"

	"plumise.backend/pkg/nonce"
)

// NonceSweepJob periodically purges expired login nonces from the in-memory
// store to bound its size. Correctness never depends on the sweep; the store
// re-checks freshness at consume time.
type NonceSweepJob struct {
	store    *nonce.MemoryStore
	interval time.Duration
	stop     chan struct{}
}

func NewNonceSweepJob(store *nonce.MemoryStore) *NonceSweepJob {
	return &NonceSweepJob{
		store:    store,
		interval: 10 * time.Minute,
		stop:     make(chan struct{}),
	}
}

func (j *NonceSweepJob) Start(ctx context.Context) {
	log.Println("🕐 Starting nonce sweep job...")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Nonce sweep job stopped (context cancelled)")
			return
		case <-j.stop:
			log.Println("⏹️ Nonce sweep job stopped")
			return
		case <-ticker.C:
			if purged := j.store.Sweep(time.Now()); purged > 0 {
				log.Printf("🔄 Purged %d expired login nonces", purged)
			}
		}
	}
}

func (j *NonceSweepJob) Stop() {
	close(j.stop)
}
