package sql

import "time"

// SetClock is a test helper to control the timestamps assigned by ProductRepository.
func SetClock(repo *ProductRepository, now func() time.Time) {
	repo.now = now
}
