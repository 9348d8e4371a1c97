package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, uint64(3), cfg.Workflow.TransferMaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Workflow.TransferBackoffBase)
	assert.Equal(t, 2*time.Minute, cfg.Cache.BoardTTL)
}

func TestNewClampsTransferAttempts(t *testing.T) {
	// Zero attempts would underflow the retry bound; the transfer must
	// always get at least one try.
	t.Setenv("TRANSFER_MAX_ATTEMPTS", "0")
	cfg := New()
	assert.Equal(t, uint64(1), cfg.Workflow.TransferMaxAttempts)
}

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("TRANSFER_MAX_ATTEMPTS", "5")
	t.Setenv("TRANSFER_BACKOFF_BASE", "200ms")
	cfg := New()
	assert.Equal(t, uint64(5), cfg.Workflow.TransferMaxAttempts)
	assert.Equal(t, 200*time.Millisecond, cfg.Workflow.TransferBackoffBase)
}
