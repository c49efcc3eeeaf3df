//go:build unix

package cli

import (
	"bytes"
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodboard/internal/log"
)

func TestSignalContext_StopDoesNotLogShutdown(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Output: &buf})

	ctx, stop := signalContext(logger, syscall.SIGUSR2)
	stop()
	<-ctx.Done()

	assert.ErrorIs(t, context.Cause(ctx), context.Canceled)
	// Give the watcher goroutine a chance to run before checking.
	time.Sleep(20 * time.Millisecond)
	assert.NotContains(t, buf.String(), "Shutdown signal received")
}

func TestSignalContext_SignalCancelsWithCause(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Output: &buf})

	ctx, stop := signalContext(logger, syscall.SIGUSR1)
	defer stop()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGUSR1))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("signal did not cancel the context")
	}
	assert.Contains(t, context.Cause(ctx).Error(), "received signal")
	assert.Contains(t, buf.String(), "Shutdown signal received")
}
