package github

import (
	"log"
	"strings"
	"time"
)

const (
	defaultMaxRetries   = 3
	defaultInitialDelay = 1 * time.Second
)

// retryWithBackoff executes a function with exponential backoff retry.
// The sync engine itself never retries; transient GitHub failures are this
// adapter's problem.
func retryWithBackoff(fn func() error) error {
	var lastErr error
	delay := defaultInitialDelay

	for attempt := 0; attempt <= defaultMaxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[GitHub] Retry attempt %d/%d after %v delay", attempt+1, defaultMaxRetries+1, delay)
			time.Sleep(delay)
			delay *= 2
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !isRetryableError(lastErr) {
			return lastErr
		}
	}

	log.Printf("[GitHub] All %d attempts failed, giving up", defaultMaxRetries+1)
	return lastErr
}

// isRetryableError returns true for transient network errors and false for
// permanent ones (bad credentials, missing comment, validation failures).
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"eof",
		"timeout",
		"connection refused",
		"temporary failure",
		"connection reset",
		"broken pipe",
		"no such host",
		"network is unreachable",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
