// Package dedupe remembers recently seen submission keys so a client that
// retries a request with the same Idempotency-Key is not answered twice.
package dedupe
