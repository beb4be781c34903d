package ai

import "fmt"

// ServiceError reports an upstream embedding service failure after the
// configured retries were exhausted. It carries the upstream message so the
// caller can decide whether to retry the whole operation.
type ServiceError struct {
	Attempts int
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("embedding service failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
