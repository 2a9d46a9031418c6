package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexNotReady is returned when retrieval is attempted before the
	// index has been built.
	ErrIndexNotReady = errors.New("index not built: call BuildIndex first")

	// ErrBuildInProgress is returned when a second index build is requested
	// while one is already running on the same engine.
	ErrBuildInProgress = errors.New("index build already in progress")
)

// LoadError means the knowledge base could not be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load knowledge base %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// EmbeddingError wraps a failure of the embedding provider: authentication,
// quota, malformed response or model load.
type EmbeddingError struct {
	Op  string
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding provider: %s: %v", e.Op, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// GenerationError wraps a failure of the generation provider, including an
// empty or unparseable response.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation provider: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
