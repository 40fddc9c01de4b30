package services

// Typed service errors. Handlers map each to a specific HTTP status and
// machine-readable code; anything else becomes a 500.

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }

// ConfigurationError signals a missing or unusable AI configuration, such as
// an absent API key. Never caused by user input.
type ConfigurationError struct{ Message string }

func (e *ConfigurationError) Error() string { return e.Message }

// GenerationError wraps AI-side failures with a message safe to show users.
type GenerationError struct{ Message string }

func (e *GenerationError) Error() string { return e.Message }

// LimitExceededError signals the per-user flashcard capacity was hit.
type LimitExceededError struct {
	Message      string
	CurrentCount int
	Limit        int
	Suggestion   string
}

func (e *LimitExceededError) Error() string { return e.Message }
