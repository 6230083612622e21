package activities

import (
	"time"

	"go.temporal.io/sdk/temporal"
)

const (
	ErrTypeInvalidDocument = "InvalidDocument"
	ErrTypeInvalidSchema   = "InvalidSchema"
	ErrTypeInvalidState    = "InvalidState"
)

// ActivityOptions holds optional configuration for activity registration
type ActivityOptions struct {
	RetryPolicy         *temporal.RetryPolicy
	StartToCloseTimeout time.Duration
	// Schema is a struct reflected into the JSON Schema of the step input
	Schema      interface{}
	Description string
}

func defaultActivityOptions() ActivityOptions {
	return ActivityOptions{
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2,
			MaximumInterval:        10 * time.Second,
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeInvalidDocument, ErrTypeInvalidSchema, ErrTypeInvalidState},
		},
		StartToCloseTimeout: 30 * time.Second,
	}
}

// WithRetryPolicy sets the retry policy option
func WithRetryPolicy(retryPolicy *temporal.RetryPolicy) func(*ActivityOptions) {
	return func(opts *ActivityOptions) {
		opts.RetryPolicy = retryPolicy
	}
}

// WithSchema sets the step input schema
func WithSchema(schemaStruct interface{}) func(*ActivityOptions) {
	return func(opts *ActivityOptions) {
		opts.Schema = schemaStruct
	}
}

func WithStartToCloseTimeout(timeout time.Duration) func(*ActivityOptions) {
	return func(opts *ActivityOptions) {
		opts.StartToCloseTimeout = timeout
	}
}

func WithDescription(description string) func(*ActivityOptions) {
	return func(opts *ActivityOptions) {
		opts.Description = description
	}
}
