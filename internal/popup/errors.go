package popup

import (
	"errors"
	"fmt"
	"time"
)

// AlertPrefix starts every failure message shown to the user.
const AlertPrefix = "Failed to summarize: "

// ErrInProgress is returned when Submit is called while a submission runs.
var ErrInProgress = errors.New("a summary is already being generated")

// MissingCredentialsError means the API key or endpoint has not been saved.
type MissingCredentialsError struct{}

func (MissingCredentialsError) Error() string {
	return "Please set API key and endpoint first!"
}

// TimeoutError means every poll attempt came back without a result.
type TimeoutError struct {
	Attempts int
	Waited   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no result after %d attempts (%s)", e.Attempts, e.Waited.Round(time.Second))
}
