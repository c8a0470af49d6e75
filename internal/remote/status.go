package remote

import (
	"errors"

	"github.com/Skotchmaster/diamond_shop/internal/apiclient"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// State is the {status, error} pair the presentation layer renders from.
type State struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s State) Terminal() bool {
	return s.Status == StatusSucceeded || s.Status == StatusFailed
}

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	// ErrSuperseded reports a response dropped because a newer fetch of the
	// same resource was issued after it.
	ErrSuperseded = errors.New("superseded by a newer request")
)

const unauthorizedMessage = "unauthorized: please log in to continue"

// ErrorMessage turns an operation failure into the string stored in State.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return unauthorizedMessage
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
