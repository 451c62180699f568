package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found
	ErrNotFound = errors.New("resource not found")
	// ErrSessionNotFound indicates the session id is unknown
	ErrSessionNotFound = errors.New("session not found")
	// ErrEmptyConversation indicates an analysis was requested on an empty conversation
	ErrEmptyConversation = errors.New("conversation has no messages")
	// ErrSessionHasNoMessages indicates a summary was requested on a session with no messages
	ErrSessionHasNoMessages = errors.New("session has no messages")
	// ErrCatalogSourceMissing indicates the price sheet file is absent
	ErrCatalogSourceMissing = errors.New("price sheet not found")
	// ErrTemplateMissing indicates a prompt template asset is absent
	ErrTemplateMissing = errors.New("prompt template not found")
	// ErrUnparsableResponse indicates no JSON object could be extracted from the LLM output
	ErrUnparsableResponse = errors.New("unparsable llm response")
	// ErrInvalidCredential indicates the LLM endpoint rejected the API key
	ErrInvalidCredential = errors.New("invalid api key")
	// ErrRateLimited indicates the LLM endpoint returned 429
	ErrRateLimited = errors.New("rate limited by llm endpoint")
	// ErrUpstreamTimeout indicates the LLM call exceeded its time budget
	ErrUpstreamTimeout = errors.New("llm request timed out")
	// ErrNetwork indicates a transport-level failure before any response arrived
	ErrNetwork = errors.New("network request failed")
)

// UpstreamError carries a non-2xx status from the LLM endpoint.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("llm endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// Unwrap maps well-known statuses onto their sentinel errors so callers can
// use errors.Is without inspecting codes.
func (e *UpstreamError) Unwrap() error {
	switch e.StatusCode {
	case 401:
		return ErrInvalidCredential
	case 429:
		return ErrRateLimited
	}
	return nil
}
