package domain

import "errors"

var (
	// ErrNotFound indicates resource not found
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidRequest indicates invalid request
	ErrInvalidRequest = errors.New("invalid request")
	// ErrProviderNotFound indicates the named LLM provider is not configured
	ErrProviderNotFound = errors.New("provider not found in configuration")
	// ErrProviderDisabled indicates the named LLM provider exists but is not enabled
	ErrProviderDisabled = errors.New("provider is not enabled")
	// ErrProviderConfig indicates incomplete provider settings (missing key, deployment)
	ErrProviderConfig = errors.New("provider configuration incomplete")
)
