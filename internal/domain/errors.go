package domain

import "errors"

var (
	// ErrInvalidQuery signals a query that failed validation.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrSourceUnavailable signals a candidate source failure.
	ErrSourceUnavailable = errors.New("candidate source unavailable")
	// ErrValuationUnavailable signals that no valuation could be produced.
	ErrValuationUnavailable = errors.New("valuation unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
