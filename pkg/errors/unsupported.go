package errors

// UnsupportedError is returned when a caller exercises a facility this
// engine intentionally does not implement (spec.md Non-goals): kernel
// filesystem integration, concurrent multi-host access, on-tape encryption,
// or cross-generation LTFS version translation.
type UnsupportedError struct {
	*baseError
	feature string // The unimplemented facility that was requested.
}

// NewUnsupportedError creates a new unsupported-feature error.
func NewUnsupportedError(feature, msg string) *UnsupportedError {
	return &UnsupportedError{
		baseError: NewBaseError(nil, ErrorCodeUnsupportedFeature, msg),
		feature:   feature,
	}
}

// WithMessage updates the error message while maintaining the UnsupportedError type.
func (ue *UnsupportedError) WithMessage(msg string) *UnsupportedError {
	ue.baseError.WithMessage(msg)
	return ue
}

// WithDetail adds contextual information while maintaining the UnsupportedError type.
func (ue *UnsupportedError) WithDetail(key string, value any) *UnsupportedError {
	ue.baseError.WithDetail(key, value)
	return ue
}

// Feature returns the unimplemented facility that was requested.
func (ue *UnsupportedError) Feature() string { return ue.feature }
