package errors

// VerificationError is returned when a post-write or post-read digest
// recomputation does not match the recorded extended-attribute hash
// (spec.md Scenario F).
type VerificationError struct {
	*baseError
	algorithm string // Which hash algorithm failed to match ("sha256", "blake3", ...).
	expected  string // The hex digest recorded in the index.
	actual    string // The hex digest recomputed from the reassembled bytes.
	path      string // The file path being verified.
}

// NewVerificationError creates a new verification-failure error.
func NewVerificationError(err error, msg string) *VerificationError {
	return &VerificationError{baseError: NewBaseError(err, ErrorCodeDigestMismatch, msg)}
}

// WithMessage updates the error message while maintaining the VerificationError type.
func (ve *VerificationError) WithMessage(msg string) *VerificationError {
	ve.baseError.WithMessage(msg)
	return ve
}

// WithDetail adds contextual information while maintaining the VerificationError type.
func (ve *VerificationError) WithDetail(key string, value any) *VerificationError {
	ve.baseError.WithDetail(key, value)
	return ve
}

// WithDigests records the algorithm, expected digest, and actual digest.
func (ve *VerificationError) WithDigests(algorithm, expected, actual string) *VerificationError {
	ve.algorithm, ve.expected, ve.actual = algorithm, expected, actual
	return ve
}

// WithPath records the file path being verified.
func (ve *VerificationError) WithPath(path string) *VerificationError {
	ve.path = path
	return ve
}

// Digests returns the algorithm, expected digest, and actual digest.
func (ve *VerificationError) Digests() (algorithm, expected, actual string) {
	return ve.algorithm, ve.expected, ve.actual
}

// Path returns the file path being verified.
func (ve *VerificationError) Path() string { return ve.path }
