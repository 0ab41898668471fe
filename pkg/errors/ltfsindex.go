package errors

// LTFSIndexError provides specialized error handling for operations against
// the on-tape LTFS index tree: discovery, parsing, validation, and dual-
// partition synchronization. It plays the same structural role the teacher's
// IndexError plays for Bitcask keydir operations, generalized to a
// generation/partition/location-oriented tree instead of a flat keydir.
type LTFSIndexError struct {
	*baseError

	// generation identifies which index generation was being read or
	// written when the error occurred.
	generation uint64

	// partition/block identify the tape location being read or written,
	// when known.
	partition string
	block     uint64

	// operation describes what index operation was in progress
	// ("discover", "parse", "validate", "sync_data", "sync_index_refresh").
	operation string

	// path identifies the file or directory path involved, if the error
	// concerns a tree lookup or mutation rather than the index as a whole.
	path string
}

// NewLTFSIndexError creates a new index-specific error with the provided context.
func NewLTFSIndexError(err error, code ErrorCode, msg string) *LTFSIndexError {
	return &LTFSIndexError{baseError: NewBaseError(err, code, msg)}
}

// Override base error methods to return *LTFSIndexError instead of *baseError.

// WithMessage updates the error message while maintaining the LTFSIndexError type.
func (ie *LTFSIndexError) WithMessage(msg string) *LTFSIndexError {
	ie.baseError.WithMessage(msg)
	return ie
}

// WithCode sets the error code while preserving the LTFSIndexError type.
func (ie *LTFSIndexError) WithCode(code ErrorCode) *LTFSIndexError {
	ie.baseError.WithCode(code)
	return ie
}

// WithDetail adds contextual information while maintaining the LTFSIndexError type.
func (ie *LTFSIndexError) WithDetail(key string, value any) *LTFSIndexError {
	ie.baseError.WithDetail(key, value)
	return ie
}

// WithGeneration records which index generation was involved.
func (ie *LTFSIndexError) WithGeneration(generation uint64) *LTFSIndexError {
	ie.generation = generation
	return ie
}

// WithLocation records the tape location (partition, block) involved.
func (ie *LTFSIndexError) WithLocation(partition string, block uint64) *LTFSIndexError {
	ie.partition, ie.block = partition, block
	return ie
}

// WithOperation records which index operation was being performed.
func (ie *LTFSIndexError) WithOperation(operation string) *LTFSIndexError {
	ie.operation = operation
	return ie
}

// WithPath records which tree path was involved, if applicable.
func (ie *LTFSIndexError) WithPath(path string) *LTFSIndexError {
	ie.path = path
	return ie
}

// Generation returns the index generation involved.
func (ie *LTFSIndexError) Generation() uint64 { return ie.generation }

// Location returns the tape location (partition, block) involved.
func (ie *LTFSIndexError) Location() (string, uint64) { return ie.partition, ie.block }

// Operation returns the index operation that was being performed.
func (ie *LTFSIndexError) Operation() string { return ie.operation }

// Path returns the tree path involved, if applicable.
func (ie *LTFSIndexError) Path() string { return ie.path }
