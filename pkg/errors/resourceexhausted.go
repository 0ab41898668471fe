package errors

// ResourceExhaustedError is a specialized error type for the memory and
// concurrency caps of spec.md §5: the in-flight write-buffer memory counter
// exceeding its configured cap, or the auxiliary-operation semaphore denying
// a permit within budget.
type ResourceExhaustedError struct {
	*baseError
	resource string // Which resource was exhausted ("memory", "concurrency_slot").
	limit    int64  // The configured cap.
	current  int64  // The value that would have resulted had the request been granted.
}

// NewResourceExhaustedError creates a new resource-exhaustion error.
func NewResourceExhaustedError(err error, code ErrorCode, msg string) *ResourceExhaustedError {
	return &ResourceExhaustedError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while maintaining the ResourceExhaustedError type.
func (re *ResourceExhaustedError) WithMessage(msg string) *ResourceExhaustedError {
	re.baseError.WithMessage(msg)
	return re
}

// WithCode sets the error code while preserving the ResourceExhaustedError type.
func (re *ResourceExhaustedError) WithCode(code ErrorCode) *ResourceExhaustedError {
	re.baseError.WithCode(code)
	return re
}

// WithDetail adds contextual information while maintaining the ResourceExhaustedError type.
func (re *ResourceExhaustedError) WithDetail(key string, value any) *ResourceExhaustedError {
	re.baseError.WithDetail(key, value)
	return re
}

// WithResource records which resource was exhausted.
func (re *ResourceExhaustedError) WithResource(resource string) *ResourceExhaustedError {
	re.resource = resource
	return re
}

// WithBudget records the configured cap and the value that would have resulted.
func (re *ResourceExhaustedError) WithBudget(limit, current int64) *ResourceExhaustedError {
	re.limit, re.current = limit, current
	return re
}

// Resource returns which resource was exhausted.
func (re *ResourceExhaustedError) Resource() string { return re.resource }

// Budget returns the configured cap and the value that would have resulted.
func (re *ResourceExhaustedError) Budget() (limit, current int64) { return re.limit, re.current }
