package errors

// SCSIError is a specialized error type for raw SCSI pass-through failures.
// It embeds baseError to inherit the standard error functionality, then adds
// the sense-data fields needed to diagnose exactly which command failed and why.
type SCSIError struct {
	*baseError
	opcode    byte   // CDB operation code that was issued.
	senseKey  byte   // Decoded sense key byte.
	asc       byte   // Additional sense code.
	ascq      byte   // Additional sense code qualifier.
	ili       bool   // Incorrect Length Indicator bit.
	eom       bool   // End Of Medium bit.
	attempt   int    // Which retry attempt produced this error (1-based).
	operation string // Human-readable operation name ("read_blocks", "locate_block", ...).
}

// NewSCSIError creates a new SCSI-specific error.
func NewSCSIError(err error, code ErrorCode, msg string) *SCSIError {
	return &SCSIError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while maintaining the SCSIError type.
func (se *SCSIError) WithMessage(msg string) *SCSIError {
	se.baseError.WithMessage(msg)
	return se
}

// WithCode sets the error code while preserving the SCSIError type.
func (se *SCSIError) WithCode(code ErrorCode) *SCSIError {
	se.baseError.WithCode(code)
	return se
}

// WithDetail adds contextual information while maintaining the SCSIError type.
func (se *SCSIError) WithDetail(key string, value any) *SCSIError {
	se.baseError.WithDetail(key, value)
	return se
}

// WithOpcode records the CDB operation code that failed.
func (se *SCSIError) WithOpcode(opcode byte) *SCSIError {
	se.opcode = opcode
	return se
}

// WithSense records the decoded sense key/ASC/ASCQ triple.
func (se *SCSIError) WithSense(key, asc, ascq byte) *SCSIError {
	se.senseKey, se.asc, se.ascq = key, asc, ascq
	return se
}

// WithFlags records the ILI and EOM condition bits.
func (se *SCSIError) WithFlags(ili, eom bool) *SCSIError {
	se.ili, se.eom = ili, eom
	return se
}

// WithAttempt records which retry attempt produced this error.
func (se *SCSIError) WithAttempt(attempt int) *SCSIError {
	se.attempt = attempt
	return se
}

// WithOperation records the higher-level operation name that issued the CDB.
func (se *SCSIError) WithOperation(operation string) *SCSIError {
	se.operation = operation
	return se
}

// Opcode returns the CDB operation code that failed.
func (se *SCSIError) Opcode() byte { return se.opcode }

// Sense returns the decoded sense key, ASC, and ASCQ.
func (se *SCSIError) Sense() (key, asc, ascq byte) { return se.senseKey, se.asc, se.ascq }

// ILI reports whether the Incorrect Length Indicator bit was set.
func (se *SCSIError) ILI() bool { return se.ili }

// EOM reports whether the End Of Medium bit was set.
func (se *SCSIError) EOM() bool { return se.eom }

// Attempt returns the retry attempt number that produced this error.
func (se *SCSIError) Attempt() int { return se.attempt }

// Operation returns the higher-level operation name that issued the CDB.
func (se *SCSIError) Operation() string { return se.operation }
