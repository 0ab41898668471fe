// Package errors addresses the fundamental challenge that generic error handling presents in
// an LTFS tape engine: when a command fails, the caller needs much more than "something went
// wrong". They need to know whether the drive rejected a CDB, whether the cartridge is simply
// not ready yet, whether the on-tape index failed to parse, or whether a local destination file
// ran out of disk space — because each of those calls for a different recovery strategy.
//
// Architecture and Design Philosophy:
//
// The error system is built around a hierarchical structure that starts with a foundational
// baseError and extends into domain-specific error types: SCSIError, TapeDeviceError,
// LTFSIndexError, ParseError, FileOperationError, ParameterValidationError,
// ResourceExhaustedError, OperationCancelledError, VerificationError, and UnsupportedError.
// This mirrors spec.md §7's error-kind taxonomy one-to-one. Every kind embeds baseError and
// overrides the fluent With* methods to keep returning its own concrete type, so construction
// reads as a single chained expression while still type-asserting cleanly at the call site.
//
// Error Classification and Codes:
//
// Central to this system is a comprehensive error code taxonomy (see codes.go) that provides
// standardized categorization of failures independent of the Go type carrying them. Codes let
// monitoring and retry logic dispatch on a stable string rather than parsing error messages or
// doing a type switch for every call site.
//
// Usage Patterns:
//
// For error creation, build with comprehensive context at the point of failure: not just what
// went wrong, but the tape position, partition, generation, or local path involved. For error
// propagation, preserve context as errors flow through layers — the SCSI layer attaches sense
// bytes, the index layer attaches generation/location, the pipeline layer attaches the file path.
package errors

import (
	stdErrors "errors"
	"os"
	"syscall"
)

// IsSCSIError checks if the given error is an SCSIError or contains one in its error chain.
func IsSCSIError(err error) bool {
	var se *SCSIError
	return stdErrors.As(err, &se)
}

// IsTapeDeviceError checks if the given error is a TapeDeviceError or contains one in its error chain.
func IsTapeDeviceError(err error) bool {
	var te *TapeDeviceError
	return stdErrors.As(err, &te)
}

// IsLTFSIndexError checks if the given error is an LTFSIndexError or contains one in its error chain.
func IsLTFSIndexError(err error) bool {
	var ie *LTFSIndexError
	return stdErrors.As(err, &ie)
}

// IsParseError checks if the given error is a ParseError or contains one in its error chain.
func IsParseError(err error) bool {
	var pe *ParseError
	return stdErrors.As(err, &pe)
}

// IsFileOperationError checks if the given error is a FileOperationError or contains one in its error chain.
func IsFileOperationError(err error) bool {
	var fe *FileOperationError
	return stdErrors.As(err, &fe)
}

// IsParameterValidationError checks if the given error is a ParameterValidationError or contains one in its error chain.
func IsParameterValidationError(err error) bool {
	var ve *ParameterValidationError
	return stdErrors.As(err, &ve)
}

// IsResourceExhaustedError checks if the given error is a ResourceExhaustedError or contains one in its error chain.
func IsResourceExhaustedError(err error) bool {
	var re *ResourceExhaustedError
	return stdErrors.As(err, &re)
}

// IsOperationCancelledError checks if the given error is an OperationCancelledError or contains one in its error chain.
func IsOperationCancelledError(err error) bool {
	var oe *OperationCancelledError
	return stdErrors.As(err, &oe)
}

// IsVerificationError checks if the given error is a VerificationError or contains one in its error chain.
func IsVerificationError(err error) bool {
	var ve *VerificationError
	return stdErrors.As(err, &ve)
}

// IsUnsupportedError checks if the given error is an UnsupportedError or contains one in its error chain.
func IsUnsupportedError(err error) bool {
	var ue *UnsupportedError
	return stdErrors.As(err, &ue)
}

// AsSCSIError extracts SCSIError context from an error chain.
func AsSCSIError(err error) (*SCSIError, bool) {
	var se *SCSIError
	if stdErrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// AsTapeDeviceError extracts TapeDeviceError context from an error chain.
func AsTapeDeviceError(err error) (*TapeDeviceError, bool) {
	var te *TapeDeviceError
	if stdErrors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// AsLTFSIndexError extracts LTFSIndexError context from an error chain.
func AsLTFSIndexError(err error) (*LTFSIndexError, bool) {
	var ie *LTFSIndexError
	if stdErrors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// AsParseError extracts ParseError context from an error chain.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if stdErrors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// AsFileOperationError extracts FileOperationError context from an error chain.
func AsFileOperationError(err error) (*FileOperationError, bool) {
	var fe *FileOperationError
	if stdErrors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// AsParameterValidationError extracts ParameterValidationError context from an error chain.
func AsParameterValidationError(err error) (*ParameterValidationError, bool) {
	var ve *ParameterValidationError
	if stdErrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsResourceExhaustedError extracts ResourceExhaustedError context from an error chain.
func AsResourceExhaustedError(err error) (*ResourceExhaustedError, bool) {
	var re *ResourceExhaustedError
	if stdErrors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// AsVerificationError extracts VerificationError context from an error chain.
func AsVerificationError(err error) (*VerificationError, bool) {
	var ve *VerificationError
	if stdErrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsUnsupportedError extracts UnsupportedError context from an error chain.
func AsUnsupportedError(err error) (*UnsupportedError, bool) {
	var ue *UnsupportedError
	if stdErrors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from any error that supports it, or returns
// ErrorCodeInternal for errors that don't carry one. Checked in roughly the order a
// pipeline operation would encounter failures: transport, then index, then local I/O.
func GetErrorCode(err error) ErrorCode {
	if se, ok := AsSCSIError(err); ok {
		return se.Code()
	}
	if te, ok := AsTapeDeviceError(err); ok {
		return te.Code()
	}
	if ie, ok := AsLTFSIndexError(err); ok {
		return ie.Code()
	}
	if pe, ok := AsParseError(err); ok {
		return pe.Code()
	}
	if fe, ok := AsFileOperationError(err); ok {
		return fe.Code()
	}
	if ve, ok := AsParameterValidationError(err); ok {
		return ve.Code()
	}
	if re, ok := AsResourceExhaustedError(err); ok {
		return re.Code()
	}
	if ve, ok := AsVerificationError(err); ok {
		return ve.Code()
	}
	if ue, ok := AsUnsupportedError(err); ok {
		return ue.Code()
	}
	if IsOperationCancelledError(err) {
		return ErrorCodeCancelled
	}
	return ErrorCodeInternal
}

// GetErrorDetails extracts structured details from SCSI, TapeDevice, LTFSIndex,
// FileOperation, and ParameterValidation errors, checked in that order, returning the
// first non-nil details map found. Details carried by the other error kinds are not
// returned; an empty map is returned when none is found.
func GetErrorDetails(err error) map[string]any {
	if se, ok := AsSCSIError(err); ok {
		if d := se.Details(); d != nil {
			return d
		}
	}
	if te, ok := AsTapeDeviceError(err); ok {
		if d := te.Details(); d != nil {
			return d
		}
	}
	if ie, ok := AsLTFSIndexError(err); ok {
		if d := ie.Details(); d != nil {
			return d
		}
	}
	if fe, ok := AsFileOperationError(err); ok {
		if d := fe.Details(); d != nil {
			return d
		}
	}
	if ve, ok := AsParameterValidationError(err); ok {
		if d := ve.Details(); d != nil {
			return d
		}
	}
	return make(map[string]any)
}

// ClassifyLocalFileError analyzes a local filesystem failure (opening a spill file,
// an extraction destination, or a persisted index) and returns a FileOperationError
// with the appropriate code based on the underlying system error, the same way the
// teacher's ClassifyFileOpenError distinguishes permission, space, and read-only
// conditions instead of reporting one generic I/O error.
func ClassifyLocalFileError(err error, path, operation string) error {
	if os.IsPermission(err) {
		return NewFileOperationError(
			err, ErrorCodePermissionDenied, "Insufficient permissions for local file operation",
		).WithPath(path).WithDetail("operation", operation)
	}

	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewFileOperationError(
					err, ErrorCodeDiskFull, "Insufficient disk space for local file operation",
				).WithPath(path).WithDetail("operation", operation)
			case syscall.EROFS:
				return NewFileOperationError(
					err, ErrorCodeFilesystemReadonly, "Local filesystem is read-only",
				).WithPath(path).WithDetail("operation", operation)
			}
		}
	}

	return NewFileOperationError(err, ErrorCodeIO, "Local file operation failed").
		WithPath(path).WithDetail("operation", operation)
}
