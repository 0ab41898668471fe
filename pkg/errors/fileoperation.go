package errors

// FileOperationError is a specialized error type for local filesystem
// interactions performed on the caller's behalf: reading a write source,
// writing an extraction destination, or managing spill/persisted-index
// files. It mirrors the teacher's StorageError field shape (fileName, path,
// offset) since both describe a local-file failure at a byte position.
type FileOperationError struct {
	*baseError
	fileName string // Name of the file involved.
	path     string // Full path of the file involved.
	offset   int64  // Byte offset within the file where the failure occurred.
}

// NewFileOperationError creates a new file-operation-specific error.
func NewFileOperationError(err error, code ErrorCode, msg string) *FileOperationError {
	return &FileOperationError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while maintaining the FileOperationError type.
func (fe *FileOperationError) WithMessage(msg string) *FileOperationError {
	fe.baseError.WithMessage(msg)
	return fe
}

// WithCode sets the error code while preserving the FileOperationError type.
func (fe *FileOperationError) WithCode(code ErrorCode) *FileOperationError {
	fe.baseError.WithCode(code)
	return fe
}

// WithDetail adds contextual information while maintaining the FileOperationError type.
func (fe *FileOperationError) WithDetail(key string, value any) *FileOperationError {
	fe.baseError.WithDetail(key, value)
	return fe
}

// WithFileName records which file was being processed.
func (fe *FileOperationError) WithFileName(fileName string) *FileOperationError {
	fe.fileName = fileName
	return fe
}

// WithPath records which path was being processed.
func (fe *FileOperationError) WithPath(path string) *FileOperationError {
	fe.path = path
	return fe
}

// WithOffset records the byte offset where the failure occurred.
func (fe *FileOperationError) WithOffset(offset int64) *FileOperationError {
	fe.offset = offset
	return fe
}

// FileName returns the name of the file involved.
func (fe *FileOperationError) FileName() string { return fe.fileName }

// Path returns the full path of the file involved.
func (fe *FileOperationError) Path() string { return fe.path }

// Offset returns the byte offset where the failure occurred.
func (fe *FileOperationError) Offset() int64 { return fe.offset }
