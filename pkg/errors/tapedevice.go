package errors

// TapeDeviceError is a specialized error type for cartridge/drive-level
// conditions one layer above raw SCSI sense decoding: no cartridge loaded,
// write-protected media, or a partition number the drive doesn't have.
type TapeDeviceError struct {
	*baseError
	devicePath string // Path of the device node involved (e.g. "/dev/nst0").
	partition  int    // Logical partition involved, if applicable.
}

// NewTapeDeviceError creates a new tape-device-specific error.
func NewTapeDeviceError(err error, code ErrorCode, msg string) *TapeDeviceError {
	return &TapeDeviceError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while maintaining the TapeDeviceError type.
func (te *TapeDeviceError) WithMessage(msg string) *TapeDeviceError {
	te.baseError.WithMessage(msg)
	return te
}

// WithCode sets the error code while preserving the TapeDeviceError type.
func (te *TapeDeviceError) WithCode(code ErrorCode) *TapeDeviceError {
	te.baseError.WithCode(code)
	return te
}

// WithDetail adds contextual information while maintaining the TapeDeviceError type.
func (te *TapeDeviceError) WithDetail(key string, value any) *TapeDeviceError {
	te.baseError.WithDetail(key, value)
	return te
}

// WithDevicePath records the device node involved.
func (te *TapeDeviceError) WithDevicePath(path string) *TapeDeviceError {
	te.devicePath = path
	return te
}

// WithPartition records the logical partition involved.
func (te *TapeDeviceError) WithPartition(partition int) *TapeDeviceError {
	te.partition = partition
	return te
}

// DevicePath returns the device node involved.
func (te *TapeDeviceError) DevicePath() string { return te.devicePath }

// Partition returns the logical partition involved.
func (te *TapeDeviceError) Partition() int { return te.partition }
