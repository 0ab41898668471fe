// Package scsi implements the command layer spec.md §4.1 assigns
// responsibility for: CDB construction (cdb.go), OS pass-through I/O and
// sense decoding (this file and sense.go), and outcome classification into
// the four classes every higher layer sees — success, benign end
// condition, retryable, fatal.
//
// The pass-through mechanism is grounded on the dswarbrick/smart/scsi
// package's sgio.go: a Linux SG_IO ioctl over an sg_io_hdr_t-shaped struct.
// Device generalizes SCSIDevice to carry the sense buffer and resulting
// classification back to the caller instead of a bare host/driver/status
// tuple, since every layer above this one needs sense key/ASC/ASCQ to
// decide retry vs. fatal vs. benign.
package scsi

import (
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	ltfserrors "github.com/oplancelot/ltfsgo/pkg/errors"
)

const (
	sgDxferNone       = -1
	sgDxferToDev      = -2
	sgDxferFromDev    = -3
	sgInfoOKMask      = 0x1
	sgInfoOK          = 0x0
	sgIOIoctl         = 0x2285
)

// sgIoHdr mirrors sg_io_hdr_t from <scsi/sg.h>, laid out field-for-field
// the way the teacher's sgio.go does, since the kernel ABI dictates the
// exact size and order of every field.
type sgIoHdr struct {
	interfaceID    int32
	dxferDirection int32
	cmdLen         uint8
	mxSbLen        uint8
	iovecCount     uint16
	dxferLen       uint32
	dxferp         uintptr
	cmdp           uintptr
	sbp            uintptr
	timeout        uint32
	flags          uint32
	packID         int32
	usrPtr         uintptr
	status         uint8
	maskedStatus   uint8
	msgStatus      uint8
	sbLenWr        uint8
	hostStatus     uint16
	driverStatus   uint16
	resid          int32
	duration       uint32
	info           uint32
}

// Config carries the constructor dependencies for a Device, following the
// teacher's Config{Options, Logger} convention used across engine.New and
// storage.New.
type Config struct {
	DevicePath string
	Logger     *zap.SugaredLogger
}

// Device is an open SCSI pass-through handle to a tape drive.
type Device struct {
	path string
	fd   int
	log  *zap.SugaredLogger
}

// Open opens the device node for read/write SCSI pass-through access.
func Open(cfg Config) (*Device, error) {
	if cfg.DevicePath == "" {
		return nil, ltfserrors.NewRequiredFieldError("devicePath")
	}

	fd, err := unix.Open(cfg.DevicePath, unix.O_RDWR, 0)
	if err != nil {
		return nil, ltfserrors.NewTapeDeviceError(
			err, ltfserrors.ErrorCodeDeviceOpenFailed, "failed to open tape device",
		).WithDevicePath(cfg.DevicePath)
	}

	d := &Device{path: cfg.DevicePath, fd: fd, log: cfg.Logger}
	if d.log != nil {
		d.log.Infow("scsi device opened", "path", cfg.DevicePath, "fd", fd)
	}
	return d, nil
}

// Close releases the device handle.
func (d *Device) Close() error {
	if err := unix.Close(d.fd); err != nil {
		return ltfserrors.NewTapeDeviceError(
			err, ltfserrors.ErrorCodeDeviceCloseFailed, "failed to close tape device",
		).WithDevicePath(d.path)
	}
	return nil
}

// Path returns the device node this handle was opened against.
func (d *Device) Path() string { return d.path }

// Outcome classifies the result of a single SCSI command into the four
// classes spec.md §4.1 says every higher layer should see.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeBenignEnd
	OutcomeRetryable
	OutcomeFatal
)

// Result carries the classified outcome plus the decoded sense data of a
// pass-through command, along with how many bytes of the response buffer
// the drive actually transferred.
type Result struct {
	Outcome   Outcome
	Sense     Sense
	Residual  int32
	Transferred int
}

// Exec issues cdb as a pass-through command, transferring data via buf in
// the given direction (toDevice true for writes, false for reads/no
// transfer when buf is empty), and returns the classified Result.
func (d *Device) Exec(cdb []byte, buf []byte, toDevice bool) (Result, error) {
	sense := make([]byte, maxSenseLength)

	direction := int32(sgDxferNone)
	var dataPtr uintptr
	if len(buf) > 0 {
		dataPtr = uintptr(unsafe.Pointer(&buf[0]))
		if toDevice {
			direction = sgDxferToDev
		} else {
			direction = sgDxferFromDev
		}
	}

	hdr := sgIoHdr{
		interfaceID:    'S',
		dxferDirection: direction,
		cmdLen:         uint8(len(cdb)),
		mxSbLen:        uint8(len(sense)),
		dxferLen:       uint32(len(buf)),
		dxferp:         dataPtr,
		cmdp:           uintptr(unsafe.Pointer(&cdb[0])),
		sbp:            uintptr(unsafe.Pointer(&sense[0])),
		timeout:        defaultTimeoutMillis,
	}

	if err := d.ioctl(&hdr); err != nil {
		return Result{}, ltfserrors.NewSCSIError(
			err, ltfserrors.ErrorCodeSCSIIOFailed, "SG_IO ioctl failed",
		).WithOpcode(cdb[0])
	}

	decoded := DecodeSense(sense[:hdr.sbLenWr])
	result := Result{
		Sense:       decoded,
		Residual:    hdr.resid,
		Transferred: len(buf) - int(hdr.resid),
	}

	if hdr.info&sgInfoOKMask == sgInfoOK && hdr.status == 0 {
		result.Outcome = OutcomeSuccess
		return result, nil
	}

	result.Outcome = Classify(decoded)
	return result, nil
}

func (d *Device) ioctl(hdr *sgIoHdr) error {
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL, uintptr(d.fd), uintptr(sgIOIoctl), uintptr(unsafe.Pointer(hdr)),
	)
	if errno != 0 {
		return errno
	}
	return nil
}
