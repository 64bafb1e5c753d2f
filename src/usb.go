package sdr

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jochenvg/go-udev"
)

// USB transport (spec.md §4.7, external collaborator). The receiver core
// never depends on USB directly — USBSource is just another SampleSource
// feeding the same decoder. Device *discovery* is implemented for real,
// using the host's udev device database to enumerate and filter candidate
// front-ends by bus and an optional vendor/product-ID allow-list; the port
// is not filtered on.
// The actual vendor control/bulk transfer is expressed as the usbTransfer
// interface so a libusb-backed implementation can be substituted without
// touching this file; see DESIGN.md for why no transfer backend ships.

// USBDirection is the vendor control-transfer direction.
type USBDirection int

const (
	USBDirIn USBDirection = iota
	USBDirOut
)

const (
	usbTransferTimeout = 15 * time.Second
	usbMaxPayload       = 64
)

// USBDeviceInfo describes one candidate front-end discovered on the bus.
type USBDeviceInfo struct {
	Bus, Port        int
	VendorID, ProductID uint16
	DevNode          string
}

// FindUSBDevices enumerates USB devices via udev, optionally restricted to
// bus (< 0 = any) and filtered to an allow-list of (vendor, product) IDs
// (empty = accept all).
func FindUSBDevices(bus int, allow map[[2]uint16]bool) ([]USBDeviceInfo, error) {
	u := udev.Udev{}
	enum := u.NewEnumerate()
	if err := enum.AddMatchSubsystem("usb"); err != nil {
		return nil, &USBError{Op: "enumerate", Err: err}
	}
	devices, err := enum.Devices()
	if err != nil {
		return nil, &USBError{Op: "device list", Err: err}
	}

	var out []USBDeviceInfo
	for _, d := range devices {
		vidStr := d.SysattrValue("idVendor")
		pidStr := d.SysattrValue("idProduct")
		busStr := d.SysattrValue("busnum")
		devStr := d.SysattrValue("devnum")
		if vidStr == "" || pidStr == "" {
			continue
		}
		vid, err1 := strconv.ParseUint(vidStr, 16, 16)
		pid, err2 := strconv.ParseUint(pidStr, 16, 16)
		if err1 != nil || err2 != nil {
			continue
		}
		busNum, _ := strconv.Atoi(busStr)
		devNum, _ := strconv.Atoi(devStr)
		if bus >= 0 && busNum != bus {
			continue
		}
		if len(allow) > 0 && !allow[[2]uint16{uint16(vid), uint16(pid)}] {
			continue
		}
		out = append(out, USBDeviceInfo{
			Bus: busNum, Port: devNum,
			VendorID: uint16(vid), ProductID: uint16(pid),
			DevNode: d.Devnode(),
		})
	}
	return out, nil
}

// usbTransfer is the vendor control-transfer primitive of spec.md §4.7 and
// §6: direction, request code, 16-bit value, up to 64 payload bytes, 15 s
// timeout. A real implementation binds to libusb; see DESIGN.md.
type usbTransfer interface {
	Transfer(dir USBDirection, request uint8, value uint16, payload []byte, timeout time.Duration) (int, error)
	Close() error
}

// USBSource is a SampleSource reading decoded IF payload from a USB
// front-end's bulk-transfer endpoint via its usbTransfer backend. Not
// seekable: backpressure is disabled and channels start IDLE, same as
// StdinSource (spec.md §3/§4.5).
type USBSource struct {
	dev  USBDeviceInfo
	xfer usbTransfer
}

// OpenUSBSource opens dev for streaming using xfer as the transfer backend.
// Returns an error (not a null handle, per Go convention) on open failure;
// per spec.md §7 this is fatal for that data source and the caller must not
// proceed to Start the receiver against it.
func OpenUSBSource(dev USBDeviceInfo, xfer usbTransfer) (*USBSource, error) {
	if xfer == nil {
		return nil, &USBError{Op: "open", Err: fmt.Errorf("no transfer backend for %04x:%04x", dev.VendorID, dev.ProductID)}
	}
	return &USBSource{dev: dev, xfer: xfer}, nil
}

func (s *USBSource) Read(p []byte) (int, error) {
	n, err := s.xfer.Transfer(USBDirIn, sdrDevReqReadBlock, 0, p, usbTransferTimeout)
	if err != nil {
		return 0, &TransferError{Source: "usb", Err: err}
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (s *USBSource) Close() error    { return s.xfer.Close() }
func (s *USBSource) Seekable() bool { return false }

// sdrDevReqReadBlock is the vendor request code this repository uses to ask
// the front-end for its next block of raw IF bytes.
const sdrDevReqReadBlock uint8 = 0x01

// loopbackTransfer is a usbTransfer backend for tests: it replays a fixed
// byte stream instead of talking to real hardware.
type loopbackTransfer struct {
	data []byte
	pos  int
}

func newLoopbackTransfer(data []byte) *loopbackTransfer {
	return &loopbackTransfer{data: data}
}

func (l *loopbackTransfer) Transfer(dir USBDirection, request uint8, value uint16, payload []byte, timeout time.Duration) (int, error) {
	if dir != USBDirIn {
		return len(payload), nil
	}
	if l.pos >= len(l.data) {
		return 0, nil
	}
	n := copy(payload, l.data[l.pos:])
	if n > usbMaxPayload && len(payload) > usbMaxPayload {
		n = usbMaxPayload
	}
	l.pos += n
	return n, nil
}

func (l *loopbackTransfer) Close() error { return nil }
