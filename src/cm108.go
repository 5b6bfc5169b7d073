package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:	PTT through the GPIO pins of a CM108/CM119 USB audio chip.
 *
 * Description:	The chip exposes its GPIO pins through a HID interface,
 *		/dev/hidrawN.  A pin is set by writing a 5 byte output
 *		report.  The mask byte selects pins to drive and the data
 *		byte gives their levels.  Pin numbers are 1 thru 8, as in
 *		the data sheet; GPIO3 is the usual one for PTT.
 *
 *		When no device is given, udev is asked for the first
 *		hidraw device whose USB parent has a known vendor id.
 *
 *		Access requires a udev rule such as:
 *
 *		SUBSYSTEM=="hidraw", ATTRS{idVendor}=="0d8c", GROUP="audio", MODE="0660"
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jochenvg/go-udev"
	"golang.org/x/sys/unix"
)

const (
	cmediaVendor    = 0x0d8c
	sscVendor       = 0x0c76
	aiocVendor      = 0x1209
	aiocProduct     = 0x7388
	cm108ReportSize = 5
)

// GoodCM108Device reports whether a vendor and product id belong to a chip
// with compatible GPIO.
func GoodCM108Device(vid, pid int) bool {
	switch {
	case vid == cmediaVendor:
		return true
	case vid == sscVendor:
		return true
	case vid == aiocVendor && pid == aiocProduct:
		return true
	}
	return false
}

// CM108Report builds the output report that drives pin to the given level.
func CM108Report(pin int, on bool) ([]byte, error) {
	if pin < 1 || pin > 8 {
		return nil, fmt.Errorf("CM108 GPIO pin %d must be 1 to 8", pin)
	}

	var mask = byte(1) << (pin - 1)
	var data byte
	if on {
		data = mask
	}

	// Writing 4 bytes fails with EPIPE; the extra leading zero is needed.
	return []byte{0, 0, data, mask, 0}, nil
}

/*-------------------------------------------------------------------
 *
 * Name:	FindCM108
 *
 * Purpose:	Find the hidraw device of the first compatible USB
 *		audio adapter.
 *
 *------------------------------------------------------------------*/

func FindCM108() (string, error) {
	var u udev.Udev
	var e = u.NewEnumerate()
	if err := e.AddMatchSubsystem("hidraw"); err != nil {
		return "", fmt.Errorf("udev: %w", err)
	}

	var devices, err = e.Devices()
	if err != nil {
		return "", fmt.Errorf("udev: %w", err)
	}

	for _, d := range devices {
		var node = d.Devnode()
		if node == "" {
			continue
		}
		var parent = d.ParentWithSubsystemDevtype("usb", "usb_device")
		if parent == nil {
			continue
		}
		var vid, _ = strconv.ParseInt(parent.SysattrValue("idVendor"), 16, 32)
		var pid, _ = strconv.ParseInt(parent.SysattrValue("idProduct"), 16, 32)
		if GoodCM108Device(int(vid), int(pid)) {
			return node, nil
		}
	}

	return "", errors.New("no CM108 compatible USB audio adapter found")
}

type cm108PTT struct {
	dev    io.WriteCloser
	pin    int
	invert bool
}

func openCM108PTT(cfg PTTConfig) (*cm108PTT, error) {
	var name = cfg.Device
	if name == "" {
		var found, err = FindCM108()
		if err != nil {
			return nil, err
		}
		name = found
	}

	var f, err = os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("CM108 %s: %w", name, err)
	}

	var info, ioctlErr = unix.IoctlHIDGetRawInfo(int(f.Fd()))
	if ioctlErr == nil && !GoodCM108Device(int(uint16(info.Vendor)), int(uint16(info.Product))) {
		f.Close()
		return nil, fmt.Errorf("%s is not a supported device type, vid=%04x pid=%04x", name, uint16(info.Vendor), uint16(info.Product))
	}

	return &cm108PTT{dev: f, pin: cfg.Pin, invert: cfg.Invert}, nil
}

func (c *cm108PTT) Set(on bool) error {
	var report, err = CM108Report(c.pin, level(on, c.invert))
	if err != nil {
		return err
	}

	var n, writeErr = c.dev.Write(report)
	if writeErr != nil {
		return fmt.Errorf("CM108 write: %w", writeErr)
	}
	if n != cm108ReportSize {
		return fmt.Errorf("CM108 write: %d of %d bytes", n, cm108ReportSize)
	}
	return nil
}

func (c *cm108PTT) Close() error {
	return c.dev.Close()
}
