//go:build linux

package source

import (
	"fmt"
	"time"

	serial "github.com/daedaluz/goserial"
)

// SerialSource reads packed-dibit bytes from a serial-attached
// demodulator, putting the port in raw mode and bounding each read
// with a fixed deadline (spec.md §6 external-collaborator contract).
type SerialSource struct {
	port *serial.Port
}

// OpenSerial opens device at baudRate, puts it in raw mode, and bounds
// reads with readTimeout.
func OpenSerial(device string, baudRate int, readTimeout time.Duration) (*SerialSource, error) {
	opts := serial.NewOptions().SetReadTimeout(readTimeout)
	port, err := serial.Open(device, opts)
	if err != nil {
		return nil, fmt.Errorf("source: open %s: %w", device, err)
	}

	if err := port.MakeRaw(); err != nil {
		port.Close()
		return nil, fmt.Errorf("source: make raw %s: %w", device, err)
	}

	speed, err := baudToCFlag(baudRate)
	if err != nil {
		port.Close()
		return nil, err
	}
	attrs, err := port.GetAttr()
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("source: get attrs %s: %w", device, err)
	}
	attrs.SetSpeed(speed)
	if err := port.SetAttr(serial.TCSANOW, attrs); err != nil {
		port.Close()
		return nil, fmt.Errorf("source: set speed %s: %w", device, err)
	}

	return &SerialSource{port: port}, nil
}

// ReadBytes reads whatever the port's read deadline yields and stamps
// it with the wall-clock time the read returned.
func (s *SerialSource) ReadBytes(buf []byte) (int, uint64, error) {
	n, err := s.port.Read(buf)
	return n, nowMillis(), err
}

// Close closes the underlying port.
func (s *SerialSource) Close() error {
	return s.port.Close()
}

// Port exposes the underlying serial port for a collaborator (e.g.
// pkg/pll.SerialPLL) that writes correction commands back over the
// same link used for symbol input.
func (s *SerialSource) Port() *serial.Port {
	return s.port
}

func baudToCFlag(baudRate int) (serial.CFlag, error) {
	switch baudRate {
	case 9600:
		return serial.B9600, nil
	case 38400:
		return serial.B38400, nil
	case 57600:
		return serial.B57600, nil
	case 115200:
		return serial.B115200, nil
	case 576000:
		return serial.B576000, nil
	case 1152000:
		return serial.B1152000, nil
	default:
		return 0, fmt.Errorf("source: unsupported baud rate %d", baudRate)
	}
}
