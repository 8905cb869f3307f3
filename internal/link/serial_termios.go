//go:build linux && (amd64 || arm64 || 386 || arm)

package link

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Baud is the IKBD line rate rounded down to whole bits per second;
// the real clock divider gives 7812.5.
const Baud = 7812

// OpenSerial opens a tty and sets it to raw 8N1 at Baud.
func OpenSerial(path string) (io.ReadWriteCloser, error) {
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("couldn't open the serial port: %w", err)
	}
	// Fd would put the descriptor back in blocking mode and Close could
	// no longer interrupt a pending Read
	rc, err := f.SyscallConn()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var cerr error
	if err := rc.Control(func(fd uintptr) {
		cerr = configure(int(fd))
	}); err != nil {
		cerr = err
	}
	if cerr != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, cerr)
	}
	return f, nil
}

func configure(fd int) error {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS2)
	if err != nil {
		return fmt.Errorf("couldn't read termios: %w", err)
	}

	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON | unix.IXOFF
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB | unix.CRTSCTS | unix.CBAUD
	t.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL | unix.BOTHER

	t.Ispeed = Baud
	t.Ospeed = Baud

	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS2, t); err != nil {
		return fmt.Errorf("couldn't set termios: %w", err)
	}
	return nil
}
