//go:build unix

package link

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

type stdio struct {
	in    *os.File
	out   *os.File
	fd    int
	state *term.State
}

// Stdio uses the process's stdin and stdout as the wire. A terminal on
// stdin is put in raw mode until Close.
func Stdio() (io.ReadWriteCloser, error) {
	fd, err := unix.Dup(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("couldn't dup stdin: %w", err)
	}

	s := &stdio{out: os.Stdout, fd: fd}
	if term.IsTerminal(fd) {
		if s.state, err = term.MakeRaw(fd); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("couldn't set raw mode: %w", err)
		}
	}
	// a non-blocking descriptor goes through the runtime poller, so
	// Close interrupts a pending Read
	if err := unix.SetNonblock(fd, true); err != nil {
		s.restore()
		unix.Close(fd)
		return nil, fmt.Errorf("couldn't set non-blocking stdin: %w", err)
	}
	s.in = os.NewFile(uintptr(fd), "stdin")
	return s, nil
}

func (s *stdio) Read(p []byte) (int, error) {
	return s.in.Read(p)
}

func (s *stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *stdio) restore() {
	if s.state != nil {
		term.Restore(s.fd, s.state)
		s.state = nil
	}
}

func (s *stdio) Close() error {
	s.restore()
	// the flag is shared with the process's own stdin
	unix.SetNonblock(s.fd, false)
	return s.in.Close()
}
