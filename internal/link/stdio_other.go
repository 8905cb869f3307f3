//go:build !unix

package link

import "io"

func Stdio() (io.ReadWriteCloser, error) {
	return nil, ErrUnsupported
}
