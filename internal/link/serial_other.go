//go:build !linux || !(amd64 || arm64 || 386 || arm)

package link

import "io"

func OpenSerial(path string) (io.ReadWriteCloser, error) {
	return nil, ErrUnsupported
}
