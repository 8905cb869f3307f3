// Package link moves serial bytes between the controller and the host
// computer's side of the wire.
package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nevisdale/ikbd/internal/spsc"
	"golang.org/x/sync/errgroup"
)

// DefaultPoll is how often the transmit queue is checked.
const DefaultPoll = time.Millisecond

var ErrUnsupported = errors.New("link: not supported on this platform")

// Pump is the event side of the serial path. It fills the receive
// queue from conn and drains the transmit queue into it.
type Pump struct {
	conn io.ReadWriteCloser
	rx   spsc.Producer[byte]
	tx   spsc.Consumer[byte]
	poll time.Duration

	rxBytes atomic.Uint64
	txBytes atomic.Uint64
}

type Stats struct {
	RxBytes uint64
	TxBytes uint64
}

func NewPump(conn io.ReadWriteCloser, rx spsc.Producer[byte], tx spsc.Consumer[byte], poll time.Duration) *Pump {
	if poll <= 0 {
		poll = DefaultPoll
	}
	return &Pump{conn: conn, rx: rx, tx: tx, poll: poll}
}

// Run pumps bytes until ctx is done or the link fails. conn is closed
// on return.
func (p *Pump) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.receive(ctx)
	})
	g.Go(func() error {
		return p.transmit(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		// unblocks the pending Read
		if err := p.conn.Close(); err != nil {
			slog.Debug("link: close", "err", err)
		}
		return nil
	})
	return g.Wait()
}

func (p *Pump) receive(ctx context.Context) error {
	buf := make([]byte, 64)
	for {
		n, err := p.conn.Read(buf)
		for _, b := range buf[:n] {
			if !p.rx.Push(b) {
				slog.Debug("link: receive queue full", "dropped", b)
			}
		}
		p.rxBytes.Add(uint64(n))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("link receive: %w", err)
		}
	}
}

func (p *Pump) transmit(ctx context.Context) error {
	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

	buf := make([]byte, 0, 64)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		buf = buf[:0]
		for {
			b, ok := p.tx.Pop()
			if !ok {
				break
			}
			buf = append(buf, b)
		}
		if len(buf) == 0 {
			continue
		}
		if _, err := p.conn.Write(buf); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("link transmit: %w", err)
		}
		p.txBytes.Add(uint64(len(buf)))
	}
}

func (p *Pump) Stats() Stats {
	return Stats{RxBytes: p.rxBytes.Load(), TxBytes: p.txBytes.Load()}
}
