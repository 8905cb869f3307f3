package link

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/nevisdale/ikbd/internal/spsc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pumpFixture struct {
	host net.Conn
	rx   spsc.Consumer[byte]
	tx   spsc.Producer[byte]
	rxq  *spsc.Queue[byte]
	pump *Pump
	done chan error
	stop context.CancelFunc
}

func startPump(t *testing.T, queueSize int) *pumpFixture {
	t.Helper()
	host, dev := net.Pipe()
	rxq := spsc.New[byte](queueSize)
	txq := spsc.New[byte](queueSize)

	ctx, cancel := context.WithCancel(context.Background())
	f := &pumpFixture{
		host: host,
		rx:   rxq.Consumer(),
		tx:   txq.Producer(),
		rxq:  rxq,
		pump: NewPump(dev, rxq.Producer(), txq.Consumer(), 0),
		done: make(chan error, 1),
		stop: cancel,
	}
	go func() {
		f.done <- f.pump.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		host.Close()
	})
	return f
}

func (f *pumpFixture) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-f.done:
		return err
	case <-time.After(2 * time.Second):
		require.FailNow(t, "pump did not stop")
		return nil
	}
}

func Test_Pump_Receive(t *testing.T) {
	f := startPump(t, 8)

	_, err := f.host.Write([]byte{0x81, 0x82})
	require.NoError(t, err)

	var got []byte
	require.Eventually(t, func() bool {
		for {
			b, ok := f.rx.Pop()
			if !ok {
				return len(got) == 2
			}
			got = append(got, b)
		}
	}, time.Second, time.Millisecond)
	assert.Equal(t, []byte{0x81, 0x82}, got)
	assert.Equal(t, uint64(2), f.pump.Stats().RxBytes)
}

func Test_Pump_ReceiveQueueFull(t *testing.T) {
	f := startPump(t, 2)

	_, err := f.host.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return f.pump.Stats().RxBytes == 4
	}, time.Second, time.Millisecond)
	assert.Equal(t, uint64(2), f.rxq.Dropped())

	b, _ := f.rx.Pop()
	assert.Equal(t, byte(1), b, "older bytes kept")
	b, _ = f.rx.Pop()
	assert.Equal(t, byte(2), b)
}

func Test_Pump_Transmit(t *testing.T) {
	f := startPump(t, 8)
	f.tx.Push(0x42)
	f.tx.Push(0x43)

	buf := make([]byte, 2)
	require.NoError(t, f.host.SetReadDeadline(time.Now().Add(time.Second)))
	_, err := io.ReadFull(f.host, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x42, 0x43}, buf)
	require.Eventually(t, func() bool {
		return f.pump.Stats().TxBytes == 2
	}, time.Second, time.Millisecond)
}

func Test_Pump_StopsOnCancel(t *testing.T) {
	f := startPump(t, 8)
	f.stop()

	assert.NoError(t, f.wait(t))

	_, err := f.host.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF, "link closed")
}

func Test_Pump_HostHangup(t *testing.T) {
	f := startPump(t, 8)
	f.host.Close()

	err := f.wait(t)
	assert.ErrorIs(t, err, io.EOF)
}
