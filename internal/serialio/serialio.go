// Package serialio binds datalink.IOAdapter to a real serial port using
// go.bug.st/serial. It is the one concrete I/O adapter this repository
// ships; the interface it implements, not this binding, is what
// pkg/datalink depends on.
package serialio

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"go.bug.st/serial"
)

// Sink receives bytes read off the wire. In this repository it is always
// (*datalink.Link).RecvBytes; serialio doesn't import pkg/datalink, so the
// caller supplies it directly.
type Sink func([]byte)

// Adapter implements datalink.IOAdapter over a go.bug.st/serial port. Send
// may be called concurrently with the background read loop; concurrent Send
// calls serialize through mu, while the read loop reads without taking it.
type Adapter struct {
	port  serial.Port
	epoch time.Time

	mu        sync.Mutex
	stopCh    chan struct{}
	wg        sync.WaitGroup
	sink      Sink
	sendAvail uint32
}

// Open opens devicePath at baud with 8-N-1 framing and starts a background
// goroutine feeding every byte it reads to sink. go.bug.st/serial resets
// line discipline on open, so stale state left by a previous process needs
// no separate clearing step.
func Open(devicePath string, baud int, sink Sink) (*Adapter, error) {
	if sink == nil {
		return nil, fmt.Errorf("serialio: sink is required")
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(devicePath, mode)
	if err != nil {
		return nil, fmt.Errorf("serialio: open %s: %w", devicePath, err)
	}

	a := &Adapter{
		port:      port,
		epoch:     time.Now(),
		stopCh:    make(chan struct{}),
		sink:      sink,
		sendAvail: 1 << 16, // go.bug.st/serial has no queryable TX buffer depth; report a generous fixed ceiling
	}
	a.wg.Add(1)
	go a.readLoop()
	return a, nil
}

// Close stops the read loop and releases the underlying port.
func (a *Adapter) Close() error {
	close(a.stopCh)
	a.wg.Wait()
	return a.port.Close()
}

// Send implements datalink.IOAdapter.
func (a *Adapter) Send(b []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err := a.port.Write(b)
	return err
}

// SendAvailable implements datalink.IOAdapter.
func (a *Adapter) SendAvailable() uint32 {
	return a.sendAvail
}

// TimeMS implements datalink.IOAdapter: a free-running millisecond counter
// that wraps roughly every 49.7 days, exactly as the boundary interface
// documents.
func (a *Adapter) TimeMS() uint32 {
	return uint32(time.Since(a.epoch).Milliseconds())
}

// readLoop blocks on Read, hands whatever came back to the sink, and logs
// and backs off briefly on transient errors. go.bug.st/serial has no
// per-byte read call, so reads are buffered rather than one byte at a time.
func (a *Adapter) readLoop() {
	defer a.wg.Done()

	buf := make([]byte, 256)
	for {
		select {
		case <-a.stopCh:
			return
		default:
		}

		n, err := a.port.Read(buf)
		if err != nil {
			if err == io.EOF {
				return
			}
			log.Printf("serialio: read error: %v", err)
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if n == 0 {
			continue
		}
		a.sink(append([]byte(nil), buf[:n]...))
	}
}
