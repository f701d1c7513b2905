package datalink

// Config bounds the resources the data-link layer allocates at New and never
// grows afterward.
type Config struct {
	// TxWindowSize is the maximum number of frames in flight at once: a
	// power of two up to 512, an application-tunable runtime parameter
	// rather than a protocol constant.
	TxWindowSize int
	// RxWindowSize is how far ahead of rx_frame_id_next a frame may arrive
	// and still be buffered rather than NACKed as a window overrun.
	RxWindowSize int
	// TxBufferSize bounds the TX ring buffer (internal/ring) that holds
	// built frame bytes awaiting drain by the external send adapter.
	TxBufferSize int

	// RetryTimeoutMS is how long an unacknowledged frame waits before
	// retransmission. The exact value is not fixed by the protocol, only
	// relative ordering is load-bearing; 250ms is the default.
	RetryTimeoutMS int64
	// MaxRetries is how many times a frame is transmitted in total, the
	// first send included; when the last of those transmissions times out,
	// its send is reported failed to the upper layer.
	MaxRetries int
	// MaxResetRetries is how many consecutive fatal send failures trigger
	// an automatic reset before the connection is declared lost.
	MaxResetRetries int
	// ResetTimeoutMS bounds how long a Reset negotiation waits for the
	// peer's echo before retrying.
	ResetTimeoutMS int64
}

// DefaultConfig returns sane defaults for an embedded point-to-point link:
// an 8-frame window, a 2KiB TX buffer, and a 250ms retry timeout with 8
// retries before giving up.
func DefaultConfig() Config {
	return Config{
		TxWindowSize:    8,
		RxWindowSize:    8,
		TxBufferSize:    2048,
		RetryTimeoutMS:  250,
		MaxRetries:      8,
		MaxResetRetries: 3,
		ResetTimeoutMS:  500,
	}
}

// validWindow reports whether w can index the slot arenas safely. Window
// sizes must be powers of two: slots live at frame_id mod w, and two live
// ids straddling the 2048 wrap can collide in a slot unless w divides 2048.
// The cap of 512 keeps every window comfortably inside the 1023 half-range
// that separates past from future ids.
func validWindow(w int) bool {
	return w >= 1 && w <= 512 && w&(w-1) == 0
}

func (c Config) validate() error {
	if !validWindow(c.TxWindowSize) {
		return errInvalidf("tx window size %d must be a power of two in [1,512]", c.TxWindowSize)
	}
	if !validWindow(c.RxWindowSize) {
		return errInvalidf("rx window size %d must be a power of two in [1,512]", c.RxWindowSize)
	}
	if c.TxBufferSize < 1 {
		return errInvalidf("tx buffer size must be positive")
	}
	if c.RetryTimeoutMS <= 0 {
		return errInvalidf("retry timeout must be positive")
	}
	if c.MaxRetries < 1 {
		return errInvalidf("max retries must be positive")
	}
	if c.ResetTimeoutMS <= 0 {
		return errInvalidf("reset timeout must be positive")
	}
	if c.MaxResetRetries < 1 {
		return errInvalidf("max reset retries must be positive")
	}
	return nil
}
