package datalink

import "github.com/arqlink/linkstack/internal/framer"

// Stats are the link's cumulative counters. Every recoverable failure
// inside the stack increments exactly one of these; nothing here is ever
// cleared, not even by Reset.
type Stats struct {
	// Framer-owned counters (CRC/sync), copied out of internal/framer.RX on
	// every Status() call.
	RxCount                 uint64
	RxSynchronizationErrors uint64
	RxMICErrors             uint64

	// Data-link-owned counters.
	RxFrameIDErrors    uint64 // window overrun
	RxDeduplicateCount uint64 // frame already delivered, re-acked only

	TxCount           uint64 // frames handed to Send
	TxRetransmitCount uint64 // frames rebuilt and resent
	TxFailureCount    uint64 // messages that exhausted MaxRetries

	AcksSent   uint64
	NacksSent  uint64
	AcksRecv   uint64
	NacksRecv  uint64
	ResetCount uint64
}

func (s *Stats) mergeFramer(fs framer.Stats) {
	s.RxCount = fs.RxCount
	s.RxSynchronizationErrors = fs.RxSynchronizationErrors
	s.RxMICErrors = fs.RxMICErrors
}
