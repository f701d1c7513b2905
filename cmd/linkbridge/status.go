package main

import (
	"log"

	"github.com/fxamacker/cbor/v2"

	"github.com/arqlink/linkstack/pkg/datalink"
	"github.com/arqlink/linkstack/pkg/transport"
)

// statusEnvelope is the management-port (port 0) payload sent on every
// connection lifecycle event. Its shape is local to this demo and carries
// no protocol meaning.
type statusEnvelope struct {
	SessionID string `cbor:"session_id"`
	Kind      string `cbor:"kind"`
	RxCount   uint64 `cbor:"rx_count"`
	TxCount   uint64 `cbor:"tx_count"`
}

// publishStatus CBOR-encodes the current link state and sends it on the
// management port.
func publishStatus(link *datalink.Link, tr *transport.Transport, ev datalink.Event) {
	stats := link.Status()
	env := statusEnvelope{
		SessionID: ev.SessionID,
		Kind:      ev.Kind.String(),
		RxCount:   stats.RxCount,
		TxCount:   stats.TxCount,
	}
	data, err := cbor.Marshal(env)
	if err != nil {
		log.Printf("linkbridge: failed to marshal status envelope: %v", err)
		return
	}
	if err := tr.Send(managementPort, datalink.SeqSingle, 0, 0, data); err != nil {
		log.Printf("linkbridge: failed to send status envelope: %v", err)
	}
}
