// Package metrics exports a datalink.Link's cumulative Stats as Prometheus
// counters. The collector pulls a fresh snapshot on every Collect rather
// than maintaining counters of its own, since Stats is already the source
// of truth.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arqlink/linkstack/pkg/datalink"
)

type statCounter struct {
	desc *prometheus.Desc
	get  func(datalink.Stats) uint64
}

// LinkCollector implements prometheus.Collector over one Link's Status().
type LinkCollector struct {
	link     *datalink.Link
	counters []statCounter
}

// NewLinkCollector builds a collector for link. Register it with a
// prometheus.Registry before serving /metrics.
func NewLinkCollector(link *datalink.Link, constLabels prometheus.Labels) *LinkCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("linkstack_"+name, help, nil, constLabels)
	}
	return &LinkCollector{
		link: link,
		counters: []statCounter{
			{desc("rx_frames_total", "Valid data/link frames received."), func(s datalink.Stats) uint64 { return s.RxCount }},
			{desc("rx_sync_errors_total", "SOF resynchronizations."), func(s datalink.Stats) uint64 { return s.RxSynchronizationErrors }},
			{desc("rx_mic_errors_total", "Frames dropped for CRC mismatch."), func(s datalink.Stats) uint64 { return s.RxMICErrors }},
			{desc("rx_frame_id_errors_total", "Frames dropped for window overrun."), func(s datalink.Stats) uint64 { return s.RxFrameIDErrors }},
			{desc("rx_deduplicate_total", "Frames re-acked without redelivery."), func(s datalink.Stats) uint64 { return s.RxDeduplicateCount }},
			{desc("tx_frames_total", "Frames handed to Send."), func(s datalink.Stats) uint64 { return s.TxCount }},
			{desc("tx_retransmit_total", "Frames rebuilt and resent."), func(s datalink.Stats) uint64 { return s.TxRetransmitCount }},
			{desc("tx_failure_total", "Messages that exhausted MaxRetries."), func(s datalink.Stats) uint64 { return s.TxFailureCount }},
			{desc("acks_sent_total", "ACK frames sent."), func(s datalink.Stats) uint64 { return s.AcksSent }},
			{desc("nacks_sent_total", "NACK frames sent."), func(s datalink.Stats) uint64 { return s.NacksSent }},
			{desc("acks_recv_total", "ACK frames received."), func(s datalink.Stats) uint64 { return s.AcksRecv }},
			{desc("nacks_recv_total", "NACK frames received."), func(s datalink.Stats) uint64 { return s.NacksRecv }},
			{desc("resets_total", "Reset handshakes started or answered."), func(s datalink.Stats) uint64 { return s.ResetCount }},
		},
	}
}

func (c *LinkCollector) Describe(descs chan<- *prometheus.Desc) {
	for _, cnt := range c.counters {
		descs <- cnt.desc
	}
}

func (c *LinkCollector) Collect(metrics chan<- prometheus.Metric) {
	snap := c.link.Status()
	for _, cnt := range c.counters {
		metrics <- prometheus.MustNewConstMetric(cnt.desc, prometheus.CounterValue, float64(cnt.get(snap)))
	}
}
