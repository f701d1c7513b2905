package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arqlink/linkstack/internal/metrics"
	"github.com/arqlink/linkstack/internal/serialio"
	"github.com/arqlink/linkstack/pkg/datalink"
	"github.com/arqlink/linkstack/pkg/redis"
	"github.com/arqlink/linkstack/pkg/transport"
)

const (
	managementPort = 0
	telemetryPort  = 1

	redisTelemetryChannel = "linkbridge:telemetry"
	redisOutboundQueue    = "linkbridge:telemetry:out"
)

var (
	serialDevice = flag.String("serial", "/dev/ttyUSB0", "Serial device path")
	baudRate     = flag.Int("baud", 115200, "Serial baud rate")
	redisAddr    = flag.String("redis-addr", "localhost:6379", "Redis server address")
	redisPass    = flag.String("redis-pass", "", "Redis password")
	redisDB      = flag.Int("redis-db", 0, "Redis database number")
	metricsAddr  = flag.String("metrics-addr", ":9100", "Prometheus /metrics listen address")
	txWindow     = flag.Int("tx-window", datalink.DefaultConfig().TxWindowSize, "TX window size")
	rxWindow     = flag.Int("rx-window", datalink.DefaultConfig().RxWindowSize, "RX window size")
)

// ioProxy breaks the construction cycle between datalink.New (which needs
// an IOAdapter up front) and serialio.Open (which needs the Link's
// RecvBytes as its sink). It is assigned exactly once, before any goroutine
// can observe it.
type ioProxy struct {
	adapter *serialio.Adapter
}

func (p *ioProxy) TimeMS() uint32        { return p.adapter.TimeMS() }
func (p *ioProxy) Send(b []byte) error   { return p.adapter.Send(b) }
func (p *ioProxy) SendAvailable() uint32 { return p.adapter.SendAvailable() }

func main() {
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Printf("Starting linkbridge")
	log.Printf("Serial device: %s", *serialDevice)
	log.Printf("Baud rate: %d", *baudRate)
	log.Printf("Redis address: %s", *redisAddr)

	redisBridge, err := redis.New(*redisAddr, *redisPass, *redisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisBridge.Close()
	log.Printf("Connected to Redis")

	cfg := datalink.DefaultConfig()
	cfg.TxWindowSize = *txWindow
	cfg.RxWindowSize = *rxWindow

	tr := transport.New()

	// mu serializes the calls into link made here and by the goroutines
	// below: Reset from this goroutine, Process from the service loop, Send
	// from the outbound-queue goroutine, RecvBytes from the serial read
	// goroutine.
	var mu sync.Mutex

	proxy := &ioProxy{}
	link, err := datalink.New(cfg, proxy, tr)
	if err != nil {
		log.Fatalf("Failed to construct data-link: %v", err)
	}
	tr.BindLink(link)

	// Hold mu until proxy.adapter is set, so the read goroutine's sink
	// cannot reach the link (and through it the proxy) before then.
	mu.Lock()
	adapter, err := serialio.Open(*serialDevice, *baudRate, func(b []byte) {
		mu.Lock()
		defer mu.Unlock()
		link.RecvBytes(b)
	})
	if err != nil {
		log.Fatalf("Failed to open serial device: %v", err)
	}
	proxy.adapter = adapter
	mu.Unlock()
	defer adapter.Close()
	log.Printf("Serial adapter ready")

	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewLinkCollector(link, prometheus.Labels{"device": *serialDevice}))
	go serveMetrics(registry)

	registerManagementPort(tr, link)
	registerTelemetryPort(tr, redisBridge)

	go runRedisOutboundQueue(redisBridge, tr, &mu)

	mu.Lock()
	link.Reset()
	mu.Unlock()

	go serviceLoop(link, &mu)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("Shutting down...")
}

// serviceLoop drives Link.Process on a fixed tick. A fixed tick is simpler
// than honoring ServiceIntervalMS precisely and is conservative: it only
// ever calls Process more often than strictly necessary, never less.
func serviceLoop(link *datalink.Link, mu *sync.Mutex) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		mu.Lock()
		link.Process()
		mu.Unlock()
	}
}

func serveMetrics(registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	log.Printf("Serving metrics on %s/metrics", *metricsAddr)
	if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
		log.Printf("metrics server stopped: %v", err)
	}
}

func registerManagementPort(tr *transport.Transport, link *datalink.Link) {
	_ = tr.PortRegister(managementPort, "management",
		func(ev datalink.Event) { publishStatus(link, tr, ev) },
		nil,
	)
}

func registerTelemetryPort(tr *transport.Transport, bridge *redis.Bridge) {
	_ = tr.PortRegister(telemetryPort, "telemetry",
		nil,
		func(seq datalink.Seq, messageID uint8, msg []byte) {
			if err := bridge.Publish(redisTelemetryChannel, msg); err != nil {
				log.Printf("linkbridge: failed to publish telemetry: %v", err)
			}
		},
	)
}

// runRedisOutboundQueue blocks on the list-backed outbound queue and
// originates an outbound send for every payload popped.
func runRedisOutboundQueue(bridge *redis.Bridge, tr *transport.Transport, mu *sync.Mutex) {
	var messageID uint8
	for {
		payload, ok, err := bridge.PopOutbound(redisOutboundQueue, 0)
		if err != nil {
			log.Printf("linkbridge: error reading outbound queue: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if !ok {
			continue
		}

		mu.Lock()
		err = tr.Send(telemetryPort, datalink.SeqSingle, messageID, 0, payload)
		mu.Unlock()
		if err != nil {
			log.Printf("linkbridge: failed to send outbound payload: %v", err)
		}
		messageID++
	}
}
