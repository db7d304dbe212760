// Package telemetry provides opt-in usage reporting for the migforge CLI.
//
// Reporting is disabled entirely when MIGFORGE_TELEMETRY_DISABLED is set
// or when the --no-telemetry flag is passed. Events are batched in memory
// and flushed in the background; failures are silent so telemetry can
// never break a command.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"sync"
	"time"
)

// Event is a single usage report.
type Event struct {
	EventType    string         `json:"event_type"`
	Command      string         `json:"command,omitempty"`
	Duration     *time.Duration `json:"duration,omitempty"`
	Error        string         `json:"error,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
	Version      string         `json:"version"`
	OS           string         `json:"os"`
	Architecture string         `json:"architecture"`
}

// Collector batches events and ships them to the configured endpoint.
type Collector struct {
	enabled       bool
	endpoint      string
	events        []Event
	mu            sync.Mutex
	httpClient    *http.Client
	version       string
	batchSize     int
	flushInterval time.Duration
	stopChan      chan struct{}
	wg            sync.WaitGroup
}

var (
	globalCollector *Collector
	once            sync.Once
)

// Init initializes the global collector. The enabled argument is combined
// with the environment and flag opt-outs, so callers can pass true and
// still respect the user's choice.
func Init(version string, enabled bool) {
	once.Do(func() {
		globalCollector = &Collector{
			enabled:       enabled && !optedOut(),
			endpoint:      endpoint(),
			events:        make([]Event, 0, 100),
			httpClient:    &http.Client{Timeout: 5 * time.Second},
			version:       version,
			batchSize:     10,
			flushInterval: 30 * time.Second,
			stopChan:      make(chan struct{}),
		}

		if globalCollector.enabled {
			globalCollector.startBackgroundFlush()
		}
	})
}

// RecordCommand records one CLI invocation with its duration and outcome.
func RecordCommand(command string, duration time.Duration, err error) {
	if globalCollector == nil || !globalCollector.enabled {
		return
	}

	event := Event{
		EventType:    "command",
		Command:      command,
		Duration:     &duration,
		Timestamp:    time.Now(),
		Version:      globalCollector.version,
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
	}

	if err != nil {
		event.Error = err.Error()
	}

	globalCollector.record(event)
}

func (c *Collector) record(event Event) {
	c.mu.Lock()
	c.events = append(c.events, event)
	full := len(c.events) >= c.batchSize
	c.mu.Unlock()

	if full {
		c.flush()
	}
}

// flush sends the drained events asynchronously.
func (c *Collector) flush() {
	go c.send(c.drain())
}

func (c *Collector) drain() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.events) == 0 {
		return nil
	}
	events := make([]Event, len(c.events))
	copy(events, c.events)
	c.events = c.events[:0]
	return events
}

func (c *Collector) send(events []Event) {
	if len(events) == 0 {
		return
	}

	payload := map[string]interface{}{
		"events": events,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", fmt.Sprintf("migforge/%s", c.version))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	io.Copy(io.Discard, resp.Body)
}

func (c *Collector) startBackgroundFlush() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.flush()
			case <-c.stopChan:
				return
			}
		}
	}()
}

// Shutdown stops the background flusher and sends any buffered events. The
// final send is synchronous; a fire-and-forget goroutine would die with the
// process and drop the batch a short-lived command built up.
func Shutdown() {
	if globalCollector == nil {
		return
	}

	close(globalCollector.stopChan)
	globalCollector.wg.Wait()
	globalCollector.send(globalCollector.drain())
}

// IsEnabled reports whether events are being collected.
func IsEnabled() bool {
	return globalCollector != nil && globalCollector.enabled
}

func optedOut() bool {
	if v := os.Getenv("MIGFORGE_TELEMETRY_DISABLED"); v == "1" || v == "true" {
		return true
	}

	for _, arg := range os.Args {
		if arg == "--no-telemetry" {
			return true
		}
	}

	return false
}

func endpoint() string {
	if ep := os.Getenv("MIGFORGE_TELEMETRY_ENDPOINT"); ep != "" {
		return ep
	}
	return "https://telemetry.migforge.dev/events"
}
