package main

import (
	"context"
	"encoding/json"
	"runtime"
	"time"

	"github.com/irctrakz/ghostcap/pkg/logging"
	"github.com/irctrakz/ghostcap/pkg/sink"
	"github.com/sirupsen/logrus"
)

// metricsSource names one session's sink counters.
type metricsSource struct {
	Name    string
	Metrics func() sink.Metrics
}

type metricsSnapshot struct {
	Timestamp string                       `json:"ts"`
	Sinks     map[string]map[string]uint64 `json:"sinks"`
	RT        map[string]uint64            `json:"rt"`
}

func runMetricsReporter(ctx context.Context, d time.Duration, format string, sources []metricsSource) {
	if format == "" {
		format = "text"
	}
	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dumpMetrics(sources, format)
		}
	}
}

func takeSnapshot(sources []metricsSource) metricsSnapshot {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	snap := metricsSnapshot{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Sinks:     make(map[string]map[string]uint64, len(sources)),
		RT: map[string]uint64{
			"heap_alloc": ms.HeapAlloc,
			"heap_inuse": ms.HeapInuse,
			"goroutines": uint64(runtime.NumGoroutine()),
			"num_gc":     uint64(ms.NumGC),
		},
	}
	for _, src := range sources {
		m := src.Metrics()
		snap.Sinks[src.Name] = map[string]uint64{
			"writes":        m.Writes,
			"flushes":       m.Flushes,
			"bytes_flushed": m.BytesFlushed,
			"errors":        m.Errors,
		}
	}
	return snap
}

func dumpMetrics(sources []metricsSource, format string) {
	snap := takeSnapshot(sources)
	if format == "json" {
		b, err := json.Marshal(snap)
		if err != nil {
			logging.Errorf("metrics: %v", err)
			return
		}
		logging.Infof("metrics %s", b)
		return
	}
	for name, m := range snap.Sinks {
		logging.InfoWithFields(logrus.Fields{
			"sink":          name,
			"writes":        m["writes"],
			"flushes":       m["flushes"],
			"bytes_flushed": m["bytes_flushed"],
			"errors":        m["errors"],
		}, "metrics")
	}
	logging.Infof("metrics rt heap=%dMB inuse=%dMB goroutines=%d gc=%d",
		snap.RT["heap_alloc"]/(1024*1024), snap.RT["heap_inuse"]/(1024*1024), snap.RT["goroutines"], snap.RT["num_gc"])
}
