/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package rpcmetrics registers and updates the Prometheus collectors used
// across the client and server packages: connection counts, commands
// served, command latency, and stream lifetime. Kept internal since the
// metric names and label sets are an implementation detail of this engine,
// not a public contract.
package rpcmetrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every collector this engine exposes behind one registration
// call, the way a server wires up its handlers through a single struct
// rather than scattering global collectors across packages.
type Metrics struct {
	mu sync.Mutex
	reg prometheus.Registerer

	Connections   *prometheus.GaugeVec
	CommandsTotal *prometheus.CounterVec
	CommandErrors *prometheus.CounterVec
	CommandLatency *prometheus.HistogramVec
	StreamsActive *prometheus.GaugeVec
}

// New builds the collector set without registering it; call Register to
// attach it to a prometheus.Registerer (typically prometheus.DefaultRegisterer
// or a per-server registry, to allow more than one engine instance per
// process without a name collision).
func New(namespace string) *Metrics {
	return &Metrics{
		Connections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "number of currently open RPC connections",
		}, []string{"role", "transport"}),

		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "total number of commands handled",
		}, []string{"service", "command"}),

		CommandErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_errors_total",
			Help:      "total number of commands that returned an error",
		}, []string{"service", "command"}),

		CommandLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_latency_seconds",
			Help:      "command handling latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "command"}),

		StreamsActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "streams_active",
			Help:      "number of currently open generator streams",
		}, []string{"service", "command"}),
	}
}

// Register attaches every collector to reg, idempotently: calling Register
// twice with the same reg is a no-op rather than a panic, so server setup
// code doesn't need to guard against double wiring during a reload.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.reg == reg {
		return nil
	}

	for _, c := range []prometheus.Collector{
		m.Connections, m.CommandsTotal, m.CommandErrors, m.CommandLatency, m.StreamsActive,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}

	m.reg = reg
	return nil
}

func (m *Metrics) ConnOpen(role, transport string) {
	m.Connections.WithLabelValues(role, transport).Inc()
}

func (m *Metrics) ConnClose(role, transport string) {
	m.Connections.WithLabelValues(role, transport).Dec()
}

func (m *Metrics) CommandDone(svc, cmd string, seconds float64, failed bool) {
	m.CommandsTotal.WithLabelValues(svc, cmd).Inc()
	m.CommandLatency.WithLabelValues(svc, cmd).Observe(seconds)
	if failed {
		m.CommandErrors.WithLabelValues(svc, cmd).Inc()
	}
}

func (m *Metrics) StreamOpen(svc, cmd string) {
	m.StreamsActive.WithLabelValues(svc, cmd).Inc()
}

func (m *Metrics) StreamClose(svc, cmd string) {
	m.StreamsActive.WithLabelValues(svc, cmd).Dec()
}
