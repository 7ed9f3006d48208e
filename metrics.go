/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"

	"github.com/Seednode/typerace/race"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "typerace"

type metrics struct {
	registry  *prometheus.Registry
	delivered *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	races     *prometheus.CounterVec
	rejected  *prometheus.CounterVec
}

func newMetrics(reg *race.Registry) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_delivered_total",
			Help:      "Room events queued to a player connection, by event type.",
		}, []string{"type"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Room events dropped because a player's send queue was full, by event type.",
		}, []string{"type"}),
		races: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "races_total",
			Help:      "Races started and ended.",
		}, []string{"phase"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_rejected_total",
			Help:      "Player actions answered with an error, by error code.",
		}, []string{"code"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.delivered,
		m.dropped,
		m.races,
		m.rejected,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms",
			Help:      "Rooms currently open.",
		}, func() float64 { return float64(reg.Stats().Rooms) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players",
			Help:      "Players currently in a room.",
		}, func() float64 { return float64(reg.Stats().Players) }),
	)

	return m
}

// observe records one event leaving the registry, independent of recipients.
func (m *metrics) observe(ev race.Event) {
	switch ev.Type {
	case race.RaceStarted:
		m.races.WithLabelValues("started").Inc()
	case race.RaceEnded:
		m.races.WithLabelValues("ended").Inc()
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
