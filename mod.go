// Package iibin implements a schema-driven binary message codec.
//
// Messages are described once through the schema registry and then encoded
// into, or decoded from, a compact tag-based wire format close to Protocol
// Buffers. The sub-packages provide the wire primitives, the schema model and
// its registry, the codec itself and the tooling around it.
package iibin

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var logout = zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: time.RFC3339,
}

// Logger is a globally available logger instance.
var Logger = zerolog.New(logout).
	With().Timestamp().Logger().
	Level(zerolog.InfoLevel)

// PromCollectors exposes the metric collectors of the packages so that an
// application can register them to the registerer of its choice.
var PromCollectors []prometheus.Collector
