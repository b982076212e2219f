package codec

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.dedis.ch/iibin"
)

// defines prometheus metrics
var (
	promEncoded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iibin_codec_encoded_messages_total",
		Help: "total number of messages encoded",
	}, []string{"schema"})

	promDecoded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iibin_codec_decoded_messages_total",
		Help: "total number of messages decoded",
	}, []string{"schema"})

	promErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iibin_codec_errors_total",
		Help: "total number of failed operations",
	}, []string{"operation", "kind"})

	promSize = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "iibin_codec_message_bytes",
		Help:    "size of the encoded or decoded messages",
		Buckets: prometheus.ExponentialBuckets(16, 4, 8),
	}, []string{"operation"})
)

const (
	opEncode = "encode"
	opDecode = "decode"
)

func init() {
	iibin.PromCollectors = append(iibin.PromCollectors,
		promEncoded, promDecoded, promErrors, promSize)
}

func observe(op, name string, size int, err error) {
	if err != nil {
		promErrors.WithLabelValues(op, iibin.KindOf(err).String()).Inc()
		return
	}

	switch op {
	case opEncode:
		promEncoded.WithLabelValues(name).Inc()
	case opDecode:
		promDecoded.WithLabelValues(name).Inc()
	}

	promSize.WithLabelValues(op).Observe(float64(size))
}
