package logging

import (
	"io"
	"log"
	"os"
	"strings"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup points the standard logger at stderr and, when addr is set, mirrors
// every line to Logstash. The returned closer flushes the shipper.
func Setup(addr string) (io.Closer, error) {
	log.SetFlags(log.LstdFlags | log.LUTC)
	if strings.TrimSpace(addr) == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	shipper, err := NewLogstashWriter(addr)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stderr, shipper))
	log.Printf("logging: shipping to logstash at %s", addr)
	return shipper, nil
}
