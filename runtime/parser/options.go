package parser

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Option represents a parser configuration option.
type Option func(*Parser)

// TelemetryMode controls telemetry collection (production-safe).
type TelemetryMode int

const (
	TelemetryOff    TelemetryMode = iota // Zero overhead (default)
	TelemetryBasic                       // Counters only
	TelemetryTiming                      // Counters + wall-clock time
)

// WithCache plugs in a memoization cache.
func WithCache(c Cache) Option {
	return func(p *Parser) {
		p.cache = c
	}
}

// WithPackratCache plugs in the brute-force reference cache sized to the
// parser's input.
func WithPackratCache() Option {
	return func(p *Parser) {
		p.cache = NewPackratCache(p.buf.Len())
	}
}

// WithTrace enables detailed engine tracing (rule and element granularity)
// at debug level on the given logger.
func WithTrace(l *logrus.Logger) Option {
	return func(p *Parser) {
		p.trace = l
	}
}

// WithNTTrace enables coarse tracing of non-terminal entry and exit only.
func WithNTTrace(l *logrus.Logger) Option {
	return func(p *Parser) {
		p.ntTrace = l
	}
}

// WithTelemetryBasic enables basic telemetry (counters only).
func WithTelemetryBasic() Option {
	return func(p *Parser) {
		p.telemetry = &Telemetry{mode: TelemetryBasic}
	}
}

// WithTelemetryTiming enables timing telemetry (counters + wall-clock).
func WithTelemetryTiming() Option {
	return func(p *Parser) {
		p.telemetry = &Telemetry{mode: TelemetryTiming}
	}
}

// Telemetry holds parse performance metrics (nil when disabled).
type Telemetry struct {
	mode TelemetryMode

	NTCount     int           // Non-terminal parse attempts
	CacheHits   int           // Cache replays (success or fail)
	CacheMisses int           // Cache queries that had to parse
	MaxDepth    int           // Deepest non-terminal nesting
	ParseTime   time.Duration // Total wall-clock time (TelemetryTiming)
}

// Telemetry returns the collected metrics, or nil when disabled.
func (p *Parser) Telemetry() *Telemetry { return p.telemetry }
