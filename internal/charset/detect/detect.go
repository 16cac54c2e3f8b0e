// Package detect guesses the charset of raw bytes.
//
// Detection is best effort: every strategy returns "" when it has no
// confident answer or the source fails, and callers treat "" as
// "uncertain" rather than as an error.
package detect

import (
	"bytes"
	"io"
	"strings"

	"github.com/gogs/chardet"

	"github.com/dshills/encstatus/internal/charset"
	"github.com/dshills/encstatus/internal/logging"
)

// Strategy names accepted by New.
const (
	StrategyUniversal = "universal"
	StrategyMulti     = "multi"
)

// Default tuning values.
const (
	DefaultMaxBytes       = 64 * 1024
	DefaultChunkSize      = 4096
	DefaultMinConfidence  = 10
	DefaultDoneConfidence = 100
)

// Detector guesses the canonical charset of the bytes read from r.
type Detector interface {
	Detect(r io.Reader) string
	Name() string
}

// Func adapts a function to the Detector interface.
type Func func(r io.Reader) string

// Detect calls f(r).
func (f Func) Detect(r io.Reader) string { return f(r) }

// Name returns "func".
func (f Func) Name() string { return "func" }

// Options configures a detector.
type Options struct {
	// Strategy selects the algorithm: StrategyUniversal or StrategyMulti.
	Strategy string
	// MaxBytes bounds how much of the source is read.
	MaxBytes int
	// ChunkSize is the read size of the streaming strategy.
	ChunkSize int
	// MinConfidence is the lowest chardet confidence (0-100) accepted.
	MinConfidence int
	// DoneConfidence stops the streaming strategy early.
	DoneConfidence int
	// PreferPlatformAlias reports vendor aliases such as MS932 instead of
	// canonical names.
	PreferPlatformAlias bool
	// Logger receives read failures. Defaults to logging.Default().
	Logger *logging.Logger
}

// DefaultOptions returns the universal strategy with default tuning.
func DefaultOptions() Options {
	return Options{
		Strategy:       StrategyUniversal,
		MaxBytes:       DefaultMaxBytes,
		ChunkSize:      DefaultChunkSize,
		MinConfidence:  DefaultMinConfidence,
		DoneConfidence: DefaultDoneConfidence,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Strategy == "" {
		o.Strategy = d.Strategy
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = d.MaxBytes
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = d.ChunkSize
	}
	if o.ChunkSize > o.MaxBytes {
		o.ChunkSize = o.MaxBytes
	}
	if o.MinConfidence <= 0 {
		o.MinConfidence = d.MinConfidence
	}
	if o.DoneConfidence <= 0 {
		o.DoneConfidence = d.DoneConfidence
	}
	o.Logger = logging.OrDefault(o.Logger).WithComponent("detect")
	return o
}

// New returns the detector selected by opts.Strategy. Unknown strategies
// fall back to the universal detector.
func New(opts Options) Detector {
	opts = opts.withDefaults()
	switch strings.ToLower(opts.Strategy) {
	case StrategyMulti:
		return &Multi{opts: opts, det: chardet.NewTextDetector()}
	case StrategyUniversal:
	default:
		opts.Logger.Info("unknown detector strategy %q, using %s", opts.Strategy, StrategyUniversal)
	}
	return &Universal{opts: opts, det: chardet.NewTextDetector()}
}

// DetectBytes runs d over b.
func DetectBytes(d Detector, b []byte) string {
	return d.Detect(bytes.NewReader(b))
}

// plain7Bit reports whether b carries no evidence beyond 7-bit ASCII. Escape
// and NUL bytes count as evidence because ISO-2022 and unmarked UTF-16 stay
// below 0x80.
func plain7Bit(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 || c == 0x1B || c == 0x00 {
			return false
		}
	}
	return true
}

// resultName canonicalizes a chardet result, or returns "" when the charset
// has no codec here.
func (o Options) resultName(r chardet.Result) string {
	if r.Confidence < o.MinConfidence {
		return ""
	}
	c, err := charset.Canonicalize(r.Charset)
	if err != nil || !charset.Supported(c) {
		return ""
	}
	return o.present(c)
}

func (o Options) present(name string) string {
	if o.PreferPlatformAlias {
		return charset.PlatformAlias(name)
	}
	return name
}
