package detect

import (
	"io"

	"github.com/gogs/chardet"

	"github.com/dshills/encstatus/internal/charset"
)

// Multi reads the whole bounded prefix and walks every candidate chardet
// reports, best first, returning the first one with a usable codec.
type Multi struct {
	opts Options
	det  *chardet.Detector
}

// Name returns the strategy name.
func (m *Multi) Name() string { return StrategyMulti }

// Detect implements Detector.
func (m *Multi) Detect(r io.Reader) string {
	if r == nil {
		return ""
	}
	buf, err := io.ReadAll(io.LimitReader(r, int64(m.opts.MaxBytes)))
	if err != nil {
		m.opts.Logger.Warn("read failed after %d bytes: %v", len(buf), err)
		return ""
	}
	if b := charset.DetectBOM(buf); b != charset.BOMNone {
		return m.opts.present(b.Encoding())
	}
	if len(buf) == 0 || plain7Bit(buf) {
		return ""
	}

	results, err := m.det.DetectAll(buf)
	if err != nil {
		return ""
	}
	for _, res := range results {
		if name := m.opts.resultName(res); name != "" {
			return name
		}
	}
	return ""
}

// Candidates returns every supported guess for b, best first, with its
// confidence.
func (m *Multi) Candidates(b []byte) []Candidate {
	if len(b) > m.opts.MaxBytes {
		b = b[:m.opts.MaxBytes]
	}
	results, err := m.det.DetectAll(b)
	if err != nil {
		return nil
	}
	var out []Candidate
	for _, res := range results {
		if name := m.opts.resultName(res); name != "" {
			out = append(out, Candidate{Charset: name, Language: res.Language, Confidence: res.Confidence})
		}
	}
	return out
}

// Candidate is one guess of the multi-candidate strategy.
type Candidate struct {
	Charset    string
	Language   string
	Confidence int
}
