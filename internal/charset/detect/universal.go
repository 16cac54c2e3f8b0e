package detect

import (
	"bufio"
	"errors"
	"io"

	"github.com/gogs/chardet"

	"github.com/dshills/encstatus/internal/charset"
)

// Universal reads the source chunk by chunk and re-runs the detector over
// the growing prefix after each chunk, stopping as soon as the best guess
// reaches the done confidence or MaxBytes have been read.
type Universal struct {
	opts Options
	det  *chardet.Detector
}

// Name returns the strategy name.
func (u *Universal) Name() string { return StrategyUniversal }

// Detect implements Detector.
func (u *Universal) Detect(r io.Reader) string {
	if r == nil {
		return ""
	}
	br := bufio.NewReaderSize(r, u.opts.ChunkSize)
	buf := make([]byte, 0, u.opts.ChunkSize)
	chunk := make([]byte, u.opts.ChunkSize)

	var best *chardet.Result
	for len(buf) < u.opts.MaxBytes {
		want := u.opts.ChunkSize
		if rest := u.opts.MaxBytes - len(buf); rest < want {
			want = rest
		}
		n, err := io.ReadFull(br, chunk[:want])
		eof := errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
		if err != nil && !eof {
			u.opts.Logger.Warn("read failed after %d bytes: %v", len(buf)+n, err)
			return ""
		}
		buf = append(buf, chunk[:n]...)

		if n > 0 {
			if b := charset.DetectBOM(buf); b != charset.BOMNone {
				return u.opts.present(b.Encoding())
			}
			if !plain7Bit(buf) {
				if res, derr := u.det.DetectBest(buf); derr == nil {
					best = res
					if res.Confidence >= u.opts.DoneConfidence {
						break
					}
				}
			}
		}

		if eof {
			break
		}
	}

	if best == nil {
		return ""
	}
	return u.opts.resultName(*best)
}
