package config

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/dshills/encstatus/internal/charset/detect"
	"github.com/dshills/encstatus/internal/lineending"
	"github.com/dshills/encstatus/internal/logging"
)

type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	s, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(s), nil
}

func load(t *testing.T, files memFS, opts ...Option) (*Config, error) {
	t.Helper()
	base := []Option{
		WithFS(files),
		WithUserConfigDir("/home/u/.config/encstatus"),
		WithEnv(false),
	}
	return Load(append(base, opts...)...)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, memFS{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	d := cfg.Detection
	if d.Detector != detect.StrategyUniversal {
		t.Errorf("Detector = %q, want %q", d.Detector, detect.StrategyUniversal)
	}
	if d.MaxBytes != 65536 || d.ChunkSize != 4096 {
		t.Errorf("MaxBytes, ChunkSize = %d, %d; want 65536, 4096", d.MaxBytes, d.ChunkSize)
	}
	if d.MinConfidence != 10 || d.DoneConfidence != 100 {
		t.Errorf("MinConfidence, DoneConfidence = %d, %d; want 10, 100", d.MinConfidence, d.DoneConfidence)
	}
	if d.AutodetectSet || !d.WarnMismatch || !d.DisableDiscouraged || d.PreferPlatformAlias {
		t.Errorf("unexpected default flags: %+v", d)
	}
	if d.LineScanLimit != 8192 {
		t.Errorf("LineScanLimit = %d, want 8192", d.LineScanLimit)
	}
	if cfg.Workspace.DefaultEncoding != "UTF-8" {
		t.Errorf("DefaultEncoding = %q, want UTF-8", cfg.Workspace.DefaultEncoding)
	}
	if cfg.Workspace.LineSeparatorKind() != lineending.LF {
		t.Errorf("LineSeparatorKind() = %v, want LF", cfg.Workspace.LineSeparatorKind())
	}
}

func TestLoad_Layers(t *testing.T) {
	files := memFS{
		"/home/u/.config/encstatus/config.toml": `
[detection]
detector = "multi"
max_bytes = 1000

[logging]
level = "debug"
`,
		"/w/.encstatus/config.toml": `
[detection]
max_bytes = 2000

[workspace]
default_encoding = "Shift_JIS"
line_separator = "CRLF"
`,
		"/etc/extra.yaml": `
detection:
  autodetect_set: true
content_types:
  - id: legacy
    patterns: ["*.legacy"]
    default_charset: windows-1252
`,
	}

	cfg, err := load(t, files, WithProjectConfigDir("/w"), WithFile("/etc/extra.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Detection.Detector != detect.StrategyMulti {
		t.Errorf("Detector = %q, want multi (user layer)", cfg.Detection.Detector)
	}
	if cfg.Detection.MaxBytes != 2000 {
		t.Errorf("MaxBytes = %d, want 2000 (project layer)", cfg.Detection.MaxBytes)
	}
	if !cfg.Detection.AutodetectSet {
		t.Error("AutodetectSet = false, want true (explicit file)")
	}
	if cfg.Detection.ChunkSize != 4096 {
		t.Errorf("ChunkSize = %d, want default 4096", cfg.Detection.ChunkSize)
	}
	if cfg.Workspace.DefaultEncoding != "Shift_JIS" {
		t.Errorf("DefaultEncoding = %q, want Shift_JIS", cfg.Workspace.DefaultEncoding)
	}
	if cfg.Workspace.LineSeparatorKind() != lineending.CRLF {
		t.Errorf("LineSeparatorKind() = %v, want CRLF", cfg.Workspace.LineSeparatorKind())
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}

	ct := cfg.Registry().Lookup("old.legacy")
	if ct.ID != "legacy" || ct.DefaultCharset != "windows-1252" {
		t.Errorf("Registry().Lookup(old.legacy) = %+v", ct)
	}
}

func TestLoad_EnvWins(t *testing.T) {
	t.Setenv("ENCSTATUSTEST_DETECTION_MAX_BYTES", "4242")
	t.Setenv("ENCSTATUSTEST_DETECTOR", "multi")

	files := memFS{"/w/.encstatus/config.toml": "[detection]\nmax_bytes = 10\n"}
	cfg, err := Load(
		WithFS(files),
		WithUserConfigDir(""),
		WithProjectConfigDir("/w"),
		WithEnvPrefix("ENCSTATUSTEST_"),
	)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Detection.MaxBytes != 4242 {
		t.Errorf("MaxBytes = %d, want 4242", cfg.Detection.MaxBytes)
	}
	if cfg.Detection.Detector != "multi" {
		t.Errorf("Detector = %q, want multi", cfg.Detection.Detector)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		files   memFS
		opts    []Option
		wantErr error
	}{
		{
			name:    "missing explicit file",
			files:   memFS{},
			opts:    []Option{WithFile("/nope.toml")},
			wantErr: ErrFileNotFound,
		},
		{
			name:    "bad detector",
			files:   memFS{"/c.toml": "[detection]\ndetector = \"icu4j\"\n"},
			opts:    []Option{WithFile("/c.toml")},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "bad encoding",
			files:   memFS{"/c.toml": "[workspace]\ndefault_encoding = \"klingon\"\n"},
			opts:    []Option{WithFile("/c.toml")},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "bad line separator",
			files:   memFS{"/c.toml": "[workspace]\nline_separator = \"Mixed\"\n"},
			opts:    []Option{WithFile("/c.toml")},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "type mismatch",
			files:   memFS{"/c.toml": "[detection]\nmax_bytes = \"lots\"\n"},
			opts:    []Option{WithFile("/c.toml")},
			wantErr: ErrTypeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.files, tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_ParseError(t *testing.T) {
	_, err := load(t, memFS{"/c.toml": "[detection\n"}, WithFile("/c.toml"))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Load() error = %T %v, want *ParseError", err, err)
	}
	if perr.Path != "/c.toml" {
		t.Errorf("ParseError.Path = %q, want /c.toml", perr.Path)
	}
}

func TestDetectionPolicy_NewDetector(t *testing.T) {
	p := DefaultDetectionPolicy()
	p.Detector = detect.StrategyMulti
	if got := p.NewDetector(logging.Null).Name(); got != detect.StrategyMulti {
		t.Errorf("NewDetector().Name() = %q, want %q", got, detect.StrategyMulti)
	}
	opts := p.DetectorOptions(nil)
	if opts.MaxBytes != p.MaxBytes || opts.MinConfidence != p.MinConfidence {
		t.Errorf("DetectorOptions() = %+v", opts)
	}
}

func TestConfig_NewLogger(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "warn"
	if got := cfg.NewLogger(nil).Level(); got != logging.LevelWarn {
		t.Errorf("NewLogger().Level() = %v, want %v", got, logging.LevelWarn)
	}
}
