package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/dshills/encstatus/internal/charset"
	"github.com/dshills/encstatus/internal/charset/detect"
	"github.com/dshills/encstatus/internal/config/loader"
	"github.com/dshills/encstatus/internal/contenttype"
	"github.com/dshills/encstatus/internal/lineending"
	"github.com/dshills/encstatus/internal/logging"
)

// Config is the complete encstatus configuration.
type Config struct {
	Detection    DetectionPolicy     `mapstructure:"detection"`
	Workspace    WorkspaceConfig     `mapstructure:"workspace"`
	ContentTypes []ContentTypeConfig `mapstructure:"content_types"`
	Logging      LoggingConfig       `mapstructure:"logging"`
}

// DetectionPolicy carries the detection tuning and the preference flags that
// gate automatic behavior. It is passed to documents explicitly.
type DetectionPolicy struct {
	// Detector selects the detection strategy: "universal" or "multi".
	Detector string `mapstructure:"detector"`
	// MaxBytes bounds the prefix read for detection.
	MaxBytes int `mapstructure:"max_bytes"`
	// ChunkSize is the read size of the streaming detector.
	ChunkSize int `mapstructure:"chunk_size"`
	// MinConfidence is the lowest accepted confidence, 0-100.
	MinConfidence int `mapstructure:"min_confidence"`
	// DoneConfidence stops streaming detection early, 0-100.
	DoneConfidence int `mapstructure:"done_confidence"`
	// AutodetectSet applies the detected charset to documents that have no
	// explicit or declared encoding and mismatch.
	AutodetectSet bool `mapstructure:"autodetect_set"`
	// WarnMismatch asks the host to flag documents whose detected charset
	// differs from the current encoding.
	WarnMismatch bool `mapstructure:"warn_mismatch"`
	// DisableDiscouraged asks the host to disable conversions and BOM
	// additions that are likely to damage content.
	DisableDiscouraged bool `mapstructure:"disable_discouraged"`
	// PreferPlatformAlias reports detected charsets under vendor aliases.
	PreferPlatformAlias bool `mapstructure:"prefer_platform_alias"`
	// LineScanLimit caps line separator classification, in characters.
	LineScanLimit int `mapstructure:"line_scan_limit"`
}

// WorkspaceConfig holds workspace-wide defaults.
type WorkspaceConfig struct {
	DefaultEncoding string `mapstructure:"default_encoding"`
	LineSeparator   string `mapstructure:"line_separator"`
}

// ContentTypeConfig extends the content type registry.
type ContentTypeConfig struct {
	ID             string   `mapstructure:"id"`
	Patterns       []string `mapstructure:"patterns"`
	DefaultCharset string   `mapstructure:"default_charset"`
	Format         string   `mapstructure:"format"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Detection: DefaultDetectionPolicy(),
		Workspace: WorkspaceConfig{
			DefaultEncoding: charset.UTF8,
			LineSeparator:   lineending.LF.String(),
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// DefaultDetectionPolicy returns the default detection policy.
func DefaultDetectionPolicy() DetectionPolicy {
	return DetectionPolicy{
		Detector:           detect.StrategyUniversal,
		MaxBytes:           detect.DefaultMaxBytes,
		ChunkSize:          detect.DefaultChunkSize,
		MinConfidence:      detect.DefaultMinConfidence,
		DoneConfidence:     detect.DefaultDoneConfidence,
		WarnMismatch:       true,
		DisableDiscouraged: true,
		LineScanLimit:      lineending.DefaultScanLimit,
	}
}

// DetectorOptions converts the policy into detector options.
func (p DetectionPolicy) DetectorOptions(logger *logging.Logger) detect.Options {
	return detect.Options{
		Strategy:            p.Detector,
		MaxBytes:            p.MaxBytes,
		ChunkSize:           p.ChunkSize,
		MinConfidence:       p.MinConfidence,
		DoneConfidence:      p.DoneConfidence,
		PreferPlatformAlias: p.PreferPlatformAlias,
		Logger:              logger,
	}
}

// NewDetector builds the detector the policy selects.
func (p DetectionPolicy) NewDetector(logger *logging.Logger) detect.Detector {
	return detect.New(p.DetectorOptions(logger))
}

// LineSeparatorKind returns the parsed workspace line separator, LF when it
// is unset or invalid.
func (w WorkspaceConfig) LineSeparatorKind() lineending.Kind {
	k, err := lineending.Parse(w.LineSeparator)
	if err != nil {
		return lineending.LF
	}
	return k
}

// Registry returns the built-in content types extended by the configured
// ones.
func (c *Config) Registry() *contenttype.Registry {
	r := contenttype.NewRegistry()
	for _, ct := range c.ContentTypes {
		r.Add(contenttype.ContentType{
			ID:             ct.ID,
			Patterns:       ct.Patterns,
			DefaultCharset: ct.DefaultCharset,
			Format:         ct.Format,
		})
	}
	return r
}

// NewLogger builds a logger at the configured level writing to w.
func (c *Config) NewLogger(w io.Writer) *logging.Logger {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.Logging.Level)
	if w != nil {
		cfg.Output = w
	}
	return logging.New(cfg)
}

// Validate checks the configuration for values no component can use.
func (c *Config) Validate() error {
	d := c.Detection
	switch strings.ToLower(d.Detector) {
	case detect.StrategyUniversal, detect.StrategyMulti:
	default:
		return &SettingError{Key: "detection.detector", Reason: "must be universal or multi", Value: d.Detector}
	}
	if d.MaxBytes <= 0 {
		return &SettingError{Key: "detection.max_bytes", Reason: "must be positive", Value: d.MaxBytes}
	}
	if d.ChunkSize <= 0 {
		return &SettingError{Key: "detection.chunk_size", Reason: "must be positive", Value: d.ChunkSize}
	}
	if d.MinConfidence < 0 || d.MinConfidence > 100 {
		return &SettingError{Key: "detection.min_confidence", Reason: "must be within 0-100", Value: d.MinConfidence}
	}
	if d.DoneConfidence < 0 || d.DoneConfidence > 100 {
		return &SettingError{Key: "detection.done_confidence", Reason: "must be within 0-100", Value: d.DoneConfidence}
	}
	if d.LineScanLimit <= 0 {
		return &SettingError{Key: "detection.line_scan_limit", Reason: "must be positive", Value: d.LineScanLimit}
	}
	if _, err := charset.Canonicalize(c.Workspace.DefaultEncoding); err != nil {
		return &SettingError{Key: "workspace.default_encoding", Reason: "unknown charset", Value: c.Workspace.DefaultEncoding}
	}
	if k, err := lineending.Parse(c.Workspace.LineSeparator); err != nil || !k.IsConcrete() {
		return &SettingError{Key: "workspace.line_separator", Reason: "must be CRLF, CR or LF", Value: c.Workspace.LineSeparator}
	}
	for i, ct := range c.ContentTypes {
		if ct.ID == "" {
			return &SettingError{Key: fmt.Sprintf("content_types[%d].id", i), Reason: "must not be empty", Value: ct.ID}
		}
		if ct.DefaultCharset != "" && !charset.Supported(ct.DefaultCharset) {
			return &SettingError{Key: fmt.Sprintf("content_types[%d].default_charset", i), Reason: "unknown charset", Value: ct.DefaultCharset}
		}
	}
	return nil
}

// ConfigFileName is the project configuration file, relative to a
// workspace root.
const ConfigFileName = ".encstatus/config.toml"

// Option configures Load.
type Option func(*options)

type options struct {
	fs         loader.FileSystem
	userDir    string
	projectDir string
	file       string
	envPrefix  string
	useEnv     bool
}

// WithFS sets the file system configuration files are read from.
func WithFS(fsys loader.FileSystem) Option {
	return func(o *options) { o.fs = fsys }
}

// WithUserConfigDir sets the user configuration directory.
func WithUserConfigDir(dir string) Option {
	return func(o *options) { o.userDir = dir }
}

// WithProjectConfigDir sets the workspace root whose ConfigFileName is read.
func WithProjectConfigDir(dir string) Option {
	return func(o *options) { o.projectDir = dir }
}

// WithFile adds an explicit configuration file, read after the user and
// project files. Its format follows its extension.
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// WithEnv enables or disables the environment layer.
func WithEnv(enable bool) Option {
	return func(o *options) { o.useEnv = enable }
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) { o.envPrefix = prefix }
}

// Load reads the configuration layers in increasing precedence: built-in
// defaults, user file, project file, explicit file, environment.
func Load(opts ...Option) (*Config, error) {
	o := options{
		fs:        loader.DefaultFS(),
		userDir:   defaultUserConfigDir(),
		envPrefix: loader.DefaultEnvPrefix,
		useEnv:    true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var files []string
	if o.userDir != "" {
		files = append(files, filepath.Join(o.userDir, "config.toml"), filepath.Join(o.userDir, "config.yaml"))
	}
	if o.projectDir != "" {
		files = append(files, filepath.Join(o.projectDir, ConfigFileName))
	}

	merged := make(map[string]any)
	for _, path := range files {
		m, err := loader.NewFile(o.fs, path).Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, m)
	}
	if o.file != "" {
		m, err := loader.NewFile(o.fs, o.file).Load()
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, o.file)
		}
		merged = loader.DeepMerge(merged, m)
	}
	if o.useEnv {
		m, err := loader.NewEnvLoader(o.envPrefix).Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, m)
	}

	cfg := Default()
	if err := Decode(merged, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode applies a settings map on top of cfg. Keys absent from m keep the
// values already in cfg.
func Decode(m map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(m); err != nil {
		return fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	return nil
}

// defaultUserConfigDir returns the default user configuration directory.
func defaultUserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "encstatus")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "encstatus")
}
