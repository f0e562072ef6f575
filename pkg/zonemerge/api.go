package zonemerge

import (
	"io"
)

// Engine provides the main API for parsing and merging templates.
// Use New() to create a new engine instance.
type Engine struct {
	config *Config
	logger *Logger
}

// New creates a new engine that follows the global configuration and logger.
func New() *Engine {
	return &Engine{}
}

// NewWithConfig creates a new engine with a fixed configuration.
func NewWithConfig(config *Config) *Engine {
	return &Engine{
		config: NewConfigWithDefaults(config),
	}
}

// Config returns the engine's configuration.
func (e *Engine) Config() *Config {
	if e.config != nil {
		return e.config
	}
	return GetGlobalConfig()
}

// SetConfig updates the engine's configuration.
func (e *Engine) SetConfig(config *Config) {
	e.config = config
}

// Logger returns the logger used for engine diagnostics.
func (e *Engine) Logger() *Logger {
	if e.logger != nil {
		return e.logger
	}
	return GetLogger()
}

// Parse parses template text. See the package-level Parse.
func (e *Engine) Parse(text string) (*Template, error) {
	return parse(text, e.Logger())
}

// ParseFile reads and parses a template file, returning its format alongside.
// The file must fit within Config.MaxTemplateSize.
func (e *Engine) ParseFile(path string) (*Template, Format, error) {
	text, format, err := ReadTemplateFile(path, e.Config().MaxTemplateSize)
	if err != nil {
		return nil, "", err
	}
	tmpl, err := e.Parse(text)
	if err != nil {
		return nil, "", WithContext(err, "parse template", map[string]interface{}{"path": path})
	}
	return tmpl, format, nil
}

// Merge renders a template with the given input.
func (e *Engine) Merge(t *Template, in *MergeInput) (string, error) {
	return merge(t, in, e.Logger())
}

// ReadInput decodes and validates JSON merge data from r.
func (e *Engine) ReadInput(r io.Reader) (*MergeInput, error) {
	return readInput(r, e.Config().StrictMode, e.Logger())
}

// DecodeInput validates already-decoded merge data.
func (e *Engine) DecodeInput(v interface{}) (*MergeInput, error) {
	return decodeInput(v, e.Config().StrictMode, e.Logger())
}

// ReadInputFile loads merge data from a .json, .yaml or .yml file.
func (e *Engine) ReadInputFile(path string) (*MergeInput, error) {
	raw, err := readInputFile(path)
	if err != nil {
		return nil, err
	}
	return e.DecodeInput(raw)
}

// NewMerger returns a staged merge session for the given output format.
func (e *Engine) NewMerger(format Format) *TextMerger {
	return &TextMerger{engine: e, format: format}
}

// Close releases any resources held by the engine.
func (e *Engine) Close() error {
	return nil
}

// Option represents a configuration option for the engine.
type Option func(*Engine)

// WithConfig returns an option that sets the engine configuration.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		e.config = NewConfigWithDefaults(config)
	}
}

// WithLogger returns an option that routes engine diagnostics to logger.
func WithLogger(logger *Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithWorkers returns an option that sets batch parallelism.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.ownConfig().Workers = n
	}
}

// WithStrictMode returns an option that rejects unknown input fields.
func WithStrictMode(strict bool) Option {
	return func(e *Engine) {
		e.ownConfig().StrictMode = strict
	}
}

// ownConfig detaches the engine from the global configuration so options can
// modify it.
func (e *Engine) ownConfig() *Config {
	if e.config == nil {
		e.config = GetGlobalConfig()
	}
	return e.config
}

// NewWithOptions creates a new engine with the specified options.
func NewWithOptions(opts ...Option) *Engine {
	engine := New()
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// DefaultEngine is the global default engine instance.
// It uses the global configuration and logger.
var DefaultEngine = New()

// ParseFile reads and parses a template file using the default engine.
func ParseFile(path string) (*Template, Format, error) {
	return DefaultEngine.ParseFile(path)
}

// ReadInputFile loads merge data from a file using the default engine.
func ReadInputFile(path string) (*MergeInput, error) {
	return DefaultEngine.ReadInputFile(path)
}
