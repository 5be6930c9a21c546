// Package config holds the runtime configuration of the renderer and its TOML representation.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-dx/common"
	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11"
	"github.com/Carmen-Shannon/oxy-dx/engine/renderer/shader"
)

// ErrInvalid is matched by every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the complete configuration of one run.
type Config struct {
	Window    WindowConfig    `toml:"window"`
	Device    DeviceConfig    `toml:"device"`
	SwapChain SwapChainConfig `toml:"swap_chain"`
	Shader    ShaderConfig    `toml:"shader"`
	Frame     FrameConfig     `toml:"frame"`
	Log       LogConfig       `toml:"log"`
}

// WindowConfig configures the native window.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// DeviceConfig configures device creation.
type DeviceConfig struct {
	// DriverTypes are tried in order until one produces a device.
	DriverTypes []d3d11.DriverType `toml:"driver_types"`

	// FeatureLevels are requested from every driver type.
	FeatureLevels []d3d11.FeatureLevel `toml:"feature_levels"`

	// Debug enables the driver debug layer.
	Debug bool `toml:"debug"`
}

// SwapChainConfig configures the presentation surface.
type SwapChainConfig struct {
	BufferCount        uint32           `toml:"buffer_count"`
	SwapEffect         d3d11.SwapEffect `toml:"swap_effect"`
	RefreshNumerator   uint32           `toml:"refresh_numerator"`
	RefreshDenominator uint32           `toml:"refresh_denominator"`

	// SyncInterval is passed to every Present: 0 presents immediately, 1..4 waits for that many vertical blanks.
	SyncInterval uint32 `toml:"sync_interval"`
}

// ShaderConfig names the HLSL file and entry points compiled at startup.
type ShaderConfig struct {
	Path         string `toml:"path"`
	VertexEntry  string `toml:"vertex_entry"`
	VertexTarget string `toml:"vertex_target"`
	PixelEntry   string `toml:"pixel_entry"`
	PixelTarget  string `toml:"pixel_target"`
}

// FrameConfig describes what every frame draws.
type FrameConfig struct {
	ClearColor [4]float32   `toml:"clear_color"`
	Vertices   [][3]float32 `toml:"vertices"`

	// Profile logs frame rate and memory statistics once per second.
	Profile bool `toml:"profile"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration of the stock triangle: a 1280x720 window titled "Dx",
// hardware then WARP then reference drivers at feature level 11_0, a two buffer
// flip-sequential swap chain at 60/1 presenting with sync interval 1, shader.fx compiled at
// vsmain/vs_5_0 and psmain/ps_5_0, and a green clear color.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	vertices := make([][3]float32, len(common.TriangleVertices))
	for i, v := range common.TriangleVertices {
		vertices[i] = [3]float32(v)
	}
	src := shader.DefaultProgramSource
	return Config{
		Window: WindowConfig{
			Title:  "Dx",
			Width:  1280,
			Height: 720,
		},
		Device: DeviceConfig{
			DriverTypes:   append([]d3d11.DriverType(nil), d3d11.DefaultDriverTypes...),
			FeatureLevels: append([]d3d11.FeatureLevel(nil), d3d11.DefaultFeatureLevels...),
		},
		SwapChain: SwapChainConfig{
			BufferCount:        2,
			SwapEffect:         d3d11.SwapEffectFlipSequential,
			RefreshNumerator:   60,
			RefreshDenominator: 1,
			SyncInterval:       1,
		},
		Shader: ShaderConfig{
			Path:         src.Path,
			VertexEntry:  src.VertexEntry,
			VertexTarget: src.VertexTarget,
			PixelEntry:   src.PixelEntry,
			PixelTarget:  src.PixelTarget,
		},
		Frame: FrameConfig{
			ClearColor: [4]float32(common.ClearGreen),
			Vertices:   vertices,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the TOML file at path over the defaults, so the file only needs the keys it changes.
// The result is validated.
//
// Parameters:
//   - path: the TOML file
//
// Returns:
//   - Config: the loaded configuration
//   - error: error if the file cannot be read or decoded, or fails validation
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults and validates the result.
// Unknown keys are rejected so typos do not silently fall back to defaults.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the decoded configuration
//   - error: error if decoding or validation fails
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Config{}, fmt.Errorf("decode at line %d column %d: %w", row, col, err)
		}
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal encodes the configuration as TOML.
//
// Returns:
//   - []byte: the TOML document
//   - error: error if encoding fails
func (c Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Validate reports every inconsistent setting at once.
//
// Returns:
//   - error: nil, or an error matching ErrInvalid listing each problem
func (c Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		add("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if len(c.Device.DriverTypes) == 0 {
		add("device.driver_types is empty")
	}
	if len(c.Device.FeatureLevels) == 0 {
		add("device.feature_levels is empty")
	}
	sc := c.SwapChain
	if sc.BufferCount < 1 || sc.BufferCount > 16 {
		add("swap_chain.buffer_count %d outside 1..16", sc.BufferCount)
	}
	if sc.SwapEffect.IsFlip() && sc.BufferCount < 2 {
		add("swap_chain.swap_effect %s needs buffer_count >= 2", sc.SwapEffect)
	}
	if sc.RefreshDenominator == 0 {
		add("swap_chain.refresh_denominator is zero")
	}
	if sc.SyncInterval > 4 {
		add("swap_chain.sync_interval %d outside 0..4", sc.SyncInterval)
	}
	if c.Shader.Path == "" {
		add("shader.path is empty")
	}
	if !strings.HasPrefix(c.Shader.VertexTarget, "vs_") {
		add("shader.vertex_target %q is not a vs_* profile", c.Shader.VertexTarget)
	}
	if !strings.HasPrefix(c.Shader.PixelTarget, "ps_") {
		add("shader.pixel_target %q is not a ps_* profile", c.Shader.PixelTarget)
	}
	if c.Shader.VertexEntry == "" || c.Shader.PixelEntry == "" {
		add("shader entry points must be set")
	}
	if n := len(c.Frame.Vertices); n == 0 || n%3 != 0 {
		add("frame.vertices has %d entries, need a positive multiple of 3", n)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		add("log.level: %v", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		add("log.format %q is neither text nor json", c.Log.Format)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// VertexData returns the frame vertices as engine vertices.
//
// Returns:
//   - []common.Vertex: the vertex positions
func (c Config) VertexData() []common.Vertex {
	out := make([]common.Vertex, len(c.Frame.Vertices))
	for i, v := range c.Frame.Vertices {
		out[i] = common.Vertex(v)
	}
	return out
}

// ProgramSource returns the shader section as a shader.ProgramSource.
//
// Returns:
//   - shader.ProgramSource: the source file and entry points
func (c Config) ProgramSource() shader.ProgramSource {
	return shader.ProgramSource{
		Path:         c.Shader.Path,
		VertexEntry:  c.Shader.VertexEntry,
		VertexTarget: c.Shader.VertexTarget,
		PixelEntry:   c.Shader.PixelEntry,
		PixelTarget:  c.Shader.PixelTarget,
	}
}

// Overrides are command line values layered over a loaded configuration. Zero fields keep the
// configured value.
type Overrides struct {
	Title        string
	ShaderPath   string
	LogLevel     string
	SyncInterval *uint32
	DriverTypes  []d3d11.DriverType
	Debug        bool
	Profile      bool
}

// Apply layers o over c and validates the result.
//
// Parameters:
//   - o: the overrides
//
// Returns:
//   - Config: the merged configuration
//   - error: error matching ErrInvalid if the merged configuration is inconsistent
func (c Config) Apply(o Overrides) (Config, error) {
	c.Window.Title = common.Coalesce(o.Title, c.Window.Title)
	c.Shader.Path = common.Coalesce(o.ShaderPath, c.Shader.Path)
	c.Log.Level = common.Coalesce(o.LogLevel, c.Log.Level)
	c.SwapChain.SyncInterval = *common.Coalesce(o.SyncInterval, &c.SwapChain.SyncInterval)
	if len(o.DriverTypes) > 0 {
		c.Device.DriverTypes = append([]d3d11.DriverType(nil), o.DriverTypes...)
	}
	c.Device.Debug = c.Device.Debug || o.Debug
	c.Frame.Profile = c.Frame.Profile || o.Profile
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// ConfigureLogger applies the log section to logger.
//
// Parameters:
//   - logger: the logger to configure
//
// Returns:
//   - error: error if the level cannot be parsed
func (c Config) ConfigureLogger(logger *logrus.Logger) error {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	switch c.Log.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
