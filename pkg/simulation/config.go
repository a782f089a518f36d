package simulation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aquilax/go-perlin"
	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/behavior"
	"github.com/santhosh-tekuri/jsonschema/v5"
	golog "github.com/tochemey/goakt/v3/log"
	"go.uber.org/multierr"
)

//go:embed config.schema.json
var configSchema string

// ErrInvalidConfig is wrapped by every semantic configuration failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// NoiseConfig drives the Perlin field behind the wander and swirl forces.
type NoiseConfig struct {
	Enabled bool    `json:"enabled"`
	Alpha   float64 `json:"alpha"`   // weight when the sum is formed
	Beta    float64 `json:"beta"`    // harmonic scaling
	Octaves int32   `json:"octaves"` // number of iterations
}

type Config struct {
	// Word traced by the fixed boids.
	Word string `json:"word"`

	// Canvas size in pixels
	WorldWidth  int `json:"worldWidth"`
	WorldHeight int `json:"worldHeight"`

	// Clock
	TickRate         int `json:"tickRate"`         // simulation ticks per second
	MaxTicksPerFrame int `json:"maxTicksPerFrame"` // burst cap after a stall

	// Spatial index
	QuadtreeCapacity int     `json:"quadtreeCapacity"`
	NeighborRadius   float64 `json:"neighborRadius"`

	// Boid tuning
	MaxSpeed float64  `json:"maxSpeed"`
	MaxForce float64  `json:"maxForce"`
	Palette  []string `json:"palette"`

	// Workers > 1 splits the update loop across goroutines.
	Workers int `json:"workers"`
	// Seed makes runs reproducible; 0 picks a random seed.
	Seed uint64 `json:"seed"`

	DisplayAnchors bool        `json:"displayAnchors"`
	LogLevel       string      `json:"logLevel"`
	Noise          NoiseConfig `json:"noise"`
}

// MaxTickRate is the fastest simulation rate a Config accepts, in Hz.
const MaxTickRate = 1000

func DefaultConfig() *Config {
	return &Config{
		Word:             "EMERGE",
		WorldWidth:       1280,
		WorldHeight:      800,
		TickRate:         60,
		MaxTicksPerFrame: 5,
		QuadtreeCapacity: 8,
		NeighborRadius:   behavior.NeighborRadius,
		MaxSpeed:         3 * 1.5,
		MaxForce:         0.05 * 1.5,
		Palette:          append([]string(nil), behavior.DefaultPaletteHex...),
		Workers:          1,
		DisplayAnchors:   true,
		LogLevel:         "info",
		Noise: NoiseConfig{
			Enabled: true,
			Alpha:   2,
			Beta:    2,
			Octaves: 3,
		},
	}
}

// LoadConfig reads a JSON configuration file, validates it against the
// embedded schema and lays it over DefaultConfig, so a file only needs the
// keys it changes.
func LoadConfig(configFile string) (*Config, error) {
	f, err := os.Open(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()
	return ReadConfig(f)
}

// ReadConfig is LoadConfig over an arbitrary reader.
func ReadConfig(r io.Reader) (*Config, error) {
	// 1. Compile Schema
	sch, err := jsonschema.CompileString("config.schema.json", configSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read once, the bytes are decoded twice
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// 3. Validate
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal into Struct
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every rule the schema cannot express.
func (c *Config) Validate() error {
	var err error
	fail := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}
	if strings.TrimSpace(c.Word) == "" {
		fail("word is empty")
	}
	if c.WorldWidth <= 0 || c.WorldHeight <= 0 {
		fail("world size %dx%d must be positive", c.WorldWidth, c.WorldHeight)
	}
	if c.TickRate < 1 || c.TickRate > MaxTickRate {
		fail("tick rate %d must be in [1, %d]", c.TickRate, MaxTickRate)
	}
	if c.MaxTicksPerFrame < 1 {
		fail("max ticks per frame %d must be >= 1", c.MaxTicksPerFrame)
	}
	if c.QuadtreeCapacity < 1 {
		fail("quadtree capacity %d must be >= 1", c.QuadtreeCapacity)
	}
	if c.NeighborRadius < 0 {
		fail("neighbor radius %v must be >= 0", c.NeighborRadius)
	}
	if c.MaxSpeed <= 0 || c.MaxForce <= 0 {
		fail("max speed %v and max force %v must be > 0", c.MaxSpeed, c.MaxForce)
	}
	if c.Workers < 0 {
		fail("workers %d must be >= 0", c.Workers)
	}
	if _, perr := c.ParsedPalette(); perr != nil {
		fail("%v", perr)
	}
	if _, lerr := ParseLogLevel(c.LogLevel); lerr != nil {
		fail("%v", lerr)
	}
	return err
}

// ParsedPalette decodes the hex palette.
func (c *Config) ParsedPalette() ([]behavior.RGB, error) {
	if len(c.Palette) == 0 {
		return nil, errors.New("palette is empty")
	}
	out := make([]behavior.RGB, len(c.Palette))
	for i, h := range c.Palette {
		rgb, err := behavior.ParseHex(h)
		if err != nil {
			return nil, err
		}
		out[i] = rgb
	}
	return out, nil
}

// NewNoise builds the Perlin field, or returns nil when noise is disabled so
// boids fall back to the sinusoidal wander.
func (c *Config) NewNoise(seed int64) behavior.NoiseSource {
	if !c.Noise.Enabled {
		return nil
	}
	return perlin.NewPerlin(c.Noise.Alpha, c.Noise.Beta, c.Noise.Octaves, seed)
}

// ParseLogLevel maps a config level name to a goakt log level.
func ParseLogLevel(s string) (golog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return golog.DebugLevel, nil
	case "", "info":
		return golog.InfoLevel, nil
	case "warning", "warn":
		return golog.WarningLevel, nil
	case "error":
		return golog.ErrorLevel, nil
	}
	return golog.InvalidLevel, fmt.Errorf("unknown log level %q", s)
}
