package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Film      FilmConfig      `mapstructure:"film"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Encoder   EncoderConfig   `mapstructure:"encoder"`
	Output    OutputConfig    `mapstructure:"output"`
	Generator GeneratorConfig `mapstructure:"generator"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`     // json or text
	Output     string `mapstructure:"output"`     // stdout, stderr, or file path
	MaxSize    int    `mapstructure:"max_size"`   // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

type MetricsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	TextfilePath string `mapstructure:"textfile_path"` // Prometheus textfile written at exit
}

type FilmConfig struct {
	Seed       *uint64       `mapstructure:"seed"`        // nil picks a random seed
	ReplayPath string        `mapstructure:"replay_path"` // film file to replay
	ReplayKey  string        `mapstructure:"replay_key"`  // film key in Redis to replay
	Store      string        `mapstructure:"store"`       // file or redis
	Save       bool          `mapstructure:"save"`
	SaveDir    string        `mapstructure:"save_dir"`
	SavePrefix string        `mapstructure:"save_prefix"`
	TTL        time.Duration `mapstructure:"ttl"` // Redis expiry for saved films
}

type RedisConfig struct {
	Address      string        `mapstructure:"address"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	MaxRetries   int           `mapstructure:"max_retries"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

type EncoderConfig struct {
	Strict  bool `mapstructure:"strict"`   // overflow is an error instead of a masked warning
	CutNALU int  `mapstructure:"cut_nalu"` // NALU index to drop from output, -1 for none
}

type OutputConfig struct {
	AnnexBPath string     `mapstructure:"annexb_path"`
	AVCC       AVCCConfig `mapstructure:"avcc"`
	JSON       JSONConfig `mapstructure:"json"`
	RTP        RTPConfig  `mapstructure:"rtp"`
}

type AVCCConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"` // base path, suffixed with .avcc.extradata and .avcc.264
}

type JSONConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"` // syntax model of the encoded stream
}

type RTPConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	DumpPath         string `mapstructure:"dump_path"`
	MTU              int    `mapstructure:"mtu"`
	PayloadType      uint8  `mapstructure:"payload_type"`
	SSRC             uint32 `mapstructure:"ssrc"`
	ClockRate        uint32 `mapstructure:"clock_rate"`
	FrameRate        uint32 `mapstructure:"frame_rate"`
	InitialSequence  uint16 `mapstructure:"initial_sequence"`
	InitialTimestamp uint32 `mapstructure:"initial_timestamp"`
	SendAddr         string `mapstructure:"send_addr"` // host:port, empty disables sending
	PacketsPerSecond int    `mapstructure:"packets_per_second"`
	Burst            int    `mapstructure:"burst"`
}

// Load reads configuration from configPath, environment variables prefixed
// with NALFORGE, and defaults. An empty configPath skips the file.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Environment variable override
	v.SetEnvPrefix("NALFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Generator ranges are decoded over Go defaults; keys absent from the
	// file keep their default values.
	cfg := Config{Generator: DefaultGeneratorConfig()}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age", 30)

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.textfile_path", "nalforge.prom")

	// Film defaults
	v.SetDefault("film.store", "file")
	v.SetDefault("film.save", true)
	v.SetDefault("film.save_dir", ".")
	v.SetDefault("film.save_prefix", "nalforge")
	v.SetDefault("film.ttl", "168h")

	// Redis defaults
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("redis.key_prefix", "nalforge:")

	// Encoder defaults
	v.SetDefault("encoder.strict", false)
	v.SetDefault("encoder.cut_nalu", -1)

	// Output defaults
	v.SetDefault("output.annexb_path", "out.264")
	v.SetDefault("output.avcc.enabled", false)
	v.SetDefault("output.avcc.path", "out")
	v.SetDefault("output.json.enabled", false)
	v.SetDefault("output.json.path", "out.json")
	v.SetDefault("output.rtp.enabled", false)
	v.SetDefault("output.rtp.dump_path", "out.rtpdump")
	v.SetDefault("output.rtp.mtu", 1200)
	v.SetDefault("output.rtp.payload_type", 96)
	v.SetDefault("output.rtp.ssrc", 0x4E414C46)
	v.SetDefault("output.rtp.clock_rate", 90000)
	v.SetDefault("output.rtp.frame_rate", 30)
	v.SetDefault("output.rtp.initial_sequence", 0)
	v.SetDefault("output.rtp.initial_timestamp", 0)
	v.SetDefault("output.rtp.send_addr", "")
	v.SetDefault("output.rtp.packets_per_second", 1000)
	v.SetDefault("output.rtp.burst", 10)
}
