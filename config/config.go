// Package config layers built-in defaults, an optional YAML file and
// TESTCONSOLE_* environment variables into the console settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/safermobility/testconsole/invite"
	"github.com/safermobility/testconsole/sdp"
	"github.com/safermobility/testconsole/snapshot"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"
)

const (
	EnvPrefix = "TESTCONSOLE"
	FileName  = ".testconsole"
)

type Parser struct {
	DefaultChannelState string `mapstructure:"default_channel_state"`
	DefaultCodecs       []int  `mapstructure:"default_codecs"`
	CodecBackfill       bool   `mapstructure:"codec_backfill"`
}

type Generator struct {
	ConnectionLine    bool `mapstructure:"connection_line"`
	StandardRtpmap    bool `mapstructure:"standard_rtpmap"`
	WireProtocol      bool `mapstructure:"wire_protocol"`
	InactiveDirection bool `mapstructure:"inactive_direction"`
	RequestURIUser    bool `mapstructure:"request_uri_user"`
}

type Snapshot struct {
	Backend       string `mapstructure:"backend"`
	Path          string `mapstructure:"path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisKey      string `mapstructure:"redis_key"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Tester is one entry of the `testers` list.
type Tester struct {
	Kind     string `mapstructure:"kind"`
	Name     string `mapstructure:"name"`
	Endpoint string `mapstructure:"endpoint"`
}

type Config struct {
	Parser    Parser    `mapstructure:"parser"`
	Generator Generator `mapstructure:"generator"`
	Snapshot  Snapshot  `mapstructure:"snapshot"`
	Log       Log       `mapstructure:"log"`
	Testers   []Tester  `mapstructure:"testers"`
}

// SetDefaults registers every key, which also makes each one visible to
// AutomaticEnv during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("parser.default_channel_state", string(sdp.StateSendAndReceive))
	v.SetDefault("parser.default_codecs", sdp.DefaultCodecs)
	v.SetDefault("parser.codec_backfill", true)

	v.SetDefault("generator.connection_line", true)
	v.SetDefault("generator.standard_rtpmap", false)
	v.SetDefault("generator.wire_protocol", false)
	v.SetDefault("generator.inactive_direction", false)
	v.SetDefault("generator.request_uri_user", false)

	v.SetDefault("snapshot.backend", snapshot.BackendFile)
	v.SetDefault("snapshot.path", "")
	v.SetDefault("snapshot.redis_addr", "localhost:6379")
	v.SetDefault("snapshot.redis_password", "")
	v.SetDefault("snapshot.redis_db", 0)
	v.SetDefault("snapshot.redis_key", snapshot.DefaultRedisKey)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads file if given, otherwise looks for .testconsole.yaml in the
// working directory and then the home directory. A missing file is only an
// error when it was named explicitly.
func Load(v *viper.Viper, file string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &c, nil
}

func (c *Config) ProcessorOptions(logger *slog.Logger) []invite.Option {
	opts := []invite.Option{
		invite.WithDefaultChannelState(sdp.ChannelState(strings.ToUpper(c.Parser.DefaultChannelState))),
		invite.WithConnectionLine(c.Generator.ConnectionLine),
		invite.WithStandardRtpmap(c.Generator.StandardRtpmap),
		invite.WithWireProtocol(c.Generator.WireProtocol),
		invite.WithInactiveDirection(c.Generator.InactiveDirection),
		invite.WithRequestURIUser(c.Generator.RequestURIUser),
		invite.WithGroupLogger(logger, "invite"),
	}
	if c.Parser.CodecBackfill {
		opts = append(opts, invite.WithDefaultCodecs(c.Parser.DefaultCodecs...))
	} else {
		opts = append(opts, invite.WithoutCodecBackfill())
	}
	return opts
}

func (c *Config) NewProcessor(logger *slog.Logger) (*invite.Processor, error) {
	return invite.NewProcessor(c.ProcessorOptions(logger)...)
}

func (c *Config) SnapshotConfig() snapshot.Config {
	return snapshot.Config{
		Backend:       strings.ToLower(c.Snapshot.Backend),
		Path:          c.Snapshot.Path,
		RedisAddr:     c.Snapshot.RedisAddr,
		RedisPassword: c.Snapshot.RedisPassword,
		RedisDB:       c.Snapshot.RedisDB,
		RedisKey:      c.Snapshot.RedisKey,
	}
}
