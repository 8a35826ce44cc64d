package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported values of appconfig.location
const (
	LocationAppConfig = "appconfig"
	LocationFile      = "file"
)

// Settings 进程级配置，来自 config.yaml、.env 和 REDACTPROXY_ 环境变量
type Settings struct {
	Log        LogSettings        `mapstructure:"log"`
	Server     ServerSettings     `mapstructure:"server"`
	Downstream DownstreamSettings `mapstructure:"downstream"`
	AppConfig  AppConfigSettings  `mapstructure:"appconfig"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerSettings struct {
	Host         string            `mapstructure:"host"`
	Port         int               `mapstructure:"port"`
	ReadTimeout  time.Duration     `mapstructure:"read_timeout"`
	WriteTimeout time.Duration     `mapstructure:"write_timeout"`
	HealthPath   string            `mapstructure:"health_path"`
	RateLimit    RateLimitSettings `mapstructure:"rate_limit"`
}

// RateLimitSettings 每个客户端的限流，RPS <= 0 表示关闭
type RateLimitSettings struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type DownstreamSettings struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// AppConfigSettings 描述远程应用配置的位置
type AppConfigSettings struct {
	Location     string        `mapstructure:"location"`
	Application  string        `mapstructure:"application"`
	Environment  string        `mapstructure:"environment"`
	Profile      string        `mapstructure:"profile"`
	File         string        `mapstructure:"file"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	PollTimeout  time.Duration `mapstructure:"poll_timeout"`
}

// Addr returns host:port for the HTTP listener
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Init 初始化配置，加载 .env 和 config.yaml
func Init(cfgFile string) {
	// Load .env file (ignore if not exists)
	_ = godotenv.Load()

	v := viper.GetViper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	// Environment variables
	v.SetEnvPrefix("REDACTPROXY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	}
}

// 所有 key 都需要默认值，否则 Unmarshal 看不到只在环境变量里出现的 key
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.health_path", "/healthz")
	v.SetDefault("server.rate_limit.rps", 0)
	v.SetDefault("server.rate_limit.burst", 20)

	v.SetDefault("downstream.timeout", 29*time.Second)

	v.SetDefault("appconfig.location", "")
	v.SetDefault("appconfig.application", "")
	v.SetDefault("appconfig.environment", "")
	v.SetDefault("appconfig.profile", "")
	v.SetDefault("appconfig.file", "")
	v.SetDefault("appconfig.poll_interval", 60*time.Second)
	v.SetDefault("appconfig.poll_timeout", 30*time.Second)
}

// Load reads Settings from the global viper instance prepared by Init
func Load() (*Settings, error) {
	return load(viper.GetViper())
}

func load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate 在启动时检查必需的配置，失败立即退出
func (s *Settings) Validate() error {
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", s.Server.Port)
	}
	return s.AppConfig.Validate()
}

// Validate checks that the configuration location is complete
func (s AppConfigSettings) Validate() error {
	switch strings.ToLower(s.Location) {
	case "":
		return errors.New("missing required setting appconfig.location")
	case LocationAppConfig:
		switch {
		case s.Application == "":
			return errors.New("missing required setting appconfig.application")
		case s.Environment == "":
			return errors.New("missing required setting appconfig.environment")
		case s.Profile == "":
			return errors.New("missing required setting appconfig.profile")
		}
	case LocationFile:
		if s.File == "" {
			return errors.New("missing required setting appconfig.file")
		}
	default:
		return fmt.Errorf("unsupported appconfig.location %q", s.Location)
	}
	return nil
}
