package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cfg 是一个全局变量，用于存储所有应用程序的配置
var Cfg *Config

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig 定义了数据库和缓存相关的配置
type DatabaseConfig struct {
	Redis  RedisConfig  `mapstructure:"redis"`
	Sqlite SqliteConfig `mapstructure:"sqlite"`
}

// RedisConfig 定义了Redis的配置
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SqliteConfig 定义了SQLite数据文件的配置
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// ScoringConfig 定义了计分引擎的配置。
// EpochMonth 是系统允许查询的最早月份（yyyy-mm），
// 早于它的月份请求会被拒绝而不是静默计算。
type ScoringConfig struct {
	Timezone   string `mapstructure:"timezone"`
	EpochMonth string `mapstructure:"epochMonth"`
}

// AuthConfig 定义了登录相关的配置
type AuthConfig struct {
	AdminID             string `mapstructure:"adminId"`
	AdminPassword       string `mapstructure:"adminPassword"`
	SessionTTLHours     int    `mapstructure:"sessionTTLHours"`
	PairingCodeTTLHours int    `mapstructure:"pairingCodeTTLHours"`
}

var monthKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// LoadConfig 函数负责查找、加载和解析配置文件
// 它会在指定的路径中查找名为 config.yaml 的文件
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// 可以添加多个路径，Viper会按顺序查找
	v.AddConfigPath("./config") // `config/config.yaml`
	v.AddConfigPath(".")        // `./config.yaml` (如果在根目录)

	// 允许通过环境变量覆盖配置，例如 SERVER_ADDRESS=:8888
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 缺省值，保证配置文件缺项时应用仍可启动
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.sqlite.path", "wakeup.db")
	v.SetDefault("database.redis.address", "localhost:6379")
	v.SetDefault("scoring.timezone", "Asia/Seoul")
	v.SetDefault("scoring.epochMonth", "2025-09")
	v.SetDefault("auth.sessionTTLHours", 72)
	v.SetDefault("auth.pairingCodeTTLHours", 24)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	Cfg = &cfg
	return Cfg, nil
}

// validate 在启动时拦截明显无效的配置，避免运行中才暴露
func (c *Config) validate() error {
	if !monthKeyPattern.MatchString(c.Scoring.EpochMonth) {
		return fmt.Errorf("配置项 scoring.epochMonth 格式无效: %q (应为 yyyy-mm)", c.Scoring.EpochMonth)
	}
	if _, err := time.LoadLocation(c.Scoring.Timezone); err != nil {
		return fmt.Errorf("配置项 scoring.timezone 无效: %w", err)
	}
	return nil
}

// Location 返回计分引擎使用的时区。
// 配置在validate中已校验，这里不会失败。
func (c *Config) Location() *time.Location {
	loc, _ := time.LoadLocation(c.Scoring.Timezone)
	return loc
}
