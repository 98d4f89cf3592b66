package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Routine  RoutineConfig  `mapstructure:"routine"`
	AI       AIConfig       `mapstructure:"ai"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Import   ImportConfig   `mapstructure:"import"`
	Log      LogConfig      `mapstructure:"log"`
	Feature  FeatureConfig  `mapstructure:"feature"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port      int        `mapstructure:"port"`
	BaseURL   string     `mapstructure:"base_url"`
	BodyLimit int64      `mapstructure:"body_limit"` // 字节
	CORS      CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig 远程 PostgreSQL 数据库配置（routine / metadata 两张表）
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 分钟
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig 本地缓存配置
type CacheConfig struct {
	Driver    string `mapstructure:"driver"` // sqlite | redis | memory
	Path      string `mapstructure:"path"`   // sqlite 文件路径
	KeyPrefix string `mapstructure:"key_prefix"`
}

// SyncConfig 同步控制器配置
type SyncConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	ProbeURL      string        `mapstructure:"probe_url"` // 为空时使用数据库 Ping 探测
	ProbeInterval time.Duration `mapstructure:"probe_interval"`
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout"`
}

// TimeSlotConfig 周视图时间段
type TimeSlotConfig struct {
	Label string `mapstructure:"label"`
	Start string `mapstructure:"start"`
}

// RoutineConfig 课表领域配置
type RoutineConfig struct {
	OffDay                string           `mapstructure:"off_day"`
	DefaultBatch          string           `mapstructure:"default_batch"`
	DefaultSection        string           `mapstructure:"default_section"`
	DefaultVersion        string           `mapstructure:"default_version"`
	WelcomeFallback       string           `mapstructure:"welcome_fallback"`
	PhotoURLTemplate      string           `mapstructure:"photo_url_template"`
	BreakThresholdMinutes int              `mapstructure:"break_threshold_minutes"`
	Timezone              string           `mapstructure:"timezone"`
	TimeSlots             []TimeSlotConfig `mapstructure:"time_slots"`
}

// AIConfig 文本抽取（OpenAI 兼容接口）配置
type AIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// NotifyConfig 版本变更通知配置
type NotifyConfig struct {
	NATSURL string `mapstructure:"nats_url"` // 为空时仅写日志
	Subject string `mapstructure:"subject"`
}

// ImportConfig AI 导入配置
type ImportConfig struct {
	RateLimit    int           `mapstructure:"rate_limit"`
	RateWindow   time.Duration `mapstructure:"rate_window"`
	MaxTextBytes int           `mapstructure:"max_text_bytes"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FeatureConfig 功能开关配置
type FeatureConfig struct {
	ImportEnabled bool `mapstructure:"import_enabled"`
}

var weekdays = map[string]bool{
	"Saturday": true, "Sunday": true, "Monday": true, "Tuesday": true,
	"Wednesday": true, "Thursday": true, "Friday": true,
}

var hhmmPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Load 从 .env、配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.body_limit", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "routine_hub")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Dhaka")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.auto_migrate", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.driver", "sqlite")
	v.SetDefault("cache.path", "./data/routine-cache.sqlite")
	v.SetDefault("cache.key_prefix", "diu_")

	v.SetDefault("sync.timeout", "10s")
	v.SetDefault("sync.probe_url", "")
	v.SetDefault("sync.probe_interval", "15s")
	v.SetDefault("sync.probe_timeout", "3s")

	v.SetDefault("routine.off_day", "Friday")
	v.SetDefault("routine.default_batch", "69")
	v.SetDefault("routine.default_section", "F")
	v.SetDefault("routine.default_version", "1.0")
	v.SetDefault("routine.welcome_fallback", "Routine Hub is ready.")
	v.SetDefault("routine.photo_url_template", "https://api.dicebear.com/7.x/initials/svg?seed=%s")
	v.SetDefault("routine.break_threshold_minutes", 15)
	v.SetDefault("routine.timezone", "Asia/Dhaka")
	v.SetDefault("routine.time_slots", []map[string]string{
		{"label": "08:30-10:00", "start": "08:30"},
		{"label": "10:00-11:30", "start": "10:00"},
		{"label": "11:30-13:00", "start": "11:30"},
		{"label": "13:00-14:30", "start": "13:00"},
		{"label": "14:30-16:00", "start": "14:30"},
	})

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout", "60s")

	v.SetDefault("notify.nats_url", "")
	v.SetDefault("notify.subject", "routine.version.changed")

	v.SetDefault("import.rate_limit", 5)
	v.SetDefault("import.rate_window", "1m")
	v.SetDefault("import.max_text_bytes", 64*1024)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("feature.import_enabled", true)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("ROUTINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	switch c.Cache.Driver {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("配置校验失败: cache.driver 仅支持 sqlite | redis | memory，实际 %q", c.Cache.Driver)
	}
	if c.Cache.Driver == "sqlite" && c.Cache.Path == "" {
		return fmt.Errorf("配置校验失败: cache.path 不能为空")
	}
	if !weekdays[c.Routine.OffDay] {
		return fmt.Errorf("配置校验失败: routine.off_day 必须为英文星期全称，实际 %q", c.Routine.OffDay)
	}
	if len(c.Routine.TimeSlots) == 0 {
		return fmt.Errorf("配置校验失败: routine.time_slots 不能为空")
	}
	for i, ts := range c.Routine.TimeSlots {
		if !hhmmPattern.MatchString(ts.Start) {
			return fmt.Errorf("配置校验失败: routine.time_slots[%d].start 格式应为 HH:MM，实际 %q", i, ts.Start)
		}
	}
	if c.Sync.Timeout <= 0 {
		return fmt.Errorf("配置校验失败: sync.timeout 必须大于 0")
	}
	return nil
}
