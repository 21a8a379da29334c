package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "12s"、"6h" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// ServerConfig 描述 HTTP 服务行为：监听端口与 scorecard 渲染资源。
type ServerConfig struct {
	ListenPort        int    `mapstructure:"ListenPort"`
	ScorecardTemplate string `mapstructure:"ScorecardTemplate"`
	TaglinesFile      string `mapstructure:"TaglinesFile"`
}

// LogConfig 描述结构化日志输出与滚动策略，导入任务与 HTTP 服务共享同一份参数。
type LogConfig struct {
	LogLevel      string `mapstructure:"LogLevel"`
	LogFilePath   string `mapstructure:"LogFilePath"`
	LogMaxSize    int    `mapstructure:"LogMaxSize"`
	LogMaxBackups int    `mapstructure:"LogMaxBackups"`
	LogCompress   bool   `mapstructure:"LogCompress"`
}

// ImportConfig 决定一次导入任务如何抓取榜单、过滤条目与缓存 store 元数据。
type ImportConfig struct {
	DataFile             string   `mapstructure:"DataFile"`
	LockFile             string   `mapstructure:"LockFile"`
	ImportLimit          int      `mapstructure:"ImportLimit"`
	Region               string   `mapstructure:"Region"`
	Language             string   `mapstructure:"Language"`
	HTTPTimeout          Duration `mapstructure:"HTTPTimeout"`
	AppDetailsCacheDir   string   `mapstructure:"AppDetailsCacheDir"`
	AppDetailsCacheTTL   Duration `mapstructure:"AppDetailsCacheTTL"`
	StoreMinDelay        Duration `mapstructure:"StoreMinDelay"`
	ExcludeTypes         []string `mapstructure:"ExcludeTypes"`
	ExcludeTags          []string `mapstructure:"ExcludeTags"`
	ExcludeIfTypeMissing bool     `mapstructure:"ExcludeIfTypeMissing"`
}

// ImageConfig 描述图片缓存实例：输出目录、公开路径与转码参数。
type ImageConfig struct {
	ImageType      string `mapstructure:"ImageType"`
	CacheDir       string `mapstructure:"CacheDir"`
	CachePublicURL string `mapstructure:"CachePublicURL"`
	PreferWebP     bool   `mapstructure:"PreferWebP"`
	Quality        int    `mapstructure:"Quality"`
}

// Config 是 TOML 文件映射的整体结构，所有段均为平铺键。
type Config struct {
	Server ServerConfig `mapstructure:",squash"`
	Log    LogConfig    `mapstructure:",squash"`
	Import ImportConfig `mapstructure:",squash"`
	Image  ImageConfig  `mapstructure:",squash"`
}

// SupportedImageTypes 列出 ImageType 的所有合法取值。
var SupportedImageTypes = map[string]struct{}{
	"capsule_image":   {},
	"capsule_imagev5": {},
	"header_image":    {},
}

const supportedImageTypeList = "capsule_image|capsule_imagev5|header_image"
