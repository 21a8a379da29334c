package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := resolvePaths(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", 5000)
	v.SetDefault("ScorecardTemplate", "./assets/misc/scorecard.png")
	v.SetDefault("TaglinesFile", "./assets/misc/taglines.json")

	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)

	v.SetDefault("DataFile", "./data/steam-top100.json")
	v.SetDefault("LockFile", "./steamtopimport.lock")
	v.SetDefault("ImportLimit", 50)
	v.SetDefault("Region", "gb")
	v.SetDefault("Language", "en")
	v.SetDefault("HTTPTimeout", "12s")
	v.SetDefault("AppDetailsCacheDir", "./cache_store_appdetails")
	v.SetDefault("AppDetailsCacheTTL", "6h")
	v.SetDefault("StoreMinDelay", "250ms")
	v.SetDefault("ExcludeTypes", defaultExcludeTypes)
	v.SetDefault("ExcludeTags", defaultExcludeTags)
	v.SetDefault("ExcludeIfTypeMissing", false)

	v.SetDefault("ImageType", "capsule_imagev5")
	v.SetDefault("CacheDir", "./assets/cache/steam-images")
	v.SetDefault("CachePublicURL", "/assets/cache/steam-images")
	v.SetDefault("PreferWebP", true)
	v.SetDefault("Quality", 90)
}

// 与上游导入脚本保持一致的默认排除清单，见 Validate 中的语义约束。
var (
	defaultExcludeTypes = []string{
		"dlc", "demo", "tool", "application", "video", "music", "hardware", "advertising",
	}
	defaultExcludeTags = []string{
		"utilities", "software", "animation & modeling", "design & illustration",
		"audio production", "video production", "photo editing", "web publishing",
		"education", "tutorial", "game development",
	}
)

func applyDefaults(cfg *Config) {
	if cfg.Server.ListenPort == 0 {
		cfg.Server.ListenPort = 5000
	}
	if cfg.Import.ImportLimit == 0 {
		cfg.Import.ImportLimit = 50
	}
	if cfg.Import.HTTPTimeout.DurationValue() == 0 {
		cfg.Import.HTTPTimeout = Duration(12 * time.Second)
	}
	if cfg.Import.AppDetailsCacheTTL.DurationValue() == 0 {
		cfg.Import.AppDetailsCacheTTL = Duration(6 * time.Hour)
	}
	if cfg.Import.StoreMinDelay.DurationValue() == 0 {
		cfg.Import.StoreMinDelay = Duration(250 * time.Millisecond)
	}
	if cfg.Image.Quality == 0 {
		cfg.Image.Quality = 90
	}
}

// resolvePaths 把磁盘路径统一转为绝对路径，避免工作目录变化带来歧义。
func resolvePaths(cfg *Config) error {
	paths := []*string{
		&cfg.Import.DataFile,
		&cfg.Import.LockFile,
		&cfg.Import.AppDetailsCacheDir,
		&cfg.Image.CacheDir,
	}
	for _, p := range paths {
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("无法解析路径 %s: %w", *p, err)
		}
		*p = abs
	}
	return nil
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
