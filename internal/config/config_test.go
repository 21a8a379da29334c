package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	return path
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempConfig(t, `
ListenPort = 8080
DataFile = "./data/top.json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Server.ListenPort != 8080 {
		t.Fatalf("ListenPort 应当被解析, got %d", cfg.Server.ListenPort)
	}
	if cfg.Import.HTTPTimeout.DurationValue() != 12*time.Second {
		t.Fatalf("HTTPTimeout 应该自动填充默认值, got %v", cfg.Import.HTTPTimeout.DurationValue())
	}
	if cfg.Import.AppDetailsCacheTTL.DurationValue() != 6*time.Hour {
		t.Fatalf("AppDetailsCacheTTL 应该自动填充默认值")
	}
	if cfg.Image.ImageType != "capsule_imagev5" {
		t.Fatalf("ImageType 默认值不正确: %s", cfg.Image.ImageType)
	}
	if len(cfg.Import.ExcludeTypes) == 0 || len(cfg.Import.ExcludeTags) == 0 {
		t.Fatalf("排除清单应该带默认值")
	}
	if !filepath.IsAbs(cfg.Import.DataFile) {
		t.Fatalf("DataFile 应该解析为绝对路径: %s", cfg.Import.DataFile)
	}
}

func TestLoadAcceptsBareSecondDurations(t *testing.T) {
	path := writeTempConfig(t, `
HTTPTimeout = 30
AppDetailsCacheTTL = "6h"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Import.HTTPTimeout.DurationValue() != 30*time.Second {
		t.Fatalf("纯秒整数应解析为秒, got %v", cfg.Import.HTTPTimeout.DurationValue())
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	path := writeTempConfig(t, `HTTPTimeout = "boom"`)
	if _, err := Load(path); err == nil {
		t.Fatalf("无效 Duration 应失败")
	}
}

func TestValidateEnforcesListenPortRange(t *testing.T) {
	cfg := validConfig()
	cfg.Server.ListenPort = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatalf("ListenPort 超出范围应当报错")
	}
}

func TestValidateImageType(t *testing.T) {
	testCases := []struct {
		name      string
		imageType string
		shouldErr bool
	}{
		{"capsule ok", "capsule_image", false},
		{"capsule v5 ok", "capsule_imagev5", false},
		{"header ok", "header_image", false},
		{"normalized", "  Header_Image ", false},
		{"unknown", "portrait", true},
		{"empty", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Image.ImageType = tc.imageType
			err := cfg.Validate()
			if tc.shouldErr && err == nil {
				t.Fatalf("ImageType %q 应当报错", tc.imageType)
			}
			if !tc.shouldErr && err != nil {
				t.Fatalf("ImageType %q 不应报错: %v", tc.imageType, err)
			}
		})
	}
}

func TestValidateQualityRange(t *testing.T) {
	cfg := validConfig()
	cfg.Image.Quality = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Quality 为 0 应当报错")
	}
	cfg.Image.Quality = 101
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Quality 超过 100 应当报错")
	}
}

func TestValidateLowercasesExclusionLists(t *testing.T) {
	cfg := validConfig()
	cfg.Import.ExcludeTags = []string{" Utilities ", "Game Development"}
	cfg.Import.ExcludeTypes = []string{"DLC"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate 返回错误: %v", err)
	}
	if cfg.Import.ExcludeTags[0] != "utilities" || cfg.Import.ExcludeTags[1] != "game development" {
		t.Fatalf("ExcludeTags 应统一转小写: %v", cfg.Import.ExcludeTags)
	}
	if cfg.Import.ExcludeTypes[0] != "dlc" {
		t.Fatalf("ExcludeTypes 应统一转小写: %v", cfg.Import.ExcludeTypes)
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{ListenPort: 5000},
		Import: ImportConfig{
			DataFile:           "./data/top.json",
			LockFile:           "./import.lock",
			ImportLimit:        50,
			Region:             "gb",
			Language:           "en",
			HTTPTimeout:        Duration(12 * time.Second),
			AppDetailsCacheDir: "./cache",
			AppDetailsCacheTTL: Duration(6 * time.Hour),
			StoreMinDelay:      Duration(250 * time.Millisecond),
		},
		Image: ImageConfig{
			ImageType:      "capsule_imagev5",
			CacheDir:       "./assets/cache/steam-images",
			CachePublicURL: "/assets/cache/steam-images",
			PreferWebP:     true,
			Quality:        90,
		},
	}
}
