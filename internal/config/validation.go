package config

import (
	"errors"
	"strings"
)

// Validate 针对语义级别做进一步校验，防止非法配置启动进程。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	if c.Server.ListenPort <= 0 || c.Server.ListenPort > 65535 {
		return newFieldError("ListenPort", "必须在 1-65535")
	}

	if c.Import.DataFile == "" {
		return newFieldError("DataFile", "不能为空")
	}
	if c.Import.LockFile == "" {
		return newFieldError("LockFile", "不能为空")
	}
	if c.Import.ImportLimit <= 0 {
		return newFieldError("ImportLimit", "必须大于 0")
	}
	if c.Import.Region == "" {
		return newFieldError("Region", "不能为空")
	}
	if c.Import.Language == "" {
		return newFieldError("Language", "不能为空")
	}
	if c.Import.HTTPTimeout.DurationValue() <= 0 {
		return newFieldError("HTTPTimeout", "必须大于 0")
	}
	if c.Import.AppDetailsCacheDir == "" {
		return newFieldError("AppDetailsCacheDir", "不能为空")
	}
	if c.Import.AppDetailsCacheTTL.DurationValue() <= 0 {
		return newFieldError("AppDetailsCacheTTL", "必须大于 0")
	}
	if c.Import.StoreMinDelay.DurationValue() < 0 {
		return newFieldError("StoreMinDelay", "不能为负数")
	}

	imageType := strings.ToLower(strings.TrimSpace(c.Image.ImageType))
	if imageType == "" {
		return newFieldError("ImageType", "不能为空")
	}
	if _, ok := SupportedImageTypes[imageType]; !ok {
		return newFieldError("ImageType", "仅支持 "+supportedImageTypeList)
	}
	c.Image.ImageType = imageType

	if c.Image.CacheDir == "" {
		return newFieldError("CacheDir", "不能为空")
	}
	if c.Image.CachePublicURL == "" {
		return newFieldError("CachePublicURL", "不能为空")
	}
	if !strings.HasPrefix(c.Image.CachePublicURL, "/") && !strings.Contains(c.Image.CachePublicURL, "://") {
		return newFieldError("CachePublicURL", "必须是绝对路径或完整 URL")
	}
	if c.Image.Quality < 1 || c.Image.Quality > 100 {
		return newFieldError("Quality", "必须在 1-100")
	}

	for i, tag := range c.Import.ExcludeTags {
		c.Import.ExcludeTags[i] = strings.ToLower(strings.TrimSpace(tag))
	}
	for i, typ := range c.Import.ExcludeTypes {
		c.Import.ExcludeTypes[i] = strings.ToLower(strings.TrimSpace(typ))
	}

	return nil
}
