package steam

import (
	"fmt"
	"strings"
)

// ImageKind 标识一次导入使用的缩略图规格，取值与 store 字段名一致。
type ImageKind string

const (
	// KindCapsule 是标准 capsule（231x87）。
	KindCapsule ImageKind = "capsule_image"
	// KindCapsuleV5 是新版 capsule（467x181）。
	KindCapsuleV5 ImageKind = "capsule_imagev5"
	// KindHeader 是大尺寸 header 图（460x215）。
	KindHeader ImageKind = "header_image"
)

// ParseImageKind 解析配置里的图片规格取值。
func ParseImageKind(raw string) (ImageKind, error) {
	kind := ImageKind(strings.ToLower(strings.TrimSpace(raw)))
	switch kind {
	case KindCapsule, KindCapsuleV5, KindHeader:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown image kind: %s", raw)
	}
}

// FallbackKind 把图片规格映射为 steamstatic CDN 上的资源名。
func (k ImageKind) FallbackKind() string {
	switch k {
	case KindCapsuleV5:
		return "capsule_467x181"
	case KindHeader:
		return "header_460x215"
	default:
		return "capsule_231x87"
	}
}

// SizeCap 返回该规格的等比缩放边界。
func (k ImageKind) SizeCap() (width, height int) {
	switch k {
	case KindCapsuleV5:
		return 467, 181
	case KindHeader:
		return 460, 215
	case KindCapsule:
		return 231, 87
	default:
		return 512, 512
	}
}

// PickStoreImage 按规格从 store 元数据中挑选最合适的图片 URL，字段缺失时
// 逐级回退，全部缺失时返回空串。
func (k ImageKind) PickStoreImage(data *AppData) string {
	if data == nil {
		return ""
	}
	switch k {
	case KindCapsuleV5:
		if data.CapsuleImageV5 != "" {
			return data.CapsuleImageV5
		}
		return data.CapsuleImage
	case KindHeader:
		if data.HeaderImage != "" {
			return data.HeaderImage
		}
		return data.CapsuleImage
	default:
		return data.CapsuleImage
	}
}

const (
	// DefaultSharedCDNBaseURL 是规格感知图片的首选 CDN 基址。
	DefaultSharedCDNBaseURL = "https://shared.akamai.steamstatic.com"
	// DefaultLegacyCDNBaseURL 是通用兜底图片所在的旧 CDN 基址。
	DefaultLegacyCDNBaseURL = "https://cdn.akamai.steamstatic.com"
)

// CDNResolver 构造 steamstatic CDN 上的图片地址，基址可注入。
type CDNResolver struct {
	sharedBase string
	legacyBase string
}

// NewCDNResolver 构建地址解析器，空基址回落到官方 CDN。
func NewCDNResolver(sharedBase, legacyBase string) *CDNResolver {
	if sharedBase == "" {
		sharedBase = DefaultSharedCDNBaseURL
	}
	if legacyBase == "" {
		legacyBase = DefaultLegacyCDNBaseURL
	}
	return &CDNResolver{
		sharedBase: strings.TrimRight(sharedBase, "/"),
		legacyBase: strings.TrimRight(legacyBase, "/"),
	}
}

// PrimaryURL 构造规格感知的 CDN 首选地址，缓存会最先尝试它。
func (r *CDNResolver) PrimaryURL(appid int, kind ImageKind) string {
	return fmt.Sprintf("%s/steam/apps/%d/%s.jpg", r.sharedBase, appid, kind.FallbackKind())
}

// FallbackURLs 返回通用的兜底地址。
func (r *CDNResolver) FallbackURLs(appid int) []string {
	return []string{
		fmt.Sprintf("%s/steam/apps/%d/capsule_231x87.jpg", r.legacyBase, appid),
	}
}

// StoreURL 返回应用的商店页地址。
func StoreURL(appid int) string {
	return fmt.Sprintf("https://store.steampowered.com/app/%d/", appid)
}
