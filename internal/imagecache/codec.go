package imagecache

import (
	"image"
	"io"

	"github.com/chai2010/webp"
)

// Codec 表示缓存实例的输出编码格式，取值同时充当文件扩展名。
type Codec string

const (
	// CodecWebP 是首选的现代编码格式。
	CodecWebP Codec = "webp"
	// CodecJPEG 是兜底的通用编码格式。
	CodecJPEG Codec = "jpg"
)

// Ext 返回该编码格式的文件扩展名（不含点号）。
func (c Codec) Ext() string {
	return string(c)
}

// selectCodec 在缓存构造期一次性决定输出格式：偏好 WebP 时先探测编码器，
// 探测失败则整个实例生命周期内固定退回 JPEG，不做每次调用的摇摆。
func selectCodec(preferWebP bool) Codec {
	if !preferWebP {
		return CodecJPEG
	}
	if err := probeWebPEncoder(); err != nil {
		return CodecJPEG
	}
	return CodecWebP
}

// probeWebPEncoder 用 1x1 图片做一次真实编码，验证 WebP 编码器可用。
func probeWebPEncoder() error {
	probe := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	return webp.Encode(io.Discard, probe, &webp.Options{Quality: 80})
}
