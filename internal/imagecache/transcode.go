package imagecache

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	// 内容嗅探解码依赖注册的解码器；文件名后缀不参与格式判断。
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// transcode 把内存中的原始字节规整为一个缓存条目：内容嗅探解码并自动转正
// （重编码本身会丢弃元数据），超出边界时按比例缩小（从不放大），以实例编码
// 格式重编码后原子落盘。失败时 destPath 上不会留下任何文件。
func transcode(blob []byte, destPath string, codec Codec, maxW, maxH, quality int) error {
	img, err := imaging.Decode(bytes.NewReader(blob), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxW || bounds.Dy() > maxH {
		img = imaging.Fit(img, maxW, maxH, imaging.Lanczos)
	}

	return atomicEncode(destPath, func(w io.Writer) error {
		return encodeTo(w, img, codec, quality)
	})
}

// encodeTo 以固定质量参数编码到 Writer。
func encodeTo(w io.Writer, img image.Image, codec Codec, quality int) error {
	switch codec {
	case CodecWebP:
		return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	case CodecJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	default:
		return fmt.Errorf("unsupported codec: %s", codec)
	}
}

// atomicEncode 通过临时文件 + rename 保证 destPath 要么是完整条目要么不存在，
// 编码或写盘失败时清理临时文件。
func atomicEncode(destPath string, encode func(io.Writer) error) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".img-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempName := tempFile.Name()

	err = encode(tempFile)
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempName)
		return fmt.Errorf("encode image: %w", err)
	}

	if err := os.Rename(tempName, destPath); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("publish cache entry: %w", err)
	}
	return nil
}
