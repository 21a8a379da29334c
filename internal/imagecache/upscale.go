package imagecache

import (
	"fmt"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// UpscaleCapsule 对小尺寸 capsule 源图做一次性的画质增强放大，属于离线
// 工具路径，不参与缓存 Fetch 的热路径。目标尺寸被钳制在源图 2 倍以内，
// 分两步 Lanczos 放大后做去振铃模糊、反锐化与轻微对比度提升。
// dest 已存在且未指定 force 时直接复用现有文件。
func UpscaleCapsule(srcPath, destPath string, targetW, targetH int, force bool) (string, error) {
	if !force && fileExists(destPath) {
		return destPath, nil
	}

	img, err := imaging.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open capsule source: %w", err)
	}

	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()
	if srcW <= 0 || srcH <= 0 {
		return "", fmt.Errorf("capsule source has empty bounds: %s", srcPath)
	}

	if maxW := srcW * 2; targetW > maxW {
		targetW = maxW
	}
	if maxH := srcH * 2; targetH > maxH {
		targetH = maxH
	}

	// 分步放大比一次到位产生的振铃更少，capsule 上的小号文字受益明显。
	const steps = 2
	result := img
	for i := 1; i <= steps; i++ {
		w := srcW + (targetW-srcW)*i/steps
		h := srcH + (targetH-srcH)*i/steps
		result = imaging.Resize(result, w, h, imaging.Lanczos)
	}

	result = imaging.Blur(result, 0.4)
	result = imaging.Sharpen(result, 0.9)
	result = imaging.AdjustContrast(result, 1)

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(destPath), "."))
	err = atomicEncode(destPath, func(w io.Writer) error {
		if ext == "webp" {
			return webp.Encode(w, result, &webp.Options{Quality: 90})
		}
		return png.Encode(w, result)
	})
	if err != nil {
		return "", err
	}

	return destPath, nil
}
