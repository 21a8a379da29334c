package imagecache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PublishedRef 把缓存文件路径映射为公开引用，文件存在时附加 mtime 作为
// cache-busting 版本号。每次调用都重新 stat，不在内存缓存结果：mtime 是
// 下游 HTTP 缓存唯一依赖的新鲜度信号。
func PublishedRef(publicURL, fsPath string) string {
	ref := strings.TrimRight(publicURL, "/") + "/" + filepath.Base(fsPath)

	info, err := os.Stat(fsPath)
	if err != nil {
		return ref
	}
	return fmt.Sprintf("%s?v=%d", ref, info.ModTime().Unix())
}

func (c *Cache) publishedRef(filename string) string {
	return PublishedRef(c.publicURL, filepath.Join(c.dir, filename))
}
