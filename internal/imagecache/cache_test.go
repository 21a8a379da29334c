package imagecache

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disintegration/imaging"
)

// testJPEG 生成一张渐变测试图的 JPEG 字节，保证超过最小体积阈值。
func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: uint8((x + y) % 256), A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("编码测试图失败: %v", err)
	}
	if buf.Len() < minBodyBytes {
		t.Fatalf("测试图过小 (%d bytes)，无法覆盖下载阈值", buf.Len())
	}
	return buf.Bytes()
}

func newTestCache(t *testing.T, opts Options) *Cache {
	t.Helper()

	if opts.Dir == "" {
		opts.Dir = t.TempDir()
	}
	if opts.PublicURL == "" {
		opts.PublicURL = "/assets/cache/steam-images"
	}
	if opts.MaxWidth == 0 {
		opts.MaxWidth = 512
	}
	if opts.MaxHeight == 0 {
		opts.MaxHeight = 512
	}

	cache, err := New(opts)
	if err != nil {
		t.Fatalf("构建缓存失败: %v", err)
	}
	return cache
}

func cacheDirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("读取缓存目录失败: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestFetchReturnsEmptyWhenNoCandidates(t *testing.T) {
	dir := t.TempDir()
	cache := newTestCache(t, Options{Dir: dir})

	if ref := cache.Fetch(context.Background(), "", nil); ref != "" {
		t.Fatalf("空候选集合应返回空串, got %q", ref)
	}
	if ref := cache.Fetch(context.Background(), "  ", []string{"", "   "}); ref != "" {
		t.Fatalf("全空白候选应返回空串, got %q", ref)
	}
	if entries := cacheDirEntries(t, dir); len(entries) != 0 {
		t.Fatalf("空候选不应写任何文件: %v", entries)
	}
}

func TestFetchCachesFirstSuccessAndSkipsNetwork(t *testing.T) {
	payload := testJPEG(t, 300, 200)

	var hits atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(payload)
	}))
	defer upstream.Close()

	dir := t.TempDir()
	cache := newTestCache(t, Options{Dir: dir, PreferWebP: false})

	url := upstream.URL + "/capsule.jpg"
	first := cache.Fetch(context.Background(), url, nil)
	if first == "" {
		t.Fatalf("首次抓取应成功")
	}
	if !strings.Contains(first, "?v=") {
		t.Fatalf("公开引用应带 v= 版本号: %s", first)
	}
	if hits.Load() != 1 {
		t.Fatalf("首次抓取应产生一次上游请求, got %d", hits.Load())
	}

	second := cache.Fetch(context.Background(), url, nil)
	if second != first {
		t.Fatalf("同一候选集合应得到相同引用: %q vs %q", first, second)
	}
	if hits.Load() != 1 {
		t.Fatalf("命中后不应再访问上游, got %d", hits.Load())
	}

	entries := cacheDirEntries(t, dir)
	if len(entries) != 1 {
		t.Fatalf("应只有一个缓存条目: %v", entries)
	}
	if !strings.HasSuffix(entries[0], ".jpg") {
		t.Fatalf("禁用 WebP 时应输出 jpg: %s", entries[0])
	}
}

func TestFetchFallsBackToNextCandidate(t *testing.T) {
	payload := testJPEG(t, 300, 200)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/bad/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(payload)
	}))
	defer upstream.Close()

	dir := t.TempDir()
	cache := newTestCache(t, Options{
		Dir:        dir,
		PreferWebP: false,
		MaxWidth:   150,
		MaxHeight:  150,
	})

	bad := upstream.URL + "/bad/x.jpg"
	ok := upstream.URL + "/ok/y.jpg"
	ref := cache.Fetch(context.Background(), bad, []string{ok})
	if ref == "" {
		t.Fatalf("第二个候选可用时应成功")
	}

	entries := cacheDirEntries(t, dir)
	if len(entries) != 1 {
		t.Fatalf("失败候选不应留下文件: %v", entries)
	}

	// 条目文件名由完整候选集合决定，而不是成功的那个 URL。
	wantName := cacheKey([]string{bad, ok}) + ".jpg"
	if entries[0] != wantName {
		t.Fatalf("条目名不符: got %s want %s", entries[0], wantName)
	}

	img, err := imaging.Open(filepath.Join(dir, entries[0]))
	if err != nil {
		t.Fatalf("打开缓存条目失败: %v", err)
	}
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w > 150 || h > 150 {
		t.Fatalf("输出尺寸应限制在 150x150 以内, got %dx%d", w, h)
	}
}

func TestFetchExhaustedCandidatesLeavesNoFile(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer upstream.Close()

	dir := t.TempDir()
	cache := newTestCache(t, Options{Dir: dir, PreferWebP: false})

	ref := cache.Fetch(context.Background(), upstream.URL+"/a.jpg", []string{upstream.URL + "/b.jpg"})
	if ref != "" {
		t.Fatalf("全部候选失败应返回空串, got %q", ref)
	}
	if entries := cacheDirEntries(t, dir); len(entries) != 0 {
		t.Fatalf("失败后缓存目录应为空: %v", entries)
	}
}

func TestFetchTimeoutTreatedAsFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer upstream.Close()

	dir := t.TempDir()
	cache := newTestCache(t, Options{Dir: dir, PreferWebP: false, Timeout: 50 * time.Millisecond})

	ref := cache.Fetch(context.Background(), upstream.URL+"/slow.jpg", []string{upstream.URL + "/slow2.jpg"})
	if ref != "" {
		t.Fatalf("候选全部超时应返回空串, got %q", ref)
	}
	if entries := cacheDirEntries(t, dir); len(entries) != 0 {
		t.Fatalf("超时后缓存目录应为空: %v", entries)
	}
}

func TestFetchRejectsUndersizedBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("tiny"))
	}))
	defer upstream.Close()

	dir := t.TempDir()
	cache := newTestCache(t, Options{Dir: dir, PreferWebP: false})

	if ref := cache.Fetch(context.Background(), upstream.URL+"/tiny.jpg", nil); ref != "" {
		t.Fatalf("过短响应体应判定失败, got %q", ref)
	}
}

func TestFetchSkipsCorruptPayloadAndContinues(t *testing.T) {
	payload := testJPEG(t, 64, 64)
	garbage := bytes.Repeat([]byte("not an image at all "), 32)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/garbage/") {
			_, _ = w.Write(garbage)
			return
		}
		_, _ = w.Write(payload)
	}))
	defer upstream.Close()

	dir := t.TempDir()
	cache := newTestCache(t, Options{Dir: dir, PreferWebP: false})

	ref := cache.Fetch(context.Background(), upstream.URL+"/garbage/x.jpg", []string{upstream.URL + "/ok.jpg"})
	if ref == "" {
		t.Fatalf("解码失败应推进到下一个候选")
	}
	if entries := cacheDirEntries(t, dir); len(entries) != 1 {
		t.Fatalf("应只剩成功条目: %v", entries)
	}
}

func TestCacheKeyStableAndOrderSensitive(t *testing.T) {
	a := []string{"https://a.example/x.jpg", "https://b.example/y.jpg"}
	b := []string{"https://a.example/x.jpg", "https://b.example/y.jpg"}
	if cacheKey(a) != cacheKey(b) {
		t.Fatalf("相同候选集合应得到相同键")
	}

	reversed := []string{a[1], a[0]}
	if cacheKey(a) == cacheKey(reversed) {
		t.Fatalf("候选顺序不同应视作不同键")
	}
}

func TestFilterCandidatesPreservesOrder(t *testing.T) {
	got := filterCandidates(" primary ", []string{"", "one", "  ", "two"})
	want := []string{"primary", "one", "two"}
	if len(got) != len(want) {
		t.Fatalf("过滤结果数量不符: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("过滤应保持顺序: got %v want %v", got, want)
		}
	}
}

func TestPublishedRefVersioning(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "abc.jpg")

	if ref := PublishedRef("/assets/cache", path); strings.Contains(ref, "?v=") {
		t.Fatalf("文件不存在时不应有 v= 参数: %s", ref)
	}

	if err := os.WriteFile(path, []byte("entry"), 0o644); err != nil {
		t.Fatalf("写入文件失败: %v", err)
	}
	modTime := time.Unix(1700000000, 0)
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("设置 mtime 失败: %v", err)
	}

	ref := PublishedRef("/assets/cache/", path)
	if ref != "/assets/cache/abc.jpg?v=1700000000" {
		t.Fatalf("公开引用不符: %s", ref)
	}
}
