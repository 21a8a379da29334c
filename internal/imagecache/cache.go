package imagecache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/steam-top/steam-top/internal/logging"
)

// Options 控制缓存实例的磁盘位置、公开路径与转码参数。
type Options struct {
	Dir        string
	PublicURL  string
	PreferWebP bool
	Timeout    time.Duration
	MaxWidth   int
	MaxHeight  int
	Quality    int
	Logger     *logrus.Logger
}

// Cache 以候选 URL 集合为键管理缩略图条目，整个导入流程复用一份实例。
// 输出编码格式在构造期一次性确定（见 selectCodec），之后不再变化。
type Cache struct {
	dir       string
	publicURL string
	codec     Codec
	maxW      int
	maxH      int
	quality   int
	fetcher   *Fetcher
	logger    *logrus.Logger

	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

// New 构建图片缓存实例：确保目录存在并完成一次性的编码器探测。
func New(opts Options) (*Cache, error) {
	if opts.Dir == "" {
		return nil, errors.New("cache dir required")
	}
	if opts.PublicURL == "" {
		return nil, errors.New("public url required")
	}
	if opts.MaxWidth <= 0 || opts.MaxHeight <= 0 {
		return nil, fmt.Errorf("invalid size cap: %dx%d", opts.MaxWidth, opts.MaxHeight)
	}

	abs, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 90
	}

	codec := selectCodec(opts.PreferWebP)
	if opts.PreferWebP && codec != CodecWebP {
		logger.WithFields(logrus.Fields{
			"action": "codec_fallback",
			"codec":  codec.Ext(),
		}).Warn("webp encoder unavailable, falling back to jpg")
	}

	return &Cache{
		dir:       abs,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
		codec:     codec,
		maxW:      opts.MaxWidth,
		maxH:      opts.MaxHeight,
		quality:   quality,
		fetcher:   NewFetcher(opts.Timeout),
		logger:    logger,
		locks:     make(map[string]*entryLock),
	}, nil
}

// Codec 返回实例固定的输出编码格式，便于调用方推断条目扩展名。
func (c *Cache) Codec() Codec {
	return c.codec
}

// Fetch 以 primary + fallbacks 构成的候选列表解析一张缩略图，返回带
// cache-busting 版本号的公开引用；全部候选失败时返回空串（"无图可用"，
// 不是错误）。同一候选集合首次成功后，后续调用直接命中磁盘、零网络请求。
func (c *Cache) Fetch(ctx context.Context, primary string, fallbacks []string) string {
	candidates := filterCandidates(primary, fallbacks)
	if len(candidates) == 0 {
		return ""
	}

	key := cacheKey(candidates)
	filename := key + "." + c.codec.Ext()
	fsPath := filepath.Join(c.dir, filename)

	// 同一 key 的并发填充互斥，保证 "每个键至多一次成功写入"。
	unlock := c.lockKey(key)
	defer unlock()

	if fileExists(fsPath) {
		return c.publishedRef(filename)
	}

	for _, candidate := range candidates {
		blob, err := c.fetcher.Download(ctx, candidate)
		if err != nil {
			c.logger.WithError(err).
				WithFields(logging.CacheFields(key, candidate)).
				Debug("image_fetch_failed")
			continue
		}

		if err := transcode(blob, fsPath, c.codec, c.maxW, c.maxH, c.quality); err != nil {
			// transcode 自身保证不留半成品，这里兜底清理。
			os.Remove(fsPath)
			c.logger.WithError(err).
				WithFields(logging.CacheFields(key, candidate)).
				Warn("image_transcode_failed")
			continue
		}

		return c.publishedRef(filename)
	}

	return ""
}

// filterCandidates 过滤空白候选并保持调用方给定的顺序。
func filterCandidates(primary string, fallbacks []string) []string {
	candidates := make([]string, 0, len(fallbacks)+1)
	for _, raw := range append([]string{primary}, fallbacks...) {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			candidates = append(candidates, trimmed)
		}
	}
	return candidates
}

// cacheKey 对候选集合求稳定摘要；顺序参与摘要，调整顺序视作新键。
func cacheKey(candidates []string) string {
	sum := sha1.Sum([]byte(strings.Join(candidates, "|")))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) lockKey(key string) func() {
	c.mu.Lock()
	lock := c.locks[key]
	if lock == nil {
		lock = &entryLock{}
		c.locks[key] = lock
	}
	lock.refs++
	c.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		c.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(c.locks, key)
		}
		c.mu.Unlock()
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
