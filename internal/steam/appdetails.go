package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DefaultStoreBaseURL 是 store API 的生产地址，测试时可注入替身。
const DefaultStoreBaseURL = "https://store.steampowered.com"

// StoreOptions 控制 appdetails 查询的缓存位置、TTL 与限速。
type StoreOptions struct {
	Client   *http.Client
	BaseURL  string
	CacheDir string
	CacheTTL time.Duration
	// MinDelay 是对上游的最小请求间隔，换算为 token bucket 限速器；
	// 为 0 时不限速。缓存命中不消耗配额。
	MinDelay time.Duration
	Region   string
	Language string
	Logger   *logrus.Logger
}

// StoreClient 封装 appdetails 查询，并维护 (appid, region, language) 粒度的
// 磁盘 JSON 缓存。过期条目视作缺失并重新抓取。
type StoreClient struct {
	client   *http.Client
	baseURL  string
	cacheDir string
	ttl      time.Duration
	limiter  *rate.Limiter
	region   string
	language string
	logger   *logrus.Logger
	now      func() time.Time
}

// NewStoreClient 构建 store 客户端并确保缓存目录存在。
func NewStoreClient(opts StoreOptions) (*StoreClient, error) {
	if opts.CacheDir == "" {
		return nil, fmt.Errorf("appdetails cache dir required")
	}
	if err := os.MkdirAll(opts.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create appdetails cache dir: %w", err)
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultStoreBaseURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	var limiter *rate.Limiter
	if opts.MinDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.MinDelay), 1)
	}

	return &StoreClient{
		client:   opts.Client,
		baseURL:  baseURL,
		cacheDir: opts.CacheDir,
		ttl:      opts.CacheTTL,
		limiter:  limiter,
		region:   opts.Region,
		language: opts.Language,
		logger:   logger,
		now:      time.Now,
	}, nil
}

type appDetailsResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// Details 返回单个应用的 store 元数据。上游标记失败或数据缺失/畸形时返回
// (nil, nil)，调用方应跳过该条目；网络错误与整体非法 JSON 以 error 返回，
// 由导入任务决定是否中止整次运行。
func (c *StoreClient) Details(ctx context.Context, appid int) (*AppData, error) {
	raw, cached := c.loadCached(appid)
	if !cached {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("store rate limit wait: %w", err)
			}
		}

		url := fmt.Sprintf("%s/api/appdetails?appids=%d&cc=%s&l=%s", c.baseURL, appid, c.region, c.language)
		body, err := getBytes(ctx, c.client, url)
		if err != nil {
			return nil, fmt.Errorf("fetch appdetails %d: %w", appid, err)
		}
		if !json.Valid(body) {
			return nil, fmt.Errorf("invalid json from appdetails %d", appid)
		}
		raw = body

		c.saveCached(appid, body)
	}

	var envelope map[string]appDetailsResult
	if err := json.Unmarshal(raw, &envelope); err != nil {
		// 缓存内容畸形时按缺失处理已在 loadCached 兜住；这里只剩上游
		// 直接返回的意外结构，对单个条目按跳过处理。
		c.logger.WithError(err).WithField("appid", appid).Warn("appdetails_unexpected_shape")
		return nil, nil
	}

	result, ok := envelope[strconv.Itoa(appid)]
	if !ok || !result.Success || len(result.Data) == 0 {
		return nil, nil
	}

	var data AppData
	if err := json.Unmarshal(result.Data, &data); err != nil {
		c.logger.WithError(err).WithField("appid", appid).Warn("appdetails_malformed_data")
		return nil, nil
	}
	return &data, nil
}

// cachePath 返回 (appid, region, language) 对应的缓存文件路径。
func (c *StoreClient) cachePath(appid int) string {
	name := fmt.Sprintf("appdetails_%d_%s_%s.json", appid, c.region, c.language)
	return filepath.Join(c.cacheDir, name)
}

// loadCached 读取未过期且内容合法的缓存条目；其余情况一律按缺失处理。
func (c *StoreClient) loadCached(appid int) ([]byte, bool) {
	path := c.cachePath(appid)

	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(info.ModTime()) > c.ttl {
		return nil, false
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	if !json.Valid(body) {
		return nil, false
	}
	return body, true
}

// saveCached 尽力写入缓存；失败只记日志，不影响本次查询结果。
func (c *StoreClient) saveCached(appid int, body []byte) {
	path := c.cachePath(appid)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		c.logger.WithError(err).WithField("appid", appid).Warn("appdetails_cache_write_failed")
	}
}
