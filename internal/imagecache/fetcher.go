package imagecache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Shared HTTP transport tunings，复用长连接并集中配置超时。
var defaultTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   100,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ForceAttemptHTTP2:     true,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
}

const (
	// userAgent 是下载源图时携带的描述性 UA。
	userAgent = "Mozilla/5.0 (compatible; SteamTopImageCache/1.0)"

	// minBodyBytes 以下的响应体视为错误页而非图片，直接判定失败。
	minBodyBytes = 256
)

// ErrBodyTooSmall 表示响应体长度不足以构成合法图片。
var ErrBodyTooSmall = errors.New("response body below minimum image size")

// Fetcher 负责单个候选 URL 的 GET 下载。只用 GET（Steam CDN 会拒绝 HEAD）；
// 重定向沿用 net/http 默认策略（自动跟随，最多 10 跳）；不携带 Cookie，
// 也不响应任何鉴权质询。任何失败都以 error 返回，不会穿透到调用方之外。
type Fetcher struct {
	client *http.Client
}

// NewFetcher 基于共享 transport 构建下载器，timeout 为单次请求上限。
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Fetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: defaultTransport.Clone(),
		},
	}
}

// Download 抓取一个候选 URL 的原始字节。非 2xx、超时、连接错误与过短响应体
// 都按失败返回，由上层决定是否尝试下一个候选。
func (f *Fetcher) Download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body %s: %w", rawURL, err)
	}
	if len(body) < minBodyBytes {
		return nil, fmt.Errorf("download %s (%d bytes): %w", rawURL, len(body), ErrBodyTooSmall)
	}

	return body, nil
}
