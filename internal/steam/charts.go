package steam

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// DefaultChartsBaseURL 是榜单 API 的生产地址，测试时可注入替身。
const DefaultChartsBaseURL = "https://api.steampowered.com"

const chartsPath = "/ISteamChartsService/GetGamesByConcurrentPlayers/v1/"

// ErrInvalidChartsResponse 表示榜单 API 返回了无法识别的结构。
// 对导入任务而言这是致命错误：宁可保留上一份快照也不能写入残缺数据。
var ErrInvalidChartsResponse = errors.New("invalid charts api response")

// ChartsClient 封装 GetGamesByConcurrentPlayers 榜单查询。
type ChartsClient struct {
	client  *http.Client
	baseURL string
}

// NewChartsClient 构建榜单客户端；baseURL 为空时使用生产地址。
func NewChartsClient(client *http.Client, baseURL string) *ChartsClient {
	if baseURL == "" {
		baseURL = DefaultChartsBaseURL
	}
	return &ChartsClient{client: client, baseURL: baseURL}
}

type chartsResponse struct {
	Response *struct {
		Ranks []ChartEntry `json:"ranks"`
	} `json:"response"`
}

// TopGames 拉取按同时在线人数排序的完整榜单。返回的条目保持上游顺序，
// appid 为空的条目已被剔除。
func (c *ChartsClient) TopGames(ctx context.Context) ([]ChartEntry, error) {
	var decoded chartsResponse
	if err := getJSON(ctx, c.client, c.baseURL+chartsPath, &decoded); err != nil {
		return nil, fmt.Errorf("fetch charts: %w", err)
	}

	if decoded.Response == nil || decoded.Response.Ranks == nil {
		return nil, ErrInvalidChartsResponse
	}

	entries := make([]ChartEntry, 0, len(decoded.Response.Ranks))
	for _, entry := range decoded.Response.Ranks {
		if entry.AppID == 0 {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
