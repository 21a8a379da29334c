package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Game 是快照中的单个条目，字段与对外 API 的 JSON 形状一一对应。
type Game struct {
	Rank           int    `json:"rank"`
	AppID          int    `json:"appid"`
	Name           string `json:"name"`
	IsFree         int    `json:"isfree"`
	PriceFormatted string `json:"priceformatted"`
	CurrentPlayers int    `json:"currentplayers"`
	PeakPlayers    int    `json:"peakplayers"`
	Thumbnail      string `json:"thumbnail"`
	StoreURL       string `json:"storeurl"`
	ImageType      string `json:"imagetype"`
	FallbackKind   string `json:"fallbackkind"`
}

// Snapshot 是一次导入运行的完整产物，写入后不再修改，直到下一次运行
// 原子替换整个文件。
type Snapshot struct {
	GeneratedAt string `json:"generated_at"`
	Count       int    `json:"count"`
	Games       []Game `json:"games"`
}

// ErrNotFound 表示快照文件不存在。
var ErrNotFound = errors.New("snapshot not found")

// ErrMalformed 表示快照文件存在但无法解析出合法结构。
var ErrMalformed = errors.New("snapshot malformed")

// New 以当前时间构建快照骨架。
func New(games []Game) *Snapshot {
	if games == nil {
		games = []Game{}
	}
	return &Snapshot{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Count:       len(games),
		Games:       games,
	}
}

// Write 将快照写入 path：先写临时文件再 rename，读者永远不会观察到
// 半成品文件。
func Write(path string, snap *Snapshot) error {
	if snap == nil {
		return errors.New("snapshot required")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tempName := tempFile.Name()

	_, err = tempFile.Write(body)
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempName)
		return fmt.Errorf("write snapshot: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// Load 读取并校验快照文件。文件缺失返回 ErrNotFound，内容非法返回
// ErrMalformed，两者都让调用方退回兜底 payload 而不是暴露内部错误。
func Load(path string) (*Snapshot, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if snap.Games == nil {
		return nil, fmt.Errorf("%w: missing games array", ErrMalformed)
	}
	return &snap, nil
}
