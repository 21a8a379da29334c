package server

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/steam-top/steam-top/internal/scorecard"
	"github.com/steam-top/steam-top/internal/snapshot"
)

// fallbackPayload 是快照缺失或损坏时的占位响应，前端据 error 字段降级展示。
type fallbackPayload struct {
	Games       []snapshot.Game `json:"games"`
	GeneratedAt string          `json:"generated_at"`
	Error       string          `json:"error"`
}

// topGamesHandler 每次请求都重新读取快照文件，导入任务的原子替换保证
// 读到的永远是完整的一份。
func topGamesHandler(opts Options) fiber.Handler {
	return func(c fiber.Ctx) error {
		setSecurityHeaders(c)

		snap, err := snapshot.Load(opts.DataFile)
		if err != nil {
			opts.Logger.WithFields(logrus.Fields{
				"action":     "snapshot_unavailable",
				"request_id": RequestID(c),
				"data_file":  opts.DataFile,
			}).Warn("快照不可用，返回占位响应")

			return c.JSON(fallbackPayload{
				Games:       []snapshot.Game{},
				GeneratedAt: time.Now().Format(time.RFC3339),
				Error:       "No data available",
			})
		}

		return c.JSON(snap)
	}
}

// scorecardHandler 解析查询参数并委托渲染器输出 PNG。模板缺失与渲染故障
// 分别映射为 404 与 503 纯文本。
func scorecardHandler(opts Options) fiber.Handler {
	return func(c fiber.Ctx) error {
		if opts.Scorecard == nil {
			return scorecardUnavailable(c)
		}

		req := parseScorecardQuery(c)

		out, err := opts.Scorecard.Render(req)
		if err != nil {
			if errors.Is(err, scorecard.ErrTemplateMissing) {
				c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
				return c.Status(fiber.StatusNotFound).SendString("Scorecard template is missing.")
			}

			opts.Logger.WithFields(logrus.Fields{
				"action":     "scorecard_render_failed",
				"request_id": RequestID(c),
				"error":      err.Error(),
			}).Warn("成绩卡渲染失败")
			return scorecardUnavailable(c)
		}

		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(out)
	}
}

func scorecardUnavailable(c fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	return c.Status(fiber.StatusServiceUnavailable).
		SendString("Scorecard export is temporarily unavailable.")
}

// parseScorecardQuery 解析 played/total/score/tagline。非法或为负的计数
// 一律视作未提供，score 超出 0-100 回落到 0。
func parseScorecardQuery(c fiber.Ctx) scorecard.Request {
	req := scorecard.Request{Tagline: c.Query("tagline")}

	req.Played, req.HasPlayed = parseNonNegativeInt(c.Query("played"))
	req.Total, req.HasTotal = parseNonNegativeInt(c.Query("total"))

	if score, ok := parseNonNegativeInt(c.Query("score")); ok && score <= 100 {
		req.Score = score
	}

	return req
}

func parseNonNegativeInt(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}

func setSecurityHeaders(c fiber.Ctx) {
	c.Set("X-Content-Type-Options", "nosniff")
	c.Set("X-Frame-Options", "DENY")
	c.Set("X-XSS-Protection", "1; mode=block")
}
