package scorecard

import (
	"math"
	"strings"
)

const maxTaglineRunes = 80

// Request 承载一次渲染的原始入参。Has* 标记区分“未提供”与“提供了零值”，
// 负数入参在解析阶段即视作未提供。
type Request struct {
	Played    int
	HasPlayed bool
	Total     int
	HasTotal  bool
	Score     int
	Tagline   string
}

// reconcile 把 played/total/score 三个可选入参归一成一组自洽的数值：
// played 与 total 同时有效时以它们为准重算 score；否则 total 缺省为 100，
// played 缺失时按 score 反推。返回值始终满足 0 <= played <= total。
func reconcile(req Request) (played, total, score int) {
	if req.HasPlayed && req.HasTotal && req.Total > 0 {
		total = req.Total
		played = req.Played
		if played > total {
			played = total
		}
		score = roundPercent(played, total)
		return played, total, score
	}

	total = 100
	if req.HasTotal && req.Total > 0 {
		total = req.Total
	}

	if req.HasPlayed {
		played = req.Played
		if played < 0 {
			played = 0
		}
		if played > total {
			played = total
		}
	} else {
		played = int(math.Round(float64(req.Score) / 100 * float64(total)))
	}

	return played, total, roundPercent(played, total)
}

func roundPercent(played, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(played) / float64(total) * 100))
}

// normalizeTagline 裁掉首尾空白、压缩连续空白为单个空格，并截断到 80 个
// 字符以内，避免超长标语撑破版面。
func normalizeTagline(raw string) string {
	collapsed := strings.Join(strings.Fields(raw), " ")
	runes := []rune(collapsed)
	if len(runes) > maxTaglineRunes {
		return string(runes[:maxTaglineRunes])
	}
	return collapsed
}
