package scorecard

import (
	"encoding/json"
	"os"
	"sort"
	"strconv"
)

// taglineTier 是一个分数档位：score 达到 threshold 即可使用其中任一标语。
type taglineTier struct {
	threshold int
	options   []string
}

// loadTiers 读取标语文件并按阈值从高到低排好序。文件缺失、不可读或结构
// 不符都按“没有档位”处理，渲染照常进行，只是标语行留空。
func loadTiers(path string) []taglineTier {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var decoded struct {
		Tiers map[string][]string `json:"tiers"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}

	tiers := make([]taglineTier, 0, len(decoded.Tiers))
	for key, options := range decoded.Tiers {
		threshold, err := strconv.Atoi(key)
		if err != nil || len(options) == 0 {
			continue
		}
		tiers = append(tiers, taglineTier{threshold: threshold, options: options})
	}

	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].threshold > tiers[j].threshold
	})
	return tiers
}

// pickTagline 返回分数所能达到的最高档位里的一条随机标语，没有任何档位
// 匹配时返回空串。
func pickTagline(tiers []taglineTier, score int, randIntn func(int) int) string {
	for _, tier := range tiers {
		if score >= tier.threshold {
			return tier.options[randIntn(len(tier.options))]
		}
	}
	return ""
}
