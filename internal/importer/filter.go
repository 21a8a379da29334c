package importer

import (
	"strings"

	"github.com/steam-top/steam-top/internal/steam"
)

// shouldExcludeType 判断应用类型是否命中排除清单；类型缺失时的取舍由
// excludeIfMissing 决定（默认保留）。
func shouldExcludeType(gameType string, excludeTypes []string, excludeIfMissing bool) bool {
	if gameType == "" {
		return excludeIfMissing
	}
	lowered := strings.ToLower(gameType)
	for _, excluded := range excludeTypes {
		if lowered == excluded {
			return true
		}
	}
	return false
}

// shouldExcludeTags 对 categories 与 genres 的描述文本做大小写不敏感的
// 子串匹配，命中任一排除标签即判定排除。排除清单需预先转为小写。
func shouldExcludeTags(categories, genres []steam.Descriptor, excludeTags []string) bool {
	return containsExcludedTag(categories, excludeTags) ||
		containsExcludedTag(genres, excludeTags)
}

func containsExcludedTag(descriptors []steam.Descriptor, excludeTags []string) bool {
	for _, d := range descriptors {
		desc := strings.ToLower(d.Description)
		if desc == "" {
			continue
		}
		for _, tag := range excludeTags {
			if tag != "" && strings.Contains(desc, tag) {
				return true
			}
		}
	}
	return false
}
