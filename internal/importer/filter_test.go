package importer

import (
	"testing"

	"github.com/steam-top/steam-top/internal/steam"
)

var testExcludeTypes = []string{"dlc", "demo", "tool", "application", "video", "music", "hardware", "advertising"}

func TestShouldExcludeType(t *testing.T) {
	testCases := []struct {
		name             string
		gameType         string
		excludeIfMissing bool
		want             bool
	}{
		{"game kept", "game", false, false},
		{"dlc excluded", "dlc", false, true},
		{"case insensitive", "DLC", false, true},
		{"missing kept by default", "", false, false},
		{"missing excluded when configured", "", true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := shouldExcludeType(tc.gameType, testExcludeTypes, tc.excludeIfMissing)
			if got != tc.want {
				t.Fatalf("type %q: got %v want %v", tc.gameType, got, tc.want)
			}
		})
	}
}

func TestShouldExcludeTagsMatchesSubstrings(t *testing.T) {
	excludeTags := []string{"utilities", "game development"}

	categories := []steam.Descriptor{{Description: "Steam Achievements"}}
	genres := []steam.Descriptor{{Description: "Action"}}
	if shouldExcludeTags(categories, genres, excludeTags) {
		t.Fatalf("无命中标签不应排除")
	}

	// 大小写不敏感的子串匹配：描述包含排除标签即可命中。
	genres = []steam.Descriptor{{Description: "Game Development Tools"}}
	if !shouldExcludeTags(categories, genres, excludeTags) {
		t.Fatalf("genre 命中子串应排除")
	}

	categories = []steam.Descriptor{{Description: "UTILITIES"}}
	genres = []steam.Descriptor{{Description: "Action"}}
	if !shouldExcludeTags(categories, genres, excludeTags) {
		t.Fatalf("category 命中应排除")
	}
}

func TestShouldExcludeTagsIgnoresEmptyDescriptors(t *testing.T) {
	excludeTags := []string{"utilities"}
	categories := []steam.Descriptor{{Description: ""}}
	if shouldExcludeTags(categories, nil, excludeTags) {
		t.Fatalf("空描述不应命中任何标签")
	}
}
