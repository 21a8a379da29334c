package scorecard

import (
	"strings"
	"testing"
)

func TestReconcile(t *testing.T) {
	cases := []struct {
		name       string
		req        Request
		wantPlayed int
		wantTotal  int
		wantScore  int
	}{
		{
			name:       "played 与 total 齐全",
			req:        Request{Played: 5, HasPlayed: true, Total: 10, HasTotal: true},
			wantPlayed: 5, wantTotal: 10, wantScore: 50,
		},
		{
			name:       "played 超过 total 时截断",
			req:        Request{Played: 15, HasPlayed: true, Total: 10, HasTotal: true},
			wantPlayed: 10, wantTotal: 10, wantScore: 100,
		},
		{
			name:       "total 缺失时缺省为 100",
			req:        Request{Played: 40, HasPlayed: true},
			wantPlayed: 40, wantTotal: 100, wantScore: 40,
		},
		{
			name:       "total 为零按缺失处理",
			req:        Request{Played: 7, HasPlayed: true, Total: 0, HasTotal: true},
			wantPlayed: 7, wantTotal: 100, wantScore: 7,
		},
		{
			name:       "仅有 score 时反推 played",
			req:        Request{Score: 40},
			wantPlayed: 40, wantTotal: 100, wantScore: 40,
		},
		{
			name:       "score 按自定义 total 反推",
			req:        Request{Score: 50, Total: 20, HasTotal: true},
			wantPlayed: 10, wantTotal: 20, wantScore: 50,
		},
		{
			name:       "全部缺省",
			req:        Request{},
			wantPlayed: 0, wantTotal: 100, wantScore: 0,
		},
		{
			name:       "score 四舍五入",
			req:        Request{Played: 1, HasPlayed: true, Total: 3, HasTotal: true},
			wantPlayed: 1, wantTotal: 3, wantScore: 33,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			played, total, score := reconcile(tc.req)
			if played != tc.wantPlayed || total != tc.wantTotal || score != tc.wantScore {
				t.Fatalf("归一结果不符: got %d/%d score %d, want %d/%d score %d",
					played, total, score, tc.wantPlayed, tc.wantTotal, tc.wantScore)
			}
		})
	}
}

func TestNormalizeTagline(t *testing.T) {
	if got := normalizeTagline("  hello   brave\t\nworld  "); got != "hello brave world" {
		t.Fatalf("空白压缩不符: %q", got)
	}
	if got := normalizeTagline(""); got != "" {
		t.Fatalf("空串应保持为空: %q", got)
	}

	long := strings.Repeat("a", 100)
	if got := normalizeTagline(long); len([]rune(got)) != maxTaglineRunes {
		t.Fatalf("超长标语应被截断: %d", len([]rune(got)))
	}
}
