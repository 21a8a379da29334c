package steam

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTopGamesParsesRanks(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != chartsPath {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"response":{"ranks":[
			{"rank":1,"appid":730,"concurrent_in_game":900000,"peak_in_game":1200000},
			{"rank":2,"appid":0,"concurrent_in_game":1,"peak_in_game":2},
			{"rank":3,"appid":570,"concurrent_in_game":500000,"peak_in_game":700000}
		]}}`))
	}))
	defer upstream.Close()

	client := NewChartsClient(NewHTTPClient(5*time.Second), upstream.URL)
	entries, err := client.TopGames(context.Background())
	if err != nil {
		t.Fatalf("TopGames 返回错误: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("appid 为空的条目应被剔除, got %d", len(entries))
	}
	if entries[0].AppID != 730 || entries[0].ConcurrentInGame != 900000 {
		t.Fatalf("首条解析不符: %+v", entries[0])
	}
	if entries[1].AppID != 570 || entries[1].PeakInGame != 700000 {
		t.Fatalf("次条解析不符: %+v", entries[1])
	}
}

func TestTopGamesRejectsInvalidShape(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"非 JSON", "<html>error</html>"},
		{"缺少 response", `{"oops":true}`},
		{"缺少 ranks", `{"response":{}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer upstream.Close()

			client := NewChartsClient(NewHTTPClient(5*time.Second), upstream.URL)
			if _, err := client.TopGames(context.Background()); err == nil {
				t.Fatalf("非法结构应返回错误")
			}
		})
	}
}

func TestTopGamesRejectsUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer upstream.Close()

	client := NewChartsClient(NewHTTPClient(5*time.Second), upstream.URL)
	_, err := client.TopGames(context.Background())
	if err == nil {
		t.Fatalf("非 2xx 应返回错误")
	}
	if errors.Is(err, ErrInvalidChartsResponse) {
		t.Fatalf("传输错误不应归类为结构错误: %v", err)
	}
}
