package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vnexpress-bot/config"
	"vnexpress-bot/internal/service"
)

const (
	shortSummary = "Câu một. Câu hai."
	fullSummary  = "Câu một. Câu hai. Câu ba. Câu bốn. Câu năm."
)

// newChatStub 按给定顺序返回摘要响应,记录调用次数
func newChatStub(t *testing.T, replies []string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req service.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Messages)

		n := int(calls.Add(1)) - 1
		reply := replies[len(replies)-1]
		if n < len(replies) {
			reply = replies[n]
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func newSummarizer(srv *httptest.Server) *service.Summarizer {
	return service.NewSummarizer(config.LLMConfig{
		ApiURL:      srv.URL,
		ApiKey:      "test-key",
		Model:       "mixtral-8x7b-32768",
		Temperature: 0.3,
		MaxTokens:   8192,
		MaxRetries:  3,
	})
}

func TestSummarize_RetriesShortSummary(t *testing.T) {
	srv, calls := newChatStub(t, []string{shortSummary, fullSummary})
	s := newSummarizer(srv)

	summary := s.Summarize(context.Background(), "nội dung bài báo")
	assert.Equal(t, fullSummary, summary)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSummarize_BoundedRetries(t *testing.T) {
	srv, calls := newChatStub(t, []string{shortSummary})
	s := newSummarizer(srv)

	// 次数用尽后返回最好的一次结果,而不是无限重试
	summary := s.Summarize(context.Background(), "nội dung bài báo")
	assert.Equal(t, shortSummary, summary)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSummarize_CacheHit(t *testing.T) {
	srv, calls := newChatStub(t, []string{fullSummary})
	s := newSummarizer(srv)

	first := s.Summarize(context.Background(), "nội dung bài báo")
	second := s.Summarize(context.Background(), "nội dung bài báo")

	assert.Equal(t, fullSummary, first)
	assert.Equal(t, fullSummary, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSummarize_DistinctContentNotCached(t *testing.T) {
	srv, calls := newChatStub(t, []string{fullSummary})
	s := newSummarizer(srv)

	s.Summarize(context.Background(), "bài thứ nhất")
	s.Summarize(context.Background(), "bài thứ hai")

	assert.Equal(t, int32(2), calls.Load())
}

func TestSummarize_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := newSummarizer(srv)

	// 失败收敛为空字符串
	summary := s.Summarize(context.Background(), "nội dung bài báo")
	assert.Empty(t, summary)
}
