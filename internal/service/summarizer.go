package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"vnexpress-bot/config"
)

// 摘要指令模板: 4-10句越南语摘要,按时间顺序,不添加原文没有的信息
const summaryPrompt = `Hãy tóm tắt bài báo tiếng Việt sau đây, giữ nguyên các thông tin và ý chính quan trọng.

Yêu cầu khi tóm tắt:
- Độ dài: 4-10 câu
- Giữ nguyên các thông tin quan trọng như: thời gian, địa điểm, nhân vật chính
- Sắp xếp các sự kiện theo trình tự thời gian
- Sử dụng ngôn ngữ tự nhiên, dễ hiểu
- Không thêm thông tin không có trong bài gốc
- Chỉ trả lời bằng tiếng Việt`

// 摘要至少包含的句子数,少于该值视为无效并重试
const minSentences = 4

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Summarizer 调用生成服务产出摘要,带进程内缓存和有界重试
type Summarizer struct {
	cfg    config.LLMConfig
	client *http.Client

	mu    sync.Mutex
	cache map[string]string // 原文 -> 已接受的摘要
}

func NewSummarizer(cfg config.LLMConfig) *Summarizer {
	return &Summarizer{
		cfg:    cfg,
		client: &http.Client{},
		cache:  make(map[string]string),
	}
}

// Summarize 生成摘要,任何错误都收敛为空字符串而不是抛出
// 句子数不足时指数退避后重试,用尽次数后返回最好的一次结果
func (s *Summarizer) Summarize(ctx context.Context, content string) string {
	s.mu.Lock()
	if cached, ok := s.cache[content]; ok {
		s.mu.Unlock()
		return cached
	}
	s.mu.Unlock()

	var best string
	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := 500 * time.Millisecond << (attempt - 1)
			select {
			case <-ctx.Done():
				return best
			case <-time.After(backoff):
			}
		}

		summary, err := s.chat(ctx, content)
		if err != nil {
			log.Printf("[Summarizer] Generation failed: %v", err)
			continue
		}

		if sentenceCount(summary) < minSentences {
			log.Println("[Summarizer] Summary too short, retrying...")
			if len(summary) > len(best) {
				best = summary
			}
			continue
		}

		s.mu.Lock()
		s.cache[content] = summary
		s.mu.Unlock()
		return summary
	}

	return best
}

// chat 单次生成服务调用
func (s *Summarizer) chat(ctx context.Context, content string) (string, error) {
	reqBody := ChatRequest{
		Model: s.cfg.Model,
		Messages: []Message{
			{Role: "system", Content: summaryPrompt},
			{Role: "user", Content: content},
		},
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	}

	jsonBody, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, "POST",
		s.cfg.ApiURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.ApiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API返回错误 (%d): %s", resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", err
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// sentenceCount 按句号切分统计句子数
func sentenceCount(text string) int {
	return len(strings.Split(text, "."))
}
