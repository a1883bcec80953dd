package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"vnexpress-bot/config"
	"vnexpress-bot/internal/model"
)

var categoryEmojis = map[string]string{
	"thoi-su":       "📰",
	"du-lich":       "✈️",
	"the-gioi":      "🌍",
	"kinh-doanh":    "💼",
	"khoa-hoc":      "🔬",
	"giai-tri":      "🎭",
	"the-thao":      "⚽",
	"phap-luat":     "⚖️",
	"giao-duc":      "📚",
	"suc-khoe":      "🏥",
	"doi-song":      "🌟",
	"tin-xem-nhieu": "🏆",
	"tin-tuc-24h":   "🕒",
	"tin-nong":      "🔥",
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description"`
}

// Publisher 将文章和摘要推送到Telegram频道
type Publisher struct {
	cfg    config.TelegramConfig
	client *http.Client
}

func NewPublisher(cfg config.TelegramConfig) *Publisher {
	return &Publisher{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// Publish 发送单条文章消息,失败返回错误由调用方决定是否跳过持久化
func (p *Publisher) Publish(ctx context.Context, article *model.Article, summary string) error {
	emoji, ok := categoryEmojis[article.Category]
	if !ok {
		emoji = "📄"
	}

	text := fmt.Sprintf(
		"%s *%s*\n\n"+
			"📝 *Tóm tắt:*\n%s\n\n"+
			"🔗 [Đọc thêm](%s)\n"+
			"📂 Chuyên mục: %s\n"+
			"🕒 %s",
		emoji, article.Title, summary, article.URL,
		article.Category, article.PublishedDate.Format("2006-01-02 15:04:05"),
	)

	reqBody := sendMessageRequest{
		ChatID:                p.cfg.ChatID,
		Text:                  text,
		ParseMode:             "Markdown",
		DisableWebPagePreview: false,
	}

	jsonBody, _ := json.Marshal(reqBody)

	url := fmt.Sprintf("%s/bot%s/sendMessage", p.cfg.ApiURL, p.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var sendResp sendMessageResponse
	if err := json.Unmarshal(body, &sendResp); err != nil {
		return fmt.Errorf("解析响应失败: %v", err)
	}

	if !sendResp.Ok {
		return fmt.Errorf("API返回错误 (%d): %s", resp.StatusCode, sendResp.Description)
	}

	return nil
}
