package model

import (
	"strings"
	"time"
)

// Article 已抓取并发布的文章记录,以URL作为去重主键
type Article struct {
	URL           string    `gorm:"primaryKey;size:500" json:"url"`
	Title         string    `gorm:"size:500;not null" json:"title"`
	Category      string    `gorm:"size:100" json:"category"`
	PublishedDate time.Time `json:"published_date"`
	CrawledDate   time.Time `json:"crawled_date"`
	Summary       string    `gorm:"type:text;not null" json:"summary"`
}

// Extracted 从文章页面提取的原始内容
type Extracted struct {
	Title   string
	Excerpt string
	Body    string
}

// Content 摘要输入: 导语与正文拼接
func (e *Extracted) Content() string {
	return strings.TrimSpace(e.Excerpt + "\n" + e.Body)
}
