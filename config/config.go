package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Crawler  CrawlerConfig  `yaml:"crawler"`
	LLM      LLMConfig      `yaml:"llm"`
	Telegram TelegramConfig `yaml:"telegram"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type CrawlerConfig struct {
	SiteRoot      string   `yaml:"site_root"`      // 站点根地址
	Categories    []string `yaml:"categories"`     // 抓取的栏目
	RSSFeeds      []string `yaml:"rss_feeds"`      // 可选的RSS发现源
	TotalPages    int      `yaml:"total_pages"`    // 每个栏目抓取的页数
	NumWorkers    int      `yaml:"num_workers"`    // 单页文章的并发处理数
	TimeoutSec    int      `yaml:"timeout_sec"`    // HTTP请求超时(秒)
	ArticleDelay  int      `yaml:"article_delay"`  // 每篇文章之间的间隔(秒)
	CategoryDelay int      `yaml:"category_delay"` // 每个栏目之间的间隔(秒)
	CycleInterval string   `yaml:"cycle_interval"` // 抓取周期(cron表达式)
}

type LLMConfig struct {
	ApiURL      string  `yaml:"api_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	MaxRetries  int     `yaml:"max_retries"` // 摘要校验失败后的最大尝试次数
	ApiKey      string  `yaml:"-"`           // 仅从环境变量读取
}

type TelegramConfig struct {
	ApiURL   string `yaml:"api_url"`
	BotToken string `yaml:"-"` // 仅从环境变量读取
	ChatID   string `yaml:"-"`
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	// 默认配置
	cfg := &Config{
		Server: ServerConfig{
			Port: "8080",
			Mode: "release",
		},
		Database: DatabaseConfig{
			Path: "data/crawled_articles.db",
		},
		Crawler: CrawlerConfig{
			SiteRoot: "https://vnexpress.net",
			// 完整栏目: thoi-su, du-lich, the-gioi, kinh-doanh, khoa-hoc,
			// giai-tri, the-thao, phap-luat, giao-duc, suc-khoe, doi-song
			Categories:    []string{"tin-xem-nhieu", "tin-nong", "tin-tuc-24h"},
			TotalPages:    1,
			NumWorkers:    5,
			TimeoutSec:    10,
			ArticleDelay:  3,
			CategoryDelay: 5,
			CycleInterval: "@every 1h",
		},
		LLM: LLMConfig{
			ApiURL:      "https://api.groq.com/openai/v1",
			Model:       "mixtral-8x7b-32768",
			Temperature: 0.3,
			MaxTokens:   8192,
			MaxRetries:  3,
		},
		Telegram: TelegramConfig{
			ApiURL: "https://api.telegram.org",
		},
	}

	// 如果配置文件存在,读取配置
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else {
		log.Printf("配置文件不存在: %s, 使用默认配置", configPath)
	}

	// 环境变量覆盖配置
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		cfg.Server.Mode = mode
	}

	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	cfg.LLM.ApiKey = os.Getenv("GROQ_API_KEY")
	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.Telegram.ChatID = os.Getenv("TELEGRAM_CHAT_ID")

	return cfg, nil
}

// MissingEnv 返回缺失的必需环境变量
func (c *Config) MissingEnv() []string {
	var missing []string
	if c.LLM.ApiKey == "" {
		missing = append(missing, "GROQ_API_KEY")
	}
	if c.Telegram.BotToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if c.Telegram.ChatID == "" {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}
	return missing
}

// Timeout HTTP请求超时时间
func (c *CrawlerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// GetServerAddress 获取服务器监听地址
func (c *Config) GetServerAddress() string {
	// 如果端口是纯数字,加上冒号前缀
	if _, err := strconv.Atoi(c.Server.Port); err == nil {
		return ":" + c.Server.Port
	}
	return c.Server.Port
}
