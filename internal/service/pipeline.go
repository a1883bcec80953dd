package service

import (
	"context"
	"log"
	"path"
	"strings"
	"sync"
	"time"

	"vnexpress-bot/config"
	"vnexpress-bot/internal/model"
)

// Source 站点能力: 列表页发现 + 文章内容提取
type Source interface {
	DiscoverListing(ctx context.Context, category string, page int) ([]string, error)
	Extract(ctx context.Context, url string) (*model.Extracted, error)
}

// FeedSource RSS订阅源发现
type FeedSource interface {
	Discover(ctx context.Context, feedURL string) ([]string, error)
}

// SummaryService 正文 -> 摘要,失败返回空字符串
type SummaryService interface {
	Summarize(ctx context.Context, content string) string
}

// PublishService 单篇文章的下游推送
type PublishService interface {
	Publish(ctx context.Context, article *model.Article, summary string) error
}

// ArticleStore 成功发布后的持久化写入
type ArticleStore interface {
	Upsert(article *model.Article) error
}

// Pipeline 抓取周期编排: 栏目 × 页 × 文章
// 单页内文章并发处理(有界),栏目和页之间严格串行并插入间隔
type Pipeline struct {
	cfg        config.CrawlerConfig
	source     Source
	feeds      FeedSource
	summarizer SummaryService
	publisher  PublishService
	store      ArticleStore

	running sync.Mutex // 防止周期重叠执行
}

func NewPipeline(cfg config.CrawlerConfig, source Source, feeds FeedSource,
	summarizer SummaryService, publisher PublishService, store ArticleStore) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		source:     source,
		feeds:      feeds,
		summarizer: summarizer,
		publisher:  publisher,
		store:      store,
	}
}

// RunCycle 执行一个完整的抓取周期
// 任何单篇文章或单页的失败只影响自身,周期级异常记录日志后由下个周期自愈
func (p *Pipeline) RunCycle(ctx context.Context) {
	if !p.running.TryLock() {
		log.Println("[Pipeline] Cycle already running, skipping")
		return
	}
	defer p.running.Unlock()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Pipeline] Cycle failed: %v", r)
		}
	}()

	log.Println("[Pipeline] Starting article processing cycle...")

	for _, category := range p.cfg.Categories {
		select {
		case <-ctx.Done():
			return
		default:
		}

		log.Printf("[Pipeline] Processing category: %s", category)
		p.processCategory(ctx, category)
		p.pause(ctx, time.Duration(p.cfg.CategoryDelay)*time.Second)
	}

	for _, feedURL := range p.cfg.RSSFeeds {
		select {
		case <-ctx.Done():
			return
		default:
		}

		urls, err := p.feeds.Discover(ctx, feedURL)
		if err != nil {
			log.Printf("[Pipeline] Error reading feed %s: %v", feedURL, err)
			continue
		}

		log.Printf("[Pipeline] Processing feed: %s", feedURL)
		p.processBatch(ctx, feedCategory(feedURL), urls)
		p.pause(ctx, time.Duration(p.cfg.CategoryDelay)*time.Second)
	}

	log.Println("[Pipeline] Cycle completed successfully")
}

// processCategory 逐页发现并处理一个栏目
// 空页不中断翻页: 发现层把已处理的URL也过滤成空结果,
// 后面的页可能还有上个周期发布失败、需要重试的文章
func (p *Pipeline) processCategory(ctx context.Context, category string) {
	for page := 1; page <= p.cfg.TotalPages; page++ {
		urls, err := p.source.DiscoverListing(ctx, category, page)
		if err != nil {
			log.Printf("[Pipeline] Error getting URLs from %s page %d: %v", category, page, err)
			continue
		}

		p.processBatch(ctx, category, urls)
	}
}

// processBatch 有界并发处理一批文章URL
func (p *Pipeline) processBatch(ctx context.Context, category string, urls []string) {
	workers := p.cfg.NumWorkers
	if workers < 1 {
		workers = 1
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for _, articleURL := range urls {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(articleURL string) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				// 单篇文章的异常只跳过该篇
				if r := recover(); r != nil {
					log.Printf("[Pipeline] Error processing %s: %v", articleURL, r)
				}
			}()

			p.processArticle(ctx, articleURL, category)
			p.pause(ctx, time.Duration(p.cfg.ArticleDelay)*time.Second)
		}(articleURL)
	}

	wg.Wait()
}

// processArticle 提取 -> 摘要 -> 发布 -> 持久化
// 发布失败不写库,该URL会在下个周期重新发现
func (p *Pipeline) processArticle(ctx context.Context, articleURL, category string) {
	extracted, err := p.source.Extract(ctx, articleURL)
	if err != nil {
		log.Printf("[Pipeline] Error extracting content from %s: %v", articleURL, err)
		return
	}
	if extracted == nil {
		return
	}

	content := extracted.Content()
	if content == "" {
		return
	}

	summary := p.summarizer.Summarize(ctx, content)
	if summary == "" {
		log.Printf("[Pipeline] No summary produced for %s, skipping", articleURL)
		return
	}

	article := &model.Article{
		URL:           articleURL,
		Title:         extracted.Title,
		Category:      category,
		PublishedDate: time.Now(), // 页面不提供可靠的发布时间,记录观察时间
	}

	if err := p.publisher.Publish(ctx, article, summary); err != nil {
		log.Printf("[Pipeline] Error posting %s: %v", articleURL, err)
		return
	}

	article.Summary = summary
	if err := p.store.Upsert(article); err != nil {
		log.Printf("[Pipeline] Error persisting %s: %v", articleURL, err)
	}
}

func (p *Pipeline) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// feedCategory 从RSS地址推断栏目名,如 .../rss/tin-moi-nhat.rss -> tin-moi-nhat
func feedCategory(feedURL string) string {
	return strings.TrimSuffix(path.Base(feedURL), ".rss")
}
