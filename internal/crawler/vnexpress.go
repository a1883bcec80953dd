package crawler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"vnexpress-bot/config"
	"vnexpress-bot/internal/model"
)

// SeenChecker 候选URL入队前的去重检查
type SeenChecker interface {
	Exists(url string) (bool, error)
}

// VNExpress 抓取VNExpress站点的列表页和文章页
type VNExpress struct {
	root   string
	client *http.Client
	seen   SeenChecker
}

func NewVNExpress(cfg config.CrawlerConfig, seen SeenChecker) *VNExpress {
	return &VNExpress{
		root:   strings.TrimRight(cfg.SiteRoot, "/"),
		client: &http.Client{Timeout: cfg.Timeout()},
		seen:   seen,
	}
}

// DiscoverListing 抓取栏目列表页,返回未处理过的文章URL
// 页面没有任何标题时返回空切片,表示该栏目已翻到底
func (c *VNExpress) DiscoverListing(ctx context.Context, category string, page int) ([]string, error) {
	pageURL := fmt.Sprintf("%s/%s-p%d", c.root, category, page)

	doc, err := c.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	titles := doc.Find(".title-news")
	if titles.Length() == 0 {
		log.Printf("[Crawler] No news found in %s", pageURL)
		return []string{}, nil
	}

	var urls []string
	titles.Each(func(_ int, title *goquery.Selection) {
		href, ok := title.Find("a").First().Attr("href")
		if !ok || href == "" {
			return
		}

		articleURL := c.resolveURL(href)
		crawled, err := c.seen.Exists(articleURL)
		if err != nil {
			log.Printf("[Crawler] Error checking %s: %v", articleURL, err)
			return
		}
		if !crawled {
			urls = append(urls, articleURL)
		}
	})

	return urls, nil
}

// Extract 提取文章标题、导语和正文
// 页面不符合文章模板(缺少标题元素)时返回nil,属于正常跳过
func (c *VNExpress) Extract(ctx context.Context, articleURL string) (*model.Extracted, error) {
	doc, err := c.fetch(ctx, articleURL)
	if err != nil {
		return nil, err
	}

	title := doc.Find("h1.title-detail").First()
	if title.Length() == 0 {
		return nil, nil
	}

	excerpt := strings.TrimSpace(doc.Find("p.description").First().Text())

	var paragraphs []string
	doc.Find("p.Normal").Each(func(_ int, p *goquery.Selection) {
		paragraphs = append(paragraphs, strings.TrimSpace(p.Text()))
	})

	return &model.Extracted{
		Title:   strings.TrimSpace(title.Text()),
		Excerpt: excerpt,
		Body:    strings.Join(paragraphs, " "),
	}, nil
}

func (c *VNExpress) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

// resolveURL 相对链接补全为绝对地址
func (c *VNExpress) resolveURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return href
	}
	return c.root + "/" + strings.TrimLeft(href, "/")
}
