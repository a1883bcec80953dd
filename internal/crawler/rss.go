package crawler

import (
	"context"
	"log"

	"github.com/mmcdole/gofeed"
)

// RSSDiscoverer 通过站点RSS源发现文章URL,作为列表页之外的补充入口
// VNExpress在 /rss/<栏目>.rss 提供各栏目的订阅源
type RSSDiscoverer struct {
	parser *gofeed.Parser
	seen   SeenChecker
}

func NewRSSDiscoverer(seen SeenChecker) *RSSDiscoverer {
	return &RSSDiscoverer{
		parser: gofeed.NewParser(),
		seen:   seen,
	}
}

// Discover 解析单个RSS源,返回未处理过的文章URL
func (d *RSSDiscoverer) Discover(ctx context.Context, feedURL string) ([]string, error) {
	parsed, err := d.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	var urls []string
	for _, item := range parsed.Items {
		if item.Link == "" {
			continue
		}

		crawled, err := d.seen.Exists(item.Link)
		if err != nil {
			log.Printf("[RSS] Error checking %s: %v", item.Link, err)
			continue
		}
		if !crawled {
			urls = append(urls, item.Link)
		}
	}

	return urls, nil
}
