package crawler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vnexpress-bot/config"
	"vnexpress-bot/internal/crawler"
)

// seenSet 测试用的内存去重集合
type seenSet map[string]bool

func (s seenSet) Exists(url string) (bool, error) {
	return s[url], nil
}

const listingHTML = `<!DOCTYPE html>
<html>
<body>
  <article class="item-news">
    <h3 class="title-news"><a href="%s/news-1.html">Bài một</a></h3>
  </article>
  <article class="item-news">
    <h3 class="title-news"><a href="%s/news-2.html">Bài hai</a></h3>
  </article>
  <article class="item-news">
    <h3 class="title-news"><a href="/news-3.html">Bài ba</a></h3>
  </article>
</body>
</html>`

const emptyListingHTML = `<!DOCTYPE html>
<html>
<body>
  <div class="no-news">Không có tin nào</div>
</body>
</html>`

const articleHTML = `<!DOCTYPE html>
<html>
<body>
  <h1 class="title-detail">Tiêu đề bài báo</h1>
  <p class="description">Đây là phần mô tả.</p>
  <p class="Normal">Đoạn văn thứ nhất.</p>
  <p class="Normal">Đoạn văn thứ hai.</p>
  <p class="other">Nội dung không liên quan.</p>
</body>
</html>`

const nonArticleHTML = `<!DOCTYPE html>
<html>
<body>
  <h1 class="video-title">Trang video</h1>
  <p class="description">Mô tả video.</p>
</body>
</html>`

func newTestSite(t *testing.T, seen seenSet) (*httptest.Server, *crawler.VNExpress) {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/tin-nong-p1", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, listingHTML, srv.URL, srv.URL)
	})
	mux.HandleFunc("/tin-nong-p2", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, emptyListingHTML)
	})
	mux.HandleFunc("/news-1.html", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, articleHTML)
	})
	mux.HandleFunc("/video-1.html", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, nonArticleHTML)
	})

	cfg := config.CrawlerConfig{SiteRoot: srv.URL, TimeoutSec: 5}
	return srv, crawler.NewVNExpress(cfg, seen)
}

func TestDiscoverListing(t *testing.T) {
	srv, c := newTestSite(t, seenSet{})

	urls, err := c.DiscoverListing(context.Background(), "tin-nong", 1)
	require.NoError(t, err)

	// 相对链接被补全为绝对地址
	assert.Equal(t, []string{
		srv.URL + "/news-1.html",
		srv.URL + "/news-2.html",
		srv.URL + "/news-3.html",
	}, urls)
}

func TestDiscoverListing_FiltersSeen(t *testing.T) {
	seen := seenSet{}
	srv, c := newTestSite(t, seen)
	seen[srv.URL+"/news-1.html"] = true
	seen[srv.URL+"/news-3.html"] = true

	urls, err := c.DiscoverListing(context.Background(), "tin-nong", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/news-2.html"}, urls)
}

func TestDiscoverListing_EmptyPage(t *testing.T) {
	_, c := newTestSite(t, seenSet{})

	// 没有任何标题的页面是正常的翻页终点,不是错误
	urls, err := c.DiscoverListing(context.Background(), "tin-nong", 2)
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestDiscoverListing_ServerDown(t *testing.T) {
	srv, c := newTestSite(t, seenSet{})
	srv.Close()

	_, err := c.DiscoverListing(context.Background(), "tin-nong", 1)
	assert.Error(t, err)
}

func TestExtract(t *testing.T) {
	srv, c := newTestSite(t, seenSet{})

	extracted, err := c.Extract(context.Background(), srv.URL+"/news-1.html")
	require.NoError(t, err)
	require.NotNil(t, extracted)

	assert.Equal(t, "Tiêu đề bài báo", extracted.Title)
	assert.Equal(t, "Đây là phần mô tả.", extracted.Excerpt)
	assert.Equal(t, "Đoạn văn thứ nhất. Đoạn văn thứ hai.", extracted.Body)
	assert.Equal(t, "Đây là phần mô tả.\nĐoạn văn thứ nhất. Đoạn văn thứ hai.", extracted.Content())
}

func TestExtract_NotAnArticle(t *testing.T) {
	srv, c := newTestSite(t, seenSet{})

	// 缺少标题元素的页面不符合文章模板,返回nil而非错误
	extracted, err := c.Extract(context.Background(), srv.URL+"/video-1.html")
	require.NoError(t, err)
	assert.Nil(t, extracted)
}

func TestExtract_NotFound(t *testing.T) {
	srv, c := newTestSite(t, seenSet{})

	_, err := c.Extract(context.Background(), srv.URL+"/missing.html")
	assert.Error(t, err)
}
