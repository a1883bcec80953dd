package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"vnexpress-bot/internal/service"
	"vnexpress-bot/internal/store"
)

type Handler struct {
	store     *store.Store
	pipeline  *service.Pipeline
	scheduler interface {
		GetNextRunTime() time.Time
	}
}

func NewHandler(st *store.Store, pipeline *service.Pipeline) *Handler {
	return &Handler{
		store:    st,
		pipeline: pipeline,
	}
}

// SetScheduler 设置调度器引用
func (h *Handler) SetScheduler(scheduler interface {
	GetNextRunTime() time.Time
}) {
	h.scheduler = scheduler
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/articles", h.ListArticles)
		api.GET("/status", h.GetStatus)
		api.POST("/crawl", h.TriggerCrawl)
	}
}

// ListArticles 按抓取时间倒序分页返回已处理文章
func (h *Handler) ListArticles(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize := 20

	articles, total, err := h.store.Recent(page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  articles,
		"total": total,
		"page":  page,
	})
}

// GetStatus 系统状态: 各栏目统计与下次抓取时间
func (h *Handler) GetStatus(c *gin.Context) {
	counts, err := h.store.CountByCategory()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var total int64
	for _, n := range counts {
		total += n
	}

	resp := gin.H{
		"total_articles": total,
		"by_category":    counts,
	}

	if h.scheduler != nil {
		resp["next_run_time"] = h.scheduler.GetNextRunTime()
	}

	c.JSON(http.StatusOK, resp)
}

// TriggerCrawl 手动触发一个抓取周期
func (h *Handler) TriggerCrawl(c *gin.Context) {
	go h.pipeline.RunCycle(context.Background())
	c.JSON(http.StatusOK, gin.H{"message": "crawl started"})
}
