package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"vnexpress-bot/config"
	"vnexpress-bot/internal/service"
)

type Scheduler struct {
	cron         *cron.Cron
	pipeline     *service.Pipeline
	config       config.CrawlerConfig
	cycleEntryID cron.EntryID
}

func NewScheduler(pipeline *service.Pipeline, cfg config.CrawlerConfig) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		pipeline: pipeline,
		config:   cfg,
	}
}

func (s *Scheduler) Start() {
	// 周期性抓取任务
	s.cycleEntryID, _ = s.cron.AddFunc(s.config.CycleInterval, func() {
		log.Println("[Cron] Running crawl cycle...")
		s.pipeline.RunCycle(context.Background())
	})

	s.cron.Start()
	log.Printf("[Cron] Scheduler started (interval: %s)", s.config.CycleInterval)
}

// GetNextRunTime 获取下次抓取时间
func (s *Scheduler) GetNextRunTime() time.Time {
	entry := s.cron.Entry(s.cycleEntryID)
	return entry.Next
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
