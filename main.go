package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"vnexpress-bot/config"
	"vnexpress-bot/internal/crawler"
	"vnexpress-bot/internal/handler"
	"vnexpress-bot/internal/scheduler"
	"vnexpress-bot/internal/service"
	"vnexpress-bot/internal/store"
)

func main() {
	// 加载.env
	godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// 必需的凭据缺失时直接退出
	if missing := cfg.MissingEnv(); len(missing) > 0 {
		fmt.Printf("Missing required environment variables: %s\n", strings.Join(missing, ", "))
		fmt.Println("Please add them to your .env file")
		os.Exit(1)
	}

	// 初始化数据库
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatal("Failed to create data directory:", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.Database.Path), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect database:", err)
	}

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// 初始化服务
	site := crawler.NewVNExpress(cfg.Crawler, st)
	feeds := crawler.NewRSSDiscoverer(st)
	summarizer := service.NewSummarizer(cfg.LLM)
	publisher := service.NewPublisher(cfg.Telegram)
	pipeline := service.NewPipeline(cfg.Crawler, site, feeds, summarizer, publisher, st)

	log.Println("Starting VNExpress news crawler...")

	// 启动后立即跑一轮,之后按周期执行
	go pipeline.RunCycle(context.Background())

	sched := scheduler.NewScheduler(pipeline, cfg.Crawler)
	sched.Start()
	defer sched.Stop()

	// 初始化Gin
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()

	// 注册路由
	h := handler.NewHandler(st, pipeline)
	h.SetScheduler(sched)
	h.RegisterRoutes(r)

	// 启动服务
	log.Println("Server starting on", cfg.GetServerAddress())
	r.Run(cfg.GetServerAddress())
}
