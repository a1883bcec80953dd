package store

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vnexpress-bot/internal/model"
)

// Store 已处理URL的持久化台账,防止重复抓取
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate 建表(幂等)
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&model.Article{})
}

// Exists 判断URL是否已处理过
func (s *Store) Exists(url string) (bool, error) {
	var count int64
	err := s.db.Model(&model.Article{}).Where("url = ?", url).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Upsert 写入文章记录,同URL覆盖旧行
func (s *Store) Upsert(article *model.Article) error {
	article.CrawledDate = time.Now()
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		UpdateAll: true,
	}).Create(article).Error
}

// Recent 按抓取时间倒序分页查询
func (s *Store) Recent(page, pageSize int) ([]model.Article, int64, error) {
	var total int64
	if err := s.db.Model(&model.Article{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var articles []model.Article
	err := s.db.Order("crawled_date DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&articles).Error

	return articles, total, err
}

// CountByCategory 各栏目的记录数统计
func (s *Store) CountByCategory() (map[string]int64, error) {
	type row struct {
		Category string
		Count    int64
	}

	var rows []row
	err := s.db.Model(&model.Article{}).
		Select("category, count(*) as count").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Category] = r.Count
	}
	return counts, nil
}
