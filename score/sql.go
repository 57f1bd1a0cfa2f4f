package score

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ScoreRecord 成绩表
type ScoreRecord struct {
	ID        uint `gorm:"primaryKey"`
	Name      string
	Earnings  float64
	CreatedAt time.Time
}

// SQLStore 基于 SQLite 的成绩存储
type SQLStore struct {
	db *gorm.DB
}

// OpenSQLStore 打开（或创建）数据库并迁移表结构；path 为空时使用内存库
func OpenSQLStore(path string) (*SQLStore, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open score db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("score db handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&ScoreRecord{}); err != nil {
		return nil, fmt.Errorf("migrate score db: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Record(name string, earnings float64) error {
	if err := s.db.Create(&ScoreRecord{Name: name, Earnings: earnings}).Error; err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

// List 按写入顺序返回全部成绩
func (s *SQLStore) List() ([]Entry, error) {
	var rows []ScoreRecord
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, Entry{Name: r.Name, Earnings: r.Earnings})
	}
	return out, nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
