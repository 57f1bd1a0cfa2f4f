// Package score 持久化每局成绩（玩家名, 收入），并为结束画面提供排行。
package score

import (
	"cmp"
	"fmt"
	"slices"

	"shadowtaxi/config"
)

// Entry 一条成绩
type Entry struct {
	Name     string  `json:"name"`
	Earnings float64 `json:"earnings"`
}

// Store 成绩存储，Record 满足 sim.ScoreRecorder
type Store interface {
	Record(name string, earnings float64) error
	List() ([]Entry, error)
	Close() error
}

// New 按配置创建存储
func New(cfg config.ScoreConfig) (Store, error) {
	switch cfg.Type {
	case "", "file":
		return NewFileStore(cfg.File), nil
	case "sqlite":
		return OpenSQLStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown score store type: %s", cfg.Type)
	}
}

// Top 按收入降序取前 n 条，收入相同保持原顺序
func Top(entries []Entry, n int) []Entry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return cmp.Compare(b.Earnings, a.Earnings)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
