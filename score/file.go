package score

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// FileStore 每局一行 "name,earnings" 追加到文本文件
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Record 追加一行成绩
func (s *FileStore) Record(name string, earnings float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create score dir: %w", err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open score file: %w", err)
	}
	defer f.Close()

	name = strings.ReplaceAll(name, ",", " ")
	line := name + "," + strconv.FormatFloat(earnings, 'f', 2, 64) + "\n"
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write score: %w", err)
	}
	return nil
}

// List 读取全部成绩，跳过无法解析的行；文件不存在返回空
func (s *FileStore) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open score file: %w", err)
	}
	defer f.Close()

	var out []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		name, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), ",")
		if !ok {
			continue
		}
		earnings, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			continue
		}
		out = append(out, Entry{Name: name, Earnings: earnings})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read score file: %w", err)
	}
	return out, nil
}

func (s *FileStore) Close() error { return nil }
