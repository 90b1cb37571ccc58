// 将某个domain已记录的页面内容导出为文本文件，交给外部的分析步骤使用
// 每个页面一段，段之间空一行
package filestorage

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidDomain = errors.New("invalid domain")

type SimpleFileStorage struct {
	location string
}

func NewSimpleFileStorage(location string) FileStorage {
	return &SimpleFileStorage{
		location: location,
	}
}

// 以domain作为文件名，重复导出会覆盖
func (s *SimpleFileStorage) Store(domain string, contents []string) (string, error) {
	if domain == "" || strings.ContainsAny(domain, `/\`) || domain == "." || domain == ".." {
		return "", ErrInvalidDomain
	}

	if err := os.MkdirAll(s.location, 0750); err != nil {
		return "", err
	}

	fp := filepath.Join(s.location, domain+".txt")
	f, err := os.Create(fp)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, c := range contents {
		if i > 0 {
			if _, err = w.WriteString("\n\n"); err != nil {
				return "", err
			}
		}
		if _, err = w.WriteString(c); err != nil {
			return "", err
		}
	}
	if _, err = w.WriteString("\n"); err != nil {
		return "", err
	}
	if err = w.Flush(); err != nil {
		return "", err
	}
	return fp, nil
}
