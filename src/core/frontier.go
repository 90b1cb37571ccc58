package core

import (
	"context"
	"fmt"
)

// 由dbstorage.SimpleDBStorage实现
type UndoneLister interface {
	ListUndoneDomains(ctx context.Context, limit int) ([]string, error)
}

// 计算一次运行要爬取的domain集合：known_domains中尚无任何页面记录的domain，最多limit个
// 只读，无副作用
type FrontierBuilder struct {
	store UndoneLister
}

func NewFrontierBuilder(store UndoneLister) *FrontierBuilder {
	return &FrontierBuilder{store: store}
}

func (b *FrontierBuilder) Build(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}

	domains, err := b.store.ListUndoneDomains(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("fail to list undone domains: %w", err)
	}

	// 存储层已经保证唯一，这里保证返回的是集合且不超过limit
	seen := make(map[string]struct{}, len(domains))
	frontier := make([]string, 0, len(domains))
	for _, d := range domains {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		frontier = append(frontier, d)
		if len(frontier) == limit {
			break
		}
	}
	return frontier, nil
}
