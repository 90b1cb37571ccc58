package controller

import (
	"context"
	"time"

	"github.com/andrewyi/domaincrawler/src/entity"
)

// 对单个domain执行完整的爬取，返回该domain的终态
type Controller interface {
	CrawlDomain(context.Context, entity.Seed) entity.DomainResult
}

// 写回存储，由dbstorage.SimpleDBStorage实现
type PageRecorder interface {
	RecordPage(ctx context.Context, domain string, pageURL string, content string) error
}

// 一次运行的爬取参数，创建后不再修改，按值传递给每个controller
type CrawlConfig struct {
	MaxPages        int           // 每个domain最多发起的下载次数
	DomainTimeout   time.Duration // 每个domain的时间预算，0表示不限制
	AllowSubdomains bool
}
