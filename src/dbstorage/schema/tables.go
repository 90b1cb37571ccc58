// 两张表之间没有外键，通过domain的值关联
// known_domains由导入任务写入，scraped_pages由爬虫追加写入，均不更新、不删除
package schema

import (
	"time"
)

type KnownDomain struct {
	ID          uint64 `xorm:"bigint pk autoincr 'id'"`
	CompanyName string `xorm:"text 'company_name'"`
	Domain      string `xorm:"varchar(256) notnull unique(uk_domain) 'domain'"`
	SeedURL     string `xorm:"varchar(2048) 'seed_url'"`
	Category    string `xorm:"text 'category'"`
}

func (d *KnownDomain) TableName() string {
	return "known_domains"
}

// NOTE: (domain, page_url)不加唯一约束，同一页面可以被记录多次
type ScrapedPage struct {
	ID        uint64    `xorm:"bigint pk autoincr 'id'"`
	Domain    string    `xorm:"varchar(256) notnull index(idx_pages_domain) 'domain'"`
	PageURL   string    `xorm:"varchar(2048) notnull 'page_url'"`
	Content   string    `xorm:"text 'content'"`
	ScrapedAt time.Time `xorm:"created 'scraped_at'"`
}

func (p *ScrapedPage) TableName() string {
	return "scraped_pages"
}
