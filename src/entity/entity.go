package entity

import (
	"github.com/andrewyi/domaincrawler/src/enum"
)

// 一个待爬取的domain以及起始url
type Seed struct {
	Domain string
	URL    string
}

// 保存了下载的内容
type PageInfo struct {
	URL         string // 请求的url
	FinalURL    string // 跟随重定向之后的url，用于解析相对链接
	StatusCode  int
	ContentType string
	State       uint32
	FailKind    enum.FailKind
	Remark      string // error description, if any
	Content     string
}

// 保存了分析后的内容，Text为页面可见文本，SubURLs为页面内的绝对链接（已去重、保持出现顺序）
type ParsedPageInfo struct {
	URL      string
	State    uint32
	FailKind enum.FailKind
	Remark   string
	Text     string
	SubURLs  []string
}

// 单个domain的爬取结果
type DomainResult struct {
	Domain        string
	State         enum.DomainState
	PagesRecorded int
	PagesSkipped  int
	WriteFailures int
	Remark        string
}

// 一次运行的汇总
type RunSummary struct {
	DomainsTotal      int
	DomainsDone       int
	DomainsFailed     int
	DomainsNotStarted int
	PagesRecorded     int
	PagesSkipped      int
	WriteFailures     int
	Interrupted       bool // 运行被取消或超时
	Results           []DomainResult
}

func (s *RunSummary) Add(r DomainResult) {
	switch r.State {
	case enum.DomainStateDone:
		s.DomainsDone++
	case enum.DomainStateFailed:
		s.DomainsFailed++
	}
	s.PagesRecorded += r.PagesRecorded
	s.PagesSkipped += r.PagesSkipped
	s.WriteFailures += r.WriteFailures
	s.Results = append(s.Results, r)
}
