package controller

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/andrewyi/domaincrawler/src/analyzer"
	"github.com/andrewyi/domaincrawler/src/downloader"
	"github.com/andrewyi/domaincrawler/src/entity"
	"github.com/andrewyi/domaincrawler/src/enum"
	"github.com/andrewyi/domaincrawler/src/util"
)

// 每个domain由一个goroutine串行处理：队列与visited set都只属于当前任务
// 页面按下载完成的顺序写入，每个页面解析后立即写入存储
type SimpleController struct {
	logger *log.Logger
	cfg    CrawlConfig

	downloader downloader.Downloader
	analyzer   analyzer.Analyzer
	recorder   PageRecorder
}

func NewSimpleController(cfg CrawlConfig, d downloader.Downloader, a analyzer.Analyzer, recorder PageRecorder, logger *log.Logger) Controller {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = enum.DefaultMaxPages
	}
	return &SimpleController{
		logger:     logger,
		cfg:        cfg,
		downloader: d,
		analyzer:   a,
		recorder:   recorder,
	}
}

func (c *SimpleController) CrawlDomain(ctx context.Context, seed entity.Seed) entity.DomainResult {
	var result = entity.DomainResult{
		Domain: seed.Domain,
		State:  enum.DomainStatePending,
	}
	logger := c.logger.WithField("domain", seed.Domain)

	seedURL, err := util.CanonicalURL(seed.URL)
	if err != nil {
		logger.WithError(err).WithField("url", seed.URL).Error("invalid seed url")
		result.State = enum.DomainStateFailed
		result.Remark = err.Error()
		return result
	}

	domainCtx := ctx
	if c.cfg.DomainTimeout > 0 {
		var cancel context.CancelFunc
		domainCtx, cancel = context.WithTimeout(ctx, c.cfg.DomainTimeout)
		defer cancel()
	}

	queue := []string{seedURL}
	visited := map[string]struct{}{seedURL: {}} // 已入队
	done := make(map[string]struct{})           // 已下载，包括重定向之后的url
	fetched := 0
	seedDone := false    // seed已经发起下载
	seedFetched := false // seed已经成功下载并解析

	result.State = enum.DomainStateInProgress
	for len(queue) > 0 {
		// 每次下载前检查取消与预算
		if err := domainCtx.Err(); err != nil {
			result.Remark = c.stopReason(ctx, err)
			logger.WithField("queued", len(queue)).Warn(result.Remark)
			break
		}
		if fetched >= c.cfg.MaxPages {
			result.Remark = "page budget exhausted"
			logger.WithField("queued", len(queue)).Info(result.Remark)
			break
		}

		u := queue[0]
		queue = queue[1:]
		if _, ok := done[u]; ok {
			// 之前某个链接重定向到了这里
			continue
		}
		done[u] = struct{}{}
		fetched++
		isSeed := !seedDone
		seedDone = true

		page := c.downloader.Download(domainCtx, u)
		if page.State != enum.PageStateSuccess {
			if domainCtx.Err() != nil {
				// 下载被中断，页面不记录，由下一轮循环处理退出
				continue
			}
			result.PagesSkipped++
			logger.WithField("url", u).WithField("kind", page.FailKind).Debug("fail to download page: " + page.Remark)

			// 只有seed失败才终止domain，其余页面（包括不可达的子域名、端口）只跳过
			if isSeed {
				result.State = enum.DomainStateFailed
				result.Remark = page.FailKind.String() + ": " + page.Remark
				logger.WithField("url", u).Warn("domain failed: " + result.Remark)
				return result
			}
			continue
		}

		// 重定向之后的url也算访问过；重定向到站外或已访问过的页面不记录
		if final, err := util.CanonicalURL(page.FinalURL); page.FinalURL != "" && err == nil && final != u {
			if !c.allowed(final, seed.Domain) {
				result.PagesSkipped++
				logger.WithField("url", u).WithField("final", final).Debug("redirected off domain, skipped")
				if isSeed {
					result.State = enum.DomainStateFailed
					result.Remark = "seed redirected off domain: " + final
					logger.Warn("domain failed: " + result.Remark)
					return result
				}
				continue
			}
			if _, ok := done[final]; ok {
				logger.WithField("url", u).WithField("final", final).Debug("redirected to visited page, dropped")
				continue
			}
			done[final] = struct{}{}
			visited[final] = struct{}{}
		}

		parsedPage := c.analyzer.Analyze(page)
		if parsedPage.State != enum.PageStateSuccess {
			result.PagesSkipped++
			logger.WithField("url", u).Warn("fail to parse page: " + parsedPage.Remark)
			if isSeed {
				result.State = enum.DomainStateFailed
				result.Remark = parsedPage.FailKind.String() + ": " + parsedPage.Remark
				return result
			}
			continue
		}
		if isSeed {
			seedFetched = true
		}

		// 写入失败只记录警告，继续爬取（页面内容在本轮丢失）
		pageURL := page.FinalURL
		if pageURL == "" {
			pageURL = u
		}
		if err := c.recorder.RecordPage(ctx, seed.Domain, pageURL, parsedPage.Text); err != nil {
			result.WriteFailures++
			logger.WithError(err).WithField("url", pageURL).Warn("fail to record page")
		} else {
			result.PagesRecorded++
		}

		for _, sub := range parsedPage.SubURLs {
			if !c.allowed(sub, seed.Domain) {
				continue
			}
			if _, ok := visited[sub]; ok {
				continue
			}
			visited[sub] = struct{}{}
			queue = append(queue, sub)
		}
	}

	if !seedFetched {
		result.State = enum.DomainStateFailed
		if result.Remark == "" {
			result.Remark = c.stopReason(ctx, domainCtx.Err())
		}
		logger.Warn("domain failed: " + result.Remark)
		return result
	}

	result.State = enum.DomainStateDone
	logger.WithFields(log.Fields{
		"recorded": result.PagesRecorded,
		"skipped":  result.PagesSkipped,
	}).Info("domain done")
	return result
}

func (c *SimpleController) allowed(u string, domain string) bool {
	d, err := util.GetDomain(u)
	if err != nil {
		return false
	}
	return util.HostMatches(d, domain, c.cfg.AllowSubdomains)
}

func (c *SimpleController) stopReason(runCtx context.Context, err error) string {
	switch {
	case runCtx.Err() != nil:
		return "run cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "domain time budget exhausted"
	case err != nil:
		return err.Error()
	default:
		return "seed page not fetched"
	}
}
