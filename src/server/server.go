package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/andrewyi/domaincrawler/src/analyzer"
	"github.com/andrewyi/domaincrawler/src/config"
	"github.com/andrewyi/domaincrawler/src/controller"
	"github.com/andrewyi/domaincrawler/src/core"
	"github.com/andrewyi/domaincrawler/src/dbstorage"
	"github.com/andrewyi/domaincrawler/src/downloader"
	"github.com/andrewyi/domaincrawler/src/entity"
	"github.com/andrewyi/domaincrawler/src/routingpool"
)

type Server struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *log.Logger
	config *config.Config
	out    io.Writer // 汇总表格输出

	dbStorage *dbstorage.SimpleDBStorage
}

func NewServer() *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		ctx:    ctx,
		cancel: cancel,
		out:    os.Stdout,
	}
}

func (s *Server) initLog() {
	var logger = log.New()
	if s.config.Log.Format == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
	}
	logger.SetOutput(os.Stdout)

	if s.config.Log.Context {
		logger.SetReportCaller(true)
	}

	if logLevel, err := log.ParseLevel(s.config.Log.Level); err != nil {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(logLevel)
	}
	s.logger = logger
}

// 初始化日志并打开存储，存储不可用属于配置错误，直接返回
func (s *Server) Setup(cfg *config.Config) error {
	s.config = cfg
	s.initLog()

	dbStorage, err := dbstorage.NewSimpleDBStorage(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("fail to open store: %w", err)
	}
	s.dbStorage = dbStorage
	return nil
}

func (s *Server) setupFromCli(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.GlobalString("config"))
	if err != nil {
		return fmt.Errorf("fail to load config, err: %w", err)
	}
	return s.Setup(cfg)
}

// crawl命令
func (s *Server) Start(ctx *cli.Context) error {
	if err := s.setupFromCli(ctx); err != nil {
		return err
	}
	defer s.Stop()

	if n := ctx.Int("batch"); n > 0 {
		s.config.Frontier.BatchSize = uint32(n)
	}

	go s.wait()

	summary, err := s.Run(s.ctx)
	if err != nil {
		s.logger.WithError(err).Error("crawl run aborted")
		return err
	}
	renderSummary(s.out, summary)
	return nil
}

// 收到中断信号后取消运行，正在进行的下载会被中断
func (s *Server) wait() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(c)
	select {
	case <-c:
		s.logger.Warn("interrupt signal, server gonna stop")
		s.cancel()
	case <-s.ctx.Done():
	}
}

func (s *Server) Stop() {
	s.cancel()
	if s.dbStorage != nil {
		if err := s.dbStorage.Close(); err != nil {
			s.logger.WithError(err).Warn("fail to close store")
		}
	}
}

func (s *Server) crawlConfig() controller.CrawlConfig {
	return controller.CrawlConfig{
		MaxPages:        int(s.config.Controller.MaxPages),
		DomainTimeout:   time.Duration(s.config.Controller.DomainTimeout) * time.Second,
		AllowSubdomains: s.config.Controller.AllowSubdomains,
	}
}

// 一次完整的爬取：frontier -> seeds -> 协程池并发爬取各domain -> 汇总
// 只有frontier或seed查询失败会终止整个运行，单个domain的失败体现在summary中
func (s *Server) Run(ctx context.Context) (entity.RunSummary, error) {
	var summary entity.RunSummary
	cfg := s.config

	if cfg.Core.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Core.RunTimeout)*time.Second)
		defer cancel()
	}

	domains, err := core.NewFrontierBuilder(s.dbStorage).Build(ctx, int(cfg.Frontier.BatchSize))
	if err != nil {
		return summary, fmt.Errorf("fail to build frontier: %w", err)
	}
	summary.DomainsTotal = len(domains)
	if len(domains) == 0 {
		s.logger.Info("no undone domain, nothing to crawl")
		return summary, nil
	}

	seeds, err := s.dbStorage.LookupSeeds(ctx, domains)
	if err != nil {
		return summary, fmt.Errorf("fail to lookup seeds: %w", err)
	}
	s.logger.WithField("domains", len(seeds)).Info("crawl run started")

	crawlCfg := s.crawlConfig()
	// 有界队列，worker都在忙时投递方阻塞
	seedQueue := make(chan entity.Seed, cfg.Core.DomainQueueSize)
	resultQueue := make(chan entity.DomainResult, len(seeds))

	pool := routingpool.NewSimpleRoutingPool(
		ctx,
		cfg.Controller.Worker,
		func(ctx context.Context, id uint32) {
			d := downloader.NewSimpleDownloader(cfg.Downloader.Timeout, cfg.Downloader.Retry, cfg.Downloader.UserAgent, cfg.Downloader.MaxBodySize)
			c := controller.NewSimpleController(crawlCfg, d, analyzer.NewSimpleAnalyzer(), s.dbStorage, s.logger)
			for {
				select {
				case <-ctx.Done():
					return
				case seed, ok := <-seedQueue:
					if !ok || ctx.Err() != nil {
						return
					}
					s.logger.WithField("domain", seed.Domain).WithField("worker", id).Debug("domain crawl started")
					resultQueue <- c.CrawlDomain(ctx, seed)
				}
			}
		},
	)
	if err = pool.Start(); err != nil {
		return summary, fmt.Errorf("fail to start worker pool: %w", err)
	}

feed:
	for _, seed := range seeds {
		select {
		case seedQueue <- seed:
		case <-ctx.Done():
			break feed
		}
	}
	close(seedQueue)

	pool.Stop()
	close(resultQueue)

	for r := range resultQueue {
		summary.Add(r)
	}
	summary.DomainsNotStarted = summary.DomainsTotal - len(summary.Results)
	summary.Interrupted = ctx.Err() != nil

	entry := s.logger.WithFields(log.Fields{
		"domains_done":        summary.DomainsDone,
		"domains_failed":      summary.DomainsFailed,
		"domains_not_started": summary.DomainsNotStarted,
		"pages_recorded":      summary.PagesRecorded,
		"pages_skipped":       summary.PagesSkipped,
		"write_failures":      summary.WriteFailures,
	})
	if summary.Interrupted {
		entry.Warn("crawl run interrupted")
	} else {
		entry.Info("crawl run finished")
	}
	return summary, nil
}
