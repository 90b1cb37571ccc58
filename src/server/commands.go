package server

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/urfave/cli.v1"

	"github.com/andrewyi/domaincrawler/src/core"
	"github.com/andrewyi/domaincrawler/src/filestorage"
)

var errMissingFlag = errors.New("missing required flag")

// frontier命令：打印下一次运行将要爬取的domain，不做任何写入
func (s *Server) Frontier(ctx *cli.Context) error {
	if err := s.setupFromCli(ctx); err != nil {
		return err
	}
	defer s.Stop()

	limit := int(s.config.Frontier.BatchSize)
	if ctx.IsSet("batch") {
		limit = ctx.Int("batch")
	}

	domains, err := core.NewFrontierBuilder(s.dbStorage).Build(s.ctx, limit)
	if err != nil {
		return err
	}
	seeds, err := s.dbStorage.LookupSeeds(s.ctx, domains)
	if err != nil {
		return err
	}
	renderDomains(s.out, seeds)
	return nil
}

// import命令：从csv导入known_domains
func (s *Server) Import(ctx *cli.Context) error {
	csvPath := ctx.String("csv")
	if csvPath == "" {
		return fmt.Errorf("%w: --csv", errMissingFlag)
	}
	if err := s.setupFromCli(ctx); err != nil {
		return err
	}
	defer s.Stop()

	result, err := core.ImportKnownDomainsFile(s.ctx, s.logger, s.dbStorage, csvPath, core.ImportColumns{
		URL:      s.config.Import.DomainURLColumn,
		Name:     s.config.Import.NameColumn,
		Category: s.config.Import.CategoryColumn,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "inserted %d, skipped %d, invalid %d\n", result.Inserted, result.Skipped, result.Invalid)
	return nil
}

// show命令：打印某个domain已记录的页面内容
func (s *Server) Show(ctx *cli.Context) error {
	domain := strings.TrimSpace(ctx.String("domain"))
	if domain == "" {
		return fmt.Errorf("%w: --domain", errMissingFlag)
	}
	if err := s.setupFromCli(ctx); err != nil {
		return err
	}
	defer s.Stop()

	contents, err := s.dbStorage.PageContents(s.ctx, domain)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, strings.Join(contents, "\n\n"))
	return nil
}

// export命令：将某个domain的页面内容写入storage.location下的文本文件
func (s *Server) Export(ctx *cli.Context) error {
	domain := strings.TrimSpace(ctx.String("domain"))
	if domain == "" {
		return fmt.Errorf("%w: --domain", errMissingFlag)
	}
	if err := s.setupFromCli(ctx); err != nil {
		return err
	}
	defer s.Stop()

	fp, err := s.exportDomain(domain)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, fp)
	return nil
}

func (s *Server) exportDomain(domain string) (string, error) {
	contents, err := s.dbStorage.PageContents(s.ctx, domain)
	if err != nil {
		return "", err
	}
	if len(contents) == 0 {
		s.logger.WithField("domain", domain).Warn("no page recorded for domain")
	}
	return filestorage.NewSimpleFileStorage(s.config.Storage.Location).Store(domain, contents)
}
