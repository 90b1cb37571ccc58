package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/andrewyi/domaincrawler/src/dbstorage"
	"github.com/andrewyi/domaincrawler/src/dbstorage/schema"
	"github.com/andrewyi/domaincrawler/src/util"
)

var ErrMissingColumn = errors.New("missing csv column")

// csv中各字段对应的列名
type ImportColumns struct {
	URL      string
	Name     string
	Category string
}

type ImportResult struct {
	Inserted int
	Skipped  int // domain已存在
	Invalid  int // url为空或无法解析
}

// 从csv文件导入known_domains，以domain去重（已存在则跳过）
// 整个文件在一个事务中导入，任何存储错误都会回滚
func ImportKnownDomainsFile(ctx context.Context, logger *log.Logger, dbStorage *dbstorage.SimpleDBStorage, csvPath string, columns ImportColumns) (ImportResult, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return ImportResult{}, fmt.Errorf("fail to open csv file: %w", err)
	}
	defer file.Close()

	return ImportKnownDomains(ctx, logger, dbStorage, file, columns)
}

func ImportKnownDomains(ctx context.Context, logger *log.Logger, dbStorage *dbstorage.SimpleDBStorage, r io.Reader, columns ImportColumns) (ImportResult, error) {
	var result ImportResult

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return result, fmt.Errorf("fail to read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	urlIdx, ok := index[columns.URL]
	if !ok {
		return result, fmt.Errorf("%w: %s", ErrMissingColumn, columns.URL)
	}
	field := func(record []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	t, err := dbStorage.NewTransaction(ctx)
	if err != nil {
		return result, fmt.Errorf("fail to start transaction: %w", err)
	}
	defer t.Close()
	defer t.Rollback()

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ImportResult{}, fmt.Errorf("fail to read csv line %d: %w", line, err)
		}

		rawURL := ""
		if urlIdx < len(record) {
			rawURL = strings.TrimSpace(record[urlIdx])
		}
		if rawURL == "" {
			result.Invalid++
			logger.WithField("line", line).Warn("empty url, skipped")
			continue
		}

		seedURL := util.EnsureScheme(rawURL)
		domain, err := util.GetDomain(seedURL)
		if err != nil || domain == "" {
			result.Invalid++
			logger.WithError(err).WithField("line", line).WithField("url", rawURL).Warn("fail to parse url domain, skipped")
			continue
		}

		inserted, err := t.InsertKnownDomainIfAbsent(&schema.KnownDomain{
			CompanyName: field(record, columns.Name),
			Domain:      domain,
			SeedURL:     seedURL,
			Category:    field(record, columns.Category),
		})
		if err != nil {
			return ImportResult{}, fmt.Errorf("fail to insert domain %s: %w", domain, err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}

	if err = t.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("fail to commit import: %w", err)
	}

	logger.WithFields(log.Fields{
		"inserted": result.Inserted,
		"skipped":  result.Skipped,
		"invalid":  result.Invalid,
	}).Info("known domains imported")
	return result, nil
}
