package analyzer

import (
	"github.com/andrewyi/domaincrawler/src/entity"
)

type Analyzer interface {
	Analyze(entity.PageInfo) entity.ParsedPageInfo
}
