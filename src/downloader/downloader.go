package downloader

import (
	"context"

	"github.com/andrewyi/domaincrawler/src/entity"
)

type Downloader interface {
	Download(context.Context, string) entity.PageInfo
}
