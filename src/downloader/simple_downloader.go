// http GET下载，失败时按enum.FailKind分类
// 只对FailTransient做重试，重试次数由配置决定（默认不重试）
// 请求绑定ctx，取消时正在进行的下载会被中断
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"mime"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/andrewyi/domaincrawler/src/entity"
	"github.com/andrewyi/domaincrawler/src/enum"
)

const (
	retryBackoff = 500 * time.Millisecond
	maxRedirects = 10
)

var ErrTooManyRedirects = errors.New("too many redirects")

type SimpleDownloader struct {
	timeout     uint32
	retry       uint32
	userAgent   string
	maxBodySize int64

	client *http.Client
}

func NewSimpleDownloader(timeout uint32, retry uint32, userAgent string, maxBodySize int64) Downloader {
	if maxBodySize <= 0 {
		maxBodySize = enum.DefaultMaxBodySize
	}
	return &SimpleDownloader{
		timeout:     timeout,
		retry:       retry,
		userAgent:   userAgent,
		maxBodySize: maxBodySize,
		client: &http.Client{
			Timeout:       time.Duration(timeout) * time.Second,
			CheckRedirect: checkRedirect,
		},
	}
}

func (s *SimpleDownloader) Download(ctx context.Context, url string) entity.PageInfo {
	var (
		page    entity.PageInfo
		attempt uint32
	)

	for {
		page = s.download(ctx, url)
		if page.FailKind != enum.FailTransient || attempt >= s.retry || ctx.Err() != nil {
			return page
		}
		attempt++

		select {
		case <-ctx.Done():
			return page
		case <-time.After(retryBackoff * time.Duration(1<<(attempt-1))):
		}
	}
}

func (s *SimpleDownloader) download(ctx context.Context, url string) entity.PageInfo {
	page := entity.PageInfo{
		URL:   url,
		State: enum.PageStateFail,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		page.FailKind = enum.FailRejected
		page.Remark = err.Error()
		return page
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		page.FailKind = classifyError(err)
		page.Remark = err.Error()
		return page
	}
	defer resp.Body.Close()

	page.FinalURL = resp.Request.URL.String()
	page.StatusCode = resp.StatusCode
	page.ContentType = resp.Header.Get("Content-Type")

	switch {
	case resp.StatusCode >= 500:
		page.FailKind = enum.FailTransient
		page.Remark = fmt.Sprintf("http status %d", resp.StatusCode)
		return page
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		page.FailKind = enum.FailRejected
		page.Remark = fmt.Sprintf("http status %d", resp.StatusCode)
		return page
	}

	content, err := ioutil.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		page.FailKind = classifyError(err)
		page.Remark = err.Error()
		return page
	}

	if page.ContentType == "" {
		page.ContentType = http.DetectContentType(content)
	}
	if !isHTML(page.ContentType) {
		page.FailKind = enum.FailParse
		page.Remark = "unsupported content type: " + page.ContentType
		return page
	}

	page.State = enum.PageStateSuccess
	page.FailKind = enum.FailNone
	page.Content = string(content)
	return page
}

func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return ErrTooManyRedirects
	}
	return nil
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// dns失败、连接被拒绝视为domain不可达；dns超时与其余网络错误（超时、reset）视为暂时性错误
func classifyError(err error) enum.FailKind {
	if errors.Is(err, ErrTooManyRedirects) {
		return enum.FailRejected
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout || dnsErr.IsTemporary {
			return enum.FailTransient
		}
		return enum.FailUnreachable
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return enum.FailUnreachable
	}
	return enum.FailTransient
}
