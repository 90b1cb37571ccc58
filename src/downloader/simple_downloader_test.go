package downloader_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewyi/domaincrawler/src/downloader"
	"github.com/andrewyi/domaincrawler/src/enum"
)

const testUserAgent = "TestBot/1.0"

func newDownloader(retry uint32, maxBodySize int64) downloader.Downloader {
	return downloader.NewSimpleDownloader(5, retry, testUserAgent, maxBodySize)
}

func TestDownloadSuccess(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	page := newDownloader(0, 0).Download(context.Background(), srv.URL+"/")

	assert.Equal(t, uint32(enum.PageStateSuccess), page.State)
	assert.Equal(t, enum.FailNone, page.FailKind)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Equal(t, "<html><body>ok</body></html>", page.Content)
	assert.Equal(t, srv.URL+"/", page.FinalURL)
	assert.Equal(t, testUserAgent, gotUA)
}

func TestDownloadFollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/home", http.StatusFound)
	})
	mux.HandleFunc("/home", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("home"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	page := newDownloader(0, 0).Download(context.Background(), srv.URL+"/start")

	require.Equal(t, uint32(enum.PageStateSuccess), page.State)
	assert.Equal(t, srv.URL+"/start", page.URL)
	assert.Equal(t, srv.URL+"/home", page.FinalURL)
}

func TestDownloadStatusClassification(t *testing.T) {
	tests := []struct {
		status int
		kind   enum.FailKind
	}{
		{http.StatusNotFound, enum.FailRejected},
		{http.StatusForbidden, enum.FailRejected},
		{http.StatusInternalServerError, enum.FailTransient},
		{http.StatusServiceUnavailable, enum.FailTransient},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		page := newDownloader(0, 0).Download(context.Background(), srv.URL)
		srv.Close()

		assert.Equal(t, uint32(enum.PageStateFail), page.State, tt.status)
		assert.Equal(t, tt.kind, page.FailKind, tt.status)
		assert.Equal(t, tt.status, page.StatusCode)
	}
}

func TestDownloadRetryTransient(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	page := newDownloader(1, 0).Download(context.Background(), srv.URL)

	assert.Equal(t, uint32(enum.PageStateSuccess), page.State)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestDownloadNoRetryOnRejected(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	page := newDownloader(3, 0).Download(context.Background(), srv.URL)

	assert.Equal(t, enum.FailRejected, page.FailKind)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestDownloadNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	page := newDownloader(0, 0).Download(context.Background(), srv.URL)

	assert.Equal(t, uint32(enum.PageStateFail), page.State)
	assert.Equal(t, enum.FailParse, page.FailKind)
}

func TestDownloadSniffsMissingContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte("<!DOCTYPE html><html><body>sniffed</body></html>"))
	}))
	defer srv.Close()

	page := newDownloader(0, 0).Download(context.Background(), srv.URL)

	assert.Equal(t, uint32(enum.PageStateSuccess), page.State)
}

func TestDownloadBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("0123456789abcdef"))
	}))
	defer srv.Close()

	page := newDownloader(0, 10).Download(context.Background(), srv.URL)

	require.Equal(t, uint32(enum.PageStateSuccess), page.State)
	assert.Equal(t, "0123456789", page.Content)
}

func TestDownloadConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	page := newDownloader(2, 0).Download(context.Background(), addr)

	assert.Equal(t, uint32(enum.PageStateFail), page.State)
	assert.Equal(t, enum.FailUnreachable, page.FailKind)
	assert.NotEmpty(t, page.Remark)
}

func TestDownloadCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	page := newDownloader(3, 0).Download(ctx, srv.URL)

	assert.Equal(t, uint32(enum.PageStateFail), page.State)
	assert.Less(t, int64(time.Since(start)), int64(3*time.Second))
}

func TestDownloadRedirectLoop(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer srv.Close()

	page := newDownloader(2, 0).Download(context.Background(), srv.URL+"/loop")
	assert.Equal(t, uint32(enum.PageStateFail), page.State)
	assert.Equal(t, enum.FailRejected, page.FailKind)
	assert.Contains(t, page.Remark, downloader.ErrTooManyRedirects.Error())
	// 重定向过多不重试
	assert.Equal(t, int32(10), atomic.LoadInt32(&hits))
}
