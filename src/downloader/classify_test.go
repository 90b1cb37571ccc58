package downloader

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrewyi/domaincrawler/src/enum"
)

func TestClassifyError(t *testing.T) {
	wrap := func(err error) error {
		return &url.Error{Op: "Get", URL: "http://acme.test/", Err: err}
	}
	opErr := func(errno syscall.Errno) error {
		return &net.OpError{Op: "dial", Net: "tcp", Err: fmt.Errorf("connect: %w", errno)}
	}

	tests := []struct {
		name string
		err  error
		want enum.FailKind
	}{
		{"dns not found", wrap(&net.DNSError{Err: "no such host", Name: "acme.test", IsNotFound: true}), enum.FailUnreachable},
		{"dns timeout", wrap(&net.DNSError{Err: "i/o timeout", Name: "acme.test", IsTimeout: true}), enum.FailTransient},
		{"dns temporary", wrap(&net.DNSError{Err: "server misbehaving", Name: "acme.test", IsTemporary: true}), enum.FailTransient},
		{"connection refused", wrap(opErr(syscall.ECONNREFUSED)), enum.FailUnreachable},
		{"host unreachable", wrap(opErr(syscall.EHOSTUNREACH)), enum.FailUnreachable},
		{"connection reset", wrap(opErr(syscall.ECONNRESET)), enum.FailTransient},
		{"too many redirects", wrap(ErrTooManyRedirects), enum.FailRejected},
		{"other", errors.New("unexpected EOF"), enum.FailTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyError(tt.err))
		})
	}
}
