package core_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewyi/domaincrawler/src/core"
	"github.com/andrewyi/domaincrawler/src/dbstorage"
	"github.com/andrewyi/domaincrawler/src/dbstorage/schema"
)

type fakeLister struct {
	domains []string
	err     error
	calls   int
}

func (f *fakeLister) ListUndoneDomains(_ context.Context, limit int) ([]string, error) {
	f.calls++
	return f.domains, f.err
}

func newStore(t *testing.T) *dbstorage.SimpleDBStorage {
	t.Helper()
	s, err := dbstorage.NewSimpleDBStorage(dbstorage.DriverSQLite, filepath.Join(t.TempDir(), "crawl.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func addDomains(t *testing.T, s *dbstorage.SimpleDBStorage, domains ...string) {
	t.Helper()
	tx, err := s.NewTransaction(context.Background())
	require.NoError(t, err)
	defer tx.Close()
	for _, d := range domains {
		_, err := tx.InsertKnownDomainIfAbsent(&schema.KnownDomain{Domain: d, SeedURL: "http://" + d})
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit())
}

func TestBuildZeroLimit(t *testing.T) {
	lister := &fakeLister{domains: []string{"a.test"}}
	frontier, err := core.NewFrontierBuilder(lister).Build(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, frontier)
	assert.Empty(t, frontier)
	assert.Equal(t, 0, lister.calls)
}

func TestBuildDedupAndTruncate(t *testing.T) {
	lister := &fakeLister{domains: []string{"a.test", "b.test", "a.test", "c.test", "d.test"}}
	frontier, err := core.NewFrontierBuilder(lister).Build(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.test", "b.test", "c.test"}, frontier)
}

func TestBuildStoreError(t *testing.T) {
	storeErr := errors.New("database is locked")
	_, err := core.NewFrontierBuilder(&fakeLister{err: storeErr}).Build(context.Background(), 5)
	assert.ErrorIs(t, err, storeErr)
	assert.Contains(t, err.Error(), "fail to list undone domains")
}

func TestBuildFromStore(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	addDomains(t, s, "a.test", "b.test", "c.test")
	require.NoError(t, s.RecordPage(ctx, "a.test", "http://a.test/", "done"))

	b := core.NewFrontierBuilder(s)

	frontier, err := b.Build(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.test", "c.test"}, frontier)

	// 只读：重复调用结果不变
	again, err := b.Build(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, frontier, again)

	frontier, err = b.Build(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.test"}, frontier)

	// 所有domain都已完成
	require.NoError(t, s.RecordPage(ctx, "b.test", "http://b.test/", "done"))
	require.NoError(t, s.RecordPage(ctx, "c.test", "http://c.test/", "done"))
	frontier, err = b.Build(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, frontier)
}
