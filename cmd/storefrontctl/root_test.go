package main

import (
	"bytes"
	"context"
	"testing"

	sitemapapp "github.com/statyba/storefront/internal/application/sitemap"
	"github.com/statyba/storefront/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct{}

func (fakeUploader) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	return nil
}

func TestRootCommand_Tree(t *testing.T) {
	root := newRootCommand()

	for _, path := range [][]string{
		{"sitemap", "generate"},
		{"rating", "rebuild"},
		{"customer", "promote"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestRootCommand_ArgValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"promote needs an email", []string{"customer", "promote"}, "accepts 1 arg(s)"},
		{"generate takes no args", []string{"sitemap", "generate", "extra"}, "unknown command"},
		{"exclusive targets", []string{"sitemap", "generate", "--out", "dist", "--object-store"}, "mutually exclusive"},
		{"batch must be positive", []string{"rating", "rebuild", "--batch", "0"}, "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newRootCommand()
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			root.SetArgs(tt.args)

			err := root.ExecuteContext(t.Context())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSitemapPublisher(t *testing.T) {
	t.Run("object store", func(t *testing.T) {
		p, err := sitemapPublisher(&sitemapOptions{ObjectStore: true, Prefix: "seo"}, "", fakeUploader{})
		require.NoError(t, err)
		assert.IsType(t, &storage.ObjectPublisher{}, p)
	})

	t.Run("object store missing", func(t *testing.T) {
		_, err := sitemapPublisher(&sitemapOptions{ObjectStore: true}, "", nil)
		assert.Error(t, err)
	})

	t.Run("explicit directory wins over config", func(t *testing.T) {
		p, err := sitemapPublisher(&sitemapOptions{OutDir: t.TempDir()}, "/var/www", nil)
		require.NoError(t, err)
		assert.IsType(t, &storage.DirectoryPublisher{}, p)
	})

	t.Run("configured directory", func(t *testing.T) {
		p, err := sitemapPublisher(&sitemapOptions{}, t.TempDir(), nil)
		require.NoError(t, err)
		assert.IsType(t, &storage.DirectoryPublisher{}, p)
	})

	t.Run("no target", func(t *testing.T) {
		_, err := sitemapPublisher(&sitemapOptions{}, "", nil)
		assert.ErrorIs(t, err, errNoSitemapTarget)
	})
}

func TestPrintReports(t *testing.T) {
	var buf bytes.Buffer
	printReports(&buf, []sitemapapp.GenerateReport{
		{Name: "products.xml", URLs: 120, Partial: true},
		{Name: "sitemap.xml", URLs: 5},
	})
	assert.Contains(t, buf.String(), "products.xml")
	assert.Contains(t, buf.String(), "(partial)")
	assert.Contains(t, buf.String(), "sitemap.xml")
}
