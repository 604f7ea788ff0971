package migration

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/statyba/storefront/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add gift cards", "add_gift_cards"},
		{"Add-Gift-Cards", "add_gift_cards"},
		{"ADD__GIFT__CARDS", "add_gift_cards"},
		{"Add Cards 123", "add_cards_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_Sequential(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add gift cards", "Gift card balances")
	require.NoError(t, err)
	assert.Equal(t, "000001", first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_gift_cards.up.sql"), first.UpPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add gift cards")
	assert.Contains(t, string(up), "-- Description: Gift card balances")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")

	second, err := CreateMigration(dir, "wishlists", "")
	require.NoError(t, err)
	assert.Equal(t, "000002", second.Version)

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_add_gift_cards", "000002_wishlists"}, names)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations_MissingDir(t *testing.T) {
	names, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestEmbeddedMigrations_ArePaired(t *testing.T) {
	files, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, f := range files {
		if base, ok := strings.CutSuffix(f, ".up.sql"); ok {
			ups[base] = true
		} else if base, ok := strings.CutSuffix(f, ".down.sql"); ok {
			downs[base] = true
		}
	}
	assert.Equal(t, ups, downs)
	assert.True(t, ups["000001_init"])

	initUp, err := fs.ReadFile(migrations.FS, "000001_init.up.sql")
	require.NoError(t, err)
	for _, table := range []string{
		"brands", "categories", "products", "product_images", "product_categories",
		"collections", "collection_products", "translations", "stock_items",
		"stock_movements", "customers", "orders", "order_items", "reviews", "referrals",
	} {
		assert.Contains(t, string(initUp), "CREATE TABLE IF NOT EXISTS "+table+" (", table)
	}
}
