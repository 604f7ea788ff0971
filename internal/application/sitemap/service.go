// Package sitemap collects storefront URLs into sitemap documents.
//
// Every section is collected in batches until the time budget runs out.
// A section that hits the budget or the URL cap is returned with what was
// gathered so far and flagged partial.
package sitemap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/localization"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Section names one sitemap file
type Section string

const (
	SectionPages       Section = "pages"
	SectionCategories  Section = "categories"
	SectionBrands      Section = "brands"
	SectionCollections Section = "collections"
	SectionProducts    Section = "products"
)

// Sections returns every section in index order
func Sections() []Section {
	return []Section{SectionPages, SectionCategories, SectionBrands, SectionCollections, SectionProducts}
}

// ParseSection validates a section name
func ParseSection(name string) (Section, error) {
	for _, s := range Sections() {
		if string(s) == name {
			return s, nil
		}
	}
	return "", shared.ErrNotFound
}

// CacheKeyPrefix prefixes every cached sitemap document
const CacheKeyPrefix = "sitemap:"

// Defaults
const (
	DefaultBatchSize = 500
	DefaultTimeout   = 10 * time.Second
	DefaultMaxURLs   = 50000
)

// ProductSource walks storefront-visible products
type ProductSource interface {
	Iterate(ctx context.Context, now time.Time, batchSize int, fn func([]catalog.Product) bool) error
}

// BrandSource lists brands
type BrandSource interface {
	List(ctx context.Context, filter shared.Filter, enabledOnly bool) ([]catalog.Brand, int64, error)
}

// CategorySource lists categories
type CategorySource interface {
	FindAll(ctx context.Context, visibleOnly bool) ([]catalog.Category, error)
}

// CollectionSource lists collections
type CollectionSource interface {
	List(ctx context.Context, filter shared.Filter, visibleOnly bool) ([]catalog.Collection, int64, error)
}

// Translator resolves localized slugs
type Translator interface {
	Resolve(ctx context.Context, entityType string, ids []uuid.UUID, locale string) (map[uuid.UUID]localization.Values, error)
}

// Cache stores rendered documents
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// Sources bundles the catalog readers
type Sources struct {
	Products    ProductSource
	Brands      BrandSource
	Categories  CategorySource
	Collections CollectionSource
}

// Config controls URL collection
type Config struct {
	BaseURL     string
	BatchSize   int
	Timeout     time.Duration
	MaxURLs     int
	CacheTTL    time.Duration
	StaticPaths []string
}

// Result is a collected section
type Result struct {
	Section Section
	URLs    []URL
	Partial bool
}

// Service builds sitemaps
type Service struct {
	sources    Sources
	translator Translator
	locales    *localization.Locales
	cache      Cache
	config     Config
	now        func() time.Time
	logger     *zap.Logger
}

// NewService creates a sitemap service. translator and cache may be nil.
func NewService(sources Sources, translator Translator, locales *localization.Locales, cache Cache, config Config, logger *zap.Logger) *Service {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxURLs <= 0 || config.MaxURLs > DefaultMaxURLs {
		config.MaxURLs = DefaultMaxURLs
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sources:    sources,
		translator: translator,
		locales:    locales,
		cache:      cache,
		config:     config,
		now:        time.Now,
		logger:     logger,
	}
}

// Collect gathers the URLs of one section within the time budget
func (s *Service) Collect(ctx context.Context, section Section) (*Result, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sitemap", "collect", "section", string(section))
	defer span.End()

	budget, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	c := &collector{
		max:      s.config.MaxURLs,
		deadline: s.now().Add(s.config.Timeout),
		now:      s.now,
	}

	var err error
	switch section {
	case SectionPages:
		err = s.collectPages(c)
	case SectionCategories:
		err = s.collectCategories(budget, c)
	case SectionBrands:
		err = s.collectBrands(budget, c)
	case SectionCollections:
		err = s.collectCollections(budget, c)
	case SectionProducts:
		err = s.collectProducts(budget, c)
	default:
		return nil, shared.ErrNotFound
	}

	// running out of budget mid-query keeps what was collected
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		c.partial = true
		err = nil
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if c.partial {
		s.logger.Warn("sitemap section truncated",
			zap.String("section", string(section)),
			zap.Int("urls", len(c.urls)),
		)
	}
	telemetry.SetAttributes(span, "urls", len(c.urls), "partial", c.partial)
	return &Result{Section: section, URLs: c.urls, Partial: c.partial}, nil
}

// SectionXML returns the rendered document of a section, cached for CacheTTL.
// Partial results are served but not cached.
func (s *Service) SectionXML(ctx context.Context, section Section) ([]byte, error) {
	if _, err := ParseSection(string(section)); err != nil {
		return nil, err
	}
	key := CacheKeyPrefix + string(section)
	if data, ok := s.cached(ctx, key); ok {
		return data, nil
	}

	res, err := s.Collect(ctx, section)
	if err != nil {
		return nil, err
	}
	data, err := EncodeURLSet(res.URLs)
	if err != nil {
		return nil, err
	}
	if !res.Partial {
		s.store(ctx, key, data)
	}
	return data, nil
}

// IndexXML returns the sitemap index listing every section file
func (s *Service) IndexXML(ctx context.Context) ([]byte, error) {
	key := CacheKeyPrefix + "index"
	if data, ok := s.cached(ctx, key); ok {
		return data, nil
	}
	data, err := EncodeIndex(s.Index())
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, data)
	return data, nil
}

// Index returns the entries of the sitemap index
func (s *Service) Index() []IndexEntry {
	lastmod := s.now().UTC().Format(dateLayout)
	entries := make([]IndexEntry, 0, len(Sections()))
	for _, section := range Sections() {
		entries = append(entries, IndexEntry{
			Loc:     s.config.BaseURL + "/sitemaps/" + string(section) + ".xml",
			LastMod: lastmod,
		})
	}
	return entries
}

// Publisher receives generated sitemap files
type Publisher interface {
	Publish(ctx context.Context, name string, data []byte) error
}

// GenerateReport describes one published file
type GenerateReport struct {
	Name    string
	URLs    int
	Partial bool
}

// Generate renders every section and the index and hands them to publisher
func (s *Service) Generate(ctx context.Context, publisher Publisher) ([]GenerateReport, error) {
	reports := make([]GenerateReport, 0, len(Sections())+1)
	for _, section := range Sections() {
		res, err := s.Collect(ctx, section)
		if err != nil {
			return reports, fmt.Errorf("collect %s: %w", section, err)
		}
		data, err := EncodeURLSet(res.URLs)
		if err != nil {
			return reports, err
		}
		name := "sitemaps/" + string(section) + ".xml"
		if err := publisher.Publish(ctx, name, data); err != nil {
			return reports, fmt.Errorf("publish %s: %w", name, err)
		}
		reports = append(reports, GenerateReport{Name: name, URLs: len(res.URLs), Partial: res.Partial})
	}

	index, err := EncodeIndex(s.Index())
	if err != nil {
		return reports, err
	}
	if err := publisher.Publish(ctx, "sitemap.xml", index); err != nil {
		return reports, fmt.Errorf("publish sitemap.xml: %w", err)
	}
	reports = append(reports, GenerateReport{Name: "sitemap.xml", URLs: len(Sections())})
	return reports, nil
}

func (s *Service) cached(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil || s.config.CacheTTL <= 0 {
		return nil, false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("sitemap cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return data, ok
}

func (s *Service) store(ctx context.Context, key string, data []byte) {
	if s.cache == nil || s.config.CacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.config.CacheTTL); err != nil {
		s.logger.Warn("sitemap cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) collectPages(c *collector) error {
	for _, path := range s.config.StaticPaths {
		alternates := make([]Alternate, 0, len(s.locales.Supported()))
		for _, locale := range s.locales.Supported() {
			alternates = append(alternates, Alternate{
				Rel:      "alternate",
				Hreflang: locale,
				Href:     s.href(locale, path),
			})
		}
		if !c.add(URL{Loc: s.href(s.locales.Default(), path), Alternates: alternates}) {
			return nil
		}
	}
	return nil
}

func (s *Service) collectCategories(ctx context.Context, c *collector) error {
	categories, err := s.sources.Categories.FindAll(ctx, true)
	if err != nil {
		return err
	}
	for start := 0; start < len(categories); start += s.config.BatchSize {
		end := min(start+s.config.BatchSize, len(categories))
		batch := make([]entry, 0, end-start)
		for _, cat := range categories[start:end] {
			batch = append(batch, entry{id: cat.ID, slug: cat.Slug, updatedAt: cat.UpdatedAt})
		}
		if ok, err := s.addEntries(ctx, c, localization.EntityCategory, "/categories/", batch); err != nil || !ok {
			return err
		}
	}
	return nil
}

func (s *Service) collectBrands(ctx context.Context, c *collector) error {
	return s.paged(func(filter shared.Filter) (int, int64, error) {
		brands, total, err := s.sources.Brands.List(ctx, filter, true)
		if err != nil {
			return 0, 0, err
		}
		batch := make([]entry, 0, len(brands))
		for _, b := range brands {
			batch = append(batch, entry{id: b.ID, slug: b.Slug, updatedAt: b.UpdatedAt})
		}
		ok, err := s.addEntries(ctx, c, localization.EntityBrand, "/brands/", batch)
		if !ok {
			return 0, 0, err
		}
		return len(brands), total, err
	})
}

func (s *Service) collectCollections(ctx context.Context, c *collector) error {
	return s.paged(func(filter shared.Filter) (int, int64, error) {
		collections, total, err := s.sources.Collections.List(ctx, filter, true)
		if err != nil {
			return 0, 0, err
		}
		batch := make([]entry, 0, len(collections))
		for _, col := range collections {
			batch = append(batch, entry{id: col.ID, slug: col.Slug, updatedAt: col.UpdatedAt})
		}
		ok, err := s.addEntries(ctx, c, localization.EntityCollection, "/collections/", batch)
		if !ok {
			return 0, 0, err
		}
		return len(collections), total, err
	})
}

func (s *Service) collectProducts(ctx context.Context, c *collector) error {
	var failed error
	err := s.sources.Products.Iterate(ctx, s.now(), s.config.BatchSize, func(products []catalog.Product) bool {
		batch := make([]entry, 0, len(products))
		for _, p := range products {
			batch = append(batch, entry{id: p.ID, slug: p.Slug, updatedAt: p.UpdatedAt})
		}
		ok, err := s.addEntries(ctx, c, localization.EntityProduct, "/products/", batch)
		if err != nil {
			failed = err
			return false
		}
		return ok
	})
	if failed != nil {
		return failed
	}
	return err
}

// paged walks a page-numbered listing until it is exhausted or fetch
// reports zero rows. Listings are capped at shared.MaxPageSize per page.
func (s *Service) paged(fetch func(filter shared.Filter) (int, int64, error)) error {
	size := min(s.config.BatchSize, shared.MaxPageSize)
	for page := 1; ; page++ {
		n, total, err := fetch(shared.Filter{Page: page, PageSize: size})
		if err != nil || n == 0 || int64(page*size) >= total {
			return err
		}
	}
}

type entry struct {
	id        uuid.UUID
	slug      string
	updatedAt time.Time
}

// addEntries appends one URL per entry with an alternate per locale. It
// reports false once the collector stops accepting URLs.
func (s *Service) addEntries(ctx context.Context, c *collector, entityType, prefix string, batch []entry) (bool, error) {
	if len(batch) == 0 {
		return !c.stopped(), nil
	}
	ids := make([]uuid.UUID, len(batch))
	for i, e := range batch {
		ids[i] = e.id
	}

	locales := s.locales.Supported()
	slugs := make(map[string]map[uuid.UUID]localization.Values, len(locales))
	if s.translator != nil {
		for _, locale := range locales {
			values, err := s.translator.Resolve(ctx, entityType, ids, locale)
			if err != nil {
				return false, err
			}
			slugs[locale] = values
		}
	}

	for _, e := range batch {
		alternates := make([]Alternate, 0, len(locales))
		loc := ""
		for _, locale := range locales {
			href := s.href(locale, prefix+slugs[locale][e.id].Get("slug", e.slug))
			if locale == s.locales.Default() {
				loc = href
			}
			alternates = append(alternates, Alternate{Rel: "alternate", Hreflang: locale, Href: href})
		}
		u := URL{Loc: loc, Alternates: alternates}
		if !e.updatedAt.IsZero() {
			u.LastMod = e.updatedAt.UTC().Format(dateLayout)
		}
		if !c.add(u) {
			return false, nil
		}
	}
	return !c.stopped(), nil
}

// href builds the absolute URL of path under the locale prefix
func (s *Service) href(locale, path string) string {
	if path == "" || path == "/" {
		return s.config.BaseURL + "/" + locale
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.config.BaseURL + "/" + locale + path
}

// collector accumulates URLs until the cap or the deadline is reached
type collector struct {
	urls     []URL
	max      int
	deadline time.Time
	now      func() time.Time
	partial  bool
}

// add appends u and reports whether more URLs are accepted
func (c *collector) add(u URL) bool {
	if c.stopped() {
		return false
	}
	c.urls = append(c.urls, u)
	if len(c.urls) >= c.max {
		c.partial = true
	}
	return !c.partial
}

func (c *collector) stopped() bool {
	if !c.partial && c.now().After(c.deadline) {
		c.partial = true
	}
	return c.partial
}
