package localization

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/localization"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTranslationRepository struct {
	mock.Mock
}

func (m *MockTranslationRepository) Find(ctx context.Context, entityType string, entityIDs []uuid.UUID, locales []string) ([]localization.Translation, error) {
	args := m.Called(ctx, entityType, entityIDs, locales)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]localization.Translation), args.Error(1)
}

func (m *MockTranslationRepository) ListForEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]localization.Translation, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]localization.Translation), args.Error(1)
}

func (m *MockTranslationRepository) FindEntityBySlug(ctx context.Context, entityType, locale, slug string) (uuid.UUID, error) {
	args := m.Called(ctx, entityType, locale, slug)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTranslationRepository) Upsert(ctx context.Context, translations []localization.Translation) error {
	return m.Called(ctx, translations).Error(0)
}

func (m *MockTranslationRepository) DeleteForEntity(ctx context.Context, entityType string, entityID uuid.UUID, locale string) error {
	return m.Called(ctx, entityType, entityID, locale).Error(0)
}

func newTestService(t *testing.T) (*Service, *MockTranslationRepository) {
	t.Helper()
	locales, err := localization.NewLocales([]string{"en", "lt", "pl"}, "en")
	require.NoError(t, err)
	repo := new(MockTranslationRepository)
	return NewService(repo, locales), repo
}

func row(id uuid.UUID, locale, field, value string) localization.Translation {
	return localization.Translation{EntityType: localization.EntityProduct, EntityID: id, Locale: locale, Field: field, Value: value}
}

func TestResolve_UsesFallbackChain(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	repo.On("Find", ctx, localization.EntityProduct, []uuid.UUID{a, b}, []string{"lt", "en"}).Return([]localization.Translation{
		row(a, "lt", "name", "Puodelis"),
		row(a, "en", "name", "Mug (en override)"),
		row(a, "en", "description", "English description"),
		row(b, "lt", "name", "  "),
	}, nil)

	got, err := svc.Resolve(ctx, localization.EntityProduct, []uuid.UUID{a, b}, "lt")
	require.NoError(t, err)

	assert.Equal(t, "Puodelis", got[a].Get("name", "Mug"))
	assert.Equal(t, "English description", got[a].Get("description", ""))
	assert.Equal(t, "Base", got[b].Get("name", "Base"))
	repo.AssertExpectations(t)
}

func TestResolve_DefaultLocaleSkipsLookup(t *testing.T) {
	svc, repo := newTestService(t)

	got, err := svc.Resolve(context.Background(), localization.EntityProduct, []uuid.UUID{uuid.New()}, "en")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.Resolve(context.Background(), localization.EntityProduct, []uuid.UUID{uuid.New()}, "fr")
	require.NoError(t, err)
	assert.Empty(t, got)

	repo.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_PropagatesErrors(t *testing.T) {
	svc, repo := newTestService(t)
	boom := errors.New("db down")
	repo.On("Find", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, boom)

	_, err := svc.Resolve(context.Background(), localization.EntityBrand, []uuid.UUID{uuid.New()}, "pl")
	assert.ErrorIs(t, err, boom)
}

func TestUpsert(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	id := uuid.New()

	repo.On("Upsert", ctx, mock.MatchedBy(func(rows []localization.Translation) bool {
		return len(rows) == 1 && rows[0].Locale == "lt" && rows[0].Field == "name" && rows[0].EntityID == id
	})).Return(nil)
	repo.On("ListForEntity", ctx, localization.EntityCategory, id).Return([]localization.Translation{
		{EntityType: localization.EntityCategory, EntityID: id, Locale: "lt", Field: "name", Value: "Virtuvė"},
	}, nil)

	out, err := svc.Upsert(ctx, localization.EntityCategory, id, "lt", map[string]string{"name": "Virtuvė"})
	require.NoError(t, err)
	assert.Equal(t, "Virtuvė", out.Locales["lt"]["name"])
	assert.Equal(t, []string{"lt"}, out.LocaleCodes())
	assert.Contains(t, out.Fields, "slug")
}

func TestUpsert_Rejections(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	id := uuid.New()

	tests := []struct {
		name   string
		entity string
		locale string
		fields map[string]string
		code   string
	}{
		{"unsupported locale", localization.EntityProduct, "de", map[string]string{"name": "x"}, "UNSUPPORTED_LOCALE"},
		{"default locale", localization.EntityProduct, "en", map[string]string{"name": "x"}, "DEFAULT_LOCALE"},
		{"no fields", localization.EntityProduct, "lt", nil, "INVALID_INPUT"},
		{"unknown field", localization.EntityBrand, "lt", map[string]string{"seo_title": "x"}, "INVALID_FIELD"},
		{"unknown entity", "order", "lt", map[string]string{"name": "x"}, "INVALID_ENTITY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upsert(ctx, tt.entity, id, tt.locale, tt.fields)
			de, ok := shared.AsDomainError(err)
			require.True(t, ok, "expected domain error, got %v", err)
			assert.Equal(t, tt.code, de.Code)
		})
	}
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestFindEntityBySlug(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	id := uuid.New()
	repo.On("FindEntityBySlug", ctx, localization.EntityProduct, "lt", "puodelis").Return(id, nil)

	got, err := svc.FindEntityBySlug(ctx, localization.EntityProduct, "lt", "puodelis")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = svc.FindEntityBySlug(ctx, localization.EntityProduct, "en", "mug")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDelete_UnknownEntity(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Delete(context.Background(), "order", uuid.New(), "lt")
	assert.Error(t, err)
}
