package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mylxsw/telegram-monitor/internal/domain"
)

// mockEntitySource — это мок для интерфейса ports.EntitySource.
type mockEntitySource struct {
	mock.Mock
}

func (m *mockEntitySource) ResolveUsername(ctx context.Context, username string) (domain.Entity, error) {
	args := m.Called(ctx, username)
	if res := args.Get(0); res != nil {
		return res.(domain.Entity), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEntitySource) ResolveID(ctx context.Context, id int64) (domain.Entity, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(domain.Entity), args.Error(1)
	}
	return nil, args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolver_ResolveTargets_Success(t *testing.T) {
	source := new(mockEntitySource)
	registry := NewRegistry()
	resolver := NewResolver(source, registry, WithResolverLogger(discardLogger()))

	alpha := domain.Channel{ID: 1111111111, Title: "Alpha News", Username: "alpha"}
	group := domain.Group{ID: 555, Title: "Болталка"}

	source.On("ResolveUsername", mock.Anything, "alpha").Return(alpha, nil).Once()
	source.On("ResolveID", mock.Anything, int64(-555)).Return(group, nil).Once()

	err := resolver.ResolveTargets(context.Background(), []string{"@alpha", "-555"})

	require.NoError(t, err)
	assert.Equal(t, 2, registry.Len())
	assert.True(t, registry.Contains(-1001111111111))
	assert.True(t, registry.Contains(-555))

	name, ok := registry.Name(-1001111111111)
	require.True(t, ok)
	assert.Equal(t, "@alpha", name, "имя канала должно следовать правилу приоритета: username важнее заголовка")

	source.AssertExpectations(t)
}

// TestResolver_ResolveTargets_DuplicateForms проверяет, что один и тот же чат,
// заданный как @username и как числовой ID, попадает в Registry один раз.
func TestResolver_ResolveTargets_DuplicateForms(t *testing.T) {
	source := new(mockEntitySource)
	registry := NewRegistry()
	resolver := NewResolver(source, registry, WithResolverLogger(discardLogger()))

	alpha := domain.Channel{ID: 1111111111, Title: "Alpha News", Username: "alpha"}

	source.On("ResolveUsername", mock.Anything, "alpha").Return(alpha, nil).Once()
	source.On("ResolveID", mock.Anything, int64(-1001111111111)).Return(alpha, nil).Once()

	err := resolver.ResolveTargets(context.Background(), []string{"@alpha", "-1001111111111"})

	require.NoError(t, err)
	assert.Equal(t, 1, registry.Len())
	source.AssertExpectations(t)
}

// TestResolver_ResolveTargets_SkipsFailures проверяет, что ошибка резолвинга
// одного идентификатора не прерывает обработку остальных.
func TestResolver_ResolveTargets_SkipsFailures(t *testing.T) {
	source := new(mockEntitySource)
	registry := NewRegistry()
	resolver := NewResolver(source, registry, WithResolverLogger(discardLogger()))

	source.On("ResolveUsername", mock.Anything, "ghost").Return(nil, errors.New("USERNAME_NOT_OCCUPIED")).Once()
	source.On("ResolveUsername", mock.Anything, "alpha").Return(domain.Channel{ID: 1, Title: "Alpha"}, nil).Once()

	err := resolver.ResolveTargets(context.Background(), []string{"@ghost", "@alpha"})

	require.NoError(t, err)
	assert.Equal(t, 1, registry.Len())
	source.AssertExpectations(t)
}

func TestResolver_ResolveTargets_NoTargets(t *testing.T) {
	source := new(mockEntitySource)
	registry := NewRegistry()
	resolver := NewResolver(source, registry, WithResolverLogger(discardLogger()))

	source.On("ResolveUsername", mock.Anything, "ghost").Return(nil, errors.New("USERNAME_NOT_OCCUPIED")).Once()

	err := resolver.ResolveTargets(context.Background(), []string{"@ghost", "   "})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoTargets)
	assert.Equal(t, 0, registry.Len())
}
