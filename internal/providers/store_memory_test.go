package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signet/pkg/platform/sentinel"
)

func mustProvider(t *testing.T, name string, kind Kind) *Provider {
	t.Helper()
	p, err := NewProvider(name, kind)
	require.NoError(t, err)
	return p
}

func TestCountProviders(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	for _, name := range []string{"corp-oauth", "legacy-saml", "grafana-proxy"} {
		require.NoError(t, store.CreateProvider(ctx, mustProvider(t, name, KindOAuth2)))
	}

	count, err := store.CountProviders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestListWithoutApplication(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	fronted := mustProvider(t, "corp-oauth", KindOAuth2)
	orphanB := mustProvider(t, "b-orphan", KindSAML)
	orphanA := mustProvider(t, "a-orphan", KindProxy)
	for _, p := range []*Provider{fronted, orphanB, orphanA} {
		require.NoError(t, store.CreateProvider(ctx, p))
	}

	app, err := NewApplication("Corp", "corp", &fronted.ID)
	require.NoError(t, err)
	require.NoError(t, store.CreateApplication(ctx, app))

	// An application without a provider must not mark anything as fronted.
	linkOnly, err := NewApplication("Wiki", "wiki", nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateApplication(ctx, linkOnly))

	orphaned, err := store.ListWithoutApplication(ctx)
	require.NoError(t, err)
	require.Len(t, orphaned, 2)
	assert.Equal(t, "a-orphan", orphaned[0].Name, "ordered by name")
	assert.Equal(t, "b-orphan", orphaned[1].Name)
}

func TestCreateApplicationSlugConflict(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	first, err := NewApplication("Corp", "corp", nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateApplication(ctx, first))

	dup, err := NewApplication("Corp Again", "corp", nil)
	require.NoError(t, err)
	err = store.CreateApplication(ctx, dup)
	require.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestNewProviderValidation(t *testing.T) {
	_, err := NewProvider("", KindOAuth2)
	assert.Error(t, err)

	_, err = NewProvider("corp", Kind("carrier-pigeon"))
	assert.Error(t, err)
}
