//go:build integration

package providers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"signet/internal/providers"
	"signet/pkg/platform/sentinel"
	"signet/pkg/testutil/containers"
)

type ProvidersPostgresSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *providers.PostgresStore
}

func TestProvidersPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ProvidersPostgresSuite))
}

func (s *ProvidersPostgresSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = providers.NewPostgresStore(s.pg.DB)
}

func (s *ProvidersPostgresSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "applications", "providers"))
}

func (s *ProvidersPostgresSuite) seedProvider(name string, kind providers.Kind) *providers.Provider {
	provider, err := providers.NewProvider(name, kind)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateProvider(context.Background(), provider))
	return provider
}

func (s *ProvidersPostgresSuite) TestCountProviders() {
	s.seedProvider("corp-oauth", providers.KindOAuth2)
	s.seedProvider("legacy-saml", providers.KindSAML)

	count, err := s.store.CountProviders(context.Background())
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *ProvidersPostgresSuite) TestListWithoutApplication() {
	ctx := context.Background()
	fronted := s.seedProvider("corp-oauth", providers.KindOAuth2)
	s.seedProvider("z-orphan", providers.KindProxy)
	s.seedProvider("a-orphan", providers.KindSAML)

	app, err := providers.NewApplication("Corp", "corp", &fronted.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateApplication(ctx, app))

	orphaned, err := s.store.ListWithoutApplication(ctx)
	s.Require().NoError(err)
	s.Require().Len(orphaned, 2)
	s.Equal("a-orphan", orphaned[0].Name)
	s.Equal("z-orphan", orphaned[1].Name)
}

func (s *ProvidersPostgresSuite) TestApplicationSlugConflict() {
	ctx := context.Background()

	first, err := providers.NewApplication("Corp", "corp", nil)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateApplication(ctx, first))

	dup, err := providers.NewApplication("Corp Again", "corp", nil)
	s.Require().NoError(err)
	s.Require().ErrorIs(s.store.CreateApplication(ctx, dup), sentinel.ErrConflict)
}
