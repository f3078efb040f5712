package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/repository/sqlite"
	"github.com/vytor/wordflash/internal/testutil"
)

type CatalogRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.CatalogRepository
}

func (s *CatalogRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewCatalogRepository(s.db)

	testutil.SeedVocabulary(s.T(), s.db,
		testutil.Word(3, testutil.Tier(1)),
		testutil.Word(1, testutil.Tier(1)),
		testutil.Word(2, testutil.Tier(2)),
		testutil.Word(4, nil),
	)
}

func (s *CatalogRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *CatalogRepositorySuite) ids(items []models.VocabularyItem) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func (s *CatalogRepositorySuite) TestFullCatalogInIDOrder() {
	items, err := s.repo.ListByScope(context.Background(), models.Scope{})
	s.Require().NoError(err)
	s.Assert().Equal([]int64{1, 2, 3, 4}, s.ids(items))
}

func (s *CatalogRepositorySuite) TestByTier() {
	items, err := s.repo.ListByScope(context.Background(), models.Scope{DifficultyTier: testutil.Tier(1)})
	s.Require().NoError(err)
	s.Assert().Equal([]int64{1, 3}, s.ids(items))
	s.Require().NotNil(items[0].DifficultyTier)
	s.Assert().Equal(1, *items[0].DifficultyTier)
	s.Assert().Equal("word-1", items[0].TargetText)
	s.Assert().Equal("en-US", items[0].TargetLanguage)
}

func (s *CatalogRepositorySuite) TestExplicitIDsWinOverTier() {
	scope := models.Scope{DifficultyTier: testutil.Tier(1), WordIDs: []int64{4, 2, 99}}

	items, err := s.repo.ListByScope(context.Background(), scope)
	s.Require().NoError(err)
	s.Assert().Equal([]int64{2, 4}, s.ids(items))
	s.Assert().Nil(items[1].DifficultyTier)
}

func (s *CatalogRepositorySuite) TestEmptyTier() {
	items, err := s.repo.ListByScope(context.Background(), models.Scope{DifficultyTier: testutil.Tier(5)})
	s.Require().NoError(err)
	s.Assert().Empty(items)
}

func TestCatalogRepositorySuite(t *testing.T) {
	suite.Run(t, new(CatalogRepositorySuite))
}
