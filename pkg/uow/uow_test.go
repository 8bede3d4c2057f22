package uow

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type stubRepo struct{}

type UnitOfWorkTestSuite struct {
	suite.Suite
	uow *UnitOfWork
}

func (s *UnitOfWorkTestSuite) SetupTest() {
	s.uow = NewUnitOfWork(nil)
}

func (s *UnitOfWorkTestSuite) TestRegister_Duplicate() {
	factory := func(DBTX) Repository { return &stubRepo{} }

	s.Require().NoError(s.uow.Register("repo", factory))
	s.ErrorIs(s.uow.Register("repo", factory), ErrRepositoryAlreadyRegistered)
}

func (s *UnitOfWorkTestSuite) TestGetRepository_NotRegistered() {
	repo, err := s.uow.GetRepository("missing")
	s.ErrorIs(err, ErrRepositoryNotRegistered)
	s.Nil(repo)
}

func (s *UnitOfWorkTestSuite) TestGetRepositoryAs_TypeMismatch() {
	s.Require().NoError(s.uow.Register("repo", func(DBTX) Repository { return &stubRepo{} }))

	repo, err := GetRepositoryAs[*UnitOfWork](s.uow, "repo")
	s.ErrorIs(err, ErrInvalidRepositoryType)
	s.Nil(repo)
}

func (s *UnitOfWorkTestSuite) TestGetRepositoryAs() {
	s.Require().NoError(s.uow.Register("repo", func(DBTX) Repository { return &stubRepo{} }))

	repo, err := GetRepositoryAs[*stubRepo](s.uow, "repo")
	s.Require().NoError(err)
	s.NotNil(repo)
}

func TestUnitOfWorkSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkTestSuite))
}
