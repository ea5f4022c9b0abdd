package repository_test

import (
	"testing"

	"github.com/nikolayk812/lpg-cart/internal/repository"
	"github.com/stretchr/testify/suite"
)

func TestMemoryStoreSuite(t *testing.T) {
	s := &localStoreSuite{}
	s.reset = func() { s.store = repository.NewMemoryStore() }
	suite.Run(t, s)
}
