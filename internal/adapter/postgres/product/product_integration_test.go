//go:build integration

package product_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	pgproduct "github.com/alanyang/product-catalog/internal/adapter/postgres/product"
	domainproduct "github.com/alanyang/product-catalog/internal/domain/product"
	"github.com/alanyang/product-catalog/internal/testutil"
)

type ProductRepoSuite struct {
	testutil.DBIntegrationSuite
	repo *pgproduct.Repository
}

func TestProductRepoSuite(t *testing.T) {
	suite.Run(t, new(ProductRepoSuite))
}

func (s *ProductRepoSuite) SetupTest() {
	s.repo = pgproduct.New(s.Pool)
}

func unique(prefix string) string {
	return prefix + "-" + uuid.New().String()[:8]
}

func strPtr(v string) *string { return &v }

func (s *ProductRepoSuite) create(name string, sku *string, category *string) domainproduct.Product {
	p, err := s.repo.Create(context.Background(), domainproduct.NewProduct{
		Name:     name,
		Price:    domainproduct.MustPrice(19.99),
		Quantity: domainproduct.MustQuantity(3),
		Category: category,
		SKU:      sku,
		IsActive: true,
	})
	s.Require().NoError(err)
	return p
}

func (s *ProductRepoSuite) TestCreateAndFind() {
	ctx := context.Background()
	name := unique("widget")
	sku := unique("SKU")
	created := s.create(name, &sku, nil)

	s.NotEqual(uuid.Nil, created.ID)
	s.Equal("19.99", created.Price.String())
	s.True(created.IsActive)
	s.Nil(created.Category)

	got, found, err := s.repo.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	s.True(found)
	s.Equal(name, got.Name)

	_, found, err = s.repo.FindByName(ctx, name)
	s.Require().NoError(err)
	s.True(found)

	_, found, err = s.repo.FindBySKU(ctx, sku)
	s.Require().NoError(err)
	s.True(found)

	_, found, err = s.repo.FindByID(ctx, uuid.New())
	s.Require().NoError(err)
	s.False(found)
}

func (s *ProductRepoSuite) TestUniqueConstraints() {
	ctx := context.Background()
	name := unique("dup")
	sku := unique("DUP")
	s.create(name, &sku, nil)

	_, err := s.repo.Create(ctx, domainproduct.NewProduct{Name: name})
	s.ErrorIs(err, domainproduct.ErrDuplicateName)

	_, err = s.repo.Create(ctx, domainproduct.NewProduct{Name: unique("other"), SKU: &sku})
	s.ErrorIs(err, domainproduct.ErrDuplicateSKU)

	// NULL SKUs never collide.
	s.create(unique("nosku"), nil, nil)
	s.create(unique("nosku"), nil, nil)
}

func (s *ProductRepoSuite) TestUpdatePatch() {
	ctx := context.Background()
	p := s.create(unique("patch"), nil, strPtr("before"))

	updated, found, err := s.repo.Update(ctx, p.ID, domainproduct.Patch{
		Category: domainproduct.Some[*string](nil),
		Price:    domainproduct.Some(domainproduct.MustPrice(5)),
	})
	s.Require().NoError(err)
	s.True(found)
	s.Nil(updated.Category)
	s.Equal("5.00", updated.Price.String())
	s.Equal(p.Name, updated.Name)
	s.Equal(3, updated.Quantity.Int())
	s.False(updated.UpdatedAt.Before(p.UpdatedAt))

	touched, found, err := s.repo.Update(ctx, p.ID, domainproduct.Patch{})
	s.Require().NoError(err)
	s.True(found)
	s.Equal(updated.Name, touched.Name)

	_, found, err = s.repo.Update(ctx, uuid.New(), domainproduct.Patch{IsActive: domainproduct.Some(false)})
	s.Require().NoError(err)
	s.False(found)
}

func (s *ProductRepoSuite) TestListsAndDelete() {
	ctx := context.Background()
	category := unique("cat")
	older := s.create(unique("older"), nil, &category)
	newer := s.create(unique("newer"), nil, &category)
	_, _, err := s.repo.Update(ctx, older.ID, domainproduct.Patch{IsActive: domainproduct.Some(false)})
	s.Require().NoError(err)

	byCategory, err := s.repo.FindByCategory(ctx, category)
	s.Require().NoError(err)
	s.Require().Len(byCategory, 2)
	s.Equal(newer.ID, byCategory[0].ID)

	active, err := s.repo.FindActive(ctx)
	s.Require().NoError(err)
	for _, p := range active {
		s.NotEqual(older.ID, p.ID)
	}

	before, err := s.repo.Count(ctx)
	s.Require().NoError(err)

	deleted, err := s.repo.Delete(ctx, newer.ID)
	s.Require().NoError(err)
	s.True(deleted)

	exists, err := s.repo.Exists(ctx, newer.ID)
	s.Require().NoError(err)
	s.False(exists)

	after, err := s.repo.Count(ctx)
	s.Require().NoError(err)
	s.Equal(before-1, after)

	deleted, err = s.repo.Delete(ctx, newer.ID)
	s.Require().NoError(err)
	s.False(deleted)
}
