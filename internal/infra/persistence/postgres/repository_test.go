package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, email string) *entity.User {
	t.Helper()

	user := &entity.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hash",
		Role:         entity.RoleCustomer,
		Address:      entity.Address{City: "Pune"},
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))

	return user
}

func seedProduct(t *testing.T, db *gorm.DB, name string, createdAt time.Time) *entity.Product {
	t.Helper()

	product := &entity.Product{
		Name:        name,
		Price:       10.5,
		Category:    " Men ",
		SubCategory: "TopWear",
		Images: []entity.ProductImage{
			{URL: "https://cdn/a.png", StorageID: "products/a"},
			{URL: "https://cdn/b.png", StorageID: "products/b"},
		},
		CreatedAt: createdAt,
	}
	require.NoError(t, NewProductRepository(db).Create(context.Background(), product))

	return product
}

func TestUserRepository(t *testing.T) {
	db := testdb.Open(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "a@x.com")
	assert.NotEqual(t, uuid.Nil, user.ID)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)
	assert.Equal(t, entity.RoleCustomer, byID.Role)
	assert.Equal(t, "Pune", byID.Address.City)

	byEmail, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = repo.FindByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	exists, err := repo.Exists(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)

	dup := &entity.User{Name: "Dup", Email: "a@x.com", PasswordHash: "hash"}
	assert.ErrorIs(t, repo.Create(ctx, dup), repository.ErrEmailTaken)
}

func TestCartRepository_IncrementMergesByProduct(t *testing.T) {
	db := testdb.Open(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "cart@x.com")
	p1 := seedProduct(t, db, "P1", time.Now())
	p2 := seedProduct(t, db, "P2", time.Now())

	require.NoError(t, repo.Increment(ctx, user.ID, p1.ID, 1))
	require.NoError(t, repo.Increment(ctx, user.ID, p2.ID, 3))
	require.NoError(t, repo.Increment(ctx, user.ID, p1.ID, 1))

	lines, err := repo.Lines(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, p1.ID, lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, p2.ID, lines[1].ProductID)
	assert.Equal(t, 3, lines[1].Quantity)
}

func TestCartRepository_IncrementUnknownProduct(t *testing.T) {
	db := testdb.Open(t)
	repo := NewCartRepository(db)
	user := seedUser(t, db, "fk@x.com")

	err := repo.Increment(context.Background(), user.ID, uuid.New(), 1)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestCartRepository_ConcurrentIncrementsAreNotLost(t *testing.T) {
	db := testdb.Open(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "race@x.com")
	product := seedProduct(t, db, "P", time.Now())
	other := seedProduct(t, db, "Q", time.Now())

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers*2)
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs <- repo.Increment(ctx, user.ID, product.ID, 1)
		}()
		go func() {
			defer wg.Done()
			errs <- repo.Increment(ctx, user.ID, other.ID, 2)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	lines, err := repo.Lines(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	byProduct := map[uuid.UUID]int{}
	for _, line := range lines {
		byProduct[line.ProductID] = line.Quantity
	}
	assert.Equal(t, workers, byProduct[product.ID])
	assert.Equal(t, workers*2, byProduct[other.ID])
}

func TestCartRepository_SetQuantityRemoveClear(t *testing.T) {
	db := testdb.Open(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "set@x.com")
	p1 := seedProduct(t, db, "P1", time.Now())
	p2 := seedProduct(t, db, "P2", time.Now())

	assert.ErrorIs(t, repo.SetQuantity(ctx, user.ID, p1.ID, 5), repository.ErrCartLineNotFound)

	require.NoError(t, repo.Increment(ctx, user.ID, p1.ID, 2))
	require.NoError(t, repo.SetQuantity(ctx, user.ID, p1.ID, 5))

	lines, err := repo.Lines(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)

	// Removing an absent line is a no-op.
	require.NoError(t, repo.Remove(ctx, user.ID, p2.ID))
	lines, err = repo.Lines(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	require.NoError(t, repo.Increment(ctx, user.ID, p2.ID, 1))
	require.NoError(t, repo.Remove(ctx, user.ID, p1.ID))
	lines, err = repo.Lines(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, p2.ID, lines[0].ProductID)

	require.NoError(t, repo.Clear(ctx, user.ID))
	lines, err = repo.Lines(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCartRepository_IncrementStopsAtLimit(t *testing.T) {
	db := testdb.Open(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "cap@x.com")
	product := seedProduct(t, db, "P1", time.Now())

	assert.ErrorIs(t, repo.Increment(ctx, user.ID, product.ID, entity.MaxCartQuantity+1), repository.ErrCartQuantityLimit)

	require.NoError(t, repo.Increment(ctx, user.ID, product.ID, entity.MaxCartQuantity-2))
	require.NoError(t, repo.Increment(ctx, user.ID, product.ID, 2))
	assert.ErrorIs(t, repo.Increment(ctx, user.ID, product.ID, 1), repository.ErrCartQuantityLimit)
	assert.ErrorIs(t, repo.SetQuantity(ctx, user.ID, product.ID, entity.MaxCartQuantity+1), repository.ErrCartQuantityLimit)

	lines, err := repo.Lines(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, entity.MaxCartQuantity, lines[0].Quantity)
}

func TestCartRepository_RemoveProductsKeepsLaterLines(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	user := seedUser(t, db, "checkout@x.com")
	priced := seedProduct(t, db, "P1", time.Now())
	late := seedProduct(t, db, "P2", time.Now())

	require.NoError(t, NewCartRepository(db).Increment(ctx, user.ID, priced.ID, 2))

	err := NewTransactionManager(db).Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		carts := repoFactory.CartRepo()

		lines, err := carts.LockLines(ctx, user.ID)
		if err != nil {
			return err
		}
		require.Len(t, lines, 1)

		// A line for another product lands after the cart was priced.
		if err := carts.Increment(ctx, user.ID, late.ID, 1); err != nil {
			return err
		}

		return carts.RemoveProducts(ctx, user.ID, []uuid.UUID{lines[0].ProductID})
	})
	require.NoError(t, err)

	lines, err := NewCartRepository(db).Lines(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, late.ID, lines[0].ProductID)
	assert.Equal(t, 1, lines[0].Quantity)

	require.NoError(t, NewCartRepository(db).RemoveProducts(ctx, user.ID, nil))
}

func TestWishlistRepository(t *testing.T) {
	db := testdb.Open(t)
	repo := NewWishlistRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "wish@x.com")
	p1 := seedProduct(t, db, "P1", time.Now())
	p2 := seedProduct(t, db, "P2", time.Now())

	added, err := repo.Add(ctx, user.ID, p1.ID)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.Add(ctx, user.ID, p1.ID)
	require.NoError(t, err)
	assert.False(t, added)

	added, err = repo.Add(ctx, user.ID, p2.ID)
	require.NoError(t, err)
	assert.True(t, added)

	items, err := repo.Items(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, p1.ID, items[0].ProductID)
	assert.Equal(t, p2.ID, items[1].ProductID)

	require.NoError(t, repo.Remove(ctx, user.ID, p1.ID))
	require.NoError(t, repo.Remove(ctx, user.ID, p1.ID))

	items, err = repo.Items(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, p2.ID, items[0].ProductID)

	_, err = repo.Add(ctx, user.ID, uuid.New())
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestProductRepository(t *testing.T) {
	db := testdb.Open(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	older := seedProduct(t, db, "Older", base)
	newer := seedProduct(t, db, "Newer", base.Add(time.Minute))

	found, err := repo.FindByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "men", found.Category)
	assert.Equal(t, "topwear", found.SubCategory)
	require.Len(t, found.Images, 2)
	assert.Equal(t, "products/a", found.Images[0].StorageID)
	assert.Equal(t, "products/b", found.Images[1].StorageID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	list, err := repo.List(ctx, repository.ProductFilter{Category: "MEN"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)

	list, err = repo.List(ctx, repository.ProductFilter{Category: "women"})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = repo.List(ctx, repository.ProductFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, newer.ID, list[0].ID)

	missing := uuid.New()
	byIDs, err := repo.FindByIDs(ctx, []uuid.UUID{older.ID, missing})
	require.NoError(t, err)
	assert.Len(t, byIDs, 1)
	assert.Contains(t, byIDs, older.ID)

	found.Name = "Renamed"
	found.Price = 99
	found.Images = []entity.ProductImage{{URL: "https://cdn/c.png", StorageID: "products/c"}}
	require.NoError(t, repo.Update(ctx, found))

	updated, err := repo.FindByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.InDelta(t, 99, updated.Price, 1e-9)
	require.Len(t, updated.Images, 1)
	assert.Equal(t, "products/c", updated.Images[0].StorageID)

	ghost := &entity.Product{ID: uuid.New(), Name: "ghost", Price: 1}
	assert.ErrorIs(t, repo.Update(ctx, ghost), repository.ErrProductNotFound)
}

func TestProductRepository_LockByID(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	product := seedProduct(t, db, "Locked", time.Now())

	err := NewTransactionManager(db).Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		locked, err := repoFactory.ProductRepo().LockByID(ctx, product.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, product.ID, locked.ID)
		assert.Len(t, locked.Images, 2)

		_, err = repoFactory.ProductRepo().LockByID(ctx, uuid.New())
		assert.ErrorIs(t, err, repository.ErrProductNotFound)

		return nil
	})
	require.NoError(t, err)
}

func TestProductRepository_DeleteCascadesToCollections(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	products := NewProductRepository(db)
	carts := NewCartRepository(db)
	wishlists := NewWishlistRepository(db)

	user := seedUser(t, db, "cascade@x.com")
	product := seedProduct(t, db, "Doomed", time.Now())

	require.NoError(t, carts.Increment(ctx, user.ID, product.ID, 1))
	_, err := wishlists.Add(ctx, user.ID, product.ID)
	require.NoError(t, err)

	require.NoError(t, products.Delete(ctx, product.ID))
	assert.ErrorIs(t, products.Delete(ctx, product.ID), repository.ErrProductNotFound)

	lines, err := carts.Lines(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	items, err := wishlists.Items(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	db := testdb.Open(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	user := seedUser(t, db, "tx@x.com")
	product := seedProduct(t, db, "P", time.Now())

	sentinel := assert.AnError
	err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		require.NoError(t, f.CartRepo().Increment(ctx, user.ID, product.ID, 3))
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	lines, err := NewCartRepository(db).Lines(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	err = tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		return f.CartRepo().Increment(ctx, user.ID, product.ID, 3)
	})
	require.NoError(t, err)

	lines, err = NewCartRepository(db).Lines(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}
