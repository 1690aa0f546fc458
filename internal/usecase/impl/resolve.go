package impl

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"

	"github.com/google/uuid"
)

// resolveCart joins cart lines with their products, dropping lines whose
// product no longer exists.
func resolveCart(ctx context.Context, products repository.ProductRepository, lines []entity.CartLine) ([]entity.ResolvedCartLine, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	byID, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	resolved := make([]entity.ResolvedCartLine, 0, len(lines))
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok {
			continue
		}
		resolved = append(resolved, entity.ResolvedCartLine{Product: product, Quantity: line.Quantity})
	}

	return resolved, nil
}

// resolveWishlist returns the saved products in insertion order.
func resolveWishlist(ctx context.Context, products repository.ProductRepository, items []entity.WishlistItem) ([]*entity.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	byID, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	resolved := make([]*entity.Product, 0, len(items))
	for _, item := range items {
		if product, ok := byID[item.ProductID]; ok {
			resolved = append(resolved, product)
		}
	}

	return resolved, nil
}
