// Package model holds the GORM persistence models of the storefront.
package model

// All lists every model in dependency order, for schema creation in tests and tooling.
func All() []any {
	return []any{
		&UserModel{},
		&ProductModel{},
		&ProductImageModel{},
		&CartLineModel{},
		&WishlistItemModel{},
	}
}
