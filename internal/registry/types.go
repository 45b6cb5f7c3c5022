package registry

// Category names a managed sub-resource category. The registry holds
// exactly one configured factory per category.
type Category string

const (
	CategoryCreditLine    Category = "credit_line"
	CategoryLiquidityPool Category = "liquidity_pool"
)

// Categories lists all managed categories.
func Categories() []Category {
	return []Category{CategoryCreditLine, CategoryLiquidityPool}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryCreditLine, CategoryLiquidityPool:
		return true
	}
	return false
}
