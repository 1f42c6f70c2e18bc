package engine

// Category identifies one draftable asset class.
type Category string

const (
	CategoryManufacturer Category = "manufacturer"
	CategoryStrain       Category = "cannabis_strain"
	CategoryProduct      Category = "product"
	CategoryPharmacy     Category = "pharmacy"
	CategoryBrand        Category = "brand"
)

// Categories lists every asset class in roster-display order.
var Categories = []Category{
	CategoryManufacturer,
	CategoryStrain,
	CategoryProduct,
	CategoryPharmacy,
	CategoryBrand,
}

// ValidCategory reports whether c is one of the known asset classes.
func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Asset is one draftable entity as supplied by the stats collaborator.
type Asset struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"recent_performance_score"`
}

// Catalog holds the draftable pool, keyed by category.
type Catalog map[Category][]Asset

// Find returns the asset with the given id in a category.
func (c Catalog) Find(cat Category, id int64) (Asset, bool) {
	for _, a := range c[cat] {
		if a.ID == id {
			return a, true
		}
	}
	return Asset{}, false
}
