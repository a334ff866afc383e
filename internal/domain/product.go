package domain

// Product is one catalog entry. Catalog data is read-only; identity is ID.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// SelectedProduct is the projection of a Product kept in the selection set
// and serialized into the routine prompt.
type SelectedProduct struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
