package model

// Sector is a physical subdivision of a company's stock location. Sectors
// and their products are owned by the catalog; the count core only reads
// them.
type Sector struct {
	ID        string `db:"id" json:"id"`
	CompanyID string `db:"company_id" json:"company_id"`
	Code      string `db:"code" json:"code"`
	Name      string `db:"name" json:"name"`
	SortOrder int    `db:"sort_order" json:"sort_order"`
	IsActive  bool   `db:"is_active" json:"is_active"`
}

// StockLevel is the system-of-record quantity of a product in a sector.
type StockLevel struct {
	SectorID  string `db:"sector_id" json:"sector_id"`
	ProductID string `db:"product_id" json:"product_id"`
	Quantity  int64  `db:"quantity" json:"quantity"`
}
