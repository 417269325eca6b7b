// Package domain defines the housing record type, its field schema and the
// validation primitives shared by the store, the seed loaders and the HTTP layer.
package domain

// EntityType identifies the type of record held by the store.
type EntityType string

// EntityHouse identifies a house record.
const EntityHouse EntityType = "house"

// Action describes the type of mutation applied to a record.
type Action string

const (
	// ActionCreate indicates a record was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates a record was replaced.
	ActionUpdate Action = "update"
	// ActionDelete indicates a record was removed.
	ActionDelete Action = "delete"
)

// House is a single housing sale record. ID is assigned by the store and is
// never taken from client input on create.
type House struct {
	ID           int     `json:"id"`
	Date         string  `json:"date"`
	Price        float64 `json:"price"`
	Bedrooms     float64 `json:"bedrooms"`
	Bathrooms    float64 `json:"bathrooms"`
	SqftLiving   int     `json:"sqft_living"`
	SqftLot      int     `json:"sqft_lot"`
	Floors       float64 `json:"floors"`
	Waterfront   int     `json:"waterfront"`
	View         int     `json:"view"`
	Condition    int     `json:"condition"`
	SqftAbove    int     `json:"sqft_above"`
	SqftBasement int     `json:"sqft_basement"`
	YrBuilt      int     `json:"yr_built"`
	YrRenovated  int     `json:"yr_renovated"`
	Street       string  `json:"street"`
	City         string  `json:"city"`
	StateZip     string  `json:"statezip"`
	Country      string  `json:"country"`
}
