package model

// Venue is a physical place where events happen. It corresponds to a
// row in the `event_locations` table and belongs to the user who
// registered it. MaxCapacity bounds the max_assistance of every event
// held there.
type Venue struct {
	ID            uint64   `json:"id"`              // event_locations.id
	LocationID    *uint64  `json:"id_location"`     // event_locations.id_location (nullable)
	Name          string   `json:"name"`            // event_locations.name
	FullAddress   string   `json:"full_address"`    // event_locations.full_address
	MaxCapacity   int      `json:"max_capacity"`    // event_locations.max_capacity
	Latitude      *float64 `json:"latitude"`        // event_locations.latitude
	Longitude     *float64 `json:"longitude"`       // event_locations.longitude
	CreatorUserID uint64   `json:"id_creator_user"` // event_locations.id_creator_user
}

// VenueInput carries the mutable fields of a venue as sent by a client.
type VenueInput struct {
	LocationID  *uint64
	Name        string
	FullAddress string
	MaxCapacity int
	Latitude    *float64
	Longitude   *float64
}

// VenueSummary is the venue projection embedded in event listings.
type VenueSummary struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	FullAddress string `json:"full_address"`
	MaxCapacity int    `json:"max_capacity"`
}

// Province is reference data from the `provinces` table.
type Province struct {
	ID           uint64   `json:"id"`
	Name         string   `json:"name"`
	FullName     string   `json:"full_name"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	DisplayOrder *int     `json:"display_order"`
}

// Location is reference data from the `locations` table; every
// location sits inside a province.
type Location struct {
	ID         uint64   `json:"id"`
	Name       string   `json:"name"`
	ProvinceID uint64   `json:"id_province"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}
