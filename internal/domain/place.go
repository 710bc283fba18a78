package domain

// Place is one result of an external keyword search. It is never persisted.
// X is the longitude and Y the latitude, as the upstream API names them.
type Place struct {
	ID              int64   `json:"id"`
	AddressName     string  `json:"address_name"`
	RoadAddressName string  `json:"road_address_name"`
	PlaceName       string  `json:"place_name"`
	Phone           string  `json:"phone"`
	PlaceURL        string  `json:"place_url"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
}

// PlacePage is one page of place search results plus upstream paging metadata.
type PlacePage struct {
	Places        []Place `json:"places"`
	TotalCount    int64   `json:"total_count"`
	PageableCount int64   `json:"pageable_count"`
	IsEnd         bool    `json:"is_end"`
}
