package models

// Stop is one row of the stops snapshot as returned by listing and
// proximity queries. Names are presented upper-cased, matching the
// snapshot pipeline's convention.
type Stop struct {
	StopCode      int      `json:"stop_code"`
	StopName      string   `json:"stop_name"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	ParentStation *string  `json:"parent_station"`
	DistanceM     *float64 `json:"distance_m,omitempty"`
}

// StopDetail extends Stop with the precomputed projected coordinates that
// only the by-code lookup materializes. Both columns are nullable in the
// snapshot.
type StopDetail struct {
	Stop
	XMeters *float64 `json:"x_meters"`
	YMeters *float64 `json:"y_meters"`
}

// StopsResponse wraps a paginated or proximity-filtered list of stops.
type StopsResponse struct {
	Count   int    `json:"count"`
	Results []Stop `json:"results"`
}

// StopDetailResponse wraps the single-row by-code lookup.
type StopDetailResponse struct {
	Count   int          `json:"count"`
	Results []StopDetail `json:"results"`
}

// ReferenceStop identifies the stop a by-name proximity query resolved to.
type ReferenceStop struct {
	StopCode int     `json:"stop_code"`
	StopName string  `json:"stop_name"`
	StopLat  float64 `json:"stop_lat"`
	StopLon  float64 `json:"stop_lon"`
}

// Coordinates is the reference point of a by-coords proximity query.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NearbyByNameResponse is returned by /stops/nearby/by-name.
type NearbyByNameResponse struct {
	ReferenceStop ReferenceStop `json:"reference_stop"`
	RadiusM       float64       `json:"radius_m"`
	Count         int           `json:"count"`
	Results       []Stop        `json:"results"`
}

// NearbyByCoordsResponse is returned by /stops/nearby/by-coords.
type NearbyByCoordsResponse struct {
	ReferenceCoords Coordinates `json:"reference_coords"`
	RadiusM         float64     `json:"radius_m"`
	Count           int         `json:"count"`
	Results         []Stop      `json:"results"`
}

// HealthResponse is returned by the root status endpoint.
type HealthResponse struct {
	Msg     string `json:"msg"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Uptime  int64  `json:"uptime"`
}

// ErrorResponse carries a human-readable failure detail.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// FieldError describes a single invalid query parameter.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse carries field-level parameter errors.
type ValidationErrorResponse struct {
	Detail []FieldError `json:"detail"`
}
