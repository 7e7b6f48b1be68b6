// Package stops implements the query and proximity engine over the
// read-only stops snapshot. Every filter, ordering, and limit is pushed
// down into parameterized SQL; user input is never concatenated into a
// statement.
package stops

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/yourorg/busstopapi/internal/cache"
	"github.com/yourorg/busstopapi/internal/models"
)

const (
	// DefaultListLimit / MaxListLimit bound the paginated listing.
	DefaultListLimit = 50
	MaxListLimit     = 1000

	// DefaultNearbyRadiusM / DefaultNearbyLimit / MaxNearbyLimit bound
	// the proximity queries.
	DefaultNearbyRadiusM = 100.0
	DefaultNearbyLimit   = 20
	MaxNearbyLimit       = 200
)

// NotFoundError signals that a lookup or name resolution matched nothing.
// The API layer maps it 1:1 to HTTP 404 with Detail as the body.
type NotFoundError struct {
	Detail string
}

func (e *NotFoundError) Error() string {
	return e.Detail
}

// Service executes stop queries against the snapshot handle. The snapshot
// is immutable, so concurrent use needs no coordination beyond what
// database/sql already provides.
type Service struct {
	db    *sql.DB
	cache *cache.Cache
}

// NewService wires a Service over the snapshot handle. The cache is
// optional; pass nil to disable stop-detail caching.
func NewService(db *sql.DB, c *cache.Cache) *Service {
	return &Service{
		db:    db,
		cache: c,
	}
}

// List returns up to limit stops starting at offset, ordered by stop_code
// (the snapshot's stable natural order, so pagination windows line up
// across requests). A non-empty name filters to stops whose name contains
// it, case-insensitively. An empty match is a valid count=0 result.
func (s *Service) List(limit, offset int, name string) (*models.StopsResponse, error) {
	query := `
        SELECT stop_code, UPPER(stop_name) AS stop_name, latitude, longitude, parent_station
        FROM stops`
	args := make([]interface{}, 0, 3)

	if name != "" {
		query += `
        WHERE UPPER(stop_name) LIKE UPPER(?)`
		args = append(args, "%"+name+"%")
	}

	query += `
        ORDER BY stop_code
        LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stops: %w", err)
	}
	defer rows.Close()

	results, err := scanStops(rows, false)
	if err != nil {
		return nil, fmt.Errorf("list stops: %w", err)
	}

	return &models.StopsResponse{Count: len(results), Results: results}, nil
}

// GetByCode returns the single stop matching code, including the
// projected-coordinate columns only this lookup materializes. stop_code is
// unique within a snapshot, so at most one row ever matches.
func (s *Service) GetByCode(code int) (*models.StopDetailResponse, error) {
	cacheKey := fmt.Sprintf("stop:%d", code)
	if s.cache != nil {
		if v, found := s.cache.Get(cacheKey); found {
			if resp, ok := v.(*models.StopDetailResponse); ok {
				return resp, nil
			}
		}
	}

	row := s.db.QueryRow(`
        SELECT stop_code, UPPER(stop_name) AS stop_name, latitude, longitude,
               parent_station, x_meters, y_meters
        FROM stops
        WHERE stop_code = ?
        LIMIT 1`, code)

	var detail models.StopDetail
	var parent sql.NullString
	var x, y sql.NullFloat64
	err := row.Scan(&detail.StopCode, &detail.StopName, &detail.Latitude,
		&detail.Longitude, &parent, &x, &y)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Detail: fmt.Sprintf("Stop Code %d not found", code)}
	}
	if err != nil {
		return nil, fmt.Errorf("get stop %d: %w", code, err)
	}

	if parent.Valid {
		detail.ParentStation = &parent.String
	}
	if x.Valid {
		detail.XMeters = &x.Float64
	}
	if y.Valid {
		detail.YMeters = &y.Float64
	}

	resp := &models.StopDetailResponse{Count: 1, Results: []models.StopDetail{detail}}
	if s.cache != nil {
		s.cache.Set(cacheKey, resp)
	}
	return resp, nil
}

// NearbyByName resolves a reference stop from a case-insensitive substring
// match on name (first match in stop_code order wins, deterministic for a
// fixed snapshot) and returns the stops around it.
func (s *Service) NearbyByName(name string, radiusM float64, limit int) (*models.NearbyByNameResponse, error) {
	row := s.db.QueryRow(`
        SELECT stop_code, UPPER(stop_name) AS stop_name, latitude, longitude
        FROM stops
        WHERE UPPER(stop_name) LIKE UPPER(?)
        ORDER BY stop_code
        LIMIT 1`, "%"+name+"%")

	var ref models.ReferenceStop
	err := row.Scan(&ref.StopCode, &ref.StopName, &ref.StopLat, &ref.StopLon)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Detail: fmt.Sprintf("No stop found with name like '%s'", name)}
	}
	if err != nil {
		return nil, fmt.Errorf("resolve reference stop: %w", err)
	}

	results, err := s.nearby(ref.StopLat, ref.StopLon, radiusM, limit)
	if err != nil {
		return nil, err
	}

	return &models.NearbyByNameResponse{
		ReferenceStop: ref,
		RadiusM:       radiusM,
		Count:         len(results),
		Results:       results,
	}, nil
}

// NearbyByCoords returns the stops around the given point. No resolution
// step is involved, so an empty result set is a valid count=0 response,
// never an error.
func (s *Service) NearbyByCoords(lat, lon, radiusM float64, limit int) (*models.NearbyByCoordsResponse, error) {
	results, err := s.nearby(lat, lon, radiusM, limit)
	if err != nil {
		return nil, err
	}

	return &models.NearbyByCoordsResponse{
		ReferenceCoords: models.Coordinates{Latitude: lat, Longitude: lon},
		RadiusM:         radiusM,
		Count:           len(results),
		Results:         results,
	}, nil
}

// nearby selects the limit nearest stops to (lat, lon) ordered by ascending
// Haversine distance, then filters them to the radius. limit decides which
// candidates are considered and radiusM decides which are returned: a stop
// inside the radius but beyond the limit nearest is never returned. That is
// the documented precision/performance trade-off of this engine, not a bug.
func (s *Service) nearby(lat, lon, radiusM float64, limit int) ([]models.Stop, error) {
	rows, err := s.db.Query(`
        SELECT stop_code, UPPER(stop_name) AS stop_name, latitude, longitude,
               parent_station, haversine_m(latitude, longitude, ?, ?) AS distance_m
        FROM stops
        ORDER BY distance_m
        LIMIT ?`, lat, lon, limit)
	if err != nil {
		return nil, fmt.Errorf("nearby stops: %w", err)
	}
	defer rows.Close()

	candidates, err := scanStops(rows, true)
	if err != nil {
		return nil, fmt.Errorf("nearby stops: %w", err)
	}

	results := make([]models.Stop, 0, len(candidates))
	for _, stop := range candidates {
		if *stop.DistanceM <= radiusM {
			results = append(results, stop)
		}
	}
	return results, nil
}

// scanStops drains rows into stop models. withDistance must match whether
// the query projected a trailing distance_m column.
func scanStops(rows *sql.Rows, withDistance bool) ([]models.Stop, error) {
	results := make([]models.Stop, 0)
	for rows.Next() {
		var stop models.Stop
		var parent sql.NullString

		var err error
		if withDistance {
			var distance float64
			err = rows.Scan(&stop.StopCode, &stop.StopName, &stop.Latitude,
				&stop.Longitude, &parent, &distance)
			stop.DistanceM = &distance
		} else {
			err = rows.Scan(&stop.StopCode, &stop.StopName, &stop.Latitude,
				&stop.Longitude, &parent)
		}
		if err != nil {
			return nil, fmt.Errorf("scan stop row: %w", err)
		}

		if parent.Valid {
			stop.ParentStation = &parent.String
		}
		results = append(results, stop)
	}
	return results, rows.Err()
}
