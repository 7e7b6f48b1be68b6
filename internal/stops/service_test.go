package stops

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/yourorg/busstopapi/internal/cache"
	appdb "github.com/yourorg/busstopapi/internal/db"
)

// newSnapshot builds a small snapshot file: two stops ~70m apart in
// central Auckland, one a few blocks away, and one several km out.
func newSnapshot(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stops.db")

	setup, err := sql.Open(appdb.DriverName, path)
	if err != nil {
		t.Fatalf("create snapshot: %v", err)
	}
	if _, err := setup.Exec(`
		CREATE TABLE stops (
			stop_code INTEGER PRIMARY KEY,
			stop_name TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			parent_station TEXT,
			x_meters REAL,
			y_meters REAL
		);
		INSERT INTO stops VALUES (1001, 'Stop Albert', -36.84, 174.76, NULL, 1757000.5, 5920000.25);
		INSERT INTO stops VALUES (1002, 'Stop B', -36.8405, 174.7605, 'ALB-STATION', NULL, NULL);
		INSERT INTO stops VALUES (1003, 'Victoria Park', -36.8445, 174.7565, NULL, NULL, NULL);
		INSERT INTO stops VALUES (2001, 'Stop Faraway', -36.9, 174.9, NULL, NULL, NULL);
	`); err != nil {
		t.Fatalf("populate snapshot: %v", err)
	}
	setup.Close()

	handle, err := appdb.Open(path)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	t.Cleanup(func() { handle.Close() })
	return handle
}

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(newSnapshot(t), nil)
}

func TestListReturnsAtMostLimit(t *testing.T) {
	svc := newService(t)

	resp, err := svc.List(2, 0, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if resp.Count != 2 || len(resp.Results) != 2 {
		t.Errorf("Expected 2 results, got count=%d len=%d", resp.Count, len(resp.Results))
	}
}

func TestListPaginationIsStable(t *testing.T) {
	svc := newService(t)

	first, err := svc.List(3, 0, "")
	if err != nil {
		t.Fatalf("List offset 0: %v", err)
	}
	shifted, err := svc.List(3, 1, "")
	if err != nil {
		t.Fatalf("List offset 1: %v", err)
	}

	// results[i] at offset o must equal results[i-1] at offset o+1.
	for i := 0; i < 2; i++ {
		if first.Results[i+1].StopCode != shifted.Results[i].StopCode {
			t.Errorf("Pagination window mismatch at %d: %d vs %d",
				i, first.Results[i+1].StopCode, shifted.Results[i].StopCode)
		}
	}
}

func TestListNameFilterCaseInsensitive(t *testing.T) {
	svc := newService(t)

	for _, filter := range []string{"albert", "ALBERT", "AlBeRt"} {
		resp, err := svc.List(50, 0, filter)
		if err != nil {
			t.Fatalf("List(%q): %v", filter, err)
		}
		if resp.Count != 1 {
			t.Fatalf("List(%q): expected 1 result, got %d", filter, resp.Count)
		}
		if resp.Results[0].StopCode != 1001 {
			t.Errorf("List(%q): expected stop 1001, got %d", filter, resp.Results[0].StopCode)
		}
		if resp.Results[0].StopName != "STOP ALBERT" {
			t.Errorf("List(%q): expected upper-cased name, got %q", filter, resp.Results[0].StopName)
		}
	}
}

func TestListNoMatchIsEmptyNotError(t *testing.T) {
	svc := newService(t)

	resp, err := svc.List(50, 0, "does-not-exist")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("Expected count=0, got %d", resp.Count)
	}
	if resp.Results == nil || len(resp.Results) != 0 {
		t.Errorf("Expected empty results slice, got %v", resp.Results)
	}
}

func TestGetByCodeIncludesProjectedCoords(t *testing.T) {
	svc := newService(t)

	resp, err := svc.GetByCode(1001)
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if resp.Count != 1 || len(resp.Results) != 1 {
		t.Fatalf("Expected exactly one row, got count=%d len=%d", resp.Count, len(resp.Results))
	}

	detail := resp.Results[0]
	if detail.XMeters == nil || *detail.XMeters != 1757000.5 {
		t.Errorf("Expected x_meters=1757000.5, got %v", detail.XMeters)
	}
	if detail.YMeters == nil || *detail.YMeters != 5920000.25 {
		t.Errorf("Expected y_meters=5920000.25, got %v", detail.YMeters)
	}
	if detail.ParentStation != nil {
		t.Errorf("Expected nil parent_station, got %v", *detail.ParentStation)
	}
}

func TestGetByCodeNullableColumns(t *testing.T) {
	svc := newService(t)

	resp, err := svc.GetByCode(1002)
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}

	detail := resp.Results[0]
	if detail.ParentStation == nil || *detail.ParentStation != "ALB-STATION" {
		t.Errorf("Expected parent_station ALB-STATION, got %v", detail.ParentStation)
	}
	if detail.XMeters != nil || detail.YMeters != nil {
		t.Errorf("Expected nil projected coords, got x=%v y=%v", detail.XMeters, detail.YMeters)
	}
}

func TestGetByCodeNotFound(t *testing.T) {
	svc := newService(t)

	_, err := svc.GetByCode(9999)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
	if nf.Detail != "Stop Code 9999 not found" {
		t.Errorf("Unexpected detail: %q", nf.Detail)
	}
}

func TestGetByCodePopulatesCache(t *testing.T) {
	c := cache.NewCache(time.Minute, time.Minute)
	defer c.Stop()
	svc := NewService(newSnapshot(t), c)

	first, err := svc.GetByCode(1001)
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if c.Count() != 1 {
		t.Errorf("Expected one cached entry, got %d", c.Count())
	}

	second, err := svc.GetByCode(1001)
	if err != nil {
		t.Fatalf("GetByCode (cached): %v", err)
	}
	if second != first {
		t.Error("Expected the cached response to be reused")
	}
}

func TestNearbyByNameOrderAndRadius(t *testing.T) {
	svc := newService(t)

	resp, err := svc.NearbyByName("Albert", 100, 20)
	if err != nil {
		t.Fatalf("NearbyByName: %v", err)
	}

	if resp.ReferenceStop.StopCode != 1001 {
		t.Errorf("Expected reference stop 1001, got %d", resp.ReferenceStop.StopCode)
	}
	if resp.RadiusM != 100 {
		t.Errorf("Expected radius_m=100, got %f", resp.RadiusM)
	}
	if resp.Count != 2 {
		t.Fatalf("Expected 2 stops within 100m, got %d", resp.Count)
	}

	// Reference stop first at distance 0, then non-decreasing within radius.
	if resp.Results[0].StopCode != 1001 || *resp.Results[0].DistanceM != 0 {
		t.Errorf("Expected 1001 at distance 0 first, got %d at %v",
			resp.Results[0].StopCode, *resp.Results[0].DistanceM)
	}
	if resp.Results[1].StopCode != 1002 {
		t.Errorf("Expected 1002 second, got %d", resp.Results[1].StopCode)
	}
	prev := 0.0
	for _, stop := range resp.Results {
		if *stop.DistanceM < prev {
			t.Errorf("Distances not non-decreasing: %f after %f", *stop.DistanceM, prev)
		}
		if *stop.DistanceM > 100 {
			t.Errorf("Stop %d outside radius: %f", stop.StopCode, *stop.DistanceM)
		}
		prev = *stop.DistanceM
	}
}

func TestNearbyByNameNotFound(t *testing.T) {
	svc := newService(t)

	_, err := svc.NearbyByName("Nowhere Street", 100, 20)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
	if nf.Detail != "No stop found with name like 'Nowhere Street'" {
		t.Errorf("Unexpected detail: %q", nf.Detail)
	}
}

func TestNearbyByCoordsTightRadius(t *testing.T) {
	svc := newService(t)

	resp, err := svc.NearbyByCoords(-36.84, 174.76, 10, 20)
	if err != nil {
		t.Fatalf("NearbyByCoords: %v", err)
	}
	if resp.Count != 1 || resp.Results[0].StopCode != 1001 {
		t.Errorf("Expected only stop 1001 within 10m, got %+v", resp.Results)
	}
	if resp.ReferenceCoords.Latitude != -36.84 || resp.ReferenceCoords.Longitude != 174.76 {
		t.Errorf("Unexpected reference coords: %+v", resp.ReferenceCoords)
	}
}

func TestNearbyByCoordsEmptyIsValid(t *testing.T) {
	svc := newService(t)

	resp, err := svc.NearbyByCoords(-41.2866, 174.7756, 100, 20)
	if err != nil {
		t.Fatalf("NearbyByCoords: %v", err)
	}
	if resp.Count != 0 || len(resp.Results) != 0 {
		t.Errorf("Expected empty result set, got %+v", resp.Results)
	}
}

func TestNearbyLimitBoundsCandidatesBeforeRadius(t *testing.T) {
	svc := newService(t)

	// Every stop is inside a 100km radius, but limit=1 means only the
	// single nearest candidate is considered.
	resp, err := svc.NearbyByCoords(-36.84, 174.76, 100000, 1)
	if err != nil {
		t.Fatalf("NearbyByCoords: %v", err)
	}
	if resp.Count != 1 || resp.Results[0].StopCode != 1001 {
		t.Errorf("Expected only the nearest candidate, got %+v", resp.Results)
	}
}
