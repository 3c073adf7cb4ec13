package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"climate-server/internal/config"
	"climate-server/internal/modules/climate/types"
)

func ptr(v float64) *float64 { return &v }

var (
	fixtureStations = []types.Station{
		{ID: 1, Station: "USC00519397", Name: "WAIKIKI 717.2, HI US"},
		{ID: 2, Station: "USC00513117", Name: "KANEOHE 838.1, HI US"},
	}
	fixtureMeasurements = []types.Measurement{
		{Station: "USC00519397", Date: "2010-01-01", Prcp: ptr(0.08), Tobs: 5},
		{Station: "USC00513117", Date: "2010-01-15", Prcp: nil, Tobs: 10},
		{Station: "USC00519397", Date: "2010-01-31", Prcp: ptr(0), Tobs: 15},
		{Station: "USC00519397", Date: "2016-08-24", Prcp: ptr(0.5), Tobs: 77},
		{Station: "USC00513117", Date: "2017-08-23", Prcp: ptr(0.1), Tobs: 81},
	}
)

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hawaii.sqlite")
	rw, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer func() { _ = rw.Close() }()

	if _, err := rw.Exec(`
		CREATE TABLE station (id INTEGER PRIMARY KEY, station TEXT, name TEXT);
		CREATE TABLE measurement (station TEXT, date TEXT, prcp FLOAT, tobs FLOAT);
	`); err != nil {
		t.Fatalf("schema: %v", err)
	}
	for _, s := range fixtureStations {
		if _, err := rw.Exec(`INSERT INTO station (id, station, name) VALUES (?, ?, ?)`, s.ID, s.Station, s.Name); err != nil {
			t.Fatalf("insert station: %v", err)
		}
	}
	for _, m := range fixtureMeasurements {
		if _, err := rw.Exec(`INSERT INTO measurement (station, date, prcp, tobs) VALUES (?, ?, ?, ?)`, m.Station, m.Date, m.Prcp, m.Tobs); err != nil {
			t.Fatalf("insert measurement: %v", err)
		}
	}
	return path
}

func startServer(t *testing.T, cfg config.Config) (string, context.CancelFunc, <-chan error) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, cfg, ln) }()
	t.Cleanup(cancel)
	return "http://" + ln.Addr().String(), cancel, done
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	var lastErr error
	for i := 0; i < 50; i++ {
		resp, err := client.Get(url)
		if err != nil {
			lastErr = err
			time.Sleep(20 * time.Millisecond)
			continue
		}
		defer func() { _ = resp.Body.Close() }()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		return resp.StatusCode, string(b)
	}
	t.Fatalf("GET %s: %v", url, lastErr)
	return 0, ""
}

func TestServe_EndToEnd(t *testing.T) {
	cfg := config.Config{
		SQLiteDriver:       "sqlite3",
		SQLitePath:         writeDataset(t),
		SQLiteMaxOpenConns: 2,
		SQLiteMaxIdleConns: 2,
		PrecipitationLimit: 3,
		TobsSince:          "2016-08-24",
	}
	base, cancel, done := startServer(t, cfg)

	t.Run("welcome", func(t *testing.T) {
		code, body := get(t, base+"/")
		if code != http.StatusOK || !strings.HasPrefix(body, "Available Routes:<br/>") {
			t.Fatalf("GET / = %d %q", code, body)
		}
	})

	t.Run("precipitation capped and ordered", func(t *testing.T) {
		code, body := get(t, base+"/api/v1.0/precipitation")
		if code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if got := strings.TrimSpace(body); got != `[{"2010-01-01":0.08},{"2010-01-15":null},{"2010-01-31":0}]` {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("stations", func(t *testing.T) {
		code, body := get(t, base+"/api/v1.0/stations")
		if code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		var got []types.Station
		if err := json.Unmarshal([]byte(body), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(got) != len(fixtureStations) {
			t.Errorf("got %d stations; want %d", len(got), len(fixtureStations))
		}
	})

	t.Run("tobs", func(t *testing.T) {
		code, body := get(t, base+"/api/v1.0/tobs")
		if code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if got := strings.TrimSpace(body); got != `[{"2016-08-24":77},{"2017-08-23":81}]` {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("range stats", func(t *testing.T) {
		code, body := get(t, base+"/api/v1.0/2010-01-01/2010-01-31")
		if code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if got := strings.TrimSpace(body); got != `[{"TMIN":5,"TAVG":15,"TMAX":10}]` {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("no data past the dataset", func(t *testing.T) {
		code, body := get(t, base+"/api/v1.0/2099-01-01")
		if code != http.StatusNotFound || !strings.Contains(body, "2099-01-01") {
			t.Errorf("GET /api/v1.0/2099-01-01 = %d %s", code, body)
		}
	})

	t.Run("start after end", func(t *testing.T) {
		code, _ := get(t, base+"/api/v1.0/2017-01-01/2010-01-01")
		if code != http.StatusNotFound {
			t.Errorf("status = %d; want 404", code)
		}
	})

	t.Run("healthz", func(t *testing.T) {
		code, body := get(t, base+"/healthz")
		if code != http.StatusOK || !strings.Contains(body, `"ok"`) {
			t.Errorf("GET /healthz = %d %s", code, body)
		}
	})

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Serve() = %v; want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServe_MissingDataset(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	cfg := config.Config{SQLitePath: filepath.Join(t.TempDir(), "absent.sqlite")}
	if err := Serve(context.Background(), cfg, ln); err == nil {
		t.Fatal("Serve() = nil; want error for missing dataset")
	}
}
