package core

import (
	"context"
	"housingapi/internal/infra/seed/csvfile"
	"housingapi/internal/infra/seed/s3"
	"housingapi/internal/infra/seed/sqldb"
	"os"
	"path/filepath"
	"testing"
)

const sourceCSV = "date,price,bedrooms,bathrooms,sqft_living,sqft_lot,floors,waterfront,view,condition,sqft_above,sqft_basement,yr_built,yr_renovated,street,city,statezip,country\n" +
	"2014-05-02 00:00:00,313000.0,3.0,1.5,1340,7912,1.5,0,0,3,1340,0,1955,2005,18810 Densmore Ave N,Shoreline,WA 98133,USA\n" +
	"2014-05-02 00:00:00,2384000.0,5.0,2.5,3650,9050,2.0,0,4,5,3370,280,1921,0,709 W Blaine St,Seattle,WA 98119,USA\n"

func TestSourceConfigFromEnv(t *testing.T) {
	t.Setenv("HOUSING_SOURCE_DRIVER", "SQLite")
	t.Setenv("HOUSING_SQLITE_PATH", "/tmp/seed.db")
	t.Setenv("HOUSING_SOURCE_TABLE", "listings")
	t.Setenv("HOUSING_S3_BUCKET", "bucket")
	cfg := SourceConfigFromEnv()
	if cfg.Driver != SourceSQLite || cfg.SQLitePath != "/tmp/seed.db" || cfg.Table != "listings" || cfg.S3.Bucket != "bucket" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestOpenSourceDrivers(t *testing.T) {
	ctx := context.Background()

	src, err := OpenSource(ctx, SourceConfig{})
	if err != nil {
		t.Fatalf("default driver: %v", err)
	}
	if fs, ok := src.(*csvfile.Source); !ok || fs.Path() != csvfile.DefaultPath {
		t.Fatalf("expected default csv source, got %#v", src)
	}

	src, err = OpenSource(ctx, SourceConfig{Driver: SourceSQLite, SQLitePath: "x.db"})
	if err != nil {
		t.Fatalf("sqlite driver: %v", err)
	}
	if sq, ok := src.(*sqldb.Source); !ok || sq.Driver() != sqldb.DriverSQLite {
		t.Fatalf("expected sqlite source, got %#v", src)
	}

	src, err = OpenSource(ctx, SourceConfig{Driver: SourcePostgres, Table: "listings"})
	if err != nil {
		t.Fatalf("postgres driver: %v", err)
	}
	if pg, ok := src.(*sqldb.Source); !ok || pg.Driver() != sqldb.DriverPostgres || pg.Table() != "listings" {
		t.Fatalf("expected postgres source, got %#v", src)
	}

	src, err = OpenSource(ctx, SourceConfig{Driver: SourceS3, S3: s3.Config{Bucket: "b", Key: "k.csv", AccessKeyID: "a", SecretAccessKey: "s"}})
	if err != nil {
		t.Fatalf("s3 driver: %v", err)
	}
	if obj, ok := src.(*s3.Source); !ok || obj.Location() != "s3://b/k.csv" {
		t.Fatalf("expected s3 source, got %#v", src)
	}
}

func TestOpenSourceErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := OpenSource(ctx, SourceConfig{Driver: "mongo"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	if _, err := OpenSource(ctx, SourceConfig{Driver: SourceS3}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
	if _, err := OpenSource(ctx, SourceConfig{Driver: SourceSQLite, Table: "bad name"}); err == nil {
		t.Fatalf("expected table name error")
	}
}

func TestLoadServiceFromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "houses.csv")
	if err := os.WriteFile(path, []byte(sourceCSV), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	ctx := context.Background()
	src, err := OpenSource(ctx, SourceConfig{Driver: SourceCSV, CSVPath: path})
	if err != nil {
		t.Fatalf("open source: %v", err)
	}
	svc, err := LoadService(ctx, src)
	if err != nil {
		t.Fatalf("load service: %v", err)
	}
	if svc.Count() != 2 {
		t.Fatalf("expected 2 houses, got %d", svc.Count())
	}
	h, err := svc.GetHouse(ctx, 1)
	if err != nil || h.City != "Seattle" || h.Price != 2384000 {
		t.Fatalf("unexpected house %+v %v", h, err)
	}

	missing, _ := OpenSource(ctx, SourceConfig{CSVPath: filepath.Join(t.TempDir(), "nope.csv")})
	if _, err := LoadService(ctx, missing); err == nil {
		t.Fatalf("expected load error for missing file")
	}
}
