package core

import (
	"context"
	"fmt"
	"housingapi/internal/infra/seed/csvfile"
	"housingapi/internal/infra/seed/s3"
	"housingapi/internal/infra/seed/sqldb"
	"housingapi/pkg/domain"
	"os"
	"strings"
)

// SourceDriver identifies where the startup rows are read from.
type SourceDriver string

const (
	SourceCSV      SourceDriver = "csv"      // local CSV file
	SourceS3       SourceDriver = "s3"       // CSV object in an S3 bucket
	SourceSQLite   SourceDriver = "sqlite"   // table in a sqlite file
	SourcePostgres SourceDriver = "postgres" // table in a PostgreSQL database
)

// Source produces the rows bulk-loaded into the store at startup.
type Source interface {
	Load(ctx context.Context) ([]domain.House, error)
}

// SourceConfig selects and configures a Source.
type SourceConfig struct {
	Driver      SourceDriver
	CSVPath     string
	S3          s3.Config
	SQLitePath  string
	PostgresDSN string
	Table       string
}

// SourceConfigFromEnv reads the seed source settings.
//
//	HOUSING_SOURCE_DRIVER: csv|s3|sqlite|postgres (default csv)
//	HOUSING_CSV_PATH: CSV file path (default data/house_pricing.csv)
//	HOUSING_S3_*: see s3.ConfigFromEnv
//	HOUSING_SQLITE_PATH: sqlite file (default houses.db)
//	HOUSING_POSTGRES_DSN: postgres connection string
//	HOUSING_SOURCE_TABLE: table for sqlite and postgres (default houses)
func SourceConfigFromEnv() SourceConfig {
	return SourceConfig{
		Driver:      SourceDriver(strings.ToLower(os.Getenv("HOUSING_SOURCE_DRIVER"))),
		CSVPath:     os.Getenv("HOUSING_CSV_PATH"),
		S3:          s3.ConfigFromEnv(),
		SQLitePath:  os.Getenv("HOUSING_SQLITE_PATH"),
		PostgresDSN: os.Getenv("HOUSING_POSTGRES_DSN"),
		Table:       os.Getenv("HOUSING_SOURCE_TABLE"),
	}
}

// OpenSource builds the Source named by cfg.Driver.
func OpenSource(ctx context.Context, cfg SourceConfig) (Source, error) {
	switch cfg.Driver {
	case "", SourceCSV:
		return csvfile.New(cfg.CSVPath), nil
	case SourceS3:
		src, err := s3.New(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return src, nil
	case SourceSQLite, SourcePostgres:
		var (
			src *sqldb.Source
			err error
		)
		if cfg.Driver == SourceSQLite {
			src, err = sqldb.NewSQLite(cfg.SQLitePath, cfg.Table)
		} else {
			src, err = sqldb.NewPostgres(cfg.PostgresDSN, cfg.Table)
		}
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown source driver %s", cfg.Driver)
	}
}

// LoadService reads every row from src into a new in-memory service.
func LoadService(ctx context.Context, src Source, opts ...Option) (*Service, error) {
	rows, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load houses: %w", err)
	}
	return NewInMemoryService(rows, opts...), nil
}
