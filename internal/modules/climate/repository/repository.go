package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"log/slog"

	"climate-server/internal/modules/climate/types"
)

//go:embed sql/list-precipitation.sql
var listPrecipitationSQL string

//go:embed sql/list-stations.sql
var listStationsSQL string

//go:embed sql/list-recent-tobs.sql
var listRecentTobsSQL string

//go:embed sql/temp-stats.sql
var tempStatsSQL string

type ClimateRepository interface {
	ListPrecipitation(ctx context.Context, limit int) ([]types.DateValue, error)
	ListStations(ctx context.Context) ([]types.Station, error)
	ListRecentTobs(ctx context.Context, since string) ([]types.DateValue, error)
	// TempStats returns nil when no measurement falls in [start, end].
	// A nil end leaves the range open.
	TempStats(ctx context.Context, start string, end *string) (*types.TempStats, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) ListPrecipitation(ctx context.Context, limit int) ([]types.DateValue, error) {
	rows, err := r.db.QueryContext(ctx, listPrecipitationSQL, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close precipitation rows", "error", err)
		}
	}()
	out := []types.DateValue{}
	for rows.Next() {
		var (
			date string
			prcp sql.NullFloat64
		)
		if err := rows.Scan(&date, &prcp); err != nil {
			return nil, err
		}
		dv := types.DateValue{Date: date}
		if prcp.Valid {
			v := prcp.Float64
			dv.Value = &v
		}
		out = append(out, dv)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) ListStations(ctx context.Context) ([]types.Station, error) {
	rows, err := r.db.QueryContext(ctx, listStationsSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close stations rows", "error", err)
		}
	}()
	out := []types.Station{}
	for rows.Next() {
		var s types.Station
		if err := rows.Scan(&s.ID, &s.Station, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) ListRecentTobs(ctx context.Context, since string) ([]types.DateValue, error) {
	rows, err := r.db.QueryContext(ctx, listRecentTobsSQL, since)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close tobs rows", "error", err)
		}
	}()
	out := []types.DateValue{}
	for rows.Next() {
		var (
			date string
			tobs float64
		)
		if err := rows.Scan(&date, &tobs); err != nil {
			return nil, err
		}
		out = append(out, types.DateValue{Date: date, Value: &tobs})
	}
	return out, rows.Err()
}

func (r *repositoryImpl) TempStats(ctx context.Context, start string, end *string) (*types.TempStats, error) {
	var endArg any
	if end != nil {
		endArg = *end
	}
	var first, second, third sql.NullFloat64
	err := r.db.QueryRowContext(ctx, tempStatsSQL, start, endArg).Scan(&first, &second, &third)
	if err != nil {
		return nil, err
	}
	// An aggregate over zero rows is a single row of NULLs.
	if !first.Valid {
		return nil, nil
	}
	return &types.TempStats{
		TMin: first.Float64,
		TAvg: second.Float64,
		TMax: third.Float64,
	}, nil
}
