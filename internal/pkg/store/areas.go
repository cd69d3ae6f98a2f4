package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/domain"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/logger"
)

type ListAreasOpts struct {
	Group    *string
	CountyID *string
}

var areasColumns = []string{
	"area_id", "areas_group", "county_id", "county_name", "ward_id",
	"precinct_id", "precinct_name", "state_senate_id", "state_house_id",
	"county_commissioner_id", "district_court_id", "soil_water_id",
	"school_district_id", "school_district_name", "mcd_id", "precincts",
	"name", "updated",
}

func (s *store) UpsertAreas(ctx context.Context, areas []*domain.Area) error {
	if len(areas) == 0 {
		return nil
	}

	query := builder().Insert(tableAreas).Columns(areasColumns...)

	now := time.Now().UTC()
	for _, area := range areas {
		area.Updated = now
		query = query.Values(
			area.AreaID, area.AreasGroup, area.CountyID, area.CountyName,
			area.WardID, area.PrecinctID, area.PrecinctName, area.StateSenateID,
			area.StateHouseID, area.CountyCommissionerID, area.DistrictCourtID,
			area.SoilWaterID, area.SchoolDistrictID, area.SchoolDistrictName,
			area.MCDID, area.Precincts, area.Name, area.Updated,
		)
	}

	query = query.Suffix(`
on conflict (area_id)
do update
set
	areas_group = excluded.areas_group,
	county_id = excluded.county_id,
	county_name = excluded.county_name,
	ward_id = excluded.ward_id,
	precinct_id = excluded.precinct_id,
	precinct_name = excluded.precinct_name,
	state_senate_id = excluded.state_senate_id,
	state_house_id = excluded.state_house_id,
	county_commissioner_id = excluded.county_commissioner_id,
	district_court_id = excluded.district_court_id,
	soil_water_id = excluded.soil_water_id,
	school_district_id = excluded.school_district_id,
	school_district_name = excluded.school_district_name,
	mcd_id = excluded.mcd_id,
	precincts = excluded.precincts,
	name = excluded.name,
	updated = excluded.updated`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		logger.Error(ctx, err.Error())
		return fmt.Errorf("upsert areas: %w", err)
	}

	return nil
}

func (s *store) AreasByMCD(ctx context.Context, mcdID string) ([]*domain.Area, error) {
	query := builder().Select(areasColumns...).
		From(tableAreas).
		Where(sq.And{
			sq.Eq{"areas_group": "municipalities"},
			sq.Eq{"mcd_id": mcdID},
		}).
		OrderBy("county_id, area_id")

	var selected []*domain.Area
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) ListAreas(ctx context.Context, opts ListAreasOpts) ([]*domain.Area, error) {
	query := builder().Select(areasColumns...).
		From(tableAreas).
		OrderBy("areas_group, area_id")

	if opts.Group != nil {
		query = query.Where(sq.Eq{"areas_group": *opts.Group})
	}
	if opts.CountyID != nil {
		query = query.Where(sq.Eq{"county_id": *opts.CountyID})
	}

	var selected []*domain.Area
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		logger.Error(ctx, err.Error())
		return nil, wrapErr(err)
	}

	return selected, nil
}
