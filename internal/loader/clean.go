package loader

import (
	"github.com/samber/lo"

	"github.com/ginjaninja78/flood-control-pipeline/internal/aggregate"
	"github.com/ginjaninja78/flood-control-pipeline/internal/types"
	"github.com/ginjaninja78/flood-control-pipeline/internal/validation"
)

// Categorical defaults for absent text fields.
const (
	DefaultRegion     = "Unknown"
	DefaultMainIsland = "Unknown"
	DefaultProvince   = "Unknown"
	DefaultTypeOfWork = "Unspecified"
	DefaultContractor = "Unknown Contractor"
)

type rowKind int

const (
	rowKept rowKind = iota
	rowOutOfRange
	rowInvalid
)

// rowOutcome says what cleanRow decided about a row.
type rowOutcome struct {
	kind          rowKind
	err           *validation.FieldError
	capitalFilled bool
}

// cleanRow runs the per-row pipeline. Province-mean imputation happens later
// over the whole dataset.
func (l *Loader) cleanRow(raw types.RawFields) (types.CleanRecord, rowOutcome) {
	year, ok := validation.ParseInt(raw.FundingYear)
	if !ok || year < l.opts.MinYear || year > l.opts.MaxYear {
		return types.CleanRecord{}, rowOutcome{kind: rowOutOfRange}
	}

	budget, ferr := validation.RequirePositive(types.ColApprovedBudget, raw.ApprovedBudget)
	if ferr != nil {
		return types.CleanRecord{}, rowOutcome{kind: rowInvalid, err: ferr}
	}
	cost, ferr := validation.RequirePositive(types.ColContractCost, raw.ContractCost)
	if ferr != nil {
		return types.CleanRecord{}, rowOutcome{kind: rowInvalid, err: ferr}
	}

	start, ferr := validation.RequireDate(types.ColStartDate, raw.StartDate)
	if ferr != nil {
		return types.CleanRecord{}, rowOutcome{kind: rowInvalid, err: ferr}
	}
	end, ok := validation.ParseDate(raw.ActualCompletionDate)
	if !ok {
		end = start
	}

	rec := types.CleanRecord{
		FundingYear:         year,
		Region:              validation.TextOrDefault(raw.Region, DefaultRegion),
		MainIsland:          validation.TextOrDefault(raw.MainIsland, DefaultMainIsland),
		Province:            validation.TextOrDefault(raw.Province, DefaultProvince),
		TypeOfWork:          validation.TextOrDefault(raw.TypeOfWork, DefaultTypeOfWork),
		Contractor:          validation.TextOrDefault(raw.Contractor, DefaultContractor),
		ApprovedBudget:      budget,
		ContractCost:        cost,
		CostSavings:         budget - cost,
		CompletionDelayDays: validation.DaysBetween(start, end),
		Lat:                 validation.OptionalFloat(raw.ProjectLatitude),
		Lon:                 validation.OptionalFloat(raw.ProjectLongitude),
	}

	outcome := rowOutcome{kind: rowKept}
	if rec.Lat == nil {
		if v := validation.OptionalFloat(raw.CapitalLatitude); v != nil {
			rec.Lat = v
			outcome.capitalFilled = true
		}
	}
	if rec.Lon == nil {
		if v := validation.OptionalFloat(raw.CapitalLongitude); v != nil {
			rec.Lon = v
			outcome.capitalFilled = true
		}
	}

	return rec, outcome
}

// imputeProvinceMeans fills missing coordinates from the mean of the fully
// coordinated records in the same province and returns how many records
// received a fill.
func imputeProvinceMeans(records []types.CleanRecord) int {
	type coordSum struct {
		lat, lon float64
		n        int
	}

	located := lo.Filter(records, func(r types.CleanRecord, _ int) bool {
		return r.HasCoordinates()
	})
	sums := aggregate.ToMap(aggregate.GroupBy(located,
		func(r types.CleanRecord) string { return r.Province },
		func(acc coordSum, r types.CleanRecord) coordSum {
			acc.lat += *r.Lat
			acc.lon += *r.Lon
			acc.n++
			return acc
		}))

	imputed := 0
	for i := range records {
		r := &records[i]
		if r.HasCoordinates() {
			continue
		}
		s, ok := sums[r.Province]
		if !ok || s.n == 0 {
			continue
		}
		if r.Lat == nil {
			lat := s.lat / float64(s.n)
			r.Lat = &lat
		}
		if r.Lon == nil {
			lon := s.lon / float64(s.n)
			r.Lon = &lon
		}
		imputed++
	}
	return imputed
}
