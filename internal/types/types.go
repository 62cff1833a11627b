// =============================================================================
// Flood Control Pipeline - Shared Types
// =============================================================================
//
// This package contains the types shared across the pipeline to avoid import
// cycles. Types defined here are used by:
//   - csvparser / xlsxparser (RawFields)
//   - loader                 (CleanRecord, LoadReport)
//   - reports                (report rows, SummaryStats)
//   - exporter / store / preview (report rows as output sinks)
//
// =============================================================================

package types

import "strconv"

// =============================================================================
// INPUT COLUMNS
// =============================================================================

// Required input column headers. Matching is case-exact.
const (
	ColMainIsland       = "MainIsland"
	ColRegion           = "Region"
	ColProvince         = "Province"
	ColTypeOfWork       = "TypeOfWork"
	ColFundingYear      = "FundingYear"
	ColApprovedBudget   = "ApprovedBudgetForContract"
	ColContractCost     = "ContractCost"
	ColActualCompletion = "ActualCompletionDate"
	ColContractor       = "Contractor"
	ColStartDate        = "StartDate"
	ColProjectLatitude  = "ProjectLatitude"
	ColProjectLongitude = "ProjectLongitude"
	ColCapitalLatitude  = "ProvincialCapitalLatitude"
	ColCapitalLongitude = "ProvincialCapitalLongitude"
)

// RequiredColumns lists every column the input table must carry.
var RequiredColumns = []string{
	ColMainIsland,
	ColRegion,
	ColProvince,
	ColTypeOfWork,
	ColFundingYear,
	ColApprovedBudget,
	ColContractCost,
	ColActualCompletion,
	ColContractor,
	ColStartDate,
	ColProjectLatitude,
	ColProjectLongitude,
	ColCapitalLatitude,
	ColCapitalLongitude,
}

// =============================================================================
// RAW INPUT
// =============================================================================

// RawFields is one untrusted input row. Every field is free text; an empty
// string means the value is absent.
type RawFields struct {
	MainIsland           string
	Region               string
	Province             string
	TypeOfWork           string
	FundingYear          string
	ApprovedBudget       string
	ContractCost         string
	ActualCompletionDate string
	Contractor           string
	StartDate            string
	ProjectLatitude      string
	ProjectLongitude     string
	CapitalLatitude      string
	CapitalLongitude     string
}

// RawFieldsFromMap builds RawFields from a header -> value map, as produced by
// the CSV and XLSX readers.
func RawFieldsFromMap(row map[string]string) RawFields {
	return RawFields{
		MainIsland:           row[ColMainIsland],
		Region:               row[ColRegion],
		Province:             row[ColProvince],
		TypeOfWork:           row[ColTypeOfWork],
		FundingYear:          row[ColFundingYear],
		ApprovedBudget:       row[ColApprovedBudget],
		ContractCost:         row[ColContractCost],
		ActualCompletionDate: row[ColActualCompletion],
		Contractor:           row[ColContractor],
		StartDate:            row[ColStartDate],
		ProjectLatitude:      row[ColProjectLatitude],
		ProjectLongitude:     row[ColProjectLongitude],
		CapitalLatitude:      row[ColCapitalLatitude],
		CapitalLongitude:     row[ColCapitalLongitude],
	}
}

// =============================================================================
// CLEANED RECORD
// =============================================================================

// CleanRecord is a validated, normalized and metric-enriched project row.
// It is the unit every report aggregates over and is never mutated once
// coordinate imputation has finished.
type CleanRecord struct {
	FundingYear int

	Region     string
	MainIsland string
	Province   string
	TypeOfWork string
	Contractor string

	// ApprovedBudget and ContractCost are always > 0.
	ApprovedBudget float64
	ContractCost   float64

	// CostSavings is ApprovedBudget - ContractCost. Negative means overrun.
	CostSavings float64

	// CompletionDelayDays is completion minus start, in days. Not clamped.
	CompletionDelayDays float64

	// Lat and Lon are nil when no tier of the coordinate fallback applied.
	Lat *float64
	Lon *float64
}

// HasCoordinates reports whether both coordinates are known.
func (r *CleanRecord) HasCoordinates() bool {
	return r.Lat != nil && r.Lon != nil
}

// LoadReport summarizes what happened while a dataset was cleaned.
type LoadReport struct {
	// TotalRows is every data row read, including malformed ones.
	TotalRows int `json:"total_rows"`

	// FilteredRows is the number of rows retained as CleanRecords.
	FilteredRows int `json:"filtered_rows"`

	// ParseErrors counts rows dropped by validation, malformed rows included.
	ParseErrors int `json:"parse_errors"`

	// ImputedCoords counts records completed from their province mean.
	ImputedCoords int `json:"imputed_coords"`

	// OutOfRange counts rows silently skipped by the funding year filter.
	OutOfRange int `json:"out_of_range"`

	// Malformed counts rows whose column count did not match the header.
	Malformed int `json:"malformed"`

	// CapitalFilled counts records that took at least one coordinate from
	// the provincial capital.
	CapitalFilled int `json:"capital_filled"`
}

// =============================================================================
// REPORT ROWS
// =============================================================================

// Report 1 column headers.
var RegionSummaryHeaders = []string{
	"Region", "MainIsland", "TotalBudget", "MedianSavings", "AvgDelay", "HighDelayPct", "EfficiencyScore",
}

// RegionSummaryRow is one row of the Regional Efficiency report. Numeric
// fields are fixed two-decimal strings.
type RegionSummaryRow struct {
	Region          string `json:"Region"`
	MainIsland      string `json:"MainIsland"`
	TotalBudget     string `json:"TotalBudget"`
	MedianSavings   string `json:"MedianSavings"`
	AvgDelay        string `json:"AvgDelay"`
	HighDelayPct    string `json:"HighDelayPct"`
	EfficiencyScore string `json:"EfficiencyScore"`
}

// Values returns the row cells in header order.
func (r RegionSummaryRow) Values() []string {
	return []string{r.Region, r.MainIsland, r.TotalBudget, r.MedianSavings, r.AvgDelay, r.HighDelayPct, r.EfficiencyScore}
}

// Report 2 column headers.
var ContractorRankingHeaders = []string{
	"Rank", "Contractor", "TotalCost", "NumProjects", "AvgDelay", "TotalSavings", "ReliabilityIndex", "RiskFlag",
}

// Risk flags assigned by the contractor ranking.
const (
	RiskHigh = "High Risk"
	RiskOK   = "OK"
)

// ContractorRankingRow is one row of the Contractor Ranking report.
type ContractorRankingRow struct {
	Rank             int    `json:"Rank"`
	Contractor       string `json:"Contractor"`
	TotalCost        string `json:"TotalCost"`
	NumProjects      int    `json:"NumProjects"`
	AvgDelay         string `json:"AvgDelay"`
	TotalSavings     string `json:"TotalSavings"`
	ReliabilityIndex string `json:"ReliabilityIndex"`
	RiskFlag         string `json:"RiskFlag"`
}

// Values returns the row cells in header order.
func (r ContractorRankingRow) Values() []string {
	return []string{
		strconv.Itoa(r.Rank), r.Contractor, r.TotalCost, strconv.Itoa(r.NumProjects),
		r.AvgDelay, r.TotalSavings, r.ReliabilityIndex, r.RiskFlag,
	}
}

// Report 3 column headers.
var TypeTrendHeaders = []string{
	"FundingYear", "TypeOfWork", "TotalProjects", "AvgSavings", "OverrunRate", "YoYChange",
}

// TypeTrendRow is one (FundingYear, TypeOfWork) row of the Annual Trends report.
type TypeTrendRow struct {
	FundingYear   int    `json:"FundingYear"`
	TypeOfWork    string `json:"TypeOfWork"`
	TotalProjects int    `json:"TotalProjects"`
	AvgSavings    string `json:"AvgSavings"`
	OverrunRate   string `json:"OverrunRate"`
	YoYChange     string `json:"YoYChange"`
}

// Values returns the row cells in header order.
func (r TypeTrendRow) Values() []string {
	return []string{
		strconv.Itoa(r.FundingYear), r.TypeOfWork, strconv.Itoa(r.TotalProjects),
		r.AvgSavings, r.OverrunRate, r.YoYChange,
	}
}

// =============================================================================
// SUMMARY
// =============================================================================

// SummaryStats is the dataset-wide summary persisted as summary.json.
type SummaryStats struct {
	TotalProjects      int    `json:"total_projects"`
	TotalContractors   int    `json:"total_contractors"`
	TotalProvinces     int    `json:"total_provinces"`
	GlobalAvgDelayDays string `json:"global_avg_delay_days"`
	TotalSavings       string `json:"total_savings"`
	Report1Regions     int    `json:"report1_regions"`
	Report2Contractors int    `json:"report2_contractors"`
	Report3Entries     int    `json:"report3_entries"`
}
