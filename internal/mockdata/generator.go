// Package mockdata produces synthetic report rows for offline runs. The
// shapes match the warehouse queries; values vary linearly with the row index.
package mockdata

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/civil"

	"go-analytics-pipeline/internal/apperror"
	"go-analytics-pipeline/internal/model"
)

const (
	globalTrendDays = 30
	dailyStatDays   = 7
)

// ErrUnknownReport is returned for catalog entries without sample data.
var ErrUnknownReport = errors.New("no mock data for report")

// Countries are the sample countries, largest first.
var Countries = []string{"United States", "India", "Brazil", "United Kingdom", "Germany"}

type Generator struct {
	Now func() time.Time
}

func New() *Generator {
	return &Generator{Now: time.Now}
}

func (g *Generator) today() civil.Date {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return civil.DateOf(now())
}

// GlobalTrends returns 30 daily rows counting back from the first of the
// current month.
func (g *Generator) GlobalTrends() model.RecordSet {
	today := g.today()
	first := civil.Date{Year: today.Year, Month: today.Month, Day: 1}

	rs := make(model.RecordSet, 0, globalTrendDays)
	for i := 0; i < globalTrendDays; i++ {
		rs = append(rs, model.GenericRecord{
			"date":                   first.AddDays(-i),
			"global_new_cases":       100000 - i*1000,
			"global_new_deaths":      2000 - i*50,
			"global_new_recovered":   80000 - i*800,
			"global_total_cases":     10000000 + i*100000,
			"global_total_deaths":    500000 + i*2000,
			"global_total_recovered": 9000000 + i*90000,
			"cases_7d_avg":           95000 - i*900,
			"deaths_7d_avg":          1900 - i*45,
			"recovered_7d_avg":       75000 - i*750,
			"case_fatality_rate":     2.0,
			"recovery_rate":          80.0,
		})
	}
	return rs
}

// CountryAnalysis returns one row per sample country.
func (g *Generator) CountryAnalysis() model.RecordSet {
	today := g.today()

	rs := make(model.RecordSet, 0, len(Countries))
	for i, country := range Countries {
		rs = append(rs, model.GenericRecord{
			"country_name":            country,
			"latest_date":             today,
			"total_new_cases_30d":     1000000 - i*200000,
			"total_new_deaths_30d":    20000 - i*4000,
			"total_new_recovered_30d": 800000 - i*160000,
			"total_cases":             10000000 - i*1000000,
			"total_deaths":            200000 - i*20000,
			"total_recovered":         9000000 - i*900000,
			"population":              100000000 - i*10000000,
			"cases_per_100k":          10000 - i*1000,
			"deaths_per_100k":         200 - i*20,
			"case_fatality_rate":      2.0,
			"recovery_rate":           90.0,
		})
	}
	return rs
}

// DailyStats returns the last 7 days, newest first, each with a nested list
// of the leading countries.
func (g *Generator) DailyStats() model.RecordSet {
	today := g.today()

	rs := make(model.RecordSet, 0, dailyStatDays)
	for i := 0; i < dailyStatDays; i++ {
		f := float64(i)
		rs = append(rs, model.GenericRecord{
			"date":                       today.AddDays(-i),
			"countries_with_cases":       200,
			"total_new_cases":            500000 - i*20000,
			"total_new_deaths":           10000 - i*400,
			"total_new_recovered":        400000 - i*16000,
			"total_cases":                100000000 + i*500000,
			"total_deaths":               2000000 + i*10000,
			"total_recovered":            90000000 + i*400000,
			"global_new_cases_per_100k":  6.5 - f*0.2,
			"global_new_deaths_per_100k": 0.13 - f*0.005,
			"global_case_fatality_rate":  2.0,
			"global_recovery_rate":       80.0,
			"top_10_countries": []interface{}{
				map[string]interface{}{
					"country_name":        Countries[0],
					"new_confirmed":       100000 - i*5000,
					"new_deceased":        2000 - i*100,
					"new_recovered":       80000 - i*4000,
					"new_cases_per_100k":  30.0 - f*1.5,
					"new_deaths_per_100k": 0.6 - f*0.03,
				},
				map[string]interface{}{
					"country_name":        Countries[1],
					"new_confirmed":       90000 - i*4500,
					"new_deceased":        1800 - i*90,
					"new_recovered":       72000 - i*3600,
					"new_cases_per_100k":  27.0 - f*1.35,
					"new_deaths_per_100k": 0.54 - f*0.027,
				},
			},
		})
	}
	return rs
}

// Report is one generated report.
type Report struct {
	Name string
	Rows model.RecordSet
}

// All returns every report in catalog order.
func (g *Generator) All() []Report {
	return []Report{
		{Name: model.ReportGlobalTrends, Rows: g.GlobalTrends()},
		{Name: model.ReportCountryAnalysis, Rows: g.CountryAnalysis()},
		{Name: model.ReportDailyStats, Rows: g.DailyStats()},
	}
}

// Execute serves the generated rows for a catalog entry, so the generator can
// stand in for the warehouse.
func (g *Generator) Execute(ctx context.Context, spec model.ReportSpec) (model.RecordSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperror.Query(spec.Name, err)
	}
	switch spec.Name {
	case model.ReportGlobalTrends:
		return g.GlobalTrends(), nil
	case model.ReportCountryAnalysis:
		return g.CountryAnalysis(), nil
	case model.ReportDailyStats:
		return g.DailyStats(), nil
	default:
		return nil, apperror.Query(spec.Name, ErrUnknownReport)
	}
}
