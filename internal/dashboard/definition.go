package dashboard

import "fmt"

// DefinitionFile is the file name of the local dashboard layout document.
const DefinitionFile = "covid19_dashboard.json"

// Definition describes the dashboard layout for offline review.
type Definition struct {
	Name               string             `json:"name"`
	Type               string             `json:"type"`
	DashboardType      string             `json:"dashboardType"`
	DateRangeSelection DateRangeSelection `json:"dateRangeSelection"`
	RefreshSchedule    RefreshSchedule    `json:"refreshSchedule"`
	Sections           []Section          `json:"sections"`
}

type DateRangeSelection struct {
	IncludeToday    bool     `json:"includeToday"`
	RelativePresets []string `json:"relativePresets"`
}

type Section struct {
	Name       string      `json:"name"`
	Position   Position    `json:"position"`
	Components []Component `json:"components"`
}

type Position struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Component is a single chart bound to report columns.
type Component struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Dimensions []string `json:"dimensions"`
	Metrics    []string `json:"metrics"`
}

// DefaultDefinition returns the three-section layout, one section per
// report, stacked vertically.
func DefaultDefinition(refreshInterval int) Definition {
	section := func(row int, name string, c Component) Section {
		return Section{
			Name:       name,
			Position:   Position{X: 0, Y: row * 6, Width: 12, Height: 6},
			Components: []Component{c},
		}
	}

	return Definition{
		Name:          "COVID-19 Analytics Dashboard",
		Type:          "DASHBOARD",
		DashboardType: "EXPLORATION",
		DateRangeSelection: DateRangeSelection{
			IncludeToday:    true,
			RelativePresets: []string{"LAST_30_DAYS", "LAST_90_DAYS", "LAST_YEAR"},
		},
		RefreshSchedule: RefreshSchedule{RefreshInterval: refreshInterval},
		Sections: []Section{
			section(0, "Global Trends", Component{
				Name:       "Global Cases and Deaths",
				Type:       "LINE_CHART",
				Dimensions: []string{"date"},
				Metrics:    []string{"global_new_cases", "global_new_deaths", "cases_7d_avg", "deaths_7d_avg"},
			}),
			section(1, "Country Analysis", Component{
				Name:       "Top Countries",
				Type:       "BAR_CHART",
				Dimensions: []string{"country_name"},
				Metrics:    []string{"total_cases", "total_deaths", "cases_per_100k"},
			}),
			section(2, "Daily Statistics", Component{
				Name:       "Daily New Cases",
				Type:       "LINE_CHART",
				Dimensions: []string{"date"},
				Metrics:    []string{"total_new_cases", "total_new_deaths"},
			}),
		},
	}
}

// ReportURL is the viewer link of a dashboard.
func ReportURL(dashboardID string) string {
	return fmt.Sprintf("https://datastudio.google.com/reporting/%s/page/1", dashboardID)
}
