package model

// GenericRecord is a schema-agnostic map for one result row
type GenericRecord map[string]interface{}

// RecordSet is the ordered list of rows returned by a report query
type RecordSet []GenericRecord

// Report names, in catalog order
const (
	ReportGlobalTrends    = "global_trends"
	ReportCountryAnalysis = "country_analysis"
	ReportDailyStats      = "daily_stats"
)

// ReportNames returns the fixed catalog order.
func ReportNames() []string {
	return []string{ReportGlobalTrends, ReportCountryAnalysis, ReportDailyStats}
}

// ArtifactKeys returns the blob keys written by a full pipeline run.
func ArtifactKeys() []string {
	names := ReportNames()
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = KeyFor(name)
	}
	return keys
}

// KeyFor derives the artifact key for a report name
func KeyFor(reportName string) string {
	return reportName + ".json"
}

// ReportSpec is one named query of the catalog
type ReportSpec struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

// Key is the blob key the report is published under
func (r ReportSpec) Key() string {
	return KeyFor(r.Name)
}

// PublishedArtifact is the serialized form of a RecordSet stored under Key
type PublishedArtifact struct {
	Key         string `json:"key"`
	Content     []byte `json:"-"`
	ContentType string `json:"content_type"`
	RecordCount int    `json:"record_count"`
}

// ContentTypeJSON is the content type of every artifact
const ContentTypeJSON = "application/json"
