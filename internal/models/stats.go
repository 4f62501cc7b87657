package models

// Stats is the read-side aggregation over the three main collections. It is
// recomputed on demand, never cached.
type Stats struct {
	TotalSubjects     int   `json:"totalSubjects"`
	TotalResources    int   `json:"totalResources"`
	TotalPublications int   `json:"totalPublications"`
	TotalDownloads    int64 `json:"totalDownloads"`
}
