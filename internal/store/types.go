package store

// Artifact is a single artifact record returned by the store.
// The ID is required to fetch the artifact's content.
type Artifact struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_in_bytes"`
	Expired   bool   `json:"expired"`
}

// artifactPage is one page of the artifacts listing response.
type artifactPage struct {
	TotalCount int        `json:"total_count"`
	Artifacts  []Artifact `json:"artifacts"`
}

// commitRecord is the subset of a commit listing entry we consume.
type commitRecord struct {
	SHA string `json:"sha"`
}
