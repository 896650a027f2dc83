// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SiteBlock groups the records of one source inside a Weekly Summary.
type SiteBlock struct {
	SourceID    SourceID `json:"source_id" yaml:"source_id"`
	SiteSummary string   `json:"site_summary" yaml:"site_summary"`
	Items       []Record `json:"items" yaml:"items"`

	// OrganizationStats counts items per organization; organization block only.
	OrganizationStats map[string]int `json:"organization_stats,omitempty" yaml:"organization_stats,omitempty"`
}

// WeeklySummary is the persisted document for one week bucket.
type WeeklySummary struct {
	// GeneratedAt is an ISO 8601 timestamp.
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`

	// WeekStart is the Monday of the week (YYYY-MM-DD); it is the archive key.
	WeekStart string `json:"week_start" yaml:"week_start"`

	// WeekEnd is the Sunday of the week (YYYY-MM-DD).
	WeekEnd string `json:"week_end" yaml:"week_end"`

	// LastUpdated is the UTC date of the run that wrote the document.
	LastUpdated string `json:"last_updated" yaml:"last_updated"`

	Sites []SiteBlock `json:"sites" yaml:"sites"`
}

// TotalItems returns the number of records across all blocks.
func (s *WeeklySummary) TotalItems() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, b := range s.Sites {
		n += len(b.Items)
	}
	return n
}

// Block returns the block for id, or nil.
func (s *WeeklySummary) Block(id SourceID) *SiteBlock {
	if s == nil {
		return nil
	}
	for i := range s.Sites {
		if s.Sites[i].SourceID == id {
			return &s.Sites[i]
		}
	}
	return nil
}
