package model

import (
	"fmt"
	"strings"
)

// MediaListStatus is the state of an entry on a user's list
type MediaListStatus string

const (
	StatusCompleted MediaListStatus = "COMPLETED"
	StatusCurrent   MediaListStatus = "CURRENT"
	StatusDropped   MediaListStatus = "DROPPED"
	StatusPaused    MediaListStatus = "PAUSED"
	StatusPlanning  MediaListStatus = "PLANNING"
	StatusRepeating MediaListStatus = "REPEATING"
)

// AllStatuses lists every status in display order
var AllStatuses = []MediaListStatus{
	StatusCompleted,
	StatusCurrent,
	StatusDropped,
	StatusPaused,
	StatusPlanning,
	StatusRepeating,
}

// ParseStatus converts a status name into a MediaListStatus
func ParseStatus(s string) (MediaListStatus, error) {
	status := MediaListStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllStatuses {
		if status == known {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown list status %q", s)
}

// MediaListEntry references one media item on a list
type MediaListEntry struct {
	MediaID int64 `json:"mediaId"`
}

// MediaListGroup is all entries sharing one status
type MediaListGroup struct {
	Status  MediaListStatus  `json:"status,omitempty"`
	Entries []MediaListEntry `json:"entries"`
}

// MediaListCollection is a user's list, grouped by status
type MediaListCollection struct {
	Lists []MediaListGroup `json:"lists"`
}

// Merge appends the groups of other to c, used to combine the anime and
// manga lists of one user
func (c *MediaListCollection) Merge(other *MediaListCollection) {
	if other == nil {
		return
	}
	c.Lists = append(c.Lists, other.Lists...)
}

// EntryCount returns the number of entries across all groups
func (c *MediaListCollection) EntryCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, group := range c.Lists {
		n += len(group.Entries)
	}
	return n
}

// StatusIndex maps a media id to its list status. It is read-only once built.
type StatusIndex map[int64]MediaListStatus

// NewStatusIndex builds the index from a user list. Groups without a status
// and entries without a media id are skipped; a later group overrides an
// earlier one for the same id.
func NewStatusIndex(list *MediaListCollection) StatusIndex {
	index := make(StatusIndex)
	if list == nil {
		return index
	}
	for _, group := range list.Lists {
		if group.Status == "" {
			continue
		}
		for _, entry := range group.Entries {
			if entry.MediaID == 0 {
				continue
			}
			index[entry.MediaID] = group.Status
		}
	}
	return index
}

// Lookup returns the status of id, if it is on the list
func (idx StatusIndex) Lookup(id int64) (MediaListStatus, bool) {
	status, ok := idx[id]
	return status, ok
}
