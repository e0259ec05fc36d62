package model

import (
	"encoding/json"
	"slices"
)

// SiteLink links an item to a page on another site.
type SiteLink struct {
	Site   string
	Title  string
	Badges []EntityID
}

// Equal compares badges as a set.
func (l SiteLink) Equal(other SiteLink) bool {
	if l.Site != other.Site || l.Title != other.Title || len(l.Badges) != len(other.Badges) {
		return false
	}
	for _, b := range l.Badges {
		if !slices.Contains(other.Badges, b) {
			return false
		}
	}
	return true
}

func (l SiteLink) Clone() SiteLink {
	l.Badges = slices.Clone(l.Badges)
	return l
}

type siteLinkJSON struct {
	Badges []string `json:"badges"`
	Site   string   `json:"site"`
	Title  string   `json:"title"`
}

func (l SiteLink) MarshalJSON() ([]byte, error) {
	j := siteLinkJSON{Badges: []string{}, Site: l.Site, Title: l.Title}
	for _, b := range l.Badges {
		j.Badges = append(j.Badges, b.ID())
	}
	slices.Sort(j.Badges)
	return json.Marshal(j)
}
