package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Article is a single news item as returned by the news API.
type Article struct {
	ID                 ArticleID `json:"id,omitempty"`
	Title              string    `json:"title"`
	Link               string    `json:"link"`
	Date               string    `json:"date,omitempty"`
	PublishedAt        string    `json:"published_at,omitempty"`
	Source             string    `json:"source"`
	Content            string    `json:"content,omitempty"`
	VoteCount          int       `json:"vote_count"`
	AIScore            *float64  `json:"ai_score,omitempty"`
	ComprehensiveScore *float64  `json:"comprehensive_score,omitempty"`
	Keywords           Keywords  `json:"keywords,omitempty"`
}

// Key returns the identity used for saved lists, vote calls and the summary
// cache. The API addresses articles by title, and not every payload carries
// an id, so the title wins.
func (a Article) Key() string {
	return strings.TrimSpace(a.Title)
}

// RemoteID returns the identifier sent to the per-user save endpoints: the
// id when the payload had one, the title otherwise.
func (a Article) RemoteID() string {
	if a.ID != "" {
		return string(a.ID)
	}
	return a.Key()
}

// When returns the raw publication date, preferring "date" over
// "published_at".
func (a Article) When() string {
	if a.Date != "" {
		return a.Date
	}
	return a.PublishedAt
}

// Score returns the smart-sort score if the API sent one.
func (a Article) Score() (float64, bool) {
	if a.ComprehensiveScore != nil {
		return *a.ComprehensiveScore, true
	}
	if a.AIScore != nil {
		return *a.AIScore, true
	}
	return 0, false
}

// ArticleID accepts both numeric and string ids on the wire.
type ArticleID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ArticleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ArticleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ArticleID(n.String())
	return nil
}

// Int returns the numeric form of the id, if it has one.
func (id ArticleID) Int() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Keywords accepts a JSON array, a string holding a JSON-encoded array, or a
// plain string.
type Keywords []string

// UnmarshalJSON implements json.Unmarshaler.
func (k *Keywords) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*k = nil
		return nil
	case len(data) > 0 && data[0] == '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*k = list
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*k = ParseKeywords(s)
	return nil
}

// ParseKeywords decodes s as a JSON array when it is one, and otherwise keeps
// it as a single keyword.
func ParseKeywords(s string) Keywords {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(s), &list); err == nil {
		return list
	}
	return Keywords{s}
}

// Display joins the first three keywords with ", ".
func (k Keywords) Display() string {
	if len(k) > 3 {
		k = k[:3]
	}
	return strings.Join(k, ", ")
}

// VoteResult is the response of the vote endpoints.
type VoteResult struct {
	Count int `json:"count"`
}
