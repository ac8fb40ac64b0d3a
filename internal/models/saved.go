package models

// SavedArticle is the snapshot kept in the local saved list. Summary holds
// whatever summary had been generated when the article was saved.
type SavedArticle struct {
	ID      ArticleID `json:"id,omitempty"`
	Title   string    `json:"title"`
	Link    string    `json:"link"`
	Date    string    `json:"date"`
	Source  string    `json:"source"`
	Content string    `json:"content,omitempty"`
	Summary string    `json:"summary,omitempty"`
}

// Snapshot copies the fields of a that the saved list keeps.
func Snapshot(a Article, summary string) SavedArticle {
	return SavedArticle{
		ID:      a.ID,
		Title:   a.Title,
		Link:    a.Link,
		Date:    a.When(),
		Source:  a.Source,
		Content: a.Content,
		Summary: summary,
	}
}

// Article converts the snapshot back into an Article.
func (s SavedArticle) Article() Article {
	return Article{
		ID:      s.ID,
		Title:   s.Title,
		Link:    s.Link,
		Date:    s.Date,
		Source:  s.Source,
		Content: s.Content,
	}
}
