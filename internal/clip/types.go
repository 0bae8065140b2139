// Package clip defines core types shared across subsystems.
package clip

import (
	"time"

	"github.com/google/uuid"
)

// ExtractedArticle is the transient result of running the extractor over a
// fetched page. It is not persisted directly; the orchestrator folds it into
// a Citation and a PageContent.
type ExtractedArticle struct {
	URL             string     `json:"url"`
	Title           string     `json:"title,omitempty"`
	Author          string     `json:"author,omitempty"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	Content         string     `json:"content"`
}

// Citation is a durable record attributing an excerpt of text to a source
// URL. The ID is assigned at creation and never changes; UpdatedAt moves
// forward on every mutation.
type Citation struct {
	ID              uuid.UUID  `json:"id"`
	URL             string     `json:"url"`
	Title           string     `json:"title"`
	Author          string     `json:"author,omitempty"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	Excerpt         string     `json:"excerpt"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// PageContent is the cached unit of retrieved source material: the extracted
// article plus the citation minted for it.
type PageContent struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Author   string   `json:"author,omitempty"`
	Content  string   `json:"content"`
	Citation Citation `json:"citation"`
}
