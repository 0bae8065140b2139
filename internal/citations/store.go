// Package citations owns citation identity, storage, and article
// association sets over the key-value store.
package citations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foglio/clipper/internal/clip"
	"github.com/foglio/clipper/internal/store"
)

const (
	citationKeyPrefix = "citation:"
	articleKeyPrefix  = "article:citations:"

	// DefaultTTL bounds both citation records and association sets.
	DefaultTTL = 24 * time.Hour
)

// Store manages the citation lifecycle from creation through updates to
// deletion or expiry. Existence checks and the writes that follow them are
// separate store round-trips; a concurrent delete in between can slip
// through. That gap is accepted, since the store has no conditional writes.
type Store struct {
	kv     store.Store
	clock  clip.Clock
	ids    clip.IDGenerator
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a Store. A non-positive ttl uses the default.
func New(kv store.Store, clock clip.Clock, ids clip.IDGenerator, ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{kv: kv, clock: clock, ids: ids, ttl: ttl, logger: logger}
}

func citationKey(id uuid.UUID) string {
	return citationKeyPrefix + id.String()
}

func articleKey(articleID uuid.UUID) string {
	return articleKeyPrefix + articleID.String()
}

// Create mints a citation for url with a fresh identifier and persists it.
// Title defaults to the URL string when meta carries none.
func (s *Store) Create(ctx context.Context, url string, meta clip.ExtractedArticle, excerpt string) (clip.Citation, error) {
	rawID, err := s.ids.NewID()
	if err != nil {
		return clip.Citation{}, &clip.CitationError{Op: "create", Err: err}
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return clip.Citation{}, &clip.CitationError{Op: "create", Err: fmt.Errorf("parse id: %w", err)}
	}

	title := meta.Title
	if title == "" {
		title = url
	}
	now := s.clock.Now()
	citation := clip.Citation{
		ID:              id,
		URL:             url,
		Title:           title,
		Author:          meta.Author,
		PublicationDate: meta.PublicationDate,
		Excerpt:         excerpt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.write(ctx, citation); err != nil {
		return clip.Citation{}, &clip.CitationError{Op: "create", Err: err}
	}
	return citation, nil
}

// Get returns the citation for id. Absence is clip.ErrCitationNotFound;
// any other read or decode failure is clip.CitationError.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (clip.Citation, error) {
	data, err := s.kv.Get(ctx, citationKey(id))
	if errors.Is(err, store.ErrKeyNotFound) {
		return clip.Citation{}, fmt.Errorf("%w: %s", clip.ErrCitationNotFound, id)
	}
	if err != nil {
		return clip.Citation{}, &clip.CitationError{Op: "get", Err: err}
	}
	var citation clip.Citation
	if err := json.Unmarshal(data, &citation); err != nil {
		return clip.Citation{}, &clip.CitationError{Op: "get", Err: fmt.Errorf("decode citation: %w", err)}
	}
	return citation, nil
}

// GetByArticle resolves every citation id in the article's association set.
// Ids that no longer resolve are skipped; the set may hold stale references
// after a citation expires or is deleted. Result order is unspecified.
func (s *Store) GetByArticle(ctx context.Context, articleID uuid.UUID) ([]clip.Citation, error) {
	members, err := s.kv.SMembers(ctx, articleKey(articleID))
	if err != nil {
		return nil, &clip.CitationError{Op: "get_by_article", Err: err}
	}

	citations := make([]clip.Citation, 0, len(members))
	for _, member := range members {
		id, err := uuid.Parse(member)
		if err != nil {
			s.logger.Warn("skipping malformed citation id in association set",
				zap.String("article_id", articleID.String()),
				zap.String("member", member),
			)
			continue
		}
		citation, err := s.Get(ctx, id)
		if errors.Is(err, clip.ErrCitationNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		citations = append(citations, citation)
	}
	return citations, nil
}

// Update rewrites an existing citation, refreshing UpdatedAt and resetting
// the TTL. The refreshed record is returned. A citation that does not
// exist fails with clip.ErrCitationNotFound.
func (s *Store) Update(ctx context.Context, citation clip.Citation) (clip.Citation, error) {
	if err := s.requireExists(ctx, citation.ID, "update"); err != nil {
		return clip.Citation{}, err
	}
	citation.UpdatedAt = s.clock.Now()
	if err := s.write(ctx, citation); err != nil {
		return clip.Citation{}, &clip.CitationError{Op: "update", Err: err}
	}
	return citation, nil
}

// AddToArticle links citationID into the article's association set and
// re-arms the set's TTL, so every add extends the set's lifetime.
func (s *Store) AddToArticle(ctx context.Context, articleID, citationID uuid.UUID) error {
	if err := s.requireExists(ctx, citationID, "add_to_article"); err != nil {
		return err
	}
	key := articleKey(articleID)
	if err := s.kv.SAdd(ctx, key, citationID.String()); err != nil {
		return &clip.CitationError{Op: "add_to_article", Err: err}
	}
	if err := s.kv.Expire(ctx, key, s.ttl); err != nil {
		return &clip.CitationError{Op: "add_to_article", Err: err}
	}
	return nil
}

// RemoveFromArticle unlinks citationID from the article's association set.
// Removing a non-member is not an error.
func (s *Store) RemoveFromArticle(ctx context.Context, articleID, citationID uuid.UUID) error {
	if err := s.kv.SRem(ctx, articleKey(articleID), citationID.String()); err != nil {
		return &clip.CitationError{Op: "remove_from_article", Err: err}
	}
	return nil
}

// Delete removes the citation record. Association sets that reference it
// are left untouched and become stale references tolerated by
// GetByArticle.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.requireExists(ctx, id, "delete"); err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, citationKey(id)); err != nil {
		return &clip.CitationError{Op: "delete", Err: err}
	}
	return nil
}

func (s *Store) requireExists(ctx context.Context, id uuid.UUID, op string) error {
	ok, err := s.kv.Exists(ctx, citationKey(id))
	if err != nil {
		return &clip.CitationError{Op: op, Err: err}
	}
	if !ok {
		return fmt.Errorf("%w: %s", clip.ErrCitationNotFound, id)
	}
	return nil
}

func (s *Store) write(ctx context.Context, citation clip.Citation) error {
	data, err := json.Marshal(citation)
	if err != nil {
		return fmt.Errorf("encode citation: %w", err)
	}
	if err := s.kv.Set(ctx, citationKey(citation.ID), data, s.ttl); err != nil {
		return fmt.Errorf("store citation: %w", err)
	}
	return nil
}
