package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"systems-api/internal/permit"
	"systems-api/internal/procname"
	"systems-api/internal/shared/errors"
)

// Store runs the individual tier queries. An empty slice means the tier
// found nothing; an error means it could not run.
type Store interface {
	ExactMatches(ctx context.Context, name string) ([]Match, error)
	TrigramMatches(ctx context.Context, name string, limit int) ([]Match, error)
	PhoneticMatches(ctx context.Context, name string, maxDistance, limit int) ([]Match, error)
	PrefixMatches(ctx context.Context, prefix string, scan, limit int) ([]Match, error)
}

type PermitSource interface {
	Set(ctx context.Context) (permit.Set, error)
}

type NameClassifier interface {
	Classify(name string) procname.Classification
}

// Searcher is implemented by Service and CachedSearcher.
type Searcher interface {
	Search(ctx context.Context, q Query) (*Result, error)
}

const catalogUnavailable = "Catalog search unavailable, try again later."

type Service struct {
	store   Store
	permits PermitSource
	names   NameClassifier
	logger  *slog.Logger
}

func NewService(store Store, permits PermitSource, names NameClassifier, logger *slog.Logger) *Service {
	logger.Debug("Initializing search service")

	return &Service{
		store:   store,
		permits: permits,
		names:   names,
		logger:  logger.With("component", "search_service"),
	}
}

// Search runs the tiers cheapest first and returns the output of the first
// one that finds anything. "No match" outcomes are results, not errors.
func (s *Service) Search(ctx context.Context, q Query) (*Result, error) {
	if !q.Present {
		return nil, errors.Validation("Missing 'name' parameter.")
	}

	name := q.Name
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	if utf8.RuneCountInString(name) < MinQueryLength {
		return nil, errors.Validationf("Search term too short (Minimum %d characters)", MinQueryLength)
	}

	logger := s.logger.With("operation", "search", "name", name, "fast", q.Fast)

	class := s.names.Classify(strings.TrimSpace(name))
	if _, ok := class.(procname.Incomplete); ok {
		logger.Debug("Rejected bare boxel fragment")
		return &Result{Meta: Meta{Type: TypeIncompleteName, Error: "Incomplete PG system name."}}, nil
	}

	matches, err := s.store.ExactMatches(ctx, name)
	if err != nil {
		return nil, errors.WrapExternal(catalogUnavailable, fmt.Errorf("exact search: %w", err))
	}
	if len(matches) > 0 {
		one := 1.0
		for i := range matches {
			matches[i].Similarity = &one
		}
		return s.found(ctx, logger, name, TypeExact, matches)
	}

	if q.Fast {
		logger.Debug("No exact match, fast search stops here")
		return notFound("System not found. Query again without fast flag for in-depth search."), nil
	}

	// Phonetic codes of generated names rarely match anything useful, so
	// those go to trigram search first.
	if _, ok := class.(procname.Valid); ok {
		matches, err = s.store.TrigramMatches(ctx, name, tierLimit)
		if err != nil {
			return nil, errors.WrapExternal(catalogUnavailable, fmt.Errorf("trigram search: %w", err))
		}
		if len(matches) > 1 {
			return s.found(ctx, logger, name, TypeTrigram, matches)
		}
	}

	matches, err = s.store.PhoneticMatches(ctx, name, maxPhoneticLev, tierLimit)
	if err != nil {
		return nil, errors.WrapExternal(catalogUnavailable, fmt.Errorf("phonetic search: %w", err))
	}
	if len(matches) > 0 {
		return s.found(ctx, logger, name, TypePhonetic, matches)
	}

	matches, err = s.store.PrefixMatches(ctx, name, wildcardScan, tierLimit)
	if err != nil {
		return nil, errors.WrapExternal(catalogUnavailable, fmt.Errorf("wildcard search: %w", err))
	}
	if len(matches) > 0 {
		return s.found(ctx, logger, name, TypeWildcard, matches)
	}

	matches, err = s.store.TrigramMatches(ctx, name, tierLimit)
	if err != nil {
		return nil, errors.WrapExternal(catalogUnavailable, fmt.Errorf("trigram search: %w", err))
	}
	if len(matches) > 0 {
		return s.found(ctx, logger, name, TypeTrigram, matches)
	}

	logger.Debug("No tier produced a match")
	return notFound("System not found."), nil
}

func (s *Service) found(ctx context.Context, logger *slog.Logger, name, tier string, matches []Match) (*Result, error) {
	set, err := s.permits.Set(ctx)
	if err != nil {
		return nil, errors.WrapExternal(catalogUnavailable, fmt.Errorf("load permits: %w", err))
	}

	candidates := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		required, permitName := set.Annotate(m.ID64)
		candidates = append(candidates, Candidate{
			Name:           m.Name,
			Similarity:     m.Similarity,
			Distance:       m.Distance,
			ID64:           m.ID64,
			Coords:         m.Coords,
			PermitRequired: required,
			PermitName:     permitName,
		})
	}

	logger.Debug("Search matched", "tier", tier, "candidates", len(candidates))
	return &Result{Meta: Meta{Name: name, Type: tier}, Data: candidates}, nil
}
