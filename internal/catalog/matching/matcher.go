package matching

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"gobevtrend_api/internal/catalog/models"
	"gobevtrend_api/pkg/logger"
)

const (
	// HighConfidenceThreshold is the fuzzy score at or above which a match is
	// auto-linked with a persisted alias.
	HighConfidenceThreshold = 85
	// ReviewThreshold is the fuzzy score at or above which an ambiguous match
	// is routed to manual review instead of creating a new product.
	ReviewThreshold = 60
	// DefaultCandidateLimit bounds the fuzzy candidate set per lookup.
	DefaultCandidateLimit = 1000
)

// ErrUnnamedProduct is returned when a raw listing has no usable name and
// therefore cannot become a new catalog product. Callers skip the item.
var ErrUnnamedProduct = errors.New("raw product has no usable name")

type ProductStore interface {
	GetByUPC(upc string) (*models.Product, error)
	Create(product *models.Product) error
	ActiveCandidates(category string, limit int) ([]models.Product, error)
}

type AliasStore interface {
	Find(source, externalID string) (*models.ProductAlias, error)
	Create(alias *models.ProductAlias) error
}

type Config struct {
	DefaultCategory string
	CandidateLimit  int
	// AllowCreate controls whether an unmatched raw product becomes a new
	// canonical product. Disabled it yields matched=false instead.
	AllowCreate bool
}

// Matcher resolves raw distributor listings to canonical products via a
// cascade: UPC, stored alias, fuzzy similarity, then creation.
type Matcher struct {
	products ProductStore
	aliases  AliasStore
	config   Config
	log      logger.Logger
}

func NewMatcher(products ProductStore, aliases AliasStore, config Config, writer io.Writer) *Matcher {
	if config.CandidateLimit <= 0 {
		config.CandidateLimit = DefaultCandidateLimit
	}
	if config.DefaultCategory == "" {
		config.DefaultCategory = "spirits"
	}
	return &Matcher{
		products: products,
		aliases:  aliases,
		config:   config,
		log:      logger.NewLogger(writer, "[Matcher]"),
	}
}

// Session carries a candidate cache scoped to one pipeline invocation.
// Sessions are not safe for concurrent use and must not be shared across
// concurrent pipeline runs.
type Session struct {
	matcher    *Matcher
	candidates map[string][]models.Product
}

func (m *Matcher) NewSession() *Session {
	return &Session{
		matcher:    m,
		candidates: make(map[string][]models.Product),
	}
}

// Match resolves one raw product in a throwaway session.
func (m *Matcher) Match(raw *models.RawProduct, source string) (models.MatchResult, error) {
	return m.NewSession().Match(raw, source)
}

// Match runs the cascade for one raw product from the given source.
func (s *Session) Match(raw *models.RawProduct, source string) (models.MatchResult, error) {
	m := s.matcher

	// 1. Exact UPC.
	if upc := NormalizeUPC(raw.UPC); upc != "" {
		product, err := m.products.GetByUPC(upc)
		if err != nil {
			return models.MatchResult{}, fmt.Errorf("upc lookup: %w", err)
		}
		if product != nil {
			if err := m.ensureAlias(product.ID, raw, source, 1.0); err != nil {
				return models.MatchResult{}, err
			}
			return models.MatchResult{
				Matched:    true,
				ProductID:  product.ID,
				Confidence: 1.0,
				MatchType:  models.MatchUPC,
			}, nil
		}
	}

	// 2. Stored alias. Short-circuits: an alias hit never re-runs fuzzy.
	alias, err := m.aliases.Find(source, raw.ExternalID)
	if err != nil {
		return models.MatchResult{}, fmt.Errorf("alias lookup: %w", err)
	}
	if alias != nil {
		return models.MatchResult{
			Matched:    true,
			ProductID:  alias.ProductID,
			Confidence: alias.Confidence,
			MatchType:  models.MatchAlias,
		}, nil
	}

	// 3. Fuzzy similarity over active candidates.
	best, bestScore, err := s.bestFuzzyCandidate(raw)
	if err != nil {
		return models.MatchResult{}, err
	}
	if best != nil && bestScore >= HighConfidenceThreshold {
		confidence := bestScore / 100
		if err := m.ensureAlias(best.ID, raw, source, confidence); err != nil {
			return models.MatchResult{}, err
		}
		return models.MatchResult{
			Matched:    true,
			ProductID:  best.ID,
			Confidence: confidence,
			MatchType:  models.MatchFuzzy,
		}, nil
	}
	if best != nil && bestScore >= ReviewThreshold {
		// Ambiguous band: report the candidate but persist nothing; the
		// caller routes it to manual review.
		return models.MatchResult{
			Matched:    true,
			ProductID:  best.ID,
			Confidence: bestScore / 100,
			MatchType:  models.MatchReview,
		}, nil
	}

	// 4. No match: create a canonical product.
	if !m.config.AllowCreate {
		return models.MatchResult{Matched: false}, nil
	}
	product, err := m.createProduct(raw)
	if err != nil {
		return models.MatchResult{}, err
	}
	if err := m.ensureAlias(product.ID, raw, source, 1.0); err != nil {
		return models.MatchResult{}, err
	}
	m.log.Log("created product %s for %s/%s", product.ID, source, raw.ExternalID)
	return models.MatchResult{
		Matched:    true,
		ProductID:  product.ID,
		Confidence: 1.0,
		MatchType:  models.MatchNew,
		IsNew:      true,
	}, nil
}

func (s *Session) bestFuzzyCandidate(raw *models.RawProduct) (*models.Product, float64, error) {
	m := s.matcher
	category, _ := mapCategory(raw.Category, raw.Subcategory, "")

	candidates, cached := s.candidates[category]
	if !cached {
		var err error
		candidates, err = m.products.ActiveCandidates(category, m.config.CandidateLimit)
		if err != nil {
			return nil, 0, fmt.Errorf("candidate query: %w", err)
		}
		s.candidates[category] = candidates
	}

	rawName := NormalizeName(raw.Name)
	if rawName == "" {
		return nil, 0, nil
	}

	var best *models.Product
	var bestScore float64
	for i := range candidates {
		candidate := &candidates[i]
		score := fuzzyScore(
			rawName, NormalizeName(candidate.Name),
			raw.Brand, candidate.Brand,
			raw.VolumeML, candidate.VolumeML,
		)
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	return best, bestScore, nil
}

func (m *Matcher) createProduct(raw *models.RawProduct) (*models.Product, error) {
	if NormalizeName(raw.Name) == "" {
		return nil, ErrUnnamedProduct
	}
	category, subcategory := mapCategory(raw.Category, raw.Subcategory, m.config.DefaultCategory)
	product := &models.Product{
		ID:          uuid.NewString(),
		Name:        raw.Name,
		Brand:       raw.Brand,
		Category:    category,
		Subcategory: subcategory,
		VolumeML:    raw.VolumeML,
		ABV:         raw.ABV,
		UPC:         NormalizeUPC(raw.UPC),
		IsActive:    true,
	}
	if err := m.products.Create(product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

// ensureAlias records the cross-reference; a pre-existing (source,
// external_id) pair is an idempotent success at the store level.
func (m *Matcher) ensureAlias(productID string, raw *models.RawProduct, source string, confidence float64) error {
	alias := &models.ProductAlias{
		ProductID:    productID,
		Source:       source,
		ExternalID:   raw.ExternalID,
		ExternalName: raw.Name,
		ExternalURL:  raw.URL,
		Confidence:   confidence,
	}
	if err := m.aliases.Create(alias); err != nil {
		return fmt.Errorf("ensure alias %s/%s: %w", source, raw.ExternalID, err)
	}
	return nil
}
