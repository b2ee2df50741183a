package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"github.com/inexabali-blip/calculator-nedvizhimosti/domain"
	"github.com/inexabali-blip/calculator-nedvizhimosti/repository"
)

// CalculatorService wraps Compute with result memoization and the
// defaults/partial-update operations used by the presentation layer.
type CalculatorService struct {
	cache    repository.CacheRepository
	defaults repository.DefaultsRepository
	ttl      time.Duration
	log      *logrus.Logger
}

// NewCalculatorService creates a new CalculatorService. A nil cache disables
// memoization.
func NewCalculatorService(
	cache repository.CacheRepository,
	defaults repository.DefaultsRepository,
	ttl time.Duration,
	log *logrus.Logger,
) *CalculatorService {
	return &CalculatorService{cache: cache, defaults: defaults, ttl: ttl, log: log}
}

// Calculate returns Compute(inputs), served from cache when possible. Cache
// failures only cost a recomputation.
func (s *CalculatorService) Calculate(
	ctx context.Context,
	inputs domain.CalculatorInputs,
) domain.CalculatorResults {
	if s.cache == nil {
		return Compute(inputs)
	}

	key, err := cacheKey(inputs)
	if err != nil {
		s.log.Warnf("Failed to build cache key: %v", err)
		return Compute(inputs)
	}

	if cached, ok := s.cache.Get(ctx, key); ok {
		var results domain.CalculatorResults
		if err := json.Unmarshal([]byte(cached), &results); err == nil {
			s.log.Debugf("Cache hit for %s", key)
			return results
		}
		s.log.Warnf("Discarding unreadable cache entry %s", key)
	}

	results := Compute(inputs)

	payload, err := json.Marshal(results)
	if err != nil {
		s.log.Warnf("Failed to encode results for cache: %v", err)
		return results
	}
	if err := s.cache.Set(ctx, key, string(payload), s.ttl); err != nil {
		s.log.Warnf("Failed to cache results: %v", err)
	}
	return results
}

// Apply merges changes into base and computes the new snapshot. base itself is
// left as it was.
func (s *CalculatorService) Apply(
	ctx context.Context,
	base domain.CalculatorInputs,
	changes domain.InputChanges,
) (domain.CalculatorInputs, domain.CalculatorResults) {
	next := base.Apply(changes)
	return next, s.Calculate(ctx, next)
}

// Defaults returns the reset snapshot and its results.
func (s *CalculatorService) Defaults(
	ctx context.Context,
) (domain.CalculatorInputs, domain.CalculatorResults) {
	inputs := s.defaults.Defaults()
	return inputs, s.Calculate(ctx, inputs)
}

// cacheKey hashes the sanitized snapshot, so inputs that Compute treats the
// same way (NaN vs 0, 150% vs 100%) share one entry. The currency code does
// not take part in any arithmetic and is left out.
func cacheKey(inputs domain.CalculatorInputs) (string, error) {
	canonical := Sanitize(inputs)
	canonical.Property.Currency = ""

	b, err := json.Marshal(canonical)
	if err != nil {
		return "", err
	}
	return CacheKeyPrefix + strconv.FormatUint(xxhash.Sum64(b), 16), nil
}
