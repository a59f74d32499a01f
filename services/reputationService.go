package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"julenisse/db"
	"julenisse/metrics"
	"julenisse/models"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

var ErrValidation = errors.New("validation failed")

type DeedJudge interface {
	ScoreDeed(ctx context.Context, deed string) (int, error)
}

type ReputationService struct {
	repo    db.ReputationRepository
	judge   DeedJudge
	metrics *metrics.Metrics
}

func NewReputationService(repo db.ReputationRepository, judge DeedJudge, m *metrics.Metrics) *ReputationService {
	return &ReputationService{repo: repo, judge: judge, metrics: m}
}

// CheckStanding reports which side of the list name is on. A name without a
// record is StandingUnknown with a nil reputation and no error.
func (s *ReputationService) CheckStanding(ctx context.Context, name string) (models.Standing, *models.Reputation, error) {
	name, err := normalizeName(name)
	if err != nil {
		return models.StandingUnknown, nil, err
	}

	log.Printf("[INFO] Checking naughty list for %q", name)

	reputation, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, db.ErrReputationNotFound) {
			log.Printf("[INFO] No reputation recorded for %q", name)
			return models.StandingUnknown, nil, nil
		}
		log.Printf("[ERROR] Failed to read reputation for %q: %v", name, err)
		return models.StandingUnknown, nil, fmt.Errorf("failed to check standing: %w", err)
	}

	standing := models.StandingForScore(reputation.Score)
	log.Printf("[INFO] %q has score %d (%s)", name, reputation.Score, standing)
	return standing, reputation, nil
}

// RecordDeed judges the deed and adds the judged score to the running total
// for name.
func (s *ReputationService) RecordDeed(ctx context.Context, name, deed string) (*models.DeedResult, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	deed = strings.TrimSpace(deed)
	if deed == "" {
		return nil, fmt.Errorf("%w: deed description is required", ErrValidation)
	}

	log.Printf("[INFO] Recording deed for %q", name)

	score, err := s.judge.ScoreDeed(ctx, deed)
	if err != nil {
		log.Printf("[ERROR] Failed to judge deed for %q: %v", name, err)
		return nil, fmt.Errorf("failed to judge deed: %w", err)
	}

	reputation, err := s.repo.AddScore(ctx, name, score)
	if err != nil {
		log.Printf("[ERROR] Failed to store deed score for %q: %v", name, err)
		return nil, fmt.Errorf("failed to record deed: %w", err)
	}

	s.metrics.ObserveDeedScore(score)

	log.Printf("[INFO] Recorded %d points for %q, total %d after %d updates", score, name, reputation.Score, reputation.Updates)
	return &models.DeedResult{
		Name:       name,
		Deed:       deed,
		DeedScore:  score,
		Reputation: reputation,
	}, nil
}

func (s *ReputationService) Leaderboard(ctx context.Context, limit int) (*models.Leaderboard, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrValidation)
	}

	nice, err := s.repo.TopNice(ctx, limit)
	if err != nil {
		log.Printf("[ERROR] Failed to load nice leaderboard: %v", err)
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	naughty, err := s.repo.TopNaughty(ctx, limit)
	if err != nil {
		log.Printf("[ERROR] Failed to load naughty leaderboard: %v", err)
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	return &models.Leaderboard{Nice: nice, Naughty: naughty}, nil
}

// Search finds stored names that fuzzily match query, closest first.
func (s *ReputationService) Search(ctx context.Context, query string) ([]models.ReputationMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrValidation)
	}

	reputations, err := s.repo.ListAll(ctx)
	if err != nil {
		log.Printf("[ERROR] Failed to list reputations for search: %v", err)
		return nil, fmt.Errorf("failed to search reputations: %w", err)
	}

	byName := lo.KeyBy(reputations, func(r *models.Reputation) string {
		return r.Name
	})
	names := lo.Keys(byName)
	sort.Strings(names)

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)

	matches := lo.Map(ranks, func(rank fuzzy.Rank, _ int) models.ReputationMatch {
		return models.ReputationMatch{
			Reputation: *byName[rank.Target],
			Distance:   rank.Distance,
		}
	})

	log.Printf("[INFO] Search for %q matched %d names", query, len(matches))
	return matches, nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidation)
	}
	return name, nil
}
