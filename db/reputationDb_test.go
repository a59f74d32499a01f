package db

import (
	"context"
	"errors"
	"sync"
	"testing"

	"julenisse/models"
)

func TestAddScoreCreatesRecord(t *testing.T) {
	repo := NewReputationRepository(newTestDatabase(t))
	ctx := context.Background()

	reputation, err := repo.AddScore(ctx, "Ola", 15)
	if err != nil {
		t.Fatalf("AddScore() returned error: %v", err)
	}

	if reputation.Name != "Ola" || reputation.Score != 15 || reputation.Updates != 1 {
		t.Errorf("AddScore() = %+v, expected {Ola 15 1}", reputation)
	}

	stored, err := repo.GetByName(ctx, "Ola")
	if err != nil {
		t.Fatalf("GetByName() returned error: %v", err)
	}
	if *stored != *reputation {
		t.Errorf("GetByName() = %+v, expected %+v", stored, reputation)
	}
}

func TestAddScoreAccumulates(t *testing.T) {
	repo := NewReputationRepository(newTestDatabase(t))
	ctx := context.Background()

	if _, err := repo.AddScore(ctx, "Kari", 20); err != nil {
		t.Fatalf("first AddScore() returned error: %v", err)
	}

	reputation, err := repo.AddScore(ctx, "Kari", -35)
	if err != nil {
		t.Fatalf("second AddScore() returned error: %v", err)
	}

	if reputation.Score != -15 {
		t.Errorf("Score = %d, expected -15", reputation.Score)
	}
	if reputation.Updates != 2 {
		t.Errorf("Updates = %d, expected 2", reputation.Updates)
	}
}

func TestAddScoreIsCaseSensitive(t *testing.T) {
	repo := NewReputationRepository(newTestDatabase(t))
	ctx := context.Background()

	if _, err := repo.AddScore(ctx, "Per", 5); err != nil {
		t.Fatalf("AddScore() returned error: %v", err)
	}

	if _, err := repo.GetByName(ctx, "per"); !errors.Is(err, ErrReputationNotFound) {
		t.Errorf("GetByName(per) error = %v, expected ErrReputationNotFound", err)
	}
}

func TestAddScoreConcurrentWriters(t *testing.T) {
	repo := NewReputationRepository(newTestDatabase(t))
	ctx := context.Background()

	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.AddScore(ctx, "Nora", 3); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent AddScore() returned error: %v", err)
	}

	reputation, err := repo.GetByName(ctx, "Nora")
	if err != nil {
		t.Fatalf("GetByName() returned error: %v", err)
	}
	if reputation.Score != 3*writers || reputation.Updates != writers {
		t.Errorf("GetByName() = %+v, expected score %d and %d updates", reputation, 3*writers, writers)
	}
}

func TestGetByNameNotFound(t *testing.T) {
	repo := NewReputationRepository(newTestDatabase(t))

	_, err := repo.GetByName(context.Background(), "Ukjent")
	if !errors.Is(err, ErrReputationNotFound) {
		t.Errorf("GetByName() error = %v, expected ErrReputationNotFound", err)
	}
}

func TestLeaderboardQueries(t *testing.T) {
	repo := NewReputationRepository(newTestDatabase(t))
	ctx := context.Background()

	seed := map[string]int{
		"Anna":  40,
		"Bjorn": 10,
		"Siri":  40,
		"Tor":   0,
		"Eva":   -25,
		"Jonas": -5,
	}
	for name, score := range seed {
		if _, err := repo.AddScore(ctx, name, score); err != nil {
			t.Fatalf("AddScore(%s) returned error: %v", name, err)
		}
	}

	nice, err := repo.TopNice(ctx, 2)
	if err != nil {
		t.Fatalf("TopNice() returned error: %v", err)
	}
	assertNames(t, "TopNice", nice, []string{"Anna", "Siri"})

	naughty, err := repo.TopNaughty(ctx, 5)
	if err != nil {
		t.Fatalf("TopNaughty() returned error: %v", err)
	}
	assertNames(t, "TopNaughty", naughty, []string{"Eva", "Jonas", "Tor"})

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() returned error: %v", err)
	}
	if len(all) != len(seed) {
		t.Errorf("ListAll() returned %d rows, expected %d", len(all), len(seed))
	}
}

func assertNames(t *testing.T, label string, reputations []*models.Reputation, expected []string) {
	t.Helper()

	if len(reputations) != len(expected) {
		t.Fatalf("%s returned %d rows, expected %d", label, len(reputations), len(expected))
	}
	for i, name := range expected {
		if reputations[i].Name != name {
			t.Errorf("%s[%d] = %s, expected %s", label, i, reputations[i].Name, name)
		}
	}
}
