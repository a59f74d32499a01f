package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"julenisse/models"
)

type fakeRecorder struct {
	names []string
}

func (f *fakeRecorder) RecordDeed(ctx context.Context, name, deed string) (*models.DeedResult, error) {
	if deed == "" {
		return nil, errors.New("deed is required")
	}
	f.names = append(f.names, name)
	return &models.DeedResult{Name: name, Deed: deed, DeedScore: 5, Reputation: &models.Reputation{Name: name, Score: 5, Updates: 1}}, nil
}

func TestLoadDeeds(t *testing.T) {
	input := `
- name: Ola
  deed: Støvsuget stua
- name: Kari
  deed: Sa et stygt ord
`
	entries, err := loadDeeds(strings.NewReader(input))
	if err != nil {
		t.Fatalf("loadDeeds() returned error: %v", err)
	}

	expected := []DeedEntry{
		{Name: "Ola", Deed: "Støvsuget stua"},
		{Name: "Kari", Deed: "Sa et stygt ord"},
	}
	if len(entries) != len(expected) {
		t.Fatalf("loadDeeds() returned %d entries, expected %d", len(entries), len(expected))
	}
	for i := range expected {
		if entries[i] != expected[i] {
			t.Errorf("entries[%d] = %+v, expected %+v", i, entries[i], expected[i])
		}
	}
}

func TestLoadDeedsErrors(t *testing.T) {
	if entries, err := loadDeeds(strings.NewReader("")); err != nil || entries != nil {
		t.Errorf("empty file = %v, %v, expected no entries", entries, err)
	}
	if _, err := loadDeeds(strings.NewReader("name: [unclosed")); err == nil {
		t.Error("loadDeeds() expected error for malformed YAML")
	}
}

func TestImportDeedsCountsFailures(t *testing.T) {
	recorder := &fakeRecorder{}
	entries := []DeedEntry{
		{Name: " Ola ", Deed: "Støvsuget stua"},
		{Name: "Kari"},
		{Name: "Per", Deed: "Ga bort leker"},
	}

	recorded, failed := importDeeds(context.Background(), recorder, entries)
	if recorded != 2 || failed != 1 {
		t.Errorf("importDeeds() = %d recorded, %d failed, expected 2 and 1", recorded, failed)
	}
	if recorder.names[0] != "Ola" {
		t.Errorf("first name = %q, expected trimmed Ola", recorder.names[0])
	}
}
