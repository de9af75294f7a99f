package tools

import (
	"fmt"
	"testing"
)

func TestProfileAggregatesAndSorts(t *testing.T) {
	toolset := &HouseholdToolset{}

	members := []Member{
		{Name: "Ava", Role: "adult", Allergens: []string{"Peanuts", "shellfish"}, Likes: []string{"Tacos", "curry"}},
		{Name: "Ben", Role: "adult", Allergens: []string{"peanuts"}, Likes: []string{"tacos", "Ramen"}},
		{Name: "Cleo", Role: "kid", Likes: []string{"tacos"}},
	}

	profile := toolset.Profile(members)

	if profile.MemberCount != 3 {
		t.Errorf("expected 3 members, got %d", profile.MemberCount)
	}
	if profile.Roles["adult"] != 2 || profile.Roles["kid"] != 1 {
		t.Errorf("unexpected role counts: %v", profile.Roles)
	}

	// Allergens lowercased and counted across members
	if len(profile.Allergens) != 2 {
		t.Fatalf("expected 2 distinct allergens, got %v", profile.Allergens)
	}
	if profile.Allergens[0].Name != "peanuts" || profile.Allergens[0].Count != 2 {
		t.Errorf("expected peanuts first with count 2, got %+v", profile.Allergens[0])
	}

	// Likes sorted by count desc, then name asc
	if profile.TopLikes[0].Name != "tacos" || profile.TopLikes[0].Count != 3 {
		t.Errorf("expected tacos first with count 3, got %+v", profile.TopLikes[0])
	}
	if profile.TopLikes[1].Name != "curry" {
		t.Errorf("expected alphabetical tiebreak to put curry second, got %+v", profile.TopLikes[1])
	}
}

func TestProfileCapsTopLikes(t *testing.T) {
	toolset := &HouseholdToolset{}

	var likes []string
	for i := 0; i < 15; i++ {
		likes = append(likes, fmt.Sprintf("dish-%02d", i))
	}
	profile := toolset.Profile([]Member{{Name: "Solo", Likes: likes}})

	if len(profile.TopLikes) != maxTopLikes {
		t.Errorf("expected top likes capped at %d, got %d", maxTopLikes, len(profile.TopLikes))
	}
}

func TestProfileIgnoresBlankEntries(t *testing.T) {
	toolset := &HouseholdToolset{}

	profile := toolset.Profile([]Member{
		{Name: "Ava", Allergens: []string{"  ", ""}, Likes: []string{" "}},
	})

	if len(profile.Allergens) != 0 {
		t.Errorf("blank allergens should be dropped, got %v", profile.Allergens)
	}
	if len(profile.TopLikes) != 0 {
		t.Errorf("blank likes should be dropped, got %v", profile.TopLikes)
	}
}
