package tools

import (
	"sort"
	"strings"
)

// Member describes one household member as seen by the planning pipeline
type Member struct {
	Name      string   `json:"name"`
	Role      string   `json:"role"`
	Allergens []string `json:"allergens"`
	Likes     []string `json:"likes"`
}

// KitchenTool is one piece of household cooking equipment
type KitchenTool struct {
	Label    string `json:"label"`
	Category string `json:"category,omitempty"`
	Quantity int    `json:"quantity"`
}

// LabelCount pairs a normalized label with its household-wide frequency
type LabelCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// HouseholdProfile is the compact profile the downstream agents consume
type HouseholdProfile struct {
	MemberCount int            `json:"member_count"`
	Roles       map[string]int `json:"roles"`
	Allergens   []LabelCount   `json:"allergens"`
	TopLikes    []LabelCount   `json:"top_likes"`
}

// HouseholdToolset aggregates household composition into frequency summaries
type HouseholdToolset struct{}

const maxTopLikes = 10

// Profile normalizes a household description into a compact profile.
// Allergens and likes are lowercased, counted across members, and sorted
// by descending count with alphabetical tiebreak.
func (t *HouseholdToolset) Profile(members []Member) HouseholdProfile {
	allergenCounts := make(map[string]int)
	likeCounts := make(map[string]int)
	roles := make(map[string]int)

	for _, member := range members {
		for _, allergen := range member.Allergens {
			key := strings.ToLower(strings.TrimSpace(allergen))
			if key == "" {
				continue
			}
			allergenCounts[key]++
		}
		for _, like := range member.Likes {
			key := strings.ToLower(strings.TrimSpace(like))
			if key == "" {
				continue
			}
			likeCounts[key]++
		}
		role := strings.TrimSpace(member.Role)
		if role == "" {
			role = "Unknown"
		}
		roles[role]++
	}

	likes := sortByFrequency(likeCounts)
	if len(likes) > maxTopLikes {
		likes = likes[:maxTopLikes]
	}

	return HouseholdProfile{
		MemberCount: len(members),
		Roles:       roles,
		Allergens:   sortByFrequency(allergenCounts),
		TopLikes:    likes,
	}
}

func sortByFrequency(counts map[string]int) []LabelCount {
	out := make([]LabelCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, LabelCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
