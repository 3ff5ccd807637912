package screening

import (
	"math"
	"sort"
	"strings"
)

const (
	defaultRoleScore = 5
	unknownRole      = "Unknown"
)

// normalizeRoles converts the suitable_roles value of a model reply into
// SuitableRole values. Plain strings are the legacy shape and get the neutral
// score. Entries that are neither a string nor an object are dropped.
// The result is ordered by score, highest first, keeping the model's order
// for equal scores.
func normalizeRoles(v any) []SuitableRole {
	items, ok := v.([]any)
	if !ok {
		return []SuitableRole{}
	}

	roles := make([]SuitableRole, 0, len(items))
	for _, item := range items {
		switch val := item.(type) {
		case string:
			roles = append(roles, SuitableRole{Role: strings.TrimSpace(val), Score: defaultRoleScore})
		case map[string]any:
			roles = append(roles, roleFromObject(val))
		}
	}

	sort.SliceStable(roles, func(i, j int) bool {
		return roles[i].Score > roles[j].Score
	})

	return roles
}

func roleFromObject(obj map[string]any) SuitableRole {
	role := SuitableRole{Role: unknownRole, Score: defaultRoleScore}

	if raw, ok := obj["role"]; ok && raw != nil {
		if name := coerceString(raw); name != "" {
			role.Role = name
		}
	}

	if raw, ok := obj["score"]; ok && raw != nil {
		if score := coerceFloat(raw); !math.IsNaN(score) && !math.IsInf(score, 0) {
			role.Score = int(math.Round(score))
		}
	}

	return role
}
