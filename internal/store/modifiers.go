package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// modifierPlan is the parsed form of a translated query's URL modifiers,
// used to apply sort/skip/limit/fields to local results the way the backend
// applies them to remote ones.
type modifierPlan struct {
	sortModifier string
	skip         int
	limit        int // -1 means unlimited
	fields       []string
}

func parseModifiers(modifiers []string) (modifierPlan, error) {
	plan := modifierPlan{limit: -1}

	for _, mod := range modifiers {
		switch {
		case strings.HasPrefix(mod, "&sort="):
			plan.sortModifier = mod

		case strings.HasPrefix(mod, "&skip="):
			n, err := strconv.Atoi(strings.TrimPrefix(mod, "&skip="))
			if err != nil {
				return modifierPlan{}, fmt.Errorf("parse skip modifier %q: %w", mod, err)
			}
			plan.skip = n

		case strings.HasPrefix(mod, "&limit="):
			n, err := strconv.Atoi(strings.TrimPrefix(mod, "&limit="))
			if err != nil {
				return modifierPlan{}, fmt.Errorf("parse limit modifier %q: %w", mod, err)
			}
			plan.limit = n

		case strings.HasPrefix(mod, "&fields="):
			raw := strings.TrimPrefix(mod, "&fields=")
			if raw != "" {
				plan.fields = strings.Split(raw, ",")
			}

		default:
			return modifierPlan{}, fmt.Errorf("unknown query modifier %q", mod)
		}
	}

	return plan, nil
}

// projectFields rebuilds a payload containing only the requested wire fields
// plus the entity id, mirroring the backend's `&fields=` projection.
func projectFields(doc map[string]any, fields []string) (json.RawMessage, error) {
	out := make(map[string]any, len(fields)+1)
	if id, ok := doc["_id"]; ok {
		out["_id"] = id
	}
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}

	payload, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("project fields: %w", err)
	}
	return payload, nil
}
