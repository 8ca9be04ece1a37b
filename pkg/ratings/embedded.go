package ratings

import (
	"encoding/json"
	"strings"

	"github.com/oddsmith/futuresnap/core"
	"github.com/oddsmith/futuresnap/pkg/futures"
)

// extractEmbedded locates the known embedded data markers in the page,
// lifts out the balanced-brace JSON block that follows each, and walks the
// parsed structure for team projection records. A marker whose block yields
// fewer than MinRecords does not end the search; a later marker may hold
// the full data set.
func (e *Extractor) extractEmbedded(markup string) map[string]core.ProjectionRecord {
	var best map[string]core.ProjectionRecord
	for _, marker := range e.config.Markers {
		idx := strings.Index(markup, marker)
		if idx < 0 {
			continue
		}

		block, ok := balancedBraceBlock(markup[idx:])
		if !ok {
			continue
		}

		var parsed any
		if err := json.Unmarshal([]byte(block), &parsed); err != nil {
			e.logger.Debug().Str("marker", marker).Err(err).Msg("embedded block is not valid JSON")
			continue
		}

		records := make(map[string]core.ProjectionRecord)
		walkForRecords(parsed, records)
		if len(records) >= e.config.MinRecords {
			return records
		}
		if len(records) > len(best) {
			e.logger.Debug().Str("marker", marker).Int("records", len(records)).Msg("marker block below threshold")
			best = records
		}
	}
	return best
}

// balancedBraceBlock returns the first balanced {...} block in s. Nested
// braces defeat a naive regex, so this counts depth, skipping brace
// characters inside JSON string literals and their escapes.
func balancedBraceBlock(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// walkForRecords recursively searches a parsed structure for objects that
// look like a team projection: a display name, an abbreviation-like field,
// and a projected-wins-like field all present at once.
func walkForRecords(node any, out map[string]core.ProjectionRecord) {
	switch v := node.(type) {
	case map[string]any:
		if record, ok := recordFromObject(v); ok {
			out[record.Team] = record
		}
		for _, child := range v {
			walkForRecords(child, out)
		}
	case []any:
		for _, child := range v {
			walkForRecords(child, out)
		}
	}
}

// recordFromObject maps one candidate object into a ProjectionRecord.
// Optional probability fields are left absent when missing or unparsable.
func recordFromObject(obj map[string]any) (core.ProjectionRecord, bool) {
	lowered := make(map[string]any, len(obj))
	for k, v := range obj {
		lowered[strings.ToLower(k)] = v
	}

	name, ok := stringField(lowered, nameFieldAliases)
	if !ok {
		return core.ProjectionRecord{}, false
	}
	if _, ok := stringField(lowered, abbrevFieldAliases); !ok {
		return core.ProjectionRecord{}, false
	}
	wins, ok := numberField(lowered, winsFieldAliases)
	if !ok {
		return core.ProjectionRecord{}, false
	}

	record := core.ProjectionRecord{
		Team:          futures.CanonicalName(name),
		ProjectedWins: wins,
	}
	if record.Team == "" {
		return core.ProjectionRecord{}, false
	}

	for field, aliases := range probFieldAliases {
		if v, ok := numberField(lowered, aliases); ok {
			setProbField(&record, field, asProbability(v))
		}
	}

	return record, true
}

func stringField(obj map[string]any, aliases []string) (string, bool) {
	for _, key := range aliases {
		if v, ok := obj[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s, true
			}
		}
	}
	return "", false
}

// numberField accepts a field as a JSON number or a numeric string.
func numberField(obj map[string]any, aliases []string) (float64, bool) {
	for _, key := range aliases {
		v, ok := obj[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case string:
			if wins, ok := parseNumericString(n); ok {
				return wins, true
			}
		}
	}
	return 0, false
}

func parseNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return 0, false
	}
	return v, true
}
