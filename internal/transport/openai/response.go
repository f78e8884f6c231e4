package openai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/matchmaker/internal/domain/match"
)

var fencedJSON = regexp.MustCompile("(?s)```json(.*?)```")

// scoreFields are the accepted names of the 0-100 score, in precedence order.
var scoreFields = []string{"aiScore", "totalScore", "score"}

// ExtractJSON returns the body of the first ```json fenced block, or the whole
// text when there is none.
func ExtractJSON(raw string) string {
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}

// ParseResponse extracts and strictly validates an oracle verdict.
// The score must be a JSON number; insights may be conversation starters,
// similar features, or both.
func ParseResponse(raw string) (match.OracleResult, error) {
	text := ExtractJSON(raw)
	if text == "" {
		return match.OracleResult{}, errors.New("empty response")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return match.OracleResult{}, fmt.Errorf("decode response: %w", err)
	}

	var res match.OracleResult

	summary, ok := fields["summary"]
	if !ok || json.Unmarshal(summary, &res.Summary) != nil {
		return match.OracleResult{}, errors.New("summary must be a string")
	}

	score, err := parseScore(fields)
	if err != nil {
		return match.OracleResult{}, err
	}
	res.Score = score

	if raw, ok := fields["conversationStarters"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &res.ConversationStarters); err != nil {
			return match.OracleResult{}, fmt.Errorf("conversationStarters must be a list of strings: %w", err)
		}
	}

	if raw, ok := fields["similarFeatures"]; ok && !isNull(raw) {
		features, err := parseFeatures(raw)
		if err != nil {
			return match.OracleResult{}, err
		}
		res.SimilarFeatures = features
	}

	if err := res.Validate(); err != nil {
		return match.OracleResult{}, err
	}
	return res, nil
}

func parseScore(fields map[string]json.RawMessage) (float64, error) {
	for _, name := range scoreFields {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var v float64
		if isNull(raw) || json.Unmarshal(raw, &v) != nil {
			return 0, fmt.Errorf("%s must be a number", name)
		}
		return v, nil
	}
	return 0, errors.New("score is missing")
}

func parseFeatures(raw json.RawMessage) (map[string]match.FeatureScore, error) {
	var wire map[string]struct {
		Score       *float64 `json:"score"`
		Explanation string   `json:"explanation"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("similarFeatures must be an object: %w", err)
	}

	out := make(map[string]match.FeatureScore, len(wire))
	for name, f := range wire {
		if f.Score == nil {
			return nil, fmt.Errorf("feature %q has no score", name)
		}
		if strings.TrimSpace(f.Explanation) == "" {
			return nil, fmt.Errorf("feature %q has no explanation", name)
		}
		out[name] = match.FeatureScore{Score: *f.Score, Explanation: f.Explanation}
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
