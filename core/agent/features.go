package agent

import "strings"

// featureRule maps a mood keyword family to its audio feature targets.
type featureRule struct {
	keywords []string
	targets  map[string]float64
}

// featureRules is evaluated in order; the first family with a matching
// keyword wins. The target values are tuned by inspection, not derived.
var featureRules = []featureRule{
	{
		keywords: []string{"happy", "excited", "joy"},
		targets:  map[string]float64{"target_valence": 0.85, "target_energy": 0.75, "target_danceability": 0.7, "min_popularity": 40},
	},
	{
		keywords: []string{"sad", "down", "blue"},
		targets:  map[string]float64{"target_valence": 0.2, "target_energy": 0.3, "target_instrumentalness": 0.2, "min_popularity": 30},
	},
	{
		keywords: []string{"chill", "calm", "relax"},
		targets:  map[string]float64{"target_valence": 0.6, "target_energy": 0.35, "target_acousticness": 0.4, "target_danceability": 0.5, "min_popularity": 30},
	},
	{
		keywords: []string{"angry", "mad", "frustrated"},
		targets:  map[string]float64{"target_energy": 0.9, "target_valence": 0.25, "min_popularity": 30},
	},
	{
		keywords: []string{"focus", "study", "work"},
		targets:  map[string]float64{"target_energy": 0.35, "target_instrumentalness": 0.6, "target_valence": 0.55, "min_popularity": 20},
	},
}

var neutralFeatures = map[string]float64{"target_valence": 0.55, "target_energy": 0.55, "min_popularity": 20}

// MoodToFeatures derives audio feature targets from a mood label when the
// extractor returned no usable features map. Pure function of the input.
func MoodToFeatures(mood string) map[string]float64 {
	m := strings.ToLower(mood)
	for _, rule := range featureRules {
		for _, kw := range rule.keywords {
			if strings.Contains(m, kw) {
				return cloneFeatures(rule.targets)
			}
		}
	}
	return cloneFeatures(neutralFeatures)
}

// cloneFeatures keeps the rule tables immutable when callers mutate results.
func cloneFeatures(src map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
