package search

import (
	"strings"

	"github.com/talentmatch/searchkit/pkg/query"
	"github.com/talentmatch/searchkit/pkg/textmatch"
)

// NeutralScore is returned when neither free text nor skill filters are
// present. Ranking an unfiltered browse at a constant midpoint prevents
// a zero-relevance collapse where every result ties at the bottom.
const NeutralScore = 50.0

// Scoring accumulator weights.
const (
	titleWordScore       = 25.0
	skillWordScore       = 20.0
	descriptionWordScore = 10.0
	skillMatchMaxScore   = 30.0
	requiredSkillBonus   = 10.0
	weightedSkillBonus   = 5.0
	topRatedBonus        = 5.0
	verifiedBonus        = 3.0
)

// Score computes a relevance score in [0,100] for f against q.
func Score(f Freelancer, q query.SearchQuery) float64 {
	nq := query.Normalize(q)

	if nq.Query == "" && len(nq.Filters.Skills) == 0 {
		return NeutralScore
	}

	score := 0.0

	titleWords := strings.Fields(strings.ToLower(f.Title))
	description := strings.ToLower(f.Description)
	skills := lowerAll(f.Skills)

	for _, word := range strings.Fields(nq.Query) {
		for _, tw := range titleWords {
			if strings.Contains(tw, word) {
				score += titleWordScore
				break
			}
		}
		for _, skill := range skills {
			if strings.Contains(skill, word) {
				score += skillWordScore
				break
			}
		}
		if strings.Contains(description, word) {
			score += descriptionWordScore
		}
	}

	if len(nq.Filters.Skills) > 0 {
		matched := 0
		for _, sf := range nq.Filters.Skills {
			if !matchesAnySkill(sf.Name, skills, textmatch.ScoreThreshold) {
				continue
			}
			matched++
			if sf.Required {
				score += requiredSkillBonus
			}
			if sf.Weight > 0 {
				score += weightedSkillBonus * sf.Weight
			}
		}
		score += skillMatchMaxScore * float64(matched) / float64(len(nq.Filters.Skills))
	}

	if f.TopRated {
		score += topRatedBonus
	}
	if f.Verified {
		score += verifiedBonus
	}

	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

// ScoreAll returns a copy of results annotated with relevance scores.
func ScoreAll(results []Freelancer, q query.SearchQuery) []Freelancer {
	scored := make([]Freelancer, len(results))
	for i, f := range results {
		f.RelevanceScore = Score(f, q)
		scored[i] = f
	}
	return scored
}

func matchesAnySkill(name string, skills []string, threshold float64) bool {
	for _, skill := range skills {
		if textmatch.FuzzyMatch(name, skill, threshold) {
			return true
		}
	}
	return false
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}
