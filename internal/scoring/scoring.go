// Package scoring computes the weighted ATS fitness score of a parsed profile.
package scoring

import (
	"math"

	"github.com/spigell/resume-ats/internal/resume"
)

// MaxScore is the upper clamp applied to the weighted sum.
const MaxScore = 100

// Component is one weighted term of the score.
type Component struct {
	Weight float64
	Cap    float64
}

// Weights holds the per-component weights and caps.
type Weights struct {
	Skills         Component
	Experience     Component
	Education      Component
	Certifications Component
}

// DefaultWeights returns skills 0.4, experience 0.3, education 0.2 and certifications 0.1.
// With these caps the reachable maximum is 8.5, well below MaxScore.
func DefaultWeights() Weights {
	return Weights{
		Skills:         Component{Weight: 0.4, Cap: 10},
		Experience:     Component{Weight: 0.3, Cap: 10},
		Education:      Component{Weight: 0.2, Cap: 5},
		Certifications: Component{Weight: 0.1, Cap: 5},
	}
}

// Inputs are the raw values the score is computed from.
type Inputs struct {
	Skills          int
	ExperienceYears float64
	Education       int
	Certifications  int
}

// InputsOf reads the scoring inputs off a profile.
func InputsOf(p *resume.Profile) Inputs {
	if p == nil {
		return Inputs{}
	}
	return Inputs{
		Skills:          len(p.Skills),
		ExperienceYears: p.TotalExperienceYears,
		Education:       len(p.Education),
		Certifications:  len(p.Certifications),
	}
}

// Compute applies w to in: the capped weighted sum, clamped to MaxScore and rounded to 2 decimals.
func (w Weights) Compute(in Inputs) float64 {
	score := w.Skills.apply(float64(in.Skills)) +
		w.Experience.apply(in.ExperienceYears) +
		w.Education.apply(float64(in.Education)) +
		w.Certifications.apply(float64(in.Certifications))

	return round2(math.Min(score, MaxScore))
}

func (c Component) apply(value float64) float64 {
	return c.Weight * math.Min(value, c.Cap)
}

// Score computes the profile score with DefaultWeights.
func Score(p *resume.Profile) float64 {
	return DefaultWeights().Compute(InputsOf(p))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
