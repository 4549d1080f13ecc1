// Package scoring ranks clients by how worthwhile a call is right now.
//
// The weights live in a Profile so they can be tuned without touching the
// scoring flow. Every function here is pure; the caller supplies the market
// rate and the current time.
package scoring

import (
	"fmt"
	"os"
	"sort"

	"broker_portal_backend/internal/clients/domain"

	"gopkg.in/yaml.v3"
)

// Step awards Points when a value is at least Min.
type Step struct {
	Min    float64 `yaml:"min"`
	Points int     `yaml:"points"`
}

// LoanMultiplier scales the base score for loans of at least MinLoan.
type LoanMultiplier struct {
	MinLoan float64 `yaml:"minLoan"`
	Factor  float64 `yaml:"factor"`
}

// TargetBonus rewards market rates at or close to the client's target.
type TargetBonus struct {
	HitPoints  int     `yaml:"hitPoints"`
	NearPoints int     `yaml:"nearPoints"`
	NearSpread float64 `yaml:"nearSpread"`
}

// TierThresholds are the minimum scores of each urgency tier.
type TierThresholds struct {
	Critical int `yaml:"critical"`
	High     int `yaml:"high"`
	Medium   int `yaml:"medium"`
}

// Profile is the full set of scoring tables. Step tables are ordered by
// descending Min; the first matching step wins.
type Profile struct {
	FinancialSteps []Step `yaml:"financialSteps"`
	// Savings below the last financial step earn savings/FinancialDivisor points.
	FinancialDivisor float64 `yaml:"financialDivisor"`

	UrgencySteps []Step `yaml:"urgencySteps"`

	StagePoints        map[domain.Stage]int `yaml:"stagePoints"`
	DefaultStagePoints int                  `yaml:"defaultStagePoints"`

	TargetBonus     TargetBonus      `yaml:"targetBonus"`
	LoanMultipliers []LoanMultiplier `yaml:"loanMultipliers"`
	Tiers           TierThresholds   `yaml:"tiers"`

	HighSavingsMonthly float64 `yaml:"highSavingsMonthly"`
	LargeLoanAmount    float64 `yaml:"largeLoanAmount"`
	StaleContactDays   int     `yaml:"staleContactDays"`
}

// DefaultProfile returns the production scoring tables.
func DefaultProfile() Profile {
	return Profile{
		FinancialSteps: []Step{
			{Min: 500, Points: 50},
			{Min: 400, Points: 45},
			{Min: 300, Points: 40},
			{Min: 200, Points: 35},
			{Min: 150, Points: 30},
			{Min: 100, Points: 25},
			{Min: 75, Points: 20},
			{Min: 50, Points: 15},
		},
		FinancialDivisor: 5,
		UrgencySteps: []Step{
			{Min: 30, Points: 25},
			{Min: 21, Points: 20},
			{Min: 14, Points: 15},
			{Min: 7, Points: 10},
			{Min: 3, Points: 5},
		},
		StagePoints: map[domain.Stage]int{
			domain.StageApplication: 15,
			domain.StageQualified:   12,
			domain.StageContacted:   8,
			domain.StageNew:         5,
			domain.StageNurture:     3,
			domain.StageClosed:      2,
			domain.StageLost:        0,
		},
		DefaultStagePoints: 5,
		TargetBonus:        TargetBonus{HitPoints: 10, NearPoints: 5, NearSpread: 0.125},
		LoanMultipliers: []LoanMultiplier{
			{MinLoan: 750_000, Factor: 1.3},
			{MinLoan: 500_000, Factor: 1.2},
			{MinLoan: 300_000, Factor: 1.1},
		},
		Tiers:              TierThresholds{Critical: 80, High: 60, Medium: 40},
		HighSavingsMonthly: 200,
		LargeLoanAmount:    500_000,
		StaleContactDays:   14,
	}
}

// LoadProfile reads a YAML override on top of DefaultProfile. Keys missing
// from the file keep their default values; stage points are merged per stage.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read scoring profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile is LoadProfile for in-memory YAML.
func ParseProfile(data []byte) (Profile, error) {
	profile := DefaultProfile()
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return Profile{}, fmt.Errorf("parse scoring profile: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// Validate checks that step tables are strictly descending and that tiers
// and stage keys make sense.
func (p Profile) Validate() error {
	if err := validateSteps("financialSteps", p.FinancialSteps); err != nil {
		return err
	}
	if err := validateSteps("urgencySteps", p.UrgencySteps); err != nil {
		return err
	}
	if p.FinancialDivisor <= 0 {
		return fmt.Errorf("scoring profile: financialDivisor must be positive")
	}
	for i := 1; i < len(p.LoanMultipliers); i++ {
		if p.LoanMultipliers[i].MinLoan >= p.LoanMultipliers[i-1].MinLoan {
			return fmt.Errorf("scoring profile: loanMultipliers must be ordered by descending minLoan")
		}
	}
	for _, m := range p.LoanMultipliers {
		if m.Factor <= 0 {
			return fmt.Errorf("scoring profile: loan multiplier factor must be positive")
		}
	}
	if !(p.Tiers.Critical > p.Tiers.High && p.Tiers.High > p.Tiers.Medium) {
		return fmt.Errorf("scoring profile: tiers must satisfy critical > high > medium")
	}
	if p.TargetBonus.NearSpread < 0 {
		return fmt.Errorf("scoring profile: targetBonus.nearSpread must not be negative")
	}
	for stage := range p.StagePoints {
		if !stage.IsKnown() {
			return fmt.Errorf("scoring profile: unknown stage %q in stagePoints", stage)
		}
	}
	return nil
}

func validateSteps(name string, steps []Step) error {
	if len(steps) == 0 {
		return fmt.Errorf("scoring profile: %s must not be empty", name)
	}
	descending := sort.SliceIsSorted(steps, func(i, j int) bool { return steps[i].Min > steps[j].Min })
	if !descending {
		return fmt.Errorf("scoring profile: %s must be ordered by descending min", name)
	}
	for i := 1; i < len(steps); i++ {
		if steps[i].Min == steps[i-1].Min {
			return fmt.Errorf("scoring profile: %s has duplicate min %.2f", name, steps[i].Min)
		}
	}
	return nil
}

// pointsFor returns the points of the first step whose Min is at most value.
func pointsFor(steps []Step, value float64) (int, bool) {
	for _, step := range steps {
		if value >= step.Min {
			return step.Points, true
		}
	}
	return 0, false
}
