package schema

import "fmt"

// ChallengeType classifies what a challenge asks the solver to build.
type ChallengeType string

const (
	ChallengeTypeAlgorithm     ChallengeType = "Algorithm"
	ChallengeTypeDataStructure ChallengeType = "DataStructure"
	ChallengeTypeFrontend      ChallengeType = "Frontend"
	ChallengeTypeBackend       ChallengeType = "Backend"
	ChallengeTypeFullstack     ChallengeType = "Fullstack"
)

// Difficulty ranks how hard a challenge is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

var (
	challengeTypes = []ChallengeType{
		ChallengeTypeAlgorithm,
		ChallengeTypeDataStructure,
		ChallengeTypeFrontend,
		ChallengeTypeBackend,
		ChallengeTypeFullstack,
	}
	difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
)

// ChallengeTypes returns every challenge type in display order.
func ChallengeTypes() []ChallengeType {
	out := make([]ChallengeType, len(challengeTypes))
	copy(out, challengeTypes)
	return out
}

// Difficulties returns every difficulty from easiest to hardest.
func Difficulties() []Difficulty {
	out := make([]Difficulty, len(difficulties))
	copy(out, difficulties)
	return out
}

// Label is the human readable name shown in selectors.
func (t ChallengeType) Label() string {
	switch t {
	case ChallengeTypeAlgorithm:
		return "Algorithm"
	case ChallengeTypeDataStructure:
		return "Data Structure"
	case ChallengeTypeFrontend:
		return "Frontend"
	case ChallengeTypeBackend:
		return "Backend"
	case ChallengeTypeFullstack:
		return "Full Stack"
	}
	return string(t)
}

// Valid reports whether t is one of the known challenge types.
func (t ChallengeType) Valid() bool {
	for _, known := range challengeTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (d Difficulty) Label() string {
	switch d {
	case DifficultyEasy:
		return "Easy"
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	}
	return string(d)
}

func (d Difficulty) Valid() bool {
	for _, known := range difficulties {
		if d == known {
			return true
		}
	}
	return false
}

// ParseChallengeType converts a raw form value into a ChallengeType.
func ParseChallengeType(raw string) (ChallengeType, error) {
	t := ChallengeType(raw)
	if !t.Valid() {
		return "", fmt.Errorf("unknown challenge type %q", raw)
	}
	return t, nil
}

// ParseDifficulty converts a raw form value into a Difficulty.
func ParseDifficulty(raw string) (Difficulty, error) {
	d := Difficulty(raw)
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", raw)
	}
	return d, nil
}
