package leveling

import "strings"

const (
	// MaxLevel caps the level computed from experience.
	MaxLevel = 150
	// DisplayMaxLevel is where replies switch to "max level" wording.
	DisplayMaxLevel = 100

	baseStep      = 100
	stepIncrement = 50
)

// StepForLevel returns the experience needed to advance from level-1 to level:
// 100, 150, 200, ...
func StepForLevel(level int) int64 {
	if level < 1 {
		return 0
	}
	return int64(baseStep + (level-1)*stepIncrement)
}

// CumulativeForLevel returns the total experience needed to reach level.
func CumulativeForLevel(level int) int64 {
	if level <= 0 {
		return 0
	}
	l := int64(level)
	return baseStep*l + stepIncrement*l*(l-1)/2
}

// LevelFromExperience returns the highest level whose cumulative threshold is covered by xp.
func LevelFromExperience(xp int64) int {
	if xp < baseStep {
		return 0
	}
	level := 0
	for level < MaxLevel && CumulativeForLevel(level+1) <= xp {
		level++
	}
	return level
}

// Progress describes where a user stands inside their current level.
type Progress struct {
	Level            int
	Experience       int64
	CurrentThreshold int64
	NextThreshold    int64
	Remaining        int64
	Maxed            bool

	// Percent is the share of the current level's step already earned, 0-100.
	Percent int
}

// ProgressFor computes rank-card progress for a stored record.
func ProgressFor(xp int64, level int) Progress {
	p := Progress{
		Level:            level,
		Experience:       xp,
		CurrentThreshold: CumulativeForLevel(level),
		NextThreshold:    CumulativeForLevel(level + 1),
		Maxed:            level >= DisplayMaxLevel,
	}
	p.Remaining = p.NextThreshold - xp
	if p.Remaining < 0 {
		p.Remaining = 0
	}

	if p.Maxed {
		p.Percent = 100
		return p
	}
	span := p.NextThreshold - p.CurrentThreshold
	if span > 0 {
		p.Percent = clampPercent((xp - p.CurrentThreshold) * 100 / span)
	}
	return p
}

// ProgressBar renders percent as a bar of width cells.
func ProgressBar(percent, width int) string {
	filled := clampPercent(int64(percent)) * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func clampPercent(v int64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}
