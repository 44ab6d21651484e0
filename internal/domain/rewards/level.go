package rewards

// XPPerLevel is the flat amount of experience between two levels.
const XPPerLevel = 100

// LevelFor maps accumulated experience to a level. Negative input is treated as zero.
func LevelFor(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return int(xp/XPPerLevel) + 1
}

// LevelProgress describes where xp sits inside its level.
type LevelProgress struct {
	Level       int   `json:"level"`
	IntoLevel   int64 `json:"into_level"`
	ToNextLevel int64 `json:"to_next_level"`
	NextLevelAt int64 `json:"next_level_at"`
}

func ProgressFor(xp int64) LevelProgress {
	if xp < 0 {
		xp = 0
	}
	level := LevelFor(xp)
	next := int64(level) * XPPerLevel
	return LevelProgress{
		Level:       level,
		IntoLevel:   xp % XPPerLevel,
		ToNextLevel: next - xp,
		NextLevelAt: next,
	}
}
