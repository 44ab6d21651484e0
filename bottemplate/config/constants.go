package config

import "time"

// UI and Display Constants
const (
	DefaultPageSize = 10
	MaxPageSize     = 25
	QuestsPerPage   = 5

	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	EmbedDefaultColor = 0x2B2D31
	LevelUpColor      = 0xFFD700
	JackpotColor      = 0xE91E63
)

// Database and Performance Constants
const (
	DefaultQueryTimeout     = 30 * time.Second
	CommandExecutionTimeout = 10 * time.Second
	NetworkDialTimeout      = 5 * time.Second
	ShutdownTimeout         = 10 * time.Second
	SlowCommandThreshold    = 5 * time.Second
	SlowQueryThreshold      = 500 * time.Millisecond

	// Day-log cache of (user, day) pairs already claimed or spun
	DayCacheSize = 10000
)

// Leaderboard and reconciliation
const (
	LeaderboardKey         = "progression:leaderboard:xp"
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 100

	ReconcileConcurrency = 8
	ReportContentType    = "application/json"
)

// Time Format Constants
const (
	ReportTimeLayout = "20060102T150405Z"
)
