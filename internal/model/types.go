// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Algorithm selects the reveal pacing of a streaming calculation.
type Algorithm string

const (
	// AlgorithmMachin reveals one digit at a time.
	AlgorithmMachin Algorithm = "machin"
	// AlgorithmAGM reveals digits in batches of roughly 5%.
	AlgorithmAGM Algorithm = "agm"
	// AlgorithmSpigot reveals one digit at a time at a faster pace.
	AlgorithmSpigot Algorithm = "spigot"
)

// Algorithms lists the supported algorithms in display order.
var Algorithms = []Algorithm{AlgorithmMachin, AlgorithmAGM, AlgorithmSpigot}

// DisplayName returns the human-readable algorithm name.
func (a Algorithm) DisplayName() string {
	switch a {
	case AlgorithmMachin:
		return "Machin's Formula"
	case AlgorithmAGM:
		return "AGM + FFT"
	case AlgorithmSpigot:
		return "Spigot Algorithm"
	default:
		return string(a)
	}
}

// ParseAlgorithm resolves a case-insensitive algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "machin":
		return AlgorithmMachin, nil
	case "agm", "agm-fft", "agm_fft":
		return AlgorithmAGM, nil
	case "spigot":
		return AlgorithmSpigot, nil
	default:
		return "", fmt.Errorf("unknown algorithm %q (available: machin, agm, spigot)", s)
	}
}

// CalculationProgress is a snapshot emitted during a streaming calculation.
type CalculationProgress struct {
	CurrentDigits   int
	TargetDigits    int
	EstimatedRemain time.Duration
	CurrentResult   string
}

// CalculationResult is the terminal record of a calculation.
type CalculationResult struct {
	Digits    string
	Precision int
	Algorithm Algorithm
	Elapsed   time.Duration
	Complete  bool
}

// PatternType tags the origin of a search.
type PatternType string

const (
	PatternBirthday       PatternType = "birthday"
	PatternPhoneNumber    PatternType = "phone"
	PatternCustom         PatternType = "custom"
	PatternFamousSequence PatternType = "famous"
)

// SearchResult lists every match offset of a pattern in the corpus.
type SearchResult struct {
	Pattern   string
	Positions []int
	Type      PatternType
	Label     string
}

// PatternStatistics summarizes how a pattern is distributed in the corpus.
type PatternStatistics struct {
	Pattern                string
	Occurrences            int
	Positions              []int
	AverageGap             float64
	TheoreticalProbability float64
	ActualProbability      float64
}

// Mode selects the memorization rules.
type Mode string

const (
	ModePractice       Mode = "practice"
	ModeTest           Mode = "test"
	ModeTimedChallenge Mode = "timed"
)

// ParseMode resolves a case-insensitive memorization mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "practice", "":
		return ModePractice, nil
	case "test":
		return ModeTest, nil
	case "timed", "timed-challenge", "timed_challenge":
		return ModeTimedChallenge, nil
	default:
		return "", fmt.Errorf("unknown mode %q (available: practice, test, timed)", s)
	}
}

// GameState is a snapshot of a memorization session.
type GameState struct {
	Mode              Mode
	StartDigit        int
	Target            string
	Position          int
	Correct           int
	Total             int
	Active            bool
	Complete          bool
	StartedAt         time.Time
	EndedAt           time.Time
	LastAnswer        rune
	LastAnswerCorrect *bool
}

// SessionSummary captures a finished memorization session.
type SessionSummary struct {
	ID         string
	Mode       Mode
	StartDigit int
	EndDigit   int
	Correct    int
	Total      int
	Duration   time.Duration
	EndedAt    time.Time
}

// Achievement is a milestone unlocked by a personal best.
type Achievement struct {
	ID          string
	Title       string
	Description string
	Threshold   int
	UnlockedAt  time.Time
}

// MemorizationStats aggregates every recorded session.
type MemorizationStats struct {
	TotalDigits        int
	PersonalBest       int
	AverageAccuracy    float64
	TotalSessions      int
	AverageSessionTime time.Duration
	Achievements       []Achievement
}

// CacheStats reports chunk cache effectiveness.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Len       int
	Capacity  int
	HitRatio  float64
}
