package utils

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{123456, "123,456"},
		{-1234567, "-1,234,567"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.n); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
	if got := FormatSigned(1500); got != "+1,500" {
		t.Errorf("FormatSigned(1500) = %q", got)
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name            string
		current, target int
		want            string
	}{
		{"empty", 0, 10, "░░░░░"},
		{"half", 5, 10, "██░░░"},
		{"full", 10, 10, "█████"},
		{"overflow", 40, 10, "█████"},
		{"zero target", 3, 0, "░░░░░"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProgressBar(tt.current, tt.target, 5); got != tt.want {
				t.Errorf("ProgressBar(%d, %d) = %q, want %q", tt.current, tt.target, got, tt.want)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	next := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		contains string
	}{
		{"cooldown", &rewards.SpinCooldownError{NextAvailableAt: next}, BusinessLogicError, fmt.Sprintf("<t:%d:R>", next.Unix())},
		{"claimed", fmt.Errorf("claim: %w", rewards.ErrAlreadyClaimed), BusinessLogicError, "already claimed"},
		{"balance", rewards.ErrInsufficientBalance, BusinessLogicError, "enough coins"},
		{"missing", rewards.ErrNotFound, NotFoundError, "Nothing found"},
		{"other", fmt.Errorf("boom"), SystemError, "went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, msg := ClassifyError(tt.err)
			if gotType != tt.wantType || !strings.Contains(msg, tt.contains) {
				t.Errorf("ClassifyError() = %v, %q", gotType, msg)
			}
		})
	}
}

func TestMatchQuests(t *testing.T) {
	quests := rewards.DefaultCatalog().Quests

	got := MatchQuests(quests, "", 3)
	if len(got) != 3 || got[0].ID != quests[0].ID {
		t.Errorf("MatchQuests(empty) = %v", got)
	}

	got = MatchQuests(quests, "social", 5)
	if len(got) == 0 || got[0].ID != "social_butterfly" {
		t.Errorf("MatchQuests(social) = %v, want social_butterfly first", got)
	}

	if got := MatchQuests(quests, "zzzzqqq", 5); len(got) != 0 {
		t.Errorf("MatchQuests(nonsense) = %v", got)
	}
}
