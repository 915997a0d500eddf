package model

import (
	"reflect"
	"strings"
	"testing"
)

func TestNewSubmission(t *testing.T) {
	sub := NewSubmission("id-1", "https://leetcode.com/problems/two-sum/", TriggerNotification, "<html></html>")

	if sub.ID != "id-1" {
		t.Errorf("ID = %q, want %q", sub.ID, "id-1")
	}
	if sub.Status != StatusCaptured {
		t.Errorf("Status = %q, want %q", sub.Status, StatusCaptured)
	}
	if sub.Trigger != TriggerNotification {
		t.Errorf("Trigger = %q, want %q", sub.Trigger, TriggerNotification)
	}
	if sub.CreatedAt == "" {
		t.Error("CreatedAt should not be empty")
	}
	if sub.CreatedAt != sub.UpdatedAt {
		t.Error("CreatedAt and UpdatedAt should be equal for new submissions")
	}
	if sub.ErrorInfo != nil {
		t.Error("ErrorInfo should be nil for new submissions")
	}
}

func TestSettingsMissing(t *testing.T) {
	tests := []struct {
		name string
		s    Settings
		want []string
	}{
		{"all present", Settings{Token: "t", RepoOwner: "o", RepoName: "r"}, nil},
		{"no token", Settings{RepoOwner: "o", RepoName: "r"}, []string{SettingToken}},
		{"empty", Settings{DefaultLanguage: "python"}, []string{SettingToken, SettingRepoOwner, SettingRepoName}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Missing(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Missing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSettingsRedacted(t *testing.T) {
	s := Settings{Token: "ghp_secret", RepoOwner: "o"}
	if got := s.Redacted().Token; got != "***" {
		t.Errorf("Redacted token = %q, want ***", got)
	}
	if s.Token != "ghp_secret" {
		t.Error("Redacted must not modify the receiver")
	}
	if got := (Settings{}).Redacted().Token; got != "" {
		t.Errorf("Redacted empty token = %q, want empty", got)
	}
}

func TestSettingsMerge(t *testing.T) {
	stored := Settings{RepoOwner: "alice"}
	env := Settings{Token: "t", RepoOwner: "bob", RepoName: "solutions", DefaultLanguage: "go"}

	got := stored.Merge(env)
	want := Settings{Token: "t", RepoOwner: "alice", RepoName: "solutions", DefaultLanguage: "go"}
	if got != want {
		t.Errorf("Merge = %+v, want %+v", got, want)
	}
}

func TestErrorInfoToJSON(t *testing.T) {
	info := ErrorInfo{
		FailedStep: "sync",
		Kind:       "Conflict",
		Message:    "sha does not match",
		FailedAt:   "2026-01-01T00:00:00Z",
	}
	j := info.ToJSON()
	if !strings.Contains(j, `"failed_step":"sync"`) {
		t.Errorf("ToJSON missing failed_step, got %s", j)
	}
	if !strings.Contains(j, `"kind":"Conflict"`) {
		t.Errorf("ToJSON missing kind, got %s", j)
	}
}
