package models

import "testing"

func TestAgentStatusValid(t *testing.T) {
	valid := []AgentStatus{
		AgentStatusIdle,
		AgentStatusWorking,
		AgentStatusWaiting,
		AgentStatusCompleted,
		AgentStatusFailed,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("status %q should be valid", s)
		}
	}

	invalid := []AgentStatus{"", "running", "error", "WORKING"}
	for _, s := range invalid {
		if s.Valid() {
			t.Errorf("status %q should be invalid", s)
		}
	}
}

func TestResolveSpecialization(t *testing.T) {
	tests := []struct {
		text string
		want Specialization
	}{
		{"frontend developer", SpecFrontend},
		{"Front-end", SpecFrontend},
		{"backend", SpecBackend},
		{"API engineer", SpecBackend},
		{"testing", SpecTesting},
		{"QA specialist", SpecTesting},
		{"deployment", SpecDevOps},
		{"DevOps", SpecDevOps},
		{"architect", SpecArchitect},
		{"Software Architecture", SpecArchitect},
		{"designer", ""},
		{"", ""},
	}

	for _, tt := range tests {
		got := ResolveSpecialization(tt.text)
		if got != tt.want {
			t.Errorf("ResolveSpecialization(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestAgentIsLead(t *testing.T) {
	a := &Agent{Specialization: SpecArchitect}
	if !a.IsLead() {
		t.Error("architect should be lead")
	}

	b := &Agent{Specialization: SpecBackend}
	if b.IsLead() {
		t.Error("backend should not be lead")
	}
}

func TestMessageTypeValid(t *testing.T) {
	valid := []MessageType{
		MessageTypeRequest,
		MessageTypeResponse,
		MessageTypeUpdate,
		MessageTypeNotification,
		MessageTypeTask,
		MessageTypeProgress,
	}
	for _, mt := range valid {
		if !mt.Valid() {
			t.Errorf("type %q should be valid", mt)
		}
	}
	if MessageType("broadcast").Valid() {
		t.Error("type \"broadcast\" should be invalid")
	}
}

func TestTaskStatusValid(t *testing.T) {
	valid := []TaskStatus{
		TaskStatusPending,
		TaskStatusInProgress,
		TaskStatusDone,
		TaskStatusFailed,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("status %q should be valid", s)
		}
	}
	if TaskStatus("blocked").Valid() {
		t.Error("status \"blocked\" should be invalid")
	}
}
