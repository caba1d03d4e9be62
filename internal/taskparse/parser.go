// Package taskparse extracts structured work items from unstructured
// LLM prose.
package taskparse

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"

	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

// ParsedTask is a single work item extracted from an analysis response.
type ParsedTask struct {
	// Title is the task headline, taken from the line that opened it.
	Title string
	// Description is the accumulated prose under the title.
	Description string
	// AssignedRole is the resolved specialization, if the text named one.
	AssignedRole models.Specialization
}

// taskMarker matches a line that starts a new task: "Task 1:", a
// bullet ("- " or "* "), or a numbered item ("1. ").
var taskMarker = regexp.MustCompile(`^(?:[Tt]ask\s+\d+\s*:|[*-]\s+|\d+\.\s+)`)

// nonAlnum strips punctuation when normalizing titles for dedup.
var nonAlnum = regexp.MustCompile(`[^a-z0-9 ]+`)

// Parser turns LLM prose into ParsedTasks, dropping titles already
// seen in the current analysis session. The dedup cache is shared
// across Parse calls until Reset.
type Parser struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewParser creates a Parser with an empty dedup cache.
func NewParser() *Parser {
	return &Parser{seen: make(map[string]bool)}
}

// Parse extracts tasks from text. When concise is true the raw prose
// description is replaced by a short role-templated one; this loses
// information deliberately to keep downstream display compact.
// Ambiguous input is not an error: text with no task markers yields an
// empty slice and callers supply a generic fallback task.
func (p *Parser) Parse(text string, concise bool) []ParsedTask {
	var tasks []ParsedTask
	var current *ParsedTask
	var descLines []string
	parsingAssignment := false

	flush := func() {
		if current == nil {
			return
		}
		current.Description = strings.TrimSpace(strings.Join(descLines, "\n"))
		if concise {
			current.Description = conciseDescription(current.AssignedRole)
		}
		tasks = append(tasks, *current)
		current = nil
		descLines = nil
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if loc := taskMarker.FindStringIndex(line); loc != nil {
			flush()
			current = &ParsedTask{Title: strings.TrimSpace(line[loc[1]:])}
			parsingAssignment = true
			continue
		}
		if current == nil {
			continue
		}

		lower := strings.ToLower(line)
		switch {
		case parsingAssignment && strings.Contains(lower, "assigned to:"):
			_, after, _ := strings.Cut(lower, "assigned to:")
			if role := models.ResolveSpecialization(after); role != "" {
				current.AssignedRole = role
			}
		case strings.Contains(lower, "expected outcome:"):
			parsingAssignment = false
			descLines = append(descLines, line)
		default:
			descLines = append(descLines, line)
		}
	}
	flush()

	return p.dedupe(tasks)
}

// dedupe drops tasks whose normalized title was seen before, in this
// call or a previous one, and records survivors into the cache.
func (p *Parser) dedupe(tasks []ParsedTask) []ParsedTask {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := make([]ParsedTask, 0, len(tasks))
	for _, t := range tasks {
		key := NormalizeTitle(t.Title)
		if key == "" || p.seen[key] {
			log.Printf("[taskparse] dropping duplicate task: %q", t.Title)
			continue
		}
		p.seen[key] = true
		kept = append(kept, t)
	}
	return kept
}

// Reset clears the dedup cache. Call between analysis sessions so a
// new session may legitimately re-create earlier titles.
func (p *Parser) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = make(map[string]bool)
}

// NormalizeTitle lower-cases a title and strips punctuation so that
// cosmetic variations compare equal.
func NormalizeTitle(title string) string {
	lower := strings.ToLower(title)
	lower = nonAlnum.ReplaceAllString(lower, "")
	return strings.Join(strings.Fields(lower), " ")
}

// conciseDescription is the fixed template used in concise mode.
func conciseDescription(role models.Specialization) string {
	if role == "" {
		return "Implementation task for the project team."
	}
	return fmt.Sprintf("Implementation task for the %s specialist.", role)
}
