package conversation

import (
	"fmt"
	"strings"

	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

// roleContext describes each specialization's perspective for the
// turn prompt.
var roleContext = map[models.Specialization]string{
	models.SpecArchitect: "You lead the technical design and coordinate the team.",
	models.SpecFrontend:  "You build the user interface and care about usability.",
	models.SpecBackend:   "You build the APIs and services behind the product.",
	models.SpecTesting:   "You ensure quality through tests and reviews.",
	models.SpecDevOps:    "You handle deployment, infrastructure, and reliability.",
}

// turnPrompt assembles the completion prompt for one conversational
// turn from the last message and role metadata.
func turnPrompt(name string, role, listenerRole models.Specialization, lastMessage string) string {
	var b strings.Builder

	if name != "" {
		fmt.Fprintf(&b, "You are %s, ", name)
	} else {
		b.WriteString("You are ")
	}
	if role != "" {
		fmt.Fprintf(&b, "a %s specialist on a software project team. ", role)
	} else {
		b.WriteString("a member of a software project team. ")
	}
	if ctx, ok := roleContext[role]; ok {
		b.WriteString(ctx)
		b.WriteString(" ")
	}

	if listenerRole != "" {
		fmt.Fprintf(&b, "You are talking with the %s specialist.\n\n", listenerRole)
	} else {
		b.WriteString("You are talking with a teammate.\n\n")
	}

	fmt.Fprintf(&b, "They said:\n%s\n\n", lastMessage)
	b.WriteString("Reply in character, briefly and concretely. " +
		"If the discussion has reached a natural conclusion, wrap it up.")

	return b.String()
}
