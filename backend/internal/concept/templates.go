package concept

import (
	"fmt"
	"strings"
)

var descriptionFamilies = []struct {
	keywords []string
	format   string
}{
	{[]string{"tool", "system", "framework"}, "%s is a system or tool that provides specific functionality."},
	{[]string{"protocol", "standard", "format"}, "%s is a protocol or standard for data exchange and communication."},
	{[]string{"agent", "intelligence", "ai"}, "%s is an intelligent agent or AI system with specific capabilities."},
	{[]string{"integration", "bridge", "adapter"}, "%s is an integration layer or bridge between different systems."},
}

// PlaceholderDescription is used when a concept is created without a description.
func PlaceholderDescription(name string) string {
	return fmt.Sprintf("No description available for %s.", name)
}

// GenerateDescription fills a starter description for a concept from the
// keyword family of its name and up to two targets of each relationship.
func GenerateDescription(name string, rels Relationships) string {
	readable := Spaced(name)
	probe := strings.ToLower(strings.ReplaceAll(readable, "-", " "))

	base := fmt.Sprintf("%s is a concept that requires further definition and exploration.", readable)
	for _, family := range descriptionFamilies {
		if containsAny(probe, family.keywords) {
			base = fmt.Sprintf(family.format, readable)
			break
		}
	}

	var context []string
	for _, rel := range rels {
		if len(rel.Targets) == 0 {
			continue
		}
		relType := rel.Type
		if relType == "" {
			relType = RelRelatesTo
		}
		targets := rel.Targets
		if len(targets) > 2 {
			targets = targets[:2]
		}
		context = append(context, fmt.Sprintf("It %s %s", relType, strings.Join(targets, ", ")))
	}
	if len(context) > 0 {
		base += " " + strings.Join(context, ". ") + "."
	}
	return base
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
