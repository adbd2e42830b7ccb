package concept

// FindMentions lists every existing concept mentioned anywhere in content, in
// the order of existing. Unlike AutoLink it looks at all occurrences and never
// rewrites content; the result feeds the auto_related_to bucket.
func FindMentions(content string, existing []string, current string) []string {
	var mentioned []string
	for _, name := range existing {
		if name == "" || SameConcept(name, current) {
			continue
		}
		if NewNameMatcher(name).Matches(content) {
			mentioned = append(mentioned, name)
		}
	}
	return mentioned
}
