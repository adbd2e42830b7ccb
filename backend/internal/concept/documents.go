package concept

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"carton/backend/internal/constants"
)

var (
	// markdownLinkPattern matches any inline markdown link.
	markdownLinkPattern = regexp.MustCompile(`\[[^\]]*\]\([^)]*\)`)

	// siblingLinkPattern matches a link into a sibling concept directory and
	// captures the directory name.
	siblingLinkPattern = regexp.MustCompile(`\[.*?\]\(\.\./([^/)]+)/[^)]*\)`)
)

// Concept is the (name, description, relationships) triple every derived
// document is rendered from.
type Concept struct {
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Relationships Relationships `json:"relationships"`
}

// Summary is the (name, description) pair read back from a store.
type Summary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Document is one rendered file, addressed relative to the store root.
type Document struct {
	Path    string
	Content string
}

// Dir is the store path of a concept's directory.
func Dir(name string) string {
	return path.Join(constants.ConceptsDir, name)
}

// ComponentsPath is the store path of a concept's components directory.
func ComponentsPath(name string) string {
	return path.Join(Dir(name), constants.ComponentsDir)
}

// RelationPath is the store path of the document listing one relation's targets.
func RelationPath(name, relType string) string {
	return path.Join(ComponentsPath(name), relType, name+"_"+relType+constants.DocumentExt)
}

// DescriptionPath is the store path of the description document.
func DescriptionPath(name string) string {
	return path.Join(ComponentsPath(name), constants.DescriptionRelation+constants.DocumentExt)
}

// OverviewPath is the store path of the aggregate overview document.
func OverviewPath(name string) string {
	return path.Join(Dir(name), name+constants.DocumentExt)
}

// SelfPath is the store path of the canonical self document.
func SelfPath(name string) string {
	return path.Join(Dir(name), name+"_itself"+constants.DocumentExt)
}

// SelfLink is the relative link from one concept directory to name's self document.
func SelfLink(name string) string {
	return "../" + name + "/" + name + "_itself" + constants.DocumentExt
}

// Render produces every derived document of c: one per relation type, the
// description, the overview and the self document, in that order. The output
// depends only on c.
func Render(c Concept) []Document {
	docs := make([]Document, 0, len(c.Relationships)+3)
	for _, rel := range c.Relationships {
		docs = append(docs, Document{
			Path:    RelationPath(c.Name, rel.Type),
			Content: renderRelation(c.Name, rel),
		})
	}
	docs = append(docs,
		Document{Path: DescriptionPath(c.Name), Content: c.Description},
		Document{Path: OverviewPath(c.Name), Content: renderOverview(c)},
		Document{Path: SelfPath(c.Name), Content: renderSelf(c)},
	)
	return docs
}

func renderRelation(name string, rel Relation) string {
	lines := []string{
		fmt.Sprintf("# %s Relationships for %s", TitleCase(rel.Type), name),
		"",
	}
	for _, target := range rel.Targets {
		lines = append(lines, relationLine(name, rel.Type, target))
	}
	return strings.Join(lines, "\n")
}

func renderOverview(c Concept) string {
	lines := []string{
		"# " + c.Name,
		"",
		"## Overview",
		c.Description,
		"",
		"## Relationships",
	}
	for _, rel := range c.Relationships {
		lines = append(lines, fmt.Sprintf("### %s Relationships", TitleCase(rel.Type)))
		for _, target := range rel.Targets {
			lines = append(lines, "- "+target)
		}
	}
	return strings.Join(lines, "\n")
}

func renderSelf(c Concept) string {
	lines := []string{
		"# " + c.Name,
		"",
		"## Overview",
		c.Description,
		"",
		"## Relationships",
	}
	for _, rel := range c.Relationships {
		lines = append(lines, "", fmt.Sprintf("### %s Relationships", TitleCase(rel.Type)), "")
		for _, target := range rel.Targets {
			lines = append(lines, relationLine(c.Name, rel.Type, target))
		}
	}
	return strings.Join(lines, "\n")
}

func relationLine(name, relType, target string) string {
	return fmt.Sprintf("- %s %s %s", name, relType, MarkdownLink(target, Canonical(target)))
}

// ReferencedConcepts returns the directory names of every sibling-concept link
// in content, in order of appearance, repeats included.
func ReferencedConcepts(content string) []string {
	matches := siblingLinkPattern.FindAllStringSubmatch(content, -1)
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, m[1])
	}
	return refs
}

// LinksTo reports whether content holds a sibling-concept link into exactly
// the directory name.
func LinksTo(content, name string) bool {
	for _, ref := range ReferencedConcepts(content) {
		if ref == name {
			return true
		}
	}
	return false
}

// ReplaceOverview re-links the line following "## Overview" in a rendered
// overview or self document. It reports whether anything changed.
func ReplaceOverview(content string, relink func(string) string) (string, bool) {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.Contains(line, "## Overview") && i+1 < len(lines) {
			updated := relink(lines[i+1])
			if updated == lines[i+1] {
				return content, false
			}
			lines[i+1] = updated
			return strings.Join(lines, "\n"), true
		}
	}
	return content, false
}
