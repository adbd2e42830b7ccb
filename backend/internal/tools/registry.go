package tools

// GetAllTools returns every tool definition, concept tools first
func GetAllTools() []Definition {
	all := GetConceptTools()
	return append(all, GetGraphTools()...)
}

// FindTool looks a definition up by name.
func FindTool(name string) (Definition, bool) {
	for _, d := range GetAllTools() {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}
