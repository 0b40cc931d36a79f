package watcher

// ChangeAnalysis describes what must be reloaded before the next build
type ChangeAnalysis struct {
	ReloadEnv    bool
	ReloadConfig bool
	ChangedFiles []string
}

// AnalyzeChanges determines what a change event invalidates
func AnalyzeChanges(event ChangeEvent) *ChangeAnalysis {
	analysis := &ChangeAnalysis{
		ChangedFiles: event.Paths,
	}

	switch event.Type {
	case ChangeTypeEnv:
		// New env values only reach the config through a reload
		analysis.ReloadEnv = true
		analysis.ReloadConfig = true

	case ChangeTypeConfig:
		analysis.ReloadConfig = true
	}

	return analysis
}
