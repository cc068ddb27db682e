package config

// ModelEntry describes one selectable provider model together with the
// limits it declares. Absent limits fall back to coordinator defaults.
type ModelEntry struct {
	ID              string `yaml:"id"`
	Provider        string `yaml:"provider"`
	ModelName       string `yaml:"model_name"`
	MaxConcurrency  int    `yaml:"max_concurrency"`
	MaxChunkSeconds int    `yaml:"max_chunk_seconds"`
	Default         bool   `yaml:"default"`
}

func defaultASRModels() []ModelEntry {
	return []ModelEntry{
		{ID: "whisper/local", Provider: "whisper", ModelName: "whisper.cpp", Default: true},
		{ID: "openai/gpt-4o-transcribe", Provider: "openai", ModelName: "gpt-4o-transcribe"},
		{ID: "openai/whisper-1", Provider: "openai", ModelName: "whisper-1", MaxConcurrency: 5, MaxChunkSeconds: 600},
	}
}

func defaultRefineModels() []ModelEntry {
	return []ModelEntry{
		{ID: "gemini/gemini-2.5-flash", Provider: "gemini", ModelName: "gemini-2.5-flash", Default: true},
		{ID: "gemini/gemini-2.5-pro", Provider: "gemini", ModelName: "gemini-2.5-pro", MaxConcurrency: 2},
	}
}

func defaultModelID(models []ModelEntry) string {
	for _, m := range models {
		if m.Default {
			return m.ID
		}
	}
	if len(models) > 0 {
		return models[0].ID
	}
	return ""
}

// ModelByID looks up a model entry in the given table.
func (c *Config) ModelByID(id string, models []ModelEntry) (ModelEntry, bool) {
	for _, m := range models {
		if m.ID == id {
			return m, true
		}
	}
	return ModelEntry{}, false
}

// ASRModelEntry returns the active ASR model entry.
func (c *Config) ASRModelEntry() ModelEntry {
	m, _ := c.ModelByID(c.Providers.ASRModel, c.Providers.ASRModels)
	return m
}

// RefineModelEntry returns the active refinement model entry.
func (c *Config) RefineModelEntry() ModelEntry {
	m, _ := c.ModelByID(c.Providers.RefineModel, c.Providers.RefineModels)
	return m
}

// CapFor resolves the maximum concurrent in-flight calls for a model.
// A declared ceiling governs; the run default applies only when the
// model declares none.
func CapFor(m ModelEntry, fallback int) int {
	if m.MaxConcurrency > 0 {
		return m.MaxConcurrency
	}
	if fallback <= 0 {
		return 1
	}
	return fallback
}

// MaxChunkSecondsFor resolves the maximum audio chunk duration for a model.
func MaxChunkSecondsFor(m ModelEntry, fallback int) int {
	if m.MaxChunkSeconds > 0 {
		return m.MaxChunkSeconds
	}
	if fallback <= 0 {
		return 600
	}
	return fallback
}
