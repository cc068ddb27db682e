package config

import (
	"os"
	"testing"
)

func validConfig() Config {
	return Config{
		Paths: PathsConfig{Output: "output"},
		Whisper: WhisperConfig{
			BinaryPath: "./whisper",
			ModelPath:  "models/ggml-base.bin",
		},
		Providers: ProvidersConfig{
			GeminiAPIKeys: []string{"key-1"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing output path",
			mutate:  func(c *Config) { c.Paths.Output = "" },
			wantErr: true,
		},
		{
			name:    "whisper model without model path",
			mutate:  func(c *Config) { c.Whisper.ModelPath = "" },
			wantErr: true,
		},
		{
			name: "remote asr without api key",
			mutate: func(c *Config) {
				c.Providers.ASRModel = "openai/whisper-1"
			},
			wantErr: true,
		},
		{
			name: "remote asr without key but transcription disabled",
			mutate: func(c *Config) {
				c.Providers.ASRModel = "openai/whisper-1"
				c.Run.DisableTranscription = true
			},
		},
		{
			name:    "gemini refine without keys",
			mutate:  func(c *Config) { c.Providers.GeminiAPIKeys = nil },
			wantErr: true,
		},
		{
			name: "unknown asr model",
			mutate: func(c *Config) {
				c.Providers.ASRModel = "nope/nothing"
			},
			wantErr: true,
		},
		{
			name: "duplicate job ids",
			mutate: func(c *Config) {
				c.Jobs = []Job{{ID: 1, Input: "a"}, {ID: 1, Input: "b"}}
			},
			wantErr: true,
		},
		{
			name: "job without input",
			mutate: func(c *Config) {
				c.Jobs = []Job{{ID: 1}}
			},
			wantErr: true,
		},
		{
			name: "job without id",
			mutate: func(c *Config) {
				c.Jobs = []Job{{Input: "a", Styles: []string{"Summary"}}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFillsDefaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Performance.ProcessWorkers != 4 {
		t.Errorf("ProcessWorkers = %d, want 4", cfg.Performance.ProcessWorkers)
	}
	if cfg.Performance.AsyncWorkers != 10 {
		t.Errorf("AsyncWorkers = %d, want 10", cfg.Performance.AsyncWorkers)
	}
	if cfg.Providers.ASRModel != "whisper/local" {
		t.Errorf("ASRModel = %q, want whisper/local", cfg.Providers.ASRModel)
	}
	if cfg.Providers.RefineModel != "gemini/gemini-2.5-flash" {
		t.Errorf("RefineModel = %q, want gemini/gemini-2.5-flash", cfg.Providers.RefineModel)
	}
	if cfg.Refine.ChunkSizeWords != 70000 {
		t.Errorf("ChunkSizeWords = %d, want 70000", cfg.Refine.ChunkSizeWords)
	}
	if cfg.Run.StartIndex != 1 {
		t.Errorf("StartIndex = %d, want 1", cfg.Run.StartIndex)
	}
}

func TestCapFor(t *testing.T) {
	tests := []struct {
		name     string
		entry    ModelEntry
		fallback int
		want     int
	}{
		{"declared ceiling below default", ModelEntry{MaxConcurrency: 3}, 10, 3},
		{"declared ceiling above default governs", ModelEntry{MaxConcurrency: 20}, 10, 20},
		{"no ceiling uses default", ModelEntry{}, 10, 10},
		{"serializing ceiling", ModelEntry{MaxConcurrency: 1}, 10, 1},
		{"zero fallback floors at one", ModelEntry{}, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CapFor(tt.entry, tt.fallback); got != tt.want {
				t.Errorf("CapFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMaxChunkSecondsFor(t *testing.T) {
	if got := MaxChunkSecondsFor(ModelEntry{MaxChunkSeconds: 30}, 600); got != 30 {
		t.Errorf("MaxChunkSecondsFor() = %d, want 30", got)
	}
	if got := MaxChunkSecondsFor(ModelEntry{}, 600); got != 600 {
		t.Errorf("MaxChunkSecondsFor() = %d, want 600", got)
	}
}

func TestLoad(t *testing.T) {
	tmpfile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}

	content := `
paths:
  output: out
  intermediate: transcripts

whisper:
  binary_path: "./whisper"
  model_path: "models/ggml-base.bin"
  language: "en"

providers:
  gemini_api_keys: ["k1", "k2"]
  asr_models:
    - id: "zai/glm-asr"
      provider: "openai"
      model_name: "glm-asr"
      max_concurrency: 5
      max_chunk_seconds: 30
  asr_model: "zai/glm-asr"
  openai_api_key: "sk-test"

refine:
  styles:
    - name: "Summary"
      prompt: "Summarize in [Language]:"
  language: "English"
`

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	entry := cfg.ASRModelEntry()
	if entry.ID != "zai/glm-asr" {
		t.Errorf("ASRModelEntry().ID = %q, want zai/glm-asr", entry.ID)
	}
	if got := CapFor(entry, cfg.Performance.AsyncWorkers); got != 5 {
		t.Errorf("CapFor(asr) = %d, want 5", got)
	}
	if got := MaxChunkSecondsFor(entry, 600); got != 30 {
		t.Errorf("MaxChunkSecondsFor(asr) = %d, want 30", got)
	}
	if len(cfg.Refine.Styles) != 1 || cfg.Refine.Styles[0].Name != "Summary" {
		t.Errorf("Styles = %+v, want one Summary style", cfg.Refine.Styles)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("does/not/exist.yaml"); err == nil {
		t.Error("Load() expected error for missing file")
	}
}
