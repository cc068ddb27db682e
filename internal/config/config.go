package config

import "fmt"

type Config struct {
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Whisper     WhisperConfig     `yaml:"whisper"`
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	YtDlp       YtDlpConfig       `yaml:"ytdlp"`
	Providers   ProvidersConfig   `yaml:"providers"`
	Refine      RefineConfig      `yaml:"refine"`
	Run         RunConfig         `yaml:"run"`
	Jobs        []Job             `yaml:"jobs"`
}

type PathsConfig struct {
	Output       string `yaml:"output"`
	Intermediate string `yaml:"intermediate"`
	Temp         string `yaml:"temp"`
	Inbox        string `yaml:"inbox"` // watch mode input directory
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type PerformanceConfig struct {
	// ProcessWorkers bounds concurrent ffmpeg/whisper subprocesses.
	ProcessWorkers int `yaml:"process_workers"`
	// AsyncWorkers bounds concurrent network/API operations.
	AsyncWorkers int `yaml:"async_workers"`
}

type WhisperConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
	Language   string `yaml:"language"`
	Threads    int    `yaml:"threads"`
}

type FFmpegConfig struct {
	Binary string `yaml:"binary"`
}

type YtDlpConfig struct {
	Binary     string `yaml:"binary"`
	CookieFile string `yaml:"cookie_file"`
}

type ProvidersConfig struct {
	GeminiAPIKeys []string     `yaml:"gemini_api_keys"`
	OpenAIAPIKey  string       `yaml:"openai_api_key"`
	ASREndpoint   string       `yaml:"asr_endpoint"`
	ASRModel      string       `yaml:"asr_model"`
	RefineModel   string       `yaml:"refine_model"`
	ASRModels     []ModelEntry `yaml:"asr_models"`
	RefineModels  []ModelEntry `yaml:"refine_models"`
}

type RefineConfig struct {
	Styles              []Style `yaml:"styles"`
	Language            string  `yaml:"language"`
	ChunkSizeWords      int     `yaml:"chunk_size_words"`
	MetadataEnhancement bool    `yaml:"metadata_enhancement"`
	MetadataModel       string  `yaml:"metadata_model"`
	ExportDocx          bool    `yaml:"export_docx"`
}

type Style struct {
	Name   string `yaml:"name"`
	Prompt string `yaml:"prompt"`
}

type RunConfig struct {
	Resume               bool `yaml:"resume"`
	SkipExisting         bool `yaml:"skip_existing"`
	DisableTranscription bool `yaml:"disable_transcription"`
	SaveSourceMedia      bool `yaml:"save_source_media"`
	StartIndex           int  `yaml:"start_index"`
	EndIndex             int  `yaml:"end_index"`
	RecursiveDocuments   bool `yaml:"recursive_documents"`
}

// Job is one batch entry. Style, language and output subdirectory override
// the run defaults for every source expanded from this job's input.
type Job struct {
	ID           int      `yaml:"id"`
	Input        string   `yaml:"input"`
	Styles       []string `yaml:"styles"`
	Language     string   `yaml:"language"`
	OutputSubdir string   `yaml:"output_subdir"`
}

func (c *Config) Validate() error {
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}
	if c.Paths.Intermediate == "" {
		c.Paths.Intermediate = "intermediate_transcripts"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "temp_wisdomflow"
	}
	if c.Performance.ProcessWorkers <= 0 {
		c.Performance.ProcessWorkers = 4
	}
	if c.Performance.AsyncWorkers <= 0 {
		c.Performance.AsyncWorkers = 10
	}
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = "ffmpeg"
	}
	if c.YtDlp.Binary == "" {
		c.YtDlp.Binary = "yt-dlp"
	}
	if c.Whisper.Threads <= 0 {
		c.Whisper.Threads = 8
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "en"
	}
	if len(c.Providers.ASRModels) == 0 {
		c.Providers.ASRModels = defaultASRModels()
	}
	if len(c.Providers.RefineModels) == 0 {
		c.Providers.RefineModels = defaultRefineModels()
	}
	if c.Providers.ASRModel == "" {
		c.Providers.ASRModel = defaultModelID(c.Providers.ASRModels)
	}
	if c.Providers.RefineModel == "" {
		c.Providers.RefineModel = defaultModelID(c.Providers.RefineModels)
	}
	if c.Providers.ASREndpoint == "" {
		c.Providers.ASREndpoint = "https://api.openai.com/v1/audio/transcriptions"
	}
	if c.Refine.Language == "" {
		c.Refine.Language = "English"
	}
	if c.Refine.ChunkSizeWords <= 0 {
		c.Refine.ChunkSizeWords = 70000
	}
	if c.Refine.MetadataModel == "" {
		c.Refine.MetadataModel = "gemini-2.5-flash-lite"
	}
	if c.Run.StartIndex <= 0 {
		c.Run.StartIndex = 1
	}

	// Credential checks fail the run before any work is scheduled.
	asr, ok := c.ModelByID(c.Providers.ASRModel, c.Providers.ASRModels)
	if !ok {
		return fmt.Errorf("providers.asr_model %q not found in asr_models", c.Providers.ASRModel)
	}
	switch asr.Provider {
	case "whisper":
		if c.Whisper.BinaryPath == "" {
			return fmt.Errorf("whisper.binary_path is required for ASR model %q", asr.ID)
		}
		if c.Whisper.ModelPath == "" {
			return fmt.Errorf("whisper.model_path is required for ASR model %q", asr.ID)
		}
	default:
		if !c.Run.DisableTranscription && c.Providers.OpenAIAPIKey == "" {
			return fmt.Errorf("providers.openai_api_key is required for ASR model %q", asr.ID)
		}
	}

	refine, ok := c.ModelByID(c.Providers.RefineModel, c.Providers.RefineModels)
	if !ok {
		return fmt.Errorf("providers.refine_model %q not found in refine_models", c.Providers.RefineModel)
	}
	if refine.Provider == "gemini" && len(c.Providers.GeminiAPIKeys) == 0 {
		return fmt.Errorf("providers.gemini_api_keys is required for refine model %q", refine.ID)
	}

	seen := make(map[int]bool, len(c.Jobs))
	for _, job := range c.Jobs {
		// Zero is the "no job" sentinel on transcripts, so real jobs
		// must carry a positive id or their overrides would be lost.
		if job.ID < 1 {
			return fmt.Errorf("jobs require a positive id, got %d", job.ID)
		}
		if job.Input == "" {
			return fmt.Errorf("jobs[%d].input is required", job.ID)
		}
		if seen[job.ID] {
			return fmt.Errorf("duplicate job id %d", job.ID)
		}
		seen[job.ID] = true
	}

	return nil
}
