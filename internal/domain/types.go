package domain

// SourceKind classifies how a content source is acquired. It is assigned
// once during input expansion and never changes afterwards.
type SourceKind string

const (
	// SourceStreamURL is a streaming media page (video platform URL).
	// Captions are tried first, audio transcription is the fallback.
	SourceStreamURL SourceKind = "stream_url"
	// SourceLocalMedia is a local video or audio file.
	SourceLocalMedia SourceKind = "local_media"
	// SourceFeedEpisode is one episode from a podcast RSS feed.
	SourceFeedEpisode SourceKind = "feed_episode"
	// SourceDocument is an extractable text document (txt, md, html page).
	SourceDocument SourceKind = "document"
)

// Source is one acquisition task unit.
type Source struct {
	Path     string
	Kind     SourceKind
	Title    string
	AudioURL string // feed episodes: direct enclosure URL
	JobID    int    // batch mode grouping key, 0 for single runs
	Meta     Metadata
}

// Status values shared by acquisition and refinement results.
const (
	StatusSuccess   = "success"
	StatusFailure   = "failure"
	StatusSkipped   = "skipped"
	StatusCancelled = "cancelled"
)

// AcquireResult is produced exactly once per Source.
type AcquireResult struct {
	Status         string
	Title          string
	TranscriptFile string
	TranscriptText string
	Meta           Metadata
	Err            string
	JobID          int
}

// RefineTask is one (transcript, style) refinement task unit.
type RefineTask struct {
	TranscriptFile string
	StyleName      string
	StylePrompt    string
	OutputFile     string
	Title          string
	JobID          int
	Language       string // per-job override; empty means run default
}

// ID returns the stable identity used to key refinement results.
func (t RefineTask) ID() string {
	return t.Title + "_" + t.StyleName
}

// RefineResult is produced exactly once per RefineTask.
type RefineResult struct {
	Status     string
	TaskID     string
	OutputFile string
	Title      string
	StyleName  string
	Err        string
}

// Metadata is the factual sidecar persisted next to each raw transcript.
// Description and Tags may later be filled by LLM enhancement when absent.
type Metadata struct {
	Title       string   `json:"title"`
	SourceKind  string   `json:"source_kind"`
	SourceURL   string   `json:"source_url,omitempty"`
	Author      string   `json:"author,omitempty"`
	PublishedAt string   `json:"published_at,omitempty"`
	FetchedAt   string   `json:"fetched_at,omitempty"`
	Language    string   `json:"language,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Duration    string   `json:"duration,omitempty"`
}

// Severity classifies status notifications sent to the run's caller.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)
