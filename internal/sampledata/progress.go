package sampledata

// Load run statuses. A run moves INITIATED -> IN_PROGRESS (once per entry)
// and ends with exactly one COMPLETED or ERROR snapshot.
const (
	StatusInitiated  = "INITIATED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusError      = "ERROR"
)

// Progress is a point-in-time snapshot of a load.
type Progress struct {
	TotalFiles      int     `json:"totalFiles"`
	ProcessedFiles  int     `json:"processedFiles"`
	CurrentFile     string  `json:"currentFile"`
	ResourcesLoaded int     `json:"resourcesLoaded"`
	PatientsLoaded  int     `json:"patientsLoaded"`
	PercentComplete float64 `json:"percentComplete"`
	Status          string  `json:"status"`
	Message         string  `json:"message"`
}

// Terminal reports whether this snapshot ends the run.
func (p Progress) Terminal() bool {
	return p.Status == StatusCompleted || p.Status == StatusError
}

// ProgressReporter receives snapshots as a load advances. Delivery is
// best-effort: implementations must not block, and a failing reporter never
// aborts the load.
type ProgressReporter interface {
	OnProgress(Progress)
}

// ReporterFunc adapts a function to ProgressReporter.
type ReporterFunc func(Progress)

func (f ReporterFunc) OnProgress(p Progress) { f(p) }
