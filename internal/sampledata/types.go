package sampledata

// Request identifies the target of a sample data load.
type Request struct {
	ConnectionName string `json:"connectionName" binding:"required"`
	BucketName     string `json:"bucketName" binding:"required"`
	SampleType     string `json:"sampleType"`
}

// Result is the final outcome of a load, a stats scan or an availability
// check.
type Result struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	ResourcesLoaded int    `json:"resourcesLoaded"`
	PatientsLoaded  int    `json:"patientsLoaded"`
	BucketName      string `json:"bucketName,omitempty"`
	ConnectionName  string `json:"connectionName,omitempty"`
}
