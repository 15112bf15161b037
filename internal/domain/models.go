package domain

// GeneratedDocument describes a rendered contract file on disk. The ID is the
// only reference the cleanup scheduler keeps; the file itself lives at Filepath
// until the scheduler deletes it.
type GeneratedDocument struct {
	ID        string `json:"id"`
	Filepath  string `json:"filepath"`
	Filename  string `json:"filename"`
	CreatedAt int64  `json:"createdAt"`
}

// ContractMetadata is the client-facing part of a pipeline result.
type ContractMetadata struct {
	FileID       string `json:"fileId"`
	Filename     string `json:"filename"`
	DownloadURL  string `json:"downloadUrl"`
	ContractType string `json:"contractType"`
	PreviewText  string `json:"previewText"`
}

// AssistantResult is what the pipeline returns for every call: the narrative
// answer is always present, Contract only when a document was generated.
type AssistantResult struct {
	Answer   string            `json:"answer"`
	Contract *ContractMetadata `json:"generatedContract,omitempty"`
}

// UserContext carries the caller identity and plan into authorization.
type UserContext struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Plan   string `json:"plan"`
}

const (
	PlanTrialUnregistered = "trial_unregistered"
	PlanTrialRegistered   = "trial_registered"
	PlanIndividual        = "individual"
	PlanProfessional      = "professional"
	PlanTeam              = "team"
	PlanPremium           = "premium"
)
