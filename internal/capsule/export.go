package capsule

// ExportVersion identifies the bulk transfer document format.
const ExportVersion = "armina-classroom/v1"

// ExportDocument is the single JSON document holding a whole library.
type ExportDocument struct {
	Version  string    `json:"version"`
	Capsules []Capsule `json:"capsules"`
}

// NewExportDocument wraps capsules in a current-version export document.
func NewExportDocument(capsules []Capsule) *ExportDocument {
	if capsules == nil {
		capsules = []Capsule{}
	}
	return &ExportDocument{
		Version:  ExportVersion,
		Capsules: capsules,
	}
}
