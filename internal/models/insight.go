package models

// ProjectInsight is advisory output from the AI boundary. It is display-only
// state and is never written into the entity store.
type ProjectInsight struct {
	Summary           string   `json:"summary"`
	ProductivityScore float64  `json:"productivityScore"`
	Recommendations   []string `json:"recommendations"`
}
