package models

import "github.com/google/uuid"

const (
	ContentTypeTheory       = "theory"
	ContentTypeEquations    = "equations"
	ContentTypeApplications = "applications"
	ContentTypeSimulation   = "simulation"
	ContentTypeGame         = "game"
)

const (
	DifficultyBasic        = "basic"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

type Module struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ContentType     string    `json:"content_type"`
	DifficultyLevel string    `json:"difficulty_level"`
	OrderIndex      int       `json:"order_index"`
	IsActive        bool      `json:"is_active"`
}

// IsValidContentType reports whether s belongs to the closed content type enum.
func IsValidContentType(s string) bool {
	switch s {
	case ContentTypeTheory, ContentTypeEquations, ContentTypeApplications,
		ContentTypeSimulation, ContentTypeGame:
		return true
	}
	return false
}

type ModuleStatsSummary struct {
	TotalModules        int `json:"total_modules"`
	BasicModules        int `json:"basic_modules"`
	IntermediateModules int `json:"intermediate_modules"`
	AdvancedModules     int `json:"advanced_modules"`
	TheoryModules       int `json:"theory_modules"`
	EquationsModules    int `json:"equations_modules"`
	ApplicationsModules int `json:"applications_modules"`
	SimulationModules   int `json:"simulation_modules"`
	GameModules         int `json:"game_modules"`
}
