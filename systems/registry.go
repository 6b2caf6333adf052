package systems

// Stage IDs, in pipeline order. These double as perf phase names.
const (
	StageSample        = "sample"
	StageExternalInput = "external_input"
	StageFeedback      = "feedback"
	StageInhibition    = "inhibition"
	StagePlasticity    = "plasticity"
	StageLearning      = "learning"
	StageModulation    = "modulation"
	StageProbability   = "probability"
	StageHomeostasis   = "homeostasis"
	StageRefractory    = "refractory"
	StageNoise         = "noise"
	StageMutation      = "mutation"
)

// SystemInfo describes a simulation stage for display.
type SystemInfo struct {
	ID          string `json:"id"`          // Internal identifier (used for perf tracking)
	Name        string `json:"name"`        // Display name
	Description string `json:"description"` // What this stage does
	Category    string `json:"category"`    // Grouping (e.g., "activity", "synaptic")
}

// SystemRegistry holds metadata about all stages.
// This centralizes stage naming so the CLI and perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all known stages.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all known stages in execution order.
// Update this when adding new stages.
func (r *SystemRegistry) registerDefaults() {
	r.Register(SystemInfo{ID: StageSample, Name: "Sample", Description: "Draws each neuron's firing state from its probability", Category: "activity"})

	r.Register(SystemInfo{ID: StageExternalInput, Name: "External Input", Description: "Forces a random subset of neurons active", Category: "activity"})
	r.Register(SystemInfo{ID: StageFeedback, Name: "Feedback", Description: "Active neurons raise the probability of their excitatory targets", Category: "activity"})
	r.Register(SystemInfo{ID: StageInhibition, Name: "Inhibition", Description: "Active neurons lower the probability of their inhibitory targets", Category: "activity"})

	r.Register(SystemInfo{ID: StagePlasticity, Name: "Plasticity", Description: "Strengthens co-active links, weakens one-sided ones", Category: "synaptic"})
	r.Register(SystemInfo{ID: StageLearning, Name: "Learning", Description: "Hebbian reinforcement from accumulated co-activation", Category: "synaptic"})

	r.Register(SystemInfo{ID: StageModulation, Name: "Modulation", Description: "Drifts the gain applied to probability updates", Category: "regulation"})
	r.Register(SystemInfo{ID: StageProbability, Name: "Probability", Description: "Adjusts probabilities of neurons whose drive crossed the threshold", Category: "regulation"})
	r.Register(SystemInfo{ID: StageHomeostasis, Name: "Homeostasis", Description: "Pulls probabilities back toward the baseline", Category: "regulation"})
	r.Register(SystemInfo{ID: StageRefractory, Name: "Refractory", Description: "Silences neurons that just fired", Category: "regulation"})

	r.Register(SystemInfo{ID: StageNoise, Name: "Noise", Description: "Jitters every probability", Category: "stochastic"})
	r.Register(SystemInfo{ID: StageMutation, Name: "Mutation", Description: "Random walk on every connection strength", Category: "stochastic"})
}

// Register adds a stage to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// Get returns stage info by ID.
func (r *SystemRegistry) Get(id string) (SystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// All returns all registered stages.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// ByCategory returns stages filtered by category.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var result []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// Categories returns all unique categories.
func (r *SystemRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, info := range r.systems {
		if !seen[info.Category] {
			seen[info.Category] = true
			cats = append(cats, info.Category)
		}
	}
	return cats
}

// IDs returns all stage IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
