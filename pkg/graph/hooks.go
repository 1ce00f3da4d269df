package graph

import "github.com/ovokpus/PostAssist/pkg/models"

// State keys published through Hooks as members complete their work.
const (
	StateResearchFindings = "research_findings"
	StateDraftPost        = "draft_post"
	StateTechnicalReport  = "technical_report"
	StateStyleReport      = "style_report"
)

// memberStateKeys maps each member to the state key its output populates.
var memberStateKeys = map[string]string{
	models.AgentPaperResearcher: StateResearchFindings,
	models.AgentLinkedInCreator: StateDraftPost,
	models.AgentTechVerifier:    StateTechnicalReport,
	models.AgentStyleChecker:    StateStyleReport,
}

// Hooks observes graph execution. Implementations translate node and state
// events into progress updates; they must not block for long.
type Hooks interface {
	// OnNodeEnter fires before a node executes. For member nodes the node
	// name is the member name; team nodes use the team name.
	OnNodeEnter(node string)
	// OnNodeExit fires after a node executes, successfully or not.
	OnNodeExit(node string)
	// OnStateDelta fires when a member's output populates a state key.
	OnStateDelta(key, value string)
}

// NopHooks discards all events.
type NopHooks struct{}

func (NopHooks) OnNodeEnter(string)      {}
func (NopHooks) OnNodeExit(string)       {}
func (NopHooks) OnStateDelta(_, _ string) {}
