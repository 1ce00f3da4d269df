package models

// Team and agent names. The team membership of each agent is fixed; the
// graph builders and the progress tracker both rely on this mapping.
const (
	TeamContent      = "Content team"
	TeamVerification = "Verification team"

	AgentPaperResearcher = "PaperResearcher"
	AgentLinkedInCreator = "LinkedInCreator"
	AgentTechVerifier    = "TechVerifier"
	AgentStyleChecker    = "StyleChecker"
)

var teamMembers = map[string][]string{
	TeamContent:      {AgentPaperResearcher, AgentLinkedInCreator},
	TeamVerification: {AgentTechVerifier, AgentStyleChecker},
}

var agentTeams = map[string]string{
	AgentPaperResearcher: TeamContent,
	AgentLinkedInCreator: TeamContent,
	AgentTechVerifier:    TeamVerification,
	AgentStyleChecker:    TeamVerification,
}

// TeamNames returns all team names in meta-graph execution order.
func TeamNames() []string {
	return []string{TeamContent, TeamVerification}
}

// TeamMembers returns the agents belonging to a team, in execution order.
func TeamMembers(team string) []string {
	members := teamMembers[team]
	out := make([]string, len(members))
	copy(out, members)
	return out
}

// TeamOf returns the team an agent belongs to, or "" for unknown agents.
func TeamOf(agent string) string {
	return agentTeams[agent]
}
