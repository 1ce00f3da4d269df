package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ovokpus/PostAssist/pkg/models"
)

// RoleConfig describes one agent role: its team, system prompt, and the
// tool names it may call.
type RoleConfig struct {
	Name         string   `yaml:"name"`
	Team         string   `yaml:"team"`
	SystemPrompt string   `yaml:"system_prompt"`
	Tools        []string `yaml:"tools"`
}

// SupervisorConfig describes a routing role. Members are the node names
// the supervisor may select; the prompt receives them for context.
type SupervisorConfig struct {
	Name         string   `yaml:"name"`
	SystemPrompt string   `yaml:"system_prompt"`
	Members      []string `yaml:"members"`
}

// RoleRegistry holds the agent and supervisor role definitions.
type RoleRegistry struct {
	roles       map[string]*RoleConfig
	supervisors map[string]*SupervisorConfig
}

// autonomySuffix is appended to every agent prompt so agents act without
// asking for clarification.
const autonomySuffix = "\nWork autonomously according to your specialty, using the tools available to you." +
	" Do not ask for clarification." +
	" Your other team members (and other teams) will collaborate with you with their own specialties." +
	" You are chosen for a reason!"

// Supervisor registry keys.
const (
	SupervisorContent      = "content_supervisor"
	SupervisorVerification = "verification_supervisor"
	SupervisorMeta         = "meta_supervisor"
)

// BuiltinRoles returns the built-in role registry: the four worker agents
// and the three supervisors.
func BuiltinRoles() *RoleRegistry {
	roles := map[string]*RoleConfig{
		models.AgentPaperResearcher: {
			Name:  models.AgentPaperResearcher,
			Team:  models.TeamContent,
			Tools: []string{"research_paper", "web_search"},
			SystemPrompt: "You are an expert AI researcher who specializes in understanding and summarizing " +
				"machine learning papers. Your job is to research papers thoroughly and extract " +
				"key insights, methodologies, and results. Focus on accuracy and clarity. " +
				"Always provide comprehensive information about the paper including its main " +
				"contributions, methodology, results, and potential impact." + autonomySuffix,
		},
		models.AgentLinkedInCreator: {
			Name:  models.AgentLinkedInCreator,
			Team:  models.TeamContent,
			Tools: []string{"create_post"},
			SystemPrompt: "You are a social media expert who specializes in creating engaging LinkedIn posts " +
				"about technical topics. You know how to make complex AI research accessible and " +
				"engaging for a professional audience. Create posts that drive engagement while " +
				"maintaining technical accuracy. Always include relevant hashtags and ask " +
				"engaging questions to encourage comments and discussions." + autonomySuffix,
		},
		models.AgentTechVerifier: {
			Name:  models.AgentTechVerifier,
			Team:  models.TeamVerification,
			Tools: []string{"verify_technical", "research_paper"},
			SystemPrompt: "You are a technical reviewer and fact-checker specializing in machine learning research. " +
				"Your job is to verify that LinkedIn posts accurately represent the research they discuss. " +
				"Check for technical accuracy, proper methodology description, and correct representation " +
				"of results. Flag any oversimplified or incorrect claims. Ensure proper attribution to " +
				"authors and avoid overstated language. Be thorough in your analysis and provide specific " +
				"recommendations for improvement." + autonomySuffix,
		},
		models.AgentStyleChecker: {
			Name:  models.AgentStyleChecker,
			Team:  models.TeamVerification,
			Tools: []string{"check_style"},
			SystemPrompt: "You are a LinkedIn content strategist who ensures posts follow best practices for " +
				"professional social media. Check for appropriate tone, formatting, hashtag usage, " +
				"engagement elements, and overall LinkedIn style compliance. Suggest improvements " +
				"to maximize professional impact and engagement. Focus on readability, professional " +
				"presentation, and LinkedIn-specific optimization techniques." + autonomySuffix,
		},
	}

	supervisors := map[string]*SupervisorConfig{
		SupervisorContent: {
			Name:    SupervisorContent,
			Members: models.TeamMembers(models.TeamContent),
			SystemPrompt: "You are a supervisor managing a content creation team with the following workers: %s. " +
				"Your job is to coordinate research and post creation. First have the researcher gather information " +
				"about the paper, then have the creator make a LinkedIn post based on that research. " +
				"Ensure the research is thorough before moving to content creation. " +
				"When both research and post creation are complete, respond with FINISH.",
		},
		SupervisorVerification: {
			Name:    SupervisorVerification,
			Members: models.TeamMembers(models.TeamVerification),
			SystemPrompt: "You are a supervisor managing a verification team with the following workers: %s. " +
				"Your job is to ensure quality control for LinkedIn posts about ML research. " +
				"Have the technical verifier check accuracy first, then have the style checker ensure " +
				"LinkedIn compliance. Both verifications must be completed before finishing. " +
				"When both technical and style verifications are complete, respond with FINISH.",
		},
		SupervisorMeta: {
			Name:    SupervisorMeta,
			Members: models.TeamNames(),
			SystemPrompt: "You are a meta-supervisor managing LinkedIn post generation. You coordinate between " +
				"the following teams: %s. First direct the Content team to research a paper " +
				"and create a LinkedIn post. Then send the completed post to the Verification team to check " +
				"technical accuracy and LinkedIn style compliance. " +
				"The workflow should be: Content team -> Verification team -> FINISH. " +
				"Only finish when both teams have completed their work successfully.",
		},
	}

	return &RoleRegistry{roles: roles, supervisors: supervisors}
}

// Get retrieves an agent role by name.
func (r *RoleRegistry) Get(name string) (*RoleConfig, error) {
	role, ok := r.roles[name]
	if !ok {
		return nil, fmt.Errorf("role not found: %s", name)
	}
	return role, nil
}

// GetSupervisor retrieves a supervisor role by registry key.
func (r *RoleRegistry) GetSupervisor(name string) (*SupervisorConfig, error) {
	sup, ok := r.supervisors[name]
	if !ok {
		return nil, fmt.Errorf("supervisor not found: %s", name)
	}
	return sup, nil
}

// Names returns the agent role names, sorted.
func (r *RoleRegistry) Names() []string {
	names := make([]string, 0, len(r.roles))
	for name := range r.roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of agent roles.
func (r *RoleRegistry) Len() int {
	return len(r.roles)
}

// roleOverrideFile is the on-disk shape of a roles.yaml override file.
// Only prompt and tool overrides are honored; team membership is fixed.
type roleOverrideFile struct {
	Roles map[string]struct {
		SystemPrompt string   `yaml:"system_prompt"`
		Tools        []string `yaml:"tools"`
	} `yaml:"roles"`
}

// LoadOverrides merges prompt and tool overrides from a YAML file into the
// registry. Unknown role names are rejected.
func (r *RoleRegistry) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var file roleOverrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	for name, override := range file.Roles {
		role, ok := r.roles[name]
		if !ok {
			return fmt.Errorf("unknown role in %s: %s", path, name)
		}
		if override.SystemPrompt != "" {
			role.SystemPrompt = override.SystemPrompt + autonomySuffix
		}
		if len(override.Tools) > 0 {
			role.Tools = override.Tools
		}
	}
	return nil
}
