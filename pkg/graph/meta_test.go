package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovokpus/PostAssist/pkg/agent"
	"github.com/ovokpus/PostAssist/pkg/apperr"
	"github.com/ovokpus/PostAssist/pkg/config"
	"github.com/ovokpus/PostAssist/pkg/llm"
	"github.com/ovokpus/PostAssist/pkg/models"
)

func verificationSupervisorConfig() *config.SupervisorConfig {
	return &config.SupervisorConfig{
		Name:         config.SupervisorVerification,
		SystemPrompt: "You manage these workers: %s.",
		Members:      models.TeamMembers(models.TeamVerification),
	}
}

func metaSupervisorConfig() *config.SupervisorConfig {
	return &config.SupervisorConfig{
		Name:         config.SupervisorMeta,
		SystemPrompt: "You coordinate these teams: %s.",
		Members:      models.TeamNames(),
	}
}

func verificationRoles() []agent.Role {
	return []agent.Role{
		{Name: models.AgentTechVerifier, SystemPrompt: "verify"},
		{Name: models.AgentStyleChecker, SystemPrompt: "check"},
	}
}

func TestMetaGraphFullFlow(t *testing.T) {
	contentSup := NewSupervisor(contentSupervisorConfig(), &scriptedClient{responses: []*llm.Response{
		routeTo(models.AgentPaperResearcher),
		routeTo(models.AgentLinkedInCreator),
		routeTo("FINISH"),
	}}, 0, nil, nil)
	verifSup := NewSupervisor(verificationSupervisorConfig(), &scriptedClient{responses: []*llm.Response{
		routeTo(models.AgentTechVerifier),
		routeTo(models.AgentStyleChecker),
		routeTo("FINISH"),
	}}, 0, nil, nil)
	metaSup := NewSupervisor(metaSupervisorConfig(), &scriptedClient{responses: []*llm.Response{
		routeTo(models.TeamContent),
		routeTo(models.TeamVerification),
		routeTo("FINISH"),
	}}, 0, nil, nil)

	agentClient := &scriptedClient{responses: []*llm.Response{
		{Content: "findings"},
		{Content: "draft post"},
		{Content: "Score: 0.95/1.0"},
		{Content: "STYLE SCORE: 0.90/1.0"},
	}}
	runtime := agent.NewRuntime(agentClient, 0, 8, nil)

	content := NewTeam(models.TeamContent, contentSup, contentRoles(), runtime, 25, nil)
	verification := NewTeam(models.TeamVerification, verifSup, verificationRoles(), runtime, 25, nil)
	meta := NewMetaGraph(metaSup, []*Team{content, verification}, 50, nil)

	recorder := newEventRecorder()
	log, err := meta.Run(context.Background(),
		[]models.Message{models.HumanMessage("generate a post")}, recorder)
	require.NoError(t, err)

	require.Len(t, log, 5)
	assert.Equal(t, models.AgentPaperResearcher, log[1].Name)
	assert.Equal(t, models.AgentLinkedInCreator, log[2].Name)
	assert.Equal(t, models.AgentTechVerifier, log[3].Name)
	assert.Equal(t, models.AgentStyleChecker, log[4].Name)

	// Team node events bracket their member events.
	assert.Contains(t, recorder.enters, models.TeamContent)
	assert.Contains(t, recorder.enters, models.TeamVerification)
	assert.Equal(t, "findings", recorder.deltas[StateResearchFindings])
	assert.Equal(t, "STYLE SCORE: 0.90/1.0", recorder.deltas[StateStyleReport])
}

func TestMetaGraphLoopBackWithinCap(t *testing.T) {
	// The meta supervisor sends work back to the content team once before
	// finishing; this is allowed as long as the cap holds.
	contentSup := NewSupervisor(contentSupervisorConfig(),
		&scriptedClient{responses: []*llm.Response{routeTo("FINISH")}}, 0, nil, nil)
	metaSup := NewSupervisor(metaSupervisorConfig(), &scriptedClient{responses: []*llm.Response{
		routeTo(models.TeamContent),
		routeTo(models.TeamContent),
		routeTo("FINISH"),
	}}, 0, nil, nil)

	runtime := agent.NewRuntime(&scriptedClient{responses: []*llm.Response{{Content: "x"}}}, 0, 8, nil)
	content := NewTeam(models.TeamContent, contentSup, contentRoles(), runtime, 25, nil)
	meta := NewMetaGraph(metaSup, []*Team{content}, 50, nil)

	recorder := newEventRecorder()
	_, err := meta.Run(context.Background(), nil, recorder)
	require.NoError(t, err)

	visits := 0
	for _, node := range recorder.enters {
		if node == models.TeamContent {
			visits++
		}
	}
	assert.Equal(t, 2, visits)
}

func TestMetaGraphRecursionCap(t *testing.T) {
	const limit = 6
	contentSup := NewSupervisor(contentSupervisorConfig(),
		&scriptedClient{responses: []*llm.Response{routeTo("FINISH")}}, 0, nil, nil)
	metaSup := NewSupervisor(metaSupervisorConfig(),
		&scriptedClient{responses: []*llm.Response{routeTo(models.TeamContent)}}, 0, nil, nil)

	runtime := agent.NewRuntime(&scriptedClient{responses: []*llm.Response{{Content: "x"}}}, 0, 8, nil)
	content := NewTeam(models.TeamContent, contentSup, contentRoles(), runtime, 25, nil)
	meta := NewMetaGraph(metaSup, []*Team{content}, limit, nil)

	_, err := meta.Run(context.Background(), nil, nil)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindRecursionExceeded))
}

func TestMetaGraphCancelledMidFlight(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	metaSup := NewSupervisor(metaSupervisorConfig(), cancelAfterFirstCall(cancel), 0, nil, nil)
	contentSup := NewSupervisor(contentSupervisorConfig(),
		&scriptedClient{responses: []*llm.Response{routeTo("FINISH")}}, 0, nil, nil)

	runtime := agent.NewRuntime(&scriptedClient{responses: []*llm.Response{{Content: "x"}}}, 0, 8, nil)
	content := NewTeam(models.TeamContent, contentSup, contentRoles(), runtime, 25, nil)
	meta := NewMetaGraph(metaSup, []*Team{content}, 50, nil)

	_, err := meta.Run(ctx, nil, nil)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindCancelled))
}

// cancelAfterFirstCall routes to the content team once, cancelling the
// context on the way out so the next transition observes it.
func cancelAfterFirstCall(cancel context.CancelFunc) llm.ChatClient {
	return completeFunc(func(_ context.Context, _ llm.Request) (*llm.Response, error) {
		cancel()
		return routeTo(models.TeamContent), nil
	})
}

type completeFunc func(ctx context.Context, req llm.Request) (*llm.Response, error)

func (f completeFunc) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return f(ctx, req)
}
