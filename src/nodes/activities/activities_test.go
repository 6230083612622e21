package activities

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
)

const scenarioDocument = `{"nodes":[{"id":"start","type":"Webhook"},{"id":"http1","type":"HTTP Request"}],
	"connections":{"start":{"main":[{"node":"http1","type":"main","index":0}]}}}`

type ActivitiesTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	env *testsuite.TestActivityEnvironment
}

func TestActivitiesTestSuite(t *testing.T) {
	suite.Run(t, new(ActivitiesTestSuite))
}

func (s *ActivitiesTestSuite) SetupTest() {
	s.env = s.NewTestActivityEnvironment()
	for _, name := range GetAllActivityNames() {
		info, _ := GetActivityInfo(name)
		s.env.RegisterActivityWithOptions(info.Function, activity.RegisterOptions{Name: name})
	}
}

func (s *ActivitiesTestSuite) run(name string, activityCtx ActivityContext) (ActivityResult, error) {
	val, err := s.env.ExecuteActivity(name, activityCtx)
	if err != nil {
		return ActivityResult{}, err
	}
	var result ActivityResult
	s.Require().NoError(val.Get(&result))
	return result, nil
}

func (s *ActivitiesTestSuite) requireErrorType(err error, errType string) {
	s.Require().Error(err)
	var appErr *temporal.ApplicationError
	s.Require().True(errors.As(err, &appErr), "expected an application error, got %v", err)
	s.Equal(errType, appErr.Type())
}

func (s *ActivitiesTestSuite) TestRegisteredActivities() {
	s.Equal([]string{
		AnalyzeWorkflowActivityName,
		ArrangeWorkflowActivityName,
		OptimizeWorkflowActivityName,
		ParseWorkflowActivityName,
	}, GetAllActivityNames())

	info, ok := GetActivityInfo(ParseWorkflowActivityName)
	s.Require().True(ok)
	s.IsType(ParseWorkflowSchema{}, info.Options.Schema)
	s.Contains(info.Options.RetryPolicy.NonRetryableErrorTypes, ErrTypeInvalidDocument)
	s.False(HasActivity("send_message"))
}

func (s *ActivitiesTestSuite) TestFullChain() {
	state := PipelineState{Document: json.RawMessage(scenarioDocument)}

	for _, name := range []string{
		ParseWorkflowActivityName,
		ArrangeWorkflowActivityName,
		AnalyzeWorkflowActivityName,
		OptimizeWorkflowActivityName,
	} {
		result, err := s.run(name, ActivityContext{WorkflowID: "wf-1", StepName: name, State: state})
		s.Require().NoError(err, name)
		s.NotEmpty(result.Metadata, name)
		state = result.State
	}

	s.Require().NotNil(state.Workflow)
	s.Len(state.Workflow.Nodes, 2)

	s.Require().NotNil(state.Layout)
	s.Equal(150.0, state.Layout.Nodes[0].X)
	s.Equal(400.0, state.Layout.Nodes[1].X)
	s.Len(state.Layout.Edges, 1)

	s.Require().NotNil(state.Analysis)
	s.Equal(2, state.Analysis.NodeCount)
	s.False(state.Analysis.HasErrorHandling)
	s.Len(state.Analysis.Issues, 4)

	s.Require().NotNil(state.Optimized)
	s.Len(state.Optimized.Nodes, 3)
	s.Equal(true, state.Optimized.Meta["optimized"])
}

func (s *ActivitiesTestSuite) TestParseRejectsInvalidDocument() {
	_, err := s.run(ParseWorkflowActivityName, ActivityContext{
		State: PipelineState{Document: json.RawMessage(`{"nodes":[{"type":"Set"}]}`)},
	})
	s.requireErrorType(err, ErrTypeInvalidDocument)
}

func (s *ActivitiesTestSuite) TestParseEnforcesMaxNodes() {
	_, err := s.run(ParseWorkflowActivityName, ActivityContext{
		Schema: map[string]interface{}{"max_nodes": 1},
		State:  PipelineState{Document: json.RawMessage(scenarioDocument)},
	})
	s.requireErrorType(err, ErrTypeInvalidDocument)
	s.Contains(err.Error(), "limit is 1")
}

func (s *ActivitiesTestSuite) TestParseRejectsBadSchema() {
	_, err := s.run(ParseWorkflowActivityName, ActivityContext{
		Schema: map[string]interface{}{"max_nodes": "lots"},
		State:  PipelineState{Document: json.RawMessage(scenarioDocument)},
	})
	s.requireErrorType(err, ErrTypeInvalidSchema)
}

func (s *ActivitiesTestSuite) TestStepsNeedParsedWorkflow() {
	for _, name := range []string{ArrangeWorkflowActivityName, AnalyzeWorkflowActivityName, OptimizeWorkflowActivityName} {
		_, err := s.run(name, ActivityContext{})
		s.requireErrorType(err, ErrTypeInvalidState)
	}
}
