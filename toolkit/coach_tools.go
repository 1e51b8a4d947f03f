package toolkit

import "context"

// InterviewPrepArgs is interview_prep's argument shape.
type InterviewPrepArgs struct {
	Role    string   `json:"role" jsonschema:"required,description=Target role"`
	Company string   `json:"company,omitempty" jsonschema:"description=Target company"`
	Focus   []string `json:"focus_areas,omitempty" jsonschema:"description=Topics to emphasize, e.g. system design"`
}

// InterviewPrepTool packages an interview-prep request; the actual question
// bank / guidance generation happens in the calling agent's LLM turn — this
// tool normalizes and echoes back the structured request so it is traceable.
type InterviewPrepTool struct{}

func (InterviewPrepTool) Info() Info {
	return Info{Name: "interview_prep", Description: "Prepare an interview-prep brief for a role and company.", Parameters: SchemaFor(InterviewPrepArgs{})}
}

func (InterviewPrepTool) Execute(_ context.Context, args map[string]interface{}) (Result, error) {
	role, _ := args["role"].(string)
	if role == "" {
		return Fail("role is required"), nil
	}
	company, _ := args["company"].(string)
	focus := toStringSlice(args["focus_areas"])
	return Ok(map[string]interface{}{"role": role, "company": company, "focus_areas": focus}), nil
}

// MockInterviewArgs is mock_interview's argument shape.
type MockInterviewArgs struct {
	Role           string `json:"role" jsonschema:"required,description=Target role"`
	Question       string `json:"question" jsonschema:"required,description=Interview question to pose"`
	CandidateReply string `json:"candidate_reply,omitempty" jsonschema:"description=Candidate's answer, if this is feedback on a reply"`
}

// MockInterviewTool packages one turn of a mock-interview exchange.
type MockInterviewTool struct{}

func (MockInterviewTool) Info() Info {
	return Info{Name: "mock_interview", Description: "Run one turn of a mock interview: pose a question or evaluate a reply.", Parameters: SchemaFor(MockInterviewArgs{})}
}

func (MockInterviewTool) Execute(_ context.Context, args map[string]interface{}) (Result, error) {
	role, _ := args["role"].(string)
	question, _ := args["question"].(string)
	if role == "" || question == "" {
		return Fail("role and question are required"), nil
	}
	reply, _ := args["candidate_reply"].(string)
	return Ok(map[string]interface{}{"role": role, "question": question, "candidate_reply": reply}), nil
}
