package toolkit

import "context"

// CoverLetterArgs is cover_letter_generate's argument shape.
type CoverLetterArgs struct {
	CandidateSummary string `json:"candidate_summary" jsonschema:"required,description=Short summary of the candidate's background"`
	Role             string `json:"role" jsonschema:"required,description=Target role title"`
	Company          string `json:"company" jsonschema:"required,description=Target company name"`
	JDText           string `json:"jd_text,omitempty" jsonschema:"description=Job description text, if available"`
}

// CoverLetterTool packages the structured inputs for a cover letter; the
// prose generation itself is the calling agent's LLM turn.
type CoverLetterTool struct{}

func (CoverLetterTool) Info() Info {
	return Info{Name: "cover_letter_generate", Description: "Package inputs for a tailored cover letter.", Parameters: SchemaFor(CoverLetterArgs{})}
}

func (CoverLetterTool) Execute(_ context.Context, args map[string]interface{}) (Result, error) {
	summary, _ := args["candidate_summary"].(string)
	role, _ := args["role"].(string)
	company, _ := args["company"].(string)
	if summary == "" || role == "" || company == "" {
		return Fail("candidate_summary, role, and company are required"), nil
	}
	jd, _ := args["jd_text"].(string)
	return Ok(map[string]interface{}{
		"candidate_summary": summary,
		"role":              role,
		"company":           company,
		"jd_skills":         extractSkills(jd),
	}), nil
}

// EmailDraftArgs is email_draft's argument shape.
type EmailDraftArgs struct {
	Purpose   string `json:"purpose" jsonschema:"required,description=Email purpose, e.g. follow_up, thank_you, networking"`
	Recipient string `json:"recipient,omitempty" jsonschema:"description=Recipient name or role"`
	Context   string `json:"context,omitempty" jsonschema:"description=Relevant background for the email"`
}

// EmailDraftTool packages an email-drafting request.
type EmailDraftTool struct{}

func (EmailDraftTool) Info() Info {
	return Info{Name: "email_draft", Description: "Package inputs for drafting a career-related email.", Parameters: SchemaFor(EmailDraftArgs{})}
}

func (EmailDraftTool) Execute(_ context.Context, args map[string]interface{}) (Result, error) {
	purpose, _ := args["purpose"].(string)
	if purpose == "" {
		return Fail("purpose is required"), nil
	}
	recipient, _ := args["recipient"].(string)
	ctxText, _ := args["context"].(string)
	return Ok(map[string]interface{}{"purpose": purpose, "recipient": recipient, "context": ctxText}), nil
}

// LearningPathArgs is learning_path_generate's argument shape.
type LearningPathArgs struct {
	CurrentSkills []string `json:"current_skills,omitempty" jsonschema:"description=Skills the candidate already has"`
	TargetRole    string   `json:"target_role" jsonschema:"required,description=Role the candidate wants to reach"`
}

// LearningPathTool packages a skill-gap request that feeds the learning-path
// generation the calling agent performs.
type LearningPathTool struct{}

func (LearningPathTool) Info() Info {
	return Info{Name: "learning_path_generate", Description: "Compute skill gaps toward a target role to ground a learning path.", Parameters: SchemaFor(LearningPathArgs{})}
}

func (LearningPathTool) Execute(_ context.Context, args map[string]interface{}) (Result, error) {
	target, _ := args["target_role"].(string)
	if target == "" {
		return Fail("target_role is required"), nil
	}
	current := toSet(toStringSlice(args["current_skills"]))
	var gaps []string
	for _, s := range extractSkills(target) {
		if !current[s] {
			gaps = append(gaps, s)
		}
	}
	return Ok(map[string]interface{}{"target_role": target, "skill_gaps": gaps}), nil
}
