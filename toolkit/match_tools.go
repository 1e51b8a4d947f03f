package toolkit

import (
	"context"
	"strings"
)

// SkillsMatchArgs is skills_match's argument shape.
type SkillsMatchArgs struct {
	CandidateSkills []string `json:"candidate_skills" jsonschema:"required,description=Skills the candidate has"`
	RequiredSkills  []string `json:"required_skills" jsonschema:"required,description=Skills the role requires"`
}

// SkillsMatchTool scores skill overlap between a candidate and a role.
type SkillsMatchTool struct{}

func (SkillsMatchTool) Info() Info {
	return Info{Name: "skills_match", Description: "Compute overlap between candidate skills and role requirements.", Parameters: SchemaFor(SkillsMatchArgs{})}
}

func (SkillsMatchTool) Execute(_ context.Context, args map[string]interface{}) (Result, error) {
	candidate := toStringSlice(args["candidate_skills"])
	required := toStringSlice(args["required_skills"])
	if len(required) == 0 {
		return Fail("required_skills is required"), nil
	}

	have := map[string]bool{}
	for _, s := range candidate {
		have[strings.ToLower(s)] = true
	}

	var matched, missing []string
	for _, s := range required {
		if have[strings.ToLower(s)] {
			matched = append(matched, s)
		} else {
			missing = append(missing, s)
		}
	}

	score := 0.0
	if len(required) > 0 {
		score = float64(len(matched)) / float64(len(required))
	}

	return Ok(map[string]interface{}{
		"matched_skills": matched,
		"missing_skills": missing,
		"match_score":    score,
	}), nil
}

// ATSScoreArgs is ats_score's argument shape.
type ATSScoreArgs struct {
	ResumeText string `json:"resume_text" jsonschema:"required,description=Resume plain text"`
	JDText     string `json:"jd_text" jsonschema:"required,description=Job description plain text"`
}

// ATSScoreTool estimates an applicant-tracking-system keyword match score by
// comparing extracted skill keywords between resume and job description.
// This is a deliberately simple keyword-overlap heuristic; a production ATS
// simulator is out of this core's scope (spec.md §1 lists ats_score by
// shape only).
type ATSScoreTool struct{}

func (ATSScoreTool) Info() Info {
	return Info{Name: "ats_score", Description: "Estimate ATS keyword match score between a resume and a job description.", Parameters: SchemaFor(ATSScoreArgs{})}
}

func (ATSScoreTool) Execute(_ context.Context, args map[string]interface{}) (Result, error) {
	resumeText, _ := args["resume_text"].(string)
	jdText, _ := args["jd_text"].(string)
	if resumeText == "" || jdText == "" {
		return Fail("resume_text and jd_text are required"), nil
	}

	resumeSkills := toSet(extractSkills(resumeText))
	jdSkills := extractSkills(jdText)
	if len(jdSkills) == 0 {
		return Ok(map[string]interface{}{"score": 100, "matched": []string{}}), nil
	}

	var matched []string
	for _, s := range jdSkills {
		if resumeSkills[s] {
			matched = append(matched, s)
		}
	}
	score := int(float64(len(matched)) / float64(len(jdSkills)) * 100)

	return Ok(map[string]interface{}{"score": score, "matched": matched, "required": jdSkills}), nil
}

func toStringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		if direct, ok := v.([]string); ok {
			return direct
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[strings.ToLower(s)] = true
	}
	return set
}
