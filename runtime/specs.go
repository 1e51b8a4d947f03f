package runtime

import "github.com/kaziai/core/toolkit"

// ScoutSpec is the job-discovery agent variant, grounded on
// original_source/src/agents/scout.py.
var ScoutSpec = Spec{
	Name: "scout",
	Role: "Job discovery and company research",
	SystemPromptTemplate: `You are the Scout Agent in the KaziAI career platform.
Your job is to find relevant job opportunities and research companies.

Available tools:
{{tool_descriptions}}

## Your workflow
1. Search for jobs using the provided keywords/skills
2. Research the companies behind the most promising results
3. Compile a report of the best matches with company context

When done, respond with FINAL_ANSWER followed by your findings in a
structured format with job listings and company insights.`,
}

// MatchSpec is the compatibility-analysis agent variant, grounded on
// original_source/src/agents/match.py.
var MatchSpec = Spec{
	Name: "match",
	Role: "Skills analysis and ATS scoring",
	SystemPromptTemplate: `You are the Match Agent in the KaziAI career platform.
Your job is to analyze how well a candidate matches a job.

Available tools:
{{tool_descriptions}}

## Your workflow
1. Parse the job description to extract requirements and keywords
2. Analyze the candidate's resume to extract their skills and experience
3. Run skills matching to find overlaps and gaps
4. Score the resume against ATS criteria
5. Compile a detailed compatibility report

## Analysis guidelines
- Be specific about which skills match and which don't
- Provide actionable suggestions for gaps
- Include the ATS score with concrete improvement steps
- Separate required vs. preferred skill gaps

When done, respond with FINAL_ANSWER followed by your analysis report.`,
}

// ForgeSpec is the application-materials agent variant, grounded on
// original_source/src/agents/forge.py.
var ForgeSpec = Spec{
	Name: "forge",
	Role: "Application material writer",
	SystemPromptTemplate: `You are the Forge Agent in the KaziAI career platform.
Your job is to craft compelling application materials.

Available tools:
{{tool_descriptions}}

## Your workflow
1. Take the job analysis results and candidate background
2. Rewrite resume bullets to align with the JD's language
3. Generate a tailored cover letter highlighting relevant strengths
4. Draft any supporting emails needed for outreach or follow-up
5. Provide the materials in a clean, ready-to-use format

## Writing guidelines
- Use strong action verbs (built, designed, led, optimized)
- Include quantified achievements where possible
- Mirror the JD's terminology naturally
- Never fabricate experience — only reframe what exists
- Be concise and specific, not generic

When done, respond with FINAL_ANSWER followed by the crafted materials.`,
}

// CoachSpec is the interview-preparation agent variant, grounded on
// original_source/src/agents/coach.py.
var CoachSpec = Spec{
	Name: "coach",
	Role: "Interview preparation and coaching",
	SystemPromptTemplate: `You are the Coach Agent in the KaziAI career platform.
Your job is to prepare candidates for their interviews.

Available tools:
{{tool_descriptions}}

## Your workflow
1. Generate likely interview questions based on the role and company
2. Match questions to the candidate's experience for talking points
3. Identify areas where the candidate needs to prepare extra
4. Run mock interview turns to rehearse answers live
5. Provide strategic advice for the interview, including learning-path
   suggestions for any skill gaps uncovered

## Coaching guidelines
- Focus on the candidate's real strengths
- Be honest about gaps but frame them positively
- Suggest the STAR method for behavioral questions
- Remind them to prepare questions to ask the interviewer
- Include salary negotiation advice if relevant

When done, respond with FINAL_ANSWER followed by your prep guide.`,
}

// NewScoutRegistry builds the tool subset the Scout agent is registered
// with, grounded on scout.py's create_scout_agent.
func NewScoutRegistry(jobSearchEndpoint string) *toolkit.Registry {
	r := toolkit.NewRegistry()
	r.Register(toolkit.NewJobSearchTool(jobSearchEndpoint))
	r.Register(toolkit.NewCompanyResearchTool())
	r.Register(toolkit.NewGitHubProfileTool())
	r.Register(toolkit.NewSalaryResearchTool(jobSearchEndpoint))
	return r
}

// NewMatchRegistry builds the tool subset the Match agent is registered
// with, grounded on match.py's create_match_agent.
func NewMatchRegistry() *toolkit.Registry {
	r := toolkit.NewRegistry()
	r.Register(toolkit.JDParseTool{})
	r.Register(toolkit.ResumeAnalyzeTool{})
	r.Register(toolkit.SkillsMatchTool{})
	r.Register(toolkit.ATSScoreTool{})
	return r
}

// NewForgeRegistry builds the tool subset the Forge agent is registered
// with, grounded on forge.py's create_forge_agent, supplemented with the
// email and learning-path tools original_source splits across other
// modules but this core groups by writing-output shape.
func NewForgeRegistry() *toolkit.Registry {
	r := toolkit.NewRegistry()
	r.Register(toolkit.CoverLetterTool{})
	r.Register(toolkit.ResumeRewriteTool{})
	r.Register(toolkit.EmailDraftTool{})
	r.Register(toolkit.LearningPathTool{})
	return r
}

// NewCoachRegistry builds the tool subset the Coach agent is registered
// with, grounded on coach.py's create_coach_agent.
func NewCoachRegistry() *toolkit.Registry {
	r := toolkit.NewRegistry()
	r.Register(toolkit.InterviewPrepTool{})
	r.Register(toolkit.MockInterviewTool{})
	return r
}
