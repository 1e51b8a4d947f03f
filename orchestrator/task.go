package orchestrator

import (
	"fmt"
	"strings"
)

// buildAgentTask constructs the task string passed to agentName, per
// orchestrator.py's _build_agent_task.
func (o *Orchestrator) buildAgentTask(agentName, userMessage string, extractedContext map[string]interface{}, resumeText string, profile map[string]interface{}) string {
	company := stringField(extractedContext, "company", "the company")
	role := stringField(extractedContext, "role", "")
	if role == "" {
		if profile != nil {
			role = stringField(profile, "target_role", "")
		}
	}
	if role == "" {
		role = "the role"
	}
	skills := stringSliceField(extractedContext, "skills")

	parts := []string{fmt.Sprintf("User request: %s", userMessage)}

	if profile != nil {
		var profileParts []string
		if v := stringField(profile, "target_role", ""); v != "" {
			profileParts = append(profileParts, fmt.Sprintf("Target role: %s", v))
		}
		if v := stringField(profile, "experience_level", ""); v != "" {
			profileParts = append(profileParts, fmt.Sprintf("Experience: %s", v))
		}
		if skillList := stringSliceField(profile, "skills"); len(skillList) > 0 {
			if len(skillList) > 15 {
				skillList = skillList[:15]
			}
			profileParts = append(profileParts, fmt.Sprintf("Skills: %s", strings.Join(skillList, ", ")))
		}
		if v := stringField(profile, "location", ""); v != "" {
			profileParts = append(profileParts, fmt.Sprintf("Location: %s", v))
		}
		if len(profileParts) > 0 {
			parts = append(parts, "User profile:\n"+strings.Join(profileParts, "\n"))
		}
	}

	switch agentName {
	case "scout":
		keywords := skills
		if len(keywords) == 0 {
			keywords = []string{role}
		}
		at := ""
		if company != "the company" {
			at = fmt.Sprintf(" at %s", company)
		}
		parts = append(parts, fmt.Sprintf(
			"Search for jobs matching: %s. Focus on %s roles%s. Find the top results and research the most promising companies.",
			strings.Join(keywords, ", "), role, at,
		))

	case "match":
		parts = append(parts, fmt.Sprintf("Analyze compatibility for %s at %s.", role, company))
		if resumeText != "" {
			parts = append(parts, "Resume:\n"+truncate(resumeText, 3000))
		}
		if hasJD, _ := extractedContext["has_jd"].(bool); hasJD {
			parts = append(parts, "The job description was provided in the user's message above.")
		}
		parts = append(parts, "Parse the job requirements, analyze the resume, match skills, and score ATS compatibility. Produce a detailed analysis.")

	case "forge":
		parts = append(parts, fmt.Sprintf(
			"Write application materials for %s at %s. Rewrite resume bullets to match the role and generate a tailored cover letter.",
			role, company,
		))
		if resumeText != "" {
			parts = append(parts, "Resume:\n"+truncate(resumeText, 2000))
		}

	case "coach":
		parts = append(parts, fmt.Sprintf(
			"Prepare interview questions for %s at %s. Generate likely questions with talking points and strategic advice.",
			role, company,
		))
	}

	return strings.Join(parts, "\n\n")
}

func stringField(m map[string]interface{}, key, fallback string) string {
	if m == nil {
		return fallback
	}
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func stringSliceField(m map[string]interface{}, key string) []string {
	if m == nil {
		return nil
	}
	v, ok := m[key]
	if !ok {
		return nil
	}
	switch vv := v.(type) {
	case []string:
		return vv
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
