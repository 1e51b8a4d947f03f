package memory

import (
	"context"
	"fmt"

	"github.com/kaziai/core/store"
	"github.com/kaziai/core/toolkit"
)

// RecallMemoryTool lets an agent search the current user's memory during a
// ReAct loop, grounded on original_source/src/tools/memory_tools.py's
// RecallMemoryTool. UserID is bound per-dispatch rather than mutated via a
// setter, since this core builds a fresh tool registry per request instead
// of reusing shared tool instances across users.
type RecallMemoryTool struct {
	Store  *Store
	UserID int64
}

type recallMemoryArgs struct {
	Query    string `json:"query" jsonschema:"required,description=Search term to find relevant memories"`
	Category string `json:"category,omitempty" jsonschema:"enum=fact,enum=preference,enum=goal,enum=outcome,description=Optional: filter by memory category"`
}

func (t *RecallMemoryTool) Info() toolkit.Info {
	return toolkit.Info{
		Name: "recall_memory",
		Description: "Search the user's memory for relevant past information. " +
			"Returns facts, preferences, goals, and outcomes from previous conversations. " +
			"Use this when you need context about the user's background, preferences, or past results.",
		Parameters: toolkit.SchemaFor(recallMemoryArgs{}),
	}
}

func (t *RecallMemoryTool) Execute(ctx context.Context, args map[string]interface{}) (toolkit.Result, error) {
	if t.UserID == 0 {
		return toolkit.Fail("No user context available"), nil
	}

	query, _ := args["query"].(string)
	category, _ := args["category"].(string)

	var records []Record
	var err error
	switch {
	case query != "":
		records, err = t.Store.Search(ctx, t.UserID, query, 10)
	case category != "":
		records, err = t.Store.Recall(ctx, t.UserID, Category(category), 10)
	default:
		records, err = t.Store.Recall(ctx, t.UserID, "", 10)
	}
	if err != nil {
		return toolkit.Fail(fmt.Sprintf("recall failed: %v", err)), nil
	}

	memories := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		memories = append(memories, map[string]interface{}{
			"content":    r.Content,
			"category":   r.Category,
			"created_at": r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	return toolkit.Ok(map[string]interface{}{"memories": memories, "count": len(memories)}), nil
}

// StoreMemoryTool lets an agent persist a new memory about the current user
// mid-execution, grounded on memory_tools.py's StoreMemoryTool.
type StoreMemoryTool struct {
	Store  *Store
	UserID int64
}

type storeMemoryArgs struct {
	Content  string `json:"content" jsonschema:"required,description=The fact or observation to remember"`
	Category string `json:"category" jsonschema:"required,enum=fact,enum=preference,enum=goal,enum=outcome,description=Category of the memory"`
}

func (t *StoreMemoryTool) Info() toolkit.Info {
	return toolkit.Info{
		Name: "store_memory",
		Description: "Store an important fact or observation about the user for future reference. " +
			"Use this when you discover something worth remembering — skills, preferences, " +
			"job search results, ATS scores, interview outcomes, etc.",
		Parameters: toolkit.SchemaFor(storeMemoryArgs{}),
	}
}

func (t *StoreMemoryTool) Execute(ctx context.Context, args map[string]interface{}) (toolkit.Result, error) {
	if t.UserID == 0 {
		return toolkit.Fail("No user context available"), nil
	}

	content, _ := args["content"].(string)
	if content == "" {
		return toolkit.Fail("Content is required"), nil
	}
	category, _ := args["category"].(string)
	if !ValidCategory(Category(category)) {
		category = string(CategoryFact)
	}

	id, err := t.Store.Remember(ctx, t.UserID, content, Category(category))
	if err != nil {
		return toolkit.Fail(fmt.Sprintf("store failed: %v", err)), nil
	}

	preview := content
	if len(preview) > 100 {
		preview = preview[:100]
	}

	return toolkit.Ok(map[string]interface{}{
		"memory_id": id,
		"message":   fmt.Sprintf("Stored %s: %s", category, preview),
	}), nil
}

// RecallPastWorkTool lets an agent review summaries of the current user's
// past agent runs, grounded on memory_tools.py's RecallTraceTool.
type RecallPastWorkTool struct {
	Traces store.TraceStore
	UserID int64
}

type recallPastWorkArgs struct {
	AgentName string `json:"agent_name,omitempty" jsonschema:"enum=scout,enum=match,enum=forge,enum=coach,description=Optional: filter by agent type"`
	Limit     int    `json:"limit,omitempty" jsonschema:"description=Number of past runs to retrieve (default 5, max 10)"`
}

func (t *RecallPastWorkTool) Info() toolkit.Info {
	return toolkit.Info{
		Name: "recall_past_work",
		Description: "Review summaries of past agent runs for this user. " +
			"Shows what agents did previously, what tools were used, and outcomes. " +
			"Useful for avoiding redundant work or building on past results.",
		Parameters: toolkit.SchemaFor(recallPastWorkArgs{}),
	}
}

func (t *RecallPastWorkTool) Execute(ctx context.Context, args map[string]interface{}) (toolkit.Result, error) {
	if t.UserID == 0 {
		return toolkit.Fail("No user context available"), nil
	}

	agentName, _ := args["agent_name"].(string)
	limit := 5
	if l, ok := args["limit"].(float64); ok && int(l) > 0 {
		limit = int(l)
	}
	if limit > 10 {
		limit = 10
	}

	traces, err := t.Traces.GetTraces(ctx, t.UserID, 20)
	if err != nil {
		return toolkit.Fail(fmt.Sprintf("lookup failed: %v", err)), nil
	}

	var filtered []store.TraceRecord
	for _, tr := range traces {
		if agentName != "" && tr.AgentName != agentName {
			continue
		}
		filtered = append(filtered, tr)
		if len(filtered) >= limit {
			break
		}
	}

	results := make([]map[string]interface{}, 0, len(filtered))
	for _, tr := range filtered {
		preview := tr.Output
		if len(preview) > 500 {
			preview = preview[:500]
		}
		results = append(results, map[string]interface{}{
			"agent":            tr.AgentName,
			"intent":           tr.Intent,
			"status":           tr.Status,
			"output_preview":   preview,
			"total_steps":      tr.StepCount,
			"total_tool_calls": tr.ToolCount,
			"started_at":       tr.StartedAt,
		})
	}

	return toolkit.Ok(map[string]interface{}{"traces": results, "count": len(results)}), nil
}
