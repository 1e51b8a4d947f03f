package sqlstore

const schema = `
CREATE TABLE IF NOT EXISTS traces (
	id TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL,
	conversation_id INTEGER,
	agent_name TEXT NOT NULL,
	intent TEXT NOT NULL,
	task TEXT NOT NULL,
	status TEXT NOT NULL,
	output TEXT NOT NULL DEFAULT '',
	step_count INTEGER NOT NULL DEFAULT 0,
	tool_count INTEGER NOT NULL DEFAULT 0,
	feedback TEXT,
	started_at INTEGER NOT NULL,
	completed_at INTEGER
);

CREATE TABLE IF NOT EXISTS trace_steps (
	trace_id TEXT NOT NULL,
	step_number INTEGER NOT NULL,
	thought TEXT NOT NULL DEFAULT '',
	tool_name TEXT NOT NULL DEFAULT '',
	tool_args TEXT NOT NULL DEFAULT '{}',
	tool_result TEXT NOT NULL DEFAULT '{}',
	observation TEXT NOT NULL DEFAULT '',
	success INTEGER NOT NULL DEFAULT 1,
	PRIMARY KEY (trace_id, step_number)
);

CREATE TABLE IF NOT EXISTS goals (
	id TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	origin TEXT NOT NULL,
	trigger_type TEXT
);

CREATE TABLE IF NOT EXISTS goal_steps (
	id TEXT PRIMARY KEY,
	goal_id TEXT NOT NULL,
	step_number INTEGER NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	agent_name TEXT NOT NULL,
	status TEXT NOT NULL,
	output TEXT NOT NULL DEFAULT '',
	trace_id TEXT
);

CREATE TABLE IF NOT EXISTS negotiation_sessions (
	id TEXT PRIMARY KEY,
	conversation_id INTEGER,
	topic TEXT NOT NULL,
	agents TEXT NOT NULL,
	consensus_reached INTEGER,
	final_position TEXT
);

CREATE TABLE IF NOT EXISTS negotiation_rounds (
	session_id TEXT NOT NULL,
	round INTEGER NOT NULL,
	agent_name TEXT NOT NULL,
	response_type TEXT NOT NULL,
	position TEXT NOT NULL DEFAULT '',
	evidence TEXT NOT NULL DEFAULT '',
	confidence REAL NOT NULL DEFAULT 0
);
`
