package postgresql

// migrations returns the schema migrations keyed by version.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS workflows (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				definition JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS import_error_reports (
				id TEXT PRIMARY KEY,
				workflow_name TEXT NOT NULL,
				issues JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS artifacts (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				artifact_type TEXT NOT NULL,
				project_id INTEGER NOT NULL DEFAULT 0,
				state TEXT NOT NULL DEFAULT '',
				workflow_id TEXT NOT NULL DEFAULT '',
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS artifact_properties (
				artifact_id TEXT NOT NULL REFERENCES artifacts(id) ON DELETE CASCADE,
				property_type_id INTEGER NOT NULL,
				value TEXT NOT NULL,
				PRIMARY KEY (artifact_id, property_type_id)
			);

			CREATE INDEX IF NOT EXISTS idx_workflows_name ON workflows(name);
			CREATE INDEX IF NOT EXISTS idx_artifacts_state ON artifacts(state);
		`,
	}
}
