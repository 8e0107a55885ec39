package sqlite

func migrations() map[int][]string {
	return map[int][]string{
		1: {
			`CREATE TABLE users (
				id TEXT PRIMARY KEY,
				organization_id TEXT NOT NULL,
				name TEXT NOT NULL,
				email TEXT NOT NULL,
				role TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
			`CREATE INDEX idx_users_organization_role ON users(organization_id, role)`,
			`CREATE TABLE contacts (
				id TEXT PRIMARY KEY,
				organization_id TEXT NOT NULL,
				name TEXT NOT NULL,
				email TEXT NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
			`CREATE TABLE pipelines (
				id TEXT PRIMARY KEY,
				organization_id TEXT NOT NULL,
				name TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
			`CREATE TABLE pipeline_stages (
				id TEXT PRIMARY KEY,
				organization_id TEXT NOT NULL,
				pipeline_id TEXT NOT NULL REFERENCES pipelines(id) ON DELETE CASCADE,
				name TEXT NOT NULL,
				display_order INTEGER NOT NULL DEFAULT 0,
				color TEXT NOT NULL DEFAULT '',
				probability INTEGER NOT NULL DEFAULT 0,
				required_fields TEXT NOT NULL DEFAULT '[]',
				sub_statuses TEXT NOT NULL DEFAULT '[]',
				failure_signals TEXT NOT NULL DEFAULT '[]',
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
			`CREATE INDEX idx_pipeline_stages_pipeline ON pipeline_stages(pipeline_id, display_order)`,
		},
		2: {
			`CREATE TABLE deals (
				id TEXT PRIMARY KEY,
				organization_id TEXT NOT NULL,
				title TEXT NOT NULL,
				value REAL NOT NULL DEFAULT 0,
				currency TEXT NOT NULL,
				status TEXT NOT NULL CHECK (status IN ('open', 'won', 'lost')),
				probability INTEGER NOT NULL DEFAULT 0,
				owner_id TEXT,
				created_by_id TEXT NOT NULL,
				contact_id TEXT,
				pipeline_id TEXT NOT NULL REFERENCES pipelines(id),
				stage_id TEXT NOT NULL REFERENCES pipeline_stages(id),
				stage_entered_at DATETIME NOT NULL,
				stage_transition_id TEXT NOT NULL,
				data TEXT NOT NULL DEFAULT '{}',
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
			`CREATE INDEX idx_deals_organization_status ON deals(organization_id, status)`,
			`CREATE INDEX idx_deals_stage ON deals(stage_id)`,
			`CREATE TABLE stage_transitions (
				id TEXT PRIMARY KEY,
				organization_id TEXT NOT NULL,
				deal_id TEXT NOT NULL REFERENCES deals(id) ON DELETE CASCADE,
				from_stage_id TEXT,
				to_stage_id TEXT NOT NULL,
				sequence INTEGER NOT NULL,
				entered_at DATETIME NOT NULL,
				UNIQUE (deal_id, sequence)
			)`,
		},
		3: {
			`CREATE TABLE stage_automations (
				id TEXT PRIMARY KEY,
				organization_id TEXT NOT NULL,
				stage_id TEXT NOT NULL REFERENCES pipeline_stages(id) ON DELETE CASCADE,
				name TEXT NOT NULL DEFAULT '',
				trigger_type TEXT NOT NULL CHECK (trigger_type IN ('on_enter', 'on_duration')),
				duration_minutes INTEGER,
				actions TEXT NOT NULL DEFAULT '[]',
				active BOOLEAN NOT NULL DEFAULT TRUE,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
			`CREATE INDEX idx_stage_automations_lookup ON stage_automations(stage_id, trigger_type, active)`,
			`CREATE TABLE automation_rules (
				id TEXT PRIMARY KEY,
				organization_id TEXT NOT NULL,
				name TEXT NOT NULL,
				trigger_event TEXT NOT NULL,
				actions TEXT NOT NULL DEFAULT '[]',
				active BOOLEAN NOT NULL DEFAULT TRUE,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
			`CREATE TABLE automation_firings (
				automation_id TEXT NOT NULL REFERENCES stage_automations(id) ON DELETE CASCADE,
				stage_transition_id TEXT NOT NULL,
				deal_id TEXT NOT NULL,
				fired_at DATETIME NOT NULL,
				PRIMARY KEY (automation_id, stage_transition_id)
			)`,
			`CREATE TABLE assignment_cursors (
				organization_id TEXT NOT NULL,
				role TEXT NOT NULL,
				rotation INTEGER NOT NULL DEFAULT 0,
				updated_at DATETIME NOT NULL,
				PRIMARY KEY (organization_id, role)
			)`,
		},
		4: {
			`CREATE TABLE tasks (
				id TEXT PRIMARY KEY,
				organization_id TEXT NOT NULL,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				priority TEXT NOT NULL CHECK (priority IN ('low', 'medium', 'high', 'urgent')),
				status TEXT NOT NULL CHECK (status IN ('todo', 'in_progress', 'done')),
				due_date DATETIME,
				created_by_id TEXT NOT NULL,
				assigned_to_id TEXT NOT NULL,
				deal_id TEXT,
				contact_id TEXT,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
			`CREATE INDEX idx_tasks_deal ON tasks(organization_id, deal_id)`,
			`CREATE TABLE notifications (
				id TEXT PRIMARY KEY,
				organization_id TEXT NOT NULL,
				user_id TEXT NOT NULL,
				title TEXT NOT NULL,
				message TEXT NOT NULL DEFAULT '',
				type TEXT NOT NULL CHECK (type IN ('info', 'success', 'warning', 'error')),
				link TEXT NOT NULL DEFAULT '',
				is_read BOOLEAN NOT NULL DEFAULT FALSE,
				created_at DATETIME NOT NULL
			)`,
			`CREATE INDEX idx_notifications_user ON notifications(organization_id, user_id)`,
		},
	}
}
