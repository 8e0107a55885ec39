package postgresql

func migrations() map[int][]string {
	return map[int][]string{
		1: {
			`CREATE TABLE users (
				id VARCHAR(64) PRIMARY KEY,
				organization_id VARCHAR(64) NOT NULL,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) NOT NULL,
				role VARCHAR(100) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			)`,
			`CREATE INDEX idx_users_organization_role ON users(organization_id, role)`,
			`CREATE TABLE contacts (
				id VARCHAR(64) PRIMARY KEY,
				organization_id VARCHAR(64) NOT NULL,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			)`,
			`CREATE TABLE pipelines (
				id VARCHAR(64) PRIMARY KEY,
				organization_id VARCHAR(64) NOT NULL,
				name VARCHAR(255) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			)`,
			`CREATE TABLE pipeline_stages (
				id VARCHAR(64) PRIMARY KEY,
				organization_id VARCHAR(64) NOT NULL,
				pipeline_id VARCHAR(64) NOT NULL REFERENCES pipelines(id) ON DELETE CASCADE,
				name VARCHAR(255) NOT NULL,
				display_order INT NOT NULL DEFAULT 0,
				color VARCHAR(32) NOT NULL DEFAULT '',
				probability INT NOT NULL DEFAULT 0,
				required_fields JSONB NOT NULL DEFAULT '[]',
				sub_statuses JSONB NOT NULL DEFAULT '[]',
				failure_signals JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			)`,
			`CREATE INDEX idx_pipeline_stages_pipeline ON pipeline_stages(pipeline_id, display_order)`,
		},
		2: {
			`CREATE TABLE deals (
				id VARCHAR(64) PRIMARY KEY,
				organization_id VARCHAR(64) NOT NULL,
				title VARCHAR(255) NOT NULL,
				value DOUBLE PRECISION NOT NULL DEFAULT 0,
				currency VARCHAR(3) NOT NULL,
				status VARCHAR(20) NOT NULL CHECK (status IN ('open', 'won', 'lost')),
				probability INT NOT NULL DEFAULT 0,
				owner_id VARCHAR(64),
				created_by_id VARCHAR(64) NOT NULL,
				contact_id VARCHAR(64),
				pipeline_id VARCHAR(64) NOT NULL REFERENCES pipelines(id),
				stage_id VARCHAR(64) NOT NULL REFERENCES pipeline_stages(id),
				stage_entered_at TIMESTAMP WITH TIME ZONE NOT NULL,
				stage_transition_id VARCHAR(64) NOT NULL,
				data JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			)`,
			`CREATE INDEX idx_deals_organization_status ON deals(organization_id, status)`,
			`CREATE INDEX idx_deals_stage ON deals(stage_id)`,
			`CREATE TABLE stage_transitions (
				id VARCHAR(64) PRIMARY KEY,
				organization_id VARCHAR(64) NOT NULL,
				deal_id VARCHAR(64) NOT NULL REFERENCES deals(id) ON DELETE CASCADE,
				from_stage_id VARCHAR(64),
				to_stage_id VARCHAR(64) NOT NULL,
				sequence INTEGER NOT NULL,
				entered_at TIMESTAMP WITH TIME ZONE NOT NULL,
				UNIQUE (deal_id, sequence)
			)`,
		},
		3: {
			`CREATE TABLE stage_automations (
				id VARCHAR(64) PRIMARY KEY,
				organization_id VARCHAR(64) NOT NULL,
				stage_id VARCHAR(64) NOT NULL REFERENCES pipeline_stages(id) ON DELETE CASCADE,
				name VARCHAR(255) NOT NULL DEFAULT '',
				trigger_type VARCHAR(20) NOT NULL CHECK (trigger_type IN ('on_enter', 'on_duration')),
				duration_minutes INT,
				actions JSONB NOT NULL DEFAULT '[]',
				active BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			)`,
			`CREATE INDEX idx_stage_automations_lookup ON stage_automations(stage_id, trigger_type, active)`,
			`CREATE TABLE automation_rules (
				id VARCHAR(64) PRIMARY KEY,
				organization_id VARCHAR(64) NOT NULL,
				name VARCHAR(255) NOT NULL,
				trigger_event VARCHAR(100) NOT NULL,
				actions JSONB NOT NULL DEFAULT '[]',
				active BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			)`,
			`CREATE TABLE automation_firings (
				automation_id VARCHAR(64) NOT NULL REFERENCES stage_automations(id) ON DELETE CASCADE,
				stage_transition_id VARCHAR(64) NOT NULL,
				deal_id VARCHAR(64) NOT NULL,
				fired_at TIMESTAMP WITH TIME ZONE NOT NULL,
				PRIMARY KEY (automation_id, stage_transition_id)
			)`,
			`CREATE TABLE assignment_cursors (
				organization_id VARCHAR(64) NOT NULL,
				role VARCHAR(100) NOT NULL,
				rotation BIGINT NOT NULL DEFAULT 0,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				PRIMARY KEY (organization_id, role)
			)`,
		},
		4: {
			`CREATE TABLE tasks (
				id VARCHAR(64) PRIMARY KEY,
				organization_id VARCHAR(64) NOT NULL,
				title VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				priority VARCHAR(20) NOT NULL CHECK (priority IN ('low', 'medium', 'high', 'urgent')),
				status VARCHAR(20) NOT NULL CHECK (status IN ('todo', 'in_progress', 'done')),
				due_date TIMESTAMP WITH TIME ZONE,
				created_by_id VARCHAR(64) NOT NULL,
				assigned_to_id VARCHAR(64) NOT NULL,
				deal_id VARCHAR(64),
				contact_id VARCHAR(64),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			)`,
			`CREATE INDEX idx_tasks_deal ON tasks(organization_id, deal_id)`,
			`CREATE TABLE notifications (
				id VARCHAR(64) PRIMARY KEY,
				organization_id VARCHAR(64) NOT NULL,
				user_id VARCHAR(64) NOT NULL,
				title VARCHAR(255) NOT NULL,
				message TEXT NOT NULL DEFAULT '',
				type VARCHAR(20) NOT NULL CHECK (type IN ('info', 'success', 'warning', 'error')),
				link VARCHAR(1024) NOT NULL DEFAULT '',
				is_read BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			)`,
			`CREATE INDEX idx_notifications_user ON notifications(organization_id, user_id)`,
		},
	}
}
