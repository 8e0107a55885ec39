package sqlbase

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dukex/dealflow/pkg/persistence"
)

// Store implements persistence.Persistence on top of database/sql. Backends
// open the connection, run their migrations and wrap a Store.
type Store struct {
	conn

	deals         *DealRepository
	contacts      *ContactRepository
	pipelines     *PipelineRepository
	automations   *AutomationRepository
	tasks         *TaskRepository
	notifications *NotificationRepository
	users         *UserRepository
	rules         *AutomationRuleRepository
	firings       *FiringRepository
	cursors       *CursorRepository
}

// NewStore creates a Store over an open database.
func NewStore(db *sql.DB, dialect Dialect, logger *slog.Logger) *Store {
	c := conn{db: db, dialect: dialect, logger: logger}

	return &Store{
		conn:          c,
		deals:         &DealRepository{conn: c},
		contacts:      &ContactRepository{conn: c},
		pipelines:     &PipelineRepository{conn: c},
		automations:   &AutomationRepository{conn: c},
		tasks:         &TaskRepository{conn: c},
		notifications: &NotificationRepository{conn: c},
		users:         &UserRepository{conn: c},
		rules:         &AutomationRuleRepository{conn: c},
		firings:       &FiringRepository{conn: c},
		cursors:       &CursorRepository{conn: c},
	}
}

// DB exposes the underlying connection pool.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Deals() persistence.DealRepository                     { return s.deals }
func (s *Store) Contacts() persistence.ContactRepository               { return s.contacts }
func (s *Store) Pipelines() persistence.PipelineRepository             { return s.pipelines }
func (s *Store) Automations() persistence.AutomationRepository         { return s.automations }
func (s *Store) Tasks() persistence.TaskRepository                     { return s.tasks }
func (s *Store) Notifications() persistence.NotificationRepository     { return s.notifications }
func (s *Store) Users() persistence.UserRepository                     { return s.users }
func (s *Store) AutomationRules() persistence.AutomationRuleRepository { return s.rules }
func (s *Store) Firings() persistence.FiringRepository                 { return s.firings }
func (s *Store) Cursors() persistence.CursorRepository                 { return s.cursors }

// HealthCheck verifies the database connection is healthy.
func (s *Store) HealthCheck(ctx context.Context) error {
	err := s.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close(_ context.Context) error {
	if s.db != nil {
		err := s.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

var _ persistence.Persistence = (*Store)(nil)
