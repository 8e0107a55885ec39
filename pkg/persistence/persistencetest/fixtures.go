// Package persistencetest holds fixtures and a conformance suite shared by the
// persistence backends and by packages that test against a real store.
package persistencetest

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/dukex/dealflow/pkg/persistence/sqlite"
	"github.com/stretchr/testify/require"
)

// NewSQLite returns a migrated SQLite store in a temporary directory.
func NewSQLite(t *testing.T) persistence.Persistence {
	t.Helper()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlite.NewPersistence(ctx, logger, filepath.Join(t.TempDir(), "dealflow.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = store.Close(ctx)
	})

	return store
}

// Fixture is a seeded organization with one pipeline of three stages.
type Fixture struct {
	OrganizationID string
	Pipeline       *models.Pipeline
	Lead           *models.PipelineStage
	Qualified      *models.PipelineStage
	Proposal       *models.PipelineStage
	Creator        *models.User
	Owner          *models.User
	Contact        *models.Contact
}

// Seed creates a Fixture in organizationID.
func Seed(t *testing.T, store persistence.Persistence, organizationID string) *Fixture {
	t.Helper()

	ctx := context.Background()

	pipeline := &models.Pipeline{
		OrganizationID: organizationID,
		Name:           "Sales",
		Stages: []models.PipelineStage{
			{Name: "Lead", DisplayOrder: 0, Probability: 10},
			{Name: "Qualified", DisplayOrder: 1, Probability: 40},
			{Name: "Proposal", DisplayOrder: 2, Probability: 70, RequiredFields: []string{"value"}},
		},
	}
	require.NoError(t, store.Pipelines().CreatePipeline(ctx, pipeline))

	creator := &models.User{OrganizationID: organizationID, Name: "Carla", Email: "carla@example.com", Role: "manager"}
	require.NoError(t, store.Users().Create(ctx, creator))

	owner := &models.User{OrganizationID: organizationID, Name: "Otto", Email: "otto@example.com", Role: "account_executive"}
	require.NoError(t, store.Users().Create(ctx, owner))

	contact := &models.Contact{OrganizationID: organizationID, Name: "Connie", Email: "connie@example.com"}
	require.NoError(t, store.Contacts().Create(ctx, contact))

	return &Fixture{
		OrganizationID: organizationID,
		Pipeline:       pipeline,
		Lead:           &pipeline.Stages[0],
		Qualified:      &pipeline.Stages[1],
		Proposal:       &pipeline.Stages[2],
		Creator:        creator,
		Owner:          owner,
		Contact:        contact,
	}
}

// DealOption customizes a deal built by NewDeal.
type DealOption func(*models.Deal)

// WithOwner assigns the deal to ownerID.
func WithOwner(ownerID string) DealOption {
	return func(d *models.Deal) { d.OwnerID = &ownerID }
}

// WithoutOwner leaves the deal unassigned.
func WithoutOwner() DealOption {
	return func(d *models.Deal) { d.OwnerID = nil }
}

// EnteredAt backdates the deal's entry into its stage.
func EnteredAt(at time.Time) DealOption {
	return func(d *models.Deal) { d.StageEnteredAt = at }
}

// InStage places the deal in stageID.
func InStage(stageID string) DealOption {
	return func(d *models.Deal) { d.StageID = stageID }
}

// WithData sets the deal's data blob.
func WithData(data map[string]any) DealOption {
	return func(d *models.Deal) { d.Data = data }
}

// NewDeal creates an open deal in the fixture's lead stage, owned by the
// fixture owner and linked to the fixture contact.
func (f *Fixture) NewDeal(t *testing.T, store persistence.Persistence, opts ...DealOption) *models.Deal {
	t.Helper()

	ownerID := f.Owner.ID
	contactID := f.Contact.ID

	deal := &models.Deal{
		OrganizationID: f.OrganizationID,
		Title:          "Acme renewal",
		Value:          12000,
		Currency:       "USD",
		Status:         models.DealStatusOpen,
		Probability:    10,
		OwnerID:        &ownerID,
		CreatedByID:    f.Creator.ID,
		ContactID:      &contactID,
		PipelineID:     f.Pipeline.ID,
		StageID:        f.Lead.ID,
	}

	for _, opt := range opts {
		opt(deal)
	}

	require.NoError(t, store.Deals().Create(context.Background(), deal))

	return deal
}

// NewAutomation stores an active automation on stageID with the given actions JSON.
func (f *Fixture) NewAutomation(
	t *testing.T,
	store persistence.Persistence,
	stageID string,
	trigger models.TriggerType,
	durationMinutes *int,
	actions string,
) *models.StageAutomation {
	t.Helper()

	automation := &models.StageAutomation{
		OrganizationID:  f.OrganizationID,
		StageID:         stageID,
		Name:            string(trigger) + " automation",
		TriggerType:     trigger,
		DurationMinutes: durationMinutes,
		Actions:         []byte(actions),
		Active:          true,
	}
	require.NoError(t, store.Automations().Create(context.Background(), automation))

	return automation
}

// Minutes returns a pointer to n, for DurationMinutes.
func Minutes(n int) *int {
	return &n
}
