//go:build integration

package activity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"civreg/internal/activity"
	"civreg/internal/platform/database"
	id "civreg/pkg/domain"
	"civreg/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *activity.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T(), database.Schema)
	s.store = activity.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	ctx := context.Background()
	_ = s.postgres.DB.Close()
	_ = s.postgres.Container.Terminate(ctx)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background(), "activity_log"))
}

func (s *PostgresStoreSuite) entry(action string, age time.Duration) activity.Entry {
	return activity.Entry{
		ID:        id.NewActivityID(),
		Action:    action,
		ModelType: "resident",
		ModelID:   id.NewResidentID().String(),
		CreatedAt: time.Now().UTC().Add(-age).Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestAppendAndListNewestFirst() {
	ctx := context.Background()

	older := s.entry(activity.ActionResidentCreated, time.Hour)
	newer := s.entry(activity.ActionResidentUpdated, time.Minute)
	s.Require().NoError(s.store.Append(ctx, older))
	s.Require().NoError(s.store.Append(ctx, newer))

	entries, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(newer.ID, entries[0].ID)
	s.Equal(older.ID, entries[1].ID)
}

func (s *PostgresStoreSuite) TestActorRoundTrip() {
	ctx := context.Background()

	actor := id.NewUserID()
	withActor := s.entry(activity.ActionVerificationDenied, 0)
	withActor.ActorID = &actor
	system := s.entry(activity.ActionResidentDeleted, time.Second)

	s.Require().NoError(s.store.Append(ctx, withActor))
	s.Require().NoError(s.store.Append(ctx, system))

	entries, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Require().NotNil(entries[0].ActorID)
	s.Equal(actor, *entries[0].ActorID)
	s.Nil(entries[1].ActorID)
}

func (s *PostgresStoreSuite) TestPruneRemovesOnlyAgedEntries() {
	ctx := context.Background()

	aged := s.entry(activity.ActionProjectCreated, 48*time.Hour)
	fresh := s.entry(activity.ActionProjectPublished, time.Minute)
	s.Require().NoError(s.store.Append(ctx, aged))
	s.Require().NoError(s.store.Append(ctx, fresh))

	removed, err := s.store.Prune(ctx, time.Now().UTC().Add(-24*time.Hour))
	s.Require().NoError(err)
	s.Equal(int64(1), removed)

	entries, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(fresh.ID, entries[0].ID)
}
