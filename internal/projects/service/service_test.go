package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"civreg/internal/activity"
	"civreg/internal/analytics"
	"civreg/internal/projects/models"
	"civreg/internal/projects/store"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
)

var testNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu      sync.Mutex
	entries []activity.Entry
}

func (p *recordingPublisher) Emit(_ context.Context, entry activity.Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, entry)
	return nil
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeCounters struct {
	mu      sync.Mutex
	tallies map[id.ProjectID]models.Tally
	fail    bool
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{tallies: make(map[id.ProjectID]models.Tally)}
}

func (c *fakeCounters) Adjust(_ context.Context, projectID id.ProjectID, kind, previous models.ReactionKind) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("counters unavailable")
	}
	t := c.tallies[projectID]
	switch kind {
	case models.ReactionLike:
		t.Like++
	case models.ReactionDislike:
		t.Dislike++
	}
	switch previous {
	case models.ReactionLike:
		t.Like--
	case models.ReactionDislike:
		t.Dislike--
	}
	c.tallies[projectID] = t
	return nil
}

func (c *fakeCounters) Tally(_ context.Context, projectID id.ProjectID) (models.Tally, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return models.Tally{}, errors.New("counters unavailable")
	}
	return c.tallies[projectID], nil
}

func (c *fakeCounters) TallyAll(_ context.Context, projectIDs []id.ProjectID) (map[id.ProjectID]models.Tally, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return nil, errors.New("counters unavailable")
	}
	out := make(map[id.ProjectID]models.Tally, len(projectIDs))
	for _, pid := range projectIDs {
		out[pid] = c.tallies[pid]
	}
	return out, nil
}

type ServiceSuite struct {
	suite.Suite
	store     *store.InMemory
	counters  *fakeCounters
	publisher *recordingPublisher
	service   *Service
	actor     id.UserID
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.counters = newFakeCounters()
	s.publisher = &recordingPublisher{}
	s.actor = id.NewUserID()
	s.service = New(s.store,
		WithReactionCounters(s.counters),
		WithActivityPublisher(s.publisher),
		WithClock(func() time.Time { return testNow }),
	)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) create(title string) *models.Project {
	p, err := s.service.Create(context.Background(), s.actor, CreateInput{Title: title})
	s.Require().NoError(err)
	return p
}

func (s *ServiceSuite) TestCreate_RejectsBlankTitle() {
	_, err := s.service.Create(context.Background(), s.actor, CreateInput{Title: "  "})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestCreate_EmitsActivity() {
	s.create("Street Lighting")
	s.Equal([]string{activity.ActionProjectCreated}, s.publisher.actions())
}

func (s *ServiceSuite) TestGet_UnknownProject() {
	_, err := s.service.Get(context.Background(), id.NewProjectID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestList_TabFacets() {
	ctx := context.Background()
	posted := s.create("Posted Only")
	_, err := s.service.Publish(ctx, s.actor, posted.ID)
	s.Require().NoError(err)

	record := s.create("Record Only")
	_, err = s.service.Complete(ctx, s.actor, record.ID, "finished")
	s.Require().NoError(err)

	both := s.create("Posted Record")
	_, err = s.service.Publish(ctx, s.actor, both.ID)
	s.Require().NoError(err)
	_, err = s.service.Complete(ctx, s.actor, both.ID, "finished")
	s.Require().NoError(err)

	s.create("Neither")

	postedList, err := s.service.List(ctx, TabPosted, "")
	s.Require().NoError(err)
	s.Len(postedList, 2)

	records, err := s.service.List(ctx, TabRecords, "")
	s.Require().NoError(err)
	s.Len(records, 2)

	all, err := s.service.List(ctx, TabAll, "")
	s.Require().NoError(err)
	s.Len(all, 4)
}

func (s *ServiceSuite) TestList_SearchAndTabCompose() {
	ctx := context.Background()
	p := s.create("Drainage Repair")
	_, err := s.service.Publish(ctx, s.actor, p.ID)
	s.Require().NoError(err)
	s.create("Drainage Survey")

	out, err := s.service.List(ctx, TabPosted, "drainage")
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal(p.ID, out[0].ID)
}

func (s *ServiceSuite) TestPublish_Idempotent() {
	ctx := context.Background()
	p := s.create("Health Drive")

	first, err := s.service.Publish(ctx, s.actor, p.ID)
	s.Require().NoError(err)
	second, err := s.service.Publish(ctx, s.actor, p.ID)
	s.Require().NoError(err)
	s.Equal(first.UpdatedAt, second.UpdatedAt, "repeat publish does not touch timestamps")
}

func (s *ServiceSuite) TestReact_AdjustsCountersOnVoteChange() {
	ctx := context.Background()
	p := s.create("Street Lighting")

	tally, err := s.service.React(ctx, s.actor, p.ID, "like")
	s.Require().NoError(err)
	s.Equal(models.Tally{Like: 1}, tally)

	tally, err = s.service.React(ctx, s.actor, p.ID, "dislike")
	s.Require().NoError(err)
	s.Equal(models.Tally{Dislike: 1}, tally, "changing a vote moves the count, not duplicates it")
}

func (s *ServiceSuite) TestReact_RejectsUnknownKind() {
	p := s.create("Street Lighting")
	_, err := s.service.React(context.Background(), s.actor, p.ID, "meh")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestTally_FallsBackToStoreWhenCountersFail() {
	ctx := context.Background()
	p := s.create("Street Lighting")
	_, err := s.service.React(ctx, s.actor, p.ID, "like")
	s.Require().NoError(err)

	s.counters.fail = true
	tally, err := s.service.Tally(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(models.Tally{Like: 1}, tally)
}

func (s *ServiceSuite) TestTally_ZeroForProjectWithoutReactions() {
	p := s.create("Quiet Project")
	tally, err := s.service.Tally(context.Background(), p.ID)
	s.Require().NoError(err)
	s.Equal(models.Tally{}, tally)
}

func (s *ServiceSuite) TestTallies_KeyedByProject() {
	ctx := context.Background()
	a := s.create("Project A")
	b := s.create("Project B")

	_, err := s.service.React(ctx, s.actor, a.ID, "like")
	s.Require().NoError(err)
	_, err = s.service.React(ctx, id.NewUserID(), a.ID, "like")
	s.Require().NoError(err)

	tallies, err := s.service.Tallies(ctx)
	s.Require().NoError(err)
	s.Equal(models.Tally{Like: 2}, tallies[a.ID])
	s.Equal(models.Tally{}, tallies[b.ID])
}

func (s *ServiceSuite) TestAddFeedback_RejectsBlankComment() {
	p := s.create("Street Lighting")
	_, err := s.service.AddFeedback(context.Background(), s.actor, p.ID, "   ")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestAddFeedback_UnknownProject() {
	_, err := s.service.AddFeedback(context.Background(), s.actor, id.NewProjectID(), "nice work")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestChart_DenseYearSeries() {
	ctx := context.Background()
	s.create("January Project")

	buckets, err := s.service.Chart(ctx, analytics.Window{Period: analytics.PeriodYear, Year: 2025})
	s.Require().NoError(err)
	s.Require().Len(buckets, 12)

	var total int
	for _, b := range buckets {
		total += b.Count
	}
	s.Equal(1, total)
	s.Equal("Jun", buckets[5].Label)
}

func TestParseTab(t *testing.T) {
	for _, raw := range []string{"", "posted", "records"} {
		_, err := ParseTab(raw)
		require.NoError(t, err)
	}
	_, err := ParseTab("archived")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
