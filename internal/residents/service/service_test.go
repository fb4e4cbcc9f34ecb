package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"civreg/internal/activity"
	"civreg/internal/analytics"
	"civreg/internal/freshness"
	"civreg/internal/reporting"
	"civreg/internal/residents/models"
	"civreg/internal/residents/service/mocks"
	"civreg/internal/residents/store"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
)

var testNow = time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)

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

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *store.InMemory
	notifier  *mocks.MockNotifier
	publisher *recordingPublisher
	service   *Service
	actor     id.UserID
	clock     time.Time
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = store.NewInMemory()
	s.notifier = mocks.NewMockNotifier(s.ctrl)
	s.publisher = &recordingPublisher{}
	s.actor = id.NewUserID()
	s.clock = testNow
	s.service = New(s.store,
		WithNotifier(s.notifier),
		WithActivityPublisher(s.publisher),
		WithClock(func() time.Time { return s.clock }),
	)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) create(first, last string) *models.Resident {
	r, err := s.service.Create(context.Background(), s.actor, ProfileInput{
		FirstName: first,
		LastName:  last,
	})
	s.Require().NoError(err)
	return r
}

func (s *ServiceSuite) TestCreate_RejectsBlankNames() {
	_, err := s.service.Create(context.Background(), s.actor, ProfileInput{FirstName: "  ", LastName: "Reyes"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestCreate_StartsPendingWithFreshTimestamps() {
	r := s.create("Ana", "Reyes")
	s.Equal(models.VerificationPending, r.Verification.Status)
	s.Require().NotNil(r.LastModified)
	s.Equal(testNow, *r.LastModified)
	s.Equal(freshness.StatusActive, r.DerivedStatus(testNow))
	s.Equal([]string{activity.ActionResidentCreated}, s.publisher.actions())
}

func (s *ServiceSuite) TestCreate_DerivesNamesFromEmail() {
	r, err := s.service.Create(context.Background(), s.actor, ProfileInput{
		Email: "maria.santos@example.com",
	})
	s.Require().NoError(err)
	s.Equal("Maria", r.FirstName)
	s.Equal("Santos", r.LastName)
}

func (s *ServiceSuite) TestGet_BlockedWhenDenied() {
	ctx := context.Background()
	r := s.create("Ana", "Reyes")
	_, err := s.service.Deny(ctx, s.actor, r.ID, "incomplete documents")
	s.Require().NoError(err)

	_, err = s.service.Get(ctx, r.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestUpdate_RefreshesLastModified() {
	ctx := context.Background()
	r := s.create("Ana", "Reyes")

	s.clock = testNow.AddDate(0, 1, 0)
	updated, err := s.service.Update(ctx, s.actor, r.ID, ProfileInput{
		FirstName: "Ana",
		LastName:  "Reyes-Cruz",
	})
	s.Require().NoError(err)
	s.Require().NotNil(updated.LastModified)
	s.Equal(s.clock, *updated.LastModified)
	s.Equal("Reyes-Cruz", updated.LastName)
}

func (s *ServiceSuite) TestUpdate_BlockedWhenDenied() {
	ctx := context.Background()
	r := s.create("Ana", "Reyes")
	_, err := s.service.Deny(ctx, s.actor, r.ID, "incomplete documents")
	s.Require().NoError(err)

	_, err = s.service.Update(ctx, s.actor, r.ID, ProfileInput{FirstName: "Ana", LastName: "Reyes"})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestApprove_NotifiesOnce() {
	ctx := context.Background()
	r := s.create("Ana", "Reyes")
	before := *r.LastModified

	s.notifier.EXPECT().NotifyApproved(gomock.Any(), r.ID, r.DisplayName()).Return(nil).Times(1)

	s.clock = testNow.AddDate(0, 2, 0)
	approved, err := s.service.Approve(ctx, s.actor, r.ID)
	s.Require().NoError(err)
	s.Equal(models.VerificationApproved, approved.Verification.Status)

	// Duplicate approval: no second notification, timestamps untouched.
	again, err := s.service.Approve(ctx, s.actor, r.ID)
	s.Require().NoError(err)
	s.Equal(models.VerificationApproved, again.Verification.Status)
	s.Require().NotNil(again.LastModified)
	s.Equal(before, *again.LastModified)
}

func (s *ServiceSuite) TestApprove_NotifierFailureDoesNotFailApproval() {
	ctx := context.Background()
	r := s.create("Ana", "Reyes")
	s.notifier.EXPECT().NotifyApproved(gomock.Any(), r.ID, gomock.Any()).Return(errors.New("smtp down"))

	approved, err := s.service.Approve(ctx, s.actor, r.ID)
	s.Require().NoError(err)
	s.Equal(models.VerificationApproved, approved.Verification.Status)
}

func (s *ServiceSuite) TestApprove_UnknownResident() {
	_, err := s.service.Approve(context.Background(), s.actor, id.NewResidentID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestDeny_RequiresComment() {
	ctx := context.Background()
	r := s.create("Ana", "Reyes")

	for _, comment := range []string{"", "   ", "\t\n"} {
		_, err := s.service.Deny(ctx, s.actor, r.ID, comment)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	}

	// Failed denial left the workflow untouched.
	got, err := s.service.Get(ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(models.VerificationPending, got.Verification.Status)
}

func (s *ServiceSuite) TestDeny_StoresComment() {
	ctx := context.Background()
	r := s.create("Ana", "Reyes")

	denied, err := s.service.Deny(ctx, s.actor, r.ID, "missing proof of residency")
	s.Require().NoError(err)
	s.Equal(models.VerificationDenied, denied.Verification.Status)
	s.Equal("missing proof of residency", denied.Verification.Comment)
}

func (s *ServiceSuite) TestDeny_RepeatWithSameReasonIsNoOp() {
	ctx := context.Background()
	r := s.create("Ana", "Reyes")

	denied, err := s.service.Deny(ctx, s.actor, r.ID, "missing proof of residency")
	s.Require().NoError(err)
	decidedAt := denied.Verification.DecidedAt

	// Same reason again: timestamps untouched, no second activity entry.
	s.clock = testNow.AddDate(0, 1, 0)
	again, err := s.service.Deny(ctx, s.actor, r.ID, "missing proof of residency")
	s.Require().NoError(err)
	s.Equal(decidedAt, again.Verification.DecidedAt)
	s.Equal([]string{
		activity.ActionResidentCreated,
		activity.ActionVerificationDenied,
	}, s.publisher.actions())

	// A new reason re-records the decision.
	rerecorded, err := s.service.Deny(ctx, s.actor, r.ID, "address mismatch")
	s.Require().NoError(err)
	s.Equal("address mismatch", rerecorded.Verification.Comment)
	s.Equal(s.clock, rerecorded.Verification.DecidedAt)
}

func (s *ServiceSuite) TestApprove_AfterDenialUnblocks() {
	ctx := context.Background()
	r := s.create("Ana", "Reyes")
	_, err := s.service.Deny(ctx, s.actor, r.ID, "missing proof of residency")
	s.Require().NoError(err)

	s.notifier.EXPECT().NotifyApproved(gomock.Any(), r.ID, gomock.Any()).Return(nil)
	_, err = s.service.Approve(ctx, s.actor, r.ID)
	s.Require().NoError(err)

	got, err := s.service.Get(ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(models.VerificationApproved, got.Verification.Status)
	s.Equal("missing proof of residency", got.Verification.Comment, "comment retained for audit")
}

func (s *ServiceSuite) TestSoftDeleteAndRestore_KeepVerificationStatus() {
	ctx := context.Background()
	r := s.create("Ana", "Reyes")
	_, err := s.service.Deny(ctx, s.actor, r.ID, "incomplete documents")
	s.Require().NoError(err)

	s.Require().NoError(s.service.SoftDelete(ctx, s.actor, r.ID))

	deleted, err := s.service.ListDeleted(ctx)
	s.Require().NoError(err)
	s.Require().Len(deleted, 1)

	active, err := s.service.List(ctx, reporting.ResidentFilter{})
	s.Require().NoError(err)
	s.Empty(active)

	s.Require().NoError(s.service.Restore(ctx, s.actor, r.ID))
	restored, err := s.store.FindByID(ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(models.VerificationDenied, restored.Verification.Status, "restore does not alter verification")
}

func (s *ServiceSuite) TestSoftDelete_Twice() {
	ctx := context.Background()
	r := s.create("Ana", "Reyes")
	s.Require().NoError(s.service.SoftDelete(ctx, s.actor, r.ID))
	err := s.service.SoftDelete(ctx, s.actor, r.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestRestore_NotDeleted() {
	ctx := context.Background()
	r := s.create("Ana", "Reyes")
	err := s.service.Restore(ctx, s.actor, r.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestList_AppliesFilter() {
	ctx := context.Background()
	s.create("Ana", "Reyes")
	s.create("Ben", "Cruz")

	out, err := s.service.List(ctx, reporting.ResidentFilter{Search: "cruz"})
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal("Ben Cruz", out[0].DisplayName())
}

func (s *ServiceSuite) TestReport_RowsAndSummary() {
	ctx := context.Background()
	s.create("Ana", "Reyes")
	s.create("Ben", "Cruz")

	rows, summary, err := s.service.Report(ctx, reporting.ReportFilter{})
	s.Require().NoError(err)
	s.Len(rows, 2)
	s.Equal(2, summary.Active)
}

func (s *ServiceSuite) TestChart_DenseTrailingSeries() {
	ctx := context.Background()
	s.create("Ana", "Reyes")

	buckets, err := s.service.Chart(ctx, analytics.Window{})
	s.Require().NoError(err)
	s.Require().Len(buckets, 12)
	s.Equal("Jun 2025", buckets[11].Label)
	s.Equal(1, buckets[11].Count)
}

// Store failure paths exercised against mocks rather than the memory store.
func TestService_StoreFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockStore(ctrl)
	svc := New(mockStore, WithClock(func() time.Time { return testNow }))
	ctx := context.Background()

	mockStore.EXPECT().List(gomock.Any()).Return(nil, errors.New("db down"))
	_, _, err := svc.Report(ctx, reporting.ReportFilter{})
	if !dErrors.HasCode(err, dErrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}

	mockStore.EXPECT().Mutate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
	_, err = svc.Approve(ctx, id.NewUserID(), id.NewResidentID())
	if !dErrors.HasCode(err, dErrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}
