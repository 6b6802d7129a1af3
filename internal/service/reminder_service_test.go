package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/periyanachi-erp/fees-api/internal/dto"
	"github.com/periyanachi-erp/fees-api/internal/models"
)

type stubReminderRepo struct {
	created []*models.FeeReminder
	err     error
}

func (s *stubReminderRepo) CreateReminder(_ context.Context, reminder *models.FeeReminder) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, reminder)
	return nil
}

func (s *stubReminderRepo) ListReminders(context.Context, string, int, int) ([]models.FeeReminder, int, error) {
	return nil, 0, nil
}

// dropAfterFirst delivers the first SMS and drops the rest.
type dropAfterFirst struct {
	calls int
}

func (s *dropAfterFirst) Send(string, string) bool {
	s.calls++
	return s.calls == 1
}

func TestReminderServiceSendClassReminders(t *testing.T) {
	students := &stubStudentReader{eligible: []models.Student{
		*dayScholar("s1", "10-A"),
		*dayScholar("s2", "10-A"),
	}}
	assignments := &stubSummaryAssignments{details: []models.StudentFeeAssignmentDetail{
		detail("a1", "s1", "4500.00", "3000.00"),
	}}
	repo := &stubReminderRepo{}
	sender := &dropAfterFirst{}
	svc := NewReminderService(students, assignments, repo, sender, nil, nil)

	result, err := svc.SendClassReminders(context.Background(), dto.SendRemindersRequest{ClassName: "10-A"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Students)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)

	require.Len(t, repo.created, 2)
	assert.Equal(t, models.ReminderStatusSent, repo.created[0].Status)
	assert.Equal(t, models.ReminderStatusFailed, repo.created[1].Status)
	assert.Contains(t, repo.created[0].Message, decimal.RequireFromString("1500.00").StringFixed(2))
}

func TestReminderServiceCustomMessage(t *testing.T) {
	students := &stubStudentReader{eligible: []models.Student{*dayScholar("s1", "10-A")}}
	repo := &stubReminderRepo{}
	sender := &stubSender{ok: true}
	svc := NewReminderService(students, &stubSummaryAssignments{}, repo, sender, nil, nil)

	result, err := svc.SendClassReminders(context.Background(), dto.SendRemindersRequest{
		ClassName: "10-A",
		Message:   "Sports day fee is due this Friday.",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	require.Len(t, sender.texts, 1)
	assert.Equal(t, "Sports day fee is due this Friday.", sender.texts[0])
}

func TestReminderServiceRecordFailureDoesNotAbortRun(t *testing.T) {
	students := &stubStudentReader{eligible: []models.Student{
		*dayScholar("s1", "10-A"),
		*dayScholar("s2", "10-A"),
	}}
	repo := &stubReminderRepo{err: assert.AnError}
	sender := &stubSender{ok: true}
	svc := NewReminderService(students, &stubSummaryAssignments{}, repo, sender, nil, nil)

	result, err := svc.SendClassReminders(context.Background(), dto.SendRemindersRequest{ClassName: "10-A"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Sent)
	assert.Len(t, sender.sent, 2)
}
