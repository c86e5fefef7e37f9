package interviews

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/events"
	"github.com/crewbase/crewbase/internal/platform/httpx"
)

type sinkSpy struct {
	emitted []events.Event
}

func (s *sinkSpy) Emit(ctx context.Context, event events.Event) {
	s.emitted = append(s.emitted, event)
}

type mockInterviewRepo struct {
	interviews map[uuid.UUID]Interview
}

func newMockInterviewRepo() *mockInterviewRepo {
	return &mockInterviewRepo{interviews: make(map[uuid.UUID]Interview)}
}

func (m *mockInterviewRepo) ListByProject(ctx context.Context, projectID uuid.UUID, resumeID *uuid.UUID) ([]Interview, error) {
	var out []Interview
	for _, iv := range m.interviews {
		if iv.ProjectID != projectID {
			continue
		}
		if resumeID != nil && iv.ResumeID != *resumeID {
			continue
		}
		out = append(out, iv)
	}
	return out, nil
}

func (m *mockInterviewRepo) Get(ctx context.Context, projectID, id uuid.UUID) (Interview, error) {
	iv, ok := m.interviews[id]
	if !ok || iv.ProjectID != projectID {
		return Interview{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
	}
	return iv, nil
}

func (m *mockInterviewRepo) Create(ctx context.Context, interview Interview) (Interview, error) {
	interview.ID = uuid.New()
	if interview.Status == "" {
		interview.Status = StatusScheduled
	}
	m.interviews[interview.ID] = interview
	return interview, nil
}

func (m *mockInterviewRepo) Update(ctx context.Context, interview Interview) (Interview, error) {
	if _, ok := m.interviews[interview.ID]; !ok {
		return Interview{}, httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
	}
	m.interviews[interview.ID] = interview
	return interview, nil
}

func (m *mockInterviewRepo) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	iv, ok := m.interviews[id]
	if !ok || iv.ProjectID != projectID {
		return httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
	}
	delete(m.interviews, id)
	return nil
}

func TestCreateDefaultsToScheduled(t *testing.T) {
	repo := newMockInterviewRepo()
	sink := &sinkSpy{}
	svc := NewService(repo, sink)
	projectID := uuid.New()

	created, err := svc.Create(context.Background(), projectID, CreateInterviewRequest{
		ResumeID:      uuid.New(),
		InterviewerID: 4,
		ScheduledAt:   time.Now().Add(48 * time.Hour),
	}, 9)
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, created.Status)
	assert.Equal(t, projectID, created.ProjectID)
	assert.Equal(t, int64(9), created.CreatedBy)

	require.Len(t, sink.emitted, 1)
	assert.Equal(t, events.KindCreated, sink.emitted[0].Kind)
	assert.Equal(t, "interview", sink.emitted[0].Resource)
}

func TestListFiltersByResume(t *testing.T) {
	repo := newMockInterviewRepo()
	svc := NewService(repo, &sinkSpy{})
	projectID := uuid.New()
	resumeA := uuid.New()
	resumeB := uuid.New()

	for _, rid := range []uuid.UUID{resumeA, resumeA, resumeB} {
		_, err := svc.Create(context.Background(), projectID, CreateInterviewRequest{
			ResumeID:      rid,
			InterviewerID: 4,
			ScheduledAt:   time.Now().Add(24 * time.Hour),
		}, 9)
		require.NoError(t, err)
	}

	all, err := svc.List(context.Background(), projectID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := svc.List(context.Background(), projectID, &resumeA)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
}

func TestUpdateRecordsFeedbackAndStatus(t *testing.T) {
	repo := newMockInterviewRepo()
	sink := &sinkSpy{}
	svc := NewService(repo, sink)
	projectID := uuid.New()

	created, err := svc.Create(context.Background(), projectID, CreateInterviewRequest{
		ResumeID:      uuid.New(),
		InterviewerID: 4,
		ScheduledAt:   time.Now().Add(24 * time.Hour),
	}, 9)
	require.NoError(t, err)

	status := StatusCompleted
	feedback := "strong on systems design, weak on SQL"
	updated, err := svc.Update(context.Background(), projectID, created.ID, UpdateInterviewRequest{
		Status:   &status,
		Feedback: &feedback,
	}, 4)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)
	assert.Equal(t, feedback, updated.Feedback)
	assert.Equal(t, created.ScheduledAt, updated.ScheduledAt, "unset fields stay put")
	assert.Equal(t, events.KindUpdated, sink.emitted[len(sink.emitted)-1].Kind)
}

func TestGetScopedToProject(t *testing.T) {
	repo := newMockInterviewRepo()
	svc := NewService(repo, &sinkSpy{})

	created, err := svc.Create(context.Background(), uuid.New(), CreateInterviewRequest{
		ResumeID:      uuid.New(),
		InterviewerID: 4,
		ScheduledAt:   time.Now().Add(24 * time.Hour),
	}, 9)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New(), created.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
}
