package jobs

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"PlacementHub/internal/apperr"
	"PlacementHub/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memStore struct {
	mu   sync.Mutex
	jobs map[primitive.ObjectID]Job
}

func newMemStore() *memStore {
	return &memStore{jobs: map[primitive.ObjectID]Job{}}
}

func (m *memStore) Create(_ context.Context, job *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = *job
	return nil
}

func (m *memStore) FindByID(_ context.Context, id primitive.ObjectID) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		return &job, nil
	}
	return nil, nil
}

func (m *memStore) FindByOwner(_ context.Context, owner primitive.ObjectID) ([]*Job, error) {
	return m.filter(func(j Job) bool { return j.PostedBy == owner }), nil
}

func (m *memStore) List(_ context.Context, f ListFilter) ([]*Job, error) {
	return m.filter(func(j Job) bool {
		return (f.Status == "" || j.Status == f.Status) && (f.Type == "" || j.Type == f.Type)
	}), nil
}

func (m *memStore) filter(match func(Job) bool) []*Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*Job{}
	for _, j := range m.jobs {
		if match(j) {
			j := j
			out = append(out, &j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out
}

func (m *memStore) Replace(_ context.Context, job *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; !ok {
		return ErrJobNotFound
	}
	m.jobs[job.ID] = *job
	return nil
}

func (m *memStore) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return ErrJobNotFound
	}
	delete(m.jobs, id)
	return nil
}

func recruiter(name string) *auth.Account {
	return &auth.Account{ID: primitive.NewObjectID(), Name: name, Role: auth.RoleRecruiter}
}

func newService() (*JobService, *memStore) {
	store := newMemStore()
	svc := NewJobService(store, zap.NewNop())
	tick := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}
	return svc, store
}

func sampleRequest(title string) CreateJobRequest {
	return CreateJobRequest{
		Title: title, Description: "Build things", Company: "Acme",
		Location: "Dhaka", Skills: "React, Node ,, Go",
	}
}

func TestParseSkills(t *testing.T) {
	assert.Equal(t, []string{"React", "Node", "Go"}, ParseSkills(" React,Node , ,Go,"))
	assert.Empty(t, ParseSkills(" , "))
}

func TestCreateDefaults(t *testing.T) {
	svc, _ := newService()
	owner := recruiter("Rita")

	job, err := svc.Create(context.Background(), owner, sampleRequest("Backend Engineer"))
	require.NoError(t, err)
	assert.Equal(t, TypeFullTime, job.Type)
	assert.Equal(t, StatusOpen, job.Status)
	assert.Equal(t, owner.ID, job.PostedBy)
	assert.Equal(t, []string{"React", "Node", "Go"}, job.Skills)

	req := sampleRequest("Intern")
	req.Skills = " , "
	_, err = svc.Create(context.Background(), owner, req)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestOwnershipChecks(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	owner, other := recruiter("Rita"), recruiter("Raj")

	job, err := svc.Create(ctx, owner, sampleRequest("Backend Engineer"))
	require.NoError(t, err)

	filled := "Filled"
	_, err = svc.Update(ctx, other, job.ID.Hex(), UpdateJobRequest{Status: &filled})
	assert.ErrorIs(t, err, apperr.ErrNotOwner)
	_, msg, _ := apperr.Status(err)
	assert.Equal(t, "Not authorized to modify this job", msg)

	err = svc.Delete(ctx, other, job.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrNotOwner)
	_, msg, _ = apperr.Status(err)
	assert.Equal(t, "Not authorized to delete this job", msg)

	title, skills := "Senior Backend Engineer", "Go"
	updated, err := svc.Update(ctx, owner, job.ID.Hex(), UpdateJobRequest{Status: &filled, Title: &title, Skills: &skills})
	require.NoError(t, err)
	assert.Equal(t, StatusFilled, updated.Status)
	assert.Equal(t, "Senior Backend Engineer", updated.Title)
	assert.Equal(t, []string{"Go"}, updated.Skills)
	assert.Equal(t, "Acme", updated.Company)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	require.NoError(t, svc.Delete(ctx, owner, job.ID.Hex()))
	_, err = svc.Get(ctx, job.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetRejectsBadIDs(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Get(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.Get(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListingAndMyJobs(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	rita, raj := recruiter("Rita"), recruiter("Raj")

	first, err := svc.Create(ctx, rita, sampleRequest("First"))
	require.NoError(t, err)
	internReq := sampleRequest("Second")
	internReq.Type = string(TypeInternship)
	_, err = svc.Create(ctx, rita, internReq)
	require.NoError(t, err)
	_, err = svc.Create(ctx, raj, sampleRequest("Third"))
	require.NoError(t, err)

	filled := "Filled"
	_, err = svc.Update(ctx, rita, first.ID.Hex(), UpdateJobRequest{Status: &filled})
	require.NoError(t, err)

	mine, err := svc.MyJobs(ctx, rita)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Second", mine[0].Title)

	all, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	open, err := svc.List(ctx, ListFilter{Status: StatusOpen})
	require.NoError(t, err)
	assert.Len(t, open, 2)

	interns, err := svc.List(ctx, ListFilter{Type: TypeInternship})
	require.NoError(t, err)
	require.Len(t, interns, 1)
	assert.Equal(t, "Second", interns[0].Title)
}
