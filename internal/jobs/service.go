package jobs

import (
	"context"
	"errors"
	"strings"
	"time"

	"PlacementHub/internal/apperr"
	"PlacementHub/internal/auth"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const msgJobNotFound = "Job not found"

type JobService struct {
	jobs Store
	log  *zap.Logger
	now  func() time.Time
}

func NewJobService(jobs Store, log *zap.Logger) *JobService {
	return &JobService{jobs: jobs, log: log, now: time.Now}
}

// ParseSkills splits a comma separated list, dropping blanks.
func ParseSkills(raw string) []string {
	skills := []string{}
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

func (s *JobService) Create(ctx context.Context, owner *auth.Account, req CreateJobRequest) (*Job, error) {
	skills := ParseSkills(req.Skills)
	if len(skills) == 0 {
		return nil, apperr.Validation("skills is required")
	}
	jobType := TypeFullTime
	if req.Type != "" {
		jobType = Type(req.Type)
	}

	now := s.now()
	job := &Job{
		ID:          primitive.NewObjectID(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Company:     strings.TrimSpace(req.Company),
		Location:    strings.TrimSpace(req.Location),
		Skills:      skills,
		Type:        jobType,
		Status:      StatusOpen,
		PostedBy:    owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "Server error", err)
	}
	s.log.Info("job posted", zap.String("job", job.ID.Hex()), zap.String("recruiter", owner.ID.Hex()))
	return job, nil
}

func (s *JobService) MyJobs(ctx context.Context, owner *auth.Account) ([]*Job, error) {
	jobs, err := s.jobs.FindByOwner(ctx, owner.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "Server error", err)
	}
	return jobs, nil
}

func (s *JobService) List(ctx context.Context, filter ListFilter) ([]*Job, error) {
	jobs, err := s.jobs.List(ctx, filter)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "Server error", err)
	}
	return jobs, nil
}

func (s *JobService) Get(ctx context.Context, id string) (*Job, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound(msgJobNotFound)
	}
	job, err := s.jobs.FindByID(ctx, oid)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "Server error", err)
	}
	if job == nil {
		return nil, apperr.NotFound(msgJobNotFound)
	}
	return job, nil
}

// owned loads a job and checks that caller posted it.
func (s *JobService) owned(ctx context.Context, caller *auth.Account, id, action string) (*Job, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.PostedBy != caller.ID {
		return nil, apperr.NotOwner("Not authorized to " + action + " this job")
	}
	return job, nil
}

// Update edits fields of a job or marks it filled.
func (s *JobService) Update(ctx context.Context, caller *auth.Account, id string, req UpdateJobRequest) (*Job, error) {
	job, err := s.owned(ctx, caller, id, "modify")
	if err != nil {
		return nil, err
	}

	assign := func(dst *string, src *string) {
		if src != nil && strings.TrimSpace(*src) != "" {
			*dst = strings.TrimSpace(*src)
		}
	}
	assign(&job.Title, req.Title)
	assign(&job.Description, req.Description)
	assign(&job.Company, req.Company)
	assign(&job.Location, req.Location)
	if req.Skills != nil {
		skills := ParseSkills(*req.Skills)
		if len(skills) == 0 {
			return nil, apperr.Validation("skills is required")
		}
		job.Skills = skills
	}
	if req.Type != nil && *req.Type != "" {
		job.Type = Type(*req.Type)
	}
	if req.Status != nil && *req.Status != "" {
		job.Status = Status(*req.Status)
	}
	job.UpdatedAt = s.now()

	if err := s.jobs.Replace(ctx, job); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return nil, apperr.NotFound(msgJobNotFound)
		}
		return nil, apperr.Wrap(apperr.ErrInternal, "Server error", err)
	}
	return job, nil
}

func (s *JobService) Delete(ctx context.Context, caller *auth.Account, id string) error {
	job, err := s.owned(ctx, caller, id, "delete")
	if err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, job.ID); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return apperr.NotFound(msgJobNotFound)
		}
		return apperr.Wrap(apperr.ErrInternal, "Server error", err)
	}
	s.log.Info("job removed", zap.String("job", job.ID.Hex()), zap.String("recruiter", caller.ID.Hex()))
	return nil
}
