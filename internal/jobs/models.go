package jobs

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Type string

const (
	TypeFullTime   Type = "Full-time"
	TypePartTime   Type = "Part-time"
	TypeInternship Type = "Internship"
)

type Status string

const (
	StatusOpen   Status = "Open"
	StatusFilled Status = "Filled"
)

// Job is a posting owned by the recruiter that created it.
type Job struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Company     string             `bson:"company" json:"company"`
	Location    string             `bson:"location" json:"location"`
	Skills      []string           `bson:"skills" json:"skills"`
	Type        Type               `bson:"type" json:"type"`
	Status      Status             `bson:"status" json:"status"`
	PostedBy    primitive.ObjectID `bson:"posted_by" json:"postedBy"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// CreateJobRequest carries skills as a comma separated list, e.g.
// "React, Node".
type CreateJobRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Company     string `json:"company" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Skills      string `json:"skills" validate:"required"`
	Type        string `json:"type" validate:"omitempty,oneof=Full-time Part-time Internship"`
}

// UpdateJobRequest only touches the fields that are present.
type UpdateJobRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Company     *string `json:"company"`
	Location    *string `json:"location"`
	Skills      *string `json:"skills"`
	Type        *string `json:"type" validate:"omitempty,oneof=Full-time Part-time Internship"`
	Status      *string `json:"status" validate:"omitempty,oneof=Open Filled"`
}

// ListFilter narrows the public listing; empty fields match everything.
type ListFilter struct {
	Status Status
	Type   Type
}
