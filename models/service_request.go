package models

import (
	"strings"
	"time"
)

// ServiceStatus is the lifecycle state of a ServiceRequest. Stored as a plain
// string; historical rows carry mixed casing, so always go through Normalize
// before comparing.
type ServiceStatus string

const (
	StatusFindingPros ServiceStatus = "finding_pros" // open, accepting fill requests
	StatusConfirmed   ServiceStatus = "confirmed"    // provider assigned
	StatusHelprOTW    ServiceStatus = "helpr_otw"    // provider on the way
	StatusInProgress  ServiceStatus = "in_progress"
	StatusCompleted   ServiceStatus = "completed" // terminal
)

// NormalizeStatus lower-cases and trims a raw status value. Unrecognized or
// empty values fall back to finding_pros, the least-privileged state.
func NormalizeStatus(raw ServiceStatus) ServiceStatus {
	s := ServiceStatus(strings.ToLower(strings.TrimSpace(string(raw))))
	if !s.Known() {
		return StatusFindingPros
	}
	return s
}

// Known reports whether the status is one of the five defined values.
func (s ServiceStatus) Known() bool {
	switch s {
	case StatusFindingPros, StatusConfirmed, StatusHelprOTW, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// SchedulingType values for ServiceRequest.SchedulingType.
const (
	SchedulingASAP      = "asap"
	SchedulingScheduled = "scheduled"
)

// ServiceRequest is a single job record moving through the status lifecycle.
// The customer app owns the descriptive fields; status transitions past
// confirmed belong to the assigned provider.
type ServiceRequest struct {
	ID                 string        `bson:"id" json:"id"`
	CustomerID         string        `bson:"customer_id" json:"customerId"`
	ServiceType        string        `bson:"service_type" json:"serviceType"` // e.g. "Moving"
	Status             ServiceStatus `bson:"status" json:"status"`
	AssignedProviderID string        `bson:"assigned_provider_id,omitempty" json:"assignedProviderId,omitempty"`
	StartLocation      Location      `bson:"start_location" json:"startLocation"`
	EndLocation        Location      `bson:"end_location" json:"endLocation"`
	Price              float64       `bson:"price" json:"price"`
	Description        string        `bson:"description" json:"description"`
	SchedulingType     string        `bson:"scheduling_type" json:"schedulingType"` // "asap" or "scheduled"
	ScheduledAt        *time.Time    `bson:"scheduled_at,omitempty" json:"scheduledAt,omitempty"`
	CreatedAt          time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time     `bson:"updated_at" json:"updatedAt"`
}

// Assigned reports whether a provider has been assigned.
func (s *ServiceRequest) Assigned() bool {
	return s.AssignedProviderID != ""
}

// Open reports whether the request is still accepting fill requests.
func (s *ServiceRequest) Open() bool {
	return NormalizeStatus(s.Status) == StatusFindingPros
}
