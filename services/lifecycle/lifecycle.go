// Package lifecycle holds the pure status-transition rules for service
// requests. It performs no I/O: callers persist the returned copies through
// the repository layer, which enforces the matching preconditions on the
// stored row.
package lifecycle

import (
	"fmt"

	"helpr/models"
)

// NextStatus returns the single legal forward transition from current, or
// ok=false when none exists. The chain is strictly linear:
//
//	confirmed -> helpr_otw -> in_progress -> completed
//
// finding_pros has no forward transition (assignment happens through bid
// acceptance, not advancement) and completed is terminal. Unrecognized or
// empty statuses are treated as finding_pros.
func NextStatus(current models.ServiceStatus) (models.ServiceStatus, bool) {
	switch models.NormalizeStatus(current) {
	case models.StatusConfirmed:
		return models.StatusHelprOTW, true
	case models.StatusHelprOTW:
		return models.StatusInProgress, true
	case models.StatusInProgress:
		return models.StatusCompleted, true
	default:
		// finding_pros and completed: nowhere to go.
		return "", false
	}
}

// Advance moves svc one step along the status chain on behalf of
// actingProviderID and returns the updated copy. Only the assigned provider
// may advance, and never past completed. The input value is not mutated.
func Advance(svc models.ServiceRequest, actingProviderID string) (models.ServiceRequest, error) {
	svc.Status = models.NormalizeStatus(svc.Status)

	if actingProviderID != svc.AssignedProviderID {
		return svc, newError(CodeNotAssignedProvider,
			fmt.Sprintf("provider %q is not assigned to service %s", actingProviderID, svc.ID))
	}
	next, ok := NextStatus(svc.Status)
	if !ok {
		return svc, newError(CodeTerminalState,
			fmt.Sprintf("service %s has no forward transition from %q", svc.ID, svc.Status))
	}

	svc.Status = next
	return svc, nil
}

// CancelAssignment releases a confirmed service back to the open pool:
// status returns to finding_pros and the provider assignment is cleared.
// Legal only for the assigned provider and only from confirmed; once work
// has started (helpr_otw onwards) the job can no longer be unassigned here.
// Callers must also delete the canceling provider's own fill request, which
// may still exist from before acceptance.
func CancelAssignment(svc models.ServiceRequest, actingProviderID string) (models.ServiceRequest, error) {
	svc.Status = models.NormalizeStatus(svc.Status)

	if svc.Status != models.StatusConfirmed {
		return svc, newError(CodeInvalidCancellation,
			fmt.Sprintf("service %s cannot be unassigned from status %q", svc.ID, svc.Status))
	}
	if actingProviderID == "" || actingProviderID != svc.AssignedProviderID {
		return svc, newError(CodeInvalidCancellation,
			fmt.Sprintf("provider %q is not assigned to service %s", actingProviderID, svc.ID))
	}

	svc.Status = models.StatusFindingPros
	svc.AssignedProviderID = ""
	return svc, nil
}
