package queue

import (
	"fmt"
	"time"

	"github.com/iliyamo/barbershop-queue/internal/model"
)

// Action names a lifecycle transition on a queue entry.
type Action string

const (
	ActionStart  Action = "start_service"
	ActionFinish Action = "finish_service"
	ActionCancel Action = "cancel"
	ActionNoShow Action = "mark_no_show"
)

// transitions lists, per action, the statuses it may be invoked from.
// This table is the single authority on reachability: no-show is
// deliberately allowed from both WAITING and IN_SERVICE, for every
// caller alike.
var transitions = map[Action][]model.EntryStatus{
	ActionStart:  {model.StatusWaiting},
	ActionFinish: {model.StatusInService},
	ActionCancel: {model.StatusWaiting},
	ActionNoShow: {model.StatusWaiting, model.StatusInService},
}

// CanTransition reports whether the action is permitted from the status.
func CanTransition(action Action, from model.EntryStatus) bool {
	for _, s := range transitions[action] {
		if s == from {
			return true
		}
	}
	return false
}

// InvalidTransitionError is returned when an action is not permitted
// from the entry's current status. Re-invoking an already satisfied
// transition fails the same way; transitions are not idempotent.
type InvalidTransitionError struct {
	Action Action
	From   model.EntryStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("queue: %s not allowed from status %s", e.Action, e.From)
}

// guard validates an action against the entry's status. Every transition
// calls guard before touching any field, so a rejected call leaves the
// entry completely unmodified.
func guard(action Action, e *model.QueueEntry) error {
	if !CanTransition(action, e.Status) {
		return &InvalidTransitionError{Action: action, From: e.Status}
	}
	return nil
}

// StartService moves a WAITING entry into service under the given agent.
func StartService(e *model.QueueEntry, agentID uint64, now time.Time) error {
	if err := guard(ActionStart, e); err != nil {
		return err
	}
	e.Status = model.StatusInService
	e.AgentID = &agentID
	e.StartedAt = &now
	return nil
}

// FinishService completes an IN_SERVICE entry and applies the completion
// side effects to the caller-supplied snapshots: the client's visit count
// and last-visit timestamp, and the service type's popularity counter.
// All three structs are mutated together or not at all.
func FinishService(e *model.QueueEntry, client *model.Client, svc *model.ServiceType, now time.Time) error {
	if err := guard(ActionFinish, e); err != nil {
		return err
	}
	e.Status = model.StatusCompleted
	e.FinishedAt = &now
	client.VisitCount++
	client.LastVisitAt = &now
	svc.Popularity++
	return nil
}

// Cancel marks a WAITING entry as cancelled by the client.
func Cancel(e *model.QueueEntry, now time.Time) error {
	if err := guard(ActionCancel, e); err != nil {
		return err
	}
	e.Status = model.StatusCancelled
	e.FinishedAt = &now
	return nil
}

// MarkNoShow records that the client did not appear. Allowed both while
// waiting and after service started (client walked out mid-call).
func MarkNoShow(e *model.QueueEntry, now time.Time) error {
	if err := guard(ActionNoShow, e); err != nil {
		return err
	}
	e.Status = model.StatusNoShow
	e.FinishedAt = &now
	return nil
}
