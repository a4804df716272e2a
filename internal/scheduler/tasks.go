package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskResultsDeadline = "diligence.results.deadline"

const TaskMilestoneReminder = "timeline.milestone.reminder"

type ResultsDeadlinePayload struct {
	RunID         string `json:"runId"`
	TransactionID string `json:"transactionId"`
}

type MilestoneReminderPayload struct {
	TransactionID   string    `json:"transactionId"`
	PropertyAddress string    `json:"propertyAddress"`
	Milestone       string    `json:"milestone"`
	TargetDate      time.Time `json:"targetDate"`
}

func NewResultsDeadlineTask(payload ResultsDeadlinePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskResultsDeadline, data), nil
}

func ParseResultsDeadlinePayload(task *asynq.Task) (ResultsDeadlinePayload, error) {
	var payload ResultsDeadlinePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ResultsDeadlinePayload{}, err
	}
	return payload, nil
}

func NewMilestoneReminderTask(payload MilestoneReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMilestoneReminder, data), nil
}

func ParseMilestoneReminderPayload(task *asynq.Task) (MilestoneReminderPayload, error) {
	var payload MilestoneReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return MilestoneReminderPayload{}, err
	}
	return payload, nil
}
