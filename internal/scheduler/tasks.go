package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskMonitoringSweep = "monitoring.sweep"

const TaskOpportunityDigest = "opportunities.digest"

// MonitoringSweepPayload lists the loan products to sweep. Empty means the default product.
type MonitoringSweepPayload struct {
	Products []string `json:"products,omitempty"`
}

// OpportunityDigestPayload targets one broker. An empty BrokerID fans the
// digest out to every broker.
type OpportunityDigestPayload struct {
	BrokerID string `json:"brokerId,omitempty"`
	Product  string `json:"product,omitempty"`
}

func NewMonitoringSweepTask(payload MonitoringSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMonitoringSweep, data), nil
}

func ParseMonitoringSweepPayload(task *asynq.Task) (MonitoringSweepPayload, error) {
	var payload MonitoringSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return MonitoringSweepPayload{}, err
	}
	return payload, nil
}

func NewOpportunityDigestTask(payload OpportunityDigestPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOpportunityDigest, data), nil
}

func ParseOpportunityDigestPayload(task *asynq.Task) (OpportunityDigestPayload, error) {
	var payload OpportunityDigestPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return OpportunityDigestPayload{}, err
	}
	return payload, nil
}
