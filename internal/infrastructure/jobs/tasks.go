// Package jobs procesa en segundo plano la reconciliación programada del ledger (asynq sobre Redis).
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueLedger cola de los jobs del ledger.
	QueueLedger = "ledger"
	// TaskReconcileSweep barrido programado: encola una reconciliación por propietario.
	TaskReconcileSweep = "ledger:reconcile"
	// TaskReconcileOwner reconcilia los materiales de un propietario.
	TaskReconcileOwner = "ledger:reconcile:owner"

	maxRetry = 3
)

// ReconcileOwnerPayload alcance de una reconciliación. MaterialID vacío = todos los materiales.
type ReconcileOwnerPayload struct {
	OwnerID    string `json:"owner_id"`
	MaterialID string `json:"material_id,omitempty"`
}

// NewReconcileSweepTask tarea del barrido; sin payload.
func NewReconcileSweepTask() *asynq.Task {
	return asynq.NewTask(TaskReconcileSweep, nil, asynq.Queue(QueueLedger), asynq.MaxRetry(maxRetry))
}

// NewReconcileOwnerTask tarea de reconciliación de un propietario.
func NewReconcileOwnerTask(payload ReconcileOwnerPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconcileOwner, body, asynq.Queue(QueueLedger), asynq.MaxRetry(maxRetry)), nil
}
