package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-ledger/internal/application/inventory"
	"github.com/jhoicas/almacen-ledger/pkg/metrics"
)

// Reconciler caso de uso de reconciliación.
type Reconciler interface {
	Reconcile(ctx context.Context, ownerID string, materialID *string) (*inventory.ReconciliationReport, error)
}

// OwnerLister propietarios a recorrer en el barrido.
type OwnerLister interface {
	ListOwnerIDs(ctx context.Context) ([]string, error)
}

// Enqueuer encola tareas (implementado por *asynq.Client).
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ReconcileJob handlers del barrido y de la reconciliación por propietario.
// Sin Enqueuer el barrido reconcilia cada propietario en línea.
type ReconcileJob struct {
	reconciler Reconciler
	owners     OwnerLister
	enqueuer   Enqueuer
	metrics    *metrics.Ledger
	log        zerolog.Logger
}

// NewReconcileJob construye el job.
func NewReconcileJob(reconciler Reconciler, owners OwnerLister, enqueuer Enqueuer, m *metrics.Ledger, log zerolog.Logger) *ReconcileJob {
	return &ReconcileJob{
		reconciler: reconciler,
		owners:     owners,
		enqueuer:   enqueuer,
		metrics:    m,
		log:        log,
	}
}

// HandleSweep procesa TaskReconcileSweep.
func (j *ReconcileJob) HandleSweep(ctx context.Context, _ *asynq.Task) (resultErr error) {
	tracker := j.metrics.Track(TaskReconcileSweep)
	defer func() { resultErr = tracker.End(resultErr) }()

	owners, err := j.owners.ListOwnerIDs(ctx)
	if err != nil {
		return fmt.Errorf("listar propietarios: %w", err)
	}
	log := j.log.With().Str("job", TaskReconcileSweep).Logger()
	if len(owners) == 0 {
		log.Info().Msg("sin propietarios para reconciliar")
		return nil
	}

	var errs []error
	for _, ownerID := range owners {
		if err := j.dispatch(ctx, ownerID); err != nil {
			log.Error().Err(err).Str("owner_id", ownerID).Msg("reconciliación no despachada")
			errs = append(errs, err)
		}
	}
	log.Info().Int("owners", len(owners)).Int("errors", len(errs)).Msg("barrido de reconciliación despachado")
	return errors.Join(errs...)
}

func (j *ReconcileJob) dispatch(ctx context.Context, ownerID string) error {
	if j.enqueuer == nil {
		_, err := j.reconcile(ctx, ReconcileOwnerPayload{OwnerID: ownerID})
		return err
	}
	task, err := NewReconcileOwnerTask(ReconcileOwnerPayload{OwnerID: ownerID})
	if err != nil {
		return err
	}
	_, err = j.enqueuer.EnqueueContext(ctx, task)
	return err
}

// HandleOwner procesa TaskReconcileOwner. Si algún material falló devuelve error para
// que asynq reintente la tarea; la reconciliación es idempotente.
func (j *ReconcileJob) HandleOwner(ctx context.Context, task *asynq.Task) (resultErr error) {
	var payload ReconcileOwnerPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil || payload.OwnerID == "" {
		return fmt.Errorf("payload inválido: %w", asynq.SkipRetry)
	}

	tracker := j.metrics.Track(TaskReconcileOwner)
	defer func() { resultErr = tracker.End(resultErr) }()

	report, err := j.reconcile(ctx, payload)
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("propietario %s: %d materiales sin reconciliar", payload.OwnerID, report.Failed)
	}
	return nil
}

func (j *ReconcileJob) reconcile(ctx context.Context, payload ReconcileOwnerPayload) (*inventory.ReconciliationReport, error) {
	var materialID *string
	if payload.MaterialID != "" {
		materialID = &payload.MaterialID
	}
	report, err := j.reconciler.Reconcile(ctx, payload.OwnerID, materialID)
	if err != nil {
		return nil, fmt.Errorf("reconciliar propietario %s: %w", payload.OwnerID, err)
	}
	j.log.Info().
		Str("job", TaskReconcileOwner).
		Str("owner_id", payload.OwnerID).
		Int("checked", report.Checked).
		Int("corrected", report.Corrected).
		Int("failed", report.Failed).
		Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
		Msg("reconciliación terminada")
	return report, nil
}
