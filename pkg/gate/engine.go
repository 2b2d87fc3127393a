package gate

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/devsapp/model-retrain-pipeline/pkg/checksum"
	"github.com/devsapp/model-retrain-pipeline/pkg/statestore"
	"github.com/devsapp/model-retrain-pipeline/pkg/trainer"
	"github.com/devsapp/model-retrain-pipeline/pkg/version"
)

type Decision string

const (
	Skip  Decision = "SKIP"
	Train Decision = "TRAIN"
)

// Result of one gate run.
type Result struct {
	Decision    Decision
	Fingerprint string
	Tag         version.Tag // set only when training committed
}

// Engine is the retraining gate: it fingerprints the dataset,
// compares against the stored checksum, and on change runs one
// train-and-commit cycle.
type Engine struct {
	Checksums statestore.Store
	Trainer   trainer.Trainer
	Models    *version.Store

	// Force retrains regardless of the stored checksum. The stored
	// value is not touched up front, so a forced run that fails
	// still leaves the record bit-identical.
	Force bool
}

// Decide fingerprints the dataset and compares it to the stored
// checksum. No side effects beyond the store read; an absent store
// never equals a real fingerprint and so decides Train.
func (e *Engine) Decide(datasetPath string) (Decision, string, error) {
	current, err := checksum.Fingerprint(datasetPath)
	if err != nil {
		return "", "", err
	}
	stored, ok, err := e.Checksums.Read()
	if err != nil {
		return "", "", err
	}
	if ok && stored == current && !e.Force {
		return Skip, current, nil
	}
	return Train, current, nil
}

// Run performs one check-and-retrain cycle. On a Train decision it
// invokes the trainer, saves the artifact, repoints the current
// model, and only then writes the checksum. The checksum write is
// last on purpose: a crash anywhere before it leaves the old record
// in place, so the next run decides Train again instead of silently
// skipping a needed retrain.
func (e *Engine) Run(ctx context.Context, datasetPath string) (*Result, error) {
	decision, current, err := e.Decide(datasetPath)
	if err != nil {
		return nil, err
	}
	if decision == Skip {
		logrus.Info("no data change detected, retrain not required")
		return &Result{Decision: Skip, Fingerprint: current}, nil
	}
	logrus.Info("data change detected, starting retrain")

	artifact, err := e.Trainer.Train(ctx, datasetPath)
	if err != nil {
		return nil, err
	}
	tag, err := e.Models.Save(artifact)
	if err != nil {
		return nil, err
	}
	if err := e.Models.SetCurrent(tag); err != nil {
		return nil, err
	}
	if err := e.Checksums.Write(current); err != nil {
		return nil, err
	}
	logrus.Infof("retrain complete, current model is %s", tag)
	return &Result{Decision: Train, Fingerprint: current, Tag: tag}, nil
}
