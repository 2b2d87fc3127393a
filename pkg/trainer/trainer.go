package trainer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devsapp/model-retrain-pipeline/pkg/utils"
)

// Trainer produces a model artifact from the current dataset.
// Opaque collaborator: on success it returns the artifact bytes,
// on failure it returns an error and no artifact.
type Trainer interface {
	Train(ctx context.Context, datasetPath string) ([]byte, error)
}

// FailedError means the training process exited abnormally or
// produced no artifact. The run aborts; no state is committed.
type FailedError struct {
	Status int
	Output string
}

func (e *FailedError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("training failed with exit code %d", e.Status)
	}
	return fmt.Sprintf("training failed with exit code %d: %s", e.Status, e.Output)
}

// ScriptTrainer runs a training command which must write its model
// to OutputPath before exiting zero.
type ScriptTrainer struct {
	Command    string
	OutputPath string
	Dir        string
	Timeout    time.Duration
	Runner     utils.RunFunc // nil means real shell
}

func (t *ScriptTrainer) Train(ctx context.Context, datasetPath string) ([]byte, error) {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}
	env := append(os.Environ(), "DATASET_PATH="+datasetPath)

	logrus.Infof("launching training: %s", t.Command)
	var item *utils.ExecItem
	if t.Runner != nil {
		item = t.Runner(t.Command, t.Dir, env)
	} else {
		item = utils.DoExecContext(ctx, t.Command, t.Dir, env)
	}
	if out := strings.TrimSpace(item.Output); out != "" {
		logrus.Infof("training output:\n%s", out)
	}
	if ctx.Err() == context.DeadlineExceeded {
		return nil, &FailedError{Status: item.Status,
			Output: fmt.Sprintf("timed out after %s", t.Timeout)}
	}
	if item.Status != 0 {
		return nil, &FailedError{Status: item.Status, Output: strings.TrimSpace(item.Output)}
	}

	artifact, err := os.ReadFile(t.OutputPath)
	if err != nil {
		return nil, &FailedError{Status: 0,
			Output: fmt.Sprintf("expected model file not found after training: %v", err)}
	}
	return artifact, nil
}
