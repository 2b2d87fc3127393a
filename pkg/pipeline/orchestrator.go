package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/devsapp/model-retrain-pipeline/pkg/config"
	"github.com/devsapp/model-retrain-pipeline/pkg/gate"
	"github.com/devsapp/model-retrain-pipeline/pkg/utils"
	"github.com/devsapp/model-retrain-pipeline/pkg/version"
)

// Step is one unit of the pipeline. Run returns nil on success; any
// error aborts the remaining steps.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Orchestrator executes steps strictly in order, short-circuiting on
// the first failure and surfacing that step's error verbatim. It
// holds no state across runs; everything persistent lives in the
// checksum and model stores.
type Orchestrator struct {
	Steps []Step
}

func (o *Orchestrator) Run(ctx context.Context) error {
	log := logrus.WithField("runId", uuid.NewString())
	for _, step := range o.Steps {
		log.Infof("step %s start", step.Name)
		if err := step.Run(ctx); err != nil {
			log.Errorf("step %s failed: %s", step.Name, err)
			return err
		}
		log.Infof("step %s done", step.Name)
	}
	return nil
}

// CommandStep shells out and fails with the command's combined
// output when it exits nonzero.
func CommandStep(name, command string, runner utils.RunFunc) Step {
	return Step{
		Name: name,
		Run: func(ctx context.Context) error {
			var item *utils.ExecItem
			if runner != nil {
				item = runner(command, "", nil)
			} else {
				item = utils.DoExecContext(ctx, command, "", nil)
			}
			if item.Status != 0 {
				return fmt.Errorf("%s failed with exit code %d: %s",
					name, item.Status, strings.TrimSpace(item.Output))
			}
			return nil
		},
	}
}

// RetrainStep runs the gate's check-and-retrain cycle.
func RetrainStep(engine *gate.Engine, datasetPath string) Step {
	return Step{
		Name: config.STEP_RETRAIN,
		Run: func(ctx context.Context) error {
			_, err := engine.Run(ctx, datasetPath)
			return err
		},
	}
}

// BuildStep packages the current model into an image. The build must
// see the committed current pointer, so the step resolves it first
// and hands the artifact path to the build command via MODEL_PATH.
func BuildStep(cfg *config.Config, models *version.Store, runner utils.RunFunc) Step {
	return Step{
		Name: config.STEP_BUILD,
		Run: func(ctx context.Context) error {
			tag, ok, err := models.Current()
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("no model trained yet, nothing to build")
			}
			env := append(os.Environ(), "MODEL_PATH="+models.Path(tag))
			var item *utils.ExecItem
			if runner != nil {
				item = runner(cfg.BuildCommand, "", env)
			} else {
				item = utils.DoExecContext(ctx, cfg.BuildCommand, "", env)
			}
			if item.Status != 0 {
				return fmt.Errorf("%s failed with exit code %d: %s",
					config.STEP_BUILD, item.Status, strings.TrimSpace(item.Output))
			}
			logrus.Infof("image %s built from %s", cfg.ImageRef, tag)
			return nil
		},
	}
}

// New assembles the standard run: install, retrain, build.
func New(cfg *config.Config, engine *gate.Engine, runner utils.RunFunc) *Orchestrator {
	return &Orchestrator{Steps: []Step{
		CommandStep(config.STEP_INSTALL, cfg.InstallCommand, runner),
		RetrainStep(engine, cfg.DatasetPath),
		BuildStep(cfg, engine.Models, runner),
	}}
}
