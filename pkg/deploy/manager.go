package deploy

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/devsapp/model-retrain-pipeline/pkg/utils"
)

// FailureError means the replacement container did not start. The
// old container, if already removed, is not restored; the service
// stays down until the next deploy.
type FailureError struct {
	ContainerName string
	Output        string
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("deploy failure: container %s did not start: %s",
		e.ContainerName, e.Output)
}

// Manager replaces a running service container in place: remove the
// old one by name, then start a new one from the image. Not a
// rolling update; the service is down between the two steps.
type Manager struct {
	Runtime string        // container runtime binary, e.g. "docker"
	Runner  utils.RunFunc // nil means real shell

	// ProbeTimeoutMs waits this long for the service port after a
	// start; 0 disables the probe. Reachability is logged only.
	ProbeTimeoutMs int
}

func (m *Manager) runner() utils.RunFunc {
	if m.Runner != nil {
		return m.Runner
	}
	return utils.DoExec
}

func (m *Manager) Deploy(imageRef, containerName string, hostPort, servicePort int32) error {
	run := m.runner()

	// removal is idempotent: a missing container is the normal case
	// on first deploy, and any other removal failure surfaces via
	// the name conflict when the start runs.
	rm := run(fmt.Sprintf("%s rm -f %s", m.Runtime, containerName), "", nil)
	if rm.Status != 0 {
		out := strings.TrimSpace(rm.Output)
		if strings.Contains(out, "No such container") {
			logrus.Infof("no existing container %s to remove", containerName)
		} else {
			logrus.Warnf("remove container %s: %s", containerName, out)
		}
	} else {
		logrus.Infof("removed existing container %s", containerName)
	}

	start := run(fmt.Sprintf("%s run -d --name %s -p %d:%d %s",
		m.Runtime, containerName, hostPort, servicePort, imageRef), "", nil)
	if start.Status != 0 {
		return &FailureError{
			ContainerName: containerName,
			Output:        strings.TrimSpace(start.Output),
		}
	}
	logrus.Infof("container %s running image %s on port %d", containerName, imageRef, hostPort)

	if m.ProbeTimeoutMs > 0 {
		if utils.PortCheck(fmt.Sprint(hostPort), m.ProbeTimeoutMs) {
			logrus.Infof("service reachable on port %d", hostPort)
		} else {
			logrus.Warnf("service not reachable on port %d yet", hostPort)
		}
	}
	return nil
}
