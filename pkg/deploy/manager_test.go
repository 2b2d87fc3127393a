package deploy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devsapp/model-retrain-pipeline/pkg/utils"
)

// fakeRunner records issued shell commands and plays back canned results.
type fakeRunner struct {
	commands []string
	results  []*utils.ExecItem
}

func (f *fakeRunner) run(shell, dir string, env []string) *utils.ExecItem {
	f.commands = append(f.commands, shell)
	item := f.results[len(f.commands)-1]
	item.Args = []string{"/bin/bash", "-c", shell}
	return item
}

func TestDeployFreshContainer(t *testing.T) {
	runner := &fakeRunner{results: []*utils.ExecItem{
		{Status: 1, Output: "Error: No such container: cicd-sales-app"},
		{Status: 0, Output: "8d1f2a"},
	}}
	m := &Manager{Runtime: "docker", Runner: runner.run}

	err := m.Deploy("cicd-sales-app:latest", "cicd-sales-app", 5000, 5000)
	assert.NoError(t, err)
	assert.Equal(t, []string{
		"docker rm -f cicd-sales-app",
		"docker run -d --name cicd-sales-app -p 5000:5000 cicd-sales-app:latest",
	}, runner.commands)
}

func TestDeployReplacesExistingContainer(t *testing.T) {
	runner := &fakeRunner{results: []*utils.ExecItem{
		{Status: 0, Output: "cicd-sales-app"},
		{Status: 0, Output: "8d1f2a"},
	}}
	m := &Manager{Runtime: "docker", Runner: runner.run}

	err := m.Deploy("cicd-sales-app:v2", "cicd-sales-app", 5000, 5000)
	assert.NoError(t, err)
	// removal always precedes the start
	assert.Equal(t, 2, len(runner.commands))
	assert.Equal(t, "docker rm -f cicd-sales-app", runner.commands[0])
	assert.Contains(t, runner.commands[1], "cicd-sales-app:v2")
}

func TestDeployRemovalFailureIsNotFatal(t *testing.T) {
	runner := &fakeRunner{results: []*utils.ExecItem{
		{Status: 1, Output: "permission denied"},
		{Status: 0, Output: "8d1f2a"},
	}}
	m := &Manager{Runtime: "docker", Runner: runner.run}

	err := m.Deploy("app:latest", "app", 5000, 5000)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(runner.commands))
}

func TestDeployStartFailure(t *testing.T) {
	runner := &fakeRunner{results: []*utils.ExecItem{
		{Status: 0, Output: ""},
		{Status: 125, Output: "docker: Error response from daemon: port is already allocated"},
	}}
	m := &Manager{Runtime: "docker", Runner: runner.run}

	err := m.Deploy("app:latest", "app", 5000, 5000)
	assert.Error(t, err)

	var failure *FailureError
	assert.True(t, errors.As(err, &failure))
	assert.Equal(t, "app", failure.ContainerName)
	assert.Contains(t, failure.Error(), "port is already allocated")
}
