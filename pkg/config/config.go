package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

var ConfigGlobal = DefaultConfig()

type Config struct {
	// data
	DatasetPath  string `yaml:"datasetPath"`
	ChecksumFile string `yaml:"checksumFile"`

	// models
	ModelsDir string `yaml:"modelsDir"`

	// training
	TrainCommand       string `yaml:"trainCommand"`
	TrainOutput        string `yaml:"trainOutput"` // artifact the train command writes
	TrainTimeoutSecond int32  `yaml:"trainTimeoutSecond"`
	InstallCommand     string `yaml:"installCommand"`

	// image
	BuildCommand string `yaml:"buildCommand"`
	ImageRef     string `yaml:"imageRef"`

	// deploy
	ContainerRuntime string `yaml:"containerRuntime"`
	ContainerName    string `yaml:"containerName"`
	HostPort         int32  `yaml:"hostPort"`
	ServicePort      int32  `yaml:"servicePort"`

	// watch
	WatchIntervalSecond int32 `yaml:"watchIntervalSecond"`
}

func DefaultConfig() *Config {
	return &Config{
		DatasetPath:         "data/sales.csv",
		ChecksumFile:        "data/last_retrain.txt",
		ModelsDir:           "models",
		TrainCommand:        "python3 train_model.py",
		TrainOutput:         "model.pkl",
		TrainTimeoutSecond:  3600,
		InstallCommand:      "pip install -r requirements.txt",
		BuildCommand:        "docker build -t cicd-sales-app:latest .",
		ImageRef:            "cicd-sales-app:latest",
		ContainerRuntime:    "docker",
		ContainerName:       "cicd-sales-app",
		HostPort:            5000,
		ServicePort:         5000,
		WatchIntervalSecond: 300,
	}
}

// InitConfig load config file if present, keep defaults otherwise,
// then apply env overrides.
func InitConfig(fn string) error {
	ConfigGlobal = DefaultConfig()
	if fn != "" {
		body, err := os.ReadFile(fn)
		if err == nil {
			if err := yaml.Unmarshal(body, ConfigGlobal); err != nil {
				return fmt.Errorf("parse config %s: %v", fn, err)
			}
		} else if !os.IsNotExist(err) {
			return err
		}
	}
	if v := os.Getenv(DATASET_PATH); v != "" {
		ConfigGlobal.DatasetPath = v
	}
	if v := os.Getenv(IMAGE_REF); v != "" {
		ConfigGlobal.ImageRef = v
	}
	if v := os.Getenv(CONTAINER_NAME); v != "" {
		ConfigGlobal.ContainerName = v
	}
	return nil
}
