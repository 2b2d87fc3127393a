package config

// env override keys
const (
	DATASET_PATH   = "DATASET_PATH"
	IMAGE_REF      = "IMAGE_REF"
	CONTAINER_NAME = "CONTAINER_NAME"
)

// pipeline step names
const (
	STEP_INSTALL = "install"
	STEP_RETRAIN = "retrain"
	STEP_BUILD   = "build"
)
