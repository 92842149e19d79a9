package repository

import (
	"context"

	"github.com/mizuki-dev/subrefine/internal/service/pipeline"
)

// RunRepository persists the artifacts of a pipeline run: the run row, its
// segments, its suggestions, and the dictionary application log.
type RunRepository interface {
	SaveRun(ctx context.Context, mediaName string, result *pipeline.Result) error
}
