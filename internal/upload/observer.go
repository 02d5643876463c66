package upload

import (
	"context"

	"github.com/briangreenhill/tcxview/tcx"
)

// Observer receives the caller-visible upload signals. For every Process
// call that passes validation, UploadStarted fires first and then exactly
// one of UploadSucceeded or UploadFailed. Cancellation counts as a failure,
// except when the upload is superseded by a newer one for the same key: then
// neither fires and the newer upload reports the outcome.
type Observer interface {
	UploadOpened(ctx context.Context)
	UploadStarted(ctx context.Context, fileName string)
	UploadSucceeded(ctx context.Context, stats *tcx.Statistics)
	UploadFailed(ctx context.Context, message string)
}

// NopObserver ignores all signals.
type NopObserver struct{}

func (NopObserver) UploadOpened(context.Context)                      {}
func (NopObserver) UploadStarted(context.Context, string)             {}
func (NopObserver) UploadSucceeded(context.Context, *tcx.Statistics) {}
func (NopObserver) UploadFailed(context.Context, string)              {}
