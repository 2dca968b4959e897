package usecase

import (
	"time"

	"github.com/iho/cipherledger/internal/domain"
)

type nopRecorder struct{}

func (nopRecorder) TransferEncoded()                   {}
func (nopRecorder) TransferMaterialized(time.Duration) {}
func (nopRecorder) PipelineFailed(string, domain.Kind) {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
