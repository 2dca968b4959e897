package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/iho/cipherledger/internal/domain"
)

// IntakeUseCase encodes a transfer intent and relays it for materialization.
type IntakeUseCase struct {
	encoder  *EncodeUseCase
	relay    Relay
	recorder Recorder
}

// NewIntakeUseCase creates a new IntakeUseCase.
func NewIntakeUseCase(encoder *EncodeUseCase, relay Relay, recorder Recorder) *IntakeUseCase {
	return &IntakeUseCase{
		encoder:  encoder,
		relay:    relay,
		recorder: recorderOrNop(recorder),
	}
}

// Submit encodes intent and makes exactly one relay attempt. The relay
// response is returned as received. Only transport failures are recorded
// here; errors from an in-process materializer are recorded where they occur.
func (uc *IntakeUseCase) Submit(ctx context.Context, intent domain.TransferIntent) (json.RawMessage, error) {
	batch, err := uc.encoder.Encode(ctx, intent)
	if err != nil {
		return nil, err
	}

	resp, err := uc.relay.Forward(ctx, batch)
	if err != nil {
		if errors.Is(err, domain.ErrRelay) {
			uc.recorder.PipelineFailed(StageRelay, domain.KindRelay)
		}
		return nil, err
	}

	return resp, nil
}
