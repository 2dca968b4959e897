package usecase

import (
	"context"
	"crypto/rsa"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cipherledger/internal/domain"
	"github.com/iho/cipherledger/internal/infrastructure/encryption"
)

// EncodeUseCase turns a transfer intent into two field-encrypted legs.
type EncodeUseCase struct {
	publicKey *rsa.PublicKey
	idGen     IDGenerator
	recorder  Recorder
	now       func() time.Time
}

// NewEncodeUseCase creates a new EncodeUseCase.
func NewEncodeUseCase(publicKey *rsa.PublicKey, idGen IDGenerator, recorder Recorder) *EncodeUseCase {
	return &EncodeUseCase{
		publicKey: publicKey,
		idGen:     idGen,
		recorder:  recorderOrNop(recorder),
		now:       time.Now,
	}
}

// WithClock replaces the time source used for leg timestamps.
func (uc *EncodeUseCase) WithClock(now func() time.Time) *EncodeUseCase {
	uc.now = now
	return uc
}

type plainLeg struct {
	entryID string
	account string
	debit   decimal.Decimal
	credit  decimal.Decimal
}

// Encode builds the debit and credit legs of intent. Both legs share one
// timestamp and get distinct entry identifiers.
//
// Both legs carry the sender account; ReceiverAccount is not recorded.
func (uc *EncodeUseCase) Encode(ctx context.Context, intent domain.TransferIntent) (domain.EncryptedFieldBatch, error) {
	timestamp := uc.now().UTC().Format(TimeLayout)

	legs := [domain.LegCount]plainLeg{
		domain.DebitLeg: {
			entryID: uc.idGen.Generate(),
			account: intent.SenderAccount,
			debit:   intent.Amount,
			credit:  decimal.Zero,
		},
		domain.CreditLeg: {
			entryID: uc.idGen.Generate(),
			account: intent.SenderAccount,
			debit:   decimal.Zero,
			credit:  intent.Amount,
		},
	}

	batch := domain.EncryptedFieldBatch{Records: make([]domain.EncryptedFieldRecord, 0, domain.LegCount)}
	for _, leg := range legs {
		rec, err := uc.encryptLeg(leg, timestamp)
		if err != nil {
			uc.recorder.PipelineFailed(StageEncode, domain.KindOf(err))
			return domain.EncryptedFieldBatch{}, err
		}
		batch.Records = append(batch.Records, rec)
	}

	uc.recorder.TransferEncoded()
	zerolog.Ctx(ctx).Debug().
		Str("debit_entry_id", legs[domain.DebitLeg].entryID).
		Str("credit_entry_id", legs[domain.CreditLeg].entryID).
		Msg("transfer encoded")

	return batch, nil
}

func (uc *EncodeUseCase) encryptLeg(leg plainLeg, timestamp string) (domain.EncryptedFieldRecord, error) {
	var (
		rec domain.EncryptedFieldRecord
		err error
	)

	fields := []struct {
		dst   *string
		value string
	}{
		{&rec.EntryID, leg.entryID},
		{&rec.Account, leg.account},
		{&rec.Debit, domain.PlainAmount(leg.debit)},
		{&rec.Credit, domain.PlainAmount(leg.credit)},
		{&rec.Time, timestamp},
	}

	for _, f := range fields {
		*f.dst, err = encryption.EncryptField(f.value, uc.publicKey)
		if err != nil {
			return domain.EncryptedFieldRecord{}, err
		}
	}

	return rec, nil
}
