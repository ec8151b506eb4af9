package repository

import (
	"context"
	"errors"

	"mealportal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProofRepository stores delivery proofs. Save is only reached from inside
// the deliver transition, after it has been authorized and found legal; a
// failed deliver rolls the write back with the transaction, so a committed
// row always belongs to a completed request and is never touched again.
type ProofRepository interface {
	Save(ctx context.Context, proof *model.DeliveryProof) error
	FindByRequestID(ctx context.Context, requestID uuid.UUID) (*model.DeliveryProof, error)
}

type proofRepository struct {
	db *gorm.DB
}

func NewProofRepository(db *gorm.DB) ProofRepository {
	return &proofRepository{db: db}
}

func (r *proofRepository) Save(ctx context.Context, proof *model.DeliveryProof) error {
	db := GetDB(ctx, r.db)

	var existing model.DeliveryProof
	err := db.First(&existing, "request_id = ?", proof.RequestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return db.Create(proof).Error
		}
		return err
	}

	proof.ID = existing.ID
	return db.Save(proof).Error
}

func (r *proofRepository) FindByRequestID(ctx context.Context, requestID uuid.UUID) (*model.DeliveryProof, error) {
	var proof model.DeliveryProof
	if err := GetDB(ctx, r.db).First(&proof, "request_id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &proof, nil
}
