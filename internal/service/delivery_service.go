package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"mealportal/internal/model"
	"mealportal/internal/repository"

	"github.com/google/uuid"
)

// PhotoStore uploads a proof photo and returns its public URL. The S3
// uploader satisfies this; a nil store keeps the bytes in Postgres.
type PhotoStore interface {
	UploadFile(ctx context.Context, file io.Reader, objectKey string) (string, error)
}

// DeliveryService captures photographic proof-of-delivery. Capture never
// mutates request status; the deliver transition calls it inside its own
// transaction, so the proof commits together with the COMPLETED edge or
// not at all.
type DeliveryService interface {
	Capture(ctx context.Context, requestID uuid.UUID, imageBytes []byte, uploadedBy string, capturedAt time.Time) (*model.DeliveryProof, error)
	GetProof(ctx context.Context, requestID uuid.UUID) (*model.DeliveryProof, error)
}

type deliveryService struct {
	proofs repository.ProofRepository
	photos PhotoStore
}

func NewDeliveryService(proofs repository.ProofRepository, photos PhotoStore) DeliveryService {
	return &deliveryService{proofs: proofs, photos: photos}
}

func (s *deliveryService) Capture(ctx context.Context, requestID uuid.UUID, imageBytes []byte, uploadedBy string, capturedAt time.Time) (*model.DeliveryProof, error) {
	if len(imageBytes) == 0 {
		return nil, model.NewValidationError("proof_image")
	}

	sum := sha256.Sum256(imageBytes)
	proof := &model.DeliveryProof{
		RequestID:  requestID,
		PhotoHash:  hex.EncodeToString(sum[:]),
		UploadedBy: uploadedBy,
		CapturedAt: capturedAt,
	}

	if s.photos != nil {
		objectKey := fmt.Sprintf("delivery-proofs/%s/%d.jpg", requestID, capturedAt.Unix())
		url, err := s.photos.UploadFile(ctx, bytes.NewReader(imageBytes), objectKey)
		if err != nil {
			return nil, fmt.Errorf("failed to upload proof photo: %w", err)
		}
		proof.PhotoURL = url
	} else {
		proof.ImageData = imageBytes
	}

	if err := s.proofs.Save(ctx, proof); err != nil {
		return nil, fmt.Errorf("failed to store delivery proof: %w", err)
	}

	return proof, nil
}

func (s *deliveryService) GetProof(ctx context.Context, requestID uuid.UUID) (*model.DeliveryProof, error) {
	return s.proofs.FindByRequestID(ctx, requestID)
}
