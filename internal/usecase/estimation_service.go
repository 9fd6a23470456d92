package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jumo/backend/internal/domain"
)

// EstimationService turns an uploaded food photo into a provider food:
// store the image, run the vision estimation, then normalize and persist
// through the resolver's shared ingest path. Each estimation gets a
// synthesized provider id since photos are not deduplicable.
type EstimationService struct {
	vision   domain.VisionEstimator
	storage  domain.ImageStore
	resolver *Resolver
	bucket   string
	log      zerolog.Logger
}

// NewEstimationService creates an estimation service.
func NewEstimationService(vision domain.VisionEstimator, storage domain.ImageStore, resolver *Resolver, bucket string, log zerolog.Logger) *EstimationService {
	return &EstimationService{
		vision:   vision,
		storage:  storage,
		resolver: resolver,
		bucket:   bucket,
		log:      log,
	}
}

// EstimateInput is one uploaded photo.
type EstimateInput struct {
	UserID      string
	Image       []byte
	ContentType string
}

// EstimateFromPhoto runs one photo estimation. Model answers of "not
// food" come back as a tagged failure, matching the resolver's contract.
func (s *EstimationService) EstimateFromPhoto(ctx context.Context, input EstimateInput) (ResolveResult, error) {
	estimate, err := s.vision.Estimate(ctx, input.Image, input.ContentType)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", input.UserID).Msg("vision estimation failed")
		return ResolveResult{Reason: ReasonProviderFailure}, nil
	}

	if !estimate.Success {
		reason := estimate.Reason
		if reason == "" {
			reason = ReasonNotFound
		}
		return ResolveResult{Reason: reason}, nil
	}

	key := fmt.Sprintf("%s/%d%s", input.UserID, time.Now().UnixNano(), extensionFor(input.ContentType))
	if err := s.storage.Put(ctx, key, input.Image, input.ContentType); err != nil {
		return ResolveResult{}, fmt.Errorf("upload image: %w", err)
	}

	payload := &domain.ProviderPayload{
		Raw:             estimate.Raw,
		Name:            estimate.Name,
		Description:     estimate.Description,
		Notes:           estimate.Notes,
		ServingSize:     estimate.PortionSize,
		ServingSizeUnit: estimate.PortionSizeUnit,
		Nutriments:      estimate.NutritionPer100g,
		Image: domain.ImageRef{
			Type:   "storage",
			Bucket: s.bucket,
			Path:   key,
		},
	}

	food, err := s.resolver.Ingest(ctx, domain.ProviderAIVision, uuid.NewString(), payload)
	if err != nil {
		return ResolveResult{}, err
	}

	return ResolveResult{Success: true, Data: food}, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/heic":
		return ".heic"
	case "image/webp":
		return ".webp"
	default:
		if _, sub, ok := strings.Cut(contentType, "/"); ok {
			return "." + sub
		}
		return ""
	}
}
