package listing

import (
	"context"
	"fmt"
	"strings"

	"cadre-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service covers the listing operations the order core needs around it:
// creation by a seller and moderation approval.
type Service interface {
	CreateListing(ctx context.Context, input CreateListingInput) (*Listing, error)
	GetListing(ctx context.Context, id string) (*Listing, error)
	ApproveListing(ctx context.Context, id string) (*Listing, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateListing(ctx context.Context, input CreateListingInput) (*Listing, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateListing"),
		zap.String("owner_id", input.OwnerID),
	)

	if err := validateInput(input); err != nil {
		log.Warn("invalid listing input", zap.Error(err))
		return nil, err
	}

	l := &Listing{
		ID:              uuid.New().String(),
		OwnerID:         input.OwnerID,
		Name:            strings.TrimSpace(input.Name),
		Description:     input.Description,
		ItemType:        strings.ToLower(strings.TrimSpace(input.ItemType)),
		Price:           input.Price,
		InitialQuantity: input.Quantity,
		CurrentQuantity: input.Quantity,
		SoldQuantity:    0,
		Status:          StatusPending,
	}

	if l.IsClothing() {
		l.Sizes = input.Sizes
	} else {
		l.Dimensions = input.Dimensions
		l.Width = input.Width
		l.Height = input.Height
		if input.Dimensions == Dimensions3D {
			l.Depth = input.Depth
		}
	}

	if err := s.repo.Create(ctx, l); err != nil {
		log.Error("failed to create listing", zap.Error(err))
		return nil, err
	}

	log.Info("listing created",
		zap.String("listing_id", l.ID),
		zap.String("listing_type", string(l.Type())),
	)
	return l, nil
}

func (s *service) GetListing(ctx context.Context, id string) (*Listing, error) {
	return s.repo.Get(ctx, id)
}

// ApproveListing is the moderation step: Pending -> For Sale.
func (s *service) ApproveListing(ctx context.Context, id string) (*Listing, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if l.Status != StatusPending || !CanTransition(l.Status, StatusForSale) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.Status, StatusForSale)
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusForSale); err != nil {
		return nil, err
	}
	l.Status = StatusForSale

	logger.FromCtx(ctx).Info("listing approved", zap.String("listing_id", id))
	return l, nil
}

func validateInput(input CreateListingInput) error {
	if strings.TrimSpace(input.OwnerID) == "" {
		return fmt.Errorf("%w: owner is required", ErrInvalidListing)
	}
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidListing)
	}
	if input.Price.LessThan(MinPrice) {
		return fmt.Errorf("%w: price must be at least %s", ErrInvalidListing, MinPrice)
	}
	if !input.Price.Equal(input.Price.Truncate(PriceScale)) {
		return fmt.Errorf("%w: price must have at most %d decimal places", ErrInvalidListing, PriceScale)
	}
	if input.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidListing)
	}

	switch input.Dimensions {
	case "", Dimensions2D:
	case Dimensions3D:
		if !input.Depth.Valid {
			return fmt.Errorf("%w: depth is required for 3D items", ErrInvalidListing)
		}
	default:
		return fmt.Errorf("%w: dimensions must be 2D or 3D", ErrInvalidListing)
	}

	return nil
}
