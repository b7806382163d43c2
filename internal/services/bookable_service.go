package services

import (
	"context"

	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
	"travelcheckout/internal/repositories"
)

// BookableService resolves reference data by subject kind.
type BookableService struct {
	Repo repositories.BookableRepository
}

func (s BookableService) Get(ctx context.Context, kind domain.SubjectKind, refs models.ExternalRefs) (models.Bookable, error) {
	switch kind {
	case domain.SubjectRoom:
		return s.Repo.GetRoom(ctx, refs.HotelID, refs.RoomID)
	case domain.SubjectTour:
		return s.Repo.GetTour(ctx, refs.TourID)
	}
	return models.Bookable{}, domain.ValidationError{Field: "kind", Msg: "unknown subject kind"}
}
