package legal

import (
	"helpr/models"
)

type LegalService interface {
	GetLegalSections() []models.LegalSection
	GetLegalSectionsFor(audience string) []models.LegalSection
}

// DefaultLegalService is the production implementation.
type DefaultLegalService struct{}
