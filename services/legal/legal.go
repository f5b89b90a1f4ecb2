package legal

import (
	"time"

	"helpr/models"
)

// GetLegalSections returns all legal documents.
func (s *DefaultLegalService) GetLegalSections() []models.LegalSection {
	now := time.Now().UTC().Format(time.RFC3339)

	return []models.LegalSection{
		{
			ID:       "tos",
			Title:    "Terms of Service",
			Summary:  "These terms govern your use of the Helpr platform.",
			Content:  generateTermsOfService(),
			Audience: models.AudienceUser,
			Version:  "v1.0",
			Updated:  now,
		},
		{
			ID:       "privacy",
			Title:    "Privacy Policy",
			Summary:  "How Helpr collects and uses personal data.",
			Content:  generatePrivacyPolicy(),
			Audience: models.AudienceBoth,
			Version:  "v1.0",
			Updated:  now,
		},
		{
			ID:       "conduct",
			Title:    "Code of Conduct",
			Summary:  "Expected behavior for customers and helprs.",
			Content:  generateCodeOfConduct(),
			Audience: models.AudienceBoth,
			Version:  "v1.0",
			Updated:  now,
		},
		{
			ID:       "cancellation",
			Title:    "Offer & Cancellation Policy",
			Summary:  "How offers, acceptance and cancellations work on Helpr.",
			Content:  generateCancellationPolicy(),
			Audience: models.AudienceBoth,
			Version:  "v1.0",
			Updated:  now,
		},
	}
}

// GetLegalSectionsFor returns legal documents relevant to the specified audience.
func (s *DefaultLegalService) GetLegalSectionsFor(audience string) []models.LegalSection {
	all := s.GetLegalSections()
	var filtered []models.LegalSection

	for _, section := range all {
		if section.Audience == models.AudienceBoth || section.Audience == audience {
			filtered = append(filtered, section)
		}
	}
	return filtered
}

func generateTermsOfService() string {
	return `Welcome to Helpr. By accessing or using our platform, you agree to be bound by these Terms of Service...

1. Eligibility: You must be 18+ to use Helpr.
2. Platform Use: Helpr connects customers with independent service providers ("helprs").
3. Pricing: Customers name their price; helprs respond with offers. An accepted offer forms an agreement between the two parties.
4. Liability: Helpr is a facilitator; providers are independent.
5. Disputes: Disputes must be reported within 48 hours after service.

Full details available on our website.`
}

func generatePrivacyPolicy() string {
	return `Helpr values your privacy. We collect minimal personal data only as required to provide you with a seamless experience...

1. Data We Collect: Name, email, service addresses, device push tokens.
2. How We Use It: Matching open requests to nearby helprs, notifications, communication.
3. Third Parties: Google (maps, speech), Firebase (push delivery).
4. Rights: You can request data deletion anytime.

See our full privacy terms online.`
}

func generateCodeOfConduct() string {
	return `All Helpr customers and helprs agree to:

- Be respectful and professional.
- Avoid discriminatory or harassing behavior.
- Respect time and privacy of others.
- Follow all applicable laws.

Violations may result in suspension or removal.`
}

func generateCancellationPolicy() string {
	return `1. Offers are not binding until the customer accepts one.
2. A helpr may withdraw an offer at any time before acceptance.
3. A helpr may release a confirmed job before starting it; the request returns to the open pool.
4. Once a helpr is on the way or work has begun, the job can no longer be released in the app. Contact support.
5. Customers may edit or delete a request only while it is still looking for helprs.`
}
