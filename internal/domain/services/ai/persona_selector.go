package ai

import (
	"math/rand"
	"strings"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/pkg/logger"
)

// PersonaSelector picks the victim identity best matched to a scammer's
// approach. Authority and urgency plays go to the elderly persona,
// money-making schemes to the student, everything prize-shaped to the
// busy professional.
type PersonaSelector struct {
	logger   *logger.Logger
	personas []models.PersonaProfile
}

// NewPersonaSelector creates a selector backed by the default catalog
func NewPersonaSelector(log *logger.Logger) *PersonaSelector {
	return &PersonaSelector{
		logger:   log.WithComponent("persona-selector"),
		personas: defaultPersonas(),
	}
}

// Select chooses a persona from the dominant scam type, falling back to
// message vocabulary, then to a random pick.
func (s *PersonaSelector) Select(scamType, message string) models.PersonaProfile {
	if scamType != "" {
		lower := strings.ToLower(scamType)

		if containsAny(lower, "impersonation", "urgent_action", "refund") {
			return s.mustByName("Ramesh Kumar")
		}
		if containsAny(lower, "crypto", "investment", "earn") {
			return s.mustByName("Rahul Verma")
		}
		if containsAny(lower, "prize", "upi_collection") {
			return s.mustByName("Priya Sharma")
		}
	}

	if message != "" {
		lower := strings.ToLower(message)

		if containsAny(lower, "bank", "pension", "account block", "sir", "madam") {
			return s.mustByName("Ramesh Kumar")
		}
		if containsAny(lower, "earn", "money", "crypto", "investment", "bro") {
			return s.mustByName("Rahul Verma")
		}
		if containsAny(lower, "urgent", "meeting", "work", "professional") {
			return s.mustByName("Priya Sharma")
		}
	}

	return s.personas[rand.Intn(len(s.personas))]
}

// ByName returns the persona with the given name
func (s *PersonaSelector) ByName(name string) (models.PersonaProfile, bool) {
	for _, p := range s.personas {
		if p.Name == name {
			return p, true
		}
	}
	return models.PersonaProfile{}, false
}

// All returns every persona in the catalog
func (s *PersonaSelector) All() []models.PersonaProfile {
	result := make([]models.PersonaProfile, len(s.personas))
	copy(result, s.personas)
	return result
}

func (s *PersonaSelector) mustByName(name string) models.PersonaProfile {
	p, ok := s.ByName(name)
	if !ok {
		return s.personas[0]
	}
	return p
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
