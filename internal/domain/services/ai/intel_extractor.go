package ai

import (
	"regexp"
	"strings"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/pkg/logger"
)

// IntelExtractor pulls actionable artifacts out of scammer messages:
// UPI IDs, phone numbers, links, bank accounts and IFSC codes.
type IntelExtractor struct {
	logger *logger.Logger
}

var upiPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b[\w.-]+@(?:paytm|ybl|okhdfcbank|okicici|okaxis|oksbi|apl|ibl|axl)\b`),
	regexp.MustCompile(`(?i)\b\d{10}@(?:paytm|ybl|okhdfcbank|okicici|okaxis|oksbi)\b`),
}

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+91[\s-]?\d{10}`),
	// Indian mobiles start with 6-9, then landlines
	regexp.MustCompile(`\b[6-9]\d{9}\b`),
	regexp.MustCompile(`\b0\d{2,4}[\s-]?\d{6,8}\b`),
}

var linkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?://[^\s]+`),
	regexp.MustCompile(`(?i)bit\.ly/[^\s]+`),
	regexp.MustCompile(`(?i)tinyurl\.com/[^\s]+`),
}

var bankAccountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{9,18}\b`),
	regexp.MustCompile(`(?i)A/C\s*:?\s*\d{9,18}`),
	regexp.MustCompile(`(?i)Account\s*(?:Number|No\.?)?\s*:?\s*\d{9,18}`),
}

// IFSC codes are uppercase by definition, match case-sensitively
var ifscPattern = regexp.MustCompile(`\b[A-Z]{4}0[A-Z0-9]{6}\b`)

var digitRun = regexp.MustCompile(`\d{9,18}`)

var phoneSeparators = regexp.MustCompile(`[\s-]`)

var validMobile = regexp.MustCompile(`^[6-9]\d{9}$`)

var keywordWatchlist = []string{
	"urgent", "verify", "blocked", "expired", "confirm",
	"prize", "won", "claim", "otp", "pin", "password",
	"bank", "account", "transfer", "payment",
}

// NewIntelExtractor creates an extractor
func NewIntelExtractor(log *logger.Logger) *IntelExtractor {
	return &IntelExtractor{
		logger: log.WithComponent("intel-extractor"),
	}
}

// Extract runs every extraction pipeline over a single message and
// returns a deduplicated bundle of validated artifacts.
func (e *IntelExtractor) Extract(message string) models.ArtifactBundle {
	var bundle models.ArtifactBundle

	bundle.UPIIDs = e.extractUPIIDs(message)
	bundle.PhoneNumbers = e.extractPhoneNumbers(message)
	bundle.PhishingLinks = e.extractLinks(message)
	bundle.BankAccounts = e.extractBankAccounts(message)
	bundle.IFSCCodes = dedupe(ifscPattern.FindAllString(message, -1))
	bundle.SuspiciousKeywords = e.extractKeywords(message)

	if total := bundle.Total(); total > 0 {
		e.logger.Debug().Int("artifacts", total).Msg("Artifacts extracted")
	}

	return bundle
}

func (e *IntelExtractor) extractUPIIDs(message string) []string {
	var found []string
	for _, p := range upiPatterns {
		found = append(found, p.FindAllString(message, -1)...)
	}

	var validated []string
	for _, id := range found {
		// Provider handle after the @ must be on the known list
		at := strings.LastIndex(id, "@")
		if at < 0 {
			continue
		}
		validated = append(validated, strings.ToLower(id))
	}
	return dedupe(validated)
}

func (e *IntelExtractor) extractPhoneNumbers(message string) []string {
	var found []string
	for _, p := range phonePatterns {
		found = append(found, p.FindAllString(message, -1)...)
	}

	var validated []string
	for _, phone := range found {
		clean := phoneSeparators.ReplaceAllString(phone, "")
		clean = strings.TrimPrefix(clean, "+91")
		if validMobile.MatchString(clean) {
			validated = append(validated, clean)
		}
	}
	return dedupe(validated)
}

func (e *IntelExtractor) extractLinks(message string) []string {
	var found []string
	for _, p := range linkPatterns {
		found = append(found, p.FindAllString(message, -1)...)
	}
	// Every link a scammer sends is worth keeping. Shorteners and
	// throwaway TLDs are the common case but a clean-looking domain
	// can still be a phishing page. URL dedup ignores case, keeping
	// the first-seen spelling.
	seen := make(map[string]struct{}, len(found))
	var out []string
	for _, link := range found {
		key := strings.ToLower(link)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, link)
	}
	return out
}

func (e *IntelExtractor) extractBankAccounts(message string) []string {
	// Bare digit runs are too noisy on their own, require account
	// context in the message before extracting.
	lower := strings.ToLower(message)
	if !strings.Contains(lower, "account") && !strings.Contains(lower, "a/c") {
		return nil
	}

	var found []string
	for _, p := range bankAccountPatterns {
		for _, m := range p.FindAllString(message, -1) {
			// Keep only the digits, labels like "A/C:" are noise
			if digits := digitRun.FindString(m); digits != "" {
				found = append(found, digits)
			}
		}
	}
	return dedupe(found)
}

func (e *IntelExtractor) extractKeywords(message string) []string {
	lower := strings.ToLower(message)
	var found []string
	for _, kw := range keywordWatchlist {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}
