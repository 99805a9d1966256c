package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestExtractor(t *testing.T) *IntelExtractor {
	t.Helper()
	return NewIntelExtractor(newTestLogger())
}

func TestExtract_PhoneNumbers(t *testing.T) {
	extractor := newTestExtractor(t)

	bundle := extractor.Extract("Call me at 9876543210 or +91 8765432109")

	assert.ElementsMatch(t, []string{"9876543210", "8765432109"}, bundle.PhoneNumbers)
}

func TestExtract_PhoneNumberRejectsInvalid(t *testing.T) {
	extractor := newTestExtractor(t)

	// Indian mobiles start with 6-9
	bundle := extractor.Extract("my number is 1234567890")

	assert.Empty(t, bundle.PhoneNumbers)
}

func TestExtract_UPIIDs(t *testing.T) {
	extractor := newTestExtractor(t)

	bundle := extractor.Extract("Send the money to Winner2024@paytm or scammer@ybl today")

	assert.ElementsMatch(t, []string{"winner2024@paytm", "scammer@ybl"}, bundle.UPIIDs)
}

func TestExtract_UPIIgnoresUnknownProvider(t *testing.T) {
	extractor := newTestExtractor(t)

	bundle := extractor.Extract("contact me at someone@gmail.com")

	assert.Empty(t, bundle.UPIIDs)
}

func TestExtract_Links(t *testing.T) {
	extractor := newTestExtractor(t)

	bundle := extractor.Extract("Click https://kyc-verify.xyz/form or bit.ly/3xyz to proceed")

	assert.Contains(t, bundle.PhishingLinks, "https://kyc-verify.xyz/form")
	assert.Contains(t, bundle.PhishingLinks, "bit.ly/3xyz")
}

func TestExtract_LinksDedupeIgnoresCase(t *testing.T) {
	extractor := newTestExtractor(t)

	bundle := extractor.Extract("open http://bit.ly/abc or HTTP://BIT.LY/abc now")

	// First-seen spelling survives, full URL and the bare shortener form
	assert.ElementsMatch(t, []string{"http://bit.ly/abc", "bit.ly/abc"}, bundle.PhishingLinks)
}

func TestExtract_BankAccountsRequireContext(t *testing.T) {
	extractor := newTestExtractor(t)

	// A bare digit run without account context stays out
	noContext := extractor.Extract("the code is 123456789012")
	assert.Empty(t, noContext.BankAccounts)

	withContext := extractor.Extract("Transfer to account number 123456789012")
	assert.Equal(t, []string{"123456789012"}, withContext.BankAccounts)

	labeled := extractor.Extract("A/C: 987654321098 at our branch")
	assert.Equal(t, []string{"987654321098"}, labeled.BankAccounts)
}

func TestExtract_IFSCCodes(t *testing.T) {
	extractor := newTestExtractor(t)

	bundle := extractor.Extract("Use IFSC HDFC0001234 for the transfer")
	assert.Equal(t, []string{"HDFC0001234"}, bundle.IFSCCodes)

	// IFSC codes are uppercase, lowercase text should not match
	lower := extractor.Extract("use ifsc hdfc0001234")
	assert.Empty(t, lower.IFSCCodes)
}

func TestExtract_SuspiciousKeywords(t *testing.T) {
	extractor := newTestExtractor(t)

	bundle := extractor.Extract("URGENT: verify your account or it will be blocked")

	assert.Contains(t, bundle.SuspiciousKeywords, "urgent")
	assert.Contains(t, bundle.SuspiciousKeywords, "verify")
	assert.Contains(t, bundle.SuspiciousKeywords, "account")
	assert.Contains(t, bundle.SuspiciousKeywords, "blocked")
}

func TestExtract_Deduplicates(t *testing.T) {
	extractor := newTestExtractor(t)

	bundle := extractor.Extract("9876543210 again 9876543210, pay winner@ybl or winner@ybl")

	assert.Equal(t, []string{"9876543210"}, bundle.PhoneNumbers)
	assert.Equal(t, []string{"winner@ybl"}, bundle.UPIIDs)
}

func TestArtifactBundleTotal(t *testing.T) {
	extractor := newTestExtractor(t)

	bundle := extractor.Extract("Pay winner@ybl, call 9876543210, urgent prize claim")

	// Keywords are context, not counted as intelligence
	assert.Equal(t, 2, bundle.Total())
	assert.NotEmpty(t, bundle.SuspiciousKeywords)
}
