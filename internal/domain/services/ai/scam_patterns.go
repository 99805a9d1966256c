package ai

import (
	"strings"
	"sync"
	"time"

	"honeypot-lab/pkg/logger"
)

// ScamPatternDB contains the database of known scam keyword patterns
type ScamPatternDB struct {
	mu       sync.RWMutex
	logger   *logger.Logger
	patterns []ScamPattern
}

// ScamPattern represents one scam category with its keyword vocabulary
type ScamPattern struct {
	Category  string    `json:"category"`
	Keywords  []string  `json:"keywords"`
	Weight    float64   `json:"weight"` // 0-1 weight for scoring
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PatternMatch represents a matched category
type PatternMatch struct {
	Category string   `json:"category"`
	Matches  []string `json:"matches"`
	Weight   float64  `json:"weight"`
}

// NewScamPatternDB creates a pattern database seeded with the default
// UPI fraud vocabulary
func NewScamPatternDB(log *logger.Logger) *ScamPatternDB {
	db := &ScamPatternDB{
		logger: log.WithComponent("scam-pattern-db"),
	}
	db.loadDefaultPatterns()
	return db
}

// loadDefaultPatterns loads the default scam categories
func (db *ScamPatternDB) loadDefaultPatterns() {
	db.patterns = []ScamPattern{
		{
			Category: "urgent_action",
			Keywords: []string{
				"urgent", "immediately", "within 24 hours", "account will be blocked",
				"verify now", "confirm details", "update kyc", "expired", "suspended",
				"last chance", "act now", "today only", "limited time",
			},
			Weight:  0.7,
			Enabled: true,
		},
		{
			Category: "fake_prize",
			Keywords: []string{
				"congratulations", "won", "prize", "lottery", "lucky draw",
				"claim now", "winner", "₹", "lakh", "reward", "crore",
				"selected", "free gift", "bonus",
			},
			Weight:  0.8,
			Enabled: true,
		},
		{
			Category: "impersonation",
			Keywords: []string{
				"bank manager", "rbi", "npci", "customer care", "support team",
				"verify your account", "we need", "provide your", "confirm your",
				"official", "department", "government", "authority",
			},
			Weight:  0.75,
			Enabled: true,
		},
		{
			Category: "upi_collection_scam",
			Keywords: []string{
				"send upi id", "paytm number", "gpay id", "phonepe id",
				"receive money", "transfer to", "payment link", "qr code",
				"upi pin", "payment details", "account number",
			},
			Weight:  0.85,
			Enabled: true,
		},
		{
			Category: "refund_scam",
			Keywords: []string{
				"refund", "cashback", "reverse transaction", "return amount",
				"processing refund", "click here", "enter pin", "otp",
				"wrong transaction", "failed payment", "money back",
			},
			Weight:  0.8,
			Enabled: true,
		},
		{
			Category: "remote_access",
			Keywords: []string{
				"anydesk", "teamviewer", "quicksupport", "screen share",
				"download app", "install", "remote access", "technical issue",
				"screen sharing", "remote support", "take control",
			},
			Weight:  0.9,
			Enabled: true,
		},
		{
			Category: "crypto_investment",
			Keywords: []string{
				"investment opportunity", "guaranteed returns", "crypto", "bitcoin",
				"forex trading", "stock tips", "10x returns", "expert advice",
				"trading", "profit", "earn money", "make money fast",
			},
			Weight:  0.75,
			Enabled: true,
		},
	}
}

// Match matches content against all enabled categories. Keyword matching
// is case-insensitive substring search over the lowercased message.
func (db *ScamPatternDB) Match(contentLower string) []PatternMatch {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var matches []PatternMatch
	for _, pattern := range db.patterns {
		if !pattern.Enabled {
			continue
		}

		var matched []string
		for _, keyword := range pattern.Keywords {
			if strings.Contains(contentLower, strings.ToLower(keyword)) {
				matched = append(matched, keyword)
			}
		}

		if len(matched) > 0 {
			matches = append(matches, PatternMatch{
				Category: pattern.Category,
				Matches:  matched,
				Weight:   pattern.Weight,
			})
		}
	}

	return matches
}

// GetAllPatterns returns all patterns
func (db *ScamPatternDB) GetAllPatterns() []ScamPattern {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make([]ScamPattern, len(db.patterns))
	copy(result, db.patterns)
	return result
}

// UpdatePattern replaces the keyword set and weight for a category
func (db *ScamPatternDB) UpdatePattern(category string, keywords []string, weight float64) bool {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.patterns {
		if db.patterns[i].Category == category {
			db.patterns[i].Keywords = keywords
			db.patterns[i].Weight = weight
			db.patterns[i].UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// SetPatternEnabled toggles a category on or off
func (db *ScamPatternDB) SetPatternEnabled(category string, enabled bool) bool {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.patterns {
		if db.patterns[i].Category == category {
			db.patterns[i].Enabled = enabled
			db.patterns[i].UpdatedAt = time.Now()
			return true
		}
	}
	return false
}
