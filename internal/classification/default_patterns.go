package classification

// DefaultPatterns returns the built-in direction markers and non-transaction classes.
func DefaultPatterns() []Pattern {
	return []Pattern{
		// Non-transaction notices are checked first
		{
			Name:     "OTP",
			Type:     PatternTypeIgnore,
			Regex:    `\b(?:otp|one[\s-]time[\s-]password|verification code)\s+(?:is|for)\b|\bis\s+(?:your|the)\s+(?:otp|one[\s-]time[\s-]password|verification code)\b|\b\d{4,8}\s+is\s+(?:your\s+)?(?:otp|verification code)\b`,
			Priority: 100,
		},
		{
			Name:     "Invoice Raised",
			Type:     PatternTypeIgnore,
			Regex:    `\binvoice of\b|\bis raised\b|\bpay at\b`,
			Priority: 95,
		},
		{
			Name:     "Card Payment Received",
			Type:     PatternTypeIgnore,
			Regex:    `\bpayment\b.{0,80}?\breceived\s+towards\s+your\b.{0,40}?\bcard\b`,
			Priority: 95,
		},
		{
			Name:     "Aggregator Payment Successful",
			Type:     PatternTypeIgnore,
			Regex:    `\bpayment\b.{0,80}?\bis\s+successful\b`,
			Priority: 90,
		},
		{
			Name:     "Dues Reminder",
			Type:     PatternTypeIgnore,
			Regex:    `\bis due\b|\bdue date\b|\bamount due\b`,
			Priority: 85,
		},
		{
			Name:     "Collect Request",
			Type:     PatternTypeIgnore,
			Regex:    `\bhas requested money\b|\brequested money from you\b`,
			Priority: 85,
		},
		{
			Name:     "Promotional",
			Type:     PatternTypeIgnore,
			Regex:    `\b(?:pre-?approved|apply now|limited period offer|exclusive offer|click here to|upgrade now|loan offer|get up ?to|hurry)\b`,
			Priority: 80,
		},

		// Direction markers
		{
			Name:     "Debit",
			Type:     PatternTypeDebit,
			Regex:    `\b(?:debited|spent|paid|withdrawn|purchase of|debit of)\b`,
			Priority: 50,
		},
		{
			Name:     "Credit",
			Type:     PatternTypeCredit,
			Regex:    `\b(?:credited|received|deposited|credit of)\b`,
			Priority: 50,
		},
	}
}
