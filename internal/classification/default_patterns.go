package classification

// DefaultPatterns returns the built-in rules used when no custom rules are configured.
func DefaultPatterns() []Pattern {
	return []Pattern{
		// Transfers first: a card payment mentions "card" but is not spending.
		{
			Name:       "Account Transfer",
			Type:       PatternTypeTransfer,
			Regex:      `\b(TRANSFER|XFER|TFR|MOVE\s*MONEY|ACCOUNT\s*TO\s*ACCOUNT)\b`,
			Priority:   100,
			Confidence: 0.85,
		},
		{
			Name:       "Savings Transfer",
			Type:       PatternTypeTransfer,
			Regex:      `\b(TO\s*SAVINGS|FROM\s*SAVINGS|SAVINGS\s*TRANSFER)\b`,
			Priority:   100,
			Confidence: 0.85,
		},
		{
			Name:       "Credit Card Payment",
			Type:       PatternTypeTransfer,
			Regex:      `\b(CC\s*PAYMENT|CREDIT\s*CARD\s*PAY(MENT)?|CARD\s*PAYMENT|AUTOPAY\s*PAYMENT|PAYMENT\s*THANK\s*YOU)\b`,
			Priority:   95,
			Confidence: 0.85,
		},

		// Needs.
		{
			Name:       "Rent",
			Type:       PatternTypeNeed,
			Regex:      `\b(RENT|MORTGAGE|LANDLORD|PROPERTY\s*MGMT|HOA)\b`,
			Priority:   80,
			Confidence: 0.9,
		},
		{
			Name:       "Utilities",
			Type:       PatternTypeNeed,
			Regex:      `\b(ELECTRIC|POWER|GAS\s*CO|WATER|SEWER|UTILIT(Y|IES)|INTERNET|COMCAST|XFINITY|VERIZON|AT&T|T-MOBILE)\b`,
			Priority:   75,
			Confidence: 0.85,
		},
		{
			Name:       "Groceries",
			Type:       PatternTypeNeed,
			Regex:      `\b(GROCER(Y|IES)|SUPERMARKET|WHOLE\s*FOODS|TRADER\s*JOE|SAFEWAY|KROGER|ALDI|COSTCO|PUBLIX)\b`,
			Priority:   70,
			Confidence: 0.85,
		},
		{
			Name:       "Health",
			Type:       PatternTypeNeed,
			Regex:      `\b(PHARMACY|CVS|WALGREENS|DOCTOR|CLINIC|HOSPITAL|DENTAL|MEDICAL)\b`,
			Priority:   70,
			Confidence: 0.85,
		},
		{
			Name:       "Insurance",
			Type:       PatternTypeNeed,
			Regex:      `\b(INSURANCE|GEICO|STATE\s*FARM|PROGRESSIVE|ALLSTATE)\b`,
			Priority:   70,
			Confidence: 0.85,
		},
		{
			Name:       "Transport",
			Type:       PatternTypeNeed,
			Regex:      `\b(FUEL|SHELL|CHEVRON|EXXON|TRANSIT|METRO|PARKING|TOLL)\b`,
			Priority:   60,
			Confidence: 0.75,
		},

		// Wants.
		{
			Name:       "Dining",
			Type:       PatternTypeWant,
			Regex:      `\b(RESTAURANT|CAFE|COFFEE|STARBUCKS|BAR|PIZZA|BURGER|DOORDASH|UBER\s*EATS|GRUBHUB)\b`,
			Priority:   65,
			Confidence: 0.8,
		},
		{
			Name:       "Streaming",
			Type:       PatternTypeWant,
			Regex:      `\b(NETFLIX|SPOTIFY|HULU|DISNEY\s*PLUS|HBO|YOUTUBE\s*PREMIUM|APPLE\s*MUSIC)\b`,
			Priority:   65,
			Confidence: 0.9,
		},
		{
			Name:       "Entertainment",
			Type:       PatternTypeWant,
			Regex:      `\b(CINEMA|THEATER|THEATRE|CONCERT|TICKETMASTER|STEAM|PLAYSTATION|XBOX)\b`,
			Priority:   60,
			Confidence: 0.8,
		},
		{
			Name:       "Shopping",
			Type:       PatternTypeWant,
			Regex:      `\b(AMAZON|AMZN|ETSY|EBAY|BEST\s*BUY|MALL|BOUTIQUE)\b`,
			Priority:   40,
			Confidence: 0.7,
		},
	}
}
