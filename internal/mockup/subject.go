package mockup

// Band is a strictness policy band.
type Band string

const (
	BandCreative Band = "creative"
	BandBalanced Band = "balanced"
	BandStrict   Band = "strict"
)

const (
	strictSubject   = "CRITICAL: PRESERVE THE EXACT FOOD ITEM FROM THE SOURCE IMAGE. Do not change the food's shape, ingredients, or plating. Only change the background, lighting, and surface."
	balancedSubject = "Keep the main food identity consistent. You may clean up minor imperfections but keep the core plating and ingredients recognizable."
	creativeSubject = "You have creative freedom to reimagine the food presentation. You can adjust the plating and add garnishes to match the style, but keep the core dish identity."
)

// BandFor maps strictness to its band: >=80 strict, 50-79 balanced, <50 creative.
func BandFor(strictness int) Band {
	switch {
	case strictness >= 80:
		return BandStrict
	case strictness >= 50:
		return BandBalanced
	default:
		return BandCreative
	}
}

// SubjectInstruction returns the fixed subject-preservation clause for strictness.
func SubjectInstruction(strictness int) string {
	switch BandFor(strictness) {
	case BandStrict:
		return strictSubject
	case BandBalanced:
		return balancedSubject
	default:
		return creativeSubject
	}
}
