package services

import "strings"

// DefaultContractType is returned when nothing in the text gives a usable
// signal about the category.
const DefaultContractType = "Contract"

const previewMaxLength = 200

type contractCategory struct {
	name     string
	keywords []string
}

// Categories are scored in order and ties go to the earlier entry, so this
// must stay a slice: a map would make tie-breaking depend on iteration order.
var contractCategories = []contractCategory{
	{"Employment Contract", []string{
		"employee", "employer", "salary", "position", "working hours",
		"employment relationship", "annual leave",
	}},
	{"Contract for Work", []string{
		"contractor", "commissioning party", "completion of work",
		"commissioned work", "work fee", "deliverable",
	}},
	{"Lease Contract", []string{
		"landlord", "tenant", "lease", "rent", "leased premises",
		"commercial space", "apartment",
	}},
	{"Loan Contract", []string{
		"lender", "borrower", "interest", "interest rate",
		"repayment", "credit",
	}},
	{"Sales Contract", []string{
		"seller", "buyer", "purchase price", "transfer of ownership",
		"sale", "purchase",
	}},
	{"Service Contract", []string{
		"service provider", "service user", "services rendered",
		"provision of services", "service fee",
	}},
	{"Copyright Contract", []string{
		"author", "commissioner", "copyrighted work", "copyright",
		"intellectual property", "royalty",
	}},
	{"Business Cooperation Contract", []string{
		"cooperation", "business partners", "joint project",
		"business coordination",
	}},
	{"Assignment Contract", []string{
		"assignor", "assignee", "receivable", "transfer of claim",
		"assignment",
	}},
	{"Accession Contract", []string{
		"accession", "joining", "affiliation",
	}},
}

// DetectContractType names the category a contract belongs to. An explicit
// title in the first lines is higher-confidence evidence than any keyword
// score, so it always wins.
func DetectContractType(content string) string {
	lower := strings.ToLower(content)
	firstLines := titleLines(content)

	for _, line := range firstLines {
		lineLower := strings.ToLower(strings.TrimSpace(line))
		if !strings.Contains(lineLower, "contract") {
			continue
		}
		for _, category := range contractCategories {
			if strings.Contains(lineLower, strings.ToLower(category.name)) {
				return category.name
			}
		}
	}

	bestScore := 0
	bestName := ""
	for _, category := range contractCategories {
		score := 0
		for _, keyword := range category.keywords {
			if strings.Contains(lower, keyword) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestName = category.name
		}
	}
	if bestScore >= 2 {
		return bestName
	}

	// A title line we do not recognize is still better than nothing, as long
	// as it is short enough to plausibly be one.
	for _, line := range firstLines {
		if strings.Contains(strings.ToLower(line), "contract") {
			cleaned := titleCase(strings.TrimSpace(line))
			if len(cleaned) < 100 {
				return cleaned
			}
		}
	}

	return DefaultContractType
}

// titleLines returns the first three lines, where a title would be.
func titleLines(content string) []string {
	lines := strings.Split(content, "\n")
	if len(lines) > 3 {
		lines = lines[:3]
	}
	return lines
}

func titleCase(text string) string {
	words := strings.Fields(strings.ToLower(text))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// PreviewText builds a short excerpt for display next to the download link.
// The first line is assumed to be the title and skipped. Truncation counts
// runes, not bytes, so multi-byte text is never cut mid-character.
func PreviewText(content string, maxLength int) string {
	if maxLength < 3 {
		maxLength = previewMaxLength
	}

	lines := make([]string, 0)
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	if len(lines) > 1 {
		lines = lines[1:]
	}
	if len(lines) > 5 {
		lines = lines[:5]
	}

	preview := strings.Join(lines, " ")
	if runes := []rune(preview); len(runes) > maxLength {
		preview = string(runes[:maxLength-3]) + "..."
	}
	return preview
}
