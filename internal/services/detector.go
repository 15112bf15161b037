package services

import (
	"strings"
	"unicode/utf8"
)

// The LLM is prompted to wrap any drafted contract between these markers so
// it can be split off from the conversational answer.
const (
	StartMarker = "[CONTRACT_START]"
	EndMarker   = "[CONTRACT_END]"
)

// Detection is the outcome of scanning an LLM response for an embedded
// contract. When Found is false, Contract is empty and CleanResponse is the
// input untouched.
type Detection struct {
	Found         bool
	Contract      string
	CleanResponse string
}

// DetectContract extracts a marker-delimited contract from an LLM response.
// Missing or inconsistent markers are not an error: the response is returned
// as-is with Found=false, and the caller treats it as a plain answer.
func DetectContract(response string) Detection {
	start := strings.Index(response, StartMarker)
	end := strings.Index(response, EndMarker)
	if start < 0 || end < 0 || end < start+len(StartMarker) {
		return Detection{CleanResponse: response}
	}

	contract := strings.TrimSpace(response[start+len(StartMarker) : end])

	// Trailing spaces before the start marker would otherwise double up with
	// the space that usually follows the end marker.
	before := strings.TrimRight(response[:start], " \t")
	after := response[end+len(EndMarker):]
	clean := dropBlankLines(strings.TrimSpace(before + after))

	return Detection{Found: true, Contract: contract, CleanResponse: clean}
}

func dropBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

var contractIndicators = []string{
	"contract",
	"article",
	"party",
	"concluded",
	"agreement",
}

// ValidateContract rejects extracted text that is too short or does not read
// like a contract. At least two of the indicator terms must appear. The
// minimum length is counted in runes so multi-byte text is not over-counted.
func ValidateContract(content string) bool {
	if utf8.RuneCountInString(strings.TrimSpace(content)) < 100 {
		return false
	}

	lower := strings.ToLower(content)
	matches := 0
	for _, indicator := range contractIndicators {
		if strings.Contains(lower, indicator) {
			matches++
		}
	}

	return matches >= 2
}
