package tabular

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeSex maps free-form sex spellings onto {"M", "F", ""}.
// The mapping is total: anything unrecognized is unknown, never guessed.
func NormalizeSex(value string) string {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "M", "MALE":
		return "M"
	case "F", "FEMALE":
		return "F"
	default:
		return ""
	}
}

// SexCode maps a sex spelling onto the manifest encoding: M=0, F=1,
// unknown=empty.
func SexCode(value string) string {
	switch NormalizeSex(value) {
	case "M":
		return "0"
	case "F":
		return "1"
	default:
		return ""
	}
}

// NormalizeDiagnosis maps diagnosis spellings onto the ordinal code used by
// the manifest: control=0, mild impairment=0.5, dementia=1, unknown=empty.
func NormalizeDiagnosis(value string) string {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "CN", "CONTROL", "NORMAL":
		return "0"
	case "MCI", "EMCI", "LMCI":
		return "0.5"
	case "AD", "DEMENTIA", "ALZHEIMERS":
		return "1"
	default:
		return ""
	}
}

// NormalizeAgeYears converts an age in years to the manifest's age fraction
// (age/100, three decimals). Non-numeric input normalizes to empty.
func NormalizeAgeYears(raw string) string {
	age, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%.3f", age/100)
}

// NormalizeAgeFraction reformats an already-normalized age fraction to three
// decimals. Non-numeric input normalizes to empty.
func NormalizeAgeFraction(raw string) string {
	age, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%.3f", age)
}

// StripImageUID removes the vendor "I" prefix from numeric image
// identifiers so sheet UIDs compare equal to directory-derived ones.
func StripImageUID(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > 0 && (value[0] == 'I' || value[0] == 'i') {
		return value[1:]
	}
	return value
}
