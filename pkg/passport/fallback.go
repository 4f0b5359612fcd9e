package passport

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Passport number shapes, most specific first. The first two letter classes
// match the series seen in the source data; the keyword-anchored pattern
// rescues numbers whose letter prefix the OCR lost entirely.
var passportNoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[AB][0-9]{8,9}\b`),
	regexp.MustCompile(`\b[A-Z][0-9]{8}\b`),
	regexp.MustCompile(`\b[A-Z]{2}[0-9]{7}\b`),
	regexp.MustCompile(`PASSPORT[^0-9]{0,24}([0-9]{8,9})`),
}

// mrzAdjacentBirth pulls a birth date out of a surviving MRZ fragment when
// the full parse failed: document number, nationality code, then YYMMDD.
// The fragments arrive locator-normalized, so digit positions may hold the
// folded I (or a surviving O/L); the capture is digit-repaired afterwards.
var mrzAdjacentBirth = regexp.MustCompile(`[AB][0-9OIL]{8,9}NGA([0-9OIL]{6})`)

var (
	birthLabel   = regexp.MustCompile(`(?i)date\s*of\s*birth|naissance|\bDOB\b`)
	expiryLabel  = regexp.MustCompile(`(?i)date\s*of\s*expir|expiration`)
	surnameLabel = regexp.MustCompile(`(?i)\bsurname\b|\bnom\b`)
	givenLabel   = regexp.MustCompile(`(?i)given\s*names?|pr[ée]noms?`)
	sexToken     = regexp.MustCompile(`(?i)\bsexe?\b[^A-Z0-9]{0,6}\b([MF])\b`)
	dateToken    = regexp.MustCompile(`\b([0-9]{1,2})[\s./-]*([A-Z0-9]{3,4})(?:\s*/\s*[A-Z0-9]{3,4})?[\s./-]*([0-9]{2,4})\b`)
	alphaOnly    = regexp.MustCompile(`[^A-Za-z ]+`)
)

// monthNumbers includes French forms and the misreadings Tesseract produces
// on passport date strips.
var monthNumbers = map[string]string{
	"JAN": "01", "FEB": "02", "MAR": "03", "APR": "04",
	"MAY": "05", "JUN": "06", "JUL": "07", "AUG": "08",
	"SEP": "09", "OCT": "10", "NOV": "11", "DEC": "12",
	"SEPT": "09", "AOU": "08", "AOUT": "08", "FEV": "02", "AVR": "04",
}

// countryNames resolves nationality keywords, adjectives and ISO codes to
// country names. Ordered so scanning stays deterministic.
var countryNames = []struct{ key, name string }{
	{"NIGERIA", "Nigeria"}, {"NIGERIAN", "Nigeria"}, {"NGA", "Nigeria"},
	{"GHANA", "Ghana"}, {"GHANAIAN", "Ghana"}, {"GHA", "Ghana"},
	{"KENYA", "Kenya"}, {"KENYAN", "Kenya"}, {"KEN", "Kenya"},
	{"SOUTH AFRICA", "South Africa"}, {"ZAF", "South Africa"},
	{"CAMEROON", "Cameroon"}, {"CMR", "Cameroon"},
	{"EGYPT", "Egypt"}, {"EGY", "Egypt"},
	{"ETHIOPIA", "Ethiopia"}, {"ETH", "Ethiopia"},
	{"INDIA", "India"}, {"INDIAN", "India"}, {"IND", "India"},
	{"PAKISTAN", "Pakistan"}, {"PAK", "Pakistan"},
	{"BANGLADESH", "Bangladesh"}, {"BGD", "Bangladesh"},
	{"CHINA", "China"}, {"CHINESE", "China"}, {"CHN", "China"},
	{"UNITED KINGDOM", "United Kingdom"}, {"BRITISH", "United Kingdom"}, {"GBR", "United Kingdom"},
	{"UNITED STATES", "United States"}, {"AMERICAN", "United States"}, {"USA", "United States"},
	{"CANADA", "Canada"}, {"CANADIAN", "Canada"}, {"CAN", "Canada"},
	{"FRANCE", "France"}, {"FRA", "France"},
	{"GERMANY", "Germany"}, {"DEU", "Germany"},
}

// extractFromText is the fallback path: targeted patterns against the full
// OCR text, independent of MRZ layout. The result is usable only when at
// least two of the seven fields filled AND one of them is the passport
// number or the birth date; anything weaker reports ok=false.
func extractFromText(text string, mrzLines []string, rules *CorrectionTable) (PassportRecord, bool) {
	if rules == nil {
		rules = DefaultCorrections
	}
	rec := PassportRecord{}
	upper := strings.ToUpper(text)
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	for _, re := range passportNoPatterns {
		m := re.FindStringSubmatch(upper)
		if m == nil {
			continue
		}
		if len(m) > 1 {
			rec.PassportNumber = m[1]
		} else {
			rec.PassportNumber = m[0]
		}
		break
	}

	for _, c := range countryNames {
		// three-letter ISO codes only count as standalone words; longer
		// keywords are distinctive enough as substrings
		if len(c.key) == 3 && !containsWord(upper, c.key) {
			continue
		}
		if strings.Contains(upper, c.key) {
			rec.Nationality = c.name
			break
		}
	}

	rec.DateOfBirth = labeledDate(lines, birthLabel, rules, true)
	rec.ExpiryDate = labeledDate(lines, expiryLabel, rules, false)
	rec.LastName = labeledName(lines, surnameLabel, rules)
	rec.FirstName = labeledName(lines, givenLabel, rules)

	if m := sexToken.FindStringSubmatch(text); m != nil {
		switch strings.ToUpper(m[1]) {
		case "M":
			rec.Sex = "male"
		case "F":
			rec.Sex = "female"
		}
	}

	if rec.DateOfBirth == "" && len(mrzLines) > 0 {
		if m := mrzAdjacentBirth.FindStringSubmatch(strings.Join(mrzLines, " ")); m != nil {
			if iso, ok := mrzDateToISO(rules.repairNumeric(m[1])); ok {
				rec.DateOfBirth = iso
			}
		}
	}

	filled := rec.filledFields()
	if filled < 2 || (rec.PassportNumber == "" && rec.DateOfBirth == "") {
		return PassportRecord{}, false
	}
	rec.Confidence = confidenceFor(filled)
	return rec, true
}

// containsWord reports whether word occurs in s bounded by non-alphanumerics.
func containsWord(s, word string) bool {
	isAlnum := func(c byte) bool {
		return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
	}
	for from := 0; ; {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return false
		}
		i += from
		before := i == 0 || !isAlnum(s[i-1])
		after := i+len(word) == len(s) || !isAlnum(s[i+len(word)])
		if before && after {
			return true
		}
		from = i + 1
	}
}

// labeledDate finds a date on the labeled line or the one after it.
func labeledDate(lines []string, label *regexp.Regexp, rules *CorrectionTable, birth bool) string {
	for i, line := range lines {
		if !label.MatchString(line) {
			continue
		}
		candidates := []string{line}
		if i+1 < len(lines) {
			candidates = append(candidates, lines[i+1])
		}
		for _, cand := range candidates {
			for _, m := range dateToken.FindAllStringSubmatch(strings.ToUpper(cand), -1) {
				if iso, ok := tokensToISO(m[1], m[2], m[3], rules, birth); ok {
					return iso
				}
			}
		}
	}
	return ""
}

// labeledName takes the remainder of a labeled line, or the next line, as a
// name value after scrubbing non-letters and artifact tokens.
func labeledName(lines []string, label *regexp.Regexp, rules *CorrectionTable) string {
	for i, line := range lines {
		loc := label.FindStringIndex(line)
		if loc == nil {
			continue
		}
		candidates := []string{line[loc[1]:]}
		if i+1 < len(lines) {
			candidates = append(candidates, lines[i+1])
		}
		for _, cand := range candidates {
			if name := scrubName(cand, rules); name != "" {
				return name
			}
		}
	}
	return ""
}

func scrubName(s string, rules *CorrectionTable) string {
	s = strings.ToUpper(alphaOnly.ReplaceAllString(s, " "))
	var kept []string
	for _, tok := range strings.Fields(s) {
		tok = collapseRuns(tok)
		if isNoiseToken(tok) {
			continue
		}
		kept = append(kept, rules.applyNameRules(tok))
	}
	return strings.Join(kept, " ")
}

// tokensToISO assembles an ISO date from a day, month-name and year token.
// Two-digit birth years use the MRZ pivot; two-digit expiry years are
// always in the 2000s.
func tokensToISO(day, monTok, year string, rules *CorrectionTable, birth bool) (string, bool) {
	mon := rules.repairAlpha(strings.ToUpper(monTok))
	mm, ok := monthNumbers[mon]
	if !ok && len(mon) > 3 {
		mm, ok = monthNumbers[mon[:3]]
	}
	if !ok {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return "", false
	}
	var yyyy string
	switch len(year) {
	case 4:
		yyyy = year
	case 2:
		yy, _ := strconv.Atoi(year)
		switch {
		case birth && yy > 30:
			yyyy = fmt.Sprintf("%d", 1900+yy)
		default:
			yyyy = fmt.Sprintf("%d", 2000+yy)
		}
	default:
		return "", false
	}
	return fmt.Sprintf("%s-%s-%02d", yyyy, mm, d), true
}
