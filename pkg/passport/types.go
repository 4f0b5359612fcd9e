package passport

// RawImage is the caller-supplied input: encoded image bytes plus the
// declared content type. The pipeline treats it as immutable.
type RawImage struct {
	Data []byte
	MIME string
}

// PageSegMode selects the layout assumption for one recognition pass.
type PageSegMode int

const (
	// SegSingleBlock assumes one uniform block of text.
	SegSingleBlock PageSegMode = iota
	// SegAuto lets the engine segment the page fully automatically.
	SegAuto
	// SegSingleColumn assumes a single column of text of variable sizes.
	SegSingleColumn
)

// MRZFields is the typed decomposition of the two TD3 lines, as printed
// (dates stay YYMMDD; names are already de-obfuscated).
type MRZFields struct {
	DocumentType   string
	IssuingState   string
	Surname        string
	GivenNames     string
	DocumentNumber string
	Nationality    string
	BirthDate      string // YYMMDD
	Sex            string // "M", "F" or ""
	ExpiryDate     string // YYMMDD
	PersonalNumber string
}

// ParseStatus tags the outcome of a TD3 parse attempt.
type ParseStatus int

const (
	ParseUnparseable ParseStatus = iota
	ParsePartiallyValid
	ParseFullyValid
)

// ParseResult is the tagged outcome of ParseTD3. Fields is meaningful for
// FullyValid and PartiallyValid; Reason is set for PartiallyValid only.
type ParseResult struct {
	Status ParseStatus
	Fields MRZFields
	Reason string
}

// PassportRecord is the pipeline output. Dates are ISO 8601, sex is
// "male"/"female" (empty when unreadable). Never mutated after construction.
type PassportRecord struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	PassportNumber string `json:"passportNumber"`
	Nationality    string `json:"nationality"`
	DateOfBirth    string `json:"dateOfBirth"`
	Sex            string `json:"sex"`
	ExpiryDate     string `json:"expiryDate"`
	MRZValid       bool   `json:"mrzValid"`
	Confidence     int    `json:"confidence"`
}

// filledFields counts the populated canonical fields (7 total).
func (r *PassportRecord) filledFields() int {
	n := 0
	for _, v := range []string{
		r.FirstName, r.LastName, r.PassportNumber, r.Nationality,
		r.DateOfBirth, r.Sex, r.ExpiryDate,
	} {
		if v != "" {
			n++
		}
	}
	return n
}
