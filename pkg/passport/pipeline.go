package passport

import (
	"context"
	"log"
)

// Pipeline sequences preprocessing, recognition, MRZ parsing and the
// free-text fallback around an injected Engine. A Pipeline holds no state
// across calls; run one Pipeline (and Engine) per goroutine when extracting
// in parallel, since engines need not be concurrency-safe.
type Pipeline struct {
	engine Engine
	rules  *CorrectionTable
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithCorrections substitutes the OCR-confusion rule table, e.g. to supply
// another locale's naming conventions.
func WithCorrections(t *CorrectionTable) Option {
	return func(p *Pipeline) { p.rules = t }
}

// NewPipeline builds a pipeline over the given engine. The engine's
// lifecycle stays with the caller: acquire it before extracting, close it
// when done.
func NewPipeline(eng Engine, opts ...Option) *Pipeline {
	p := &Pipeline{engine: eng, rules: DefaultCorrections}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Extract runs the full pipeline over one image and returns either a
// complete record or one of the sentinel errors (ErrDecode,
// ErrEngineUnavailable, ErrTextTooSparse, ErrNoUsableFields). ctx is honored
// before each recognition pass and before fallback extraction; those passes
// dominate latency.
//
// MRZ-path failure is never an error by itself: it silently degrades to the
// fallback extractor, and only both paths failing yields ErrNoUsableFields.
func (p *Pipeline) Extract(ctx context.Context, raw RawImage) (PassportRecord, error) {
	png, err := preprocess(raw)
	if err != nil {
		return PassportRecord{}, err
	}
	text, err := bestOCRText(ctx, p.engine, png)
	if err != nil {
		return PassportRecord{}, err
	}

	mrzLines := LocateMRZLines(text)
	if len(mrzLines) == 2 {
		res := ParseTD3(mrzLines[0], mrzLines[1], p.rules)
		switch res.Status {
		case ParseFullyValid:
			rec := recordFromFields(res.Fields, true)
			rec.Confidence = confidenceFor(rec.filledFields())
			log.Printf("passport extract: mrz valid doc=%s confidence=%d", rec.PassportNumber, rec.Confidence)
			return rec, nil
		case ParsePartiallyValid:
			rec := recordFromFields(res.Fields, false)
			rec.Confidence = partialPenalty(confidenceFor(rec.filledFields()))
			log.Printf("passport extract: mrz partial (%s) doc=%s confidence=%d", res.Reason, rec.PassportNumber, rec.Confidence)
			return rec, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return PassportRecord{}, err
	}
	if rec, ok := extractFromText(text, mrzLines, p.rules); ok {
		log.Printf("passport extract: fallback doc=%s confidence=%d", rec.PassportNumber, rec.Confidence)
		return rec, nil
	}
	return PassportRecord{}, ErrNoUsableFields
}

// recordFromFields maps parsed MRZ fields onto the output record: MRZ dates
// become ISO 8601, sex becomes the lowercase word form, nationality stays
// the ICAO three-letter code.
func recordFromFields(f MRZFields, valid bool) PassportRecord {
	rec := PassportRecord{
		FirstName:      f.GivenNames,
		LastName:       f.Surname,
		PassportNumber: f.DocumentNumber,
		Nationality:    f.Nationality,
		MRZValid:       valid,
	}
	if iso, ok := mrzDateToISO(f.BirthDate); ok {
		rec.DateOfBirth = iso
	}
	if iso, ok := mrzDateToISO(f.ExpiryDate); ok {
		rec.ExpiryDate = iso
	}
	switch f.Sex {
	case "M":
		rec.Sex = "male"
	case "F":
		rec.Sex = "female"
	}
	return rec
}
