package openaq

// Record is a single element of the upstream `results` array. The shape of
// each record is defined entirely by the OpenAQ API and is not typed locally.
type Record map[string]any

// Envelope is the top-level JSON wrapper returned by the OpenAQ API.
type Envelope struct {
	Results []Record `json:"results"`
}

// Unwrap returns the results list. An envelope without a `results` key
// yields an empty, non-nil slice.
func (e Envelope) Unwrap() []Record {
	if e.Results == nil {
		return []Record{}
	}
	return e.Results
}
