package session

// ResponseRecord is one answered question. Records are keyed by row index, so
// duplicate question text in the source document produces distinct records.
type ResponseRecord struct {
	Index    int
	Question string
	Answer   string
	Score    int
}

// Result is the finished session. Built once at finalization and never
// mutated after display.
type Result struct {
	SessionID  string
	Candidate  string
	Responses  []ResponseRecord
	TotalScore int
	MaxScore   int
}
