package session

// Presenter renders controller-emitted events. The controller never renders
// anything itself, so it stays testable without a UI.
type Presenter interface {
	SessionStarted(candidate string, questionCount int)
	QuestionAsked(index, total int, question string)
	Listening()
	Transcript(text string)
	Warning(message string)
	Scored(index, score int)
	Completed(result Result)
}
