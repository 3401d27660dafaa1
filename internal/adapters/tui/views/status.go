package views

// StatusLine is the one-line message shown above the key help
type StatusLine struct {
	Message    string
	MessageErr bool
}

func (s *StatusLine) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage drops a message that no longer applies
func (s *StatusLine) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}
