package hostio

import "github.com/Iron-Ham/hostlog/internal/stream"

// Subscriber receives complete console lines. Every line ends in exactly one
// "\n". Returned errors are contained by the dispatcher and never reach the
// writer.
type Subscriber interface {
	WriteOutputLine(line string) error
	WriteErrorLine(line string) error
	WriteWarningLine(line string) error
	WriteVerboseLine(line string) error
	WriteDebugLine(line string) error
}

// InteractiveSubscriber additionally observes the results of interactive
// reads and progress updates. Secret input is never offered.
type InteractiveSubscriber interface {
	Subscriber

	OnPrompt(result map[string]string) error
	OnChoicePrompt(choice ChoiceDescription) error
	OnCredentialPrompt(credential Credential) error
	OnReadLine(line string) error
	OnProgress(sourceID int64, record ProgressRecord) error
}

// NopSubscriber implements InteractiveSubscriber with methods that do
// nothing. Embed it to implement only the handlers you need.
type NopSubscriber struct{}

func (NopSubscriber) WriteOutputLine(string) error           { return nil }
func (NopSubscriber) WriteErrorLine(string) error            { return nil }
func (NopSubscriber) WriteWarningLine(string) error          { return nil }
func (NopSubscriber) WriteVerboseLine(string) error          { return nil }
func (NopSubscriber) WriteDebugLine(string) error            { return nil }
func (NopSubscriber) OnPrompt(map[string]string) error       { return nil }
func (NopSubscriber) OnChoicePrompt(ChoiceDescription) error { return nil }
func (NopSubscriber) OnCredentialPrompt(Credential) error    { return nil }
func (NopSubscriber) OnReadLine(string) error                { return nil }
func (NopSubscriber) OnProgress(int64, ProgressRecord) error { return nil }

// lineHandler returns the handler of s for a single category.
func lineHandler(s Subscriber, class stream.Class) func(string) error {
	switch class {
	case stream.Output:
		return s.WriteOutputLine
	case stream.Error:
		return s.WriteErrorLine
	case stream.Warning:
		return s.WriteWarningLine
	case stream.Verbose:
		return s.WriteVerboseLine
	case stream.Debug:
		return s.WriteDebugLine
	}
	return nil
}
