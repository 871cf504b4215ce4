package driven

// Confirmer asks the user to approve a destructive operation. Confirm returns
// true only when the user explicitly agreed to message.
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc adapts a plain function to the Confirmer interface.
type ConfirmFunc func(message string) bool

// Confirm calls f(message).
func (f ConfirmFunc) Confirm(message string) bool { return f(message) }
