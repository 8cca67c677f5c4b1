package booking

import "context"

// Confirmer asks the user to approve an irreversible action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Answered is a Confirmer whose answer was collected before the call, as
// when the UI sends {"confirm": true} with the request.
type Answered bool

func (a Answered) Confirm(context.Context, string) (bool, error) {
	return bool(a), nil
}
