package ai

import "context"

// MockResponder permite tests sin llamar a un modelo real.
type MockResponder struct {
	Result Reply
	Err    error
	Calls  int
}

func (m *MockResponder) Reply(ctx context.Context, message string) (Reply, error) {
	m.Calls++
	return m.Result, m.Err
}
