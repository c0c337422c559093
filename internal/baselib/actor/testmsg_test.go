package actor

// testMsg is the shared message type used across the actor package tests.
type testMsg struct {
	BaseMessage

	data string
}

func (m *testMsg) MessageType() string {
	return "testMsg"
}

// newTestMsg creates a testMsg carrying the given payload.
func newTestMsg(data string) *testMsg {
	return &testMsg{data: data}
}
