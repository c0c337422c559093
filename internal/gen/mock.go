package gen

import (
	"context"
	"errors"
	"sync"
)

// ErrMockExhausted is returned by the mock gateway when no scripted result
// is available.
var ErrMockExhausted = errors.New("no scripted generation result")

// MockGateway is an in-memory Gateway for tests. Results are scripted FIFO
// per method; every call is recorded so tests can assert on what the engine
// requested. When Fail is set, every call errors, which exercises the
// "generation failure is a no-op" paths.
type MockGateway struct {
	mu sync.Mutex

	// Fail forces every call to return an error.
	Fail bool

	// Scripted results, consumed front to back.
	EmailResults    []*EmailResult
	IMResults       []*IMResult
	TextResults     []string
	CoworkerResults []*CoworkerProposal
	ProjectResults  []*ProjectProposal
	EventResults    []*EventProposal
	ImageResults    []string

	// Recorded requests.
	EmailCalls []EmailRequest
	IMCalls    []IMRequest
	TextCalls  []TextRequest
	ImageCalls []string
}

// NewMockGateway creates an empty mock.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Calls returns the total number of generation calls issued so far, across
// all methods. Used to assert the pause gate blocks the gateway entirely.
func (m *MockGateway) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.EmailCalls) + len(m.IMCalls) + len(m.TextCalls) +
		len(m.ImageCalls)
}

func (m *MockGateway) GenerateEmail(_ context.Context,
	req EmailRequest,
) (*EmailResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EmailCalls = append(m.EmailCalls, req)
	if m.Fail {
		return nil, ErrMockExhausted
	}
	if len(m.EmailResults) == 0 {
		return nil, ErrMockExhausted
	}

	res := m.EmailResults[0]
	m.EmailResults = m.EmailResults[1:]

	return res, nil
}

func (m *MockGateway) GenerateIMReply(_ context.Context,
	req IMRequest,
) (*IMResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.IMCalls = append(m.IMCalls, req)
	if m.Fail || len(m.IMResults) == 0 {
		return nil, ErrMockExhausted
	}

	res := m.IMResults[0]
	m.IMResults = m.IMResults[1:]

	return res, nil
}

func (m *MockGateway) GenerateText(_ context.Context,
	req TextRequest,
) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TextCalls = append(m.TextCalls, req)
	if m.Fail || len(m.TextResults) == 0 {
		return "", ErrMockExhausted
	}

	res := m.TextResults[0]
	m.TextResults = m.TextResults[1:]

	return res, nil
}

func (m *MockGateway) GenerateCoworker(_ context.Context,
	_ []Participant,
) (*CoworkerProposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail || len(m.CoworkerResults) == 0 {
		return nil, ErrMockExhausted
	}

	res := m.CoworkerResults[0]
	m.CoworkerResults = m.CoworkerResults[1:]

	return res, nil
}

func (m *MockGateway) GenerateProject(_ context.Context,
	_ []Participant,
) (*ProjectProposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail || len(m.ProjectResults) == 0 {
		return nil, ErrMockExhausted
	}

	res := m.ProjectResults[0]
	m.ProjectResults = m.ProjectResults[1:]

	return res, nil
}

func (m *MockGateway) GenerateEvent(_ context.Context,
	_ string,
) (*EventProposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail || len(m.EventResults) == 0 {
		return nil, ErrMockExhausted
	}

	res := m.EventResults[0]
	m.EventResults = m.EventResults[1:]

	return res, nil
}

func (m *MockGateway) GenerateImage(_ context.Context,
	prompt string,
) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ImageCalls = append(m.ImageCalls, prompt)
	if m.Fail || len(m.ImageResults) == 0 {
		return "", ErrMockExhausted
	}

	res := m.ImageResults[0]
	m.ImageResults = m.ImageResults[1:]

	return res, nil
}

// Compile-time check that MockGateway implements Gateway.
var _ Gateway = (*MockGateway)(nil)
