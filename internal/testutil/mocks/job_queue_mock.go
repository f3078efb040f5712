package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueAudioPrefetch(text, language, voice string) error {
	args := m.Called(text, language, voice)
	return args.Error(0)
}
