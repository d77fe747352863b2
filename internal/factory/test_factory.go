package factory

import (
	"time"

	"github.com/mcoot/symbolduel/internal/dependencies/mocks"
	"github.com/mcoot/symbolduel/internal/services/orchestrator"
	"github.com/mcoot/symbolduel/internal/services/sequence"
	"github.com/mcoot/symbolduel/internal/storage/memory"
	"github.com/mcoot/symbolduel/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockJudge  *mocks.MockJudge
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockJudge := mocks.NewMockJudge()

	app := newWithDependencies(
		store,
		store,
		mockClock,
		mockRandom,
		mockJudge,
		sequence.DefaultConfig(),
		orchestrator.DefaultConfig(),
		testutil.NopLogger(),
	)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockJudge:  mockJudge,
	}
}
