package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpcrocket/hpcrocket/pkg/application"
	"github.com/hpcrocket/hpcrocket/pkg/environment"
	"github.com/hpcrocket/hpcrocket/pkg/executor"
	"github.com/hpcrocket/hpcrocket/pkg/testutils"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func watchOptions() application.Options {
	return application.Options{
		Job:          executor.JobOptions{JobFile: "job.sh"},
		Watch:        true,
		PollInterval: time.Millisecond,
	}
}

func TestRun_PollsUntilTerminalAndUpdatesUIInOrder(t *testing.T) {
	exec := testutils.NewExecutorStub(
		executor.StateRunning,
		executor.StateRunning,
		executor.StateRunning,
		executor.StateCompleted,
	)
	ui := testutils.NewUISpy()
	sut := application.New(exec, testutils.NewMemoryFilesystem(), testutils.NewMemoryFilesystem(), ui)

	code := sut.Run(testContext(t), watchOptions())

	assert.Equal(t, application.ExitSuccess, code)
	assert.Equal(t, 4, exec.PollCalls)
	require.Len(t, ui.Updates, 4)
	assert.Equal(t, executor.StateRunning, ui.Updates[0].State)
	assert.Equal(t, executor.StateCompleted, ui.Updates[len(ui.Updates)-1].State)
	assert.Equal(t, []executor.JobID{"1234"}, ui.Launches)
}

func TestRun_FailedJobExitsNonzeroWithoutCollecting(t *testing.T) {
	exec := testutils.NewExecutorStub(executor.StateFailed)
	source := testutils.NewMemoryFilesystem()
	target := testutils.NewMemoryFilesystem("results.txt")
	ui := testutils.NewUISpy()
	sut := application.New(exec, source, target, ui)

	options := watchOptions()
	options.CollectFiles = []environment.CopyInstruction{
		{Source: "results.txt", Destination: "results.txt"},
	}

	code := sut.Run(testContext(t), options)

	assert.Equal(t, application.ExitFailure, code)
	assert.Empty(t, target.CopyCalls, "collect must not run for a failed job")
	require.NotEmpty(t, ui.Errors)
}

func TestRun_FailedJobRollsBackStagedFiles(t *testing.T) {
	exec := testutils.NewExecutorStub(executor.StateFailed)
	source := testutils.NewMemoryFilesystem("input.txt")
	target := testutils.NewMemoryFilesystem()
	sut := application.New(exec, source, target, testutils.NewUISpy())

	options := watchOptions()
	options.CopyFiles = []environment.CopyInstruction{
		{Source: "input.txt", Destination: "input.txt"},
	}

	code := sut.Run(testContext(t), options)

	assert.Equal(t, application.ExitFailure, code)
	staged, err := target.Exists("input.txt")
	require.NoError(t, err)
	assert.False(t, staged)
}

func TestRun_FailedJobWithContinueCollectsAndCleansAnyway(t *testing.T) {
	exec := testutils.NewExecutorStub(executor.StateFailed)
	source := testutils.NewMemoryFilesystem()
	target := testutils.NewMemoryFilesystem("results.txt", "staged.txt")
	sut := application.New(exec, source, target, testutils.NewUISpy())

	options := watchOptions()
	options.ContinueIfJobFails = true
	options.CollectFiles = []environment.CopyInstruction{
		{Source: "results.txt", Destination: "results.txt"},
	}
	options.CleanFiles = []string{"staged.txt"}

	code := sut.Run(testContext(t), options)

	assert.Equal(t, application.ExitFailure, code)
	collected, err := source.Exists("results.txt")
	require.NoError(t, err)
	assert.True(t, collected)
	cleaned, err := target.Exists("staged.txt")
	require.NoError(t, err)
	assert.False(t, cleaned)
}

func TestRun_SuccessfulJobCollectsAndCleans(t *testing.T) {
	exec := testutils.NewExecutorStub(executor.StateRunning, executor.StateCompleted)
	source := testutils.NewMemoryFilesystem("input.txt")
	target := testutils.NewMemoryFilesystem("results.txt")
	ui := testutils.NewUISpy()
	sut := application.New(exec, source, target, ui)

	options := watchOptions()
	options.CopyFiles = []environment.CopyInstruction{
		{Source: "input.txt", Destination: "staged_input.txt"},
	}
	options.CollectFiles = []environment.CopyInstruction{
		{Source: "results.txt", Destination: "results.txt"},
	}
	options.CleanFiles = []string{"staged_input.txt"}

	code := sut.Run(testContext(t), options)

	assert.Equal(t, application.ExitSuccess, code)
	collected, err := source.Exists("results.txt")
	require.NoError(t, err)
	assert.True(t, collected)
	cleaned, err := target.Exists("staged_input.txt")
	require.NoError(t, err)
	assert.False(t, cleaned)
	require.NotEmpty(t, ui.Successes)
}

func TestRun_PrepareFailureRollsBackAndNeverSubmits(t *testing.T) {
	exec := testutils.NewExecutorStub(executor.StateCompleted)
	source := testutils.NewMemoryFilesystem("present.txt")
	target := testutils.NewMemoryFilesystem()
	ui := testutils.NewUISpy()
	sut := application.New(exec, source, target, ui)

	options := watchOptions()
	options.CopyFiles = []environment.CopyInstruction{
		{Source: "present.txt", Destination: "staged.txt"},
		{Source: "missing.txt", Destination: "never.txt"},
	}

	code := sut.Run(testContext(t), options)

	assert.Equal(t, application.ExitFailure, code)
	assert.Empty(t, exec.SubmitCalls, "job must not be submitted after a staging failure")
	staged, err := target.Exists("staged.txt")
	require.NoError(t, err)
	assert.False(t, staged, "staged files must be rolled back")
	require.NotEmpty(t, ui.Errors)
}

func TestRun_SubmitFailureRollsBack(t *testing.T) {
	exec := testutils.NewExecutorStub(executor.StateCompleted)
	exec.SubmitErr = assert.AnError
	source := testutils.NewMemoryFilesystem("input.txt")
	target := testutils.NewMemoryFilesystem()
	sut := application.New(exec, source, target, testutils.NewUISpy())

	options := watchOptions()
	options.CopyFiles = []environment.CopyInstruction{
		{Source: "input.txt", Destination: "input.txt"},
	}

	code := sut.Run(testContext(t), options)

	assert.Equal(t, application.ExitFailure, code)
	staged, err := target.Exists("input.txt")
	require.NoError(t, err)
	assert.False(t, staged)
}

func TestRun_FireAndForgetSkipsPolling(t *testing.T) {
	exec := testutils.NewExecutorStub(executor.StateRunning)
	ui := testutils.NewUISpy()
	sut := application.New(exec, testutils.NewMemoryFilesystem(), testutils.NewMemoryFilesystem(), ui)

	options := watchOptions()
	options.Watch = false

	code := sut.Run(testContext(t), options)

	assert.Equal(t, application.ExitSuccess, code)
	assert.Zero(t, exec.PollCalls)
	assert.Equal(t, []executor.JobID{"1234"}, ui.Launches)
}

func TestRun_PollErrorExitsNonzero(t *testing.T) {
	exec := testutils.NewExecutorStub(executor.StateRunning)
	exec.PollErr = assert.AnError
	ui := testutils.NewUISpy()
	sut := application.New(exec, testutils.NewMemoryFilesystem(), testutils.NewMemoryFilesystem(), ui)

	code := sut.Run(testContext(t), watchOptions())

	assert.Equal(t, application.ExitFailure, code)
	require.NotEmpty(t, ui.Errors)
}

func TestWatch_ReportsTerminalState(t *testing.T) {
	tests := []struct {
		name     string
		states   []executor.JobState
		expected int
	}{
		{
			name:     "completed_job_exits_zero",
			states:   []executor.JobState{executor.StateRunning, executor.StateCompleted},
			expected: application.ExitSuccess,
		},
		{
			name:     "failed_job_exits_one",
			states:   []executor.JobState{executor.StateFailed},
			expected: application.ExitFailure,
		},
		{
			name:     "canceled_job_exits_one",
			states:   []executor.JobState{executor.StatePending, executor.StateCanceled},
			expected: application.ExitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := testutils.NewExecutorStub(tt.states...)
			ui := testutils.NewUISpy()
			sut := application.New(exec, testutils.NewMemoryFilesystem(), testutils.NewMemoryFilesystem(), ui)

			code := sut.Watch(testContext(t), "1234", time.Millisecond)

			assert.Equal(t, tt.expected, code)
			require.Len(t, ui.Updates, len(tt.states))
			assert.Equal(t, tt.states[len(tt.states)-1], ui.Updates[len(ui.Updates)-1].State)
		})
	}
}

func TestFinalize_CollectsAndCleans(t *testing.T) {
	source := testutils.NewMemoryFilesystem()
	target := testutils.NewMemoryFilesystem("results.txt", "staged.txt")
	sut := application.New(testutils.NewExecutorStub(), source, target, testutils.NewUISpy())

	options := application.Options{
		CollectFiles: []environment.CopyInstruction{
			{Source: "results.txt", Destination: "results.txt"},
		},
		CleanFiles: []string{"staged.txt"},
	}

	code := sut.Finalize(testContext(t), options)

	assert.Equal(t, application.ExitSuccess, code)
	collected, err := source.Exists("results.txt")
	require.NoError(t, err)
	assert.True(t, collected)
	cleaned, err := target.Exists("staged.txt")
	require.NoError(t, err)
	assert.False(t, cleaned)
}
