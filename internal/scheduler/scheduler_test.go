package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingJob struct {
	name string
	ran  chan struct{}
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) error {
	close(j.ran)
	return nil
}

func TestRunOnceRunsJobWithoutWaitingForTick(t *testing.T) {
	s := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	job := &countingJob{name: "sweep", ran: make(chan struct{})}

	s.RunOnce(context.Background(), job)

	select {
	case <-job.ran:
	case <-time.After(time.Second):
		t.Fatal("job did not run")
	}
}
