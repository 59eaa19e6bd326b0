package publish

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"bideorai/internal/artifact"
	"bideorai/internal/logging"
	"bideorai/internal/services"
)

// Uploader stores one artifact under bucket at the artifact's remote path.
type Uploader interface {
	Upload(ctx context.Context, bucket string, a artifact.Artifact) error
}

// Outcome records the result of one upload.
type Outcome struct {
	Artifact artifact.Artifact
	Err      error
	Elapsed  time.Duration
}

// Report summarizes a publish attempt in artifact order.
type Report struct {
	Outcomes []Outcome
}

// Succeeded returns the remote paths uploaded successfully.
func (r Report) Succeeded() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Err == nil {
			out = append(out, o.Artifact.RemotePath)
		}
	}
	return out
}

// Failed returns the uploads that did not succeed.
func (r Report) Failed() []services.PublishFailure {
	var out []services.PublishFailure
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, services.PublishFailure{
				LocalPath: o.Artifact.LocalPath,
				RemoteKey: o.Artifact.RemotePath,
				Err:       o.Err,
			})
		}
	}
	return out
}

// Publisher uploads an artifact set.
type Publisher struct {
	Uploader Uploader
	// Concurrency bounds parallel uploads; values below 2 upload sequentially.
	Concurrency int
	Logger      *slog.Logger
}

// Publish uploads every artifact in set. It never stops at the first
// failure.
func (p *Publisher) Publish(ctx context.Context, bucket string, set *artifact.Set) (Report, error) {
	if p == nil || p.Uploader == nil {
		return Report{}, services.Wrap(services.ErrInvalidRequest, "publishing", "publish", "uploader not configured", nil)
	}
	if bucket == "" {
		return Report{}, services.Wrap(services.ErrInvalidRequest, "publishing", "publish", "bucket required", nil)
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(p.Logger, "publisher"))

	items := set.Items()
	outcomes := make([]Outcome, len(items))
	upload := func(i int) {
		started := time.Now()
		err := p.Uploader.Upload(ctx, bucket, items[i])
		outcomes[i] = Outcome{Artifact: items[i], Err: err, Elapsed: time.Since(started)}
		if err != nil {
			logger.Error("upload failed",
				logging.String("remote_path", items[i].RemotePath),
				logging.Error(err),
			)
			return
		}
		logger.Debug("artifact uploaded",
			logging.String("remote_path", items[i].RemotePath),
			logging.Duration("elapsed", outcomes[i].Elapsed),
		)
	}

	if p.Concurrency < 2 {
		for i := range items {
			upload(i)
		}
	} else {
		sem := make(chan struct{}, p.Concurrency)
		var wg sync.WaitGroup
		for i := range items {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				upload(i)
			}(i)
		}
		wg.Wait()
	}

	report := Report{Outcomes: outcomes}
	failed := report.Failed()
	logger.Info("publish finished",
		logging.String("bucket", bucket),
		logging.Int("uploaded", len(items)-len(failed)),
		logging.Int("failed", len(failed)),
	)
	if len(failed) > 0 {
		return report, &services.PartialPublishError{Failed: failed, Succeeded: report.Succeeded()}
	}
	return report, nil
}
