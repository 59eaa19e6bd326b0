package pipeline

import (
	"context"

	"bideorai/internal/ledger"
	"bideorai/internal/logging"
	"bideorai/internal/transcode"
)

// Ledger and metrics failures are logged and never change the run outcome.

func (p *Pipeline) beginLedger(ctx context.Context, req Request, report Report) {
	if p.ledger == nil {
		return
	}
	err := p.ledger.BeginRun(ctx, ledger.Run{
		ID:        report.RunID,
		Input:     req.Input,
		Bucket:    req.Bucket,
		Prefix:    req.Prefix,
		State:     string(StateProbing),
		StartedAt: report.StartedAt,
	})
	if err != nil {
		logging.WithContext(ctx, p.logger).Warn("ledger begin failed", logging.Error(err))
	}
}

func (p *Pipeline) finishLedger(ctx context.Context, report Report, runErr error) {
	if p.ledger == nil || report.FailedStage == StateValidating || report.FailedStage == StatePreparing {
		return
	}
	logger := logging.WithContext(ctx, p.logger)

	outcome := ledger.Outcome{
		State:       string(report.State),
		FailedStage: string(report.FailedStage),
		FinishedAt:  report.FinishedAt,
	}
	if runErr != nil {
		outcome.ErrorMessage = runErr.Error()
	}
	if report.Plan.Video != "" {
		outcome.Plan = report.Plan.String()
	}
	if err := p.ledger.FinishRun(ctx, report.RunID, outcome); err != nil {
		logger.Warn("ledger finish failed", logging.Error(err))
		return
	}
	if len(report.Artifacts) == 0 {
		return
	}
	if err := p.ledger.RecordArtifacts(ctx, report.RunID, artifactRecords(report)); err != nil {
		logger.Warn("ledger artifacts failed", logging.Error(err))
	}
}

// artifactRecords pairs each artifact with its publish outcome. Artifacts
// the run never attempted to upload stay pending.
func artifactRecords(report Report) []ledger.ArtifactRecord {
	outcomes := make(map[string]error, len(report.Publish.Outcomes))
	attempted := make(map[string]bool, len(report.Publish.Outcomes))
	for _, o := range report.Publish.Outcomes {
		outcomes[o.Artifact.RemotePath] = o.Err
		attempted[o.Artifact.RemotePath] = true
	}
	records := make([]ledger.ArtifactRecord, 0, len(report.Artifacts))
	for i, a := range report.Artifacts {
		rec := ledger.ArtifactRecord{
			Position:   i,
			Kind:       string(a.Kind),
			RemotePath: a.RemotePath,
			Status:     ledger.ArtifactPending,
		}
		if attempted[a.RemotePath] {
			if err := outcomes[a.RemotePath]; err != nil {
				rec.Status = ledger.ArtifactFailed
				rec.ErrorMessage = err.Error()
			} else {
				rec.Status = ledger.ArtifactUploaded
			}
		}
		records = append(records, rec)
	}
	return records
}

func (p *Pipeline) recordMetrics(ctx context.Context, report Report, extracted *transcode.Output) {
	if p.metrics == nil {
		return
	}
	if extracted != nil {
		p.metrics.ObserveSubtitles(len(extracted.Subtitles))
	}
	for _, o := range report.Publish.Outcomes {
		p.metrics.ObserveUpload(string(o.Artifact.Kind), o.Err)
	}
	p.metrics.ObserveRun(string(report.State), string(report.FailedStage), report.FinishedAt, report.Duration())
	if err := p.metrics.WriteTextfile(p.cfg.Metrics.TextfilePath); err != nil {
		logging.WithContext(ctx, p.logger).Warn("metrics export failed", logging.Error(err))
	}
}
