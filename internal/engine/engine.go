// Package engine implements the sync orchestrator: it drives the
// classification core per retrieved file and owns all the I/O the core
// deliberately avoids — transfers, local moves, ledger writes, import
// execution.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/ierg/nscsync/internal/config"
	"github.com/ierg/nscsync/internal/model"
	"github.com/ierg/nscsync/internal/rules"
	"github.com/ierg/nscsync/internal/transport"
)

// watermarkReceive is the ledger watermark bounding incremental fetches.
const watermarkReceive = "receive"

// Engine orchestrates the receive and send flows.
type Engine struct {
	cfg       *config.Config
	ruleSet   *rules.RuleSet
	transport Transport
	ledger    Ledger
	logbook   Recorder
	importer  ImportRunner
	now       func() time.Time
}

// New creates a sync engine with the given collaborators.
func New(cfg *config.Config, ruleSet *rules.RuleSet, t Transport, ledger Ledger, logbook Recorder, importer ImportRunner) *Engine {
	return &Engine{
		cfg:       cfg,
		ruleSet:   ruleSet,
		transport: t,
		ledger:    ledger,
		logbook:   logbook,
		importer:  importer,
		now:       time.Now,
	}
}

// GetOptions control one receive run.
type GetOptions struct {
	ProgressWriter io.Writer
	Workers        int
	All            bool
	DryRun         bool
	NoImport       bool
	PurgeRemote    bool
}

// GetSummary reports what a receive run did.
type GetSummary struct {
	Listed      int
	Skipped     int
	Fetched     int
	Renamed     int
	Quarantined int
	Imported    int
	Failed      int
}

// fileResult is the outcome of processing one remote file.
type fileResult struct {
	status   model.EventStatus
	fetched  bool
	imported bool
	failed   bool
}

// Get retrieves new files from the remote receive directory, classifies and
// renames each, lands it locally, optionally triggers the import command,
// and records every action. One bad file never blocks the rest of the
// batch.
func (e *Engine) Get(ctx context.Context, opts GetOptions) (*GetSummary, error) {
	summary := &GetSummary{}

	var watermark time.Time
	if !opts.All {
		var err error
		watermark, err = e.ledger.Watermark(ctx, watermarkReceive)
		if err != nil {
			return nil, err
		}
	}

	files, err := e.transport.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote files: %w", err)
	}
	summary.Listed = len(files)

	var pending []transport.RemoteFile
	for _, f := range files {
		if !watermark.IsZero() && !f.ModTime.After(watermark) {
			summary.Skipped++
			continue
		}
		pending = append(pending, f)
	}

	if len(pending) == 0 {
		slog.Info("No new files to retrieve", "listed", summary.Listed)
		return summary, nil
	}

	slog.Info("Retrieving files", "count", len(pending), "skipped", summary.Skipped)

	results := e.fanOut(ctx, pending, opts)

	var oldestFailed time.Time
	for i, res := range results {
		switch {
		case res.failed:
			summary.Failed++
			if oldestFailed.IsZero() || pending[i].ModTime.Before(oldestFailed) {
				oldestFailed = pending[i].ModTime
			}
		case res.status == model.StatusRenamed:
			summary.Renamed++
		case res.status == model.StatusQuarantinedUnparsed || res.status == model.StatusQuarantinedNoMatch:
			summary.Quarantined++
		}
		if res.fetched {
			summary.Fetched++
		}
		if res.imported {
			summary.Imported++
		}
	}

	// The watermark must never pass a failed file, or the next run would
	// skip it forever. Advance only to the newest fetched mtime strictly
	// below the oldest failure.
	var newest time.Time
	for i, res := range results {
		if !res.fetched {
			continue
		}
		mt := pending[i].ModTime
		if !oldestFailed.IsZero() && !mt.Before(oldestFailed) {
			continue
		}
		if mt.After(newest) {
			newest = mt
		}
	}

	if !opts.DryRun && !newest.IsZero() && newest.After(watermark) {
		if err := e.ledger.SetWatermark(ctx, watermarkReceive, newest); err != nil {
			return summary, fmt.Errorf("failed to advance watermark: %w", err)
		}
	}

	return summary, ctx.Err()
}

// fanOut processes the pending files on a bounded worker pool. The core is
// pure and every file is independent, so workers need no coordination
// beyond the serialized ledger and logbook writes.
func (e *Engine) fanOut(ctx context.Context, pending []transport.RemoteFile, opts GetOptions) []fileResult {
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(pending) {
		workers = len(pending)
	}

	results := make([]fileResult, len(pending))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					results[i] = fileResult{failed: true}
					continue
				}
				results[i] = e.processFile(ctx, pending[i], opts)
			}
		}()
	}
	for i := range pending {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// plannedOutcome is the classification core's verdict for one filename,
// computed before any byte is transferred.
type plannedOutcome struct {
	fields    *model.ConventionFields
	match     *model.MatchResult
	localName string
	destDir   string
	detail    string
	status    model.EventStatus
}

// plan runs the pure pipeline — parse, classify, render — for one remote
// name and decides where the file should land and under which name.
func (e *Engine) plan(name string) plannedOutcome {
	quarantineDir := e.cfg.Local.FilePath
	if quarantineDir == "" {
		quarantineDir = e.cfg.Local.ReceivePath
	}

	fields, err := rules.ParseFilename(name)
	if err != nil {
		return plannedOutcome{
			status:    model.StatusQuarantinedUnparsed,
			localName: name,
			destDir:   quarantineDir,
			detail:    err.Error(),
		}
	}

	match, err := e.ruleSet.Classify(fields.SubmittedName)
	if err != nil {
		if errors.Is(err, rules.ErrNoMatch) {
			return plannedOutcome{
				fields:    &fields,
				status:    model.StatusQuarantinedNoMatch,
				localName: name,
				destDir:   quarantineDir,
				detail:    err.Error(),
			}
		}
		return plannedOutcome{
			fields: &fields,
			status: model.StatusRenderFailed,
			detail: err.Error(),
		}
	}

	rendered, err := rules.Render(match, fields)
	if err != nil {
		// Unreachable for a validated rule set; if we get here the file is
		// left untouched rather than landed under a broken name.
		return plannedOutcome{
			fields: &fields,
			match:  match,
			status: model.StatusRenderFailed,
			detail: err.Error(),
		}
	}

	return plannedOutcome{
		fields:    &fields,
		match:     match,
		status:    model.StatusRenamed,
		localName: rendered,
		destDir:   e.cfg.Local.ReceivePath,
	}
}

// processFile runs the full per-file flow: plan, fetch, land, record,
// dispatch.
func (e *Engine) processFile(ctx context.Context, f transport.RemoteFile, opts GetOptions) fileResult {
	outcome := e.plan(f.Name)

	ruleName := ""
	if outcome.match != nil {
		ruleName = outcome.match.Rule.Name
	}

	if outcome.status == model.StatusRenderFailed {
		slog.Error("Rename template failed; file left on remote",
			"file", f.Name, "rule", ruleName, "error", outcome.detail)
		e.record(ctx, model.SyncEvent{
			Timestamp:  e.now(),
			RemoteName: f.Name,
			Rule:       ruleName,
			Status:     model.StatusRenderFailed,
			Detail:     outcome.detail,
			FileTime:   f.ModTime,
		})
		return fileResult{status: outcome.status, failed: true}
	}

	localPath := filepath.Join(outcome.destDir, outcome.localName)

	if opts.DryRun {
		slog.Info("Would retrieve",
			"file", f.Name,
			"local", localPath,
			"rule", ruleName,
			"status", string(outcome.status))
		return fileResult{status: outcome.status}
	}

	if err := e.fetchTo(ctx, f, localPath, opts.ProgressWriter); err != nil {
		slog.Error("Failed to retrieve file", "file", f.Name, "error", err)
		e.record(ctx, model.SyncEvent{
			Timestamp:  e.now(),
			RemoteName: f.Name,
			Rule:       ruleName,
			Status:     model.StatusFetchFailed,
			Detail:     err.Error(),
			FileTime:   f.ModTime,
		})
		return fileResult{status: outcome.status, failed: true}
	}

	e.record(ctx, model.SyncEvent{
		Timestamp:  e.now(),
		RemoteName: f.Name,
		LocalName:  localPath,
		Rule:       ruleName,
		Status:     outcome.status,
		Detail:     outcome.detail,
		FileTime:   f.ModTime,
	})

	result := fileResult{status: outcome.status, fetched: true}

	if outcome.status == model.StatusRenamed &&
		rules.ShouldImport(outcome.match.Rule, *outcome.fields, e.cfg.Import.Type) {
		if opts.NoImport {
			slog.Debug("Import suppressed by flag", "file", f.Name, "rule", ruleName)
		} else {
			result.imported = e.runImport(ctx, f, outcome, localPath)
		}
	}

	if opts.PurgeRemote {
		if err := e.transport.Acknowledge(ctx, f.Name); err != nil {
			slog.Warn("Failed to acknowledge remote file", "file", f.Name, "error", err)
		}
	}

	return result
}

// fetchTo downloads one remote file into localPath via a temp name, then
// moves it into place and mirrors the remote modification time, so a
// partially transferred file never sits under a final name.
func (e *Engine) fetchTo(ctx context.Context, f transport.RemoteFile, localPath string, progress io.Writer) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o750); err != nil {
		return fmt.Errorf("failed to create local directory: %w", err)
	}

	tmpPath := localPath + ".part"
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	var dst io.Writer = tmp
	if progress != nil {
		bar := newProgressBar(progress, f.Size, f.Name)
		dst = io.MultiWriter(tmp, bar)
		defer func() { _ = bar.Close() }()
	}

	if err := e.transport.Fetch(ctx, f.Name, dst); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize temp file: %w", err)
	}

	if err := os.Rename(tmpPath, localPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	if !f.ModTime.IsZero() {
		if err := os.Chtimes(localPath, f.ModTime, f.ModTime); err != nil {
			slog.Warn("Failed to mirror remote timestamp", "file", localPath, "error", err)
		}
	}

	return nil
}

// runImport builds and executes the import invocation for one landed file
// and records the outcome. Returns true when the import succeeded.
func (e *Engine) runImport(ctx context.Context, f transport.RemoteFile, outcome plannedOutcome, localPath string) bool {
	inv, err := rules.BuildImportInvocation(
		e.cfg.Import.Cmd,
		localPath,
		outcome.fields.SubmittedName,
		outcome.fields.SubmittedAt,
	)
	if err != nil {
		slog.Error("Failed to build import command", "file", f.Name, "error", err)
		e.record(ctx, model.SyncEvent{
			Timestamp:  e.now(),
			RemoteName: f.Name,
			LocalName:  localPath,
			Rule:       outcome.match.Rule.Name,
			Status:     model.StatusImportFailed,
			Detail:     err.Error(),
			FileTime:   f.ModTime,
		})
		return false
	}

	status := model.StatusImported
	detail := inv.String()
	if err := e.importer.Run(ctx, inv); err != nil {
		slog.Error("Import command failed", "file", f.Name, "error", err)
		status = model.StatusImportFailed
		detail = err.Error()
	}

	e.record(ctx, model.SyncEvent{
		Timestamp:  e.now(),
		RemoteName: f.Name,
		LocalName:  localPath,
		Rule:       outcome.match.Rule.Name,
		Status:     status,
		Detail:     detail,
		FileTime:   f.ModTime,
	})
	return status == model.StatusImported
}

// SendOptions control one send run.
type SendOptions struct {
	ProgressWriter io.Writer
	DryRun         bool
}

// SendSummary reports what a send run did.
type SendSummary struct {
	Uploaded int
	Archived int
	Failed   int
}

// Send uploads every regular file waiting in the local send directory,
// then archives each local copy with a timestamp suffix.
func (e *Engine) Send(ctx context.Context, opts SendOptions) (*SendSummary, error) {
	summary := &SendSummary{}

	entries, err := os.ReadDir(e.cfg.Local.SendPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read send directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		slog.Info("No files to send")
		return summary, nil
	}

	stamp := e.now().Format(model.ImportDateTimeLayout)

	for _, name := range names {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		localPath := filepath.Join(e.cfg.Local.SendPath, name)

		if opts.DryRun {
			slog.Info("Would upload", "file", name)
			continue
		}

		if err := e.uploadOne(ctx, name, localPath, opts.ProgressWriter); err != nil {
			slog.Error("Failed to upload file", "file", name, "error", err)
			summary.Failed++
			continue
		}
		summary.Uploaded++

		archived, err := e.archiveOne(ctx, name, localPath, stamp)
		if err != nil {
			slog.Error("Failed to archive file", "file", name, "error", err)
			summary.Failed++
			continue
		}
		if archived {
			summary.Archived++
		}
	}

	return summary, nil
}

// uploadOne streams one local file to the remote send directory and logs
// the transfer.
func (e *Engine) uploadOne(ctx context.Context, name, localPath string, progress io.Writer) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", localPath, err)
	}

	var src io.Reader = f
	if progress != nil {
		bar := newProgressBar(progress, info.Size(), name)
		src = io.TeeReader(f, bar)
		defer func() { _ = bar.Close() }()
	}

	if err := e.transport.Upload(ctx, name, src); err != nil {
		return err
	}

	e.record(ctx, model.SyncEvent{
		Timestamp:  e.now(),
		RemoteName: name,
		LocalName:  localPath,
		Status:     model.StatusUploaded,
		FileTime:   info.ModTime(),
	})
	return nil
}

// archiveOne moves a sent file into the archive directory, appending the
// run timestamp before the extension so repeated submissions never
// collide.
func (e *Engine) archiveOne(ctx context.Context, name, localPath, stamp string) (bool, error) {
	if e.cfg.Local.ArchivePath == "" {
		return false, nil
	}
	if err := os.MkdirAll(e.cfg.Local.ArchivePath, 0o750); err != nil {
		return false, fmt.Errorf("failed to create archive directory: %w", err)
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	archiveName := fmt.Sprintf("%s_%s%s", stem, stamp, ext)
	archivePath := filepath.Join(e.cfg.Local.ArchivePath, archiveName)

	if err := os.Rename(localPath, archivePath); err != nil {
		return false, fmt.Errorf("failed to move to archive: %w", err)
	}

	e.record(ctx, model.SyncEvent{
		Timestamp:  e.now(),
		RemoteName: name,
		LocalName:  archivePath,
		Status:     model.StatusArchived,
	})
	return true, nil
}

// record writes one event to the ledger and the CSV logbook. A failed log
// write is reported but never aborts the batch.
func (e *Engine) record(ctx context.Context, event model.SyncEvent) {
	if e.ledger != nil {
		if err := e.ledger.RecordEvent(ctx, event); err != nil {
			slog.Error("Failed to record ledger event", "file", event.RemoteName, "error", err)
		}
	}
	if e.logbook != nil {
		if err := e.logbook.Record(event); err != nil {
			slog.Error("Failed to write logbook row", "file", event.RemoteName, "error", err)
		}
	}
}

// newProgressBar builds the byte-progress bar used for transfers.
func newProgressBar(w io.Writer, size int64, desc string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionClearOnFinish(),
	)
}
