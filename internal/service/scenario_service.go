package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/drive"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/engine"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/report"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/repository"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/storage"
)

const defaultHistoryLimit = 50

// ExportTarget is where a rendered comparison goes.
type ExportTarget string

const (
	TargetDownload ExportTarget = "download"
	TargetS3       ExportTarget = "s3"
	TargetDrive    ExportTarget = "drive"
)

var (
	ErrUnknownExportTarget  = errors.New("unknown export target")
	ErrExportTargetDisabled = errors.New("export target is not configured")
	ErrChartRendererMissing = errors.New("no chart renderer configured")
)

// ParseExportTarget accepts download, s3 or drive; empty means download.
func ParseExportTarget(s string) (ExportTarget, error) {
	switch ExportTarget(strings.ToLower(strings.TrimSpace(s))) {
	case TargetDownload, "":
		return TargetDownload, nil
	case TargetS3:
		return TargetS3, nil
	case TargetDrive:
		return TargetDrive, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownExportTarget, s)
}

// DriveClient is the part of the Drive service used for exports.
type DriveClient interface {
	ListFiles(ctx context.Context, folderID string) ([]*drive.File, error)
	UploadFile(ctx context.Context, folderID, name, contentType string, data []byte) (string, error)
}

// Options wires the optional collaborators of ScenarioService. Nil members
// disable the matching feature.
type Options struct {
	Runs          repository.RunRepository
	Storage       storage.ObjectStorage
	Drive         DriveClient
	DriveFolderID string
	Chart         engine.ChartRenderer
	Now           func() time.Time
}

// ScenarioService exposes the per-session scenario engine together with run
// history and comparison exports.
type ScenarioService struct {
	sessions    *engine.Registry
	runs        repository.RunRepository
	storage     storage.ObjectStorage
	drive       DriveClient
	driveFolder string
	chart       engine.ChartRenderer
	now         func() time.Time
}

func NewScenarioService(sessions *engine.Registry, opts Options) *ScenarioService {
	if opts.Runs == nil {
		opts.Runs = repository.NewNoopRunRepository()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ScenarioService{
		sessions:    sessions,
		runs:        opts.Runs,
		storage:     opts.Storage,
		drive:       opts.Drive,
		driveFolder: opts.DriveFolderID,
		chart:       opts.Chart,
		now:         opts.Now,
	}
}

// Run validates in, runs it on the session and records the result in the history.
func (s *ScenarioService) Run(ctx context.Context, sessionID string, in domain.ScenarioInput) (*domain.Result, error) {
	in, err := in.Normalize()
	if err != nil {
		return nil, err
	}

	session := s.sessions.Get(sessionID)
	result, err := session.Run(ctx, in)
	if err != nil {
		return nil, err
	}

	if _, err := s.runs.RecordRun(context.WithoutCancel(ctx), session.ID(), in, result); err != nil {
		log.Warn().Err(err).Str("session", session.ID()).Msg("scenario: record run failed")
	}

	return result, nil
}

func (s *ScenarioService) State(sessionID string) engine.State {
	return s.sessions.Get(sessionID).State()
}

// Save stores the current result of the session.
func (s *ScenarioService) Save(sessionID, name string) (*domain.SavedScenario, error) {
	return s.sessions.Get(sessionID).Save(name)
}

func (s *ScenarioService) ListScenarios(sessionID string) []domain.SavedScenario {
	return s.sessions.Get(sessionID).State().Scenarios
}

// Select points a comparison slot at a saved scenario id.
func (s *ScenarioService) Select(sessionID string, slot domain.ComparisonSlot, id string) domain.ComparisonSelection {
	return s.sessions.Get(sessionID).Select(slot, id).Selection
}

func (s *ScenarioService) Comparison(sessionID string) engine.Comparison {
	return s.sessions.Get(sessionID).Comparison()
}

func (s *ScenarioService) Projection(sessionID string, demand *float64) []domain.ProjectionPoint {
	return s.sessions.Get(sessionID).Projection(demand)
}

// RenderProjection writes the projection through the configured chart renderer
// and returns its content type.
func (s *ScenarioService) RenderProjection(w io.Writer, sessionID string, demand *float64) (string, error) {
	if s.chart == nil {
		return "", ErrChartRendererMissing
	}
	points := s.Projection(sessionID, demand)
	if err := s.chart.RenderProjection(w, "Inventory projection", points); err != nil {
		return "", fmt.Errorf("render projection: %w", err)
	}
	return s.chart.ContentType(), nil
}

// Speak reads the current result aloud and returns the spoken text.
func (s *ScenarioService) Speak(ctx context.Context, sessionID string) string {
	return s.sessions.Get(sessionID).Speak(ctx)
}

// History lists the most recent recorded runs of the session.
func (s *ScenarioService) History(ctx context.Context, sessionID string, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.runs.ListRuns(ctx, s.sessions.Get(sessionID).ID(), limit)
}

// ExportResult describes a rendered comparison and where it was sent.
type ExportResult struct {
	Document *report.Document `json:"-"`
	Name     string           `json:"name"`
	Format   report.Format    `json:"format"`
	Target   ExportTarget     `json:"target"`
	Location string           `json:"location,omitempty"`
}

// Export renders the session's comparison and delivers it to target. The
// download target returns the document without uploading it.
func (s *ScenarioService) Export(ctx context.Context, sessionID string, format report.Format, target ExportTarget) (*ExportResult, error) {
	session := s.sessions.Get(sessionID)
	cmp := session.Comparison()
	if !cmp.Available {
		return nil, domain.ErrComparisonUnavailable
	}

	var projection []domain.ProjectionPoint
	if cmp.A != nil {
		demand := cmp.A.Inputs.Demand
		projection = session.Projection(&demand)
	}

	name := fmt.Sprintf("comparison-%s", s.now().UTC().Format("20060102-150405"))
	doc, err := report.RenderComparison(format, name, cmp, projection)
	if err != nil {
		return nil, err
	}

	res := &ExportResult{Document: doc, Name: doc.Name, Format: format, Target: target}

	switch target {
	case TargetDownload:
	case TargetS3:
		if s.storage == nil {
			return nil, fmt.Errorf("%w: %s", ErrExportTargetDisabled, target)
		}
		key, err := s.storage.UploadObject(ctx, doc.Name, doc.Data, doc.ContentType)
		if err != nil {
			return nil, err
		}
		res.Location = key
	case TargetDrive:
		if s.drive == nil {
			return nil, fmt.Errorf("%w: %s", ErrExportTargetDisabled, target)
		}
		id, err := s.drive.UploadFile(ctx, s.driveFolder, doc.Name, doc.ContentType, doc.Data)
		if err != nil {
			return nil, err
		}
		res.Location = id
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExportTarget, target)
	}

	log.Info().
		Str("session", session.ID()).
		Str("format", string(format)).
		Str("target", string(target)).
		Str("location", res.Location).
		Int("bytes", len(doc.Data)).
		Msg("scenario: comparison exported")

	return res, nil
}

// ExportEntry is a previously uploaded comparison export.
type ExportEntry struct {
	Target ExportTarget `json:"target"`
	Name   string       `json:"name"`
	ID     string       `json:"id,omitempty"`
	Size   int64        `json:"size"`
}

// ListExports lists uploaded exports across every configured target.
func (s *ScenarioService) ListExports(ctx context.Context) ([]ExportEntry, error) {
	entries := make([]ExportEntry, 0)

	if s.storage != nil {
		objects, err := s.storage.ListObjects(ctx, "")
		if err != nil {
			return nil, err
		}
		for _, o := range objects {
			entries = append(entries, ExportEntry{Target: TargetS3, Name: o.Key, Size: o.Size})
		}
	}

	if s.drive != nil {
		files, err := s.drive.ListFiles(ctx, s.driveFolder)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			entries = append(entries, ExportEntry{Target: TargetDrive, Name: f.Name, ID: f.ID, Size: f.Size})
		}
	}

	return entries, nil
}
