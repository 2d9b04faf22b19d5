// Package categorize turns file descriptors into transmittal items using a
// generative model constrained to a fixed output schema.
package categorize

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"transmittal/internal/capabilities"
	"transmittal/internal/domain"
	"transmittal/internal/domain/models"
	"transmittal/internal/domain/services"
	"transmittal/internal/sanitizer"
)

// errNoItems is reported when no batch produced anything for a non-empty input.
var errNoItems = errors.New("No items processed. API might be blocked or empty.")

// ProcessingError is the single failure surfaced by Categorize for provider problems.
type ProcessingError struct {
	Err error
}

func (e *ProcessingError) Error() string   { return "AI Processing Failed: " + e.Err.Error() }
func (e *ProcessingError) Unwrap() error   { return e.Err }
func (e *ProcessingError) StatusCode() int { return 502 }

// Is allows errors.Is() to match against domain.ErrUpstream
func (e *ProcessingError) Is(target error) bool { return target == domain.ErrUpstream }

// Service implements services.Categorizer.
type Service struct {
	newGenerator  services.GeneratorFactory
	newDownloader services.DownloaderFactory
	prompts       *PromptConfig
	model         *capabilities.ModelCapabilities
	sanitizer     *sanitizer.TextSanitizer
	logger        *slog.Logger
}

// Config wires a Service. NewDownloader may be nil, in which case deep mode
// sends file names only.
type Config struct {
	NewGenerator  services.GeneratorFactory
	NewDownloader services.DownloaderFactory
	Prompts       *PromptConfig
	Model         *capabilities.ModelCapabilities
	Logger        *slog.Logger
}

// NewService creates a categorization service
func NewService(cfg Config) *Service {
	return &Service{
		newGenerator:  cfg.NewGenerator,
		newDownloader: cfg.NewDownloader,
		prompts:       cfg.Prompts,
		model:         cfg.Model,
		sanitizer:     sanitizer.NewTextSanitizer(),
		logger:        cfg.Logger,
	}
}

var _ services.Categorizer = (*Service)(nil)

// PlanBatches splits files into request batches in input order.
func (s *Service) PlanBatches(files []models.DriveFile, deep bool) [][]models.DriveFile {
	return chunk(files, s.prompts.BatchSizeFor(deep))
}

// Categorize sends every batch concurrently and merges what comes back.
// Failed batches contribute nothing; the call fails only when the input was
// non-empty and no batch produced an item.
func (s *Service) Categorize(ctx context.Context, req *services.CategorizeRequest) ([]models.TransmittalItem, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return nil, &domain.MissingCredentialError{
			Credential: "gemini_api_key",
			Message:    "No API Key configured. Please set your API key in Settings.",
		}
	}
	if len(req.Files) == 0 {
		return []models.TransmittalItem{}, nil
	}

	gen, err := s.newGenerator(ctx, req.APIKey)
	if err != nil {
		return nil, &ProcessingError{Err: err}
	}

	var downloader services.FileDownloader
	if req.Deep && s.newDownloader != nil {
		downloader, err = s.newDownloader(ctx, req.APIKey)
		if err != nil {
			s.logger.Warn("deep analysis unavailable, sending file names only", "error", err)
			downloader = nil
		}
	}

	instruction, err := s.prompts.RenderInstruction(req.ProjectName, req.Deep)
	if err != nil {
		return nil, err
	}

	batches := s.PlanBatches(req.Files, req.Deep)
	s.logger.Info("categorizing files",
		"files", len(req.Files),
		"batches", len(batches),
		"deep", req.Deep,
	)

	outcomes := runAll(ctx, batches, func(ctx context.Context, _ int, batch []models.DriveFile) ([]models.TransmittalItem, error) {
		parts := s.buildParts(ctx, downloader, batch, req.Deep)
		parts = append(parts, services.Part{Text: instruction})

		generated, err := gen.GenerateItems(ctx, parts)
		if err != nil {
			return nil, err
		}
		return s.toItems(generated, batch), nil
	})

	items := []models.TransmittalItem{}
	for _, o := range outcomes {
		if o.Err != nil {
			s.logger.Warn("categorization batch failed",
				"batch", o.Index,
				"error", o.Err,
			)
			continue
		}
		items = append(items, o.Items...)
	}

	if len(items) == 0 {
		return nil, &ProcessingError{Err: errNoItems}
	}
	return items, nil
}

// buildParts describes one batch. In deep mode each readable file is attached
// inline followed by a caption naming it; everything else is sent by name.
func (s *Service) buildParts(ctx context.Context, downloader services.FileDownloader, batch []models.DriveFile, deep bool) []services.Part {
	if !deep {
		names := make([]string, len(batch))
		for i, f := range batch {
			names[i] = f.Name
		}
		return []services.Part{{Text: s.prompts.Parts.FileList + jsonStrings(names)}}
	}

	parts := make([]services.Part, 0, 2*len(batch))
	for _, f := range batch {
		if data := s.fetchInline(ctx, downloader, f); data != nil {
			parts = append(parts,
				services.Part{MimeType: f.MimeType, Data: data},
				services.Part{Text: s.prompts.Parts.InlineCaption + f.Name},
			)
			continue
		}
		parts = append(parts, services.Part{Text: s.prompts.Parts.NameOnly + f.Name})
	}
	return parts
}

func (s *Service) fetchInline(ctx context.Context, downloader services.FileDownloader, f models.DriveFile) []byte {
	if downloader == nil || f.ID == "" || !capabilities.IsDeepReadable(f.MimeType) {
		return nil
	}

	data, err := downloader.Download(ctx, f.ID)
	if err != nil {
		s.logger.Warn("skipping deep scan", "file", f.Name, "error", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	if s.model != nil && !s.model.AcceptsInline(f.MimeType, len(data)) {
		s.logger.Debug("model cannot take file inline", "file", f.Name, "bytes", len(data))
		return nil
	}
	return data
}

// toItems reconciles returned filenames with the batch, cleans free text and assigns ids.
func (s *Service) toItems(generated []services.GeneratedItem, batch []models.DriveFile) []models.TransmittalItem {
	items := make([]models.TransmittalItem, 0, len(generated))
	for _, g := range generated {
		items = append(items, models.TransmittalItem{
			ID:               "doc-" + uuid.NewString(),
			OriginalFilename: reconcileFilename(g.OriginalFilename, batch),
			Qty:              s.sanitizer.Clean(g.Qty),
			DocumentType:     s.sanitizer.Clean(g.DocumentType),
			Description:      s.sanitizer.Clean(g.Description),
			Remarks:          s.sanitizer.Clean(g.Remarks),
		})
	}
	return items
}

// reconcileFilename maps a model-returned name back to the first batch file
// whose name contains it or is contained by it.
func reconcileFilename(returned string, batch []models.DriveFile) string {
	for _, f := range batch {
		if strings.Contains(f.Name, returned) || strings.Contains(returned, f.Name) {
			return f.Name
		}
	}
	return returned
}

func jsonStrings(values []string) string {
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}
