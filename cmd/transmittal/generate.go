package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"transmittal/internal/capabilities"
	"transmittal/internal/domain/models"
	"transmittal/internal/domain/services"
	"transmittal/internal/service/categorize"
	"transmittal/internal/service/drive"
	"transmittal/internal/service/form"
	"transmittal/internal/service/numbering"
	"transmittal/internal/service/render"
)

// draftFile is the input of generate. project_details is merged over the
// session, so absent fields keep the saved sender settings and the new number.
type draftFile struct {
	Details json.RawMessage          `json:"project_details"`
	Items   []models.TransmittalItem `json:"items"`
	Columns []models.TableColumn     `json:"columns"`
}

type generateOptions struct {
	draft       string
	folder      string
	subfolders  bool
	deep        bool
	outDir      string
	userID      string
	name        string
	apiKey      string
	format      string
	preparedSig string
	notedSig    string
}

func newGenerateCmd(a *app) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build a transmittal from a draft and write its PDF and CSV",
		Example: `  transmittal generate --draft draft.json
  transmittal generate --draft draft.json --folder https://drive.google.com/drive/folders/abc --subfolders --deep`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.draft, "draft", "", "draft JSON file with project_details, items and columns")
	f.StringVar(&opts.folder, "folder", "", "Google Drive folder id or URL to categorize into items")
	f.BoolVar(&opts.subfolders, "subfolders", false, "also scan subfolders of --folder")
	f.BoolVar(&opts.deep, "deep", false, "send file contents to the model, not only names")
	f.StringVar(&opts.outDir, "out", ".", "output directory")
	f.StringVar(&opts.userID, "user", "local", "user id the offline number counter is kept for")
	f.StringVar(&opts.name, "name", "", "display name for the user code (defaults to the saved 'Prepared by')")
	f.StringVar(&opts.apiKey, "api-key", "", "Gemini API key (defaults to the stored key, then GEMINI_API_KEY)")
	f.StringVar(&opts.format, "format", "both", "pdf, csv or both")
	f.StringVar(&opts.preparedSig, "prepared-signature", "", "signature image for 'Prepared by'")
	f.StringVar(&opts.notedSig, "noted-signature", "", "signature image for 'Noted by'")
	_ = cmd.MarkFlagRequired("draft")
	return cmd
}

func (a *app) generate(cmd *cobra.Command, opts *generateOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if opts.format != "pdf" && opts.format != "csv" && opts.format != "both" {
		return fmt.Errorf("--format must be pdf, csv or both")
	}
	draft, err := readDraft(opts.draft)
	if err != nil {
		return err
	}

	name := opts.name
	if name == "" {
		saved, err := a.storage.Settings(ctx)
		if err != nil {
			return err
		}
		if saved != nil {
			name = saved.PreparedBy
		}
	}

	session, err := form.New(ctx, form.Config{
		Storage:  a.storage,
		Numbers:  numbering.NewAllocator(a.store.Sequences(), a.logger, numbering.WithClock(a.now)),
		Identity: form.Identity{UserID: opts.userID, DisplayName: name},
		Logger:   a.logger,
		Now:      a.now,
	})
	if err != nil {
		return err
	}
	// keeps the generated time current while a folder is categorized
	clockCtx, stopClock := context.WithCancel(ctx)
	defer stopClock()
	session.StartClock(clockCtx, a.cfg.ClockInterval)

	if len(draft.Details) > 0 {
		var decodeErr error
		session.EditDetails(ctx, func(d models.ProjectDetails) models.ProjectDetails {
			merged := d
			if decodeErr = json.Unmarshal(draft.Details, &merged); decodeErr != nil {
				return d
			}
			return merged
		})
		if decodeErr != nil {
			return fmt.Errorf("decode project_details: %w", decodeErr)
		}
	}
	session.AppendItems(ctx, withManualIDs(draft.Items))
	if len(draft.Columns) > 0 {
		if err := session.ReorderColumns(ctx, draft.Columns); err != nil {
			return err
		}
	}
	for role, path := range map[form.SignatureRole]string{form.PreparedBy: opts.preparedSig, form.NotedBy: opts.notedSig} {
		if path == "" {
			continue
		}
		image, err := imageDataURL(path)
		if err != nil {
			return err
		}
		if err := session.SetSignature(ctx, role, image); err != nil {
			return err
		}
	}

	if opts.folder != "" {
		items, err := a.categorizeFolder(ctx, opts, session.Snapshot().Details.ProjectName)
		if err != nil {
			return err
		}
		session.AppendItems(ctx, items)
		fmt.Fprintf(out, "Categorized %d files.\n", len(items))
	}

	state := session.Snapshot()
	doc := &render.Document{
		Details:     state.Details,
		Items:       state.Items,
		Columns:     state.Columns,
		GeneratedAt: a.now(),
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if opts.format != "csv" {
		var buf bytes.Buffer
		if err := render.RenderPDF(&buf, doc); err != nil {
			return err
		}
		path := filepath.Join(opts.outDir, render.PDFFilename(doc.Details.TransmittalNumber))
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		fmt.Fprintln(out, "Wrote", path)
	}
	if opts.format != "pdf" {
		var buf bytes.Buffer
		if err := render.RenderCSV(&buf, doc.Items, doc.Columns); err != nil {
			return err
		}
		path := filepath.Join(opts.outDir, render.CSVFilename(doc.Details.TransmittalNumber))
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		fmt.Fprintln(out, "Wrote", path)
	}

	if _, err := session.RecordHistory(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "Transmittal %s with %d items.\n", doc.Details.TransmittalNumber, len(doc.Items))
	return nil
}

// categorizeFolder scans the folder and asks Gemini to describe each file.
func (a *app) categorizeFolder(ctx context.Context, opts *generateOptions, projectName string) ([]models.TransmittalItem, error) {
	googleKey, err := a.googleKey(ctx, opts.apiKey)
	if err != nil {
		return nil, err
	}
	enumerator, err := drive.NewEnumeratorFactory(a.cfg.DriveMaxFolders, a.logger)(ctx, googleKey)
	if err != nil {
		return nil, err
	}
	scan, err := enumerator.ListFiles(ctx, opts.folder, opts.subfolders)
	if err != nil {
		return nil, err
	}
	if scan.Truncated {
		a.logger.Warn("folder scan truncated", "folders_visited", scan.FoldersVisited)
	}

	registry, err := capabilities.NewRegistry()
	if err != nil {
		return nil, err
	}
	model, err := registry.GetModelCapabilities("gemini", a.cfg.GeminiModel)
	if err != nil {
		return nil, err
	}
	prompts, err := categorize.LoadPromptConfig()
	if err != nil {
		return nil, err
	}
	categorizer := categorize.NewService(categorize.Config{
		NewGenerator:  categorize.NewGeminiFactory(model.ID, prompts),
		NewDownloader: drive.NewDownloaderFactory(),
		Prompts:       prompts,
		Model:         model,
		Logger:        a.logger,
	})

	geminiKey, err := a.geminiKey(ctx, opts.apiKey)
	if err != nil {
		return nil, err
	}
	return categorizer.Categorize(ctx, &services.CategorizeRequest{
		APIKey:      geminiKey,
		Files:       scan.Files,
		ProjectName: projectName,
		Deep:        opts.deep,
	})
}

func readDraft(path string) (*draftFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}
	var draft draftFile
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", path, err)
	}
	return &draft, nil
}

func withManualIDs(items []models.TransmittalItem) []models.TransmittalItem {
	out := make([]models.TransmittalItem, len(items))
	for i, item := range items {
		if item.ID == "" {
			item.ID = "manual-" + uuid.NewString()
		}
		if item.Qty == "" {
			item.Qty = "1"
		}
		out[i] = item
	}
	return out
}
