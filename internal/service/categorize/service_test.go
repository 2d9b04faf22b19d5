package categorize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transmittal/internal/capabilities"
	"transmittal/internal/domain"
	"transmittal/internal/domain/models"
	"transmittal/internal/domain/services"
)

// fakeGenerator echoes one item per file named in the request.
type fakeGenerator struct {
	mu       sync.Mutex
	requests [][]services.Part
	// fail makes requests whose text mentions the given name fail.
	fail  string
	reply func(parts []services.Part) []services.GeneratedItem
}

func (f *fakeGenerator) GenerateItems(ctx context.Context, parts []services.Part) ([]services.GeneratedItem, error) {
	f.mu.Lock()
	f.requests = append(f.requests, parts)
	f.mu.Unlock()

	if f.fail != "" {
		for _, p := range parts {
			if strings.Contains(p.Text, f.fail) {
				return nil, errors.New("403 PERMISSION_DENIED")
			}
		}
	}
	if f.reply != nil {
		return f.reply(parts), nil
	}
	return echoNames(parts), nil
}

// echoNames answers with one item per name found in the request, without extensions.
func echoNames(parts []services.Part) []services.GeneratedItem {
	var out []services.GeneratedItem
	for _, p := range parts {
		for _, prefix := range []string{"File Name Only: ", "Above is content for file: "} {
			if name, ok := strings.CutPrefix(p.Text, prefix); ok {
				out = append(out, item(strings.TrimSuffix(name, ".pdf")))
			}
		}
		if list, ok := strings.CutPrefix(p.Text, "File List:\n"); ok {
			list = strings.Trim(list, "[]")
			for _, q := range strings.Split(list, ",") {
				out = append(out, item(strings.TrimSuffix(strings.Trim(q, `"`), ".pdf")))
			}
		}
	}
	return out
}

func item(name string) services.GeneratedItem {
	return services.GeneratedItem{OriginalFilename: name, Qty: "1", DocumentType: "Memo", Description: name, Remarks: ""}
}

type fakeDownloader struct {
	data map[string][]byte
	err  error
}

func (d *fakeDownloader) Download(ctx context.Context, fileID string) ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.data[fileID], nil
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestService(t *testing.T, gen *fakeGenerator, dl services.FileDownloader) *Service {
	t.Helper()
	prompts, err := LoadPromptConfig()
	require.NoError(t, err)

	cfg := Config{
		NewGenerator: func(ctx context.Context, apiKey string) (services.ContentGenerator, error) {
			return gen, nil
		},
		Prompts: prompts,
		Model:   &capabilities.ModelCapabilities{SupportsVision: true, SupportsDocuments: true, MaxInlineBytes: 1 << 20},
		Logger:  quietLogger(),
	}
	if dl != nil {
		cfg.NewDownloader = func(ctx context.Context, apiKey string) (services.FileDownloader, error) {
			return dl, nil
		}
	}
	return NewService(cfg)
}

func namedFiles(n int) []models.DriveFile {
	files := make([]models.DriveFile, n)
	for i := range files {
		files[i] = models.DriveFile{ID: fmt.Sprintf("id%d", i), Name: fmt.Sprintf("DWG-%03d.pdf", i), MimeType: "application/pdf"}
	}
	return files
}

func TestPlanBatches(t *testing.T) {
	s := newTestService(t, &fakeGenerator{}, nil)

	tests := []struct {
		name  string
		files int
		deep  bool
		want  []int
	}{
		{"empty", 0, false, []int{}},
		{"three filenames", 3, false, []int{3}},
		{"thirty filenames", 30, false, []int{30}},
		{"thirty five filenames", 35, false, []int{30, 5}},
		{"deep seven", 7, true, []int{3, 3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := namedFiles(tt.files)
			batches := s.PlanBatches(files, tt.deep)

			sizes := []int{}
			var flat []models.DriveFile
			for _, b := range batches {
				sizes = append(sizes, len(b))
				flat = append(flat, b...)
			}
			assert.Equal(t, tt.want, sizes)
			if tt.files > 0 {
				assert.Equal(t, files, flat, "batches keep input order")
			}
		})
	}
}

func TestCategorize_SmallBatchIsOneRequestWithoutBinary(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestService(t, gen, &fakeDownloader{data: map[string][]byte{"id0": []byte("%PDF")}})

	items, err := s.Categorize(context.Background(), &services.CategorizeRequest{
		APIKey:      "key",
		Files:       namedFiles(3),
		ProjectName: "Tower A",
	})
	require.NoError(t, err)
	require.Len(t, gen.requests, 1)
	assert.Len(t, items, 3)

	parts := gen.requests[0]
	require.Len(t, parts, 2)
	assert.Equal(t, "File List:\n[\"DWG-000.pdf\",\"DWG-001.pdf\",\"DWG-002.pdf\"]", parts[0].Text)
	assert.Contains(t, parts[1].Text, "Context Project: Tower A")
	assert.Contains(t, parts[1].Text, "Infer information from the filenames.")
	for _, p := range parts {
		assert.False(t, p.IsInline())
	}
}

func TestCategorize_ThirtyFiveFilesIsTwoRequests(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestService(t, gen, nil)

	items, err := s.Categorize(context.Background(), &services.CategorizeRequest{APIKey: "key", Files: namedFiles(35)})
	require.NoError(t, err)
	assert.Len(t, gen.requests, 2)
	assert.Len(t, items, 35)
}

func TestCategorize_ReconcilesFilenamesAndAssignsIDs(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestService(t, gen, nil)

	files := namedFiles(2)
	items, err := s.Categorize(context.Background(), &services.CategorizeRequest{APIKey: "key", Files: files})
	require.NoError(t, err)
	require.Len(t, items, 2)

	seen := map[string]bool{}
	for _, it := range items {
		assert.True(t, strings.HasPrefix(it.ID, "doc-"), it.ID)
		assert.False(t, seen[it.ID], "ids are unique")
		seen[it.ID] = true
		// model returned the name without extension; it is mapped back to the file
		assert.Contains(t, []string{"DWG-000.pdf", "DWG-001.pdf"}, it.OriginalFilename)
	}
}

func TestReconcileFilename(t *testing.T) {
	batch := []models.DriveFile{{Name: "A-101 Floor Plan.pdf"}, {Name: "S-201.dwg"}}

	tests := []struct {
		returned string
		want     string
	}{
		{"A-101 Floor Plan", "A-101 Floor Plan.pdf"},
		{"folder/S-201.dwg (copy)", "S-201.dwg"},
		{"Unrelated", "Unrelated"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, reconcileFilename(tt.returned, batch), tt.returned)
	}
}

func TestCategorize_SanitizesModelText(t *testing.T) {
	gen := &fakeGenerator{reply: func(parts []services.Part) []services.GeneratedItem {
		return []services.GeneratedItem{{
			OriginalFilename: "DWG-000",
			Qty:              "1",
			DocumentType:     "<b>Structural Drawing</b>",
			Description:      "Beam & Column Details<script>x()</script>",
		}}
	}}
	s := newTestService(t, gen, nil)

	items, err := s.Categorize(context.Background(), &services.CategorizeRequest{APIKey: "key", Files: namedFiles(1)})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Structural Drawing", items[0].DocumentType)
	assert.Equal(t, "Beam & Column Details", items[0].Description)
}

func TestCategorize_DeepModeAttachesReadableFiles(t *testing.T) {
	gen := &fakeGenerator{}
	dl := &fakeDownloader{data: map[string][]byte{"pdf": []byte("%PDF-1.7"), "img": {0x89, 'P', 'N', 'G'}}}
	s := newTestService(t, gen, dl)

	files := []models.DriveFile{
		{ID: "pdf", Name: "Spec.pdf", MimeType: "application/pdf"},
		{ID: "img", Name: "Site.png", MimeType: "image/png"},
		{ID: "doc", Name: "Notes.docx", MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	}
	_, err := s.Categorize(context.Background(), &services.CategorizeRequest{APIKey: "key", Files: files, Deep: true})
	require.NoError(t, err)
	require.Len(t, gen.requests, 1)

	parts := gen.requests[0]
	require.Len(t, parts, 6)
	assert.True(t, parts[0].IsInline())
	assert.Equal(t, "application/pdf", parts[0].MimeType)
	assert.Equal(t, "Above is content for file: Spec.pdf", parts[1].Text)
	assert.True(t, parts[2].IsInline())
	assert.Equal(t, "Above is content for file: Site.png", parts[3].Text)
	assert.Equal(t, "File Name Only: Notes.docx", parts[4].Text)
	assert.Contains(t, parts[5].Text, "CRITICAL: Read the document content")
}

func TestCategorize_DeepModeFallsBackOnDownloadFailure(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestService(t, gen, &fakeDownloader{err: errors.New("404")})

	_, err := s.Categorize(context.Background(), &services.CategorizeRequest{APIKey: "key", Files: namedFiles(2), Deep: true})
	require.NoError(t, err)
	require.Len(t, gen.requests, 1)

	parts := gen.requests[0]
	assert.Equal(t, "File Name Only: DWG-000.pdf", parts[0].Text)
	assert.Equal(t, "File Name Only: DWG-001.pdf", parts[1].Text)
}

func TestCategorize_PartialFailureKeepsOtherBatches(t *testing.T) {
	gen := &fakeGenerator{fail: "DWG-031.pdf"}
	s := newTestService(t, gen, nil)

	items, err := s.Categorize(context.Background(), &services.CategorizeRequest{APIKey: "key", Files: namedFiles(35)})
	require.NoError(t, err)
	assert.Len(t, gen.requests, 2)
	assert.Len(t, items, 30)
}

func TestCategorize_AllBatchesFailed(t *testing.T) {
	gen := &fakeGenerator{fail: "DWG"}
	s := newTestService(t, gen, nil)

	_, err := s.Categorize(context.Background(), &services.CategorizeRequest{APIKey: "key", Files: namedFiles(4)})
	require.Error(t, err)
	assert.Equal(t, "AI Processing Failed: No items processed. API might be blocked or empty.", err.Error())
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestCategorize_MissingKey(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestService(t, gen, nil)

	_, err := s.Categorize(context.Background(), &services.CategorizeRequest{APIKey: "  ", Files: namedFiles(1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.Empty(t, gen.requests)
}

func TestCategorize_EmptyInput(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestService(t, gen, nil)

	items, err := s.Categorize(context.Background(), &services.CategorizeRequest{APIKey: "key"})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Empty(t, gen.requests)
}

func TestCategorize_GeneratorConstructionFailure(t *testing.T) {
	prompts, err := LoadPromptConfig()
	require.NoError(t, err)
	s := NewService(Config{
		NewGenerator: func(ctx context.Context, apiKey string) (services.ContentGenerator, error) {
			return nil, errors.New("invalid key")
		},
		Prompts: prompts,
		Logger:  quietLogger(),
	})

	_, err = s.Categorize(context.Background(), &services.CategorizeRequest{APIKey: "key", Files: namedFiles(1)})
	require.Error(t, err)
	assert.Equal(t, "AI Processing Failed: invalid key", err.Error())
}

func TestDecodeItems(t *testing.T) {
	items, err := decodeItems(` {"items":[{"originalFilename":"a.pdf","qty":"1","documentType":"Memo","description":"A","remarks":""}]} `)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a.pdf", items[0].OriginalFilename)

	items, err = decodeItems("")
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = decodeItems("not json")
	assert.Error(t, err)
}

func TestItemsSchema(t *testing.T) {
	prompts, err := LoadPromptConfig()
	require.NoError(t, err)

	schema := itemsSchema(prompts.Output.ItemFields)
	assert.Equal(t, []string{"items"}, schema.Required)
	itemSchema := schema.Properties["items"].Items
	assert.ElementsMatch(t, []string{"originalFilename", "qty", "documentType", "description", "remarks"}, itemSchema.Required)
	assert.Len(t, itemSchema.Properties, 5)
}
