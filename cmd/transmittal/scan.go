package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"transmittal/internal/service/drive"
	"transmittal/internal/service/numbering"
)

func newUserCodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usercode <name>",
		Short: "Print the three-letter code a name contributes to transmittal numbers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), numbering.UserCode(strings.Join(args, " ")))
			return nil
		},
	}
}

func newScanCmd(a *app) *cobra.Command {
	var (
		subfolders bool
		apiKey     string
	)
	cmd := &cobra.Command{
		Use:   "scan <folder-id-or-url>",
		Short: "List the files of a shared Google Drive folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key, err := a.googleKey(ctx, apiKey)
			if err != nil {
				return err
			}
			enumerator, err := drive.NewEnumeratorFactory(a.cfg.DriveMaxFolders, a.logger)(ctx, key)
			if err != nil {
				return err
			}
			result, err := enumerator.ListFiles(ctx, args[0], subfolders)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tID")
			for _, f := range result.Files {
				fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, f.MimeType, f.ID)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d files in %d folders\n", len(result.Files), result.FoldersVisited)
			if result.Truncated {
				fmt.Fprintf(cmd.OutOrStdout(), "Stopped after %d folders; some subfolders were not scanned.\n", a.cfg.DriveMaxFolders)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&subfolders, "subfolders", false, "also scan subfolders (breadth first, capped)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Google API key (defaults to the stored key, then GOOGLE_API_KEY)")
	return cmd
}

// geminiKey picks the flag, then the stored key, then GEMINI_API_KEY.
// An empty result is reported by the categorizer as a missing credential.
func (a *app) geminiKey(ctx context.Context, flag string) (string, error) {
	stored, err := a.storage.APIKey(ctx)
	if err != nil {
		return "", err
	}
	return firstNonEmpty(flag, stored, a.cfg.GeminiAPIKey), nil
}

// googleKey is geminiKey with GOOGLE_API_KEY as the environment fallback.
func (a *app) googleKey(ctx context.Context, flag string) (string, error) {
	stored, err := a.storage.APIKey(ctx)
	if err != nil {
		return "", err
	}
	return firstNonEmpty(flag, stored, a.cfg.GoogleAPIKey), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
