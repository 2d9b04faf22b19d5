package main

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"transmittal/internal/domain/models"
)

// settingsView is the printable form of the saved settings; the logo is summarized.
type settingsView struct {
	Sender         string `yaml:"sender"`
	Email          string `yaml:"email"`
	ContactNumber  string `yaml:"contact_number"`
	ContactDetails string `yaml:"contact_details"`
	Department     string `yaml:"department"`
	PreparedBy     string `yaml:"prepared_by"`
	NotedBy        string `yaml:"noted_by"`
	Logo           string `yaml:"logo"`
	APIKey         string `yaml:"api_key"`
}

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the saved sender settings",
	}
	cmd.AddCommand(newSettingsShowCmd(a), newSettingsSetCmd(a), newSettingsSetKeyCmd(a))
	return cmd
}

func newSettingsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the saved sender settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			settings, err := a.storage.Settings(ctx)
			if err != nil {
				return err
			}
			if settings == nil {
				settings = &models.SenderSettings{}
			}
			key, err := a.storage.APIKey(ctx)
			if err != nil {
				return err
			}

			view := settingsView{
				Sender:         settings.Sender,
				Email:          settings.SenderEmail,
				ContactNumber:  settings.SenderContactNumber,
				ContactDetails: settings.SenderContactDetails,
				Department:     settings.Department,
				PreparedBy:     settings.PreparedBy,
				NotedBy:        settings.NotedBy,
				Logo:           "none",
				APIKey:         maskKey(key),
			}
			if settings.LogoBase64 != "" {
				view.Logo = fmt.Sprintf("embedded (%d bytes)", len(settings.LogoBase64))
			}

			out, err := yaml.Marshal(view)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newSettingsSetCmd(a *app) *cobra.Command {
	var (
		s        models.SenderSettings
		logoPath string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change sender settings; only the given flags are updated",
		Example: `  transmittal settings set --sender "Fieldpoint Design Studio" --email docs@fieldpoint.ph
  transmittal settings set --logo ./logo.png
  transmittal settings set --logo ""   # remove the logo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			saved, err := a.storage.Settings(ctx)
			if err != nil {
				return err
			}
			if saved == nil {
				saved = &models.SenderSettings{}
			}

			flags := cmd.Flags()
			set := func(name string, dst *string, value string) {
				if flags.Changed(name) {
					*dst = value
				}
			}
			set("sender", &saved.Sender, s.Sender)
			set("email", &saved.SenderEmail, s.SenderEmail)
			set("contact-number", &saved.SenderContactNumber, s.SenderContactNumber)
			set("contact-details", &saved.SenderContactDetails, s.SenderContactDetails)
			set("department", &saved.Department, s.Department)
			set("prepared-by", &saved.PreparedBy, s.PreparedBy)
			set("noted-by", &saved.NotedBy, s.NotedBy)
			if flags.Changed("logo") {
				saved.LogoBase64 = ""
				if logoPath != "" {
					if saved.LogoBase64, err = imageDataURL(logoPath); err != nil {
						return err
					}
				}
			}

			if err := a.storage.SaveSettings(ctx, *saved); err != nil {
				return err
			}
			a.logger.Info("sender settings saved", "sender", saved.Sender)
			fmt.Fprintln(cmd.OutOrStdout(), "Settings saved.")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&s.Sender, "sender", "", "sender company name")
	f.StringVar(&s.SenderEmail, "email", "", "sender email")
	f.StringVar(&s.SenderContactNumber, "contact-number", "", "sender phone number")
	f.StringVar(&s.SenderContactDetails, "contact-details", "", "sender address block (use \\n for new lines)")
	f.StringVar(&s.Department, "department", "", "sending department")
	f.StringVar(&s.PreparedBy, "prepared-by", "", "name printed under 'Prepared by'")
	f.StringVar(&s.NotedBy, "noted-by", "", "name printed under 'Noted by'")
	f.StringVar(&logoPath, "logo", "", "PNG or JPEG logo file; empty removes the logo")
	return cmd
}

func newSettingsSetKeyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-key [api-key]",
		Short: "Store the Gemini API key; no argument removes it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = strings.TrimSpace(args[0])
			}
			if err := a.storage.SetAPIKey(cmd.Context(), key); err != nil {
				return err
			}
			if key == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "API key removed.")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "API key saved.")
			}
			return nil
		},
	}
}

// imageDataURL reads an image file into the data-URL form the renderer embeds.
func imageDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%s is not an image (%s)", path, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func maskKey(key string) string {
	switch {
	case key == "":
		return "not set"
	case len(key) <= 8:
		return "****"
	default:
		return key[:4] + "..." + key[len(key)-4:]
	}
}
