package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mhpenta/imageedit"
	"github.com/mhpenta/imageedit/internal/config"
	"github.com/mhpenta/imageedit/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	editImage  string
	editPrompt string
	editOut    string
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit one image from the command line",
	Long: `Edit sends one image and an instruction to the model and saves the result.
The output defaults to edited_<input name> next to the input.

Examples:
  imageedit edit --image cat.png --prompt "add a hat"
  imageedit edit -i photo.jpg -p "remove background" -o out.png`,
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVarP(&editImage, "image", "i", "", "Input image path (required)")
	editCmd.Flags().StringVarP(&editPrompt, "prompt", "p", "", "Edit instruction (required)")
	editCmd.Flags().StringVarP(&editOut, "out", "o", "", "Output path (default edited_<input name>)")
	_ = editCmd.MarkFlagRequired("image")
	_ = editCmd.MarkFlagRequired("prompt")
}

func runEdit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	logging.Init(cfg.LogLevel, cfg.LogConsole)

	data, err := os.ReadFile(editImage)
	if err != nil {
		return fmt.Errorf("reading input image: %w", err)
	}
	input := imageedit.InputImage{
		Data:     data,
		MIMEType: imageedit.GetMIMEType(editImage),
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	defer cancel()

	svc, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	start := time.Now()
	result, err := svc.Edit(ctx, input, editPrompt, nil)
	if err != nil {
		switch imageedit.Classify(err) {
		case imageedit.ErrorKindEmptyResult:
			return fmt.Errorf("the model did not return an image: %w", err)
		case imageedit.ErrorKindValidation:
			return err
		}
		var rl *imageedit.RateLimitError
		if errors.As(err, &rl) {
			return fmt.Errorf("rate limited, retry after %v: %w", rl.RetryAfter, err)
		}
		return fmt.Errorf("edit failed: %w", err)
	}

	out := editOut
	if out == "" {
		out = defaultOutputPath(editImage, result.Image.MIMEType)
	}
	if err := os.WriteFile(out, result.Image.Data, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	evt := log.Info().Str("out", out).Dur("duration", time.Since(start))
	if result.UsageMetadata != nil {
		evt = evt.Int("totalTokens", result.UsageMetadata.TotalTokens)
	}
	evt.Msg("edit saved")

	fmt.Fprintf(cmd.OutOrStdout(), "Saved: %s\n", out)
	if result.Text != "" {
		fmt.Fprintln(cmd.OutOrStdout(), result.Text)
	}
	return nil
}

// defaultOutputPath names the result edited_<input> next to the input. The
// extension follows the returned image, which may differ from the input's.
func defaultOutputPath(input, mimeType string) string {
	name := imageedit.DownloadFilename(input)
	if imageedit.GetMIMEType(name) != mimeType {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + "." + imageedit.ExtensionFromMIME(mimeType)
	}
	return filepath.Join(filepath.Dir(input), name)
}
