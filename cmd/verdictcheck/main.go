package main

// Run one analysis locally without persistence:
//   go run ./cmd/verdictcheck --type image --file photo.jpg
//   go run ./cmd/verdictcheck --type text --text "Headline..."

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"authenticity-backend/internal/content"
	"authenticity-backend/internal/evidence"
	"authenticity-backend/internal/llm"
	"authenticity-backend/internal/llm/gateway"
	"authenticity-backend/internal/llm/gemini"
	"authenticity-backend/internal/prompt"
	"authenticity-backend/internal/shared/config"
	"authenticity-backend/internal/shared/telemetry"
	"authenticity-backend/internal/verdict"
)

type options struct {
	contentType string
	text        string
	file        string
	model       string
	out         string
	raw         bool
}

type deps struct {
	model    llm.Invoker
	evidence interface {
		Gather(ctx context.Context, article string) ([]evidence.Item, int, error)
	}
	prompts prompt.Builder
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "verdictcheck",
		Short:         "Assess one piece of content against the configured model",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			telemetry.Configure(cfg.LogLevel)
			defer telemetry.Sync()

			model, err := buildModel(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			d := deps{
				model:    model,
				evidence: evidence.NewClient(evidence.NewSearchClient(cfg.SearchAPIURL), evidence.Credentials(cfg.SearchAPIKeys)),
				prompts:  prompt.NewBuilder(cfg.ModelFast, cfg.ModelStrong),
			}
			return run(cmd.Context(), opts, d, cmd.OutOrStdout())
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.contentType, "type", "text", "Content type: text, image, audio or video")
	flags.StringVar(&opts.text, "text", "", "Text to assess (text or audio description)")
	flags.StringVar(&opts.file, "file", "", "Path to a media file, or a text file for --type text")
	flags.StringVar(&opts.model, "model", "", "Override the model chosen for the content type")
	flags.StringVar(&opts.out, "out", "", "Also write the JSON result to this path")
	flags.BoolVar(&opts.raw, "raw", false, "Print the unparsed model reply instead of the verdict")
	return cmd
}

func run(ctx context.Context, opts options, d deps, w io.Writer) error {
	ct, err := content.ParseType(opts.contentType)
	if err != nil {
		return err
	}
	in := prompt.Input{ContentType: ct, Text: opts.text}
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return fmt.Errorf("read %s: %w", opts.file, err)
		}
		if ct == content.TypeText {
			in.Text = string(data)
		} else {
			in.Media = mediaFromFile(opts.file, data)
		}
	}

	if ct == content.TypeText {
		items, _, err := d.evidence.Gather(ctx, in.Text)
		if err != nil {
			return fmt.Errorf("gather evidence: %w", err)
		}
		in.Evidence = items
	}

	plan, err := d.prompts.Build(in)
	if err != nil {
		return err
	}
	model := plan.Model
	if strings.TrimSpace(opts.model) != "" {
		model = opts.model
	}
	reply, err := d.model.Invoke(ctx, model, plan.Messages)
	if err != nil {
		return fmt.Errorf("invoke %s: %w", model, err)
	}

	var out []byte
	if opts.raw {
		out = []byte(reply)
	} else {
		v := verdict.ApplyPolicy(ct, verdict.Extract(reply))
		out, err = json.Marshal(v)
		if err != nil {
			return err
		}
	}
	pretty := prettyJSON(out)

	if opts.out != "" {
		if err := os.WriteFile(opts.out, pretty, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	if _, err := w.Write(pretty); err != nil {
		return err
	}
	if len(pretty) == 0 || pretty[len(pretty)-1] != '\n' {
		_, _ = w.Write([]byte("\n"))
	}
	return nil
}

func buildModel(ctx context.Context, cfg config.Config) (llm.Invoker, error) {
	if err := cfg.RequireModel(); err != nil {
		return nil, err
	}
	if cfg.ModelProvider == config.ProviderGenAI {
		return gemini.NewClient(ctx, cfg.GeminiAPIKey)
	}
	return gateway.NewClient(cfg.ModelGatewayURL, cfg.ModelAPIKey), nil
}

func mediaFromFile(path string, data []byte) *content.Media {
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return &content.Media{
		MIMEType: mimeType,
		Data:     data,
		DataURI:  "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
	}
}

// prettyJSON indents valid JSON and returns anything else unchanged.
func prettyJSON(raw []byte) []byte {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return raw
	}
	return buf.Bytes()
}
