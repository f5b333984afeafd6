package quizcli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/okian/pcbvalues/internal/domain/model"
)

type importReply struct {
	Batch    string `json:"batch"`
	Accepted int    `json:"accepted"`
	Rejected []struct {
		Index int    `json:"index"`
		Name  string `json:"name"`
		Error string `json:"error"`
	} `json:"rejected"`
}

func (a *app) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import PATTERN...",
		Short: "Upload exported payloads to the score store",
		Long: `Upload payloads written by a failed submit to the score store.

Patterns support ** to match nested directories:

  quiz import 'exports/**/scores-*.json'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd.Context(), args)
		},
	}
}

func (a *app) runImport(ctx context.Context, patterns []string) error {
	files, err := expandPatterns(patterns)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files match %s", strings.Join(patterns, " "))
	}

	payloads := make([]model.Submission, 0, len(files))
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		var p model.Submission
		if err := json.Unmarshal(b, &p); err != nil {
			return fmt.Errorf("decode %s: %w", f, err)
		}
		payloads = append(payloads, p)
	}

	reply, err := a.postImport(ctx, payloads)
	if err != nil {
		return err
	}
	a.printf("%s %s of %s queued (batch %s)\n",
		successStyle.Render("Imported"),
		humanize.Comma(int64(reply.Accepted)),
		humanize.Comma(int64(len(payloads))),
		reply.Batch,
	)
	for _, r := range reply.Rejected {
		source := r.Name
		if r.Index >= 0 && r.Index < len(files) {
			source = files[r.Index]
		}
		a.printf("  %s %s: %s\n", errorStyle.Render("rejected"), source, r.Error)
	}
	return nil
}

// expandPatterns resolves glob patterns to a sorted, de-duplicated file list.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func (a *app) postImport(ctx context.Context, payloads []model.Submission) (importReply, error) {
	target, err := importURL(a.cfg.APIEndpoint)
	if err != nil {
		return importReply{}, err
	}
	body, err := json.Marshal(payloads)
	if err != nil {
		return importReply{}, fmt.Errorf("encode payloads: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.SubmitTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return importReply{}, fmt.Errorf("import: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return importReply{}, fmt.Errorf("import: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return importReply{}, fmt.Errorf("import: %s", resp.Status)
	}

	var reply importReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return importReply{}, fmt.Errorf("decode import reply: %w", err)
	}
	return reply, nil
}

// importURL derives the import route from the submission endpoint, which
// ends in /api/scores.
func importURL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("endpoint: %w", err)
	}
	u.Path = path.Join(path.Dir(strings.TrimSuffix(u.Path, "/")), "import")
	u.RawQuery = ""
	return u.String(), nil
}
