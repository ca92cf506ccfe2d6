package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/shipyard"
	"github.com/aretw0/shipyard/internal/presentation/tui"
	"github.com/aretw0/shipyard/pkg/delivery"
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/pipeline"
	"github.com/aretw0/shipyard/pkg/schema"
	"github.com/aretw0/shipyard/pkg/uploads"
	"github.com/bmatcuk/doublestar/v4"
)

// UploadPattern selects the data files taken from an uploaded directory.
const UploadPattern = "**/*.txt"

// GenerateOptions drives one headless generation.
type GenerateOptions struct {
	Kind            string
	Uploads         []string
	IncludeBaseline bool
	Set             []string
	OutDir          string
	Quiet           bool
}

// RunGenerate uploads the given files into a fresh session, runs the
// generator and writes the archive to OutDir.
func RunGenerate(ctx context.Context, svc *shipyard.Service, opts GenerateOptions) (string, error) {
	fields, err := ParseAssignments(opts.Set)
	if err != nil {
		return "", err
	}
	docs, err := CollectUploads(opts.Uploads)
	if err != nil {
		return "", err
	}

	sess, err := svc.Sessions.Start(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = svc.Sessions.Delete(context.WithoutCancel(ctx), sess.ID) }()

	_, ignored, err := sess.Uploads.AddAll(ctx, docs...)
	if err != nil {
		return "", err
	}
	if len(ignored) > 0 && !opts.Quiet {
		PrintSystemMessage(os.Stderr, "Ignored non-text uploads: %s", strings.Join(ignored, ", "))
	}

	out := delivery.NewDirDeliverer(opts.OutDir)
	artifact, err := svc.Generate(ctx, sess.ID, pipeline.Request{
		Kind:            domain.GeneratorKind(opts.Kind),
		IncludeBaseline: opts.IncludeBaseline,
		Fields:          fields,
	}, out)
	if err != nil {
		if fieldErrs := schema.FieldErrors(err); len(fieldErrs) > 0 && !opts.Quiet {
			reasons := make(map[string]string, len(fieldErrs))
			for _, fe := range fieldErrs {
				reasons[fe.Key] = fe.Reason
			}
			fmt.Fprint(os.Stderr, tui.Render(os.Stderr, tui.FieldErrorsMarkdown(reasons)))
		}
		return "", err
	}

	if !opts.Quiet {
		snap, _ := sess.Uploads.Snapshot(ctx)
		fmt.Print(tui.Render(os.Stdout, tui.ArtifactMarkdown(domain.GeneratorKind(opts.Kind), artifact, snap, out.LastPath())))
	}
	return out.LastPath(), nil
}

// ParseAssignments turns key=value pairs into generator fields.
func ParseAssignments(pairs []string) (map[string]any, error) {
	fields := make(map[string]any, len(pairs))
	var errs []error
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			errs = append(errs, fmt.Errorf("invalid assignment %q, expected key=value", pair))
			continue
		}
		fields[key] = value
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return fields, nil
}

// CollectUploads reads the listed files, and every .txt file below the listed
// directories, in argument order. Directory contents are sorted by path. Each
// document carries the media type DetectMediaType gives it, so the upload
// registry decides what is kept.
func CollectUploads(paths []string) ([]uploads.Document, error) {
	var docs []uploads.Document
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("upload %s: %w", p, err)
		}
		if !info.IsDir() {
			data, err := os.ReadFile(p)
			if err != nil {
				return nil, fmt.Errorf("upload %s: %w", p, err)
			}
			docs = append(docs, newDocument(filepath.Base(p), data))
			continue
		}

		fsys := os.DirFS(p)
		matches, err := doublestar.Glob(fsys, UploadPattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("upload %s: %w", p, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			data, err := fs.ReadFile(fsys, m)
			if err != nil {
				return nil, fmt.Errorf("upload %s: %w", m, err)
			}
			docs = append(docs, newDocument(m, data))
		}
	}
	return docs, nil
}

func newDocument(path string, data []byte) uploads.Document {
	return uploads.Document{Path: path, MediaType: DetectMediaType(path, data), Content: string(data)}
}

// DetectMediaType names the media type of an uploaded file from its
// extension, sniffing the content when the extension is unknown.
func DetectMediaType(path string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}
