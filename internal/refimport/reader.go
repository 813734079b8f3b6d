// Package refimport loads historical assessment workbooks into the
// reference store. Sources may be local paths or http(s):// and ftp://
// URLs; remote files are downloaded to a temp directory first, and zipped
// workbooks are unwrapped before parsing.
package refimport

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/fetcher"
	"github.com/scopecraft/presales-cli/internal/model"
	"github.com/scopecraft/presales-cli/internal/store"
)

// Options configures a Reader. Nil fetchers fall back to defaults.
type Options struct {
	HTTP     fetcher.Fetcher
	FTP      fetcher.Fetcher
	Workbook fetcher.WorkbookOptions
}

// Reader resolves workbook sources and parses them into observations.
type Reader struct {
	http fetcher.Fetcher
	ftp  fetcher.Fetcher
	wb   fetcher.WorkbookOptions
}

// NewReader builds a Reader with default fetchers for any not supplied.
func NewReader(opts Options) *Reader {
	if opts.HTTP == nil {
		opts.HTTP = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
	}
	if opts.FTP == nil {
		opts.FTP = fetcher.NewFTPFetcher(fetcher.FTPOptions{})
	}
	return &Reader{http: opts.HTTP, ftp: opts.FTP, wb: opts.Workbook}
}

// Load resolves the source to a local workbook and parses it.
func (r *Reader) Load(ctx context.Context, source string) ([]model.RefObservation, error) {
	dir, err := os.MkdirTemp("", "refimport-")
	if err != nil {
		return nil, eris.Wrap(err, "refimport: create temp dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	path, err := r.resolve(ctx, source, dir)
	if err != nil {
		return nil, err
	}

	rows, err := fetcher.ReadWorkbook(path, r.wb)
	if err != nil {
		return nil, eris.Wrap(err, "refimport: read workbook")
	}
	return Parse(rows)
}

// Import loads the source and persists the batch. An empty batch name is
// derived from the source file name. Returns the number of observations
// stored.
func (r *Reader) Import(ctx context.Context, st store.Store, batch, source string) (int, error) {
	if batch == "" {
		batch = BatchName(source)
	}

	obs, err := r.Load(ctx, source)
	if err != nil {
		return 0, err
	}

	n, err := st.SaveReferenceBatch(ctx, batch, obs)
	if err != nil {
		return 0, eris.Wrap(err, "refimport: persist batch")
	}

	zap.L().Info("imported reference batch",
		zap.String("batch", batch),
		zap.String("source", source),
		zap.Int("observations", n))
	return n, nil
}

// resolve downloads remote sources into dir and unwraps zip archives,
// returning the path of a local workbook file.
func (r *Reader) resolve(ctx context.Context, source, dir string) (string, error) {
	local := source

	if u, err := url.Parse(source); err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			local = filepath.Join(dir, downloadName(u.Path))
			if _, err := r.http.DownloadToFile(ctx, source, local); err != nil {
				return "", eris.Wrap(err, "refimport: download workbook")
			}
		case "ftp":
			local = filepath.Join(dir, downloadName(u.Path))
			if _, err := r.ftp.DownloadToFile(ctx, source, local); err != nil {
				return "", eris.Wrap(err, "refimport: download workbook")
			}
		}
	}

	if strings.EqualFold(filepath.Ext(local), ".zip") {
		extracted, err := fetcher.ExtractZIPSingle(local, dir)
		if err != nil {
			return "", eris.Wrap(err, "refimport: extract workbook archive")
		}
		local = extracted
	}

	return local, nil
}

// BatchName derives a batch label from the source: the file name without
// its extension.
func BatchName(source string) string {
	base := source
	if u, err := url.Parse(source); err == nil && u.Path != "" {
		base = u.Path
	}
	name := filepath.Base(base)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func downloadName(urlPath string) string {
	name := filepath.Base(urlPath)
	if name == "." || name == "/" || name == "" {
		return "reference-download"
	}
	return name
}
