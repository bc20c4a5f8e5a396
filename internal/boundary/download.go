// Package boundary acquires and parses census tract boundaries from
// TIGER/Line shapefiles.
package boundary

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// TractURL returns the HTTPS URL of the statewide TIGER tract shapefile.
func TractURL(year int, stateFIPS string) string {
	return fmt.Sprintf("https://www2.census.gov/geo/tiger/TIGER%d/TRACT/tl_%d_%s_tract.zip",
		year, year, stateFIPS)
}

// TractFTPURL returns the Census Bureau FTP mirror of the same archive.
func TractFTPURL(year int, stateFIPS string) string {
	return fmt.Sprintf("ftp://ftp2.census.gov/geo/tiger/TIGER%d/TRACT/tl_%d_%s_tract.zip",
		year, year, stateFIPS)
}

// Fetch downloads the TIGER tract archive over HTTPS, falling back to the
// FTP mirror, extracts it, and returns the path to the .shp file. An
// already-downloaded archive is reused.
func Fetch(ctx context.Context, year int, stateFIPS, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", eris.Wrapf(err, "boundary: create dest dir %s", destDir)
	}

	httpURL := TractURL(year, stateFIPS)
	zipName := filepath.Base(httpURL)
	zipPath := filepath.Join(destDir, zipName)

	if info, err := os.Stat(zipPath); err == nil && info.Size() > 0 {
		zap.L().Debug("boundary: archive already downloaded", zap.String("path", zipPath))
	} else {
		if err := downloadHTTP(ctx, httpURL, zipPath); err != nil {
			zap.L().Warn("boundary: https download failed, trying ftp mirror", zap.Error(err))
			if ftpErr := downloadFTP(ctx, TractFTPURL(year, stateFIPS), zipPath); ftpErr != nil {
				return "", eris.Wrapf(ftpErr, "boundary: ftp mirror also failed after %v", err)
			}
		}
	}

	extractDir := filepath.Join(destDir, strings.TrimSuffix(zipName, ".zip"))
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return "", eris.Wrapf(err, "boundary: create extract dir %s", extractDir)
	}
	if err := extractZIP(zipPath, extractDir); err != nil {
		return "", err
	}

	return findFileByExt(extractDir, ".shp")
}

func downloadHTTP(ctx context.Context, rawURL, dest string) error {
	client := &http.Client{Timeout: 10 * time.Minute}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return eris.Wrap(err, "boundary: build request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return eris.Wrap(err, "boundary: download")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("boundary: download returned status %d", resp.StatusCode)
	}

	return writeToFile(dest, resp.Body)
}

func downloadFTP(ctx context.Context, rawURL, dest string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return eris.Wrap(err, "boundary: parse ftp url")
	}
	host := u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}

	conn, err := ftp.Dial(host, ftp.DialWithContext(ctx), ftp.DialWithTimeout(30*time.Second))
	if err != nil {
		return eris.Wrapf(err, "boundary: ftp dial %s", host)
	}
	defer func() { _ = conn.Quit() }()

	if err := conn.Login("anonymous", "anonymous"); err != nil {
		return eris.Wrap(err, "boundary: ftp login")
	}

	resp, err := conn.Retr(u.Path)
	if err != nil {
		return eris.Wrapf(err, "boundary: ftp retr %s", u.Path)
	}
	defer resp.Close() //nolint:errcheck

	return writeToFile(dest, resp)
}

func writeToFile(dest string, r io.Reader) error {
	f, err := os.Create(dest)
	if err != nil {
		return eris.Wrapf(err, "boundary: create %s", dest)
	}
	defer f.Close() //nolint:errcheck

	if _, err := io.Copy(f, r); err != nil {
		return eris.Wrapf(err, "boundary: write %s", dest)
	}
	return nil
}

func extractZIP(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return eris.Wrapf(err, "boundary: open zip %s", zipPath)
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		destPath := filepath.Join(destDir, filepath.Base(f.Name))

		rc, err := f.Open()
		if err != nil {
			return eris.Wrapf(err, "boundary: open zip entry %s", f.Name)
		}

		out, err := os.Create(destPath)
		if err != nil {
			_ = rc.Close()
			return eris.Wrapf(err, "boundary: create %s", destPath)
		}

		_, copyErr := io.Copy(out, rc)
		_ = rc.Close()
		closeErr := out.Close()
		if copyErr != nil {
			return eris.Wrapf(copyErr, "boundary: extract %s", f.Name)
		}
		if closeErr != nil {
			return eris.Wrapf(closeErr, "boundary: close %s", destPath)
		}
	}
	return nil
}

func findFileByExt(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrapf(err, "boundary: read dir %s", dir)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ext) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", eris.Errorf("boundary: no %s file in %s", ext, dir)
}
