package publish

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ChecksumFileName is the name of the checksum manifest written into dist.
const ChecksumFileName = "SHA256SUMS"

// writeTarGz packs the contents of srcDir into a gzipped tarball at outPath.
// Paths inside the archive are relative to srcDir with forward slashes.
func writeTarGz(srcDir, outPath string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	err = walkArchiveFiles(srcDir, func(rel string, fi os.FileInfo, path string) error {
		hdr, err := tar.FileInfoHeader(fi, "")
		if err != nil {
			return err
		}
		hdr.Name = rel
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(tw, src)
		return err
	})
	if err != nil {
		return fmt.Errorf("write tarball: %w", err)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("finalize tarball: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("finalize gzip: %w", err)
	}
	return f.Close()
}

// writeZip packs the contents of srcDir into a zip archive at outPath.
func writeZip(srcDir, outPath string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	err = walkArchiveFiles(srcDir, func(rel string, fi os.FileInfo, path string) error {
		hdr, err := zip.FileInfoHeader(fi)
		if err != nil {
			return err
		}
		hdr.Name = rel
		hdr.Method = zip.Deflate
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(w, src)
		return err
	})
	if err != nil {
		return fmt.Errorf("write zip: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize zip: %w", err)
	}
	return f.Close()
}

// walkArchiveFiles calls fn for every regular file under srcDir with its
// slash-separated relative path.
func walkArchiveFiles(srcDir string, fn func(rel string, fi os.FileInfo, path string) error) error {
	return filepath.Walk(srcDir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		return fn(filepath.ToSlash(rel), fi, path)
	})
}

// WriteChecksums produces a SHA256SUMS file in dir covering the given files.
// Lines use the coreutils sha256sum format: "<hex>  <filename>".
func WriteChecksums(dir string, files []string) (string, error) {
	var b strings.Builder
	for _, path := range files {
		sum, err := fileSHA256(path)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%s  %s\n", sum, filepath.Base(path))
	}
	out := filepath.Join(dir, ChecksumFileName)
	if err := os.WriteFile(out, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write checksums: %w", err)
	}
	return out, nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
