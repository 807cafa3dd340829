//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// Tar archive extraction.
//
package stage

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/StanfordBioinformatics/scgpm-demux/core"
	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"
)

// Untar extracts a .tar, .tar.gz or .tgz archive into destDir. Entries that
// would escape destDir are rejected.
func Untar(archivePath string, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return errors.Wrapf(err, "stage: could not open archive %s", archivePath)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(archivePath, ".gz") || strings.HasSuffix(archivePath, ".tgz") {
		gzReader, err := pgzip.NewReader(file)
		if err != nil {
			return errors.Wrapf(err, "stage: could not read gzip stream of %s", archivePath)
		}
		defer gzReader.Close()
		reader = gzReader
	}

	entries := 0
	tarReader := tar.NewReader(reader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "stage: could not read archive %s", archivePath)
		}

		target, err := securePath(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return errors.Wrapf(err, "stage: could not create directory %s", target)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return errors.Wrapf(err, "stage: could not create directory for %s", target)
			}
			if err := writeEntry(target, tarReader, header.FileInfo().Mode()); err != nil {
				return err
			}
			entries++
		case tar.TypeSymlink:
			os.Symlink(header.Linkname, target)
		}
	}
	core.LogInfo("stage", "Extracted %d files from %s.", entries, filepath.Base(archivePath))
	return nil
}

func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	fd, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return errors.Wrapf(err, "stage: could not create %s", target)
	}
	defer fd.Close()
	if _, err := io.Copy(fd, r); err != nil {
		return errors.Wrapf(err, "stage: could not extract %s", target)
	}
	return nil
}

func securePath(destDir string, name string) (string, error) {
	target := filepath.Join(destDir, name)
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", errors.Errorf("stage: archive entry %s escapes destination", name)
	}
	return target, nil
}
