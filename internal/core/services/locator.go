package services

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"stemsplit/internal/core/domain"
)

// ArtifactLocator walks a job's output tree and selects the produced stems
// by a tolerant naming heuristic. The external tool may nest per-track
// subdirectories, so the whole tree is enumerated.
type ArtifactLocator struct {
	logger *slog.Logger
}

func NewArtifactLocator(logger *slog.Logger) *ArtifactLocator {
	return &ArtifactLocator{logger: logger}
}

// StemFile is a (path, size) descriptor of one regular file under the
// output tree. Classification operates on descriptors only, so it is
// testable without a real filesystem.
type StemFile struct {
	Path string
	Size int64
}

// Selection is the ranked result of stem classification: at most one
// primary and one secondary artifact.
type Selection struct {
	Primary   *domain.Artifact
	Secondary *domain.Artifact
}

// ClassifyStems maps file descriptors to a ranked artifact selection.
// First match wins per role:
//   - primary: name contains "vocals" (but not "no_vocals") with an audio
//     extension;
//   - secondary: name contains "no_vocals" with an audio extension;
//   - fallback: when no primary matched anywhere, the first audio file in
//     the given order becomes primary, to tolerate naming drift across
//     tool versions.
//
// Callers wanting a deterministic fallback must pass files in a
// deterministic order.
func ClassifyStems(files []StemFile) Selection {
	var sel Selection
	for i := range files {
		f := files[i]
		if !hasAudioExt(f.Path) {
			continue
		}
		name := strings.ToLower(filepath.Base(f.Path))
		switch {
		case strings.Contains(name, "no_vocals"):
			if sel.Secondary == nil {
				sel.Secondary = &domain.Artifact{Path: f.Path, Role: domain.RoleSecondary, SizeBytes: f.Size}
			}
		case strings.Contains(name, "vocals"):
			if sel.Primary == nil {
				sel.Primary = &domain.Artifact{Path: f.Path, Role: domain.RolePrimary, SizeBytes: f.Size}
			}
		}
	}
	if sel.Primary == nil {
		for i := range files {
			f := files[i]
			if !hasAudioExt(f.Path) {
				continue
			}
			// The complementary stem is never promoted to primary.
			if strings.Contains(strings.ToLower(filepath.Base(f.Path)), "no_vocals") {
				continue
			}
			sel.Primary = &domain.Artifact{Path: f.Path, Role: domain.RolePrimary, SizeBytes: f.Size}
			break
		}
	}
	return sel
}

func hasAudioExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".wav":
		return true
	}
	return false
}

// Locate enumerates every regular file under outputDir in lexicographic
// path order and classifies them. Returns ErrArtifactNotFound when neither
// a named match nor a fallback exists.
func (l *ArtifactLocator) Locate(outputDir string) (Selection, error) {
	var files []StemFile
	err := filepath.WalkDir(outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, StemFile{Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return Selection{}, err
	}

	// Directory-listing order is incidental; sort so the fallback pick
	// is deterministic.
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	for _, f := range files {
		l.logger.Info("output file", "path", f.Path, "size", f.Size)
	}

	sel := ClassifyStems(files)
	if sel.Primary == nil {
		l.logger.Error("no stem found in output tree", "dir", outputDir, "files", len(files))
		return sel, domain.ErrArtifactNotFound
	}
	l.logger.Info("stems located",
		"primary", sel.Primary.Path,
		"secondary_found", sel.Secondary != nil)
	return sel, nil
}
